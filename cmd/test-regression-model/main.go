// Command test-regression-model evaluates the production price model against
// the held-out test dataset and publishes a metrics report.
package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"mlsteps/internal/artifact"
	"mlsteps/internal/config"
	"mlsteps/internal/evaluation"
	"mlsteps/pkg/utils"
)

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		params  evaluation.Params
	)
	cmd := &cobra.Command{
		Use:          "test-regression-model",
		Short:        "Test the production model against the test dataset",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return eris.Wrap(err, "load config")
			}
			logger, err := utils.Logger(utils.LogOptions{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
			if err != nil {
				return eris.Wrap(err, "init logger")
			}
			defer logger.Sync()

			store, err := artifact.Open(cmd.Context(), cfg.Artifact)
			if err != nil {
				return err
			}
			defer artifact.Close(store)

			_, _, err = evaluation.Run(cmd.Context(), store, params, logger)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	f.StringVar(&params.ModelExport, "model_export", "", "model artifact reference, e.g. model_export:prod")
	f.StringVar(&params.TestDataset, "test_dataset", "", "test dataset artifact reference")
	f.StringVar(&params.OutputArtifact, "output_artifact", "", "name of the metrics report artifact")
	f.StringVar(&params.TmpDirectory, "tmp_directory", "", "temporary directory for the report")
	for _, name := range []string{"model_export", "test_dataset", "output_artifact", "tmp_directory"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
