// Command basic-cleaning downloads a raw listings artifact, removes price
// outliers and listings outside New York City, and publishes the cleaned table.
package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"mlsteps/internal/artifact"
	"mlsteps/internal/cleaning"
	"mlsteps/internal/config"
	"mlsteps/pkg/utils"
)

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		params  cleaning.Params
	)
	cmd := &cobra.Command{
		Use:          "basic-cleaning",
		Short:        "Basic data cleaning",
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

			_, err = cleaning.Run(cmd.Context(), store, params, logger)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	f.StringVar(&params.TmpDirectory, "tmp_directory", "", "temporary directory for dataset storage")
	f.StringVar(&params.InputArtifact, "input_artifact", "", "input artifact name")
	f.StringVar(&params.OutputArtifact, "output_artifact", "", "output artifact name")
	f.StringVar(&params.OutputType, "output_type", "", "artifact type")
	f.StringVar(&params.OutputDescription, "output_description", "", "artifact description")
	f.Float64Var(&params.MinPrice, "min_price", 0, "minimum price to keep")
	f.Float64Var(&params.MaxPrice, "max_price", 0, "maximum price to keep")
	for _, name := range []string{
		"tmp_directory", "input_artifact", "output_artifact", "output_type",
		"output_description", "min_price", "max_price",
	} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
