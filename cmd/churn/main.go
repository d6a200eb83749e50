// Command churn runs the customer churn predictor: synthetic data generation,
// exploratory figures and training of the logistic regression and random
// forest classifiers.
package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mlsteps/internal/churn"
	"mlsteps/internal/config"
	"mlsteps/internal/data"
	"mlsteps/internal/models"
	"mlsteps/pkg/utils"
)

const defaultLogFile = "logs/churn_predictor.log"

var (
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:          "churn",
	Short:        "Predict customer churn from bank account data",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if c.Log.File == "" {
			c.Log.File = defaultLogFile
		}
		l, err := utils.Logger(utils.LogOptions{Level: c.Log.Level, Format: c.Log.Format, File: c.Log.File})
		if err != nil {
			return eris.Wrap(err, "init logger")
		}
		cfg, logger = c, l
		return nil
	},
}

var (
	genRows int
	genSeed int64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic bank customer dataset to the configured data path",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("generating synthetic customers", zap.Int("rows", genRows), zap.String("out", cfg.Churn.DataPath))
		if err := data.GenerateCustomers(genRows, genSeed, cfg.Churn.DataPath); err != nil {
			logger.Error("generate customers failed", zap.Error(err))
			return err
		}
		return nil
	},
}

var edaCmd = &cobra.Command{
	Use:   "eda",
	Short: "Write exploratory figures for the customer dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := churn.New(cfg.Churn, logger)
		df, err := p.Load()
		if err != nil {
			return err
		}
		return p.EDA(df)
	},
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Encode features and train both classifiers",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := churn.New(cfg.Churn, logger)
		df, err := p.Load()
		if err != nil {
			return err
		}
		if df, err = p.Encode(df); err != nil {
			return err
		}
		s, err := p.Split(df)
		if err != nil {
			return err
		}
		_, err = churn.TrainModels(cmd.Context(), s, p.Options(), logger)
		return err
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run EDA and training end to end",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := churn.New(cfg.Churn, logger).Run(cmd.Context())
		if err != nil {
			return err
		}
		for _, key := range []string{"rf_test", "lr_test"} {
			logger.Info("classification report", zap.String("split", key), zap.String("report", res.Reports[key].String()))
		}
		return nil
	},
}

var curvePoints int

var curveCmd = &cobra.Command{
	Use:   "learning-curve",
	Short: "Plot accuracy against training size using the saved forest's hyperparameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		var rf models.RandomForest
		path := filepath.Join(cfg.Churn.ModelsDir, churn.RFModelFile)
		if err := models.Load(path, &rf); err != nil {
			logger.Error("load forest failed, run train first", zap.String("path", path), zap.Error(err))
			return err
		}
		p := churn.New(cfg.Churn, logger)
		df, err := p.Load()
		if err != nil {
			return err
		}
		if df, err = p.Encode(df); err != nil {
			return err
		}
		s, err := p.Split(df)
		if err != nil {
			return err
		}
		params := models.ForestParams{
			NEstimators: rf.NEstimators,
			MaxDepth:    rf.MaxDepth,
			MaxFeatures: rf.MaxFeatures,
			Criterion:   rf.Criterion,
		}
		_, err = churn.LearningCurve(cmd.Context(), s, params, curvePoints, cfg.Churn.Seed, cfg.Churn.ResultsDir, logger)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	generateCmd.Flags().IntVar(&genRows, "rows", 10127, "number of customers to generate")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 42, "random seed")
	curveCmd.Flags().IntVar(&curvePoints, "points", 8, "number of training sizes")
	rootCmd.AddCommand(generateCmd, edaCmd, trainCmd, runCmd, curveCmd)
}

// run executes the root command and flushes the logger whether or not it failed.
func run(args []string) error {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
