// Package config loads settings for the churn predictor and the pipeline steps.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Config holds the full application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Churn    ChurnConfig    `yaml:"churn" mapstructure:"churn"`
	Artifact ArtifactConfig `yaml:"artifact" mapstructure:"artifact"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	File   string `yaml:"file" mapstructure:"file"`
}

// ChurnConfig configures the churn predictor: input path, output directories and training knobs.
type ChurnConfig struct {
	DataPath   string         `yaml:"data_path" mapstructure:"data_path"`
	EDADir     string         `yaml:"eda_dir" mapstructure:"eda_dir"`
	ResultsDir string         `yaml:"results_dir" mapstructure:"results_dir"`
	ModelsDir  string         `yaml:"models_dir" mapstructure:"models_dir"`
	Seed       int64          `yaml:"seed" mapstructure:"seed"`
	TestSize   float64        `yaml:"test_size" mapstructure:"test_size"`
	CVFolds    int            `yaml:"cv_folds" mapstructure:"cv_folds"`
	Grid       GridConfig     `yaml:"grid" mapstructure:"grid"`
	Logistic   LogisticConfig `yaml:"logistic" mapstructure:"logistic"`
}

// GridConfig is the random forest hyperparameter grid.
type GridConfig struct {
	NEstimators []int    `yaml:"n_estimators" mapstructure:"n_estimators"`
	MaxDepth    []int    `yaml:"max_depth" mapstructure:"max_depth"`
	MaxFeatures []string `yaml:"max_features" mapstructure:"max_features"`
	Criterion   []string `yaml:"criterion" mapstructure:"criterion"`
}

// LogisticConfig configures logistic regression training.
type LogisticConfig struct {
	MaxIter      int     `yaml:"max_iter" mapstructure:"max_iter"`
	LearningRate float64 `yaml:"learning_rate" mapstructure:"learning_rate"`
	L2           float64 `yaml:"l2" mapstructure:"l2"`
}

// ArtifactConfig selects the versioned artifact store backend.
type ArtifactConfig struct {
	Backend     string `yaml:"backend" mapstructure:"backend"` // local | http
	Root        string `yaml:"root" mapstructure:"root"`
	URL         string `yaml:"url" mapstructure:"url"`
	DownloadDir string `yaml:"download_dir" mapstructure:"download_dir"`
}

// RegistryConfig configures the artifact registry HTTP server.
type RegistryConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// Load reads configuration from file and environment. An empty path searches ./config.yaml.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MLSTEPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("churn.data_path", "data/bank_data.csv")
	v.SetDefault("churn.eda_dir", "plot_figures/eda")
	v.SetDefault("churn.results_dir", "plot_figures/results")
	v.SetDefault("churn.models_dir", "models")
	v.SetDefault("churn.seed", 42)
	v.SetDefault("churn.test_size", 0.3)
	v.SetDefault("churn.cv_folds", 5)
	v.SetDefault("churn.grid.n_estimators", []int{50, 100})
	v.SetDefault("churn.grid.max_depth", []int{4, 5, 8})
	v.SetDefault("churn.grid.max_features", []string{"sqrt", "log2"})
	v.SetDefault("churn.grid.criterion", []string{"gini", "entropy"})
	v.SetDefault("churn.logistic.max_iter", 3000)
	v.SetDefault("churn.logistic.learning_rate", 0.1)
	v.SetDefault("churn.logistic.l2", 1.0)
	v.SetDefault("artifact.backend", "local")
	v.SetDefault("artifact.root", "artifacts")
	v.SetDefault("artifact.url", "http://localhost:8090")
	v.SetDefault("artifact.download_dir", "artifacts/downloads")
	v.SetDefault("registry.addr", ":8090")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}
