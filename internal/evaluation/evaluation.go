// Package evaluation tests a persisted price regressor against a held-out
// dataset and publishes the scores as a metrics report artifact.
package evaluation

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"mlsteps/internal/artifact"
	"mlsteps/internal/data"
	"mlsteps/internal/features"
	"mlsteps/internal/metrics"
	"mlsteps/internal/models"
)

// ReportType is the artifact type of published reports.
const ReportType = "metrics_report"

var ErrNoFeatures = eris.New("model records no feature names")

// Params are the step's command-line arguments.
type Params struct {
	ModelExport    string `validate:"required"`
	TestDataset    string `validate:"required"`
	OutputArtifact string `validate:"required"`
	TmpDirectory   string `validate:"required"`
}

var validate = validator.New()

func (p Params) Validate() error {
	return eris.Wrap(validate.Struct(p), "invalid evaluation parameters")
}

// Report is the YAML document published by Run.
type Report struct {
	Model       string    `yaml:"model"`
	Dataset     string    `yaml:"dataset"`
	Target      string    `yaml:"target"`
	Features    []string  `yaml:"features"`
	Rows        int       `yaml:"rows"`
	Skipped     int       `yaml:"skipped"`
	R2          float64   `yaml:"r2"`
	MAE         float64   `yaml:"mae"`
	MSE         float64   `yaml:"mse"`
	EvaluatedAt time.Time `yaml:"evaluated_at"`
}

// Evaluate scores gb on the rows of df that have a price. Rows with a missing
// price are counted as skipped.
func Evaluate(gb *models.GradientBoostingRegressor, df dataframe.DataFrame) (*Report, error) {
	if len(gb.FeatureNames) == 0 {
		return nil, ErrNoFeatures
	}
	X, err := features.Matrix(df, gb.FeatureNames)
	if err != nil {
		return nil, err
	}
	if err := data.RequireColumns(df, data.ColPrice); err != nil {
		return nil, err
	}
	prices := df.Col(data.ColPrice).Float()

	rep := &Report{Target: data.ColPrice, Features: gb.FeatureNames}
	var xs [][]float64
	var ys []float64
	for i, y := range prices {
		if math.IsNaN(y) {
			rep.Skipped++
			continue
		}
		xs = append(xs, X[i])
		ys = append(ys, y)
	}
	if len(ys) == 0 {
		return nil, eris.Wrap(data.ErrEmpty, "no rows with a price")
	}
	pred := gb.Predict(xs)
	rep.Rows = len(ys)
	rep.R2 = metrics.R2(ys, pred)
	rep.MAE = metrics.MAE(ys, pred)
	rep.MSE = metrics.MSE(ys, pred)
	return rep, nil
}

// Run fetches the model and test dataset, evaluates, writes the report to
// <TmpDirectory>/<OutputArtifact> and publishes it as a metrics_report.
func Run(ctx context.Context, store artifact.Store, p Params, logger *zap.Logger) (*Report, *artifact.Artifact, error) {
	if err := p.Validate(); err != nil {
		logger.Error("test regression model: bad arguments", zap.Error(err))
		return nil, nil, err
	}

	logger.Info("Downloading model", zap.String("ref", p.ModelExport))
	modelPath, err := store.Fetch(ctx, p.ModelExport)
	if err != nil {
		logger.Error("download model failed", zap.String("ref", p.ModelExport), zap.Error(err))
		return nil, nil, err
	}
	var gb models.GradientBoostingRegressor
	if err := models.Load(modelPath, &gb); err != nil {
		logger.Error("load model failed", zap.String("path", modelPath), zap.Error(err))
		return nil, nil, err
	}

	logger.Info("Downloading test dataset", zap.String("ref", p.TestDataset))
	testPath, err := store.Fetch(ctx, p.TestDataset)
	if err != nil {
		logger.Error("download test dataset failed", zap.String("ref", p.TestDataset), zap.Error(err))
		return nil, nil, err
	}
	df, err := data.ImportData(testPath)
	if err != nil {
		logger.Error("read test dataset failed", zap.String("path", testPath), zap.Error(err))
		return nil, nil, err
	}

	rep, err := Evaluate(&gb, df)
	if err != nil {
		logger.Error("evaluation failed", zap.Error(err))
		return nil, nil, err
	}
	rep.Model, rep.Dataset = p.ModelExport, p.TestDataset
	rep.EvaluatedAt = time.Now().UTC()
	logger.Info("evaluation: PASSED",
		zap.Int("rows", rep.Rows),
		zap.Float64("r2", rep.R2),
		zap.Float64("mae", rep.MAE),
	)

	out := filepath.Join(p.TmpDirectory, p.OutputArtifact)
	if err := writeYAML(out, rep); err != nil {
		logger.Error("write report failed", zap.String("path", out), zap.Error(err))
		return nil, nil, err
	}
	a, err := store.Publish(ctx, out, artifact.Meta{
		Name:        p.OutputArtifact,
		Type:        ReportType,
		Description: "Evaluation of " + p.ModelExport + " on " + p.TestDataset,
	})
	if err != nil {
		logger.Error("publish report failed", zap.String("name", p.OutputArtifact), zap.Error(err))
		return nil, nil, err
	}
	logger.Info("Metrics report uploaded", zap.String("ref", a.Ref()))
	return rep, a, nil
}

func writeYAML(path string, v any) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return eris.Wrap(err, "marshal report")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "create %s", filepath.Dir(path))
	}
	return eris.Wrapf(os.WriteFile(path, b, 0o644), "write %s", path)
}
