// Package churn runs the customer churn predictor: import, EDA, encoding,
// feature engineering and training of both classifiers.
package churn

import (
    "context"

    "github.com/go-gota/gota/dataframe"
    "go.uber.org/zap"

    "mlsteps/internal/config"
    "mlsteps/internal/data"
    "mlsteps/internal/features"
    "mlsteps/internal/models"
)

type Pipeline struct {
    cfg    config.ChurnConfig
    logger *zap.Logger
}

func New(cfg config.ChurnConfig, logger *zap.Logger) *Pipeline {
    return &Pipeline{cfg: cfg, logger: logger}
}

// Options derives training options from the configuration.
func (p *Pipeline) Options() TrainOptions {
    lr := models.NewLogisticRegression()
    if p.cfg.Logistic.MaxIter > 0 { lr.MaxIter = p.cfg.Logistic.MaxIter }
    if p.cfg.Logistic.LearningRate > 0 { lr.LearningRate = p.cfg.Logistic.LearningRate }
    if p.cfg.Logistic.L2 > 0 { lr.L2 = p.cfg.Logistic.L2 }
    g := p.cfg.Grid
    return TrainOptions{
        ResultsDir: p.cfg.ResultsDir,
        ModelsDir:  p.cfg.ModelsDir,
        Seed:       p.cfg.Seed,
        CVFolds:    p.cfg.CVFolds,
        Grid:       models.ParamGrid(g.NEstimators, g.MaxDepth, g.MaxFeatures, g.Criterion),
        Logistic:   *lr,
    }
}

// Load imports the raw table and derives the Churn label.
func (p *Pipeline) Load() (dataframe.DataFrame, error) {
    df, err := data.ImportData(p.cfg.DataPath)
    if err != nil {
        p.logger.Error("import data: missing or empty data file", zap.String("path", p.cfg.DataPath), zap.Error(err))
        return df, err
    }
    p.logger.Info("import data: PASSED", zap.Int("rows", df.Nrow()), zap.Int("cols", df.Ncol()))
    df, err = features.AddChurn(df)
    if err != nil {
        p.logger.Error("add churn label failed", zap.Error(err))
    }
    return df, err
}

func (p *Pipeline) EDA(df dataframe.DataFrame) error {
    return PerformEDA(df, p.cfg.EDADir, p.logger)
}

// Encode replaces the categorical columns with their churn rates.
func (p *Pipeline) Encode(df dataframe.DataFrame) (dataframe.DataFrame, error) {
    out, err := features.EncoderHelper(df, features.CatFeatures, data.ColChurn)
    if err != nil {
        p.logger.Error("encoder helper: missing columns to encode", zap.Error(err))
        return df, err
    }
    p.logger.Info("encoder helper: PASSED", zap.Strings("columns", features.CatFeatures))
    return out, nil
}

func (p *Pipeline) Split(df dataframe.DataFrame) (*features.Split, error) {
    s, err := features.FeatureEngineering(df, p.cfg.TestSize, p.cfg.Seed)
    if err != nil {
        p.logger.Error("feature engineering: mismatched length for x & y", zap.Error(err))
        return nil, err
    }
    p.logger.Info("feature engineering: PASSED", zap.Int("train", len(s.XTrain)), zap.Int("test", len(s.XTest)))
    return s, nil
}

// Run executes every stage in order and stops at the first failure.
func (p *Pipeline) Run(ctx context.Context) (*TrainResult, error) {
    df, err := p.Load()
    if err != nil { return nil, err }
    if err := p.EDA(df); err != nil { return nil, err }
    df, err = p.Encode(df)
    if err != nil { return nil, err }
    s, err := p.Split(df)
    if err != nil { return nil, err }
    return TrainModels(ctx, s, p.Options(), p.logger)
}
