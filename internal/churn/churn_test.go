package churn

import (
    "context"
    "errors"
    "os"
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    "mlsteps/internal/config"
    "mlsteps/internal/data"
    "mlsteps/internal/models"
)

func testConfig(t *testing.T) config.ChurnConfig {
    t.Helper()
    dir := t.TempDir()
    cfg := config.ChurnConfig{
        DataPath:   filepath.Join(dir, "data", "bank_data.csv"),
        EDADir:     filepath.Join(dir, "plot_figures", "eda"),
        ResultsDir: filepath.Join(dir, "plot_figures", "results"),
        ModelsDir:  filepath.Join(dir, "models"),
        Seed:       42,
        TestSize:   0.3,
        CVFolds:    3,
        Grid: config.GridConfig{
            NEstimators: []int{5, 10},
            MaxDepth:    []int{3},
            MaxFeatures: []string{"sqrt"},
            Criterion:   []string{"gini", "entropy"},
        },
        Logistic: config.LogisticConfig{MaxIter: 300},
    }
    require.NoError(t, data.GenerateCustomers(20, 42, cfg.DataPath))
    return cfg
}

func fileExists(t *testing.T, path string) {
    t.Helper()
    _, err := os.Stat(path)
    assert.NoError(t, err, path)
}

func TestRunEndToEnd(t *testing.T) {
    cfg := testConfig(t)
    res, err := New(cfg, zap.NewNop()).Run(context.Background())
    require.NoError(t, err)

    for _, f := range EDAFigures {
        fileExists(t, filepath.Join(cfg.EDADir, f+".jpg"))
    }
    for _, f := range []string{"Logistic_Regression", "Random_Forest", "Feature_Importance"} {
        fileExists(t, filepath.Join(cfg.ResultsDir, f+".jpg"))
    }
    fileExists(t, filepath.Join(cfg.ResultsDir, "ROC_Curve.jpg"))
    fileExists(t, filepath.Join(cfg.ResultsDir, ReportFile))

    var rf models.RandomForest
    require.NoError(t, models.Load(filepath.Join(cfg.ModelsDir, RFModelFile), &rf))
    assert.NotEmpty(t, rf.Trees)
    var lr models.LogisticRegression
    require.NoError(t, models.Load(filepath.Join(cfg.ModelsDir, LogisticModelFile), &lr))
    assert.Len(t, lr.Weights, 19)

    assert.Len(t, res.GridScores, 4)
    assert.Equal(t, 14, res.Reports["rf_train"].Support)
    assert.Equal(t, 6, res.Reports["lr_test"].Support)
}

func TestRunMissingData(t *testing.T) {
    cfg := testConfig(t)
    cfg.DataPath = filepath.Join(t.TempDir(), "missing.csv")
    _, err := New(cfg, zap.NewNop()).Run(context.Background())
    require.Error(t, err)
    assert.True(t, errors.Is(err, data.ErrNotFound))
}

func TestOptionsFromConfig(t *testing.T) {
    cfg := testConfig(t)
    opts := New(cfg, zap.NewNop()).Options()
    assert.Len(t, opts.Grid, 4)
    assert.Equal(t, 300, opts.Logistic.MaxIter)
    assert.Equal(t, cfg.ModelsDir, opts.ModelsDir)
}

func TestValueCounts(t *testing.T) {
    keys, shares := valueCounts([]string{"Single", "Married", "Married", "Unknown"}, true)
    assert.Equal(t, []string{"Married", "Single", "Unknown"}, keys)
    assert.Equal(t, []float64{0.5, 0.25, 0.25}, shares)
}

func TestCurveSizes(t *testing.T) {
    assert.Equal(t, []int{25, 50, 75, 100}, CurveSizes(100, 4, 10))
    assert.Equal(t, []int{10, 14}, CurveSizes(14, 4, 10))
    assert.Equal(t, []int{14}, CurveSizes(14, 0, 2))
}

func TestLearningCurve(t *testing.T) {
    cfg := testConfig(t)
    p := New(cfg, zap.NewNop())
    df, err := p.Load()
    require.NoError(t, err)
    df, err = p.Encode(df)
    require.NoError(t, err)
    s, err := p.Split(df)
    require.NoError(t, err)

    params := models.ForestParams{NEstimators: 5, MaxDepth: 3, MaxFeatures: "sqrt", Criterion: "gini"}
    pts, err := LearningCurve(context.Background(), s, params, 3, 42, cfg.ResultsDir, zap.NewNop())
    require.NoError(t, err)
    require.Len(t, pts, 3)
    assert.Equal(t, 14, pts[2].Size)
    for _, pt := range pts {
        assert.GreaterOrEqual(t, pt.TestAcc, 0.0)
        assert.LessOrEqual(t, pt.TestAcc, 1.0)
    }
    fileExists(t, filepath.Join(cfg.ResultsDir, LearningCurveFigure))

    curve, err := data.ImportData(filepath.Join(cfg.ResultsDir, LearningCurveFile))
    require.NoError(t, err)
    assert.Equal(t, []string{"size", "train_acc", "test_acc"}, curve.Names())
    assert.Equal(t, 3, curve.Nrow())
}
