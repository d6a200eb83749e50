package churn

import (
    "context"
    "os"
    "path/filepath"

    "github.com/go-gota/gota/dataframe"
    "github.com/go-gota/gota/series"
    "github.com/rotisserie/eris"
    "go.uber.org/multierr"
    "go.uber.org/zap"

    "mlsteps/internal/features"
    "mlsteps/internal/metrics"
    "mlsteps/internal/models"
    "mlsteps/internal/plots"
)

const (
    LearningCurveFigure = "Learning_Curve.jpg"
    LearningCurveFile   = "learning_curve.csv"
)

// CurvePoint is the accuracy of a forest fitted on the first Size training rows.
type CurvePoint struct {
    Size     int
    TrainAcc float64
    TestAcc  float64
}

// CurveSizes spreads points training sizes evenly up to n, never below floor.
func CurveSizes(n, points, floor int) []int {
    if points < 1 { points = 1 }
    sizes := make([]int, 0, points)
    for i := 1; i <= points; i++ {
        s := i * n / points
        if s < floor { s = floor }
        if s > n { s = n }
        if len(sizes) > 0 && sizes[len(sizes)-1] == s { continue }
        sizes = append(sizes, s)
    }
    return sizes
}

// LearningCurve refits a forest with params on growing prefixes of the training
// split and writes Learning_Curve.jpg and learning_curve.csv into resultsDir.
func LearningCurve(ctx context.Context, s *features.Split, params models.ForestParams, points int, seed int64, resultsDir string, logger *zap.Logger) ([]CurvePoint, error) {
    sizes := CurveSizes(len(s.XTrain), points, 2)
    out := make([]CurvePoint, 0, len(sizes))
    for _, n := range sizes {
        if err := ctx.Err(); err != nil { return nil, err }
        rf := models.NewRandomForest()
        rf.NEstimators, rf.MaxDepth = params.NEstimators, params.MaxDepth
        rf.MaxFeatures, rf.Criterion = params.MaxFeatures, params.Criterion
        rf.Seed = seed
        if err := rf.Fit(s.XTrain[:n], s.YTrain[:n]); err != nil {
            logger.Error("learning curve fit failed", zap.Int("size", n), zap.Error(err))
            return nil, err
        }
        pt := CurvePoint{
            Size:     n,
            TrainAcc: metrics.Accuracy(s.YTrain[:n], rf.Predict(s.XTrain[:n])),
            TestAcc:  metrics.Accuracy(s.YTest, rf.Predict(s.XTest)),
        }
        logger.Info("learning curve point", zap.Int("size", n), zap.Float64("train", pt.TrainAcc), zap.Float64("test", pt.TestAcc))
        out = append(out, pt)
    }

    if err := writeCurveCSV(filepath.Join(resultsDir, LearningCurveFile), out); err != nil {
        return nil, err
    }
    ns := make([]int, len(out))
    tr := make([]float64, len(out))
    te := make([]float64, len(out))
    for i, pt := range out { ns[i], tr[i], te[i] = pt.Size, pt.TrainAcc, pt.TestAcc }
    if err := plots.LearningCurve(filepath.Join(resultsDir, LearningCurveFigure), ns, tr, te); err != nil {
        logger.Error("learning curve plot failed", zap.Error(err))
        return nil, err
    }
    return out, nil
}

func writeCurveCSV(path string, pts []CurvePoint) (err error) {
    sizes := make([]int, len(pts))
    tr := make([]float64, len(pts))
    te := make([]float64, len(pts))
    for i, pt := range pts { sizes[i], tr[i], te[i] = pt.Size, pt.TrainAcc, pt.TestAcc }
    df := dataframe.New(
        series.New(sizes, series.Int, "size"),
        series.New(tr, series.Float, "train_acc"),
        series.New(te, series.Float, "test_acc"),
    )

    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
        return eris.Wrap(err, "create results dir")
    }
    f, err := os.Create(path)
    if err != nil { return eris.Wrapf(err, "create %s", path) }
    defer func() { err = multierr.Append(err, f.Close()) }()
    return eris.Wrapf(df.WriteCSV(f), "write %s", path)
}
