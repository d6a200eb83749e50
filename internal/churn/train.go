package churn

import (
    "context"
    "os"
    "path/filepath"
    "strconv"
    "strings"

    "github.com/rotisserie/eris"
    "go.uber.org/zap"

    "mlsteps/internal/features"
    "mlsteps/internal/metrics"
    "mlsteps/internal/models"
    "mlsteps/internal/plots"
)

const (
    RFModelFile       = "rfc_model.gob"
    LogisticModelFile = "logistic_model.gob"
    ReportFile        = "classification_report.txt"
)

// ResultFigures are the file stems written by TrainModels.
var ResultFigures = []string{"Logistic_Regression", "Random_Forest", "Feature_Importance", "ROC_Curve"}

// TrainOptions carries output locations and hyperparameters for TrainModels.
type TrainOptions struct {
    ResultsDir string
    ModelsDir  string
    Seed       int64
    CVFolds    int
    Grid       []models.ForestParams
    Logistic   models.LogisticRegression
}

// TrainResult is what a training run produced besides the files on disk.
type TrainResult struct {
    Forest     *models.RandomForest
    Logistic   *models.LogisticRegression
    GridScores []models.GridScore
    Reports    map[string]metrics.Report
    AUC        map[string]float64
}

// TrainModels fits both classifiers, persists them and writes the reports and figures.
// Files are overwritten; models already saved stay on disk if a later figure fails.
func TrainModels(ctx context.Context, s *features.Split, opts TrainOptions, logger *zap.Logger) (*TrainResult, error) {
    if len(s.XTrain) != len(s.YTrain) || len(s.XTest) != len(s.YTest) {
        logger.Error("train models: mismatched length for x & y")
        return nil, features.ErrLengthMismatch
    }

    gs := &models.GridSearch{Grid: opts.Grid, Folds: opts.CVFolds, Seed: opts.Seed}
    rf, scores, err := gs.Fit(ctx, s.XTrain, s.YTrain)
    if err != nil {
        logger.Error("random forest grid search failed", zap.Error(err))
        return nil, err
    }
    logger.Info("random forest fitted",
        zap.Int("n_estimators", rf.NEstimators),
        zap.Int("max_depth", rf.MaxDepth),
        zap.String("max_features", rf.MaxFeatures),
        zap.String("criterion", rf.Criterion),
    )

    lr := opts.Logistic
    if err := lr.Fit(s.XTrain, s.YTrain); err != nil {
        logger.Error("logistic regression fit failed", zap.Error(err))
        return nil, err
    }
    logger.Info("logistic regression fitted", zap.Int("max_iter", lr.MaxIter))

    for _, m := range []struct {
        file  string
        model any
    }{{RFModelFile, rf}, {LogisticModelFile, &lr}} {
        path := filepath.Join(opts.ModelsDir, m.file)
        if err := models.Save(path, m.model); err != nil {
            logger.Error("save model failed", zap.String("path", path), zap.Error(err))
            return nil, err
        }
        logger.Info("model saved", zap.String("path", path))
    }

    res := &TrainResult{Forest: rf, Logistic: &lr, GridScores: scores, Reports: map[string]metrics.Report{}, AUC: map[string]float64{}}
    for _, c := range []struct {
        key   string
        model models.Model
    }{{"rf", rf}, {"lr", &lr}} {
        res.Reports[c.key+"_train"] = metrics.ClassificationReport(s.YTrain, c.model.Predict(s.XTrain))
        res.Reports[c.key+"_test"] = metrics.ClassificationReport(s.YTest, c.model.Predict(s.XTest))
    }

    if err := writeReports(opts.ResultsDir, res); err != nil {
        logger.Error("classification report generation failed", zap.Error(err))
        return nil, err
    }

    fprRF, tprRF, aucRF := metrics.ROC(s.YTest, rf.PredictProba(s.XTest))
    fprLR, tprLR, aucLR := metrics.ROC(s.YTest, lr.PredictProba(s.XTest))
    res.AUC["rf"], res.AUC["lr"] = aucRF, aucLR
    err = plots.ROCCurves(filepath.Join(opts.ResultsDir, "ROC_Curve.jpg"), []plots.Curve{
        {Name: "Random Forest (AUC " + metrics.FormatAUC(aucRF) + ")", FPR: fprRF, TPR: tprRF},
        {Name: "Logistic Regression (AUC " + metrics.FormatAUC(aucLR) + ")", FPR: fprLR, TPR: tprLR},
    })
    if err != nil {
        logger.Error("roc curve generation failed", zap.Error(err))
        return nil, err
    }

    names := s.FeatureNames
    if len(names) != len(rf.FeatureImportances) {
        names = make([]string, len(rf.FeatureImportances))
        for i := range names { names[i] = "f" + strconv.Itoa(i) }
    }
    if err := plots.FeatureImportance(filepath.Join(opts.ResultsDir, "Feature_Importance.jpg"), names, rf.FeatureImportances); err != nil {
        logger.Error("feature importance generation failed", zap.Error(err))
        return nil, err
    }

    logger.Info("train models: PASSED",
        zap.Float64("rf_test_accuracy", res.Reports["rf_test"].Accuracy),
        zap.Float64("lr_test_accuracy", res.Reports["lr_test"].Accuracy),
        zap.Float64("rf_auc", aucRF),
        zap.Float64("lr_auc", aucLR),
    )
    return res, nil
}

func writeReports(dir string, res *TrainResult) error {
    sections := []struct {
        title, file, train, test string
    }{
        {"Random Forest", "Random_Forest.jpg", "rf_train", "rf_test"},
        {"Logistic Regression", "Logistic_Regression.jpg", "lr_train", "lr_test"},
    }
    var text strings.Builder
    for _, sec := range sections {
        lines := []string{sec.title + " Train"}
        lines = append(lines, res.Reports[sec.train].Lines()...)
        lines = append(lines, "", sec.title+" Test")
        lines = append(lines, res.Reports[sec.test].Lines()...)
        if err := plots.Text(filepath.Join(dir, sec.file), sec.title, lines); err != nil {
            return err
        }
        text.WriteString(strings.Join(lines, "\n"))
        text.WriteString("\n\n")
    }
    path := filepath.Join(dir, ReportFile)
    return eris.Wrapf(os.WriteFile(path, []byte(text.String()), 0o644), "write %s", path)
}
