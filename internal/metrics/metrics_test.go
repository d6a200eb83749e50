package metrics

import (
    "math"
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestClassificationReport(t *testing.T) {
    y := []int{1, 1, 1, 0, 0, 0, 0, 0}
    p := []int{1, 1, 0, 1, 0, 0, 0, 0}
    r := ClassificationReport(y, p)

    assert.InDelta(t, 6.0/8, r.Accuracy, 1e-12)
    pos := r.Classes[1]
    assert.InDelta(t, 2.0/3, pos.Precision, 1e-12)
    assert.InDelta(t, 2.0/3, pos.Recall, 1e-12)
    assert.Equal(t, 3, pos.Support)
    neg := r.Classes[0]
    assert.InDelta(t, 4.0/5, neg.Precision, 1e-12)
    assert.InDelta(t, 4.0/5, neg.Recall, 1e-12)
    assert.Equal(t, 5, neg.Support)
    assert.InDelta(t, (2.0/3+4.0/5)/2, r.MacroAvg.F1, 1e-12)

    text := r.String()
    assert.Contains(t, text, "precision")
    assert.Contains(t, text, "weighted avg")
    assert.Len(t, r.Lines(), 8)
}

func TestClassificationReportNoPositives(t *testing.T) {
    r := ClassificationReport([]int{0, 0}, []int{0, 0})
    assert.Equal(t, 1.0, r.Accuracy)
    assert.Equal(t, 0.0, r.Classes[1].Precision)
    assert.Equal(t, 0, r.Classes[1].Support)
}

func TestROCPerfectAndRandom(t *testing.T) {
    fpr, tpr, auc := ROC([]int{0, 0, 1, 1}, []float64{0.1, 0.2, 0.8, 0.9})
    assert.InDelta(t, 1.0, auc, 1e-12)
    assert.Equal(t, 0.0, fpr[0])
    assert.Equal(t, 1.0, tpr[len(tpr)-1])

    _, _, auc = ROC([]int{0, 1, 0, 1}, []float64{0.5, 0.5, 0.5, 0.5})
    assert.InDelta(t, 0.5, auc, 1e-12)
}

func TestROCSingleClass(t *testing.T) {
    fpr, tpr, auc := ROC([]int{1, 1}, []float64{0.3, 0.9})
    assert.True(t, math.IsNaN(auc))
    assert.Equal(t, []float64{0, 1}, fpr)
    assert.Equal(t, []float64{0, 1}, tpr)
    assert.Equal(t, "n/a", FormatAUC(auc))
    assert.Equal(t, "0.75", FormatAUC(0.75))
}

func TestRegressionMetrics(t *testing.T) {
    y := []float64{1, 2, 3, 4}
    assert.InDelta(t, 1.0, R2(y, y), 1e-12)
    assert.InDelta(t, 0.0, MAE(y, y), 1e-12)
    assert.InDelta(t, 0.5, MAE(y, []float64{1.5, 2.5, 2.5, 3.5}), 1e-12)
    assert.InDelta(t, 0.25, MSE(y, []float64{1.5, 2.5, 2.5, 3.5}), 1e-12)
}
