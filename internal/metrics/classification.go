// Package metrics scores binary classifiers and regressors.
package metrics

import (
    "fmt"
    "math"
    "strconv"
    "strings"

    "gonum.org/v1/gonum/integrate"
    "gonum.org/v1/gonum/stat"
)

func Accuracy(y, p []int) float64 {
    if len(y) == 0 { return 0 }
    c := 0
    for i := range y { if y[i] == p[i] { c++ } }
    return float64(c)/float64(len(y))
}

// Confusion counts outcomes treating label 1 as positive.
func Confusion(y, p []int) (tp, fp, tn, fn int) {
    for i := range y {
        pred := p[i]
        if pred == 1 && y[i] == 1 { tp++ } else if pred == 1 && y[i] == 0 { fp++ } else if pred == 0 && y[i] == 0 { tn++ } else if pred == 0 && y[i] == 1 { fn++ }
    }
    return
}

// ClassScore holds precision, recall and f1 for one class (or an average).
type ClassScore struct {
    Label     string
    Precision float64
    Recall    float64
    F1        float64
    Support   int
}

// Report is a per-class breakdown in the usual classification report layout.
type Report struct {
    Classes     []ClassScore
    Accuracy    float64
    MacroAvg    ClassScore
    WeightedAvg ClassScore
    Support     int
}

func score(label string, tp, fp, fn int) ClassScore {
    s := ClassScore{Label: label, Support: tp + fn}
    if tp+fp > 0 { s.Precision = float64(tp) / float64(tp+fp) }
    if tp+fn > 0 { s.Recall = float64(tp) / float64(tp+fn) }
    if s.Precision+s.Recall > 0 { s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall) }
    return s
}

// ClassificationReport scores classes 0 and 1 of a binary prediction.
func ClassificationReport(y, p []int) Report {
    tp, fp, tn, fn := Confusion(y, p)
    neg := score("0", tn, fn, fp)
    pos := score("1", tp, fp, fn)
    r := Report{Classes: []ClassScore{neg, pos}, Accuracy: Accuracy(y, p), Support: len(y)}

    r.MacroAvg = ClassScore{Label: "macro avg", Support: len(y)}
    r.WeightedAvg = ClassScore{Label: "weighted avg", Support: len(y)}
    for _, c := range r.Classes {
        r.MacroAvg.Precision += c.Precision / 2
        r.MacroAvg.Recall += c.Recall / 2
        r.MacroAvg.F1 += c.F1 / 2
        if len(y) > 0 {
            w := float64(c.Support) / float64(len(y))
            r.WeightedAvg.Precision += c.Precision * w
            r.WeightedAvg.Recall += c.Recall * w
            r.WeightedAvg.F1 += c.F1 * w
        }
    }
    return r
}

// Lines renders the report as fixed-width text rows.
func (r Report) Lines() []string {
    row := func(c ClassScore) string {
        return fmt.Sprintf("%12s %9.2f %9.2f %9.2f %9d", c.Label, c.Precision, c.Recall, c.F1, c.Support)
    }
    lines := []string{fmt.Sprintf("%12s %9s %9s %9s %9s", "", "precision", "recall", "f1-score", "support"), ""}
    for _, c := range r.Classes { lines = append(lines, row(c)) }
    lines = append(lines, "",
        fmt.Sprintf("%12s %9s %9s %9.2f %9d", "accuracy", "", "", r.Accuracy, r.Support),
        row(r.MacroAvg),
        row(r.WeightedAvg),
    )
    return lines
}

func (r Report) String() string { return strings.Join(r.Lines(), "\n") + "\n" }

// ROC returns the curve points (ascending false positive rate) and the area under it.
// With a single class present the curve is the diagonal and the AUC is NaN.
func ROC(y []int, scores []float64) (fpr, tpr []float64, auc float64) {
    var pos, neg int
    for _, v := range y { if v == 1 { pos++ } else { neg++ } }
    if pos == 0 || neg == 0 {
        return []float64{0, 1}, []float64{0, 1}, math.NaN()
    }
    s := append([]float64(nil), scores...)
    classes := make([]bool, len(y))
    for i, v := range y { classes[i] = v == 1 }
    stat.SortWeightedLabeled(s, classes, nil)
    tpr, fpr, _ = stat.ROC(nil, s, classes, nil)
    return fpr, tpr, integrate.Trapezoidal(fpr, tpr)
}

// FormatAUC renders an AUC for plot legends.
func FormatAUC(auc float64) string {
    if math.IsNaN(auc) { return "n/a" }
    return strconv.FormatFloat(auc, 'f', 2, 64)
}
