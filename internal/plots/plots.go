// Package plots renders the EDA and evaluation figures as image files.
package plots

import (
    "image/color"
    "os"
    "path/filepath"
    "sort"

    "github.com/rotisserie/eris"
    "gonum.org/v1/plot"
    "gonum.org/v1/plot/palette"
    "gonum.org/v1/plot/plotter"
    "gonum.org/v1/plot/plotutil"
    "gonum.org/v1/plot/vg"
)

const (
    width  = 8 * vg.Inch
    height = 5 * vg.Inch
)

func save(p *plot.Plot, path string, w, h vg.Length) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
        return eris.Wrap(err, "create plot dir")
    }
    return eris.Wrapf(p.Save(w, h, path), "save %s", path)
}

// Histogram plots the distribution of values.
func Histogram(path, title string, values []float64, bins int) error {
    p := plot.New()
    p.Title.Text = title
    p.Y.Label.Text = "count"
    h, err := plotter.NewHist(plotter.Values(values), bins)
    if err != nil { return eris.Wrap(err, "histogram") }
    p.Add(h)
    return save(p, path, width, height)
}

// Bar plots one bar per label.
func Bar(path, title string, labels []string, values []float64) error {
    p := plot.New()
    p.Title.Text = title
    bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(24))
    if err != nil { return eris.Wrap(err, "bar chart") }
    bars.Color = plotutil.Color(0)
    p.Add(bars)
    p.NominalX(labels...)
    return save(p, path, width, height)
}

type grid struct{ m [][]float64 }

func (g grid) Dims() (c, r int)       { return len(g.m), len(g.m) }
func (g grid) Z(c, r int) float64     { return g.m[r][c] }
func (g grid) X(c int) float64        { return float64(c) }
func (g grid) Y(r int) float64        { return float64(r) }

// Heatmap plots a square matrix in [-1, 1], such as a correlation matrix.
func Heatmap(path, title string, names []string, m [][]float64) error {
    if len(m) == 0 || len(m) != len(names) { return eris.New("heatmap: matrix and names differ in size") }
    p := plot.New()
    p.Title.Text = title
    hm := plotter.NewHeatMap(grid{m}, palette.Heat(12, 1))
    hm.Min, hm.Max = -1, 1
    p.Add(hm)
    p.NominalX(names...)
    p.NominalY(names...)
    p.X.Tick.Label.Rotation = 1.2
    p.X.Tick.Label.XAlign = -1
    return save(p, path, 12*vg.Inch, 10*vg.Inch)
}

// Curve is one ROC line.
type Curve struct {
    Name string
    FPR  []float64
    TPR  []float64
}

// ROCCurves overlays ROC curves with a chance diagonal.
func ROCCurves(path string, curves []Curve) error {
    p := plot.New()
    p.Title.Text = "ROC curve"
    p.X.Label.Text = "False positive rate"
    p.Y.Label.Text = "True positive rate"
    p.X.Min, p.X.Max, p.Y.Min, p.Y.Max = 0, 1, 0, 1
    p.Legend.Top = false
    p.Legend.Left = false

    args := make([]interface{}, 0, 2*len(curves))
    for _, c := range curves {
        pts := make(plotter.XYs, len(c.FPR))
        for i := range c.FPR { pts[i].X = c.FPR[i]; pts[i].Y = c.TPR[i] }
        args = append(args, c.Name, pts)
    }
    if err := plotutil.AddLines(p, args...); err != nil { return eris.Wrap(err, "roc lines") }
    diag, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
    if err != nil { return eris.Wrap(err, "roc diagonal") }
    diag.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
    diag.Color = color.Gray{Y: 128}
    p.Add(diag)
    return save(p, path, width, height)
}

// FeatureImportance draws importances as horizontal bars, largest first.
func FeatureImportance(path string, names []string, importances []float64) error {
    if len(names) != len(importances) { return eris.New("feature importance: names and values differ in size") }
    idx := make([]int, len(names))
    for i := range idx { idx[i] = i }
    // ascending, so the largest bar ends up on top
    sort.SliceStable(idx, func(a, b int) bool { return importances[idx[a]] < importances[idx[b]] })
    vals := make(plotter.Values, len(idx))
    labels := make([]string, len(idx))
    for k, i := range idx { vals[k] = importances[i]; labels[k] = names[i] }

    p := plot.New()
    p.Title.Text = "Feature Importance"
    p.X.Label.Text = "Importance"
    bars, err := plotter.NewBarChart(vals, vg.Points(12))
    if err != nil { return eris.Wrap(err, "importance bars") }
    bars.Horizontal = true
    bars.Color = plotutil.Color(1)
    p.Add(bars)
    p.NominalY(labels...)
    return save(p, path, 10*vg.Inch, 8*vg.Inch)
}

// Text renders lines of monospaced-looking text, one per row, top to bottom.
func Text(path, title string, lines []string) error {
    p := plot.New()
    p.Title.Text = title
    p.HideAxes()
    n := len(lines)
    xys := make(plotter.XYs, n)
    for i := range lines { xys[i].X = 0; xys[i].Y = float64(n - i) }
    labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: lines})
    if err != nil { return eris.Wrap(err, "text labels") }
    p.Add(labels)
    p.X.Min, p.X.Max = 0, 1
    p.Y.Min, p.Y.Max = 0, float64(n+1)
    return save(p, path, 7*vg.Inch, 0.3*vg.Inch*vg.Length(n+3))
}

// LearningCurve plots train and test accuracy against training set size.
func LearningCurve(path string, sizes []int, trainAcc, testAcc []float64) error {
    p := plot.New()
    p.Title.Text = "Learning curve"
    p.X.Label.Text = "Training samples"
    p.Y.Label.Text = "Accuracy"
    p.Y.Min, p.Y.Max = 0, 1

    toXY := func(ys []float64) plotter.XYs {
        pts := make(plotter.XYs, len(sizes))
        for i := range sizes { pts[i].X = float64(sizes[i]); pts[i].Y = ys[i] }
        return pts
    }
    if err := plotutil.AddLinePoints(p, "Train", toXY(trainAcc), "Test", toXY(testAcc)); err != nil {
        return eris.Wrap(err, "learning curve lines")
    }
    return save(p, path, width, 4*vg.Inch)
}
