package models

import (
    "math"

    "github.com/rotisserie/eris"
    "gonum.org/v1/gonum/floats"
    "gonum.org/v1/gonum/mat"
    "gonum.org/v1/gonum/stat"
)

// LogisticRegression is an L2-regularized binary logistic regression trained with
// full-batch gradient descent on standardized features.
type LogisticRegression struct {
    MaxIter      int
    LearningRate float64
    // L2 weights the ridge penalty added to the gradient.
    L2      float64
    Tol     float64
    Weights []float64
    Bias    float64
    Means   []float64
    Scales  []float64
}

func NewLogisticRegression() *LogisticRegression {
    return &LogisticRegression{MaxIter: 3000, LearningRate: 0.1, L2: 1.0, Tol: 1e-6}
}

func (lr *LogisticRegression) Name() string { return "LogisticRegression" }

func sigmoid(z float64) float64 { return 1.0 / (1.0 + math.Exp(-z)) }

func (lr *LogisticRegression) Fit(X [][]float64, y []int) error {
    n := len(X)
    if n == 0 { return eris.New("logistic regression: empty training set") }
    if n != len(y) { return eris.Errorf("logistic regression: %d rows but %d labels", n, len(y)) }
    d := len(X[0])

    lr.Means = make([]float64, d)
    lr.Scales = make([]float64, d)
    col := make([]float64, n)
    for j := 0; j < d; j++ {
        for i := 0; i < n; i++ { col[i] = X[i][j] }
        m, s := stat.MeanStdDev(col, nil)
        if s == 0 || math.IsNaN(s) { s = 1 }
        lr.Means[j], lr.Scales[j] = m, s
    }
    xs := lr.standardize(X)

    yv := mat.NewVecDense(n, nil)
    for i := range y { yv.SetVec(i, float64(y[i])) }

    w := mat.NewVecDense(d, nil)
    b := 0.0
    z := mat.NewVecDense(n, nil)
    r := mat.NewVecDense(n, nil)
    grad := mat.NewVecDense(d, nil)
    fn := float64(n)
    for it := 0; it < lr.MaxIter; it++ {
        z.MulVec(xs, w)
        for i := 0; i < n; i++ { r.SetVec(i, sigmoid(z.AtVec(i)+b)) }
        r.SubVec(r, yv)

        grad.MulVec(xs.T(), r)
        grad.AddScaledVec(grad, lr.L2, w)
        grad.ScaleVec(1/fn, grad)
        gb := mat.Sum(r) / fn

        w.AddScaledVec(w, -lr.LearningRate, grad)
        b -= lr.LearningRate * gb

        if floats.Norm(grad.RawVector().Data, math.Inf(1)) < lr.Tol && math.Abs(gb) < lr.Tol {
            break
        }
    }
    lr.Weights = append([]float64(nil), w.RawVector().Data...)
    lr.Bias = b
    return nil
}

func (lr *LogisticRegression) standardize(X [][]float64) *mat.Dense {
    d := len(lr.Means)
    out := mat.NewDense(len(X), d, nil)
    for i, row := range X {
        for j := 0; j < d; j++ { out.Set(i, j, (row[j]-lr.Means[j])/lr.Scales[j]) }
    }
    return out
}

func (lr *LogisticRegression) PredictProba(X [][]float64) []float64 {
    out := make([]float64, len(X))
    if len(X) == 0 { return out }
    if len(lr.Weights) == 0 { for i := range out { out[i] = 0.5 }; return out }
    z := mat.NewVecDense(len(X), nil)
    z.MulVec(lr.standardize(X), mat.NewVecDense(len(lr.Weights), lr.Weights))
    for i := range out { out[i] = sigmoid(z.AtVec(i) + lr.Bias) }
    return out
}

func (lr *LogisticRegression) Predict(X [][]float64) []int {
    return probaToPred(lr.PredictProba(X))
}
