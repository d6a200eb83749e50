package models

// Model is a binary classifier over dense float features.
type Model interface {
    Fit(X [][]float64, y []int) error
    Predict(X [][]float64) []int
    PredictProba(X [][]float64) []float64
    Name() string
}

// Regressor predicts a continuous target.
type Regressor interface {
    Fit(X [][]float64, y []float64) error
    Predict(X [][]float64) []float64
    Name() string
}

var (
    _ Model     = (*DecisionTree)(nil)
    _ Model     = (*RandomForest)(nil)
    _ Model     = (*LogisticRegression)(nil)
    _ Regressor = (*GradientBoostingRegressor)(nil)
)

func probaToPred(ps []float64) []int {
    out := make([]int, len(ps))
    for i := range ps { if ps[i] >= 0.5 { out[i] = 1 } }
    return out
}
