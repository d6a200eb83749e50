package models

import (
    "context"
    "errors"
    "math"
    "math/rand"
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "mlsteps/internal/data"
)

// separable returns rows where feature 0 decides the class and feature 1 is noise.
func separable(n int, seed int64) ([][]float64, []int) {
    rng := rand.New(rand.NewSource(seed))
    X := make([][]float64, n)
    y := make([]int, n)
    for i := range X {
        c := i % 2
        X[i] = []float64{float64(c)*10 + rng.Float64(), rng.Float64()}
        y[i] = c
    }
    return X, y
}

func TestDecisionTreeSeparable(t *testing.T) {
    X, y := separable(40, 1)
    dt := NewDecisionTree()
    require.NoError(t, dt.Fit(X, y))
    assert.Equal(t, y, dt.Predict(X))
    assert.InDelta(t, 1.0, dt.Importances[0], 1e-9)
    assert.InDelta(t, 0.0, dt.Importances[1], 1e-9)
}

func TestDecisionTreeEntropy(t *testing.T) {
    X, y := separable(40, 2)
    dt := NewDecisionTree()
    dt.Criterion = CriterionEntropy
    require.NoError(t, dt.Fit(X, y))
    assert.Equal(t, y, dt.Predict(X))
}

func TestDecisionTreeRejectsUnknownCriterion(t *testing.T) {
    X, y := separable(4, 2)
    dt := NewDecisionTree()
    dt.Criterion = "mse"
    assert.Error(t, dt.Fit(X, y))
}

func TestRandomForestImportances(t *testing.T) {
    X, y := separable(60, 3)
    rf := NewRandomForest()
    rf.NEstimators = 20
    rf.MaxFeatures = "all"
    rf.Seed = 5
    require.NoError(t, rf.Fit(X, y))

    assert.Len(t, rf.Trees, 20)
    sum := 0.0
    for _, v := range rf.FeatureImportances { sum += v }
    assert.InDelta(t, 1.0, sum, 1e-9)
    assert.Greater(t, rf.FeatureImportances[0], rf.FeatureImportances[1])
    assert.GreaterOrEqual(t, accuracy(y, rf.Predict(X)), 0.9)
}

func TestRandomForestSeedIsDeterministic(t *testing.T) {
    X, y := separable(30, 4)
    a := NewRandomForest()
    a.NEstimators, a.Seed = 5, 11
    b := NewRandomForest()
    b.NEstimators, b.Seed = 5, 11
    require.NoError(t, a.Fit(X, y))
    require.NoError(t, b.Fit(X, y))
    assert.Equal(t, a.PredictProba(X), b.PredictProba(X))
}

func TestResolveMaxFeatures(t *testing.T) {
    k, err := ResolveMaxFeatures("sqrt", 19)
    require.NoError(t, err)
    assert.Equal(t, 4, k)
    k, err = ResolveMaxFeatures("log2", 19)
    require.NoError(t, err)
    assert.Equal(t, 4, k)
    k, err = ResolveMaxFeatures("all", 19)
    require.NoError(t, err)
    assert.Equal(t, 19, k)
    _, err = ResolveMaxFeatures("half", 19)
    assert.Error(t, err)
}

func TestLogisticRegressionSeparable(t *testing.T) {
    X, y := separable(40, 5)
    lr := NewLogisticRegression()
    lr.MaxIter = 500
    require.NoError(t, lr.Fit(X, y))

    assert.Equal(t, y, lr.Predict(X))
    assert.Greater(t, lr.Weights[0], 0.0)
    for _, p := range lr.PredictProba(X) {
        assert.False(t, math.IsNaN(p))
    }
}

func TestLogisticRegressionConstantColumn(t *testing.T) {
    X := [][]float64{{0, 1}, {1, 1}, {2, 1}, {3, 1}}
    y := []int{0, 0, 1, 1}
    lr := NewLogisticRegression()
    require.NoError(t, lr.Fit(X, y))
    assert.Equal(t, y, lr.Predict(X))
}

func TestGridSearchPicksAndRefits(t *testing.T) {
    X, y := separable(30, 6)
    gs := &GridSearch{
        Grid:  ParamGrid([]int{3, 5}, []int{1, 3}, []string{"sqrt"}, []string{CriterionGini, CriterionEntropy}),
        Folds: 3,
        Seed:  1,
    }
    require.Len(t, gs.Grid, 8)

    rf, scores, err := gs.Fit(context.Background(), X, y)
    require.NoError(t, err)
    require.Len(t, scores, 8)
    for i, s := range scores {
        assert.Equal(t, gs.Grid[i], s.Params)
        assert.GreaterOrEqual(t, s.Score, 0.0)
        assert.LessOrEqual(t, s.Score, 1.0)
    }
    assert.NotEmpty(t, rf.Trees)
    assert.GreaterOrEqual(t, accuracy(y, rf.Predict(X)), 0.9)
}

func TestGridSearchEmptyGrid(t *testing.T) {
    X, y := separable(10, 7)
    _, _, err := (&GridSearch{}).Fit(context.Background(), X, y)
    assert.Error(t, err)
}

func TestGradientBoostingRegressor(t *testing.T) {
    X := make([][]float64, 50)
    y := make([]float64, 50)
    for i := range X {
        X[i] = []float64{float64(i)}
        y[i] = 3 * float64(i)
    }
    gb := NewGradientBoostingRegressor()
    require.NoError(t, gb.Fit(X, y))

    mse := func(p []float64) float64 {
        s := 0.0
        for i := range p { d := p[i] - y[i]; s += d * d }
        return s / float64(len(p))
    }
    base := make([]float64, len(y))
    for i := range base { base[i] = gb.Init }
    assert.Less(t, mse(gb.Predict(X)), mse(base)/10)
}

func TestSaveLoadRandomForest(t *testing.T) {
    X, y := separable(20, 8)
    rf := NewRandomForest()
    rf.NEstimators = 3
    require.NoError(t, rf.Fit(X, y))

    path := filepath.Join(t.TempDir(), "models", "rfc_model.gob")
    require.NoError(t, Save(path, rf))

    var got RandomForest
    require.NoError(t, Load(path, &got))
    assert.Equal(t, rf.PredictProba(X), got.PredictProba(X))
}

func TestLoadMissingModel(t *testing.T) {
    var rf RandomForest
    err := Load(filepath.Join(t.TempDir(), "nope.gob"), &rf)
    require.Error(t, err)
    assert.True(t, errors.Is(err, data.ErrNotFound))
}
