package models

import (
    "math"
    "math/rand"

    "github.com/rotisserie/eris"
)

type RandomForest struct {
    NEstimators        int
    MaxDepth           int
    MinSamples         int
    MaxThresholdsPerFe int
    // MaxFeatures is "sqrt", "log2" or "all".
    MaxFeatures        string
    Criterion          string
    Seed               int64
    Trees              []*DecisionTree
    FeatureImportances []float64
}

func NewRandomForest() *RandomForest {
    return &RandomForest{NEstimators: 100, MaxDepth: 8, MinSamples: 2, MaxThresholdsPerFe: 32, MaxFeatures: "sqrt", Criterion: CriterionGini, Trees: []*DecisionTree{}}
}

func (rf *RandomForest) Name() string { return "RandomForest" }

// ResolveMaxFeatures turns a max_features setting into a feature count for nFeats columns.
func ResolveMaxFeatures(setting string, nFeats int) (int, error) {
    var k float64
    switch setting {
    case "sqrt", "auto", "":
        k = math.Sqrt(float64(nFeats))
    case "log2":
        k = math.Log2(float64(nFeats))
    case "all":
        return nFeats, nil
    default:
        return 0, eris.Errorf("random forest: unknown max_features %q", setting)
    }
    return int(math.Max(1, math.Min(float64(nFeats), k))), nil
}

func (rf *RandomForest) Fit(X [][]float64, y []int) error {
    if len(X) == 0 { return eris.New("random forest: empty training set") }
    if rf.NEstimators <= 0 { rf.NEstimators = 100 }
    n := len(X)
    nFeats := len(X[0])
    maxFeats, err := ResolveMaxFeatures(rf.MaxFeatures, nFeats)
    if err != nil { return err }

    rng := rand.New(rand.NewSource(rf.Seed))
    rf.Trees = make([]*DecisionTree, 0, rf.NEstimators)
    rf.FeatureImportances = make([]float64, nFeats)
    for k := 0; k < rf.NEstimators; k++ {
        Xb := make([][]float64, n)
        yb := make([]int, n)
        for i := 0; i < n; i++ { j := rng.Intn(n); Xb[i] = X[j]; yb[i] = y[j] }
        dt := NewDecisionTree()
        dt.MaxDepth = rf.MaxDepth
        dt.MinSamplesSplit = rf.MinSamples
        dt.MaxThresholdsPerFe = rf.MaxThresholdsPerFe
        dt.MaxFeatures = maxFeats
        dt.Criterion = rf.Criterion
        dt.Seed = rng.Int63()
        if err := dt.Fit(Xb, yb); err != nil { return err }
        rf.Trees = append(rf.Trees, dt)
        for f, v := range dt.Importances { rf.FeatureImportances[f] += v }
    }
    total := 0.0
    for _, v := range rf.FeatureImportances { total += v }
    if total > 0 {
        for f := range rf.FeatureImportances { rf.FeatureImportances[f] /= total }
    }
    return nil
}

func (rf *RandomForest) Predict(X [][]float64) []int {
    return probaToPred(rf.PredictProba(X))
}

func (rf *RandomForest) PredictProba(X [][]float64) []float64 {
    n := len(X)
    if len(rf.Trees) == 0 { out := make([]float64, n); for i := range out { out[i] = 0.5 }; return out }
    out := make([]float64, n)
    for _, dt := range rf.Trees {
        p := dt.PredictProba(X)
        for i := 0; i < n; i++ { out[i] += p[i] }
    }
    m := float64(len(rf.Trees))
    for i := 0; i < n; i++ { out[i] /= m }
    return out
}
