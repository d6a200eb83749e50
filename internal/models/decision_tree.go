package models

import (
    "math"
    "math/rand"

    "github.com/rotisserie/eris"
)

const (
    CriterionGini    = "gini"
    CriterionEntropy = "entropy"
)

type DTNode struct {
    Feature   int
    Threshold float64
    Left      *DTNode
    Right     *DTNode
    IsLeaf    bool
    ProbaLeaf float64
}

type DecisionTree struct {
    MaxDepth           int
    MinSamplesSplit    int
    MaxThresholdsPerFe int
    MaxFeatures        int
    Criterion          string
    Seed               int64
    Root               *DTNode
    // Importances is the normalized total impurity decrease per feature.
    Importances []float64

    rng *rand.Rand
}

func NewDecisionTree() *DecisionTree {
    return &DecisionTree{MaxDepth: 6, MinSamplesSplit: 2, MaxThresholdsPerFe: 64, Criterion: CriterionGini}
}

func (dt *DecisionTree) Name() string { return "DecisionTree" }

func (dt *DecisionTree) Fit(X [][]float64, y []int) error {
    if len(X) == 0 { return eris.New("decision tree: empty training set") }
    if len(X) != len(y) { return eris.Errorf("decision tree: %d rows but %d labels", len(X), len(y)) }
    if dt.Criterion == "" { dt.Criterion = CriterionGini }
    if dt.Criterion != CriterionGini && dt.Criterion != CriterionEntropy {
        return eris.Errorf("decision tree: unknown criterion %q", dt.Criterion)
    }
    dt.rng = rand.New(rand.NewSource(dt.Seed))
    dt.Importances = make([]float64, len(X[0]))
    idx := make([]int, len(X))
    for i := range idx { idx[i] = i }
    dt.Root = dt.build(X, y, idx, 0)

    total := 0.0
    for _, v := range dt.Importances { total += v }
    if total > 0 {
        for i := range dt.Importances { dt.Importances[i] /= total }
    }
    return nil
}

func (dt *DecisionTree) Predict(X [][]float64) []int {
    return probaToPred(dt.PredictProba(X))
}

func (dt *DecisionTree) PredictProba(X [][]float64) []float64 {
    out := make([]float64, len(X))
    for i := range X { out[i] = dt.predictProbaOne(X[i]) }
    return out
}

func (dt *DecisionTree) predictProbaOne(x []float64) float64 {
    n := dt.Root
    if n == nil { return 0.5 }
    for !n.IsLeaf {
        if x[n.Feature] <= n.Threshold { n = n.Left } else { n = n.Right }
        if n == nil { return 0.5 }
    }
    return n.ProbaLeaf
}

func (dt *DecisionTree) build(X [][]float64, y []int, idx []int, depth int) *DTNode {
    node := &DTNode{}
    p := classProba(y, idx)
    if len(idx) < dt.MinSamplesSplit || depth >= dt.MaxDepth || p == 0 || p == 1 {
        node.IsLeaf = true
        node.ProbaLeaf = p
        return node
    }
    bestFeature := -1
    bestThr := 0.0
    bestImp := math.MaxFloat64
    leftIdxBest := []int{}
    rightIdxBest := []int{}

    nFeats := len(X[0])
    feats := dt.pickFeatures(nFeats)
    for _, f := range feats {
        cand := dt.candidateThresholds(X, idx, f)
        for _, thr := range cand {
            lIdx, rIdx := splitIdx(X, idx, f, thr)
            if len(lIdx) == 0 || len(rIdx) == 0 { continue }
            imp := dt.weightedImpurity(y, lIdx, rIdx)
            if imp < bestImp {
                bestImp = imp
                bestFeature = f
                bestThr = thr
                leftIdxBest = lIdx
                rightIdxBest = rIdx
            }
        }
    }

    if bestFeature == -1 {
        node.IsLeaf = true
        node.ProbaLeaf = p
        return node
    }
    dt.Importances[bestFeature] += float64(len(idx)) * (impurity(dt.Criterion, p) - bestImp)
    node.Feature = bestFeature
    node.Threshold = bestThr
    node.Left = dt.build(X, y, leftIdxBest, depth+1)
    node.Right = dt.build(X, y, rightIdxBest, depth+1)
    return node
}

func classProba(y []int, idx []int) float64 {
    if len(idx) == 0 { return 0 }
    sum := 0
    for _, i := range idx { sum += y[i] }
    return float64(sum)/float64(len(idx))
}

func splitIdx(X [][]float64, idx []int, f int, thr float64) ([]int, []int) {
    l := make([]int, 0, len(idx))
    r := make([]int, 0, len(idx))
    for _, i := range idx {
        if X[i][f] <= thr { l = append(l, i) } else { r = append(r, i) }
    }
    return l, r
}

// impurity of a node whose positive-class share is p.
func impurity(criterion string, p float64) float64 {
    if criterion == CriterionEntropy {
        if p <= 0 || p >= 1 { return 0 }
        return -p*math.Log2(p) - (1-p)*math.Log2(1-p)
    }
    return 2 * p * (1 - p)
}

func (dt *DecisionTree) weightedImpurity(y []int, lIdx, rIdx []int) float64 {
    wl := float64(len(lIdx))
    wr := float64(len(rIdx))
    n := wl+wr
    return (wl/n)*impurity(dt.Criterion, classProba(y, lIdx)) + (wr/n)*impurity(dt.Criterion, classProba(y, rIdx))
}

func (dt *DecisionTree) candidateThresholds(X [][]float64, idx []int, f int) []float64 {
    values := make([]float64, len(idx))
    for j, i := range idx { values[j] = X[i][f] }
    dt.rng.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
    m := len(values)
    if dt.MaxThresholdsPerFe > 0 && dt.MaxThresholdsPerFe < m { m = dt.MaxThresholdsPerFe }
    return values[:m]
}

func (dt *DecisionTree) pickFeatures(nFeats int) []int {
    if dt.MaxFeatures <= 0 || dt.MaxFeatures >= nFeats {
        out := make([]int, nFeats)
        for i := 0; i < nFeats; i++ { out[i] = i }
        return out
    }
    return dt.rng.Perm(nFeats)[:dt.MaxFeatures]
}
