package models

import (
    "math"
    "sort"

    "github.com/rotisserie/eris"
)

type gbStump struct {
    Feature   int
    Threshold float64
    LeftVal   float64
    RightVal  float64
}

// GradientBoostingRegressor fits squared-loss residuals with depth-one stumps.
type GradientBoostingRegressor struct {
    NEstimators        int
    LearningRate       float64
    MinSamples         int
    MaxThresholdsPerFe int
    // FeatureNames records the input columns, so a persisted model can select them again.
    FeatureNames []string
    Init         float64
    Trees        []gbStump
}

func NewGradientBoostingRegressor() *GradientBoostingRegressor {
    return &GradientBoostingRegressor{NEstimators: 100, LearningRate: 0.1, MinSamples: 1, MaxThresholdsPerFe: 32}
}

func (gb *GradientBoostingRegressor) Name() string { return "GradientBoostingRegressor" }

func (gb *GradientBoostingRegressor) Fit(X [][]float64, y []float64) error {
    n := len(X)
    if n == 0 { return eris.New("gradient boosting: empty training set") }
    if n != len(y) { return eris.Errorf("gradient boosting: %d rows but %d targets", n, len(y)) }
    sum := 0.0
    for _, v := range y { sum += v }
    gb.Init = sum / float64(n)
    gb.Trees = gb.Trees[:0]
    F := make([]float64, n)
    for i := 0; i < n; i++ { F[i] = gb.Init }

    r := make([]float64, n)
    for m := 0; m < gb.NEstimators; m++ {
        for i := 0; i < n; i++ { r[i] = y[i] - F[i] }

        best := gbStump{Feature: -1}
        bestSSE := math.MaxFloat64
        nFeats := len(X[0])
        for j := 0; j < nFeats; j++ {
            cands := gbCandidateThresholds(X, j, gb.MaxThresholdsPerFe)
            for _, thr := range cands {
                leftSum, leftCount := 0.0, 0.0
                rightSum, rightCount := 0.0, 0.0
                for i := 0; i < n; i++ {
                    if X[i][j] <= thr { leftSum += r[i]; leftCount++ } else { rightSum += r[i]; rightCount++ }
                }
                if leftCount == 0 || rightCount == 0 { continue }
                if int(leftCount) < gb.MinSamples || int(rightCount) < gb.MinSamples { continue }
                leftAvg := leftSum / leftCount
                rightAvg := rightSum / rightCount

                sse := 0.0
                for i := 0; i < n; i++ {
                    d := r[i] - rightAvg
                    if X[i][j] <= thr { d = r[i] - leftAvg }
                    sse += d * d
                }
                if sse < bestSSE {
                    bestSSE = sse
                    best = gbStump{Feature: j, Threshold: thr, LeftVal: leftAvg, RightVal: rightAvg}
                }
            }
        }
        if best.Feature == -1 { break }
        gb.Trees = append(gb.Trees, best)
        for i := 0; i < n; i++ {
            inc := best.LeftVal
            if X[i][best.Feature] > best.Threshold { inc = best.RightVal }
            F[i] += gb.LearningRate * inc
        }
    }
    return nil
}

func (gb *GradientBoostingRegressor) Predict(X [][]float64) []float64 {
    out := make([]float64, len(X))
    for i := range X {
        f := gb.Init
        for _, t := range gb.Trees {
            inc := t.LeftVal
            if X[i][t.Feature] > t.Threshold { inc = t.RightVal }
            f += gb.LearningRate * inc
        }
        out[i] = f
    }
    return out
}

func gbCandidateThresholds(X [][]float64, j int, nCand int) []float64 {
    if nCand <= 0 { nCand = 16 }
    n := len(X)
    vals := make([]float64, n)
    for i := 0; i < n; i++ { vals[i] = X[i][j] }
    sort.Float64s(vals)
    out := make([]float64, 0, nCand)
    for k := 1; k < nCand; k++ {
        idx := int(math.Round(float64(k) / float64(nCand) * float64(n-1)))
        if idx < 0 || idx >= n { continue }
        thr := vals[idx]
        if len(out) == 0 || thr != out[len(out)-1] {
            out = append(out, thr)
        }
    }
    return out
}
