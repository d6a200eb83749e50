package models

import (
    "context"
    "math/rand"
    "runtime"

    "github.com/rotisserie/eris"
    "golang.org/x/sync/errgroup"
)

// ForestParams is one point of a random forest hyperparameter grid.
type ForestParams struct {
    NEstimators int
    MaxDepth    int
    MaxFeatures string
    Criterion   string
}

// GridScore is the mean cross-validated accuracy of one grid point.
type GridScore struct {
    Params ForestParams
    Score  float64
}

// ParamGrid expands every combination of the given values.
func ParamGrid(nEstimators, maxDepth []int, maxFeatures, criterion []string) []ForestParams {
    out := make([]ForestParams, 0, len(nEstimators)*len(maxDepth)*len(maxFeatures)*len(criterion))
    for _, ne := range nEstimators {
        for _, md := range maxDepth {
            for _, mf := range maxFeatures {
                for _, c := range criterion {
                    out = append(out, ForestParams{NEstimators: ne, MaxDepth: md, MaxFeatures: mf, Criterion: c})
                }
            }
        }
    }
    return out
}

// GridSearch picks the forest configuration with the best k-fold accuracy and
// refits it on all rows. Grid points are evaluated concurrently.
type GridSearch struct {
    Grid    []ForestParams
    Folds   int
    Seed    int64
    Workers int
}

func (g *GridSearch) newForest(p ForestParams) *RandomForest {
    rf := NewRandomForest()
    rf.NEstimators = p.NEstimators
    rf.MaxDepth = p.MaxDepth
    rf.MaxFeatures = p.MaxFeatures
    rf.Criterion = p.Criterion
    rf.Seed = g.Seed
    return rf
}

// Fit returns the refitted best forest and the score of every grid point, in grid order.
// Ties go to the earlier grid point.
func (g *GridSearch) Fit(ctx context.Context, X [][]float64, y []int) (*RandomForest, []GridScore, error) {
    if len(g.Grid) == 0 { return nil, nil, eris.New("grid search: empty grid") }
    n := len(X)
    if n < 2 { return nil, nil, eris.Errorf("grid search: need at least 2 rows, got %d", n) }
    folds := g.Folds
    if folds < 2 { folds = 2 }
    if folds > n { folds = n }

    perm := rand.New(rand.NewSource(g.Seed)).Perm(n)
    foldOf := make([]int, n)
    for k, i := range perm { foldOf[i] = k % folds }

    workers := g.Workers
    if workers <= 0 { workers = runtime.GOMAXPROCS(0) }

    scores := make([]GridScore, len(g.Grid))
    eg, ctx := errgroup.WithContext(ctx)
    eg.SetLimit(workers)
    for gi, p := range g.Grid {
        gi, p := gi, p
        eg.Go(func() error {
            total := 0.0
            for f := 0; f < folds; f++ {
                if err := ctx.Err(); err != nil { return err }
                var Xtr, Xte [][]float64
                var ytr, yte []int
                for i := 0; i < n; i++ {
                    if foldOf[i] == f { Xte = append(Xte, X[i]); yte = append(yte, y[i]) } else { Xtr = append(Xtr, X[i]); ytr = append(ytr, y[i]) }
                }
                rf := g.newForest(p)
                if err := rf.Fit(Xtr, ytr); err != nil { return eris.Wrapf(err, "grid point %d fold %d", gi, f) }
                total += accuracy(yte, rf.Predict(Xte))
            }
            scores[gi] = GridScore{Params: p, Score: total / float64(folds)}
            return nil
        })
    }
    if err := eg.Wait(); err != nil {
        return nil, nil, err
    }

    best := 0
    for i := range scores {
        if scores[i].Score > scores[best].Score { best = i }
    }
    rf := g.newForest(scores[best].Params)
    if err := rf.Fit(X, y); err != nil {
        return nil, nil, eris.Wrap(err, "refit best forest")
    }
    return rf, scores, nil
}

func accuracy(y, p []int) float64 {
    if len(y) == 0 { return 0 }
    c := 0
    for i := range y { if y[i] == p[i] { c++ } }
    return float64(c)/float64(len(y))
}
