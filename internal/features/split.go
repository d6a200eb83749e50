package features

import (
    "math"
    "math/rand"

    "github.com/go-gota/gota/dataframe"
    "github.com/rotisserie/eris"

    "mlsteps/internal/data"
)

var ErrLengthMismatch = eris.New("feature and label lengths differ")

// Split is a row-aligned train/test partition. TrainIdx and TestIdx are the
// source row numbers of each side.
type Split struct {
    FeatureNames []string
    XTrain       [][]float64
    XTest        [][]float64
    YTrain       []int
    YTest        []int
    TrainIdx     []int
    TestIdx      []int
}

// Matrix extracts the named columns as a row-major matrix.
func Matrix(df dataframe.DataFrame, cols []string) ([][]float64, error) {
    if err := data.RequireColumns(df, cols...); err != nil {
        return nil, err
    }
    n := df.Nrow()
    X := make([][]float64, n)
    for i := range X { X[i] = make([]float64, len(cols)) }
    for j, c := range cols {
        vals := df.Col(c).Float()
        for i := 0; i < n; i++ { X[i][j] = vals[i] }
    }
    return X, nil
}

// Labels extracts a 0/1 column.
func Labels(df dataframe.DataFrame, col string) ([]int, error) {
    if err := data.RequireColumns(df, col); err != nil {
        return nil, err
    }
    vals := df.Col(col).Float()
    y := make([]int, len(vals))
    for i, v := range vals {
        if v >= 0.5 { y[i] = 1 }
    }
    return y, nil
}

// FeatureEngineering selects KeepCols as features and Churn as the label and
// splits the rows with TrainTestSplit.
func FeatureEngineering(df dataframe.DataFrame, testSize float64, seed int64) (*Split, error) {
    X, err := Matrix(df, KeepCols)
    if err != nil { return nil, err }
    y, err := Labels(df, data.ColChurn)
    if err != nil { return nil, err }
    s, err := TrainTestSplit(X, y, testSize, seed)
    if err != nil { return nil, err }
    s.FeatureNames = append([]string(nil), KeepCols...)
    return s, nil
}

// TrainTestSplit shuffles row indexes with a seeded source and puts the first
// ceil(testSize*n) of them in the test side. No stratification.
func TrainTestSplit(X [][]float64, y []int, testSize float64, seed int64) (*Split, error) {
    if len(X) != len(y) {
        return nil, eris.Wrapf(ErrLengthMismatch, "X has %d rows, y has %d", len(X), len(y))
    }
    n := len(X)
    nTest := int(math.Ceil(testSize * float64(n)))
    if nTest > n { nTest = n }

    rng := rand.New(rand.NewSource(seed))
    perm := rng.Perm(n)
    s := &Split{
        XTrain:   make([][]float64, 0, n-nTest),
        XTest:    make([][]float64, 0, nTest),
        YTrain:   make([]int, 0, n-nTest),
        YTest:    make([]int, 0, nTest),
        TrainIdx: make([]int, 0, n-nTest),
        TestIdx:  make([]int, 0, nTest),
    }
    for k, i := range perm {
        if k < nTest {
            s.XTest = append(s.XTest, X[i]); s.YTest = append(s.YTest, y[i]); s.TestIdx = append(s.TestIdx, i)
        } else {
            s.XTrain = append(s.XTrain, X[i]); s.YTrain = append(s.YTrain, y[i]); s.TrainIdx = append(s.TrainIdx, i)
        }
    }
    if len(s.XTrain) != len(s.YTrain) || len(s.XTest) != len(s.YTest) {
        return nil, ErrLengthMismatch
    }
    return s, nil
}
