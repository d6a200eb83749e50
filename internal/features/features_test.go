package features

import (
    "errors"
    "path/filepath"
    "sort"
    "testing"

    "github.com/go-gota/gota/dataframe"
    "github.com/go-gota/gota/series"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "mlsteps/internal/data"
)

func sixRows() dataframe.DataFrame {
    return dataframe.New(
        series.New([]string{"M", "F", "M", "F", "M", "F"}, series.String, data.ColGender),
        series.New([]int{1, 0, 0, 0, 1, 1}, series.Int, data.ColChurn),
    )
}

func TestEncoderHelperExactMeans(t *testing.T) {
    df, err := EncoderHelper(sixRows(), []string{data.ColGender}, data.ColChurn)
    require.NoError(t, err)

    enc := df.Col(EncodedName(data.ColGender)).Float()
    // M rows: labels 1,0,1 -> 2/3; F rows: 0,0,1 -> 1/3
    want := []float64{2.0 / 3, 1.0 / 3, 2.0 / 3, 1.0 / 3, 2.0 / 3, 1.0 / 3}
    require.Len(t, enc, 6)
    for i := range want {
        assert.InDelta(t, want[i], enc[i], 1e-12, "row %d", i)
    }
    // source column kept
    assert.Equal(t, 6, df.Col(data.ColGender).Len())
}

func TestEncoderHelperMissingColumn(t *testing.T) {
    _, err := EncoderHelper(sixRows(), []string{data.ColCardCategory}, data.ColChurn)
    require.Error(t, err)
    assert.True(t, errors.Is(err, data.ErrMissingColumn))

    _, err = EncoderHelper(sixRows(), []string{data.ColGender}, "target")
    require.Error(t, err)
    assert.True(t, errors.Is(err, data.ErrMissingColumn))
}

func TestEncoderHelperOrderIndependent(t *testing.T) {
    df := sixRows().Mutate(series.New([]string{"a", "a", "b", "b", "b", "a"}, series.String, data.ColCardCategory))
    a, err := EncoderHelper(df, []string{data.ColGender, data.ColCardCategory}, data.ColChurn)
    require.NoError(t, err)
    b, err := EncoderHelper(df, []string{data.ColCardCategory, data.ColGender}, data.ColChurn)
    require.NoError(t, err)

    for _, c := range []string{data.ColGender, data.ColCardCategory} {
        assert.Equal(t, a.Col(EncodedName(c)).Float(), b.Col(EncodedName(c)).Float())
    }
}

func TestAddChurn(t *testing.T) {
    df := dataframe.New(series.New([]string{data.AttritedCustomer, data.ExistingCustomer}, series.String, data.ColAttritionFlag))
    out, err := AddChurn(df)
    require.NoError(t, err)
    assert.Equal(t, []float64{1, 0}, out.Col(data.ColChurn).Float())
}

func encodedFixture(t *testing.T) dataframe.DataFrame {
    t.Helper()
    path := filepath.Join(t.TempDir(), "bank_data.csv")
    require.NoError(t, data.GenerateCustomers(20, 3, path))
    df, err := data.ImportData(path)
    require.NoError(t, err)
    df, err = AddChurn(df)
    require.NoError(t, err)
    df, err = EncoderHelper(df, CatFeatures, data.ColChurn)
    require.NoError(t, err)
    return df
}

func TestFeatureEngineeringLengths(t *testing.T) {
    s, err := FeatureEngineering(encodedFixture(t), 0.3, 42)
    require.NoError(t, err)

    assert.Equal(t, len(s.XTrain), len(s.YTrain))
    assert.Equal(t, len(s.XTest), len(s.YTest))
    assert.Len(t, s.XTest, 6)
    assert.Len(t, s.XTrain, 14)
    assert.Len(t, s.XTrain[0], len(KeepCols))
    assert.Equal(t, KeepCols, s.FeatureNames)
}

func TestSplitPartitionsRows(t *testing.T) {
    s, err := FeatureEngineering(encodedFixture(t), 0.3, 42)
    require.NoError(t, err)

    seen := map[int]bool{}
    for _, i := range append(append([]int{}, s.TrainIdx...), s.TestIdx...) {
        assert.False(t, seen[i], "row %d on both sides", i)
        seen[i] = true
    }
    all := make([]int, 0, len(seen))
    for i := range seen { all = append(all, i) }
    sort.Ints(all)
    want := make([]int, 20)
    for i := range want { want[i] = i }
    assert.Equal(t, want, all)
}

func TestSplitSeedIsDeterministic(t *testing.T) {
    X := make([][]float64, 10)
    y := make([]int, 10)
    for i := range X { X[i] = []float64{float64(i)}; y[i] = i % 2 }

    a, err := TrainTestSplit(X, y, 0.3, 7)
    require.NoError(t, err)
    b, err := TrainTestSplit(X, y, 0.3, 7)
    require.NoError(t, err)
    assert.Equal(t, a.TestIdx, b.TestIdx)
}

func TestSplitLengthMismatch(t *testing.T) {
    _, err := TrainTestSplit([][]float64{{1}, {2}}, []int{1}, 0.3, 1)
    require.Error(t, err)
    assert.True(t, errors.Is(err, ErrLengthMismatch))
}

func TestFeatureEngineeringMissingFeature(t *testing.T) {
    _, err := FeatureEngineering(sixRows(), 0.3, 1)
    require.Error(t, err)
    assert.True(t, errors.Is(err, data.ErrMissingColumn))
}
