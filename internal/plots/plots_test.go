package plots

import (
    "os"
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func requireFile(t *testing.T, path string) {
    t.Helper()
    st, err := os.Stat(path)
    require.NoError(t, err)
    assert.Greater(t, st.Size(), int64(0))
}

func TestPlotsWriteJPEG(t *testing.T) {
    dir := t.TempDir()

    p := filepath.Join(dir, "eda", "Customer_Age.jpg")
    require.NoError(t, Histogram(p, "Customer_Age", []float64{30, 41, 45, 52, 60, 33}, 5))
    requireFile(t, p)

    p = filepath.Join(dir, "eda", "Marital_Status.jpg")
    require.NoError(t, Bar(p, "Marital_Status", []string{"Married", "Single"}, []float64{0.6, 0.4}))
    requireFile(t, p)

    p = filepath.Join(dir, "eda", "Heatmap.jpg")
    require.NoError(t, Heatmap(p, "corr", []string{"a", "b"}, [][]float64{{1, -0.3}, {-0.3, 1}}))
    requireFile(t, p)

    p = filepath.Join(dir, "results", "ROC_Curve.jpg")
    require.NoError(t, ROCCurves(p, []Curve{
        {Name: "lr", FPR: []float64{0, 0.5, 1}, TPR: []float64{0, 0.8, 1}},
        {Name: "rf", FPR: []float64{0, 1}, TPR: []float64{0, 1}},
    }))
    requireFile(t, p)

    p = filepath.Join(dir, "results", "Feature_Importance.jpg")
    require.NoError(t, FeatureImportance(p, []string{"x", "y", "z"}, []float64{0.2, 0.5, 0.3}))
    requireFile(t, p)

    p = filepath.Join(dir, "results", "Random_Forest.jpg")
    require.NoError(t, Text(p, "Random Forest", []string{"train", "  precision recall", "", "test"}))
    requireFile(t, p)
}

func TestHeatmapSizeMismatch(t *testing.T) {
    err := Heatmap(filepath.Join(t.TempDir(), "h.jpg"), "x", []string{"a"}, [][]float64{{1, 0}, {0, 1}})
    assert.Error(t, err)
}

func TestFeatureImportanceSizeMismatch(t *testing.T) {
    err := FeatureImportance(filepath.Join(t.TempDir(), "f.jpg"), []string{"a"}, []float64{0.5, 0.5})
    assert.Error(t, err)
}
