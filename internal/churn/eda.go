package churn

import (
    "math"
    "path/filepath"
    "sort"

    "github.com/go-gota/gota/dataframe"
    "github.com/go-gota/gota/series"
    "go.uber.org/zap"
    "gonum.org/v1/gonum/stat"

    "mlsteps/internal/data"
    "mlsteps/internal/plots"
)

// EDAFigures are the file stems written by PerformEDA.
var EDAFigures = []string{data.ColChurn, data.ColCustomerAge, data.ColMaritalStatus, data.ColTransCt, "Heatmap"}

// PerformEDA writes the exploratory figures for a churn table into dir.
func PerformEDA(df dataframe.DataFrame, dir string, logger *zap.Logger) error {
    if err := data.RequireColumns(df, data.ColChurn, data.ColCustomerAge, data.ColMaritalStatus, data.ColTransCt); err != nil {
        logger.Error("EDA: missing columns", zap.Error(err))
        return err
    }
    fig := func(name string) string { return filepath.Join(dir, name+".jpg") }

    if err := plots.Histogram(fig(data.ColChurn), data.ColChurn, df.Col(data.ColChurn).Float(), 2); err != nil {
        return err
    }
    if err := plots.Histogram(fig(data.ColCustomerAge), data.ColCustomerAge, df.Col(data.ColCustomerAge).Float(), 20); err != nil {
        return err
    }
    labels, shares := valueCounts(df.Col(data.ColMaritalStatus).Records(), true)
    if err := plots.Bar(fig(data.ColMaritalStatus), data.ColMaritalStatus, labels, shares); err != nil {
        return err
    }
    if err := plots.Histogram(fig(data.ColTransCt), data.ColTransCt, df.Col(data.ColTransCt).Float(), 30); err != nil {
        return err
    }
    names, corr := correlation(df)
    if err := plots.Heatmap(fig("Heatmap"), "Correlation", names, corr); err != nil {
        return err
    }
    logger.Info("EDA figures written", zap.String("dir", dir), zap.Strings("figures", EDAFigures))
    return nil
}

// valueCounts returns distinct values ordered by frequency, as counts or shares.
func valueCounts(vals []string, normalize bool) ([]string, []float64) {
    counts := map[string]float64{}
    for _, v := range vals { counts[v]++ }
    keys := make([]string, 0, len(counts))
    for k := range counts { keys = append(keys, k) }
    sort.Slice(keys, func(i, j int) bool {
        if counts[keys[i]] != counts[keys[j]] { return counts[keys[i]] > counts[keys[j]] }
        return keys[i] < keys[j]
    })
    out := make([]float64, len(keys))
    for i, k := range keys {
        out[i] = counts[k]
        if normalize && len(vals) > 0 { out[i] /= float64(len(vals)) }
    }
    return keys, out
}

// correlation is the Pearson matrix of the numeric columns. Undefined entries are 0.
func correlation(df dataframe.DataFrame) ([]string, [][]float64) {
    var names []string
    var cols [][]float64
    for _, n := range df.Names() {
        s := df.Col(n)
        if s.Type() != series.Int && s.Type() != series.Float { continue }
        names = append(names, n)
        cols = append(cols, s.Float())
    }
    m := make([][]float64, len(cols))
    for i := range cols {
        m[i] = make([]float64, len(cols))
        for j := range cols {
            c := stat.Correlation(cols[i], cols[j], nil)
            if math.IsNaN(c) { c = 0 }
            m[i][j] = c
        }
    }
    return names, m
}
