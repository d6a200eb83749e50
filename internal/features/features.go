package features

import (
    "github.com/go-gota/gota/dataframe"
    "github.com/go-gota/gota/series"
    "github.com/rotisserie/eris"

    "mlsteps/internal/data"
)

// CatFeatures are the nominal columns replaced by their per-category churn rate.
var CatFeatures = []string{
    data.ColGender,
    data.ColEducationLevel,
    data.ColMaritalStatus,
    data.ColIncomeCategory,
    data.ColCardCategory,
}

// KeepCols is the fixed feature vector fed to both classifiers.
var KeepCols = []string{
    data.ColCustomerAge, data.ColDependentCount, data.ColMonthsOnBook,
    data.ColRelationshipCnt, data.ColMonthsInactive, data.ColContactsCount,
    data.ColCreditLimit, data.ColRevolvingBal, data.ColAvgOpenToBuy,
    data.ColAmtChngQ4Q1, data.ColTransAmt, data.ColTransCt,
    data.ColCtChngQ4Q1, data.ColAvgUtilization,
    EncodedName(data.ColGender), EncodedName(data.ColEducationLevel),
    EncodedName(data.ColMaritalStatus), EncodedName(data.ColIncomeCategory),
    EncodedName(data.ColCardCategory),
}

// EncodedName is the name of the column holding the encoding of col.
func EncodedName(col string) string { return col + "_" + data.ColChurn }

// AddChurn derives the binary Churn column from Attrition_Flag.
func AddChurn(df dataframe.DataFrame) (dataframe.DataFrame, error) {
    if err := data.RequireColumns(df, data.ColAttritionFlag); err != nil {
        return df, err
    }
    flags := df.Col(data.ColAttritionFlag).Records()
    churn := make([]int, len(flags))
    for i, f := range flags {
        if f == data.AttritedCustomer { churn[i] = 1 }
    }
    out := df.Mutate(series.New(churn, series.Int, data.ColChurn))
    return out, eris.Wrap(out.Err, "add churn column")
}

// EncoderHelper appends, for every column in cols, a numeric column whose value on each
// row is the mean of target over all rows sharing that row's category.
func EncoderHelper(df dataframe.DataFrame, cols []string, target string) (dataframe.DataFrame, error) {
    if err := data.RequireColumns(df, append([]string{target}, cols...)...); err != nil {
        return df, err
    }
    y := df.Col(target).Float()
    out := df
    for _, col := range cols {
        cats := df.Col(col).Records()
        means := GroupMeans(cats, y)
        enc := make([]float64, len(cats))
        for i, c := range cats { enc[i] = means[c] }
        out = out.Mutate(series.New(enc, series.Float, EncodedName(col)))
        if out.Err != nil {
            return df, eris.Wrapf(out.Err, "encode %s", col)
        }
    }
    return out, nil
}

// GroupMeans returns the mean of y for each distinct key.
func GroupMeans(keys []string, y []float64) map[string]float64 {
    sums := map[string]float64{}
    counts := map[string]float64{}
    for i, k := range keys {
        sums[k] += y[i]
        counts[k]++
    }
    out := make(map[string]float64, len(sums))
    for k, s := range sums { out[k] = s / counts[k] }
    return out
}
