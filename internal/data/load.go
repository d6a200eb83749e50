package data

import (
    "os"

    "github.com/go-gota/gota/dataframe"
    "github.com/go-gota/gota/series"
    "github.com/rotisserie/eris"
)

// ImportData reads a CSV file into a dataframe, detecting column types.
func ImportData(path string) (dataframe.DataFrame, error) {
    return read(path)
}

// ImportRaw reads a CSV file keeping every column as text, so values round-trip
// unchanged. Empty cells stay empty rather than becoming NaN.
func ImportRaw(path string) (dataframe.DataFrame, error) {
    return read(path, dataframe.DetectTypes(false), dataframe.DefaultType(series.String), dataframe.NaNValues(nil))
}

func read(path string, opts ...dataframe.LoadOption) (dataframe.DataFrame, error) {
    f, err := os.Open(path)
    if err != nil {
        if os.IsNotExist(err) {
            return dataframe.DataFrame{}, eris.Wrapf(ErrNotFound, "%s", path)
        }
        return dataframe.DataFrame{}, eris.Wrapf(err, "open %s", path)
    }
    defer f.Close()

    df := dataframe.ReadCSV(f, opts...)
    if df.Err != nil {
        return dataframe.DataFrame{}, eris.Wrapf(ErrEmpty, "%s: %v", path, df.Err)
    }
    if df.Nrow() == 0 || df.Ncol() == 0 {
        return dataframe.DataFrame{}, eris.Wrapf(ErrEmpty, "%s", path)
    }
    return df, nil
}

// RequireColumns returns ErrMissingColumn naming the first absent column.
func RequireColumns(df dataframe.DataFrame, cols ...string) error {
    have := make(map[string]bool, df.Ncol())
    for _, n := range df.Names() { have[n] = true }
    for _, c := range cols {
        if !have[c] {
            return eris.Wrapf(ErrMissingColumn, "%q", c)
        }
    }
    return nil
}
