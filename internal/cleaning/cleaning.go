// Package cleaning implements the basic cleaning step of the rental price
// pipeline: drop price outliers and listings outside New York City, normalize
// review dates and publish the result as a new artifact.
package cleaning

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"mlsteps/internal/artifact"
	"mlsteps/internal/data"
)

// NYCBounds is the accepted (longitude, latitude) box, bounds included.
var NYCBounds = geom.NewBounds(geom.XY).Set(-74.25, 40.5, -73.50, 41.2)

// DateLayout is the canonical form of last_review.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"2006-1-2",
}

// Params are the step's command-line arguments.
type Params struct {
	TmpDirectory      string  `validate:"required"`
	InputArtifact     string  `validate:"required"`
	OutputArtifact    string  `validate:"required"`
	OutputType        string  `validate:"required"`
	OutputDescription string  `validate:"required"`
	MinPrice          float64
	MaxPrice          float64 `validate:"gtefield=MinPrice"`
}

var validate = validator.New()

func (p Params) Validate() error {
	return eris.Wrap(validate.Struct(p), "invalid cleaning parameters")
}

// Stats counts what Clean kept and dropped.
type Stats struct {
	Rows         int
	Kept         int
	OutOfRange   int
	OutOfBounds  int
	Unparseable  int
	InvalidDates int
}

// NormalizeDate rewrites a date to YYYY-MM-DD. Values that do not parse become "".
func NormalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), true
		}
	}
	return "", false
}

// Clean keeps rows with price in [minPrice, maxPrice] located inside NYCBounds
// and normalizes last_review. Rows whose price or coordinates do not parse, or
// are NaN or infinite, are dropped.
func Clean(df dataframe.DataFrame, minPrice, maxPrice float64) (dataframe.DataFrame, Stats, error) {
	if err := data.RequireColumns(df, data.ColPrice, data.ColLongitude, data.ColLatitude, data.ColLastReview); err != nil {
		return df, Stats{}, err
	}
	prices := df.Col(data.ColPrice).Records()
	lons := df.Col(data.ColLongitude).Records()
	lats := df.Col(data.ColLatitude).Records()
	reviews := df.Col(data.ColLastReview).Records()

	st := Stats{Rows: df.Nrow()}
	var keep []int
	var dates []string
	for i := range prices {
		price, perr := parseFloat(prices[i])
		lon, lonErr := parseFloat(lons[i])
		lat, latErr := parseFloat(lats[i])
		switch {
		case perr != nil || lonErr != nil || latErr != nil || !finite(price, lon, lat):
			st.Unparseable++
			continue
		case price < minPrice || price > maxPrice:
			st.OutOfRange++
			continue
		case !NYCBounds.OverlapsPoint(geom.XY, geom.Coord{lon, lat}):
			st.OutOfBounds++
			continue
		}
		d, ok := NormalizeDate(reviews[i])
		if !ok && strings.TrimSpace(reviews[i]) != "" {
			st.InvalidDates++
		}
		keep = append(keep, i)
		dates = append(dates, d)
	}
	st.Kept = len(keep)

	var out dataframe.DataFrame
	if len(keep) == 0 {
		out = emptyLike(df)
	} else {
		out = df.Subset(keep)
	}
	out = out.Mutate(series.New(dates, series.String, data.ColLastReview))
	if out.Err != nil {
		return df, st, eris.Wrap(out.Err, "clean listings")
	}
	return out, st, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func emptyLike(df dataframe.DataFrame) dataframe.DataFrame {
	cols := make([]series.Series, 0, df.Ncol())
	for _, n := range df.Names() {
		cols = append(cols, series.New([]string{}, series.String, n))
	}
	return dataframe.New(cols...)
}

// Run downloads the input artifact, cleans it, writes it to
// <TmpDirectory>/<OutputArtifact> and publishes that file.
func Run(ctx context.Context, store artifact.Store, p Params, logger *zap.Logger) (*artifact.Artifact, error) {
	if err := p.Validate(); err != nil {
		logger.Error("basic cleaning: bad arguments", zap.Error(err))
		return nil, err
	}

	logger.Info("Downloading artifact", zap.String("ref", p.InputArtifact))
	path, err := store.Fetch(ctx, p.InputArtifact)
	if err != nil {
		logger.Error("download artifact failed", zap.String("ref", p.InputArtifact), zap.Error(err))
		return nil, err
	}
	df, err := data.ImportRaw(path)
	if err != nil {
		logger.Error("read artifact failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	logger.Info("Basic cleaning", zap.Float64("min_price", p.MinPrice), zap.Float64("max_price", p.MaxPrice))
	clean, st, err := Clean(df, p.MinPrice, p.MaxPrice)
	if err != nil {
		logger.Error("basic cleaning failed", zap.Error(err))
		return nil, err
	}
	logger.Info("cleaning summary",
		zap.Int("rows", st.Rows),
		zap.Int("kept", st.Kept),
		zap.Int("out_of_range", st.OutOfRange),
		zap.Int("out_of_bounds", st.OutOfBounds),
		zap.Int("unparseable", st.Unparseable),
		zap.Int("invalid_dates", st.InvalidDates),
	)

	logger.Info("Saving cleaned data as csv")
	out := filepath.Join(p.TmpDirectory, p.OutputArtifact)
	if err := writeCSV(out, clean); err != nil {
		logger.Error("save cleaned data failed", zap.String("path", out), zap.Error(err))
		return nil, err
	}

	a, err := store.Publish(ctx, out, artifact.Meta{
		Name:        p.OutputArtifact,
		Type:        p.OutputType,
		Description: p.OutputDescription,
	})
	if err != nil {
		logger.Error("publish artifact failed", zap.String("name", p.OutputArtifact), zap.Error(err))
		return nil, err
	}
	logger.Info("Cleaned dataset uploaded", zap.String("ref", a.Ref()), zap.String("digest", a.Digest))
	return a, nil
}

func writeCSV(path string, df dataframe.DataFrame) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "create %s", filepath.Dir(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return eris.Wrapf(df.WriteCSV(f), "write %s", path)
}
