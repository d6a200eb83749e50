package evaluation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"mlsteps/internal/artifact"
	"mlsteps/internal/data"
	"mlsteps/internal/features"
	"mlsteps/internal/models"
)

var priceFeatures = []string{data.ColLatitude, data.ColLongitude, data.ColMinimumNights, data.ColNumberOfReviews}

func fitModel(t *testing.T, path string) *models.GradientBoostingRegressor {
	t.Helper()
	df, err := data.ImportData(path)
	require.NoError(t, err)
	X, err := features.Matrix(df, priceFeatures)
	require.NoError(t, err)
	gb := models.NewGradientBoostingRegressor()
	gb.NEstimators = 20
	gb.FeatureNames = priceFeatures
	require.NoError(t, gb.Fit(X, df.Col(data.ColPrice).Float()))
	return gb
}

func setup(t *testing.T) (*artifact.MemoryStore, Params) {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	trainPath := filepath.Join(dir, "train", "trainval_data.csv")
	testPath := filepath.Join(dir, "test", "test_data.csv")
	require.NoError(t, data.GenerateListings(200, 1, trainPath))
	require.NoError(t, data.GenerateListings(50, 2, testPath))

	modelPath := filepath.Join(dir, "model.gob")
	require.NoError(t, models.Save(modelPath, fitModel(t, trainPath)))

	store := artifact.NewMemoryStore(t.TempDir())
	m, err := store.Publish(ctx, modelPath, artifact.Meta{Name: "model_export", Type: "model_export"})
	require.NoError(t, err)
	require.NoError(t, store.Alias(ctx, m.Name, "prod", m.Version))
	_, err = store.Publish(ctx, testPath, artifact.Meta{Name: "test_data.csv", Type: "test_data"})
	require.NoError(t, err)

	return store, Params{
		ModelExport:    "model_export:prod",
		TestDataset:    "test_data.csv:latest",
		OutputArtifact: "model_metrics.yaml",
		TmpDirectory:   t.TempDir(),
	}
}

func TestRunPublishesReport(t *testing.T) {
	ctx := context.Background()
	store, p := setup(t)

	rep, a, err := Run(ctx, store, p, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ReportType, a.Type)
	assert.Equal(t, "model_metrics.yaml:v0", a.Ref())
	assert.Equal(t, 50, rep.Rows)
	assert.Equal(t, priceFeatures, rep.Features)

	path, err := store.Fetch(ctx, "model_metrics.yaml")
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Report
	require.NoError(t, yaml.Unmarshal(b, &got))
	assert.Equal(t, "model_export:prod", got.Model)
	assert.Equal(t, "test_data.csv:latest", got.Dataset)
	assert.Equal(t, data.ColPrice, got.Target)
	assert.InDelta(t, rep.MAE, got.MAE, 1e-9)
	assert.Greater(t, got.MAE, 0.0)
}

func TestEvaluateFitsLine(t *testing.T) {
	df := dataframe.ReadCSV(strings.NewReader("x,price\n1,2\n2,4\n3,6\n4,8\n5,10\n6,12\n"))
	X, err := features.Matrix(df, []string{"x"})
	require.NoError(t, err)
	gb := models.NewGradientBoostingRegressor()
	gb.FeatureNames = []string{"x"}
	require.NoError(t, gb.Fit(X, df.Col(data.ColPrice).Float()))

	rep, err := Evaluate(gb, df)
	require.NoError(t, err)
	assert.Equal(t, 6, rep.Rows)
	assert.Greater(t, rep.R2, 0.9)
	assert.Less(t, rep.MAE, 1.0)
}

func TestEvaluateErrors(t *testing.T) {
	df := dataframe.ReadCSV(strings.NewReader("x,price\n1,2\n2,4\n"))

	_, err := Evaluate(&models.GradientBoostingRegressor{}, df)
	assert.True(t, errors.Is(err, ErrNoFeatures))

	_, err = Evaluate(&models.GradientBoostingRegressor{FeatureNames: []string{"z"}}, df)
	assert.True(t, errors.Is(err, data.ErrMissingColumn))
}

func TestRunModelNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := artifact.NewMockStore(ctrl)
	store.EXPECT().Fetch(gomock.Any(), "model_export:prod").Return("", artifact.ErrNotFound)

	_, _, err := Run(context.Background(), store, Params{
		ModelExport:    "model_export:prod",
		TestDataset:    "test_data.csv:latest",
		OutputArtifact: "model_metrics.yaml",
		TmpDirectory:   t.TempDir(),
	}, zap.NewNop())
	assert.True(t, errors.Is(err, artifact.ErrNotFound))
}

func TestRunMissingParams(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, _, err := Run(context.Background(), artifact.NewMockStore(ctrl), Params{ModelExport: "model_export:prod"}, zap.NewNop())
	assert.Error(t, err)
}
