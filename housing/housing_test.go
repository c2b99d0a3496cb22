package housing

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/houseprice/config"
	"github.com/ezoic/houseprice/dataset"
	hpErrors "github.com/ezoic/houseprice/pkg/errors"
	"github.com/ezoic/houseprice/pkg/log"
)

// houseRow returns the eight form inputs of synthetic house i and its price.
func houseRow(i int) (map[string]float64, float64) {
	v := map[string]float64{
		"Lot Area":      float64(6000 + 350*i),
		"Overall Qual":  float64(1 + i%10),
		"Year Built":    float64(1920 + 2*i),
		"Total Bsmt SF": float64(600 + 25*(i%13)),
		"1st Flr SF":    float64(700 + 30*(i%11)),
		"Full Bath":     float64(1 + i%3),
		"Gr Liv Area":   float64(900 + 40*i),
		"Garage Cars":   float64(i % 4),
	}
	price := 20000 + 2*v["Lot Area"] + 12000*v["Overall Qual"] + 250*(v["Year Built"]-1900) +
		45*v["Gr Liv Area"] + 6000*v["Garage Cars"] + float64((i%7)*1500)
	return v, price
}

func writeCSV(t *testing.T, dir string, header []string, rows int, cell func(i int, col string) string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(strings.Join(header, ",") + "\n")
	for i := 0; i < rows; i++ {
		cells := make([]string, len(header))
		for j, col := range header {
			cells[j] = cell(i, col)
		}
		b.WriteString(strings.Join(cells, ",") + "\n")
	}
	path := filepath.Join(dir, "ames.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

// reducedCSV writes the eight inputs, an extra categorical column and the target.
func reducedCSV(t *testing.T, dir string, rows int) string {
	header := append(dataset.ReducedSchema().Names(), "Street", dataset.TargetColumn)
	return writeCSV(t, dir, header, rows, func(i int, col string) string {
		v, price := houseRow(i)
		switch col {
		case "Street":
			return "Pave"
		case dataset.TargetColumn:
			return fmt.Sprint(price)
		default:
			return fmt.Sprint(v[col])
		}
	})
}

func testConfig(dir, dataPath, variant string) *config.Config {
	cfg := config.Default()
	cfg.Data.Path = dataPath
	cfg.Data.Variant = variant
	cfg.Data.TestSize = 0.25
	cfg.Artifacts.ModelPath = filepath.Join(dir, "models", "house_price_model.gob")
	cfg.Artifacts.PreprocessorPath = filepath.Join(dir, "models", "preprocessor.gob")
	return cfg
}

func TestTrainAndServe_Reduced(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, reducedCSV(t, dir, 40), dataset.VariantReduced)
	cfg.Artifacts.PlotPath = filepath.Join(dir, "plots", "pred.png")

	res, err := Train(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	assert.Equal(t, 30, res.Metadata.TrainRows)
	assert.Equal(t, 10, res.Metadata.TestRows)
	assert.Equal(t, 8, res.Metadata.NFeatures)
	assert.NotEmpty(t, res.Metadata.BundleID)

	rep := res.Report
	assert.False(t, math.IsNaN(rep.MAE) || math.IsInf(rep.MAE, 0))
	assert.GreaterOrEqual(t, rep.MAE, 0.0)
	assert.GreaterOrEqual(t, rep.RMSE, rep.MAE)

	for _, path := range []string{cfg.Artifacts.ModelPath, cfg.Artifacts.PreprocessorPath, cfg.Artifacts.PlotPath} {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}

	pred, err := LoadPredictor(cfg)
	require.NoError(t, err)
	assert.Equal(t, res.Metadata.BundleID, pred.Metadata().BundleID)
	require.NotNil(t, pred.Metadata().Report)
	assert.Equal(t, *res.Report, *pred.Metadata().Report)

	values := map[string]string{"Lot Area": "8450", "Overall Qual": "7", "Gr Liv Area": "1710"}
	got, err := pred.Predict(context.Background(), values)
	require.NoError(t, err)

	// the loaded artifacts reproduce the in-memory pipeline bit for bit
	row, err := dataset.ReducedSchema().Row(values)
	require.NoError(t, err)
	want, err := res.Pipeline.Predict(row)
	require.NoError(t, err)
	assert.Equal(t, want[0], got.Price)
	assert.Equal(t, FormatPrice(got.Price), got.Formatted)
	assert.True(t, strings.HasPrefix(got.Formatted, "$"))
}

func TestTrainAndServe_Full(t *testing.T) {
	dir := t.TempDir()
	schema := dataset.FullSchema()
	neighborhoods := []string{"NAmes", "CollgCr", "OldTown"}
	header := append(schema.Names(), dataset.TargetColumn)
	path := writeCSV(t, dir, header, 36, func(i int, col string) string {
		v, price := houseRow(i)
		if x, ok := v[col]; ok {
			return fmt.Sprint(x)
		}
		switch col {
		case dataset.TargetColumn:
			return fmt.Sprint(price)
		case "Neighborhood":
			return neighborhoods[i%len(neighborhoods)]
		case "Order":
			return fmt.Sprint(i + 1)
		}
		c, _ := schema.Column(col)
		return c.Default
	})
	cfg := testConfig(dir, path, dataset.VariantFull)

	res, err := Train(context.Background(), cfg)
	require.NoError(t, err)
	assert.Greater(t, res.Metadata.NFeatures, len(schema.NumericColumns()))

	pred, err := LoadPredictor(cfg)
	require.NoError(t, err)

	// every non-input column comes from the stored defaults
	got, err := pred.Predict(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(got.Price) || math.IsInf(got.Price, 0))

	// a category never seen during training encodes to zeros
	got, err = pred.Predict(context.Background(), map[string]string{"Neighborhood": "Blueste"})
	require.NoError(t, err)
	assert.False(t, math.IsNaN(got.Price) || math.IsInf(got.Price, 0))
}

func TestTrain_NoHeldOutRows(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, reducedCSV(t, dir, 12), dataset.VariantReduced)
	cfg.Data.TestSize = 0
	cfg.Artifacts.PlotPath = filepath.Join(dir, "never.png")

	res, err := Train(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, res.Report)
	assert.Empty(t, res.PlotPath)
	assert.Equal(t, 12, res.Metadata.TrainRows)
	_, err = os.Stat(cfg.Artifacts.PlotPath)
	assert.True(t, os.IsNotExist(err))
}

func TestTrain_SingleRow(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, reducedCSV(t, dir, 1), dataset.VariantReduced)
	cfg.Data.TestSize = 0

	res, err := Train(context.Background(), cfg)
	require.NoError(t, err)

	v, price := houseRow(0)
	values := make(map[string]string, len(v))
	for k, x := range v {
		values[k] = fmt.Sprint(x)
	}
	row, err := dataset.ReducedSchema().Row(values)
	require.NoError(t, err)
	got, err := res.Pipeline.Predict(row)
	require.NoError(t, err)
	assert.InDelta(t, price, got[0], 1e-6)
	assert.GreaterOrEqual(t, got[0], 0.0)
}

func TestTrain_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing dataset", func(t *testing.T) {
		cfg := testConfig(dir, filepath.Join(dir, "absent.csv"), dataset.VariantReduced)
		_, err := Train(context.Background(), cfg)
		assert.True(t, hpErrors.Is(err, hpErrors.ErrDatasetNotFound))
	})

	t.Run("missing column", func(t *testing.T) {
		path := writeCSV(t, t.TempDir(), []string{"Lot Area", dataset.TargetColumn}, 5, func(i int, col string) string {
			return fmt.Sprint(1000 + i)
		})
		cfg := testConfig(dir, path, dataset.VariantReduced)
		_, err := Train(context.Background(), cfg)
		var se *hpErrors.SchemaMismatchError
		assert.True(t, hpErrors.As(err, &se))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		cfg := testConfig(dir, reducedCSV(t, t.TempDir(), 10), dataset.VariantReduced)
		_, err := Train(ctx, cfg)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := testConfig(dir, "x.csv", "tiny")
		_, err := Train(context.Background(), cfg)
		assert.Error(t, err)
	})
}

func TestLoadPredictor_MissingArtifacts(t *testing.T) {
	cfg := testConfig(t.TempDir(), "unused.csv", dataset.VariantReduced)
	_, err := LoadPredictor(cfg)
	require.Error(t, err)
	assert.True(t, hpErrors.Is(err, hpErrors.ErrModelNotTrained))
}

func TestLoadPredictor_BundleMismatch(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	cfgA := testConfig(dirA, reducedCSV(t, dirA, 20), dataset.VariantReduced)
	cfgB := testConfig(dirB, reducedCSV(t, dirB, 20), dataset.VariantReduced)
	_, err := Train(context.Background(), cfgA)
	require.NoError(t, err)
	_, err = Train(context.Background(), cfgB)
	require.NoError(t, err)

	mixed := testConfig(dirA, "unused.csv", dataset.VariantReduced)
	mixed.Artifacts.PreprocessorPath = cfgB.Artifacts.PreprocessorPath

	_, err = LoadPredictor(mixed)
	var se *hpErrors.SchemaMismatchError
	require.True(t, hpErrors.As(err, &se))
	assert.Contains(t, se.Detail, "does not match")
}

func TestLoadPredictor_LogsBundleOnce(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, reducedCSV(t, dir, 20), dataset.VariantReduced)
	res, err := Train(context.Background(), cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	log.SetProvider(log.NewZerologProviderWithWriter(log.LevelInfo, &buf, false))
	t.Cleanup(func() {
		log.SetProvider(log.NewZerologProvider(log.LevelInfo))
		hpErrors.SetZerologWarnFunc(nil)
	})

	_, err = LoadPredictor(cfg)
	require.NoError(t, err)

	var loaded string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "Artifacts loaded") {
			loaded = line
		}
	}
	require.NotEmpty(t, loaded)
	assert.Equal(t, 1, strings.Count(loaded, `"`+log.BundleIDKey+`"`), loaded)
	assert.Contains(t, loaded, res.Metadata.BundleID)
}

func TestNewPredictor_KeepsPipelineLoggers(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, reducedCSV(t, dir, 20), dataset.VariantReduced)
	res, err := Train(context.Background(), cfg)
	require.NoError(t, err)

	logger, _ := log.NewTestLogger(log.LevelDebug)
	res.Pipeline.Regressor.SetLogger(logger)

	pred, err := NewPredictor(res.Pipeline, res.Metadata)
	require.NoError(t, err)
	_, err = pred.Predict(context.Background(), map[string]string{"Lot Area": "9600"})
	require.NoError(t, err)

	assert.True(t, logger.ContainsMessage("Prediction completed"))
}

func TestPredictor_InputErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, reducedCSV(t, dir, 20), dataset.VariantReduced)
	_, err := Train(context.Background(), cfg)
	require.NoError(t, err)
	pred, err := LoadPredictor(cfg)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = pred.Predict(ctx, map[string]string{"Pool Area": "0"})
	var se *hpErrors.SchemaMismatchError
	assert.True(t, hpErrors.As(err, &se))

	_, err = pred.Predict(ctx, map[string]string{"Overall Qual": "11"})
	var re *hpErrors.RangeError
	require.True(t, hpErrors.As(err, &re))
	assert.Equal(t, "Overall Qual", re.Column)

	_, err = pred.Predict(ctx, map[string]string{"Lot Area": "big"})
	var ve *hpErrors.ValueError
	assert.True(t, hpErrors.As(err, &ve))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = pred.Predict(cancelled, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{250000, "$250,000.00"},
		{1234.5, "$1,234.50"},
		{0, "$0.00"},
		{999.999, "$1,000.00"},
		{-1500.25, "-$1,500.25"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPrice(tt.in), "FormatPrice(%v)", tt.in)
	}
}
