package pipeline

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/houseprice/dataset"
	"github.com/ezoic/houseprice/linear"
	"github.com/ezoic/houseprice/pkg/errors"
)

func zoneSchema() dataset.Schema {
	return dataset.Schema{
		Variant: "test",
		Target:  dataset.TargetColumn,
		Columns: []dataset.Column{
			{Name: "Gr Liv Area", Kind: dataset.Numeric, Default: "1500"},
			{Name: "MS Zoning", Kind: dataset.Categorical, Default: "RL"},
		},
	}
}

// zoneData prices a house at 100 per square foot plus a zone premium.
func zoneData() (*dataset.Frame, []float64) {
	premium := map[string]float64{"RL": 20000, "RM": 5000}
	f := &dataset.Frame{Columns: []string{"Gr Liv Area", "MS Zoning"}}
	var y []float64
	for i := 0; i < 12; i++ {
		area := 800 + 150*float64(i)
		zone := "RL"
		if i%3 == 0 {
			zone = "RM"
		}
		f.Rows = append(f.Rows, []string{fmt.Sprint(area), zone})
		y = append(y, 100*area+premium[zone])
	}
	return f, y
}

func fittedPipeline(t *testing.T) *Pipeline {
	t.Helper()
	f, y := zoneData()
	p := New(zoneSchema())
	p.SetLogger(nil)
	p.Regressor.SetLogger(nil)
	require.NoError(t, p.Fit(f, y))
	return p
}

func TestPipeline_FitPredict(t *testing.T) {
	p := fittedPipeline(t)
	assert.True(t, p.IsFitted())
	assert.Equal(t, []string{"Gr Liv Area", "MS Zoning_RL", "MS Zoning_RM"}, p.FeatureNamesOut())

	f, y := zoneData()
	pred, err := p.Predict(f)
	require.NoError(t, err)
	require.Len(t, pred, len(y))
	for i := range y {
		assert.InDelta(t, y[i], pred[i], 1e-4, "row %d", i)
	}
}

func TestPipeline_Evaluate(t *testing.T) {
	p := fittedPipeline(t)
	f, y := zoneData()

	rep, pred, err := p.Evaluate(f, y)
	require.NoError(t, err)
	assert.Len(t, pred, len(y))
	assert.Equal(t, len(y), rep.N)
	assert.InDelta(t, 0, rep.MAE, 1e-4)
	assert.GreaterOrEqual(t, rep.RMSE, rep.MAE)
	assert.InDelta(t, 1, rep.R2, 1e-9)

	r2, err := p.Score(f, y)
	require.NoError(t, err)
	assert.Equal(t, rep.R2, r2)
}

func TestPipeline_UnseenCategoryPredictsFinite(t *testing.T) {
	p := fittedPipeline(t)
	row, err := zoneSchema().Row(map[string]string{"Gr Liv Area": "1200", "MS Zoning": "FV"})
	require.NoError(t, err)

	pred, err := p.Predict(row)
	require.NoError(t, err)
	require.Len(t, pred, 1)
	assert.False(t, math.IsNaN(pred[0]) || math.IsInf(pred[0], 0))
}

func TestPipeline_Transform(t *testing.T) {
	p := fittedPipeline(t)
	f, _ := zoneData()

	Xt, err := p.Transform(f)
	require.NoError(t, err)
	r, c := Xt.Dims()
	assert.Equal(t, 12, r)
	assert.Equal(t, 3, c)
}

func TestPipeline_NotFitted(t *testing.T) {
	p := New(zoneSchema())
	f, y := zoneData()

	_, err := p.Predict(f)
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	_, err = p.Transform(f)
	assert.True(t, errors.As(err, &nf))

	_, _, err = p.Evaluate(f, y)
	assert.True(t, errors.As(err, &nf))
}

func TestPipeline_FitErrors(t *testing.T) {
	f, y := zoneData()

	t.Run("length mismatch", func(t *testing.T) {
		p := New(zoneSchema())
		p.SetLogger(nil)
		err := p.Fit(f, y[:5])
		var de *errors.DimensionError
		assert.True(t, errors.As(err, &de))
	})

	t.Run("empty", func(t *testing.T) {
		p := New(zoneSchema())
		err := p.Fit(&dataset.Frame{Columns: f.Columns}, nil)
		assert.True(t, errors.Is(err, errors.ErrEmptyData))
	})

	t.Run("refit", func(t *testing.T) {
		p := fittedPipeline(t)
		err := p.Fit(f, y)
		var ve *errors.ValueError
		assert.True(t, errors.As(err, &ve))
	})

	t.Run("schema mismatch", func(t *testing.T) {
		p := New(zoneSchema())
		p.SetLogger(nil)
		bad := &dataset.Frame{Columns: []string{"Gr Liv Area", "Street"}, Rows: f.Rows}
		err := p.Fit(bad, y)
		var se *errors.SchemaMismatchError
		assert.True(t, errors.As(err, &se))
	})
}

func TestAssemble(t *testing.T) {
	fitted := fittedPipeline(t)
	f, _ := zoneData()
	want, err := fitted.Predict(f)
	require.NoError(t, err)

	p, err := Assemble(fitted.Preprocessor, fitted.Regressor)
	require.NoError(t, err)
	got, err := p.Predict(f)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAssemble_Errors(t *testing.T) {
	fitted := fittedPipeline(t)

	_, err := Assemble(New(zoneSchema()).Preprocessor, fitted.Regressor)
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	_, err = Assemble(fitted.Preprocessor, linear.NewLinearRegression())
	assert.True(t, errors.As(err, &nf))

	narrow := linear.NewLinearRegression()
	narrow.SetLogger(nil)
	require.NoError(t, narrow.Fit(
		mat.NewDense(3, 1, []float64{1, 2, 3}),
		mat.NewDense(3, 1, []float64{2, 4, 6}),
	))
	_, err = Assemble(fitted.Preprocessor, narrow)
	var se *errors.SchemaMismatchError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Detail, "preprocessor emits 3 features but model expects 1")
}

func BenchmarkPipelineFitPredict(b *testing.B) {
	sizes := []int{1_000, 10_000}
	zones := []string{"RL", "RM", "FV", "RH"}

	for _, n := range sizes {
		f := &dataset.Frame{Columns: []string{"Gr Liv Area", "MS Zoning"}, Rows: make([][]string, n)}
		y := make([]float64, n)
		for i := range f.Rows {
			area := 600 + float64(i%3000)
			f.Rows[i] = []string{fmt.Sprint(area), zones[i%len(zones)]}
			y[i] = 100*area + float64(i%len(zones))*5000
		}

		b.Run(fmt.Sprintf("rows_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				p := New(zoneSchema())
				p.SetLogger(nil)
				p.Regressor.SetLogger(nil)
				if err := p.Fit(f, y); err != nil {
					b.Fatal(err)
				}
				if _, err := p.Predict(f); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
