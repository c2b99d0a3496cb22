package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/houseprice/core/model"
	"github.com/ezoic/houseprice/core/parallel"
	"github.com/ezoic/houseprice/dataset"
	hpErrors "github.com/ezoic/houseprice/pkg/errors"
)

var (
	_ model.Transformer = (*StandardScaler)(nil)
	_ model.Transformer = (*SimpleImputer)(nil)
)

// ColumnTransformer turns a raw frame into the model's design matrix. Numeric columns
// are median-imputed then standardized; categorical columns are mode-imputed then
// one-hot encoded. The output holds the numeric block first, in schema order,
// followed by one indicator block per categorical column.
//
// A ColumnTransformer is fitted once. Transform only reads fitted state, so a fitted
// transformer can be shared between goroutines.
type ColumnTransformer struct {
	model.BaseEstimator

	Schema dataset.Schema

	NumericColumns     []string
	CategoricalColumns []string

	NumericImputer     *SimpleImputer
	Scaler             *StandardScaler
	CategoricalImputer *CategoricalImputer
	Encoder            *OneHotEncoder

	NOutputs int
}

// NewColumnTransformer creates an unfitted transformer for schema.
func NewColumnTransformer(schema dataset.Schema) *ColumnTransformer {
	numeric := schema.NumericColumns()
	categorical := schema.CategoricalColumns()

	imp := NewSimpleImputer()
	imp.FeatureNames = numeric
	catImp := NewCategoricalImputer()
	catImp.FeatureNames = categorical

	return &ColumnTransformer{
		Schema:             schema,
		NumericColumns:     numeric,
		CategoricalColumns: categorical,
		NumericImputer:     imp,
		Scaler:             NewStandardScaler(),
		CategoricalImputer: catImp,
		Encoder:            NewOneHotEncoder(),
	}
}

// Fit learns imputation statistics, scaling statistics and category vocabularies
// from f. f must carry exactly the schema's columns, in any order.
func (ct *ColumnTransformer) Fit(f *dataset.Frame) (err error) {
	defer hpErrors.Recover(&err, "ColumnTransformer.Fit")
	if ct.IsFitted() {
		return hpErrors.NewValueError("ColumnTransformer.Fit", "already fitted; create a new ColumnTransformer to refit")
	}
	if err := ct.Schema.Validate(); err != nil {
		return err
	}
	if f == nil || f.Len() == 0 {
		return hpErrors.NewModelError("ColumnTransformer.Fit", "empty data", hpErrors.ErrEmptyData)
	}
	if err := f.CheckColumns("ColumnTransformer.Fit", ct.Schema); err != nil {
		return err
	}

	outputs := 0
	if len(ct.NumericColumns) > 0 {
		raw, err := parseNumeric(f, ct.NumericColumns)
		if err != nil {
			return err
		}
		imputed, err := ct.NumericImputer.FitTransform(raw)
		if err != nil {
			return err
		}
		if err := ct.Scaler.Fit(imputed); err != nil {
			return err
		}
		outputs += len(ct.NumericColumns)
	}

	if len(ct.CategoricalColumns) > 0 {
		sel, err := f.Select(ct.CategoricalColumns)
		if err != nil {
			return err
		}
		filled, err := ct.CategoricalImputer.FitTransform(sel.Rows)
		if err != nil {
			return err
		}
		if err := ct.Encoder.Fit(filled); err != nil {
			return err
		}
		outputs += ct.Encoder.NOutputs
	}

	ct.NOutputs = outputs
	ct.SetFitted()
	return nil
}

// Transform applies the fitted steps to f and returns an f.Len() × NOutputs matrix
// with no missing values.
//
// Errors:
//   - NotFittedError: Fit has not been called
//   - SchemaMismatchError: f lacks a schema column or carries an unknown one
//   - ValueError: a numeric cell is neither a number nor a missing marker
func (ct *ColumnTransformer) Transform(f *dataset.Frame) (_ *mat.Dense, err error) {
	defer hpErrors.Recover(&err, "ColumnTransformer.Transform")
	if !ct.IsFitted() {
		return nil, hpErrors.NewNotFittedError("ColumnTransformer", "Transform")
	}
	if f == nil || f.Len() == 0 {
		return nil, hpErrors.NewModelError("ColumnTransformer.Transform", "empty data", hpErrors.ErrEmptyData)
	}
	if err := f.CheckColumns("ColumnTransformer.Transform", ct.Schema); err != nil {
		return nil, err
	}

	n := f.Len()
	out := mat.NewDense(n, ct.NOutputs, nil)
	p := len(ct.NumericColumns)

	if p > 0 {
		raw, err := parseNumeric(f, ct.NumericColumns)
		if err != nil {
			return nil, err
		}
		imputed, err := ct.NumericImputer.Transform(raw)
		if err != nil {
			return nil, err
		}
		scaled, err := ct.Scaler.Transform(imputed)
		if err != nil {
			return nil, err
		}
		out.Slice(0, n, 0, p).(*mat.Dense).Copy(scaled)
	}

	if len(ct.CategoricalColumns) > 0 {
		sel, err := f.Select(ct.CategoricalColumns)
		if err != nil {
			return nil, err
		}
		filled, err := ct.CategoricalImputer.Transform(sel.Rows)
		if err != nil {
			return nil, err
		}
		encoded, err := ct.Encoder.Transform(filled)
		if err != nil {
			return nil, err
		}
		out.Slice(0, n, p, ct.NOutputs).(*mat.Dense).Copy(encoded)
	}

	return out, nil
}

// FitTransform fits on f and returns f transformed.
func (ct *ColumnTransformer) FitTransform(f *dataset.Frame) (_ *mat.Dense, err error) {
	defer hpErrors.Recover(&err, "ColumnTransformer.FitTransform")
	if err := ct.Fit(f); err != nil {
		return nil, err
	}
	return ct.Transform(f)
}

// FeatureNamesOut names every output column: numeric column names followed by
// "<column>_<category>" for each indicator.
func (ct *ColumnTransformer) FeatureNamesOut() []string {
	if !ct.IsFitted() {
		return nil
	}
	names := make([]string, 0, ct.NOutputs)
	names = append(names, ct.NumericColumns...)
	if len(ct.CategoricalColumns) > 0 {
		names = append(names, ct.Encoder.GetFeatureNamesOut(ct.CategoricalColumns)...)
	}
	return names
}

// NFeaturesIn returns the number of raw input columns.
func (ct *ColumnTransformer) NFeaturesIn() int {
	return len(ct.Schema.Columns)
}

func (ct *ColumnTransformer) String() string {
	return fmt.Sprintf("ColumnTransformer(variant=%s, numeric=%d, categorical=%d, n_outputs=%d)",
		ct.Schema.Variant, len(ct.NumericColumns), len(ct.CategoricalColumns), ct.NOutputs)
}

// parseNumeric reads cols of f into a matrix, mapping missing markers to NaN.
func parseNumeric(f *dataset.Frame, cols []string) (*mat.Dense, error) {
	sel, err := f.Select(cols)
	if err != nil {
		return nil, err
	}

	n, p := sel.Len(), len(cols)
	X := mat.NewDense(n, p, nil)
	rowErrs := make([]error, n)

	parallel.ParallelizeWithThreshold(n, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j, raw := range sel.Rows[i] {
				if dataset.IsMissing(raw) {
					X.Set(i, j, nan)
					continue
				}
				v, err := dataset.ParseNumber(raw)
				if err != nil {
					rowErrs[i] = hpErrors.NewValueError("ColumnTransformer",
						fmt.Sprintf("column %q row %d: %q is not a number", cols[j], i+1, raw))
					break
				}
				X.Set(i, j, v)
			}
		}
	})

	for _, err := range rowErrs {
		if err != nil {
			return nil, err
		}
	}
	return X, nil
}
