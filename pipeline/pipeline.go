// Package pipeline chains the column preprocessor and the linear regressor so that raw
// frames go in and prices come out.
//
// A Pipeline is fitted once on a training frame. After fitting, or after being
// assembled from loaded artifacts with Assemble, every method only reads state and the
// pipeline may be shared between goroutines.
package pipeline

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/houseprice/core/model"
	"github.com/ezoic/houseprice/dataset"
	"github.com/ezoic/houseprice/linear"
	"github.com/ezoic/houseprice/metrics"
	"github.com/ezoic/houseprice/pkg/errors"
	"github.com/ezoic/houseprice/pkg/log"
	"github.com/ezoic/houseprice/preprocessing"
)

// Pipeline is a fitted or unfitted Preprocessor → Regressor chain.
type Pipeline struct {
	State        *model.StateManager
	Preprocessor *preprocessing.ColumnTransformer
	Regressor    *linear.LinearRegression

	logger log.Logger
}

// New creates an unfitted pipeline for schema.
func New(schema dataset.Schema) *Pipeline {
	return &Pipeline{
		State:        model.NewStateManager(),
		Preprocessor: preprocessing.NewColumnTransformer(schema),
		Regressor:    linear.NewLinearRegression(),
		logger:       log.GetLoggerWithName("pipeline"),
	}
}

// Assemble wraps an already fitted preprocessor and regressor, typically both decoded
// from disk. The regressor must expect exactly the preprocessor's output width.
func Assemble(pre *preprocessing.ColumnTransformer, reg *linear.LinearRegression) (*Pipeline, error) {
	if pre == nil || !pre.IsFitted() {
		return nil, errors.NewNotFittedError("ColumnTransformer", "Assemble")
	}
	if reg == nil || !reg.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Assemble")
	}
	if pre.NOutputs != reg.NFeatures {
		return nil, errors.NewSchemaDetailError("Pipeline.Assemble",
			fmt.Sprintf("preprocessor emits %d features but model expects %d", pre.NOutputs, reg.NFeatures))
	}

	reg.SetLogger(log.GetLoggerWithName("linear"))
	state := model.NewStateManager()
	state.SetDimensions(reg.NFeatures, 0)
	state.SetFitted()
	return &Pipeline{
		State:        state,
		Preprocessor: pre,
		Regressor:    reg,
		logger:       log.GetLoggerWithName("pipeline"),
	}, nil
}

// SetLogger replaces the pipeline's logger; nil disables logging.
func (p *Pipeline) SetLogger(l log.Logger) {
	p.logger = l
}

// IsFitted reports whether both steps are fitted.
func (p *Pipeline) IsFitted() bool {
	return p.State != nil && p.State.IsFitted()
}

// Schema returns the schema the preprocessor was built for.
func (p *Pipeline) Schema() dataset.Schema {
	return p.Preprocessor.Schema
}

// Fit fits the preprocessor on f, transforms f and fits the regressor on the result
// against y.
func (p *Pipeline) Fit(f *dataset.Frame, y []float64) (err error) {
	defer errors.Recover(&err, "Pipeline.Fit")
	if p.IsFitted() {
		return errors.NewValueError("Pipeline.Fit", "already fitted; create a new Pipeline to refit")
	}
	if f == nil || f.Len() == 0 || len(y) == 0 {
		return errors.NewModelError("Pipeline.Fit", "empty data", errors.ErrEmptyData)
	}
	if f.Len() != len(y) {
		return errors.NewDimensionError("Pipeline.Fit", f.Len(), len(y), 0)
	}

	start := time.Now()
	Xt, err := p.Preprocessor.FitTransform(f)
	if err != nil {
		return errors.Wrap(err, "failed to fit step 'preprocessor'")
	}
	if p.logger != nil {
		p.logger.Debug("Preprocessor fitted",
			log.PhaseKey, log.PhasePreprocessing,
			log.SamplesKey, f.Len(),
			log.FeaturesKey, p.Preprocessor.NOutputs,
		)
	}

	target := mat.NewDense(len(y), 1, append([]float64(nil), y...))
	if err := p.Regressor.Fit(Xt, target); err != nil {
		return errors.Wrap(err, "failed to fit step 'regressor'")
	}

	if p.State == nil {
		p.State = model.NewStateManager()
	}
	p.State.SetDimensions(p.Preprocessor.NOutputs, f.Len())
	p.State.SetFitted()

	if p.logger != nil {
		p.logger.Info("Pipeline fitted",
			log.OperationKey, log.OperationFit,
			log.SamplesKey, f.Len(),
			log.FeaturesKey, p.Preprocessor.NOutputs,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}
	return nil
}

// Transform runs only the preprocessor.
func (p *Pipeline) Transform(f *dataset.Frame) (*mat.Dense, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "Transform")
	}
	Xt, err := p.Preprocessor.Transform(f)
	if err != nil {
		return nil, errors.Wrap(err, "failed to transform at step 'preprocessor'")
	}
	return Xt, nil
}

// Predict returns one predicted price per row of f.
func (p *Pipeline) Predict(f *dataset.Frame) (_ []float64, err error) {
	defer errors.Recover(&err, "Pipeline.Predict")
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "Predict")
	}

	Xt, err := p.Transform(f)
	if err != nil {
		return nil, err
	}
	pred, err := p.Regressor.Predict(Xt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to predict at step 'regressor'")
	}

	n, _ := pred.Dims()
	out := make([]float64, n)
	mat.Col(out, 0, pred)
	return out, nil
}

// Evaluate predicts f and compares the predictions against y.
func (p *Pipeline) Evaluate(f *dataset.Frame, y []float64) (metrics.Report, []float64, error) {
	if !p.IsFitted() {
		return metrics.Report{}, nil, errors.NewNotFittedError("Pipeline", "Evaluate")
	}
	if f == nil || f.Len() != len(y) {
		got := 0
		if f != nil {
			got = f.Len()
		}
		return metrics.Report{}, nil, errors.NewDimensionError("Pipeline.Evaluate", len(y), got, 0)
	}

	pred, err := p.Predict(f)
	if err != nil {
		return metrics.Report{}, nil, err
	}
	rep, err := metrics.Evaluate(mat.NewVecDense(len(y), append([]float64(nil), y...)), mat.NewVecDense(len(pred), pred))
	if err != nil {
		return metrics.Report{}, nil, err
	}

	if p.logger != nil {
		p.logger.Info("Pipeline evaluated",
			log.OperationKey, log.OperationScore,
			log.PhaseKey, log.PhaseValidation,
			log.SamplesKey, rep.N,
			log.MAEKey, rep.MAE,
			log.RMSEKey, rep.RMSE,
			log.R2ScoreKey, rep.R2,
		)
	}
	return rep, pred, nil
}

// Score returns R² of the predictions for f against y.
func (p *Pipeline) Score(f *dataset.Frame, y []float64) (float64, error) {
	rep, _, err := p.Evaluate(f, y)
	if err != nil {
		return 0, err
	}
	return rep.R2, nil
}

// FeatureNamesOut names the columns fed to the regressor.
func (p *Pipeline) FeatureNamesOut() []string {
	return p.Preprocessor.FeatureNamesOut()
}

func (p *Pipeline) String() string {
	return fmt.Sprintf("Pipeline(preprocessor=%s, regressor=%s)", p.Preprocessor, p.Regressor)
}
