package housing

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ezoic/houseprice/config"
	"github.com/ezoic/houseprice/dataset"
	"github.com/ezoic/houseprice/pipeline"
	hpErrors "github.com/ezoic/houseprice/pkg/errors"
	"github.com/ezoic/houseprice/pkg/log"
)

// Prediction is the result of pricing one house.
type Prediction struct {
	Price     float64 `json:"price"`
	Formatted string  `json:"formatted"`
}

// Predictor serves single-row predictions from a loaded pipeline. It never mutates the
// pipeline after construction and is safe for concurrent use.
type Predictor struct {
	pipeline *pipeline.Pipeline
	meta     Metadata
	logger   log.Logger
}

// LoadPredictor loads the artifacts named in cfg.
func LoadPredictor(cfg *config.Config) (*Predictor, error) {
	p, meta, err := LoadArtifacts(cfg.Artifacts.ModelPath, cfg.Artifacts.PreprocessorPath)
	if err != nil {
		return nil, err
	}
	// The loaded pipeline is private to the predictor; requests are logged by the caller.
	p.SetLogger(nil)
	p.Regressor.SetLogger(nil)

	pred, err := NewPredictor(p, meta)
	if err != nil {
		return nil, err
	}
	pred.logger.Info("Artifacts loaded",
		log.OperationKey, log.OperationLoad,
		log.VariantKey, meta.Variant,
		log.FeaturesKey, meta.NFeatures,
	)
	return pred, nil
}

// NewPredictor wraps a fitted pipeline. The pipeline keeps its own loggers; callers
// that share it must not fit or reconfigure it afterwards.
func NewPredictor(p *pipeline.Pipeline, meta Metadata) (*Predictor, error) {
	if p == nil || !p.IsFitted() {
		return nil, hpErrors.NewNotFittedError("Pipeline", "NewPredictor")
	}
	return &Predictor{
		pipeline: p,
		meta:     meta,
		logger:   log.GetLoggerWithName("predictor").With(log.BundleIDKey, meta.BundleID),
	}, nil
}

// Schema returns the schema stored in the preprocessor artifact, including the
// defaults used for fields the caller leaves out.
func (p *Predictor) Schema() dataset.Schema {
	return p.pipeline.Schema()
}

// Metadata returns the training run metadata shared by the artifacts.
func (p *Predictor) Metadata() Metadata {
	return p.meta
}

// Predict prices one house. values are raw strings keyed by column name; columns the
// caller leaves out take the stored default.
//
// Errors:
//   - SchemaMismatchError: values names a column the schema does not declare
//   - ValueError: a numeric value does not parse
//   - RangeError: a numeric value falls outside its declared bounds
func (p *Predictor) Predict(ctx context.Context, values map[string]string) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}

	row, err := p.Schema().Row(values)
	if err != nil {
		return Prediction{}, err
	}
	prices, err := p.pipeline.Predict(row)
	if err != nil {
		return Prediction{}, err
	}
	price := prices[0]
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return Prediction{}, hpErrors.NewModelError("Predictor.Predict", "non-finite prediction", hpErrors.ErrSingularMatrix)
	}

	p.logger.Debug("Prediction served",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.PriceKey, price,
	)
	return Prediction{Price: price, Formatted: FormatPrice(price)}, nil
}

// FormatPrice renders v as US dollars with thousands separators and two decimals,
// e.g. "$250,000.00".
func FormatPrice(v float64) string {
	printer := message.NewPrinter(language.AmericanEnglish)
	v = math.Round(v*100) / 100
	if v < 0 {
		return printer.Sprintf("-$%.2f", -v)
	}
	return printer.Sprintf("$%.2f", v)
}

func (p *Predictor) String() string {
	return fmt.Sprintf("Predictor(bundle=%s, variant=%s, n_features=%d)", p.meta.BundleID, p.meta.Variant, p.meta.NFeatures)
}
