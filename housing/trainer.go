// Package housing runs the two stages of the house price service: training a pipeline
// from the Ames CSV and serving single-row predictions from the persisted artifacts.
package housing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ezoic/houseprice/config"
	"github.com/ezoic/houseprice/dataset"
	"github.com/ezoic/houseprice/metrics"
	"github.com/ezoic/houseprice/pipeline"
	hpErrors "github.com/ezoic/houseprice/pkg/errors"
	"github.com/ezoic/houseprice/pkg/log"
	"github.com/ezoic/houseprice/report"
)

// TrainResult describes a completed training run.
type TrainResult struct {
	Metadata Metadata
	// Report is nil when the configured test size leaves no held-out rows.
	Report   *metrics.Report
	Pipeline *pipeline.Pipeline

	ModelPath        string
	PreprocessorPath string
	PlotPath         string
}

// Train loads cfg.Data.Path, splits it, fits a pipeline on the training rows, evaluates
// it on the held-out rows and persists both artifacts.
func Train(ctx context.Context, cfg *config.Config) (*TrainResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := log.GetLoggerWithName("trainer").With(
		log.OperationKey, log.OperationFit,
		log.VariantKey, cfg.Data.Variant,
	)
	start := time.Now()

	schema, err := dataset.SchemaFor(cfg.Data.Variant)
	if err != nil {
		return nil, err
	}
	frame, y, err := dataset.LoadCSV(cfg.Data.Path, schema)
	if err != nil {
		return nil, err
	}
	logger.Info("Dataset loaded",
		log.PathKey, cfg.Data.Path,
		log.SamplesKey, frame.Len(),
		log.FeaturesKey, len(frame.Columns),
	)

	trainIdx, testIdx, err := dataset.TrainTestSplit(frame.Len(), cfg.Data.TestSize, cfg.Data.Seed)
	if err != nil {
		return nil, err
	}
	logger.Debug("Dataset split",
		log.TestSizeKey, cfg.Data.TestSize,
		log.RandomSeedKey, cfg.Data.Seed,
		"train_rows", len(trainIdx),
		"test_rows", len(testIdx),
	)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := pipeline.New(schema)
	if err := p.Fit(frame.Take(trainIdx), pick(y, trainIdx)); err != nil {
		return nil, hpErrors.Wrap(err, "train pipeline")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	meta := Metadata{
		BundleID:  uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Variant:   schema.Variant,
		NFeatures: p.Preprocessor.NOutputs,
		TrainRows: len(trainIdx),
		TestRows:  len(testIdx),
	}
	res := &TrainResult{
		Pipeline:         p,
		ModelPath:        cfg.Artifacts.ModelPath,
		PreprocessorPath: cfg.Artifacts.PreprocessorPath,
	}

	if len(testIdx) > 0 {
		yTest := pick(y, testIdx)
		rep, pred, err := p.Evaluate(frame.Take(testIdx), yTest)
		if err != nil {
			return nil, hpErrors.Wrap(err, "evaluate pipeline")
		}
		meta.Report = &rep
		res.Report = &rep

		if cfg.Artifacts.PlotPath != "" {
			if err := report.SavePredictionPlot(cfg.Artifacts.PlotPath, yTest, pred); err != nil {
				return nil, err
			}
			res.PlotPath = cfg.Artifacts.PlotPath
		}
	} else {
		logger.Warn("No held-out rows; skipping evaluation", log.TestSizeKey, cfg.Data.TestSize)
	}

	if err := SaveArtifacts(p, meta, cfg.Artifacts.ModelPath, cfg.Artifacts.PreprocessorPath); err != nil {
		return nil, err
	}
	res.Metadata = meta

	logger.Info("Training run completed",
		log.BundleIDKey, meta.BundleID,
		log.FeaturesKey, meta.NFeatures,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

func pick(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}
