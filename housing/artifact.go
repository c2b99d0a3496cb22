package housing

import (
	"os"
	"time"

	"github.com/ezoic/houseprice/core/model"
	"github.com/ezoic/houseprice/linear"
	"github.com/ezoic/houseprice/metrics"
	"github.com/ezoic/houseprice/pipeline"
	hpErrors "github.com/ezoic/houseprice/pkg/errors"
	"github.com/ezoic/houseprice/preprocessing"
)

// Metadata is stored in both artifacts of a training run.
type Metadata struct {
	// BundleID is generated once per training run; the two artifacts of one run share it.
	BundleID  string
	CreatedAt time.Time
	Variant   string
	NFeatures int

	TrainRows int
	TestRows  int
	// Report is nil when training ran without a held-out split.
	Report *metrics.Report
}

// ModelArtifact is the on-disk form of the fitted regressor.
type ModelArtifact struct {
	Metadata Metadata
	Model    *linear.LinearRegression
}

// PreprocessorArtifact is the on-disk form of the fitted column transformer.
type PreprocessorArtifact struct {
	Metadata     Metadata
	Preprocessor *preprocessing.ColumnTransformer
}

// SaveArtifacts writes the two halves of a fitted pipeline to modelPath and
// preprocessorPath, creating parent directories as needed.
func SaveArtifacts(p *pipeline.Pipeline, meta Metadata, modelPath, preprocessorPath string) error {
	if p == nil || !p.IsFitted() {
		return hpErrors.NewNotFittedError("Pipeline", "SaveArtifacts")
	}

	pre := PreprocessorArtifact{Metadata: meta, Preprocessor: p.Preprocessor}
	if err := model.SaveModel(&pre, preprocessorPath); err != nil {
		return hpErrors.Wrapf(err, "save preprocessor to %s", preprocessorPath)
	}
	m := ModelArtifact{Metadata: meta, Model: p.Regressor}
	if err := model.SaveModel(&m, modelPath); err != nil {
		return hpErrors.Wrapf(err, "save model to %s", modelPath)
	}
	return nil
}

// LoadArtifacts reads both artifacts and reassembles the fitted pipeline.
//
// Errors:
//   - ErrModelNotTrained: an artifact file does not exist
//   - SchemaMismatchError: the artifacts come from different training runs or disagree
//     on the feature count
func LoadArtifacts(modelPath, preprocessorPath string) (*pipeline.Pipeline, Metadata, error) {
	var pre PreprocessorArtifact
	if err := loadArtifact(&pre, preprocessorPath); err != nil {
		return nil, Metadata{}, err
	}
	var m ModelArtifact
	if err := loadArtifact(&m, modelPath); err != nil {
		return nil, Metadata{}, err
	}

	if m.Metadata.BundleID != pre.Metadata.BundleID {
		return nil, Metadata{}, hpErrors.NewSchemaDetailError("LoadArtifacts",
			"model bundle "+m.Metadata.BundleID+" does not match preprocessor bundle "+pre.Metadata.BundleID)
	}

	p, err := pipeline.Assemble(pre.Preprocessor, m.Model)
	if err != nil {
		return nil, Metadata{}, hpErrors.Wrapf(err, "load artifacts %s, %s", modelPath, preprocessorPath)
	}
	return p, m.Metadata, nil
}

func loadArtifact(v interface{}, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return hpErrors.Wrapf(hpErrors.ErrModelNotTrained, "artifact %s not found; run 'housing train' first", path)
	}
	if err := model.LoadModel(v, path); err != nil {
		return hpErrors.Wrapf(err, "load artifact %s", path)
	}
	return nil
}
