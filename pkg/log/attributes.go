package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type, e.g. "LinearRegression".
	ModelNameKey = "model.name"

	// BundleIDKey identifies the artifact pair produced by one training run.
	BundleIDKey = "model.bundle_id"

	// OperationKey is the ML operation: fit, predict, transform, ...
	OperationKey = "ml.operation"

	// ComponentKey is the package performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey is the lifecycle phase: training, validation, inference, ...
	PhaseKey = "ml.phase"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	ColumnKey   = "data.column"
	PathKey     = "data.path"
	VariantKey  = "data.variant"
)

// Performance and evaluation.
const (
	DurationMsKey = "perf.duration_ms"
	MAEKey        = "metrics.mae"
	RMSEKey       = "metrics.rmse"
	R2ScoreKey    = "metrics.r2_score"
	RankKey       = "solver.rank"
)

// Prediction and serving.
const (
	PredsKey     = "preds.count"
	PriceKey     = "preds.price"
	RequestIDKey = "http.request_id"
	MethodKey    = "http.method"
	RouteKey     = "http.route"
	StatusKey    = "http.status"
)

// Configuration.
const (
	RandomSeedKey = "config.random_seed"
	TestSizeKey   = "config.test_size"
)

// Standard attribute values.
const (
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationScore        = "score"
	OperationSave         = "save"
	OperationLoad         = "load"

	PhaseTraining      = "training"
	PhaseValidation    = "validation"
	PhaseInference     = "inference"
	PhasePreprocessing = "preprocessing"
)
