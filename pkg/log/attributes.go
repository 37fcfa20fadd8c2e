package log

// Standard attribute keys. Using these across packages keeps log output
// filterable when a post program runs several models and resampling loops in
// one process.
const (
	// ModelNameKey identifies the model type, e.g. "CoxPH", "DecisionTreeClassifier".
	ModelNameKey = "model.name"

	// OperationKey names the operation: "fit", "predict", "score", "resample".
	OperationKey = "ml.operation"

	// ComponentKey names the package performing the operation.
	ComponentKey = "ml.component"

	// SamplesKey is the number of rows being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of columns being processed.
	FeaturesKey = "data.features"

	// DatasetKey names the bundled dataset in use.
	DatasetKey = "data.name"

	// ReplicatesKey is the number of bootstrap replicates or simulation runs.
	ReplicatesKey = "resample.replicates"

	// SeedKey is the RNG seed for a reproducible run.
	SeedKey = "resample.seed"

	// RunIDKey tags one validation or simulation run.
	RunIDKey = "run.id"

	// MetricKey names the score being reported.
	MetricKey = "metric.name"

	// DurationMsKey is elapsed wall time in milliseconds.
	DurationMsKey = "duration.ms"
)

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)
