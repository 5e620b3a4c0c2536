package log

// Field keys shared by all components.
const (
	NameKey       = "logger"
	ComponentKey  = "component"
	ModelNameKey  = "model"
	OperationKey  = "operation"
	PhaseKey      = "phase"
	StageKey      = "stage"
	DatasetKey    = "dataset"
	PathKey       = "path"
	ColumnKey     = "column"
	SamplesKey    = "samples"
	FeaturesKey   = "features"
	ClustersKey   = "clusters"
	IterKey       = "iterations"
	InertiaKey    = "inertia"
	RestartKey    = "restart"
	PredsKey      = "predictions"
	DurationMsKey = "duration_ms"
	RunIDKey      = "run_id"
)

// Operation and phase values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationLoad      = "load"
	OperationRender    = "render"
	OperationTest      = "test"

	PhaseTraining  = "training"
	PhaseInference = "inference"
	PhaseAnalysis  = "analysis"
	PhaseReporting = "reporting"
)
