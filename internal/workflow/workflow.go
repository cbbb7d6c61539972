package workflow

// Stage identifies a phase of the audit pipeline.
type Stage int

const (
	// StageCollection fans out detective task units that gather Evidence.
	StageCollection Stage = 0

	// StageReview fans out judge task units that produce Opinions from the
	// fully merged Evidence of StageCollection.
	StageReview Stage = 1
)

func (s Stage) String() string {
	names := [...]string{"collection", "review"}
	if int(s) >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// Stages lists all pipeline stages in execution order.
var Stages = []Stage{StageCollection, StageReview}

// ProgressEvent is emitted to the user during a run.
type ProgressEvent struct {
	Stage   Stage
	Task    string // task unit name
	Status  ProgressStatus
	Message string
}

// ProgressStatus is the state of a task unit within a stage.
type ProgressStatus string

const (
	ProgressPending     ProgressStatus = "pending"
	ProgressWorking     ProgressStatus = "working"
	ProgressComplete    ProgressStatus = "complete"
	ProgressCompensated ProgressStatus = "compensated"
	ProgressFailed      ProgressStatus = "failed"
)
