package model

import "time"

// Layer names one stage of the pipeline.
type Layer string

const (
	LayerRaw     Layer = "raw"
	LayerStaging Layer = "staging"
	LayerMarts   Layer = "marts"
)

// Layers lists the layers in dependency order.
var Layers = []Layer{LayerRaw, LayerStaging, LayerMarts}

// Index returns the position of l in dependency order, or -1.
func (l Layer) Index() int {
	for i, x := range Layers {
		if x == l {
			return i
		}
	}
	return -1
}

// Upstream returns the layer l depends on. The raw layer has none.
func (l Layer) Upstream() (Layer, bool) {
	i := l.Index()
	if i <= 0 {
		return "", false
	}
	return Layers[i-1], true
}

// LayerStatus is the lifecycle state of one layer within a run.
type LayerStatus string

const (
	StatusPending   LayerStatus = "pending"
	StatusRunning   LayerStatus = "running"
	StatusCompleted LayerStatus = "completed"
	StatusFailed    LayerStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed.
func (s LayerStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// LayerRun is the persisted record of one layer attempt.
type LayerRun struct {
	RunID      string
	Layer      Layer
	Status     LayerStatus
	Rows       int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}
