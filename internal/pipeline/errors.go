package pipeline

import (
	"errors"
	"fmt"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

// ErrUnknownLayer is returned for a layer name outside raw, staging, marts.
var ErrUnknownLayer = errors.New("unknown layer")

// DependencyError means a layer was requested whose upstream has never
// completed. The layer is not attempted.
type DependencyError struct {
	Layer    model.Layer
	Upstream model.Layer
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("layer %s: upstream layer %s has not completed", e.Layer, e.Upstream)
}

// LayerError wraps the cause of a failed layer.
type LayerError struct {
	Layer model.Layer
	RunID string
	Err   error
}

func (e *LayerError) Error() string {
	return fmt.Sprintf("layer %s failed (run %s): %v", e.Layer, e.RunID, e.Err)
}

func (e *LayerError) Unwrap() error { return e.Err }

// TransitionError is an illegal layer state change.
type TransitionError struct {
	Layer model.Layer
	From  model.LayerStatus
	To    model.LayerStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("layer %s: illegal transition %s -> %s", e.Layer, e.From, e.To)
}
