package pipeline

import (
	"fmt"
	"strings"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

// State holds the status of each layer taking part in one run.
type State map[model.Layer]model.LayerStatus

// NewState returns a State with every layer pending.
func NewState(layers []model.Layer) State {
	s := make(State, len(layers))
	for _, l := range layers {
		s[l] = model.StatusPending
	}
	return s
}

// Transition moves layer from one status to another. The caller supplies the
// expected prior status; the state is changed only if the move is allowed.
func Transition(state State, layer model.Layer, from, to model.LayerStatus) error {
	cur, ok := state[layer]
	if !ok {
		return fmt.Errorf("layer %s is not part of this run", layer)
	}
	if cur != from || !isAllowedTransition(from, to) {
		return &TransitionError{Layer: layer, From: cur, To: to}
	}
	state[layer] = to
	return nil
}

// A pending layer may fail without running when its dependency check fails.
func isAllowedTransition(from, to model.LayerStatus) bool {
	switch from {
	case model.StatusPending:
		return to == model.StatusRunning || to == model.StatusFailed
	case model.StatusRunning:
		return to == model.StatusCompleted || to == model.StatusFailed
	default:
		return false
	}
}

// ParseLayer resolves a layer name, ignoring case.
func ParseLayer(name string) (model.Layer, error) {
	l := model.Layer(strings.ToLower(strings.TrimSpace(name)))
	if l.Index() < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownLayer, name)
	}
	return l, nil
}

// layerRange returns the layers from..to inclusive in dependency order.
func layerRange(from, to model.Layer) ([]model.Layer, error) {
	i, j := from.Index(), to.Index()
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, from)
	}
	if j < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, to)
	}
	if i > j {
		return nil, fmt.Errorf("layer %s comes after %s", from, to)
	}
	return model.Layers[i : j+1], nil
}
