// Package pipeline runs the raw, staging and marts layers in dependency
// order.
//
// Every layer is a full refresh: its step replaces whole tables inside one
// store transaction, so a failed layer leaves the previous tables in place
// and a rerun with the same input produces the same tables. Each attempt is
// written to the run log, and a layer whose upstream is not part of the
// current run is only started if the run log shows that upstream completed
// at some point.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cleared-dev/ledgerflow/internal/logger"
	"github.com/cleared-dev/ledgerflow/internal/model"
	"github.com/cleared-dev/ledgerflow/internal/quality"
	"github.com/cleared-dev/ledgerflow/internal/store"
)

// LayerResult is the outcome of one layer within a run.
type LayerResult struct {
	Layer    model.Layer
	Status   model.LayerStatus
	Tables   map[string]int
	Issues   []quality.Issue
	Err      error
	Duration time.Duration
}

// Rows returns the total number of rows written by the layer.
func (r LayerResult) Rows() int {
	n := 0
	for _, c := range r.Tables {
		n += c
	}
	return n
}

// Report summarizes one pipeline run.
type Report struct {
	RunID     string
	Status    model.LayerStatus
	Layers    []LayerResult
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

// Layer returns the result for l, if l was part of the run.
func (r *Report) Layer(l model.Layer) (LayerResult, bool) {
	for _, lr := range r.Layers {
		if lr.Layer == l {
			return lr, true
		}
	}
	return LayerResult{}, false
}

// FailedLayer returns the layer that failed the run, if any.
func (r *Report) FailedLayer() (model.Layer, bool) {
	for _, lr := range r.Layers {
		if lr.Status == model.StatusFailed {
			return lr.Layer, true
		}
	}
	return "", false
}

// Options tunes a Pipeline. Zero values are fine.
type Options struct {
	QualityLog string // CSV path; empty disables the log
	Now        func() time.Time
	NewRunID   func() string
}

// Pipeline sequences the layer steps over a storage backend.
type Pipeline struct {
	backend    store.Backend
	steps      map[model.Layer]Step
	qualityLog string
	now        func() time.Time
	newRunID   func() string
}

// New creates a Pipeline. Exactly one step per layer is required.
func New(backend store.Backend, opts Options, steps ...Step) (*Pipeline, error) {
	byLayer := make(map[model.Layer]Step, len(steps))
	for _, s := range steps {
		l := s.Layer()
		if l.Index() < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, l)
		}
		if _, dup := byLayer[l]; dup {
			return nil, fmt.Errorf("duplicate step for layer %s", l)
		}
		byLayer[l] = s
	}
	for _, l := range model.Layers {
		if _, ok := byLayer[l]; !ok {
			return nil, fmt.Errorf("no step for layer %s", l)
		}
	}

	p := &Pipeline{
		backend:    backend,
		steps:      byLayer,
		qualityLog: opts.QualityLog,
		now:        opts.Now,
		newRunID:   opts.NewRunID,
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newRunID == nil {
		p.newRunID = uuid.NewString
	}
	return p, nil
}

// RunAll runs every layer.
func (p *Pipeline) RunAll(ctx context.Context) (*Report, error) {
	return p.Run(ctx, model.Layers[0], model.Layers[len(model.Layers)-1])
}

// RunLayer runs a single layer, trusting the run log for its upstream.
func (p *Pipeline) RunLayer(ctx context.Context, l model.Layer) (*Report, error) {
	return p.Run(ctx, l, l)
}

// Run executes layers from..to inclusive. On the first failure the run stops;
// later layers stay pending. The returned error is a *DependencyError or
// *LayerError for layer failures.
func (p *Pipeline) Run(ctx context.Context, from, to model.Layer) (*Report, error) {
	layers, err := layerRange(from, to)
	if err != nil {
		return nil, err
	}

	runID := p.newRunID()
	log := logger.FromContext(ctx).With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx, log)

	report := &Report{RunID: runID, Status: model.StatusRunning, StartedAt: p.now()}
	state := NewState(layers)
	log.Info().Str("from", string(from)).Str("to", string(to)).Msg("pipeline run started")

	for i, l := range layers {
		result, err := p.runLayer(ctx, runID, state, l)
		report.Layers = append(report.Layers, result)
		if err != nil {
			for _, rest := range layers[i+1:] {
				report.Layers = append(report.Layers, LayerResult{Layer: rest, Status: state[rest]})
			}
			report.Status = model.StatusFailed
			report.Err = err
			report.Duration = p.now().Sub(report.StartedAt)
			log.Error().Err(err).Str("layer", string(l)).Msg("pipeline run failed")
			return report, err
		}
	}

	report.Status = model.StatusCompleted
	report.Duration = p.now().Sub(report.StartedAt)
	log.Info().Dur("duration", report.Duration).Msg("pipeline run completed")
	return report, nil
}

func (p *Pipeline) runLayer(ctx context.Context, runID string, state State, l model.Layer) (LayerResult, error) {
	log := logger.FromContext(ctx).With().Str("layer", string(l)).Logger()
	result := LayerResult{Layer: l, Status: model.StatusPending}
	run := model.LayerRun{RunID: runID, Layer: l, StartedAt: p.now()}

	if err := p.checkUpstream(ctx, state, l); err != nil {
		if terr := Transition(state, l, model.StatusPending, model.StatusFailed); terr != nil {
			return result, terr
		}
		run.Status = model.StatusFailed
		run.Error = err.Error()
		run.FinishedAt = run.StartedAt
		result.Status = model.StatusFailed
		result.Err = err
		if recErr := p.record(ctx, run); recErr != nil {
			return result, errors.Join(err, recErr)
		}
		return result, err
	}

	if err := Transition(state, l, model.StatusPending, model.StatusRunning); err != nil {
		return result, err
	}
	result.Status = model.StatusRunning
	run.Status = model.StatusRunning
	if err := p.record(ctx, run); err != nil {
		return result, err
	}
	log.Info().Msg("layer started")

	var stepResult StepResult
	err := p.backend.InTx(ctx, func(tx store.Store) error {
		var err error
		stepResult, err = p.steps[l].Run(ctx, tx)
		return err
	})

	finished := p.now()
	result.Duration = finished.Sub(run.StartedAt)
	result.Issues = p.stamp(stepResult.Issues, runID, l, finished)
	p.appendIssues(ctx, result.Issues)

	run.FinishedAt = finished
	if err != nil {
		layerErr := &LayerError{Layer: l, RunID: runID, Err: err}
		if terr := Transition(state, l, model.StatusRunning, model.StatusFailed); terr != nil {
			return result, errors.Join(layerErr, terr)
		}
		result.Status = model.StatusFailed
		result.Err = layerErr
		run.Status = model.StatusFailed
		run.Error = err.Error()
		log.Error().Err(err).Dur("duration", result.Duration).Msg("layer failed")
		if recErr := p.record(ctx, run); recErr != nil {
			return result, errors.Join(layerErr, recErr)
		}
		return result, layerErr
	}

	if err := Transition(state, l, model.StatusRunning, model.StatusCompleted); err != nil {
		return result, err
	}
	// Counts are reported only for committed tables.
	result.Tables = stepResult.Tables
	result.Status = model.StatusCompleted
	run.Status = model.StatusCompleted
	run.Rows = result.Rows()
	log.Info().Int("rows", run.Rows).Int("issues", len(result.Issues)).Dur("duration", result.Duration).Msg("layer completed")
	if err := p.record(ctx, run); err != nil {
		return result, err
	}
	return result, nil
}

// checkUpstream requires the upstream layer to have completed in this run,
// or, when it is not part of this run, in some earlier run.
func (p *Pipeline) checkUpstream(ctx context.Context, state State, l model.Layer) error {
	up, ok := l.Upstream()
	if !ok {
		return nil
	}
	if status, inRun := state[up]; inRun {
		if status != model.StatusCompleted {
			return &DependencyError{Layer: l, Upstream: up}
		}
		return nil
	}
	_, found, err := p.backend.LastCompleted(ctx, up)
	if err != nil {
		return fmt.Errorf("checking upstream %s: %w", up, err)
	}
	if !found {
		return &DependencyError{Layer: l, Upstream: up}
	}
	return nil
}

func (p *Pipeline) record(ctx context.Context, run model.LayerRun) error {
	if err := p.backend.RecordRun(ctx, run); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

func (p *Pipeline) stamp(issues []quality.Issue, runID string, l model.Layer, at time.Time) []quality.Issue {
	for i := range issues {
		issues[i].Timestamp = at
		issues[i].RunID = runID
		issues[i].Layer = string(l)
	}
	return issues
}

func (p *Pipeline) appendIssues(ctx context.Context, issues []quality.Issue) {
	if p.qualityLog == "" || len(issues) == 0 {
		return
	}
	if err := quality.Append(p.qualityLog, issues); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("path", p.qualityLog).Msg("writing quality log")
	}
}
