package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Pipeline is an ordered chain of stages. Pipelines are immutable: Pipe
// returns a new pipeline and leaves the receiver untouched, so a base chain
// can be shared by several workflow definitions.
type Pipeline struct {
	inputs    []Field
	stages    []Stage
	available map[Field]struct{}
	err       error
}

// New returns an empty pipeline whose records must carry the given input
// fields. With no inputs the input shape is unconstrained.
func New(inputs ...Field) *Pipeline {
	p := &Pipeline{
		inputs:    append([]Field(nil), inputs...),
		available: make(map[Field]struct{}, len(inputs)),
	}
	for _, f := range inputs {
		p.available[f] = struct{}{}
	}
	return p
}

// Pipe returns a new pipeline extended by s. If s requires a field that is
// neither a pipeline input nor provided by an earlier stage, the returned
// pipeline is invalid: Err reports why and Run refuses to execute.
func (p *Pipeline) Pipe(s Stage) *Pipeline {
	next := &Pipeline{
		inputs:    p.inputs,
		stages:    append(append([]Stage(nil), p.stages...), s),
		available: make(map[Field]struct{}, len(p.available)+len(s.Provides())),
		err:       p.err,
	}
	for f := range p.available {
		next.available[f] = struct{}{}
	}
	if next.err != nil {
		return next
	}

	var missing []string
	for _, f := range s.Requires() {
		if _, ok := p.available[f]; !ok {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		next.err = eris.Errorf("pipeline: stage %q requires fields not yet guaranteed: %s",
			s.Name(), strings.Join(missing, ", "))
		return next
	}
	for _, f := range s.Provides() {
		next.available[f] = struct{}{}
	}
	return next
}

// Err returns the composition error, if any.
func (p *Pipeline) Err() error {
	return p.err
}

// StageNames returns the stage names in execution order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Guarantees reports whether a completed run is guaranteed to carry f.
func (p *Pipeline) Guarantees(f Field) bool {
	_, ok := p.available[f]
	return ok
}

// Run threads in through every stage in append order. The first failing
// stage stops execution: the error counter is incremented once, the failure
// is logged, and Run returns the record accumulated before that stage
// together with a *StageError. A nil error means every stage completed.
func (p *Pipeline) Run(ctx context.Context, in Record, rc *RunContext) (Record, error) {
	if p.err != nil {
		return in, &StageError{Kind: KindInvalidPipeline, Err: p.err}
	}

	var missing []string
	for _, f := range p.inputs {
		if !in.Has(f) {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return in, p.fail(rc, "input", Failf(KindData, "record is missing input fields: %s", strings.Join(missing, ", ")))
	}

	cur := in
	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return cur, p.fail(rc, s.Name(), &StageError{Kind: KindUnknown, Err: eris.Wrap(err, "pipeline: run cancelled")})
		}

		start := time.Now()
		out, err := s.Process(ctx, cur, rc)
		if err != nil {
			return cur, p.fail(rc, s.Name(), err)
		}
		if err := checkGrowth(cur, out, s.Provides()); err != nil {
			return cur, p.fail(rc, s.Name(), &StageError{Kind: KindData, Err: err})
		}

		rc.Log.Debug("pipeline: stage complete",
			zap.String("stage", s.Name()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		cur = out
	}

	return cur, nil
}

func (p *Pipeline) fail(rc *RunContext, stage string, err error) *StageError {
	var se *StageError
	if !errors.As(err, &se) {
		se = &StageError{Kind: KindUnknown, Err: err}
	}
	if se.Stage == "" {
		se.Stage = stage
	}

	rc.Tracker.IncErrors()
	rc.Log.Error(se.Error(),
		zap.String("stage", stage),
		zap.String("kind", string(se.Kind)),
	)
	return se
}
