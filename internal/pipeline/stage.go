package pipeline

import "context"

// Stage is one named transformation of a Record. Requires lists the fields a
// stage reads; Provides lists the fields it adds. Process must return its
// input plus the provided fields, never fewer. Stages hold no mutable state;
// everything mutable lives in the RunContext.
type Stage interface {
	Name() string
	Requires() []Field
	Provides() []Field
	Process(ctx context.Context, in Record, rc *RunContext) (Record, error)
}

// StageFunc adapts a function into a Stage.
type StageFunc struct {
	StageName string
	In        []Field
	Out       []Field
	Fn        func(ctx context.Context, in Record, rc *RunContext) (Record, error)
}

// Name implements Stage.
func (s StageFunc) Name() string { return s.StageName }

// Requires implements Stage.
func (s StageFunc) Requires() []Field { return s.In }

// Provides implements Stage.
func (s StageFunc) Provides() []Field { return s.Out }

// Process implements Stage.
func (s StageFunc) Process(ctx context.Context, in Record, rc *RunContext) (Record, error) {
	return s.Fn(ctx, in, rc)
}
