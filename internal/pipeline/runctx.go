package pipeline

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options are the per-segment behavioral flags consumed by the pre-filter.
type Options struct {
	NeedsFundingAmount bool `json:"needs_funding_amount" yaml:"needs_funding_amount"`
	NeedsLeadInvestor  bool `json:"needs_lead_investor" yaml:"needs_lead_investor"`
}

// RunConfig is the immutable configuration of one batch run.
type RunConfig struct {
	Segment   string
	Workflow  string
	Titles    []string // priority titles, most preferred first
	Options   Options
	TotalRows int
}

// RunContext is the per-batch state shared by every stage and record.
type RunContext struct {
	ID      string
	Log     *zap.Logger
	Tracker *Tracker

	cfg RunConfig
}

// NewRunContext creates a run context with a fresh tracker. A nil logger
// falls back to the global zap logger.
func NewRunContext(cfg RunConfig, log *zap.Logger) *RunContext {
	if log == nil {
		log = zap.L()
	}
	titles := make([]string, len(cfg.Titles))
	copy(titles, cfg.Titles)
	cfg.Titles = titles

	id := uuid.NewString()
	return &RunContext{
		ID: id,
		Log: log.With(
			zap.String("run_id", id),
			zap.String("segment", cfg.Segment),
			zap.String("workflow", cfg.Workflow),
		),
		Tracker: &Tracker{},
		cfg:     cfg,
	}
}

// Titles returns a copy of the priority title list.
func (rc *RunContext) Titles() []string {
	out := make([]string, len(rc.cfg.Titles))
	copy(out, rc.cfg.Titles)
	return out
}

// Options returns the segment flags.
func (rc *RunContext) Options() Options {
	return rc.cfg.Options
}

// TotalRows is the expected record count, used for progress only.
func (rc *RunContext) TotalRows() int {
	return rc.cfg.TotalRows
}

// Info logs at info level.
func (rc *RunContext) Info(msg string, fields ...zap.Field) {
	rc.Log.Info(msg, fields...)
}

// Warn logs at warn level.
func (rc *RunContext) Warn(msg string, fields ...zap.Field) {
	rc.Log.Warn(msg, fields...)
}

// Error logs at error level.
func (rc *RunContext) Error(msg string, fields ...zap.Field) {
	rc.Log.Error(msg, fields...)
}

// Fail returns a stage failure of the given kind. Callers return it
// immediately; nothing after the call site runs.
func (rc *RunContext) Fail(kind ErrorKind, format string, args ...any) error {
	return Failf(kind, format, args...)
}
