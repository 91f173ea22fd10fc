package pipeline

import (
	"fmt"
	"math"
	"sync/atomic"

	"go.uber.org/zap"
)

// Tracker holds the run telemetry counters. Counters only grow and are safe
// for concurrent use; stages increment them but never branch on them.
type Tracker struct {
	enrichments    atomic.Int64
	errors         atomic.Int64
	directoryCalls atomic.Int64
	llmCalls       atomic.Int64
}

// IncEnrichments records one successful contact enrichment.
func (t *Tracker) IncEnrichments() { t.enrichments.Add(1) }

// IncErrors records one aborted record.
func (t *Tracker) IncErrors() { t.errors.Add(1) }

// IncDirectoryCalls records one request issued to the directory service.
func (t *Tracker) IncDirectoryCalls() { t.directoryCalls.Add(1) }

// IncLLMCalls records one request issued to the language-model service.
func (t *Tracker) IncLLMCalls() { t.llmCalls.Add(1) }

// Summary is a point-in-time copy of the counters.
type Summary struct {
	Enrichments    int64 `json:"enrichments"`
	Errors         int64 `json:"errors"`
	DirectoryCalls int64 `json:"directory_calls"`
	LLMCalls       int64 `json:"llm_calls"`
}

// Snapshot returns the current counter values.
func (t *Tracker) Snapshot() Summary {
	return Summary{
		Enrichments:    t.enrichments.Load(),
		Errors:         t.errors.Load(),
		DirectoryCalls: t.directoryCalls.Load(),
		LLMCalls:       t.llmCalls.Load(),
	}
}

// Processed is enrichments plus errors.
func (s Summary) Processed() int64 {
	return s.Enrichments + s.Errors
}

// SuccessRate returns round(enrichments/processed*100). ok is false when
// nothing has been processed.
func (s Summary) SuccessRate() (pct int64, ok bool) {
	total := s.Processed()
	if total == 0 {
		return 0, false
	}
	return int64(math.Round(float64(s.Enrichments) / float64(total) * 100)), true
}

// LogSummary writes the end-of-run summary.
func (t *Tracker) LogSummary(log *zap.Logger) Summary {
	s := t.Snapshot()
	fields := []zap.Field{
		zap.Int64("enrichments", s.Enrichments),
		zap.Int64("errors", s.Errors),
		zap.Int64("total", s.Processed()),
		zap.Int64("directory_calls", s.DirectoryCalls),
		zap.Int64("llm_calls", s.LLMCalls),
	}
	rate := "n/a"
	if pct, ok := s.SuccessRate(); ok {
		fields = append(fields, zap.Int64("success_pct", pct))
		rate = fmt.Sprintf("%d%%", pct)
	}

	log.Info("========== COMPLETED RUN ==========")
	log.Info(fmt.Sprintf("|| success rate: %s", rate))
	log.Info("run summary", fields...)
	return s
}
