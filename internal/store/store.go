// Package store persists batch runs and the contacts they produced.
package store

import (
	"context"
	"time"

	"github.com/sells-group/crunchy-cli/internal/pipeline"
)

// RunStatus is the lifecycle state of a stored run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one batch over an input file.
type Run struct {
	ID        string           `json:"id"`
	Segment   string           `json:"segment"`
	Workflow  string           `json:"workflow"`
	Input     string           `json:"input"`
	Status    RunStatus        `json:"status"`
	Summary   pipeline.Summary `json:"summary"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Contact is one enriched record as written by a run.
type Contact struct {
	ID        string            `json:"id"`
	RunID     string            `json:"run_id"`
	Company   string            `json:"company"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Title     string            `json:"title"`
	Email     string            `json:"email"`
	Data      map[string]string `json:"data"`
	CreatedAt time.Time         `json:"created_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Segment string    `json:"segment,omitempty"`
	Status  RunStatus `json:"status,omitempty"`
	Limit   int       `json:"limit,omitempty"`
}

// Store defines the persistence interface for enrichment results.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, run Run) (*Run, error)
	CompleteRun(ctx context.Context, runID string, status RunStatus, summary pipeline.Summary) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	// Contacts
	SaveContacts(ctx context.Context, runID string, columns []pipeline.Field, recs []pipeline.Record) (int, error)
	ListContacts(ctx context.Context, runID string) ([]Contact, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
