// Package placementlog is the append-only journal of order placements.
//
// Every transition of a placement (started, a step done, compensating,
// completed, failed) is one entry. Entries carry the trace and span ids of
// the active span so a row can be joined with its trace.
package placementlog

import (
	"context"
	"time"
)

type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

type Entry struct {
	// PlacementID is the order id.
	PlacementID string
	Status      Status
	// Step is the step that just ran or failed.
	Step string
	// Payload is written on STARTED only.
	Payload string
	Errors  []string

	TraceID string
	SpanID  string

	RecordedAt time.Time
}

// Repository persists entries. Append never updates an existing row.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	History(ctx context.Context, placementID string) ([]Entry, error)
}
