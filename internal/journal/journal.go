// Package journal keeps an append-only record of admission and cancellation
// outcomes, exportable as an Excel workbook for offline review.
package journal

import (
	"context"
	"time"
)

// Actions recorded in the journal.
const (
	ActionCreate      = "create"
	ActionCreateGroup = "create_group"
	ActionRecurring   = "create_recurring"
	ActionCancel      = "cancel"
)

// Outcomes of a recorded action.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// Entry is one journal record.
type Entry struct {
	ID         int64     `json:"id"`
	At         time.Time `json:"at"`
	ProjectID  string    `json:"project_id"`
	ResourceID string    `json:"resource_id,omitempty"`
	BookingID  string    `json:"booking_id,omitempty"`
	Action     string    `json:"action"`
	Outcome    string    `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
}

// Recorder appends journal entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Reader lists journal entries for a project within a time range.
type Reader interface {
	ListEntries(ctx context.Context, projectID string, from, to time.Time) ([]Entry, error)
}
