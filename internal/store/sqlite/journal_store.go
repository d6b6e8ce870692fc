package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reservio/internal/journal"
)

// Record appends one journal entry.
func (db *DB) Record(ctx context.Context, e journal.Entry) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO journal_entries (at, project_id, resource_id, booking_id, action, outcome, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.At, e.ProjectID, nullable(e.ResourceID), nullable(e.BookingID), e.Action, e.Outcome, nullable(e.Detail),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// ListEntries returns a project's journal entries within [from, to] in
// chronological order.
func (db *DB) ListEntries(ctx context.Context, projectID string, from, to time.Time) ([]journal.Entry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, at, project_id, resource_id, booking_id, action, outcome, detail
		FROM journal_entries
		WHERE project_id = ? AND at >= ? AND at <= ?
		ORDER BY at, id`,
		projectID, from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []journal.Entry
	for rows.Next() {
		var e journal.Entry
		var resourceID, bookingID, detail sql.NullString
		if err := rows.Scan(&e.ID, &e.At, &e.ProjectID, &resourceID, &bookingID, &e.Action, &e.Outcome, &detail); err != nil {
			return nil, err
		}
		e.ResourceID = resourceID.String
		e.BookingID = bookingID.String
		e.Detail = detail.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
