package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"reservio/internal/interval"
	"reservio/internal/models"
	"reservio/internal/store"
)

const bookingColumns = `id, project_id, resource_id, start_time, end_time, quantity, status, metadata, created_at, updated_at`

// SaveBooking inserts one booking row.
func (db *DB) SaveBooking(ctx context.Context, b *models.Booking) error {
	return db.SaveBookings(ctx, []*models.Booking{b})
}

// SaveBookings inserts the batch inside a single transaction: every row
// becomes visible, or none does.
func (db *DB) SaveBookings(ctx context.Context, bs []*models.Booking) error {
	if len(bs) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, b := range bs {
		metadata, err := marshalJSON(b.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		b.UpdatedAt = now

		if _, err := stmt.ExecContext(ctx,
			b.ID, b.ProjectID, b.ResourceID,
			b.TimeRange.Start.UTC(), b.TimeRange.End.UTC(),
			b.Quantity, b.Status, metadata, b.CreatedAt, b.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert booking %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bookings: %w", err)
	}
	return nil
}

// FindBookingByID loads one booking.
func (db *DB) FindBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	row := db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	return b, err
}

// FindOverlapping returns active bookings for the resource overlapping the
// half-open window. Touching boundaries do not match: strict inequalities on
// both sides.
func (db *DB) FindOverlapping(ctx context.Context, projectID, resourceID string, tr interval.Interval) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE project_id = ? AND resource_id = ?
		AND start_time < ? AND end_time > ?
		AND status = ?
		ORDER BY start_time`,
		projectID, resourceID, tr.End.UTC(), tr.Start.UTC(), models.StatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("query overlapping bookings: %w", err)
	}
	return collectBookings(rows)
}

// FindByResourceID returns bookings of any status for the resource
// overlapping the window.
func (db *DB) FindByResourceID(ctx context.Context, resourceID string, tr interval.Interval) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE resource_id = ?
		AND start_time < ? AND end_time > ?
		ORDER BY start_time`,
		resourceID, tr.End.UTC(), tr.Start.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	return collectBookings(rows)
}

// UpdateBookingStatus flips the status of a booking.
func (db *DB) UpdateBookingStatus(ctx context.Context, id, status string) error {
	result, err := db.ExecContext(ctx,
		"UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func collectBookings(rows *sql.Rows) ([]models.Booking, error) {
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var metadata sql.NullString
	err := row.Scan(
		&b.ID, &b.ProjectID, &b.ResourceID,
		&b.TimeRange.Start, &b.TimeRange.End,
		&b.Quantity, &b.Status, &metadata, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &b.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &b, nil
}
