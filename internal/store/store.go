// Package store defines the persistence contract the reservation engine
// depends on. Implementations must make SaveMany atomic: either every
// booking in the batch becomes visible or none does. Backends intended for
// multi-instance deployments must additionally serialize conflicting
// overlap-check-then-insert sequences (for example with a serializable
// transaction); the group and recurring admission paths rely on that
// property instead of the per-resource lock.
package store

import (
	"context"
	"errors"

	"reservio/internal/interval"
	"reservio/internal/models"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("store: not found")

// ResourceStore persists resources.
type ResourceStore interface {
	CreateResource(ctx context.Context, res *models.Resource) error
	UpdateResource(ctx context.Context, res *models.Resource) error
	FindResourceByID(ctx context.Context, id string) (*models.Resource, error)
	FindResourcesByProjectID(ctx context.Context, projectID string) ([]models.Resource, error)
}

// BookingStore persists bookings.
type BookingStore interface {
	SaveBooking(ctx context.Context, b *models.Booking) error
	// SaveBookings inserts the whole batch atomically.
	SaveBookings(ctx context.Context, bs []*models.Booking) error
	FindBookingByID(ctx context.Context, id string) (*models.Booking, error)
	// FindOverlapping returns only active bookings for the resource whose
	// interval overlaps tr.
	FindOverlapping(ctx context.Context, projectID, resourceID string, tr interval.Interval) ([]models.Booking, error)
	// FindByResourceID returns bookings of any status for the resource
	// whose interval overlaps tr.
	FindByResourceID(ctx context.Context, resourceID string, tr interval.Interval) ([]models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id, status string) error
}

// Store combines the two persistence contracts; the SQLite reference
// implementation satisfies both with one handle.
type Store interface {
	ResourceStore
	BookingStore
}
