// Package models holds the domain types shared by the reservation engine.
package models

import (
	"time"

	"reservio/internal/interval"
)

// Booking statuses. A booking is created active and may only transition to
// cancelled, which is terminal.
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// DailyWindow restricts bookable clock time within a day. Times are UTC
// "HH:MM" strings with inclusive bounds; an empty side defaults to the start
// or end of the day respectively.
type DailyWindow struct {
	Start string `json:"start,omitempty" yaml:"start,omitempty"`
	End   string `json:"end,omitempty" yaml:"end,omitempty"`
}

// WeeklyWindow restricts bookable days of week (0 = Sunday, UTC).
type WeeklyWindow struct {
	AvailableDays []int `json:"available_days" yaml:"available_days"`
}

// BookingConfig optionally restricts when a resource may be booked.
// A nil config means the resource is always open.
type BookingConfig struct {
	Daily  *DailyWindow  `json:"daily,omitempty" yaml:"daily,omitempty"`
	Weekly *WeeklyWindow `json:"weekly,omitempty" yaml:"weekly,omitempty"`
}

// Resource is a named, capacity-limited bookable entity owned by a project.
type Resource struct {
	ID              string            `json:"id"`
	ProjectID       string            `json:"project_id"`
	Name            string            `json:"name"`
	DefaultCapacity int               `json:"default_capacity"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	BookingConfig   *BookingConfig    `json:"booking_config,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Booking reserves a quantity of a resource for a time interval.
type Booking struct {
	ID         string            `json:"id"`
	ProjectID  string            `json:"project_id"`
	ResourceID string            `json:"resource_id"`
	TimeRange  interval.Interval `json:"time_range"`
	Quantity   int               `json:"quantity"`
	Status     string            `json:"status"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// IsActive reports whether the booking still consumes capacity.
func (b *Booking) IsActive() bool {
	return b.Status == StatusActive
}

// EffectiveCapacity resolves the capacity enforced for an admission request:
// the request override when present, otherwise the resource default,
// otherwise 1. Recomputed on every request, never stored.
func EffectiveCapacity(override *int, defaultCapacity int) int {
	if override != nil {
		return *override
	}
	if defaultCapacity > 0 {
		return defaultCapacity
	}
	return 1
}
