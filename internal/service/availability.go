package service

import (
	"context"
	"fmt"
	"time"

	"reservio/internal/interval"
	"reservio/internal/models"
	"reservio/internal/policy"
)

// DefaultSlotMinutes is the slot size used when a request does not specify
// one.
const DefaultSlotMinutes = 60

// AvailabilityRequest is the input for slot enumeration.
type AvailabilityRequest struct {
	ProjectID           string
	ResourceID          string
	Start               time.Time
	End                 time.Time
	SlotDurationMinutes int
}

// Slot is one bookable window with remaining capacity. Fully booked slots
// are never returned.
type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available int       `json:"available"`
}

// GetAvailability enumerates fixed-size slots between Start and End with
// remaining capacity. Slots outside the resource's booking window are
// skipped silently, and fully booked slots are omitted rather than returned
// with zero availability; consumers depend on that omission. The read is
// lock-free: one bookings fetch up front, pure computation after.
func (s *Service) GetAvailability(ctx context.Context, req AvailabilityRequest) ([]Slot, error) {
	window, err := interval.New(req.Start, req.End)
	if err != nil {
		return nil, models.ErrInvalidTimeRange(err.Error())
	}

	slotMinutes := req.SlotDurationMinutes
	if slotMinutes <= 0 {
		slotMinutes = DefaultSlotMinutes
	}
	slotDuration := time.Duration(slotMinutes) * time.Minute

	res, err := s.loadOwnedResource(ctx, req.ResourceID, req.ProjectID)
	if err != nil {
		return nil, err
	}

	// One fetch covering the whole window; slots are evaluated in memory.
	bookings, err := s.bookings.FindByResourceID(ctx, req.ResourceID, window)
	if err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}

	capacity := models.EffectiveCapacity(nil, res.DefaultCapacity)

	var slots []Slot
	for cursor := window.Start; !cursor.Add(slotDuration).After(window.End); cursor = cursor.Add(slotDuration) {
		slot := interval.Interval{Start: cursor, End: cursor.Add(slotDuration)}

		if !policy.Open(res, slot) {
			continue
		}

		used := 0
		for i := range bookings {
			if bookings[i].IsActive() && bookings[i].TimeRange.Overlaps(slot) {
				used += bookings[i].Quantity
			}
		}

		available := capacity - used
		if available > 0 {
			slots = append(slots, Slot{Start: slot.Start, End: slot.End, Available: available})
		}
	}

	return slots, nil
}
