package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservio/internal/models"
)

func TestGetAvailabilityOpenResource(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedResource(t, "res-1", "proj-1", 3, nil)
	day := dayUTC(2024, time.March, 4)
	start, end := hourRange(day, 9, 13)

	slots, err := f.service.GetAvailability(ctx, AvailabilityRequest{
		ProjectID: "proj-1", ResourceID: "res-1",
		Start: start, End: end,
	})
	require.NoError(t, err)
	require.Len(t, slots, 4, "no config means slots across the full range")
	for _, slot := range slots {
		assert.Equal(t, 3, slot.Available)
		assert.Equal(t, time.Hour, slot.End.Sub(slot.Start))
	}
	assert.Equal(t, start, slots[0].Start)
}

func TestGetAvailabilityOmitsFullyBooked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedResource(t, "res-1", "proj-1", 1, nil)
	day := dayUTC(2024, time.March, 4)

	bookStart, bookEnd := hourRange(day, 10, 11)
	_, err := f.service.CreateBooking(ctx, BookingRequest{
		ProjectID: "proj-1", ResourceID: "res-1",
		Start: bookStart, End: bookEnd, Quantity: 1,
	})
	require.NoError(t, err)

	start, end := hourRange(day, 9, 12)
	slots, err := f.service.GetAvailability(ctx, AvailabilityRequest{
		ProjectID: "proj-1", ResourceID: "res-1",
		Start: start, End: end,
	})
	require.NoError(t, err)

	require.Len(t, slots, 2, "the fully booked 10:00 slot is omitted, not returned with zero")
	assert.Equal(t, day.Add(9*time.Hour), slots[0].Start)
	assert.Equal(t, day.Add(11*time.Hour), slots[1].Start)
}

func TestGetAvailabilityPartialUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedResource(t, "res-1", "proj-1", 5, nil)
	day := dayUTC(2024, time.March, 4)

	bookStart, bookEnd := hourRange(day, 10, 11)
	_, err := f.service.CreateBooking(ctx, BookingRequest{
		ProjectID: "proj-1", ResourceID: "res-1",
		Start: bookStart, End: bookEnd, Quantity: 2,
	})
	require.NoError(t, err)

	start, end := hourRange(day, 10, 11)
	slots, err := f.service.GetAvailability(ctx, AvailabilityRequest{
		ProjectID: "proj-1", ResourceID: "res-1",
		Start: start, End: end,
	})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, 3, slots[0].Available)
}

func TestGetAvailabilityIgnoresCancelled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedResource(t, "res-1", "proj-1", 1, nil)
	day := dayUTC(2024, time.March, 4)

	bookStart, bookEnd := hourRange(day, 10, 11)
	id, err := f.service.CreateBooking(ctx, BookingRequest{
		ProjectID: "proj-1", ResourceID: "res-1",
		Start: bookStart, End: bookEnd, Quantity: 1,
	})
	require.NoError(t, err)
	require.NoError(t, f.service.CancelBooking(ctx, "proj-1", id))

	slots, err := f.service.GetAvailability(ctx, AvailabilityRequest{
		ProjectID: "proj-1", ResourceID: "res-1",
		Start: bookStart, End: bookEnd,
	})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, 1, slots[0].Available)
}

func TestGetAvailabilitySkipsClosedSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedResource(t, "res-1", "proj-1", 2, &models.BookingConfig{
		Daily: &models.DailyWindow{Start: "10:00", End: "12:00"},
	})
	day := dayUTC(2024, time.March, 4)

	start, end := hourRange(day, 8, 14)
	slots, err := f.service.GetAvailability(ctx, AvailabilityRequest{
		ProjectID: "proj-1", ResourceID: "res-1",
		Start: start, End: end,
	})
	require.NoError(t, err)

	// Only 10:00 and 11:00 fall inside the daily window.
	require.Len(t, slots, 2)
	assert.Equal(t, day.Add(10*time.Hour), slots[0].Start)
	assert.Equal(t, day.Add(11*time.Hour), slots[1].Start)
}

func TestGetAvailabilitySlotSizing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedResource(t, "res-1", "proj-1", 1, nil)
	day := dayUTC(2024, time.March, 4)

	t.Run("CustomDuration", func(t *testing.T) {
		start, end := hourRange(day, 10, 11)
		slots, err := f.service.GetAvailability(ctx, AvailabilityRequest{
			ProjectID: "proj-1", ResourceID: "res-1",
			Start: start, End: end, SlotDurationMinutes: 30,
		})
		require.NoError(t, err)
		assert.Len(t, slots, 2)
	})

	t.Run("TrailingPartialSlotDropped", func(t *testing.T) {
		// 90 minutes of range with 60-minute slots yields a single slot.
		start := day.Add(10 * time.Hour)
		slots, err := f.service.GetAvailability(ctx, AvailabilityRequest{
			ProjectID: "proj-1", ResourceID: "res-1",
			Start: start, End: start.Add(90 * time.Minute),
		})
		require.NoError(t, err)
		require.Len(t, slots, 1)
		assert.Equal(t, start, slots[0].Start)
	})
}

func TestGetAvailabilityValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedResource(t, "res-1", "proj-1", 1, nil)
	day := dayUTC(2024, time.March, 4)
	start, end := hourRange(day, 10, 11)

	_, err := f.service.GetAvailability(ctx, AvailabilityRequest{
		ProjectID: "proj-1", ResourceID: "res-1", Start: end, End: start,
	})
	assert.Equal(t, models.KindInvalidTimeRange, models.KindOf(err))

	_, err = f.service.GetAvailability(ctx, AvailabilityRequest{
		ProjectID: "proj-1", ResourceID: "ghost", Start: start, End: end,
	})
	assert.Equal(t, models.KindResourceNotFound, models.KindOf(err))

	_, err = f.service.GetAvailability(ctx, AvailabilityRequest{
		ProjectID: "proj-2", ResourceID: "res-1", Start: start, End: end,
	})
	assert.Equal(t, models.KindResourceDoesNotBelongToProject, models.KindOf(err))
}
