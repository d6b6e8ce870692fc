package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"reservio/internal/interval"
	"reservio/internal/models"
)

func officeHours() *models.Resource {
	return &models.Resource{
		ID:              "res-1",
		ProjectID:       "proj-1",
		Name:            "Meeting Room",
		DefaultCapacity: 1,
		BookingConfig: &models.BookingConfig{
			Daily:  &models.DailyWindow{Start: "09:00", End: "17:00"},
			Weekly: &models.WeeklyWindow{AvailableDays: []int{1, 2, 3, 4, 5}},
		},
	}
}

func TestAssertBookingConfig(t *testing.T) {
	// 2024-01-01 is a Monday; 2024-01-07 is a Sunday.
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	at := func(day time.Time, h, m int) time.Time {
		return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
	}

	tests := []struct {
		name     string
		ivl      interval.Interval
		wantKind models.Kind
	}{
		{"SundayRejected", interval.Interval{Start: at(sunday, 10, 0), End: at(sunday, 11, 0)}, models.KindDayNotAllowed},
		{"BeforeOpening", interval.Interval{Start: at(monday, 8, 0), End: at(monday, 9, 0)}, models.KindStartTimeOutsideConfig},
		{"AfterClosing", interval.Interval{Start: at(monday, 17, 1), End: at(monday, 18, 0)}, models.KindEndTimeOutsideConfig},
		{"ExactWindow", interval.Interval{Start: at(monday, 9, 0), End: at(monday, 17, 0)}, ""},
		{"InsideWindow", interval.Interval{Start: at(monday, 10, 0), End: at(monday, 11, 30)}, ""},
		{"EndsOnDisallowedDay", interval.Interval{Start: at(monday.AddDate(0, 0, 5), 10, 0), End: at(sunday, 10, 0)}, models.KindDayNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AssertBookingConfig(officeHours(), tt.ivl)
			if tt.wantKind == "" {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantKind, models.KindOf(err))
			}
		})
	}
}

func TestAssertBookingConfigNoConfig(t *testing.T) {
	res := &models.Resource{ID: "res-open", DefaultCapacity: 3}
	ivl := interval.Interval{
		Start: time.Date(2024, 1, 7, 3, 0, 0, 0, time.UTC), // Sunday, small hours
		End:   time.Date(2024, 1, 7, 4, 0, 0, 0, time.UTC),
	}
	assert.NoError(t, AssertBookingConfig(res, ivl))
	assert.True(t, Open(res, ivl))
}

func TestAssertBookingConfigDailyDefaults(t *testing.T) {
	res := &models.Resource{
		ID:            "res-2",
		BookingConfig: &models.BookingConfig{Daily: &models.DailyWindow{Start: "08:00"}},
	}

	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	// End side defaults to 23:59, so a late booking passes.
	late := interval.Interval{Start: day.Add(22 * time.Hour), End: day.Add(23*time.Hour + 30*time.Minute)}
	assert.NoError(t, AssertBookingConfig(res, late))

	early := interval.Interval{Start: day.Add(7 * time.Hour), End: day.Add(8 * time.Hour)}
	assert.Equal(t, models.KindStartTimeOutsideConfig, models.KindOf(AssertBookingConfig(res, early)))
}

func TestAssertBookingConfigMultiDayClockTimes(t *testing.T) {
	// Multi-day bookings are validated on the clock time of start and end
	// only; intermediate days are not checked.
	res := &models.Resource{
		ID:            "res-3",
		BookingConfig: &models.BookingConfig{Daily: &models.DailyWindow{Start: "09:00", End: "17:00"}},
	}

	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 16, 0, 0, 0, time.UTC)
	assert.NoError(t, AssertBookingConfig(res, interval.Interval{Start: start, End: end}))

	lateEnd := time.Date(2024, 1, 3, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, models.KindEndTimeOutsideConfig,
		models.KindOf(AssertBookingConfig(res, interval.Interval{Start: start, End: lateEnd})))
}

func TestAssertBookingConfigMalformedTime(t *testing.T) {
	res := &models.Resource{
		ID:            "res-4",
		BookingConfig: &models.BookingConfig{Daily: &models.DailyWindow{Start: "25:99"}},
	}
	ivl := interval.Interval{
		Start: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
	}
	err := AssertBookingConfig(res, ivl)
	assert.Error(t, err)
	assert.Empty(t, models.KindOf(err))
}
