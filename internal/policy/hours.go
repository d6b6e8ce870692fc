// Package policy implements the admission policies applied to every booking
// request: the business-hours window check and the capacity check.
package policy

import (
	"fmt"
	"strconv"
	"strings"

	"reservio/internal/interval"
	"reservio/internal/models"
)

const (
	dayStartMinutes = 0
	dayEndMinutes   = 23*60 + 59
)

// AssertBookingConfig validates a candidate interval against the resource's
// booking window. A resource without a config is always open.
//
// The weekly check constrains both the start and the end day of week (UTC),
// so a multi-day booking ending on a disallowed day is rejected even when it
// starts on an allowed one. The daily check compares only the minute-of-day
// of the start and end instants; hours on intervening days of a multi-day
// booking are intentionally not validated.
func AssertBookingConfig(res *models.Resource, ivl interval.Interval) error {
	cfg := res.BookingConfig
	if cfg == nil {
		return nil
	}

	start := ivl.Start.UTC()
	end := ivl.End.UTC()

	if cfg.Weekly != nil && len(cfg.Weekly.AvailableDays) > 0 {
		allowed := make(map[int]bool, len(cfg.Weekly.AvailableDays))
		for _, d := range cfg.Weekly.AvailableDays {
			allowed[d] = true
		}
		if !allowed[int(start.Weekday())] {
			return models.ErrDayNotAllowed(res.ID, fmt.Sprintf("%s is not a bookable day", start.Weekday()))
		}
		if !allowed[int(end.Weekday())] {
			return models.ErrDayNotAllowed(res.ID, fmt.Sprintf("booking ends on %s which is not a bookable day", end.Weekday()))
		}
	}

	if cfg.Daily != nil {
		startLimit, err := minutesOfDay(cfg.Daily.Start, dayStartMinutes)
		if err != nil {
			return fmt.Errorf("resource %s daily start: %w", res.ID, err)
		}
		endLimit, err := minutesOfDay(cfg.Daily.End, dayEndMinutes)
		if err != nil {
			return fmt.Errorf("resource %s daily end: %w", res.ID, err)
		}

		startMin := start.Hour()*60 + start.Minute()
		endMin := end.Hour()*60 + end.Minute()

		if startMin < startLimit {
			return models.ErrStartTimeOutsideConfig(res.ID,
				fmt.Sprintf("start %s is before bookable window opens at %s", clock(startMin), clock(startLimit)))
		}
		if endMin > endLimit {
			return models.ErrEndTimeOutsideConfig(res.ID,
				fmt.Sprintf("end %s is after bookable window closes at %s", clock(endMin), clock(endLimit)))
		}
	}

	return nil
}

// minutesOfDay parses an "HH:MM" string into minutes since midnight,
// returning def when the string is empty.
func minutesOfDay(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return hour*60 + minute, nil
}

func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Open reports whether the interval passes the business-hours check. It is
// the soft-filter form used by availability enumeration.
func Open(res *models.Resource, ivl interval.Interval) bool {
	return AssertBookingConfig(res, ivl) == nil
}
