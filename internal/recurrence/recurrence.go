// Package recurrence expands a repeat rule and a base interval into a
// bounded, ordered list of occurrence intervals.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"reservio/internal/interval"
)

// Frequency is the recurrence cadence.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// MaxOccurrences is the hard safety ceiling on expansion. Pathological
// count/until combinations never generate more than this.
const MaxOccurrences = 100

// ErrInvalidRule indicates a rule that cannot be expanded.
var ErrInvalidRule = errors.New("recurrence: invalid rule")

// Rule describes a bounded repeat pattern. Exactly one of Count and Until
// must be set. ByWeekDays is accepted for forward compatibility but is not
// consulted by Expand.
type Rule struct {
	Frequency  Frequency      `json:"frequency"`
	Interval   int            `json:"interval,omitempty"`
	Count      *int           `json:"count,omitempty"`
	Until      *time.Time     `json:"until,omitempty"`
	ByWeekDays []time.Weekday `json:"by_week_days,omitempty"`
}

// Validate checks the rule is well formed and bounded.
func (r Rule) Validate() error {
	switch r.Frequency {
	case Daily, Weekly, Monthly:
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidRule, r.Frequency)
	}
	if r.Interval < 0 {
		return fmt.Errorf("%w: interval must be at least 1", ErrInvalidRule)
	}
	if (r.Count == nil) == (r.Until == nil) {
		return fmt.Errorf("%w: exactly one of count and until must be set", ErrInvalidRule)
	}
	if r.Count != nil && *r.Count < 1 {
		return fmt.Errorf("%w: count must be at least 1", ErrInvalidRule)
	}
	for _, d := range r.ByWeekDays {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("%w: invalid weekday %d", ErrInvalidRule, d)
		}
	}
	return nil
}

// step returns the effective cadence multiplier.
func (r Rule) step() int {
	if r.Interval < 1 {
		return 1
	}
	return r.Interval
}

// Expand generates occurrence intervals from the base interval. Each
// occurrence keeps the base duration; the cursor advances by the rule's
// cadence. Expansion stops when Count occurrences have been emitted, when the
// next start would pass Until, or at the MaxOccurrences ceiling. A rule that
// yields zero occurrences is an error.
func Expand(base interval.Interval, rule Rule) ([]interval.Interval, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	duration := base.Duration()
	step := rule.step()

	var out []interval.Interval
	cursor := base.Start
	for {
		if rule.Count != nil && len(out) >= *rule.Count {
			break
		}
		if rule.Until != nil && cursor.After(*rule.Until) {
			break
		}
		if len(out) >= MaxOccurrences {
			break
		}

		out = append(out, interval.Interval{Start: cursor, End: cursor.Add(duration)})

		switch rule.Frequency {
		case Daily:
			cursor = cursor.AddDate(0, 0, step)
		case Weekly:
			cursor = cursor.AddDate(0, 0, step*7)
		case Monthly:
			cursor = cursor.AddDate(0, step, 0)
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: rule produced no occurrences", ErrInvalidRule)
	}
	return out, nil
}
