package recurrence

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used throughout the appointment model.
const DateLayout = "2006-01-02"

// epoch is the permissive lower bound applied when a rule has no start date.
var epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// farFuture is the permissive upper bound applied when a rule has no end date.
var farFuture = time.Date(2099, time.December, 31, 0, 0, 0, 0, time.UTC)

// ErrInvalidWeekday indicates a rule weekday outside the 0..6 range.
var ErrInvalidWeekday = errors.New("recurrence: weekday must be in 0..6")

// ParseDate parses a YYYY-MM-DD calendar date. The result is anchored at
// midnight UTC so day-granularity comparisons cannot drift across local
// timezone offsets.
func ParseDate(value string) (time.Time, error) {
	day, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("recurrence: parse date %q: %w", value, err)
	}
	return day.UTC(), nil
}

// FormatDate renders t as a YYYY-MM-DD calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AdjustedWeekday maps the native Sunday-first weekday of t onto the
// Saturday-first index used by the appointment model: Saturday is 0,
// Sunday 1, through Friday 6.
func AdjustedWeekday(t time.Time) int {
	native := int(t.Weekday())
	if native == int(time.Saturday) {
		return 0
	}
	return native + 1
}

// Rule describes a weekly recurrence fixed to one Saturday-first weekday
// between two inclusive calendar dates. Empty bounds are permissive rather
// than invalid: a missing StartDate falls back to the epoch and a missing
// EndDate to the far-future sentinel.
type Rule struct {
	Weekday   int
	StartDate string
	EndDate   string
}

// ActiveOn reports whether the rule produces an occurrence on the given
// calendar day. The day is expected to come from ParseDate; comparisons
// happen at day granularity, never on timestamps.
func (r Rule) ActiveOn(day time.Time) (bool, error) {
	if r.Weekday < 0 || r.Weekday > 6 {
		return false, ErrInvalidWeekday
	}

	if AdjustedWeekday(day) != r.Weekday {
		return false, nil
	}

	start := epoch
	if r.StartDate != "" {
		parsed, err := ParseDate(r.StartDate)
		if err != nil {
			return false, err
		}
		start = parsed
	}

	end := farFuture
	if r.EndDate != "" {
		parsed, err := ParseDate(r.EndDate)
		if err != nil {
			return false, err
		}
		end = parsed
	}

	return !day.Before(start) && !day.After(end), nil
}
