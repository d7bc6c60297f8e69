package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultDurationMinutes is assumed for bookings carrying no explicit end
// time, matching the one-hour private-lesson convention of the UI layer.
const DefaultDurationMinutes = 60

// ErrInvalidClock indicates a value that cannot be read as an HH:mm clock time.
var ErrInvalidClock = errors.New("scheduler: invalid clock time")

// ParseClock converts an HH:mm clock string to minutes since midnight.
// Zero padding is not trusted on input: "9:30" and "09:30" parse identically.
func ParseClock(value string) (int, error) {
	hourPart, minutePart, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}

	hours, err := strconv.Atoi(strings.TrimSpace(hourPart))
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}

	minutes, err := strconv.Atoi(strings.TrimSpace(minutePart))
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}

	return hours*60 + minutes, nil
}

// FormatClock renders minutes since midnight as a zero-padded HH:mm string.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Interval is a half-open [Start, End) span in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether two half-open intervals intersect. The relation
// is symmetric: i.Overlaps(o) == o.Overlaps(i).
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && i.End > other.Start
}

// Booking is the scheduling view of an appointment effective on one date.
// An empty EndTime marks an open-ended booking; the default duration is
// applied when computing its interval.
type Booking struct {
	ID        int64
	StartTime string
	EndTime   string
}

// Interval computes the booking's effective time interval.
func (b Booking) Interval() (Interval, error) {
	start, err := ParseClock(b.StartTime)
	if err != nil {
		return Interval{}, err
	}

	end := start + DefaultDurationMinutes
	if b.EndTime != "" {
		end, err = ParseClock(b.EndTime)
		if err != nil {
			return Interval{}, err
		}
	}

	return Interval{Start: start, End: end}, nil
}

// Conflict identifies the existing booking that overlaps a candidate.
type Conflict struct {
	WithBookingID int64
	Interval      Interval
}

// DetectConflict returns the first existing booking whose interval overlaps
// the candidate, or nil when the candidate fits. A booking sharing the
// candidate's id is skipped so edits can be checked against the remaining
// bookings only. Malformed clock values surface as errors; they are never
// collapsed into a conflict-free answer.
func DetectConflict(existing []Booking, candidate Booking) (*Conflict, error) {
	candidateInterval, err := candidate.Interval()
	if err != nil {
		return nil, err
	}

	for _, booking := range existing {
		if candidate.ID != 0 && booking.ID == candidate.ID {
			continue
		}

		interval, err := booking.Interval()
		if err != nil {
			return nil, err
		}

		if candidateInterval.Overlaps(interval) {
			return &Conflict{WithBookingID: booking.ID, Interval: interval}, nil
		}
	}

	return nil, nil
}
