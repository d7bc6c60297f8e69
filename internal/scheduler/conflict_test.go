package scheduler

import (
	"errors"
	"testing"
)

func TestParseClock(t *testing.T) {
	t.Parallel()

	t.Run("accepts padded and unpadded hours", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			value string
			want  int
		}{
			{"09:30", 570},
			{"9:30", 570},
			{"00:00", 0},
			{"23:59", 1439},
			{" 10:05 ", 605},
		}

		for _, tc := range cases {
			got, err := ParseClock(tc.value)
			if err != nil {
				t.Errorf("ParseClock(%q) returned error: %v", tc.value, err)
				continue
			}
			if got != tc.want {
				t.Errorf("ParseClock(%q) = %d, want %d", tc.value, got, tc.want)
			}
		}
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		t.Parallel()

		for _, value := range []string{"", "930", "24:00", "12:60", "ab:cd", "12:"} {
			if _, err := ParseClock(value); !errors.Is(err, ErrInvalidClock) {
				t.Errorf("ParseClock(%q) expected ErrInvalidClock, got %v", value, err)
			}
		}
	})

	t.Run("round trips through FormatClock", func(t *testing.T) {
		t.Parallel()

		got, err := ParseClock(FormatClock(570))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 570 {
			t.Fatalf("round trip produced %d, want 570", got)
		}
	})
}

func TestInterval_Overlaps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a    Interval
		b    Interval
		want bool
	}{
		{"partial overlap", Interval{600, 660}, Interval{630, 690}, true},
		{"containment", Interval{600, 720}, Interval{630, 660}, true},
		{"identical", Interval{600, 660}, Interval{600, 660}, true},
		{"touching boundaries", Interval{600, 660}, Interval{660, 720}, false},
		{"disjoint", Interval{600, 660}, Interval{700, 760}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Errorf("a.Overlaps(b) = %v, want %v", got, tc.want)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Errorf("overlap is not symmetric: b.Overlaps(a) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBooking_Interval(t *testing.T) {
	t.Parallel()

	t.Run("uses the explicit end time when present", func(t *testing.T) {
		t.Parallel()

		interval, err := Booking{StartTime: "10:00", EndTime: "11:30"}.Interval()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if interval != (Interval{600, 690}) {
			t.Fatalf("unexpected interval: %+v", interval)
		}
	})

	t.Run("applies the default duration to open-ended bookings", func(t *testing.T) {
		t.Parallel()

		interval, err := Booking{StartTime: "10:00"}.Interval()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if interval != (Interval{600, 660}) {
			t.Fatalf("unexpected interval: %+v", interval)
		}
	})
}

func TestDetectConflict(t *testing.T) {
	t.Parallel()

	t.Run("finds an overlapping booking", func(t *testing.T) {
		t.Parallel()

		existing := []Booking{{ID: 1, StartTime: "10:00", EndTime: "11:00"}}
		candidate := Booking{StartTime: "10:30", EndTime: "11:30"}

		conflict, err := DetectConflict(existing, candidate)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if conflict == nil {
			t.Fatal("expected a conflict")
		}
		if conflict.WithBookingID != 1 {
			t.Fatalf("conflict attributed to booking %d, want 1", conflict.WithBookingID)
		}
	})

	t.Run("allows adjacent bookings", func(t *testing.T) {
		t.Parallel()

		existing := []Booking{{ID: 1, StartTime: "10:00", EndTime: "11:00"}}
		candidate := Booking{StartTime: "11:00", EndTime: "12:00"}

		conflict, err := DetectConflict(existing, candidate)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if conflict != nil {
			t.Fatalf("expected no conflict, got %+v", conflict)
		}
	})

	t.Run("two open-ended bookings thirty minutes apart collide", func(t *testing.T) {
		t.Parallel()

		existing := []Booking{{ID: 1, StartTime: "10:00"}}
		candidate := Booking{StartTime: "10:30"}

		conflict, err := DetectConflict(existing, candidate)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if conflict == nil {
			t.Fatal("expected the default one-hour windows to overlap")
		}
	})

	t.Run("skips the candidate's own booking during edits", func(t *testing.T) {
		t.Parallel()

		existing := []Booking{{ID: 7, StartTime: "10:00", EndTime: "11:00"}}
		candidate := Booking{ID: 7, StartTime: "10:00", EndTime: "11:00"}

		conflict, err := DetectConflict(existing, candidate)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if conflict != nil {
			t.Fatalf("editing a booking must not conflict with itself: %+v", conflict)
		}
	})

	t.Run("propagates malformed clock values", func(t *testing.T) {
		t.Parallel()

		existing := []Booking{{ID: 1, StartTime: "junk"}}
		candidate := Booking{StartTime: "10:00", EndTime: "11:00"}

		if _, err := DetectConflict(existing, candidate); !errors.Is(err, ErrInvalidClock) {
			t.Fatalf("expected ErrInvalidClock, got %v", err)
		}
	})
}
