package recurrence

import (
	"errors"
	"testing"
	"time"
)

func mustParseDate(t *testing.T, value string) time.Time {
	t.Helper()
	day, err := ParseDate(value)
	if err != nil {
		t.Fatalf("failed to parse date %q: %v", value, err)
	}
	return day
}

func TestAdjustedWeekday(t *testing.T) {
	t.Parallel()

	t.Run("maps Saturday to zero and shifts the rest", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			date string
			want int
		}{
			{"2024-06-01", 0}, // Saturday
			{"2024-06-02", 1}, // Sunday
			{"2024-06-03", 2}, // Monday
			{"2024-06-04", 3}, // Tuesday
			{"2024-06-05", 4}, // Wednesday
			{"2024-06-06", 5}, // Thursday
			{"2024-06-07", 6}, // Friday
		}

		for _, tc := range cases {
			if got := AdjustedWeekday(mustParseDate(t, tc.date)); got != tc.want {
				t.Errorf("AdjustedWeekday(%s) = %d, want %d", tc.date, got, tc.want)
			}
		}
	})

	t.Run("is a bijection over a full week", func(t *testing.T) {
		t.Parallel()

		seen := make(map[int]string, 7)
		day := mustParseDate(t, "2024-06-01")
		for i := 0; i < 7; i++ {
			adjusted := AdjustedWeekday(day.AddDate(0, 0, i))
			if adjusted < 0 || adjusted > 6 {
				t.Fatalf("adjusted weekday %d out of range", adjusted)
			}
			if prior, ok := seen[adjusted]; ok {
				t.Fatalf("index %d produced twice (%s and %s)", adjusted, prior, FormatDate(day.AddDate(0, 0, i)))
			}
			seen[adjusted] = FormatDate(day.AddDate(0, 0, i))
		}
		if len(seen) != 7 {
			t.Fatalf("expected 7 distinct indices, got %d", len(seen))
		}
	})
}

func TestRule_ActiveOn(t *testing.T) {
	t.Parallel()

	t.Run("matches weekday inside the bounds", func(t *testing.T) {
		t.Parallel()

		rule := Rule{Weekday: 2, StartDate: "2024-06-01", EndDate: "2024-06-30"}

		active, err := rule.ActiveOn(mustParseDate(t, "2024-06-10")) // Monday, adjusted 2
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !active {
			t.Fatal("expected rule to be active on 2024-06-10")
		}
	})

	t.Run("rejects the same weekday outside the bounds", func(t *testing.T) {
		t.Parallel()

		rule := Rule{Weekday: 2, StartDate: "2024-06-01", EndDate: "2024-06-30"}

		active, err := rule.ActiveOn(mustParseDate(t, "2024-07-08")) // Monday after the end date
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if active {
			t.Fatal("expected rule to be inactive on 2024-07-08")
		}
	})

	t.Run("bounds are inclusive on both ends", func(t *testing.T) {
		t.Parallel()

		rule := Rule{Weekday: 0, StartDate: "2024-06-01", EndDate: "2024-06-29"}

		for _, date := range []string{"2024-06-01", "2024-06-29"} {
			active, err := rule.ActiveOn(mustParseDate(t, date))
			if err != nil {
				t.Fatalf("unexpected error for %s: %v", date, err)
			}
			if !active {
				t.Errorf("expected rule to be active on boundary date %s", date)
			}
		}
	})

	t.Run("ignores dates on other weekdays", func(t *testing.T) {
		t.Parallel()

		rule := Rule{Weekday: 0, StartDate: "2024-06-01", EndDate: "2024-06-30"}

		active, err := rule.ActiveOn(mustParseDate(t, "2024-06-10"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if active {
			t.Fatal("Monday date must not activate a Saturday rule")
		}
	})

	t.Run("missing bounds are permissive", func(t *testing.T) {
		t.Parallel()

		rule := Rule{Weekday: 1}

		for _, date := range []string{"1970-01-04", "2024-06-02", "2099-12-27"} {
			active, err := rule.ActiveOn(mustParseDate(t, date))
			if err != nil {
				t.Fatalf("unexpected error for %s: %v", date, err)
			}
			if !active {
				t.Errorf("unbounded rule should be active on Sunday %s", date)
			}
		}
	})

	t.Run("rejects weekday outside the index range", func(t *testing.T) {
		t.Parallel()

		rule := Rule{Weekday: 7}

		if _, err := rule.ActiveOn(mustParseDate(t, "2024-06-01")); !errors.Is(err, ErrInvalidWeekday) {
			t.Fatalf("expected ErrInvalidWeekday, got %v", err)
		}
	})

	t.Run("propagates malformed bound dates", func(t *testing.T) {
		t.Parallel()

		rule := Rule{Weekday: 0, StartDate: "junk"}

		if _, err := rule.ActiveOn(mustParseDate(t, "2024-06-01")); err == nil {
			t.Fatal("expected parse error for malformed start date")
		}
	})
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	t.Run("anchors results at midnight UTC", func(t *testing.T) {
		t.Parallel()

		day := mustParseDate(t, "2024-06-01")
		if day.Hour() != 0 || day.Minute() != 0 || day.Location() != time.UTC {
			t.Fatalf("expected midnight UTC, got %v", day)
		}
	})

	t.Run("rejects non-calendar input", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseDate("01/06/2024"); err == nil {
			t.Fatal("expected error for non ISO date")
		}
	})
}
