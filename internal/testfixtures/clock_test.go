package testfixtures

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	t.Run("zero start pins to reference time", func(t *testing.T) {
		clock := NewClock(time.Time{})
		if !clock.Now().Equal(ReferenceTime()) {
			t.Fatalf("Now() = %v, want reference time", clock.Now())
		}
	})

	t.Run("advance and set", func(t *testing.T) {
		start := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
		clock := NewClock(start)

		if got := clock.Advance(45 * time.Minute); !got.Equal(start.Add(45 * time.Minute)) {
			t.Fatalf("Advance() = %v", got)
		}

		pinned := start.Add(3 * time.Hour)
		clock.Set(pinned)
		if got := clock.Current(); !got.Equal(pinned) {
			t.Fatalf("Current() = %v, want %v", got, pinned)
		}
	})

	t.Run("NowFunc tracks the clock", func(t *testing.T) {
		clock := NewClock(time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC))
		nowFn := clock.NowFunc()

		if got := nowFn(); !got.Equal(clock.Current()) {
			t.Fatalf("NowFunc() = %v, want %v", got, clock.Current())
		}

		clock.Advance(time.Minute)
		if got := nowFn(); !got.Equal(clock.Current()) {
			t.Fatalf("NowFunc() after advance = %v, want %v", got, clock.Current())
		}
	})

	t.Run("nil clock falls back to wall time", func(t *testing.T) {
		var clock *Clock
		nowFn := clock.NowFunc()
		if nowFn == nil {
			t.Fatal("NowFunc() on nil clock returned nil")
		}
		if nowFn().IsZero() {
			t.Fatal("NowFunc() on nil clock returned the zero time")
		}
	})
}
