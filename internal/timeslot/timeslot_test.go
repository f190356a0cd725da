package timeslot

import (
	"testing"
	"time"
)

func TestAligned(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want bool
	}{
		{"on the hour", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), true},
		{"half past", time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC), true},
		{"five past", time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC), false},
		{"stray seconds", time.Date(2026, 3, 2, 9, 30, 15, 0, time.UTC), false},
		{"stray nanos", time.Date(2026, 3, 2, 9, 0, 0, 1, time.UTC), false},
		{"midnight", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Aligned(tc.in); got != tc.want {
				t.Errorf("Aligned(%s) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	in := time.Date(2026, 3, 2, 9, 47, 12, 500, time.UTC)
	want := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	if got := Truncate(in); !got.Equal(want) {
		t.Errorf("Truncate(%s) = %s, want %s", in, got, want)
	}

	// already aligned input is a no-op
	aligned := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	if got := Truncate(aligned); !got.Equal(aligned) {
		t.Errorf("Truncate(%s) = %s, want unchanged", aligned, got)
	}
}

func TestTruncatePreservesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	in := time.Date(2026, 3, 2, 9, 47, 0, 0, loc)
	got := Truncate(in)
	if got.Location() != loc {
		t.Errorf("Truncate changed location: %v", got.Location())
	}
	if got.Hour() != 9 || got.Minute() != 30 {
		t.Errorf("Truncate(%s) = %s", in, got)
	}
}

func TestIndex(t *testing.T) {
	epoch := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		in   time.Time
		want int
	}{
		{"at epoch", epoch, 0},
		{"first slot", epoch.Add(30 * time.Minute), 1},
		{"nine am", epoch.Add(9 * time.Hour), 18},
		{"end of day", epoch.Add(24*time.Hour - 30*time.Minute), 47},
		{"next day", epoch.Add(24 * time.Hour), 48},
		{"before epoch", epoch.Add(-30 * time.Minute), -1},
		{"just before epoch", epoch.Add(-time.Minute), -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Index(tc.in, epoch); got != tc.want {
				t.Errorf("Index(%s) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestDayStart(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	in := time.Date(2026, 3, 2, 18, 45, 0, 0, loc)
	got := DayStart(in)
	want := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("DayStart(%s) = %s, want %s", in, got, want)
	}
}
