package daterange

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewRejectsInvertedRange(t *testing.T) {
	if _, err := New(date(2024, 6, 10), date(2024, 6, 10)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for zero-night range, got %v", err)
	}
	if _, err := New(date(2024, 6, 10), date(2024, 6, 5)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for inverted range, got %v", err)
	}
}

func TestNights(t *testing.T) {
	dr, err := New(date(2024, 6, 1), date(2024, 6, 5))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := dr.Nights(); got != 4 {
		t.Fatalf("Nights = %d, want 4", got)
	}
}

func TestDatesExcludesCheckout(t *testing.T) {
	dr, err := New(date(2024, 7, 1), date(2024, 7, 4))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := dr.Dates()
	want := []time.Time{date(2024, 7, 1), date(2024, 7, 2), date(2024, 7, 3)}
	if len(got) != len(want) {
		t.Fatalf("Dates returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("Dates[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOverlapsBoundaryTouchIsNotOverlap(t *testing.T) {
	a, _ := New(date(2024, 6, 5), date(2024, 6, 10))
	b, _ := New(date(2024, 6, 10), date(2024, 6, 14))
	if a.Overlaps(b) || b.Overlaps(a) {
		t.Fatal("back-to-back ranges must not overlap")
	}

	c, _ := New(date(2024, 6, 9), date(2024, 6, 12))
	if !a.Overlaps(c) || !c.Overlaps(a) {
		t.Fatal("ranges sharing a night must overlap")
	}
}

func TestOverlapNights(t *testing.T) {
	booking, _ := New(date(2024, 6, 28), date(2024, 7, 3))
	period, _ := New(date(2024, 7, 1), date(2024, 7, 31))
	if got := booking.OverlapNights(period); got != 2 {
		t.Fatalf("OverlapNights = %d, want 2", got)
	}
	if got := period.OverlapNights(booking); got != 2 {
		t.Fatalf("OverlapNights must be symmetric, got %d", got)
	}

	disjoint, _ := New(date(2024, 8, 1), date(2024, 8, 5))
	if got := booking.OverlapNights(disjoint); got != 0 {
		t.Fatalf("disjoint OverlapNights = %d, want 0", got)
	}
}

func TestContainsDate(t *testing.T) {
	dr, _ := New(date(2024, 6, 5), date(2024, 6, 10))
	if !dr.ContainsDate(date(2024, 6, 5)) {
		t.Fatal("check-in night must be contained")
	}
	if dr.ContainsDate(date(2024, 6, 10)) {
		t.Fatal("checkout day must not be contained")
	}
}

func TestDayNormalizesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	noon := time.Date(2024, 6, 5, 14, 30, 0, 0, loc)
	got := Day(noon)
	if got.Hour() != 0 || got.Location() != time.UTC {
		t.Fatalf("Day(%v) = %v, want UTC midnight", noon, got)
	}
	if DayKey(noon) != "2024-06-05" {
		t.Fatalf("DayKey = %q", DayKey(noon))
	}
}
