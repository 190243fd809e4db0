package occupancy

import (
	"testing"
	"time"

	"villacove/internal/domain/booking"
	"villacove/internal/domain/pricing"
	"villacove/internal/domain/shared/daterange"
	"villacove/internal/domain/shared/money"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, from, to time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(from, to)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	return dr
}

func stay(t *testing.T, from, to, created time.Time, totalCents int64, state booking.BookingState) *booking.Booking {
	t.Helper()
	return &booking.Booking{
		ID:        "b",
		VillaID:   "v1",
		Range:     mustRange(t, from, to),
		Price:     pricing.Quote{Total: money.Must(totalCents, "EUR")},
		State:     state,
		CreatedAt: created,
	}
}

func TestOccupancyRateRoundsToNearestPercent(t *testing.T) {
	// One 3-night stay in a 30-night June.
	period := mustRange(t, day(2026, 6, 1), day(2026, 7, 1))
	bookings := []*booking.Booking{
		stay(t, day(2026, 6, 10), day(2026, 6, 13), day(2026, 5, 1), 90000, booking.StateConfirmed),
	}

	report := Build("v1", bookings, period, "EUR")
	if report.TotalNights != 30 {
		t.Fatalf("June should have 30 nights, got %d", report.TotalNights)
	}
	if report.BookedNights != 3 {
		t.Fatalf("expected 3 booked nights, got %d", report.BookedNights)
	}
	if report.OccupancyRate != 10 {
		t.Fatalf("3/30 should round to 10%%, got %d", report.OccupancyRate)
	}
}

func TestBookedNightsClipsToPeriodBounds(t *testing.T) {
	period := mustRange(t, day(2026, 6, 1), day(2026, 7, 1))
	bookings := []*booking.Booking{
		// Straddles the start: only Jun 1-2 count.
		stay(t, day(2026, 5, 29), day(2026, 6, 3), day(2026, 5, 1), 0, booking.StatePending),
		// Straddles the end: Jun 29-30 count.
		stay(t, day(2026, 6, 29), day(2026, 7, 4), day(2026, 5, 1), 0, booking.StatePending),
	}
	if got := BookedNights(bookings, period); got != 4 {
		t.Fatalf("expected 4 nights inside the period, got %d", got)
	}
}

func TestCancelledBookingsAreExcluded(t *testing.T) {
	period := mustRange(t, day(2026, 6, 1), day(2026, 7, 1))
	bookings := []*booking.Booking{
		stay(t, day(2026, 6, 10), day(2026, 6, 13), day(2026, 6, 5), 90000, booking.StateCancelled),
	}

	report := Build("v1", bookings, period, "EUR")
	if report.BookedNights != 0 {
		t.Fatalf("cancelled stay must not count nights, got %d", report.BookedNights)
	}
	if !report.Revenue.IsZero() {
		t.Fatalf("cancelled stay must not count revenue, got %d", report.Revenue.Amount)
	}
	if report.Bookings != 0 {
		t.Fatalf("cancelled stay must not count as a booking, got %d", report.Bookings)
	}
}

func TestRevenueUsesCreationDateNotStayDate(t *testing.T) {
	period := mustRange(t, day(2026, 6, 1), day(2026, 7, 1))
	bookings := []*booking.Booking{
		// Created inside June, stays in August: counts for revenue,
		// not for occupancy.
		stay(t, day(2026, 8, 10), day(2026, 8, 13), day(2026, 6, 15), 120000, booking.StateConfirmed),
		// Created in May, stays in June: counts for occupancy, not
		// for revenue.
		stay(t, day(2026, 6, 10), day(2026, 6, 12), day(2026, 5, 20), 50000, booking.StateConfirmed),
	}

	report := Build("v1", bookings, period, "EUR")
	if report.Revenue.Amount != 120000 {
		t.Fatalf("revenue should follow creation date, got %d", report.Revenue.Amount)
	}
	if report.BookedNights != 2 {
		t.Fatalf("occupancy should follow stay dates, got %d nights", report.BookedNights)
	}
}

func TestRateZeroPeriod(t *testing.T) {
	if got := Rate(5, 0); got != 0 {
		t.Fatalf("zero-night period should report 0, got %d", got)
	}
}
