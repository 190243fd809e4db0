package occupancy

import (
	"math"
	"time"

	"villacove/internal/domain/booking"
	"villacove/internal/domain/shared/daterange"
	"villacove/internal/domain/shared/money"
)

// Report is the read-side occupancy and revenue summary for one villa over
// a reporting period. It is computed from the booking set alone and never
// writes anything.
type Report struct {
	VillaID       string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	TotalNights   int
	BookedNights  int
	OccupancyRate int
	Revenue       money.Money
	Bookings      int
}

// BookedNights sums, over all non-cancelled bookings, the half-open
// overlap in nights between the booking's stay and the period.
func BookedNights(bookings []*booking.Booking, period daterange.DateRange) int {
	total := 0
	for _, b := range bookings {
		if !b.Active() {
			continue
		}
		total += b.Range.OverlapNights(period)
	}
	return total
}

// Rate converts booked nights into a whole-number percentage, rounded to
// nearest. A zero-length period yields 0.
func Rate(bookedNights, totalNights int) int {
	if totalNights <= 0 {
		return 0
	}
	return int(math.Round(float64(bookedNights) / float64(totalNights) * 100))
}

// Revenue sums booking totals for non-cancelled bookings created inside
// the period. Revenue is attributed by booking-creation date while
// occupancy is attributed by stay date; the two deliberately use
// different period semantics.
func Revenue(bookings []*booking.Booking, period daterange.DateRange, currency string) money.Money {
	total := money.Money{Amount: 0, Currency: currency}
	for _, b := range bookings {
		if !b.Active() {
			continue
		}
		created := daterange.Day(b.CreatedAt)
		if created.Before(daterange.Day(period.CheckIn)) || !created.Before(daterange.Day(period.CheckOut)) {
			continue
		}
		if sum, err := total.Add(b.Price.Total); err == nil {
			total = sum
		}
	}
	return total
}

// Build assembles the full report for one villa.
func Build(villaID string, bookings []*booking.Booking, period daterange.DateRange, currency string) Report {
	totalNights := period.Nights()
	booked := BookedNights(bookings, period)
	active := 0
	for _, b := range bookings {
		if b.Active() {
			active++
		}
	}
	return Report{
		VillaID:       villaID,
		PeriodStart:   period.CheckIn,
		PeriodEnd:     period.CheckOut,
		TotalNights:   totalNights,
		BookedNights:  booked,
		OccupancyRate: Rate(booked, totalNights),
		Revenue:       Revenue(bookings, period, currency),
		Bookings:      active,
	}
}
