package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
)

// DateRange represents a half-open stay interval [CheckIn, CheckOut).
// The checkout day itself is never part of the stay, which is what makes
// back-to-back bookings possible.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

func (dr DateRange) Nights() int {
	return int(dr.CheckOut.Sub(dr.CheckIn).Hours() / 24)
}

// Dates expands the range into one entry per night, ascending, checkout
// day excluded.
func (dr DateRange) Dates() []time.Time {
	nights := dr.Nights()
	if nights <= 0 {
		return nil
	}
	out := make([]time.Time, 0, nights)
	for d := Day(dr.CheckIn); d.Before(Day(dr.CheckOut)); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// Overlaps reports whether the two half-open intervals share at least one
// night. Touching at a boundary (one stay's checkout equals the other's
// checkin) is not an overlap.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

// OverlapNights returns the number of nights shared by the two ranges.
func (dr DateRange) OverlapNights(other DateRange) int {
	if !dr.Overlaps(other) {
		return 0
	}
	start := dr.CheckIn
	if other.CheckIn.After(start) {
		start = other.CheckIn
	}
	end := dr.CheckOut
	if other.CheckOut.Before(end) {
		end = other.CheckOut
	}
	return int(end.Sub(start).Hours() / 24)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = Day(t)
	return (t.Equal(dr.CheckIn) || t.After(dr.CheckIn)) && t.Before(dr.CheckOut)
}

// Day truncates a timestamp to UTC midnight. All calendar math in the
// booking core happens on these normalized values.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey formats a normalized date for use as a set key.
func DayKey(t time.Time) string {
	return Day(t).Format("2006-01-02")
}
