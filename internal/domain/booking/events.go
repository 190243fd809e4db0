package booking

import (
	"time"

	"villacove/internal/domain/shared/daterange"
	"villacove/internal/domain/shared/money"
	"villacove/internal/domain/villa"
)

type BookingCreated struct {
	BookingID BookingID
	VillaID   villa.VillaID
	Reference string
	Range     daterange.DateRange
	Guests    int
	Total     money.Money
	At        time.Time
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreated) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID BookingID
	VillaID   villa.VillaID
	At        time.Time
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingCompleted struct {
	BookingID BookingID
	VillaID   villa.VillaID
	At        time.Time
}

func (e BookingCompleted) EventName() string     { return "booking.completed" }
func (e BookingCompleted) AggregateID() string   { return string(e.BookingID) }
func (e BookingCompleted) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID BookingID
	VillaID   villa.VillaID
	Range     daterange.DateRange
	Reason    string
	At        time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }
