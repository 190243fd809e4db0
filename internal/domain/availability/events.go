package availability

import (
	"time"

	"villacove/internal/domain/shared/daterange"
	"villacove/internal/domain/villa"
)

type CalendarBlocked struct {
	VillaID string
	Range   daterange.DateRange
	Reason  BlockReason
	At      time.Time
}

func (e CalendarBlocked) EventName() string     { return "calendar.blocked" }
func (e CalendarBlocked) AggregateID() string   { return e.VillaID }
func (e CalendarBlocked) OccurredAt() time.Time { return e.At }

type CalendarReleased struct {
	VillaID string
	Range   daterange.DateRange
	Reason  BlockReason
	At      time.Time
}

func (e CalendarReleased) EventName() string     { return "calendar.released" }
func (e CalendarReleased) AggregateID() string   { return e.VillaID }
func (e CalendarReleased) OccurredAt() time.Time { return e.At }

type OverbookingPrevented struct {
	VillaID string
	Range   daterange.DateRange
	At      time.Time
}

func (e OverbookingPrevented) EventName() string     { return "calendar.overbooking_prevented" }
func (e OverbookingPrevented) AggregateID() string   { return e.VillaID }
func (e OverbookingPrevented) OccurredAt() time.Time { return e.At }

func CalendarBlockedEvent(id villa.VillaID, r daterange.DateRange, reason BlockReason, at time.Time) CalendarBlocked {
	return CalendarBlocked{VillaID: string(id), Range: r, Reason: reason, At: at}
}

func CalendarReleasedEvent(id villa.VillaID, r daterange.DateRange, reason BlockReason, at time.Time) CalendarReleased {
	return CalendarReleased{VillaID: string(id), Range: r, Reason: reason, At: at}
}

func OverbookingPreventedEvent(id villa.VillaID, r daterange.DateRange, at time.Time) OverbookingPrevented {
	return OverbookingPrevented{VillaID: string(id), Range: r, At: at}
}
