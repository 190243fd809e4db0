package dto

import (
	"time"

	"villacove/internal/domain/availability"
)

type BlockedDateDTO struct {
	Date   time.Time `json:"date"`
	Reason string    `json:"reason"`
}

type Calendar struct {
	VillaID string           `json:"villa_id"`
	From    time.Time        `json:"from"`
	To      time.Time        `json:"to"`
	Blocked []BlockedDateDTO `json:"blocked"`
}

type AvailabilityCheck struct {
	VillaID   string    `json:"villa_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Available bool      `json:"available"`
	Quote     *QuoteDTO `json:"quote,omitempty"`
}

// MapCalendar filters blocked rows down to a window. Zero from/to means
// no bound on that side.
func MapCalendar(villaID string, rows []availability.BlockedDate, from, to time.Time) Calendar {
	blocked := make([]BlockedDateDTO, 0, len(rows))
	for _, row := range rows {
		if !from.IsZero() && row.Date.Before(from) {
			continue
		}
		if !to.IsZero() && !row.Date.Before(to) {
			continue
		}
		blocked = append(blocked, BlockedDateDTO{Date: row.Date, Reason: string(row.Reason)})
	}
	return Calendar{VillaID: villaID, From: from, To: to, Blocked: blocked}
}
