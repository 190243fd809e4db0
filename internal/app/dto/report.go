package dto

import (
	"time"

	"villacove/internal/domain/occupancy"
)

type OccupancyReport struct {
	VillaID       string    `json:"villa_id"`
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
	TotalNights   int       `json:"total_nights"`
	BookedNights  int       `json:"booked_nights"`
	OccupancyRate int       `json:"occupancy_rate"`
	Revenue       MoneyDTO  `json:"revenue"`
	Bookings      int       `json:"bookings"`
}

func MapOccupancyReport(r occupancy.Report) OccupancyReport {
	return OccupancyReport{
		VillaID:       r.VillaID,
		PeriodStart:   r.PeriodStart,
		PeriodEnd:     r.PeriodEnd,
		TotalNights:   r.TotalNights,
		BookedNights:  r.BookedNights,
		OccupancyRate: r.OccupancyRate,
		Revenue:       MapMoney(r.Revenue),
		Bookings:      r.Bookings,
	}
}
