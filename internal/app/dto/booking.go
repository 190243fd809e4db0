package dto

import (
	"time"

	domainbooking "villacove/internal/domain/booking"
)

type QuoteDTO struct {
	Nights      int      `json:"nights"`
	NightlyRate MoneyDTO `json:"nightly_rate"`
	CleaningFee MoneyDTO `json:"cleaning_fee"`
	ServiceFee  MoneyDTO `json:"service_fee"`
	Total       MoneyDTO `json:"total"`
}

type BookingSummary struct {
	ID         string    `json:"id"`
	VillaID    string    `json:"villa_id"`
	Reference  string    `json:"reference"`
	GuestName  string    `json:"guest_name"`
	GuestEmail string    `json:"guest_email"`
	Guests     int       `json:"guests"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Status     string    `json:"status"`
	Price      QuoteDTO  `json:"price"`
	CreatedAt  time.Time `json:"created_at"`
}

type BookingCollection struct {
	Items []BookingSummary `json:"items"`
}

func MapBookingSummary(b *domainbooking.Booking) BookingSummary {
	return BookingSummary{
		ID:         string(b.ID),
		VillaID:    string(b.VillaID),
		Reference:  b.Reference,
		GuestName:  b.GuestName,
		GuestEmail: b.GuestEmail,
		Guests:     b.Guests,
		CheckIn:    b.Range.CheckIn,
		CheckOut:   b.Range.CheckOut,
		Status:     string(b.State),
		Price: QuoteDTO{
			Nights:      b.Price.Nights,
			NightlyRate: MapMoney(b.Price.NightlyRate),
			CleaningFee: MapMoney(b.Price.CleaningFee),
			ServiceFee:  MapMoney(b.Price.ServiceFee),
			Total:       MapMoney(b.Price.Total),
		},
		CreatedAt: b.CreatedAt,
	}
}
