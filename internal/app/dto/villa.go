package dto

import (
	"time"

	"villacove/internal/domain/shared/money"
	domainvilla "villacove/internal/domain/villa"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

type VillaSummary struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Location      string   `json:"location"`
	Capacity      int      `json:"capacity"`
	MinStayNights int      `json:"min_stay_nights"`
	NightlyRate   MoneyDTO `json:"nightly_rate"`
	ThumbnailURL  string   `json:"thumbnail_url,omitempty"`
}

type VillaDetail struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	Capacity      int       `json:"capacity"`
	MinStayNights int       `json:"min_stay_nights"`
	NightlyRate   MoneyDTO  `json:"nightly_rate"`
	CleaningFee   MoneyDTO  `json:"cleaning_fee"`
	ServiceFee    MoneyDTO  `json:"service_fee"`
	Amenities     []string  `json:"amenities"`
	Photos        []string  `json:"photos"`
	State         string    `json:"state"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type VillaCollection struct {
	Items []VillaSummary `json:"items"`
}

func MapVillaSummary(v *domainvilla.Villa) VillaSummary {
	summary := VillaSummary{
		ID:            string(v.ID),
		Name:          v.Name,
		Slug:          v.Slug,
		Location:      v.Location,
		Capacity:      v.Capacity,
		MinStayNights: v.MinStayNights,
		NightlyRate:   MapMoney(v.NightlyRate),
	}
	if len(v.Photos) > 0 {
		summary.ThumbnailURL = v.Photos[0]
	}
	return summary
}

func MapVillaDetail(v *domainvilla.Villa) VillaDetail {
	return VillaDetail{
		ID:            string(v.ID),
		Name:          v.Name,
		Slug:          v.Slug,
		Description:   v.Description,
		Location:      v.Location,
		Capacity:      v.Capacity,
		MinStayNights: v.MinStayNights,
		NightlyRate:   MapMoney(v.NightlyRate),
		CleaningFee:   MapMoney(v.CleaningFee),
		ServiceFee:    MapMoney(v.ServiceFee),
		Amenities:     append([]string(nil), v.Amenities...),
		Photos:        append([]string(nil), v.Photos...),
		State:         string(v.State),
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}
