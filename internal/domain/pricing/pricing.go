package pricing

import (
	"errors"

	"villacove/internal/domain/shared/daterange"
	"villacove/internal/domain/shared/money"
	"villacove/internal/domain/villa"
)

var ErrCurrencyUnset = errors.New("pricing: currency must be defined")

// Quote is the price breakdown attached to a booking at creation time.
// The villa's rates are snapshotted here so later admin edits do not
// retroactively change what a guest agreed to pay.
type Quote struct {
	Nights      int
	NightlyRate money.Money
	CleaningFee money.Money
	ServiceFee  money.Money
	Total       money.Money
}

// ForStay computes the quote for a stay: nights x nightly rate plus the
// villa's fixed cleaning and service fees.
func ForStay(v *villa.Villa, dr daterange.DateRange) (Quote, error) {
	if v.NightlyRate.Currency == "" {
		return Quote{}, ErrCurrencyUnset
	}
	if err := dr.Validate(); err != nil {
		return Quote{}, err
	}
	nights := dr.Nights()
	total := v.NightlyRate.Multiply(int64(nights))
	total, err := total.Add(v.CleaningFee)
	if err != nil {
		return Quote{}, err
	}
	total, err = total.Add(v.ServiceFee)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Nights:      nights,
		NightlyRate: v.NightlyRate,
		CleaningFee: v.CleaningFee,
		ServiceFee:  v.ServiceFee,
		Total:       total,
	}, nil
}
