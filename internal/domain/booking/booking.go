package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"villacove/internal/domain/pricing"
	"villacove/internal/domain/shared/daterange"
	"villacove/internal/domain/shared/events"
	"villacove/internal/domain/villa"
)

var (
	ErrBookingNotFound = errors.New("booking: not found")
	ErrInvalidGuests   = errors.New("booking: guests count must be positive")
	ErrGuestsOverCap   = errors.New("booking: guests exceed villa capacity")
	ErrBelowMinStay    = errors.New("booking: stay is shorter than the villa minimum")
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrCheckInInPast   = errors.New("booking: check-in date is in the past")
	ErrGuestRequired   = errors.New("booking: guest name and email are required")
)

type BookingID string

type BookingState string

const (
	StatePending   BookingState = "PENDING"
	StateConfirmed BookingState = "CONFIRMED"
	StateCompleted BookingState = "COMPLETED"
	StateCancelled BookingState = "CANCELLED"
)

// Booking records one guest stay. Transitions are one-directional:
// pending -> confirmed -> completed, with pending/confirmed -> cancelled
// as the only branch. Cancelled and completed are terminal.
type Booking struct {
	ID         BookingID
	VillaID    villa.VillaID
	Reference  string
	GuestName  string
	GuestEmail string
	Guests     int
	Range      daterange.DateRange
	Price      pricing.Quote
	State      BookingState
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	ByReference(ctx context.Context, reference string) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	ListByVilla(ctx context.Context, villaID villa.VillaID) ([]*Booking, error)
}

type CreateParams struct {
	ID         BookingID
	VillaID    villa.VillaID
	Reference  string
	GuestName  string
	GuestEmail string
	Guests     int
	Range      daterange.DateRange
	Price      pricing.Quote
	CreatedAt  time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if strings.TrimSpace(params.GuestName) == "" || strings.TrimSpace(params.GuestEmail) == "" {
		return nil, ErrGuestRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:         params.ID,
		VillaID:    params.VillaID,
		Reference:  params.Reference,
		GuestName:  strings.TrimSpace(params.GuestName),
		GuestEmail: strings.TrimSpace(params.GuestEmail),
		Guests:     params.Guests,
		Range:      params.Range,
		Price:      params.Price,
		State:      StatePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	b.Record(BookingCreated{
		BookingID: b.ID,
		VillaID:   b.VillaID,
		Reference: b.Reference,
		Range:     b.Range,
		Guests:    b.Guests,
		Total:     b.Price.Total,
		At:        now,
	})
	return b, nil
}

func (b *Booking) Confirm(now time.Time) error {
	if b.State != StatePending {
		return ErrInvalidState
	}
	b.State = StateConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, VillaID: b.VillaID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Complete(now time.Time) error {
	if b.State != StateConfirmed {
		return ErrInvalidState
	}
	b.State = StateCompleted
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{BookingID: b.ID, VillaID: b.VillaID, At: b.UpdatedAt})
	return nil
}

// Cancel moves the booking into its terminal cancelled state. The caller
// owns releasing the blocked dates in the same transaction.
func (b *Booking) Cancel(reason string, now time.Time) error {
	switch b.State {
	case StatePending, StateConfirmed:
	default:
		return ErrInvalidState
	}
	b.State = StateCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, VillaID: b.VillaID, Range: b.Range, Reason: reason, At: b.UpdatedAt})
	return nil
}

// Active reports whether the booking still holds its dates.
func (b *Booking) Active() bool {
	return b.State != StateCancelled
}

// ValidateDateRange rejects stays that start before today.
func ValidateDateRange(dr daterange.DateRange, now time.Time) error {
	if daterange.Day(dr.CheckIn).Before(daterange.Day(now)) {
		return ErrCheckInInPast
	}
	return nil
}
