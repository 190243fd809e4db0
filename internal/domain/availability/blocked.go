package availability

import (
	"context"
	"errors"
	"time"

	"villacove/internal/domain/booking"
	"villacove/internal/domain/shared/daterange"
	"villacove/internal/domain/villa"
)

var (
	// ErrDateAlreadyBlocked is surfaced by repositories when the unique
	// (villa, date) constraint rejects an insert. It is what turns a
	// write-time race between two guests into a conflict instead of a
	// double booking.
	ErrDateAlreadyBlocked = errors.New("availability: date already blocked")
	ErrNothingToRelease   = errors.New("availability: no blocked dates for reference")
)

type BlockReason string

const (
	ReasonBooking     BlockReason = "BOOKING"
	ReasonMaintenance BlockReason = "MAINTENANCE"
	ReasonOwnerUse    BlockReason = "OWNER_USE"
)

// BlockedDate marks a single villa night as unavailable. Rows created for
// a booking carry its id and are deleted together on cancellation; manual
// blocks have an empty BookingID.
type BlockedDate struct {
	VillaID   villa.VillaID
	Date      time.Time
	BookingID booking.BookingID
	Reason    BlockReason
	CreatedAt time.Time
}

type Repository interface {
	ForVilla(ctx context.Context, villaID villa.VillaID) ([]BlockedDate, error)
	// InsertMany must fail with ErrDateAlreadyBlocked when any date in the
	// batch is already taken, without inserting a partial batch.
	InsertMany(ctx context.Context, dates []BlockedDate) error
	DeleteByBooking(ctx context.Context, villaID villa.VillaID, bookingID booking.BookingID) (int64, error)
	DeleteManual(ctx context.Context, villaID villa.VillaID, dates []time.Time) (int64, error)
}

// BlocksForBooking expands a booking's range into one tagged row per night.
func BlocksForBooking(b *booking.Booking, now time.Time) []BlockedDate {
	dates := b.Range.Dates()
	out := make([]BlockedDate, 0, len(dates))
	for _, d := range dates {
		out = append(out, BlockedDate{
			VillaID:   b.VillaID,
			Date:      d,
			BookingID: b.ID,
			Reason:    ReasonBooking,
			CreatedAt: now.UTC(),
		})
	}
	return out
}

// ManualBlocks expands a range into untagged rows for maintenance or
// owner-use holds.
func ManualBlocks(villaID villa.VillaID, dr daterange.DateRange, reason BlockReason, now time.Time) []BlockedDate {
	if reason == "" || reason == ReasonBooking {
		reason = ReasonMaintenance
	}
	dates := dr.Dates()
	out := make([]BlockedDate, 0, len(dates))
	for _, d := range dates {
		out = append(out, BlockedDate{
			VillaID:   villaID,
			Date:      d,
			Reason:    reason,
			CreatedAt: now.UTC(),
		})
	}
	return out
}
