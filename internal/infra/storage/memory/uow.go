package memory

import (
	"context"
	"errors"
	"time"

	"villacove/internal/app/uow"
	domainavailability "villacove/internal/domain/availability"
	domainbooking "villacove/internal/domain/booking"
	domainvilla "villacove/internal/domain/villa"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires the in-memory repositories into a unit-of-work boundary.
// Units journal their writes, so a failed command rolls back the rows it
// created the same way an aborted Mongo transaction would.
type Factory struct {
	VillaRepo       *VillaRepository
	BookingRepo     *BookingRepository
	BlockedDateRepo *BlockedDateRepository
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.VillaRepo == nil || f.BookingRepo == nil || f.BlockedDateRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		villas:   f.VillaRepo,
		bookings: f.BookingRepo,
		blocked:  f.BlockedDateRepo,
	}, nil
}

// Unit tracks an undo action per write it performs. Rollback replays the
// journal in reverse, touching only this unit's rows, so a concurrent
// unit that already committed is left alone. Aggregates are mutated in
// place by callers before Save, so field changes on existing rows are
// not undone; row creations and deletions, which is what the booking
// and calendar writes consist of, are.
type Unit struct {
	villas   *VillaRepository
	bookings *BookingRepository
	blocked  *BlockedDateRepository
	journal  []func()
	closed   bool
}

func (u *Unit) Villas() domainvilla.Repository { return txVillas{u} }

func (u *Unit) Bookings() domainbooking.Repository { return txBookings{u} }

func (u *Unit) BlockedDates() domainavailability.Repository { return txBlocked{u} }

func (u *Unit) Commit(ctx context.Context) error {
	u.journal = nil
	u.closed = true
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.closed {
		return nil
	}
	for i := len(u.journal) - 1; i >= 0; i-- {
		u.journal[i]()
	}
	u.journal = nil
	u.closed = true
	return nil
}

func (u *Unit) undo(fn func()) {
	u.journal = append(u.journal, fn)
}

type txVillas struct{ u *Unit }

func (t txVillas) ByID(ctx context.Context, id domainvilla.VillaID) (*domainvilla.Villa, error) {
	return t.u.villas.ByID(ctx, id)
}

func (t txVillas) BySlug(ctx context.Context, slug string) (*domainvilla.Villa, error) {
	return t.u.villas.BySlug(ctx, slug)
}

func (t txVillas) List(ctx context.Context, onlyPublished bool) ([]*domainvilla.Villa, error) {
	return t.u.villas.List(ctx, onlyPublished)
}

func (t txVillas) Save(ctx context.Context, v *domainvilla.Villa) error {
	_, lookupErr := t.u.villas.ByID(ctx, v.ID)
	if err := t.u.villas.Save(ctx, v); err != nil {
		return err
	}
	if errors.Is(lookupErr, domainvilla.ErrVillaNotFound) {
		id := v.ID
		t.u.undo(func() { t.u.villas.discard(id) })
	}
	return nil
}

type txBookings struct{ u *Unit }

func (t txBookings) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	return t.u.bookings.ByID(ctx, id)
}

func (t txBookings) ByReference(ctx context.Context, reference string) (*domainbooking.Booking, error) {
	return t.u.bookings.ByReference(ctx, reference)
}

func (t txBookings) ListByVilla(ctx context.Context, villaID domainvilla.VillaID) ([]*domainbooking.Booking, error) {
	return t.u.bookings.ListByVilla(ctx, villaID)
}

func (t txBookings) Save(ctx context.Context, b *domainbooking.Booking) error {
	_, lookupErr := t.u.bookings.ByID(ctx, b.ID)
	if err := t.u.bookings.Save(ctx, b); err != nil {
		return err
	}
	if errors.Is(lookupErr, domainbooking.ErrBookingNotFound) {
		id := b.ID
		t.u.undo(func() { t.u.bookings.discard(id) })
	}
	return nil
}

type txBlocked struct{ u *Unit }

func (t txBlocked) ForVilla(ctx context.Context, villaID domainvilla.VillaID) ([]domainavailability.BlockedDate, error) {
	return t.u.blocked.ForVilla(ctx, villaID)
}

func (t txBlocked) InsertMany(ctx context.Context, dates []domainavailability.BlockedDate) error {
	if err := t.u.blocked.InsertMany(ctx, dates); err != nil {
		return err
	}
	keys := make([]string, len(dates))
	for i, row := range dates {
		keys[i] = blockKey(row.VillaID, row.Date)
	}
	t.u.undo(func() { t.u.blocked.discardKeys(keys) })
	return nil
}

func (t txBlocked) DeleteByBooking(ctx context.Context, villaID domainvilla.VillaID, bookingID domainbooking.BookingID) (int64, error) {
	victims := t.u.blocked.rowsByBooking(villaID, bookingID)
	removed, err := t.u.blocked.DeleteByBooking(ctx, villaID, bookingID)
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		t.u.undo(func() { t.u.blocked.reinstate(victims) })
	}
	return removed, nil
}

func (t txBlocked) DeleteManual(ctx context.Context, villaID domainvilla.VillaID, dates []time.Time) (int64, error) {
	victims := t.u.blocked.manualRows(villaID, dates)
	removed, err := t.u.blocked.DeleteManual(ctx, villaID, dates)
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		t.u.undo(func() { t.u.blocked.reinstate(victims) })
	}
	return removed, nil
}

var _ uow.UoWFactory = Factory{}
