package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"villacove/internal/app/uow"
	domainavailability "villacove/internal/domain/availability"
	domainbooking "villacove/internal/domain/booking"
	domainrange "villacove/internal/domain/shared/daterange"
	"villacove/internal/domain/shared/money"
	domainvilla "villacove/internal/domain/villa"
	"villacove/internal/infra/storage/memory"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustDateRange(t *testing.T, from, to time.Time) domainrange.DateRange {
	t.Helper()
	dr, err := domainrange.New(from, to)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	return dr
}

type fixture struct {
	villas   *memory.VillaRepository
	bookings *memory.BookingRepository
	blocked  *memory.BlockedDateRepository
	factory  memory.Factory
	outbox   *memory.Outbox
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		villas:   memory.NewVillaRepository(),
		bookings: memory.NewBookingRepository(),
		blocked:  memory.NewBlockedDateRepository(),
		outbox:   memory.NewOutbox(),
		now:      day(2026, 6, 1),
	}
	f.factory = memory.Factory{
		VillaRepo:       f.villas,
		BookingRepo:     f.bookings,
		BlockedDateRepo: f.blocked,
	}

	v, err := domainvilla.NewVilla(domainvilla.CreateParams{
		ID:            "v1",
		Name:          "Villa Amara",
		Slug:          "villa-amara",
		Capacity:      6,
		MinStayNights: 2,
		NightlyRate:   money.Must(30000, "EUR"),
		CleaningFee:   money.Must(8000, "EUR"),
		ServiceFee:    money.Must(4500, "EUR"),
		Now:           f.now,
	})
	if err != nil {
		t.Fatalf("villa: %v", err)
	}
	v.ClearEvents()
	if err := f.villas.Save(context.Background(), v); err != nil {
		t.Fatalf("save villa: %v", err)
	}
	return f
}

func (f *fixture) createHandler() *CreateBookingHandler {
	return &CreateBookingHandler{
		UoWFactory: f.factory,
		Outbox:     f.outbox,
		Now:        func() time.Time { return f.now },
	}
}

func (f *fixture) cancelHandler() *CancelBookingHandler {
	return &CancelBookingHandler{
		UoWFactory: f.factory,
		Outbox:     f.outbox,
		Now:        func() time.Time { return f.now },
	}
}

func (f *fixture) createCommand(id string, checkIn, checkOut time.Time) CreateBookingCommand {
	return CreateBookingCommand{
		CommandID:  id,
		VillaID:    "v1",
		GuestName:  "Ana Petrova",
		GuestEmail: "ana@example.com",
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     4,
	}
}

func TestCreateBookingPersistsBookingAndBlocksNights(t *testing.T) {
	f := newFixture(t)
	handler := f.createHandler()

	result, err := handler.Handle(context.Background(), f.createCommand("b1", day(2026, 7, 10), day(2026, 7, 13)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Reference == "" {
		t.Fatal("result should carry a reference code")
	}

	bk, err := f.bookings.ByID(context.Background(), domainbooking.BookingID("b1"))
	if err != nil {
		t.Fatalf("stored booking: %v", err)
	}
	if bk.State != domainbooking.StatePending {
		t.Fatalf("expected PENDING, got %s", bk.State)
	}
	// 3 x 30000 + 8000 + 4500
	if bk.Price.Total.Amount != 102500 {
		t.Fatalf("expected total 102500, got %d", bk.Price.Total.Amount)
	}

	rows, err := f.blocked.ForVilla(context.Background(), domainvilla.VillaID("v1"))
	if err != nil {
		t.Fatalf("blocked rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 blocked nights, got %d", len(rows))
	}
	for _, row := range rows {
		if row.BookingID != bk.ID {
			t.Fatalf("blocked row should be tagged with the booking, got %+v", row)
		}
	}
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	f := newFixture(t)
	handler := f.createHandler()

	if _, err := handler.Handle(context.Background(), f.createCommand("b1", day(2026, 7, 10), day(2026, 7, 13))); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := handler.Handle(context.Background(), f.createCommand("b2", day(2026, 7, 12), day(2026, 7, 15)))
	if !errors.Is(err, ErrDatesUnavailable) {
		t.Fatalf("expected ErrDatesUnavailable, got %v", err)
	}
	if _, err := f.bookings.ByID(context.Background(), domainbooking.BookingID("b2")); !errors.Is(err, domainbooking.ErrBookingNotFound) {
		t.Fatal("rejected booking must not be persisted")
	}
}

func TestCreateBookingAllowsCheckoutDayTurnover(t *testing.T) {
	f := newFixture(t)
	handler := f.createHandler()

	if _, err := handler.Handle(context.Background(), f.createCommand("b1", day(2026, 7, 10), day(2026, 7, 13))); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := handler.Handle(context.Background(), f.createCommand("b2", day(2026, 7, 13), day(2026, 7, 16))); err != nil {
		t.Fatalf("back-to-back stay should succeed, got %v", err)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture(t)
	handler := f.createHandler()

	over := f.createCommand("b1", day(2026, 7, 10), day(2026, 7, 13))
	over.Guests = 9
	if _, err := handler.Handle(context.Background(), over); !errors.Is(err, domainbooking.ErrGuestsOverCap) {
		t.Fatalf("expected ErrGuestsOverCap, got %v", err)
	}

	short := f.createCommand("b2", day(2026, 7, 10), day(2026, 7, 11))
	if _, err := handler.Handle(context.Background(), short); !errors.Is(err, domainbooking.ErrBelowMinStay) {
		t.Fatalf("expected ErrBelowMinStay, got %v", err)
	}

	past := f.createCommand("b3", day(2026, 5, 20), day(2026, 5, 23))
	if _, err := handler.Handle(context.Background(), past); !errors.Is(err, domainbooking.ErrCheckInInPast) {
		t.Fatalf("expected ErrCheckInInPast, got %v", err)
	}
}

func TestCancelReleasesDatesForRebooking(t *testing.T) {
	f := newFixture(t)
	create := f.createHandler()
	cancel := f.cancelHandler()

	if _, err := create.Handle(context.Background(), f.createCommand("b1", day(2026, 7, 10), day(2026, 7, 13))); err != nil {
		t.Fatalf("create: %v", err)
	}
	result, err := cancel.Handle(context.Background(), CancelBookingCommand{BookingID: "b1", Reason: "guest request"})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if result.Status != string(domainbooking.StateCancelled) {
		t.Fatalf("expected CANCELLED, got %s", result.Status)
	}

	rows, err := f.blocked.ForVilla(context.Background(), domainvilla.VillaID("v1"))
	if err != nil {
		t.Fatalf("blocked rows: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("cancel should release every night, %d left", len(rows))
	}

	if _, err := create.Handle(context.Background(), f.createCommand("b2", day(2026, 7, 10), day(2026, 7, 13))); err != nil {
		t.Fatalf("rebooking the released dates should succeed, got %v", err)
	}
}

func TestCancelAlreadyCancelledIsNoOp(t *testing.T) {
	f := newFixture(t)
	create := f.createHandler()
	cancel := f.cancelHandler()

	if _, err := create.Handle(context.Background(), f.createCommand("b1", day(2026, 7, 10), day(2026, 7, 13))); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := cancel.Handle(context.Background(), CancelBookingCommand{BookingID: "b1"}); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	result, err := cancel.Handle(context.Background(), CancelBookingCommand{BookingID: "b1"})
	if err != nil {
		t.Fatalf("repeat cancel should be a no-op success, got %v", err)
	}
	if result.Status != string(domainbooking.StateCancelled) {
		t.Fatalf("expected CANCELLED, got %s", result.Status)
	}
}

func TestCancelUnknownBooking(t *testing.T) {
	f := newFixture(t)
	cancel := f.cancelHandler()
	if _, err := cancel.Handle(context.Background(), CancelBookingCommand{BookingID: "missing"}); !errors.Is(err, domainbooking.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

// contestedFactory lands a rival's night in the store between the
// availability re-check and the batch insert, the narrow window two
// concurrent guests can race through.
type contestedFactory struct {
	inner memory.Factory
	store *memory.BlockedDateRepository
	row   domainavailability.BlockedDate
}

func (f contestedFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	unit, err := f.inner.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &contestedUnit{UnitOfWork: unit, store: f.store, row: f.row}, nil
}

type contestedUnit struct {
	uow.UnitOfWork
	store *memory.BlockedDateRepository
	row   domainavailability.BlockedDate
	raced bool
}

func (u *contestedUnit) BlockedDates() domainavailability.Repository {
	return contestedBlocked{unit: u}
}

type contestedBlocked struct {
	unit *contestedUnit
}

func (c contestedBlocked) ForVilla(ctx context.Context, villaID domainvilla.VillaID) ([]domainavailability.BlockedDate, error) {
	return c.unit.UnitOfWork.BlockedDates().ForVilla(ctx, villaID)
}

func (c contestedBlocked) InsertMany(ctx context.Context, rows []domainavailability.BlockedDate) error {
	if !c.unit.raced {
		c.unit.raced = true
		if err := c.unit.store.InsertMany(ctx, []domainavailability.BlockedDate{c.unit.row}); err != nil {
			return err
		}
	}
	return c.unit.UnitOfWork.BlockedDates().InsertMany(ctx, rows)
}

func (c contestedBlocked) DeleteByBooking(ctx context.Context, villaID domainvilla.VillaID, bookingID domainbooking.BookingID) (int64, error) {
	return c.unit.UnitOfWork.BlockedDates().DeleteByBooking(ctx, villaID, bookingID)
}

func (c contestedBlocked) DeleteManual(ctx context.Context, villaID domainvilla.VillaID, dates []time.Time) (int64, error) {
	return c.unit.UnitOfWork.BlockedDates().DeleteManual(ctx, villaID, dates)
}

func TestCreateBookingLateConflictLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	handler := f.createHandler()
	handler.UoWFactory = contestedFactory{
		inner: f.factory,
		store: f.blocked,
		row: domainavailability.BlockedDate{
			VillaID:   "v1",
			Date:      day(2026, 7, 11),
			BookingID: "rival",
			Reason:    domainavailability.ReasonBooking,
		},
	}

	_, err := handler.Handle(context.Background(), f.createCommand("b1", day(2026, 7, 10), day(2026, 7, 13)))
	if !errors.Is(err, ErrDatesUnavailable) {
		t.Fatalf("expected ErrDatesUnavailable, got %v", err)
	}
	if _, err := f.bookings.ByID(context.Background(), domainbooking.BookingID("b1")); !errors.Is(err, domainbooking.ErrBookingNotFound) {
		t.Fatal("losing booking must not stay persisted")
	}
	rows, err := f.blocked.ForVilla(context.Background(), domainvilla.VillaID("v1"))
	if err != nil {
		t.Fatalf("blocked rows: %v", err)
	}
	if len(rows) != 1 || rows[0].BookingID != "rival" {
		t.Fatalf("only the rival's night should remain, got %+v", rows)
	}
}

// sessionFactory mimics a store whose unit carries a session context,
// the way the mongo unit does.
type sessionFactory struct {
	inner memory.Factory
	seen  *bool
}

func (f sessionFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	unit, err := f.inner.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &sessionUnit{UnitOfWork: unit, seen: f.seen}, nil
}

type sessionKey struct{}

type sessionUnit struct {
	uow.UnitOfWork
	seen *bool
}

func (u *sessionUnit) InjectContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, sessionKey{}, true)
}

func (u *sessionUnit) Bookings() domainbooking.Repository {
	return sessionBookings{inner: u.UnitOfWork.Bookings(), seen: u.seen}
}

type sessionBookings struct {
	inner domainbooking.Repository
	seen  *bool
}

func (s sessionBookings) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	return s.inner.ByID(ctx, id)
}

func (s sessionBookings) ByReference(ctx context.Context, reference string) (*domainbooking.Booking, error) {
	return s.inner.ByReference(ctx, reference)
}

func (s sessionBookings) ListByVilla(ctx context.Context, villaID domainvilla.VillaID) ([]*domainbooking.Booking, error) {
	return s.inner.ListByVilla(ctx, villaID)
}

func (s sessionBookings) Save(ctx context.Context, b *domainbooking.Booking) error {
	if ctx.Value(sessionKey{}) != nil {
		*s.seen = true
	}
	return s.inner.Save(ctx, b)
}

func TestCreateBookingSelfManagedUnitGetsSessionContext(t *testing.T) {
	f := newFixture(t)
	seen := false
	handler := f.createHandler()
	handler.UoWFactory = sessionFactory{inner: f.factory, seen: &seen}

	if _, err := handler.Handle(context.Background(), f.createCommand("b1", day(2026, 7, 10), day(2026, 7, 13))); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !seen {
		t.Fatal("repository writes must run under the unit's injected context")
	}
}

func TestManualBlockPreventsBooking(t *testing.T) {
	f := newFixture(t)
	handler := f.createHandler()

	blocks := domainavailability.ManualBlocks("v1", mustDateRange(t, day(2026, 7, 11), day(2026, 7, 12)), domainavailability.ReasonOwnerUse, f.now)
	if err := f.blocked.InsertMany(context.Background(), blocks); err != nil {
		t.Fatalf("manual block: %v", err)
	}
	_, err := handler.Handle(context.Background(), f.createCommand("b1", day(2026, 7, 10), day(2026, 7, 13)))
	if !errors.Is(err, ErrDatesUnavailable) {
		t.Fatalf("expected ErrDatesUnavailable, got %v", err)
	}
}
