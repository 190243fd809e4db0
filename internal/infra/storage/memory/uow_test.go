package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"villacove/internal/app/uow"
	domainavailability "villacove/internal/domain/availability"
	domainbooking "villacove/internal/domain/booking"
)

func newFactory() Factory {
	return Factory{
		VillaRepo:       NewVillaRepository(),
		BookingRepo:     NewBookingRepository(),
		BlockedDateRepo: NewBlockedDateRepository(),
	}
}

func TestUnitRollbackRemovesItsOwnWrites(t *testing.T) {
	factory := newFactory()
	ctx := context.Background()

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	bk := &domainbooking.Booking{ID: "b1", VillaID: "v1"}
	if err := unit.Bookings().Save(ctx, bk); err != nil {
		t.Fatalf("save: %v", err)
	}
	rows := []domainavailability.BlockedDate{
		{VillaID: "v1", Date: day(2026, 7, 10), BookingID: "b1", Reason: domainavailability.ReasonBooking},
		{VillaID: "v1", Date: day(2026, 7, 11), BookingID: "b1", Reason: domainavailability.ReasonBooking},
	}
	if err := unit.BlockedDates().InsertMany(ctx, rows); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := unit.Rollback(ctx); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	if _, err := factory.BookingRepo.ByID(ctx, "b1"); !errors.Is(err, domainbooking.ErrBookingNotFound) {
		t.Fatalf("rolled-back booking must be gone, got %v", err)
	}
	left, _ := factory.BlockedDateRepo.ForVilla(ctx, "v1")
	if len(left) != 0 {
		t.Fatalf("rolled-back rows must be gone, %d left", len(left))
	}
}

func TestUnitRollbackSparesCommittedWrites(t *testing.T) {
	factory := newFactory()
	ctx := context.Background()

	first, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatalf("begin first: %v", err)
	}
	kept := []domainavailability.BlockedDate{
		{VillaID: "v1", Date: day(2026, 7, 10), BookingID: "winner", Reason: domainavailability.ReasonBooking},
	}
	if err := first.BlockedDates().InsertMany(ctx, kept); err != nil {
		t.Fatalf("insert first: %v", err)
	}
	if err := first.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	second, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatalf("begin second: %v", err)
	}
	other := []domainavailability.BlockedDate{
		{VillaID: "v1", Date: day(2026, 7, 11), BookingID: "loser", Reason: domainavailability.ReasonBooking},
	}
	if err := second.BlockedDates().InsertMany(ctx, other); err != nil {
		t.Fatalf("insert second: %v", err)
	}
	if err := second.Rollback(ctx); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	left, _ := factory.BlockedDateRepo.ForVilla(ctx, "v1")
	if len(left) != 1 || left[0].BookingID != "winner" {
		t.Fatalf("committed row must survive another unit's rollback, got %+v", left)
	}
}

func TestUnitRollbackRestoresDeletedRows(t *testing.T) {
	factory := newFactory()
	ctx := context.Background()

	seed := []domainavailability.BlockedDate{
		{VillaID: "v1", Date: day(2026, 7, 10), BookingID: "b1", Reason: domainavailability.ReasonBooking},
		{VillaID: "v1", Date: day(2026, 7, 11), Reason: domainavailability.ReasonMaintenance},
	}
	if err := factory.BlockedDateRepo.InsertMany(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := unit.BlockedDates().DeleteByBooking(ctx, "v1", "b1"); err != nil {
		t.Fatalf("delete by booking: %v", err)
	}
	if _, err := unit.BlockedDates().DeleteManual(ctx, "v1", []time.Time{day(2026, 7, 11)}); err != nil {
		t.Fatalf("delete manual: %v", err)
	}
	if err := unit.Rollback(ctx); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	left, _ := factory.BlockedDateRepo.ForVilla(ctx, "v1")
	if len(left) != 2 {
		t.Fatalf("rollback must restore deleted rows, got %d", len(left))
	}
}

func TestUnitRollbackAfterCommitIsNoOp(t *testing.T) {
	factory := newFactory()
	ctx := context.Background()

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	rows := []domainavailability.BlockedDate{
		{VillaID: "v1", Date: day(2026, 7, 10), Reason: domainavailability.ReasonOwnerUse},
	}
	if err := unit.BlockedDates().InsertMany(ctx, rows); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := unit.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := unit.Rollback(ctx); err != nil {
		t.Fatalf("rollback after commit: %v", err)
	}

	left, _ := factory.BlockedDateRepo.ForVilla(ctx, "v1")
	if len(left) != 1 {
		t.Fatalf("committed rows must survive a late rollback, got %d", len(left))
	}
}
