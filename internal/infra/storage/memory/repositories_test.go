package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	domainavailability "villacove/internal/domain/availability"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInsertManyIsAllOrNothing(t *testing.T) {
	repo := NewBlockedDateRepository()
	ctx := context.Background()

	first := []domainavailability.BlockedDate{
		{VillaID: "v1", Date: day(2026, 7, 12), BookingID: "b1", Reason: domainavailability.ReasonBooking},
	}
	if err := repo.InsertMany(ctx, first); err != nil {
		t.Fatalf("seed: %v", err)
	}

	batch := []domainavailability.BlockedDate{
		{VillaID: "v1", Date: day(2026, 7, 11), BookingID: "b2", Reason: domainavailability.ReasonBooking},
		{VillaID: "v1", Date: day(2026, 7, 12), BookingID: "b2", Reason: domainavailability.ReasonBooking},
	}
	if err := repo.InsertMany(ctx, batch); !errors.Is(err, domainavailability.ErrDateAlreadyBlocked) {
		t.Fatalf("expected ErrDateAlreadyBlocked, got %v", err)
	}

	rows, err := repo.ForVilla(ctx, "v1")
	if err != nil {
		t.Fatalf("for villa: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("conflicting batch must not partially insert, got %d rows", len(rows))
	}
}

func TestInsertManyIsolatesVillas(t *testing.T) {
	repo := NewBlockedDateRepository()
	ctx := context.Background()

	a := []domainavailability.BlockedDate{{VillaID: "v1", Date: day(2026, 7, 12), Reason: domainavailability.ReasonMaintenance}}
	b := []domainavailability.BlockedDate{{VillaID: "v2", Date: day(2026, 7, 12), Reason: domainavailability.ReasonMaintenance}}
	if err := repo.InsertMany(ctx, a); err != nil {
		t.Fatalf("villa one: %v", err)
	}
	if err := repo.InsertMany(ctx, b); err != nil {
		t.Fatalf("same date on another villa should insert, got %v", err)
	}
}

func TestDeleteManualSkipsBookingRows(t *testing.T) {
	repo := NewBlockedDateRepository()
	ctx := context.Background()

	rows := []domainavailability.BlockedDate{
		{VillaID: "v1", Date: day(2026, 7, 10), BookingID: "b1", Reason: domainavailability.ReasonBooking},
		{VillaID: "v1", Date: day(2026, 7, 11), Reason: domainavailability.ReasonOwnerUse},
	}
	if err := repo.InsertMany(ctx, rows); err != nil {
		t.Fatalf("insert: %v", err)
	}

	removed, err := repo.DeleteManual(ctx, "v1", []time.Time{day(2026, 7, 10), day(2026, 7, 11)})
	if err != nil {
		t.Fatalf("delete manual: %v", err)
	}
	if removed != 1 {
		t.Fatalf("only the manual row should go, removed %d", removed)
	}
	left, _ := repo.ForVilla(ctx, "v1")
	if len(left) != 1 || left[0].BookingID != "b1" {
		t.Fatalf("booking-owned row must survive, got %+v", left)
	}
}

func TestDeleteByBookingRemovesOnlyItsRows(t *testing.T) {
	repo := NewBlockedDateRepository()
	ctx := context.Background()

	rows := []domainavailability.BlockedDate{
		{VillaID: "v1", Date: day(2026, 7, 10), BookingID: "b1", Reason: domainavailability.ReasonBooking},
		{VillaID: "v1", Date: day(2026, 7, 11), BookingID: "b1", Reason: domainavailability.ReasonBooking},
		{VillaID: "v1", Date: day(2026, 7, 12), BookingID: "b2", Reason: domainavailability.ReasonBooking},
		{VillaID: "v1", Date: day(2026, 7, 13), Reason: domainavailability.ReasonMaintenance},
	}
	if err := repo.InsertMany(ctx, rows); err != nil {
		t.Fatalf("insert: %v", err)
	}

	removed, err := repo.DeleteByBooking(ctx, "v1", "b1")
	if err != nil {
		t.Fatalf("delete by booking: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 rows removed, got %d", removed)
	}
	left, _ := repo.ForVilla(ctx, "v1")
	if len(left) != 2 {
		t.Fatalf("other rows must survive, got %d", len(left))
	}
}
