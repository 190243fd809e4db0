package availability

import (
	"context"
	"testing"
	"time"

	"villacove/internal/domain/booking"
	"villacove/internal/domain/shared/daterange"
	"villacove/internal/domain/villa"
)

type stubRepo struct {
	rows []BlockedDate
}

func (s *stubRepo) ForVilla(ctx context.Context, villaID villa.VillaID) ([]BlockedDate, error) {
	return s.rows, nil
}

func (s *stubRepo) InsertMany(ctx context.Context, dates []BlockedDate) error {
	s.rows = append(s.rows, dates...)
	return nil
}

func (s *stubRepo) DeleteByBooking(ctx context.Context, villaID villa.VillaID, bookingID booking.BookingID) (int64, error) {
	return 0, nil
}

func (s *stubRepo) DeleteManual(ctx context.Context, villaID villa.VillaID, dates []time.Time) (int64, error) {
	return 0, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, from, to time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(from, to)
	if err != nil {
		t.Fatalf("range %v..%v: %v", from, to, err)
	}
	return dr
}

func TestIndexBlockedNightRejectsStay(t *testing.T) {
	repo := &stubRepo{rows: []BlockedDate{
		{VillaID: "v1", Date: day(2026, 7, 12), Reason: ReasonBooking},
	}}
	idx, err := BuildIndex(context.Background(), repo, "v1")
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	v := &villa.Villa{ID: "v1", Capacity: 6, MinStayNights: 1}
	now := day(2026, 7, 1)

	if idx.IsAvailable(v, mustRange(t, day(2026, 7, 10), day(2026, 7, 13)), now) {
		t.Fatal("stay over a blocked night should not be available")
	}
	if !idx.IsAvailable(v, mustRange(t, day(2026, 7, 10), day(2026, 7, 12)), now) {
		t.Fatal("stay ending on the blocked night should be available")
	}
}

func TestIndexCheckoutDayTurnover(t *testing.T) {
	// Existing stay Jul 10-13 blocks nights 10, 11, 12. A new stay
	// checking in on the 13th shares only the turnover day.
	existing := mustRange(t, day(2026, 7, 10), day(2026, 7, 13))
	repo := &stubRepo{}
	for _, d := range existing.Dates() {
		repo.rows = append(repo.rows, BlockedDate{VillaID: "v1", Date: d, Reason: ReasonBooking})
	}
	idx, err := BuildIndex(context.Background(), repo, "v1")
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	v := &villa.Villa{ID: "v1", Capacity: 6, MinStayNights: 1}
	now := day(2026, 7, 1)

	if !idx.IsAvailable(v, mustRange(t, day(2026, 7, 13), day(2026, 7, 15)), now) {
		t.Fatal("check-in on the previous guest's checkout day should be available")
	}
	if idx.IsAvailable(v, mustRange(t, day(2026, 7, 12), day(2026, 7, 14)), now) {
		t.Fatal("check-in on the previous guest's last night should not be available")
	}
}

func TestIndexRejectsPastCheckIn(t *testing.T) {
	idx := NewIndex("v1")
	v := &villa.Villa{ID: "v1", Capacity: 6, MinStayNights: 1}
	now := day(2026, 7, 10)

	if idx.IsAvailable(v, mustRange(t, day(2026, 7, 9), day(2026, 7, 11)), now) {
		t.Fatal("check-in before today should not be available")
	}
	if !idx.IsAvailable(v, mustRange(t, day(2026, 7, 10), day(2026, 7, 11)), now) {
		t.Fatal("check-in today should be available")
	}
}

func TestIndexEnforcesMinimumStay(t *testing.T) {
	idx := NewIndex("v1")
	v := &villa.Villa{ID: "v1", Capacity: 6, MinStayNights: 3}
	now := day(2026, 7, 1)

	if idx.IsAvailable(v, mustRange(t, day(2026, 7, 10), day(2026, 7, 12)), now) {
		t.Fatal("two-night stay should fail a three-night minimum")
	}
	if !idx.IsAvailable(v, mustRange(t, day(2026, 7, 10), day(2026, 7, 13)), now) {
		t.Fatal("three-night stay should pass a three-night minimum")
	}
}

func TestIndexRefreshPicksUpNewBlocks(t *testing.T) {
	repo := &stubRepo{}
	idx, err := BuildIndex(context.Background(), repo, "v1")
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	if idx.BlockedCount() != 0 {
		t.Fatalf("expected empty index, got %d blocked nights", idx.BlockedCount())
	}

	repo.rows = append(repo.rows, BlockedDate{VillaID: "v1", Date: day(2026, 8, 1), Reason: ReasonMaintenance})
	if _, taken := idx.BlockedOn(day(2026, 8, 1)); taken {
		t.Fatal("stale index should not see the new block before Refresh")
	}
	if err := idx.Refresh(context.Background(), repo); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	reason, taken := idx.BlockedOn(day(2026, 8, 1))
	if !taken || reason != ReasonMaintenance {
		t.Fatalf("refreshed index should see the maintenance block, got %q %v", reason, taken)
	}
}

func TestBlocksForBookingTagsEveryNight(t *testing.T) {
	bk := &booking.Booking{
		ID:      "b1",
		VillaID: "v1",
		Range:   mustRange(t, day(2026, 7, 10), day(2026, 7, 13)),
	}
	blocks := BlocksForBooking(bk, day(2026, 7, 1))
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocked nights, got %d", len(blocks))
	}
	for _, row := range blocks {
		if row.BookingID != "b1" || row.Reason != ReasonBooking {
			t.Fatalf("unexpected row %+v", row)
		}
	}
	if !blocks[2].Date.Equal(day(2026, 7, 12)) {
		t.Fatalf("last blocked night should be the 12th, got %v", blocks[2].Date)
	}
}

func TestManualBlocksDefaultReason(t *testing.T) {
	dr := mustRange(t, day(2026, 7, 10), day(2026, 7, 12))
	blocks := ManualBlocks("v1", dr, "", day(2026, 7, 1))
	if len(blocks) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(blocks))
	}
	for _, row := range blocks {
		if row.Reason != ReasonMaintenance {
			t.Fatalf("empty reason should default to maintenance, got %q", row.Reason)
		}
		if row.BookingID != "" {
			t.Fatalf("manual block must not carry a booking id")
		}
	}
}
