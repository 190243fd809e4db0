package availability

import (
	"context"
	"time"

	"villacove/internal/domain/shared/daterange"
	"villacove/internal/domain/villa"
)

// Index answers availability questions for one villa from a snapshot of
// its blocked dates. It holds no independent source of truth: callers
// build it (or Refresh it) from the repository, inside the same unit of
// work as any write that depends on the answer.
type Index struct {
	villaID villa.VillaID
	blocked map[string]BlockReason
}

func NewIndex(villaID villa.VillaID) *Index {
	return &Index{villaID: villaID, blocked: make(map[string]BlockReason)}
}

// BuildIndex loads the current blocked set for a villa.
func BuildIndex(ctx context.Context, repo Repository, villaID villa.VillaID) (*Index, error) {
	idx := NewIndex(villaID)
	if err := idx.Refresh(ctx, repo); err != nil {
		return nil, err
	}
	return idx, nil
}

// Refresh re-reads the blocked set. Must be called after any mutation
// before the index is trusted again.
func (idx *Index) Refresh(ctx context.Context, repo Repository) error {
	rows, err := repo.ForVilla(ctx, idx.villaID)
	if err != nil {
		return err
	}
	blocked := make(map[string]BlockReason, len(rows))
	for _, row := range rows {
		blocked[daterange.DayKey(row.Date)] = row.Reason
	}
	idx.blocked = blocked
	return nil
}

// IsAvailable reports whether the villa can take a stay over rng. It is
// false when any night of the stay is blocked, when check-in is already in
// the past, or when the stay is shorter than the villa minimum. A stay
// starting on another booking's checkout day is fine; one starting on its
// check-in night is not.
func (idx *Index) IsAvailable(v *villa.Villa, rng daterange.DateRange, now time.Time) bool {
	if rng.Validate() != nil {
		return false
	}
	if daterange.Day(rng.CheckIn).Before(daterange.Day(now)) {
		return false
	}
	if v != nil && rng.Nights() < v.MinStayNights {
		return false
	}
	for _, d := range rng.Dates() {
		if _, taken := idx.blocked[daterange.DayKey(d)]; taken {
			return false
		}
	}
	return true
}

// BlockedOn reports the reason a single night is blocked, if it is.
func (idx *Index) BlockedOn(date time.Time) (BlockReason, bool) {
	reason, ok := idx.blocked[daterange.DayKey(date)]
	return reason, ok
}

// BlockedCount returns the number of distinct blocked nights.
func (idx *Index) BlockedCount() int {
	return len(idx.blocked)
}
