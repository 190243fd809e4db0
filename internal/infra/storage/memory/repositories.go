package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainavailability "villacove/internal/domain/availability"
	domainbooking "villacove/internal/domain/booking"
	"villacove/internal/domain/shared/daterange"
	domainvilla "villacove/internal/domain/villa"
)

// VillaRepository is an in-memory implementation for demo and test use.
type VillaRepository struct {
	mu    sync.RWMutex
	items map[domainvilla.VillaID]*domainvilla.Villa
}

// NewVillaRepository builds an empty repository.
func NewVillaRepository() *VillaRepository {
	return &VillaRepository{items: make(map[domainvilla.VillaID]*domainvilla.Villa)}
}

// ByID returns a villa or villa.ErrVillaNotFound.
func (r *VillaRepository) ByID(ctx context.Context, id domainvilla.VillaID) (*domainvilla.Villa, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[id]
	if !ok {
		return nil, domainvilla.ErrVillaNotFound
	}
	return v, nil
}

// BySlug locates a villa using its public slug.
func (r *VillaRepository) BySlug(ctx context.Context, slug string) (*domainvilla.Villa, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.items {
		if v.Slug == slug {
			return v, nil
		}
	}
	return nil, domainvilla.ErrVillaNotFound
}

// Save stores/updates a villa entry.
func (r *VillaRepository) Save(ctx context.Context, v *domainvilla.Villa) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v.Version++
	r.items[v.ID] = v
	return nil
}

// List returns villas ordered by name.
func (r *VillaRepository) List(ctx context.Context, onlyPublished bool) ([]*domainvilla.Villa, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainvilla.Villa, 0, len(r.items))
	for _, v := range r.items {
		if onlyPublished && v.State != domainvilla.StatePublished {
			continue
		}
		matches = append(matches, v)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Name < matches[j].Name
	})
	return matches, nil
}

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

// NewBookingRepository builds an empty booking repo.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

// ByID fetches a booking.
func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return b, nil
}

// ByReference looks up a booking by its guest-facing reference code.
func (r *BookingRepository) ByReference(ctx context.Context, reference string) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.items {
		if b.Reference == reference {
			return b, nil
		}
	}
	return nil, domainbooking.ErrBookingNotFound
}

// Save stores the current booking state.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.Version++
	r.items[b.ID] = b
	return nil
}

// ListByVilla returns bookings for the villa, newest first.
func (r *BookingRepository) ListByVilla(ctx context.Context, villaID domainvilla.VillaID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.VillaID == villaID {
			matches = append(matches, b)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

// BlockedDateRepository keeps calendar rows in memory. It mirrors the
// unique (villa, date) constraint the mongo index provides, so the
// write-time availability check behaves the same in both modes.
type BlockedDateRepository struct {
	mu   sync.RWMutex
	rows map[string]domainavailability.BlockedDate
}

// NewBlockedDateRepository returns an empty calendar store.
func NewBlockedDateRepository() *BlockedDateRepository {
	return &BlockedDateRepository{rows: make(map[string]domainavailability.BlockedDate)}
}

// ForVilla returns every blocked night for the villa ordered by date.
func (r *BlockedDateRepository) ForVilla(ctx context.Context, villaID domainvilla.VillaID) ([]domainavailability.BlockedDate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]domainavailability.BlockedDate, 0)
	for _, row := range r.rows {
		if row.VillaID == villaID {
			matches = append(matches, row)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Date.Before(matches[j].Date)
	})
	return matches, nil
}

// InsertMany rejects the whole batch when any night is already taken.
func (r *BlockedDateRepository) InsertMany(ctx context.Context, dates []domainavailability.BlockedDate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range dates {
		if _, taken := r.rows[blockKey(row.VillaID, row.Date)]; taken {
			return domainavailability.ErrDateAlreadyBlocked
		}
	}
	for _, row := range dates {
		row.Date = daterange.Day(row.Date)
		r.rows[blockKey(row.VillaID, row.Date)] = row
	}
	return nil
}

// DeleteByBooking removes the rows a booking owns and reports how many.
func (r *BlockedDateRepository) DeleteByBooking(ctx context.Context, villaID domainvilla.VillaID, bookingID domainbooking.BookingID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for key, row := range r.rows {
		if row.VillaID == villaID && row.BookingID == bookingID && bookingID != "" {
			delete(r.rows, key)
			removed++
		}
	}
	return removed, nil
}

// DeleteManual removes manual holds on the given dates. Booking-owned rows
// are left alone.
func (r *BlockedDateRepository) DeleteManual(ctx context.Context, villaID domainvilla.VillaID, dates []time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for _, d := range dates {
		key := blockKey(villaID, d)
		row, ok := r.rows[key]
		if !ok || row.BookingID != "" {
			continue
		}
		delete(r.rows, key)
		removed++
	}
	return removed, nil
}

func blockKey(villaID domainvilla.VillaID, date time.Time) string {
	return string(villaID) + ":" + daterange.DayKey(date)
}

// The helpers below back the unit-of-work journal: they drop or restore
// exactly the rows one unit touched.

func (r *VillaRepository) discard(id domainvilla.VillaID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
}

func (r *BookingRepository) discard(id domainbooking.BookingID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
}

func (r *BlockedDateRepository) discardKeys(keys []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		delete(r.rows, key)
	}
}

func (r *BlockedDateRepository) reinstate(rows []domainavailability.BlockedDate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range rows {
		r.rows[blockKey(row.VillaID, row.Date)] = row
	}
}

func (r *BlockedDateRepository) rowsByBooking(villaID domainvilla.VillaID, bookingID domainbooking.BookingID) []domainavailability.BlockedDate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matches []domainavailability.BlockedDate
	for _, row := range r.rows {
		if row.VillaID == villaID && row.BookingID == bookingID && bookingID != "" {
			matches = append(matches, row)
		}
	}
	return matches
}

func (r *BlockedDateRepository) manualRows(villaID domainvilla.VillaID, dates []time.Time) []domainavailability.BlockedDate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matches []domainavailability.BlockedDate
	for _, d := range dates {
		row, ok := r.rows[blockKey(villaID, d)]
		if ok && row.BookingID == "" {
			matches = append(matches, row)
		}
	}
	return matches
}

var (
	_ domainvilla.Repository        = (*VillaRepository)(nil)
	_ domainbooking.Repository      = (*BookingRepository)(nil)
	_ domainavailability.Repository = (*BlockedDateRepository)(nil)
)
