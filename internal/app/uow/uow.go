package uow

import (
	"context"

	domainavailability "villacove/internal/domain/availability"
	domainbooking "villacove/internal/domain/booking"
	domainvilla "villacove/internal/domain/villa"
)

// UnitOfWork coordinates repositories inside a transaction boundary. The
// booking write path depends on this: the booking row and its blocked
// dates commit or roll back together.
type UnitOfWork interface {
	Villas() domainvilla.Repository
	Bookings() domainbooking.Repository
	BlockedDates() domainavailability.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
