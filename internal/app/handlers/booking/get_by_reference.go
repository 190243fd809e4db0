package booking

import (
	"context"

	"villacove/internal/app/dto"
	"villacove/internal/app/queries"
	"villacove/internal/app/uow"
)

const getByReferenceKey = "booking.get_by_reference"

// GetByReferenceQuery is the guest-facing lookup: the reference code is
// what a confirmation email would carry.
type GetByReferenceQuery struct {
	Reference string
}

func (q GetByReferenceQuery) Key() string { return getByReferenceKey }

type GetByReferenceHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetByReferenceHandler) Handle(ctx context.Context, q GetByReferenceQuery) (dto.BookingSummary, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.BookingSummary{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.BookingSummary{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	bk, err := unit.Bookings().ByReference(ctx, q.Reference)
	if err != nil {
		return dto.BookingSummary{}, err
	}
	return dto.MapBookingSummary(bk), nil
}

var _ queries.Handler[GetByReferenceQuery, dto.BookingSummary] = (*GetByReferenceHandler)(nil)
