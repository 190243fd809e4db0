package booking

import (
	"context"

	"villacove/internal/app/dto"
	"villacove/internal/app/queries"
	"villacove/internal/app/uow"
	domainvilla "villacove/internal/domain/villa"
)

const listByVillaKey = "booking.list_by_villa"

type ListByVillaQuery struct {
	VillaID string
}

func (q ListByVillaQuery) Key() string { return listByVillaKey }

type ListByVillaHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListByVillaHandler) Handle(ctx context.Context, q ListByVillaQuery) (dto.BookingCollection, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.BookingCollection{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.BookingCollection{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	bookings, err := unit.Bookings().ListByVilla(ctx, domainvilla.VillaID(q.VillaID))
	if err != nil {
		return dto.BookingCollection{}, err
	}
	items := make([]dto.BookingSummary, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, dto.MapBookingSummary(b))
	}
	return dto.BookingCollection{Items: items}, nil
}

var _ queries.Handler[ListByVillaQuery, dto.BookingCollection] = (*ListByVillaHandler)(nil)
