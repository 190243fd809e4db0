package availability

import (
	"context"
	"time"

	"villacove/internal/app/dto"
	"villacove/internal/app/queries"
	"villacove/internal/app/uow"
	domainvilla "villacove/internal/domain/villa"
)

const getCalendarKey = "availability.calendar"

type GetCalendarQuery struct {
	VillaID string
	From    time.Time
	To      time.Time
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.Calendar{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.Calendar{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	rows, err := unit.BlockedDates().ForVilla(ctx, domainvilla.VillaID(q.VillaID))
	if err != nil {
		return dto.Calendar{}, err
	}
	return dto.MapCalendar(q.VillaID, rows, q.From, q.To), nil
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
