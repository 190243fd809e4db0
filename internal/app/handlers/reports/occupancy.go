package reports

import (
	"context"
	"time"

	"villacove/internal/app/dto"
	"villacove/internal/app/queries"
	"villacove/internal/app/uow"
	"villacove/internal/domain/occupancy"
	domainrange "villacove/internal/domain/shared/daterange"
	domainvilla "villacove/internal/domain/villa"
)

const occupancyKey = "reports.occupancy"

type OccupancyQuery struct {
	VillaID     string
	PeriodStart time.Time
	PeriodEnd   time.Time
}

func (q OccupancyQuery) Key() string { return occupancyKey }

// OccupancyHandler is a pure read over the booking set: booked nights by
// stay date, revenue by booking-creation date.
type OccupancyHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *OccupancyHandler) Handle(ctx context.Context, q OccupancyQuery) (dto.OccupancyReport, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.OccupancyReport{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.OccupancyReport{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	period, err := domainrange.New(q.PeriodStart, q.PeriodEnd)
	if err != nil {
		return dto.OccupancyReport{}, err
	}
	v, err := unit.Villas().ByID(ctx, domainvilla.VillaID(q.VillaID))
	if err != nil {
		return dto.OccupancyReport{}, err
	}
	bookings, err := unit.Bookings().ListByVilla(ctx, v.ID)
	if err != nil {
		return dto.OccupancyReport{}, err
	}

	report := occupancy.Build(string(v.ID), bookings, period, v.NightlyRate.Currency)
	return dto.MapOccupancyReport(report), nil
}

var _ queries.Handler[OccupancyQuery, dto.OccupancyReport] = (*OccupancyHandler)(nil)
