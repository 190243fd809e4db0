package availability

import (
	"context"
	"time"

	"villacove/internal/app/dto"
	"villacove/internal/app/queries"
	"villacove/internal/app/uow"
	domainavailability "villacove/internal/domain/availability"
	domainpricing "villacove/internal/domain/pricing"
	domainrange "villacove/internal/domain/shared/daterange"
	domainvilla "villacove/internal/domain/villa"
)

const checkKey = "availability.check"

type CheckQuery struct {
	VillaID  string
	CheckIn  time.Time
	CheckOut time.Time
}

func (q CheckQuery) Key() string { return checkKey }

// CheckHandler answers the site's "can I book these dates" question and
// attaches a quote when the answer is yes. The result is advisory: create
// re-verifies at write time.
type CheckHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *CheckHandler) Handle(ctx context.Context, q CheckQuery) (dto.AvailabilityCheck, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.AvailabilityCheck{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.AvailabilityCheck{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	result := dto.AvailabilityCheck{VillaID: q.VillaID, CheckIn: q.CheckIn, CheckOut: q.CheckOut}

	dr, err := domainrange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return result, err
	}

	v, err := unit.Villas().ByID(ctx, domainvilla.VillaID(q.VillaID))
	if err != nil {
		return result, err
	}

	idx, err := domainavailability.BuildIndex(ctx, unit.BlockedDates(), v.ID)
	if err != nil {
		return result, err
	}
	result.Available = idx.IsAvailable(v, dr, h.now())
	if result.Available {
		quote, err := domainpricing.ForStay(v, dr)
		if err != nil {
			return result, err
		}
		result.Quote = &dto.QuoteDTO{
			Nights:      quote.Nights,
			NightlyRate: dto.MapMoney(quote.NightlyRate),
			CleaningFee: dto.MapMoney(quote.CleaningFee),
			ServiceFee:  dto.MapMoney(quote.ServiceFee),
			Total:       dto.MapMoney(quote.Total),
		}
	}
	return result, nil
}

func (h *CheckHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ queries.Handler[CheckQuery, dto.AvailabilityCheck] = (*CheckHandler)(nil)
