package availability

import (
	"context"
	"time"

	"villacove/internal/app/commands"
	"villacove/internal/app/outbox"
	"villacove/internal/app/uow"
	domainavailability "villacove/internal/domain/availability"
	domainrange "villacove/internal/domain/shared/daterange"
	"villacove/internal/domain/shared/events"
	domainvilla "villacove/internal/domain/villa"
)

const unblockDatesKey = "availability.unblock"

// UnblockDatesCommand removes manual holds over a range. Booking-owned
// rows are untouched; those are only released by cancellation.
type UnblockDatesCommand struct {
	VillaID string
	From    time.Time
	To      time.Time
}

func (c UnblockDatesCommand) Key() string { return unblockDatesKey }

type UnblockDatesResult struct {
	VillaID string `json:"villa_id"`
	Removed int64  `json:"removed"`
}

type UnblockDatesHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *UnblockDatesHandler) Handle(ctx context.Context, cmd UnblockDatesCommand) (*UnblockDatesResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		if injector, ok := unit.(interface {
			InjectContext(context.Context) context.Context
		}); ok {
			ctx = injector.InjectContext(ctx)
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	dr, err := domainrange.New(cmd.From, cmd.To)
	if err != nil {
		return nil, err
	}
	villaID := domainvilla.VillaID(cmd.VillaID)
	removed, err := unit.BlockedDates().DeleteManual(ctx, villaID, dr.Dates())
	if err != nil {
		return nil, err
	}

	now := h.now()
	released := []events.DomainEvent{domainavailability.CalendarReleasedEvent(villaID, dr, domainavailability.ReasonMaintenance, now)}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), released); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &UnblockDatesResult{VillaID: cmd.VillaID, Removed: removed}, nil
}

func (h *UnblockDatesHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *UnblockDatesHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[UnblockDatesCommand, *UnblockDatesResult] = (*UnblockDatesHandler)(nil)
