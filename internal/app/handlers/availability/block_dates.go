package availability

import (
	"context"
	"errors"
	"time"

	"villacove/internal/app/commands"
	"villacove/internal/app/outbox"
	"villacove/internal/app/uow"
	domainavailability "villacove/internal/domain/availability"
	domainrange "villacove/internal/domain/shared/daterange"
	"villacove/internal/domain/shared/events"
	domainvilla "villacove/internal/domain/villa"
)

const blockDatesKey = "availability.block"

var ErrUnitOfWorkRequired = errors.New("availability: unit of work required")

// BlockDatesCommand puts a manual hold (maintenance, owner use) on a
// range of nights. The rows carry no booking id.
type BlockDatesCommand struct {
	VillaID string
	From    time.Time
	To      time.Time
	Reason  string
}

func (c BlockDatesCommand) Key() string { return blockDatesKey }

type BlockDatesResult struct {
	VillaID string `json:"villa_id"`
	Nights  int    `json:"nights"`
}

type BlockDatesHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *BlockDatesHandler) Handle(ctx context.Context, cmd BlockDatesCommand) (*BlockDatesResult, error) {
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
	v, err := unit.Villas().ByID(ctx, domainvilla.VillaID(cmd.VillaID))
	if err != nil {
		return nil, err
	}

	now := h.now()
	reason := domainavailability.BlockReason(cmd.Reason)
	blocks := domainavailability.ManualBlocks(v.ID, dr, reason, now)
	if err := unit.BlockedDates().InsertMany(ctx, blocks); err != nil {
		return nil, err
	}

	blocked := []events.DomainEvent{domainavailability.CalendarBlockedEvent(v.ID, dr, blocks[0].Reason, now)}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), blocked); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &BlockDatesResult{VillaID: string(v.ID), Nights: len(blocks)}, nil
}

func (h *BlockDatesHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *BlockDatesHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[BlockDatesCommand, *BlockDatesResult] = (*BlockDatesHandler)(nil)
