package booking

import (
	"context"
	"time"

	"villacove/internal/app/commands"
	"villacove/internal/app/outbox"
	"villacove/internal/app/uow"
	domainavailability "villacove/internal/domain/availability"
	domainbooking "villacove/internal/domain/booking"
)

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	BookingID string
	Reason    string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type CancelBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

type CancelBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

// Handle flips the booking to cancelled and releases its blocked dates in
// the same unit of work. Cancelling an already-cancelled booking is a
// no-op success.
func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
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

	bk, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if bk.State == domainbooking.StateCancelled {
		return &CancelBookingResult{BookingID: string(bk.ID), Status: string(bk.State)}, nil
	}

	now := h.now()
	if err := bk.Cancel(cmd.Reason, now); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, bk); err != nil {
		return nil, err
	}
	if _, err := unit.BlockedDates().DeleteByBooking(ctx, bk.VillaID, bk.ID); err != nil {
		return nil, err
	}
	bk.Record(domainavailability.CalendarReleasedEvent(bk.VillaID, bk.Range, domainavailability.ReasonBooking, now))

	pending := bk.PendingEvents()
	bk.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &CancelBookingResult{BookingID: string(bk.ID), Status: string(bk.State)}, nil
}

func (h *CancelBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *CancelBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
