package booking

import (
	"context"
	"errors"
	"time"

	"villacove/internal/app/commands"
	"villacove/internal/app/middleware"
	"villacove/internal/app/outbox"
	"villacove/internal/app/uow"
	domainavailability "villacove/internal/domain/availability"
	domainbooking "villacove/internal/domain/booking"
	domainpricing "villacove/internal/domain/pricing"
	domainrange "villacove/internal/domain/shared/daterange"
	"villacove/internal/domain/shared/events"
	domainvilla "villacove/internal/domain/villa"
)

const createBookingKey = "booking.create"

// ErrDatesUnavailable is the conflict answer for a stay that is no longer
// free. Callers recover by picking different dates.
var ErrDatesUnavailable = errors.New("booking: requested dates are not available")

type CreateBookingCommand struct {
	CommandID       string
	VillaID         string
	GuestName       string
	GuestEmail      string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

type CreateBookingResult struct {
	BookingID string `json:"booking_id"`
	Reference string `json:"reference"`
}

type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

var ErrUnitOfWorkRequired = errors.New("booking: unit of work required")

// Handle runs the whole create inside one unit of work: validation, the
// write-time availability re-check, the booking insert and the blocked
// date inserts. The re-check plus the store's unique (villa, date) index
// are the double-booking defense; everything commits or rolls back as one.
func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
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

	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	now := h.now()
	if err := domainbooking.ValidateDateRange(dr, now); err != nil {
		return nil, err
	}

	v, err := unit.Villas().ByID(ctx, domainvilla.VillaID(cmd.VillaID))
	if err != nil {
		return nil, err
	}
	if cmd.Guests > v.Capacity {
		return nil, domainbooking.ErrGuestsOverCap
	}
	if dr.Nights() < v.MinStayNights {
		return nil, domainbooking.ErrBelowMinStay
	}

	// Mandatory re-check at write time; a stale read from the site is
	// never trusted.
	idx, err := domainavailability.BuildIndex(ctx, unit.BlockedDates(), v.ID)
	if err != nil {
		return nil, err
	}
	if !idx.IsAvailable(v, dr, now) {
		prevented := []events.DomainEvent{domainavailability.OverbookingPreventedEvent(v.ID, dr, now)}
		if recErr := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), prevented); recErr != nil {
			return nil, recErr
		}
		return nil, ErrDatesUnavailable
	}

	quote, err := domainpricing.ForStay(v, dr)
	if err != nil {
		return nil, err
	}

	bk, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(cmd.CommandID),
		VillaID:    v.ID,
		Reference:  domainbooking.NewReference(),
		GuestName:  cmd.GuestName,
		GuestEmail: cmd.GuestEmail,
		Guests:     cmd.Guests,
		Range:      dr,
		Price:      quote,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Bookings().Save(ctx, bk); err != nil {
		return nil, err
	}
	blocks := domainavailability.BlocksForBooking(bk, now)
	if err := unit.BlockedDates().InsertMany(ctx, blocks); err != nil {
		if errors.Is(err, domainavailability.ErrDateAlreadyBlocked) {
			return nil, ErrDatesUnavailable
		}
		return nil, err
	}
	bk.Record(domainavailability.CalendarBlockedEvent(v.ID, dr, domainavailability.ReasonBooking, now))

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

	return &CreateBookingResult{BookingID: string(bk.ID), Reference: bk.Reference}, nil
}

func (h *CreateBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *CreateBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateBookingCommand)(nil)
