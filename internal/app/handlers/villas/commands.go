package villas

import (
	"context"
	"errors"
	"time"

	"villacove/internal/app/commands"
	"villacove/internal/app/outbox"
	"villacove/internal/app/uow"
	"villacove/internal/domain/shared/money"
	domainvilla "villacove/internal/domain/villa"
)

const (
	createVillaKey  = "villa.create"
	updateVillaKey  = "villa.update"
	publishVillaKey = "villa.publish"
	addPhotoKey     = "villa.add_photo"
)

var ErrUnitOfWorkRequired = errors.New("villas: unit of work required")

type CreateVillaCommand struct {
	CommandID        string
	Name             string
	Slug             string
	Description      string
	Location         string
	Capacity         int
	MinStayNights    int
	NightlyRateCents int64
	CleaningFeeCents int64
	ServiceFeeCents  int64
	Currency         string
	Amenities        []string
}

func (c CreateVillaCommand) Key() string { return createVillaKey }

type CreateVillaResult struct {
	VillaID string `json:"villa_id"`
}

type CreateVillaHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *CreateVillaHandler) Handle(ctx context.Context, cmd CreateVillaCommand) (*CreateVillaResult, error) {
	unit, managed, err := beginIfNeeded(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	committed := false
	if managed {
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	currency := cmd.Currency
	if currency == "" {
		currency = "EUR"
	}
	nightly, err := money.New(cmd.NightlyRateCents, currency)
	if err != nil {
		return nil, err
	}
	cleaning, err := money.New(cmd.CleaningFeeCents, currency)
	if err != nil {
		return nil, err
	}
	service, err := money.New(cmd.ServiceFeeCents, currency)
	if err != nil {
		return nil, err
	}

	v, err := domainvilla.NewVilla(domainvilla.CreateParams{
		ID:            domainvilla.VillaID(cmd.CommandID),
		Name:          cmd.Name,
		Slug:          cmd.Slug,
		Description:   cmd.Description,
		Location:      cmd.Location,
		Capacity:      cmd.Capacity,
		MinStayNights: cmd.MinStayNights,
		NightlyRate:   nightly,
		CleaningFee:   cleaning,
		ServiceFee:    service,
		Amenities:     cmd.Amenities,
		Now:           h.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Villas().Save(ctx, v); err != nil {
		return nil, err
	}

	pending := v.PendingEvents()
	v.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &CreateVillaResult{VillaID: string(v.ID)}, nil
}

func (h *CreateVillaHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

type UpdateVillaCommand struct {
	VillaID          string
	Name             string
	Description      string
	Location         string
	Capacity         int
	MinStayNights    int
	NightlyRateCents int64
	CleaningFeeCents int64
	ServiceFeeCents  int64
	Currency         string
	Amenities        []string
}

func (c UpdateVillaCommand) Key() string { return updateVillaKey }

type UpdateVillaResult struct {
	VillaID string `json:"villa_id"`
}

type UpdateVillaHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *UpdateVillaHandler) Handle(ctx context.Context, cmd UpdateVillaCommand) (*UpdateVillaResult, error) {
	unit, managed, err := beginIfNeeded(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	committed := false
	if managed {
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	v, err := unit.Villas().ByID(ctx, domainvilla.VillaID(cmd.VillaID))
	if err != nil {
		return nil, err
	}
	now := h.now()
	if err := v.UpdateDetails(domainvilla.UpdateParams{
		Name:          cmd.Name,
		Description:   cmd.Description,
		Location:      cmd.Location,
		Capacity:      cmd.Capacity,
		MinStayNights: cmd.MinStayNights,
		Amenities:     cmd.Amenities,
	}, now); err != nil {
		return nil, err
	}
	currency := cmd.Currency
	if currency == "" {
		currency = v.NightlyRate.Currency
	}
	nightly, err := money.New(cmd.NightlyRateCents, currency)
	if err != nil {
		return nil, err
	}
	cleaning, err := money.New(cmd.CleaningFeeCents, currency)
	if err != nil {
		return nil, err
	}
	service, err := money.New(cmd.ServiceFeeCents, currency)
	if err != nil {
		return nil, err
	}
	if err := v.SetRates(nightly, cleaning, service, now); err != nil {
		return nil, err
	}
	if err := unit.Villas().Save(ctx, v); err != nil {
		return nil, err
	}

	pending := v.PendingEvents()
	v.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &UpdateVillaResult{VillaID: string(v.ID)}, nil
}

func (h *UpdateVillaHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

type PublishVillaCommand struct {
	VillaID string
	Publish bool
}

func (c PublishVillaCommand) Key() string { return publishVillaKey }

type PublishVillaResult struct {
	VillaID string `json:"villa_id"`
	State   string `json:"state"`
}

type PublishVillaHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *PublishVillaHandler) Handle(ctx context.Context, cmd PublishVillaCommand) (*PublishVillaResult, error) {
	unit, managed, err := beginIfNeeded(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	committed := false
	if managed {
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	v, err := unit.Villas().ByID(ctx, domainvilla.VillaID(cmd.VillaID))
	if err != nil {
		return nil, err
	}
	now := h.now()
	if cmd.Publish {
		err = v.Publish(now)
	} else {
		err = v.Unpublish(now)
	}
	if err != nil {
		return nil, err
	}
	if err := unit.Villas().Save(ctx, v); err != nil {
		return nil, err
	}

	pending := v.PendingEvents()
	v.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &PublishVillaResult{VillaID: string(v.ID), State: string(v.State)}, nil
}

func (h *PublishVillaHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

type AddPhotoCommand struct {
	VillaID string
	URL     string
}

func (c AddPhotoCommand) Key() string { return addPhotoKey }

type AddPhotoResult struct {
	VillaID string   `json:"villa_id"`
	Photos  []string `json:"photos"`
}

type AddPhotoHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *AddPhotoHandler) Handle(ctx context.Context, cmd AddPhotoCommand) (*AddPhotoResult, error) {
	unit, managed, err := beginIfNeeded(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	committed := false
	if managed {
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	v, err := unit.Villas().ByID(ctx, domainvilla.VillaID(cmd.VillaID))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now().UTC()
	}
	v.AddPhoto(cmd.URL, now)
	if err := unit.Villas().Save(ctx, v); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &AddPhotoResult{VillaID: string(v.ID), Photos: append([]string(nil), v.Photos...)}, nil
}

func beginIfNeeded(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, bool, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, false, nil
	}
	if factory == nil {
		return nil, false, ErrUnitOfWorkRequired
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	return unit, true, nil
}

func encoderOrDefault(enc outbox.EventEncoder) outbox.EventEncoder {
	if enc != nil {
		return enc
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateVillaCommand, *CreateVillaResult] = (*CreateVillaHandler)(nil)
var _ commands.Handler[UpdateVillaCommand, *UpdateVillaResult] = (*UpdateVillaHandler)(nil)
var _ commands.Handler[PublishVillaCommand, *PublishVillaResult] = (*PublishVillaHandler)(nil)
var _ commands.Handler[AddPhotoCommand, *AddPhotoResult] = (*AddPhotoHandler)(nil)
