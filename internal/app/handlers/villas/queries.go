package villas

import (
	"context"

	"villacove/internal/app/dto"
	"villacove/internal/app/queries"
	"villacove/internal/app/uow"
)

const (
	catalogKey     = "villa.catalog"
	villaDetailKey = "villa.detail"
)

type CatalogQuery struct {
	IncludeDrafts bool
}

func (q CatalogQuery) Key() string { return catalogKey }

type CatalogHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *CatalogHandler) Handle(ctx context.Context, q CatalogQuery) (dto.VillaCollection, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.VillaCollection{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.VillaCollection{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	villas, err := unit.Villas().List(ctx, !q.IncludeDrafts)
	if err != nil {
		return dto.VillaCollection{}, err
	}
	items := make([]dto.VillaSummary, 0, len(villas))
	for _, v := range villas {
		items = append(items, dto.MapVillaSummary(v))
	}
	return dto.VillaCollection{Items: items}, nil
}

type DetailQuery struct {
	Slug string
}

func (q DetailQuery) Key() string { return villaDetailKey }

type DetailHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *DetailHandler) Handle(ctx context.Context, q DetailQuery) (dto.VillaDetail, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.VillaDetail{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.VillaDetail{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	v, err := unit.Villas().BySlug(ctx, q.Slug)
	if err != nil {
		return dto.VillaDetail{}, err
	}
	return dto.MapVillaDetail(v), nil
}

var _ queries.Handler[CatalogQuery, dto.VillaCollection] = (*CatalogHandler)(nil)
var _ queries.Handler[DetailQuery, dto.VillaDetail] = (*DetailHandler)(nil)
