package product

import (
	"context"

	"rentflow/internal/app/dto"
	"rentflow/internal/app/queries"
	"rentflow/internal/app/uow"
	domainproduct "rentflow/internal/domain/product"
	domainrental "rentflow/internal/domain/rental"
	"rentflow/internal/domain/shared/fault"
)

const getProductKey = "product.get"

// GetProductQuery fetches one listing with its rentals and reviews.
type GetProductQuery struct {
	ProductID string
}

func (q GetProductQuery) Key() string { return getProductKey }

type GetProductHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetProductHandler) Handle(ctx context.Context, q GetProductQuery) (*dto.ProductSnapshot, error) {
	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	ctx = uow.Bind(ctx, unit)
	defer func() { _ = unit.Rollback(ctx) }()

	id := domainproduct.ProductID(q.ProductID)
	found, err := unit.Products().ByID(ctx, id)
	if err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFound("Product", q.ProductID)
		}
		return nil, err
	}

	rentals, err := unit.Rentals().List(ctx, domainrental.Filter{ProductID: id})
	if err != nil {
		return nil, err
	}
	reviews, err := unit.Reviews().ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	snap := &dto.ProductSnapshot{
		Product: dto.MapProduct(found),
		Rentals: make([]dto.Rental, 0, len(rentals)),
		Reviews: make([]dto.Review, 0, len(reviews)),
	}
	for _, r := range rentals {
		snap.Rentals = append(snap.Rentals, dto.MapRental(r))
	}
	for _, r := range reviews {
		snap.Reviews = append(snap.Reviews, dto.MapReview(r))
	}
	return snap, nil
}

var _ queries.Handler[GetProductQuery, *dto.ProductSnapshot] = (*GetProductHandler)(nil)
