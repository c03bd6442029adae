package rental

import (
	"context"

	"rentflow/internal/app/dto"
	"rentflow/internal/app/queries"
	"rentflow/internal/app/uow"
	domainrental "rentflow/internal/domain/rental"
	"rentflow/internal/domain/shared/fault"
)

const getRentalKey = "rental.get"

// GetRentalQuery fetches one rental with its nested snapshot.
type GetRentalQuery struct {
	RentalID string
}

func (q GetRentalQuery) Key() string { return getRentalKey }

type GetRentalHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetRentalHandler) Handle(ctx context.Context, q GetRentalQuery) (*dto.RentalSnapshot, error) {
	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	ctx = uow.Bind(ctx, unit)
	defer func() { _ = unit.Rollback(ctx) }()

	found, err := unit.Rentals().ByID(ctx, domainrental.RentalID(q.RentalID))
	if err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFound("Rental", q.RentalID)
		}
		return nil, err
	}
	return buildSnapshot(ctx, unit, found)
}

var _ queries.Handler[GetRentalQuery, *dto.RentalSnapshot] = (*GetRentalHandler)(nil)
