package rental

import (
	"context"

	"rentflow/internal/app/dto"
	"rentflow/internal/app/queries"
	"rentflow/internal/app/uow"
	domainproduct "rentflow/internal/domain/product"
	domainrental "rentflow/internal/domain/rental"
	"rentflow/internal/domain/shared/fault"
	domainuser "rentflow/internal/domain/user"
)

const listRentalsKey = "rental.list"

// ListRentalsQuery narrows rentals by owner, renter, product or status. A
// non-empty owner/renter/product filter requires that entity to exist.
type ListRentalsQuery struct {
	OwnerID   string
	RenterID  string
	ProductID string
	Status    string
}

func (q ListRentalsQuery) Key() string { return listRentalsKey }

type ListRentalsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListRentalsHandler) Handle(ctx context.Context, q ListRentalsQuery) ([]*dto.RentalSnapshot, error) {
	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	ctx = uow.Bind(ctx, unit)
	defer func() { _ = unit.Rollback(ctx) }()

	if q.OwnerID != "" {
		if _, err := unit.Users().ByID(ctx, domainuser.UserID(q.OwnerID)); err != nil {
			if fault.IsNotFound(err) {
				return nil, fault.NotFound("Owner", q.OwnerID)
			}
			return nil, err
		}
	}
	if q.RenterID != "" {
		if _, err := unit.Users().ByID(ctx, domainuser.UserID(q.RenterID)); err != nil {
			if fault.IsNotFound(err) {
				return nil, fault.NotFound("Renter", q.RenterID)
			}
			return nil, err
		}
	}
	if q.ProductID != "" {
		if _, err := unit.Products().ByID(ctx, domainproduct.ProductID(q.ProductID)); err != nil {
			if fault.IsNotFound(err) {
				return nil, fault.NotFound("Product", q.ProductID)
			}
			return nil, err
		}
	}

	matches, err := unit.Rentals().List(ctx, domainrental.Filter{
		OwnerID:   domainuser.UserID(q.OwnerID),
		RenterID:  domainuser.UserID(q.RenterID),
		ProductID: domainproduct.ProductID(q.ProductID),
		Status:    domainrental.Status(q.Status),
	})
	if err != nil {
		return nil, err
	}

	snaps := make([]*dto.RentalSnapshot, 0, len(matches))
	for _, match := range matches {
		snap, err := buildSnapshot(ctx, unit, match)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

var _ queries.Handler[ListRentalsQuery, []*dto.RentalSnapshot] = (*ListRentalsHandler)(nil)
