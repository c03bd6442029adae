package rental

import (
	"context"

	"rentflow/internal/app/dto"
	"rentflow/internal/app/uow"
	domainrental "rentflow/internal/domain/rental"
	"rentflow/internal/domain/shared/fault"
)

// buildSnapshot assembles the nested response shape for a rental inside the
// current unit of work. Payment and review are optional; any other lookup
// failure aborts.
func buildSnapshot(ctx context.Context, unit uow.UnitOfWork, r *domainrental.Rental) (*dto.RentalSnapshot, error) {
	snap := &dto.RentalSnapshot{Rental: dto.MapRental(r)}

	product, err := unit.Products().ByID(ctx, r.ProductID)
	if err != nil {
		if !fault.IsNotFound(err) {
			return nil, err
		}
	} else {
		mapped := dto.MapProduct(product)
		snap.Product = &mapped
	}

	owner, err := unit.Users().ByID(ctx, r.OwnerID)
	if err != nil {
		if !fault.IsNotFound(err) {
			return nil, err
		}
	} else {
		mapped := dto.MapUser(owner)
		snap.Owner = &mapped
	}

	renter, err := unit.Users().ByID(ctx, r.RenterID)
	if err != nil {
		if !fault.IsNotFound(err) {
			return nil, err
		}
	} else {
		mapped := dto.MapUser(renter)
		snap.Renter = &mapped
	}

	payment, err := unit.Payments().ByRental(ctx, r.ID)
	if err != nil {
		if !fault.IsNotFound(err) {
			return nil, err
		}
	} else {
		mapped := dto.MapPayment(payment)
		snap.Payment = &mapped
	}

	review, err := unit.Reviews().ByRental(ctx, r.ID)
	if err != nil {
		if !fault.IsNotFound(err) {
			return nil, err
		}
	} else {
		mapped := dto.MapReview(review)
		snap.Review = &mapped
	}

	return snap, nil
}
