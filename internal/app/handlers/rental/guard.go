package rental

import (
	"context"

	"rentflow/internal/app/uow"
	domainproduct "rentflow/internal/domain/product"
	"rentflow/internal/domain/shared/fault"
	domainuser "rentflow/internal/domain/user"
)

// guardResult carries the entities the availability guard resolved, so the
// coordinator does not re-read them.
type guardResult struct {
	product *domainproduct.Product
	owner   *domainuser.User
	renter  *domainuser.User
}

// guardRentalRequest validates a rental request against current state without
// mutating anything: referenced entities exist, the owner really owns the
// product, the renter is not the owner, and the product is available. The
// availability answer here is advisory; the coordinator re-asserts it with a
// conditional write.
func guardRentalRequest(ctx context.Context, unit uow.UnitOfWork, cmd CreateRentalCommand) (guardResult, error) {
	var res guardResult

	product, err := unit.Products().ByID(ctx, domainproduct.ProductID(cmd.ProductID))
	if err != nil {
		if fault.IsNotFound(err) {
			return res, fault.NotFound("Product", cmd.ProductID)
		}
		return res, err
	}
	owner, err := unit.Users().ByID(ctx, domainuser.UserID(cmd.OwnerID))
	if err != nil {
		if fault.IsNotFound(err) {
			return res, fault.NotFound("Owner", cmd.OwnerID)
		}
		return res, err
	}
	renter, err := unit.Users().ByID(ctx, domainuser.UserID(cmd.RenterID))
	if err != nil {
		if fault.IsNotFound(err) {
			return res, fault.NotFound("Renter", cmd.RenterID)
		}
		return res, err
	}

	if product.OwnerID != owner.ID {
		return res, fault.Conflict(fault.ReasonOwnerMismatch)
	}
	if owner.ID == renter.ID {
		return res, fault.Conflict(fault.ReasonSelfRental)
	}
	if !product.Available() {
		return res, fault.Conflict(fault.ReasonProductUnavailable)
	}

	res.product = product
	res.owner = owner
	res.renter = renter
	return res, nil
}
