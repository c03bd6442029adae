package uow

import (
	"context"

	domainpayment "rentflow/internal/domain/payment"
	domainproduct "rentflow/internal/domain/product"
	domainrental "rentflow/internal/domain/rental"
	domainreview "rentflow/internal/domain/review"
	domainuser "rentflow/internal/domain/user"
)

// UnitOfWork is the explicit transactional scope every engine operation runs
// in. All repository writes obtained from one unit commit together or not at
// all; it is released deterministically on every exit path.
type UnitOfWork interface {
	Users() domainuser.Repository
	Products() domainproduct.Repository
	Rentals() domainrental.Repository
	Payments() domainpayment.Repository
	Reviews() domainreview.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
