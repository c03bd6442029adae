// Package memory implements the storage ports on plain maps. A store-wide
// mutex held from Begin until Commit or Rollback serializes every unit of
// work, so the conditional status transition is a true check-and-set and a
// unit's writes become visible all at once or not at all.
package memory

import (
	"context"
	"sync"

	"rentflow/internal/app/uow"
	domainpayment "rentflow/internal/domain/payment"
	domainproduct "rentflow/internal/domain/product"
	domainrental "rentflow/internal/domain/rental"
	domainreview "rentflow/internal/domain/review"
	domainuser "rentflow/internal/domain/user"
)

// Store holds the authoritative state. Payments and reviews are keyed by
// rental ID, which makes the at-most-one-per-rental constraint structural.
type Store struct {
	mu       sync.Mutex
	users    map[domainuser.UserID]domainuser.User
	products map[domainproduct.ProductID]domainproduct.Product
	rentals  map[domainrental.RentalID]domainrental.Rental
	payments map[domainrental.RentalID]domainpayment.Payment
	reviews  map[domainrental.RentalID]domainreview.Review
}

func NewStore() *Store {
	return &Store{
		users:    make(map[domainuser.UserID]domainuser.User),
		products: make(map[domainproduct.ProductID]domainproduct.Product),
		rentals:  make(map[domainrental.RentalID]domainrental.Rental),
		payments: make(map[domainrental.RentalID]domainpayment.Payment),
		reviews:  make(map[domainrental.RentalID]domainreview.Review),
	}
}

// Factory hands out units of work over the store.
type Factory struct {
	Store *Store
}

func NewFactory(store *Store) *Factory {
	return &Factory{Store: store}
}

func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.Store.mu.Lock()
	u := &unit{store: f.Store, readOnly: opts.ReadOnly}
	u.stage()
	return u, nil
}

// unit operates on staged copies of the store's maps. Commit swaps the staged
// maps in; Rollback drops them. Either way the store lock is released exactly
// once.
type unit struct {
	store    *Store
	readOnly bool
	released bool

	outboxStaged []stagedOutboxRecord

	users    map[domainuser.UserID]domainuser.User
	products map[domainproduct.ProductID]domainproduct.Product
	rentals  map[domainrental.RentalID]domainrental.Rental
	payments map[domainrental.RentalID]domainpayment.Payment
	reviews  map[domainrental.RentalID]domainreview.Review
}

func (u *unit) stage() {
	u.users = make(map[domainuser.UserID]domainuser.User, len(u.store.users))
	for k, v := range u.store.users {
		u.users[k] = v
	}
	u.products = make(map[domainproduct.ProductID]domainproduct.Product, len(u.store.products))
	for k, v := range u.store.products {
		u.products[k] = v
	}
	u.rentals = make(map[domainrental.RentalID]domainrental.Rental, len(u.store.rentals))
	for k, v := range u.store.rentals {
		u.rentals[k] = v
	}
	u.payments = make(map[domainrental.RentalID]domainpayment.Payment, len(u.store.payments))
	for k, v := range u.store.payments {
		u.payments[k] = v
	}
	u.reviews = make(map[domainrental.RentalID]domainreview.Review, len(u.store.reviews))
	for k, v := range u.store.reviews {
		u.reviews[k] = v
	}
}

func (u *unit) Users() domainuser.Repository       { return &userRepo{unit: u} }
func (u *unit) Products() domainproduct.Repository { return &productRepo{unit: u} }
func (u *unit) Rentals() domainrental.Repository   { return &rentalRepo{unit: u} }
func (u *unit) Payments() domainpayment.Repository { return &paymentRepo{unit: u} }
func (u *unit) Reviews() domainreview.Repository   { return &reviewRepo{unit: u} }

func (u *unit) Commit(ctx context.Context) error {
	if u.released {
		return nil
	}
	if !u.readOnly {
		u.store.users = u.users
		u.store.products = u.products
		u.store.rentals = u.rentals
		u.store.payments = u.payments
		u.store.reviews = u.reviews
		for _, s := range u.outboxStaged {
			s.box.append(s.record)
		}
	}
	u.outboxStaged = nil
	u.released = true
	u.store.mu.Unlock()
	return nil
}

func (u *unit) Rollback(ctx context.Context) error {
	if u.released {
		return nil
	}
	u.outboxStaged = nil
	u.released = true
	u.store.mu.Unlock()
	return nil
}

var _ uow.UoWFactory = (*Factory)(nil)
var _ uow.UnitOfWork = (*unit)(nil)
