package memory

import (
	"context"

	"rentflow/internal/domain/payment"
	"rentflow/internal/domain/product"
	"rentflow/internal/domain/rental"
	"rentflow/internal/domain/review"
	"rentflow/internal/domain/shared/events"
	"rentflow/internal/domain/shared/fault"
	"rentflow/internal/domain/user"
)

type userRepo struct{ unit *unit }

func (r *userRepo) ByID(ctx context.Context, id user.UserID) (*user.User, error) {
	stored, ok := r.unit.users[id]
	if !ok {
		return nil, fault.NotFound("User", string(id))
	}
	out := stored
	return &out, nil
}

func (r *userRepo) Save(ctx context.Context, u *user.User) error {
	r.unit.users[u.ID] = *u
	return nil
}

type productRepo struct{ unit *unit }

func (r *productRepo) ByID(ctx context.Context, id product.ProductID) (*product.Product, error) {
	stored, ok := r.unit.products[id]
	if !ok {
		return nil, fault.NotFound("Product", string(id))
	}
	out := stored
	out.EventRecorder = events.EventRecorder{}
	return &out, nil
}

func (r *productRepo) Save(ctx context.Context, p *product.Product) error {
	stored := *p
	stored.EventRecorder = events.EventRecorder{}
	r.unit.products[p.ID] = stored
	return nil
}

func (r *productRepo) TransitionStatus(ctx context.Context, id product.ProductID, from, to product.Status) error {
	stored, ok := r.unit.products[id]
	if !ok {
		return fault.NotFound("Product", string(id))
	}
	// The store lock is held for the unit's whole lifetime, so this read and
	// write together form one serialized check-and-set.
	if stored.Status != from {
		return product.ErrStatusConflict
	}
	stored.Status = to
	r.unit.products[id] = stored
	return nil
}

func (r *productRepo) SetStatus(ctx context.Context, id product.ProductID, status product.Status) error {
	stored, ok := r.unit.products[id]
	if !ok {
		return fault.NotFound("Product", string(id))
	}
	stored.Status = status
	r.unit.products[id] = stored
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id product.ProductID) error {
	delete(r.unit.products, id)
	return nil
}

type rentalRepo struct{ unit *unit }

func (r *rentalRepo) ByID(ctx context.Context, id rental.RentalID) (*rental.Rental, error) {
	stored, ok := r.unit.rentals[id]
	if !ok {
		return nil, fault.NotFound("Rental", string(id))
	}
	out := stored
	out.EventRecorder = events.EventRecorder{}
	return &out, nil
}

func (r *rentalRepo) Save(ctx context.Context, rent *rental.Rental) error {
	stored := *rent
	stored.EventRecorder = events.EventRecorder{}
	r.unit.rentals[rent.ID] = stored
	return nil
}

func (r *rentalRepo) Delete(ctx context.Context, id rental.RentalID) error {
	delete(r.unit.rentals, id)
	return nil
}

func (r *rentalRepo) DeleteByProduct(ctx context.Context, productID product.ProductID) error {
	for id, stored := range r.unit.rentals {
		if stored.ProductID == productID {
			delete(r.unit.rentals, id)
		}
	}
	return nil
}

func (r *rentalRepo) List(ctx context.Context, filter rental.Filter) ([]*rental.Rental, error) {
	var out []*rental.Rental
	for _, stored := range r.unit.rentals {
		if filter.ProductID != "" && stored.ProductID != filter.ProductID {
			continue
		}
		if filter.OwnerID != "" && stored.OwnerID != filter.OwnerID {
			continue
		}
		if filter.RenterID != "" && stored.RenterID != filter.RenterID {
			continue
		}
		if filter.Status != "" && stored.Status != filter.Status {
			continue
		}
		match := stored
		match.EventRecorder = events.EventRecorder{}
		out = append(out, &match)
	}
	return out, nil
}

type paymentRepo struct{ unit *unit }

func (r *paymentRepo) ByRental(ctx context.Context, rentalID rental.RentalID) (*payment.Payment, error) {
	stored, ok := r.unit.payments[rentalID]
	if !ok {
		return nil, fault.NotFound("Payment", string(rentalID))
	}
	out := stored
	out.EventRecorder = events.EventRecorder{}
	return &out, nil
}

func (r *paymentRepo) Save(ctx context.Context, p *payment.Payment) error {
	if existing, ok := r.unit.payments[p.RentalID]; ok && existing.ID != p.ID {
		return payment.ErrDuplicate
	}
	stored := *p
	stored.EventRecorder = events.EventRecorder{}
	r.unit.payments[p.RentalID] = stored
	return nil
}

func (r *paymentRepo) DeleteByRental(ctx context.Context, rentalID rental.RentalID) error {
	delete(r.unit.payments, rentalID)
	return nil
}

type reviewRepo struct{ unit *unit }

func (r *reviewRepo) ByRental(ctx context.Context, rentalID rental.RentalID) (*review.Review, error) {
	stored, ok := r.unit.reviews[rentalID]
	if !ok {
		return nil, fault.NotFound("Review", string(rentalID))
	}
	out := stored
	out.EventRecorder = events.EventRecorder{}
	return &out, nil
}

func (r *reviewRepo) Save(ctx context.Context, rev *review.Review) error {
	if existing, ok := r.unit.reviews[rev.RentalID]; ok && existing.ID != rev.ID {
		return review.ErrDuplicate
	}
	stored := *rev
	stored.EventRecorder = events.EventRecorder{}
	r.unit.reviews[rev.RentalID] = stored
	return nil
}

func (r *reviewRepo) DeleteByRental(ctx context.Context, rentalID rental.RentalID) error {
	delete(r.unit.reviews, rentalID)
	return nil
}

func (r *reviewRepo) DeleteByProduct(ctx context.Context, productID product.ProductID) error {
	for id, stored := range r.unit.reviews {
		if stored.ProductID == productID {
			delete(r.unit.reviews, id)
		}
	}
	return nil
}

func (r *reviewRepo) ListByProduct(ctx context.Context, productID product.ProductID) ([]*review.Review, error) {
	var out []*review.Review
	for _, stored := range r.unit.reviews {
		if stored.ProductID != productID {
			continue
		}
		match := stored
		match.EventRecorder = events.EventRecorder{}
		out = append(out, &match)
	}
	return out, nil
}
