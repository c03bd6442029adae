package rental

import (
	"context"
	"time"

	"rentflow/internal/domain/product"
	"rentflow/internal/domain/shared/events"
	"rentflow/internal/domain/shared/fault"
	"rentflow/internal/domain/user"
)

type RentalID string

type Status string

const (
	// StatusActive is the initial in-progress state.
	StatusActive Status = "ACTIVE"
	// StatusCompleted is the terminal state that enables reviews. The engine
	// never schedules this transition itself; an external caller drives it.
	StatusCompleted Status = "COMPLETED"
	// StatusCancelled is a terminal state for rentals abandoned before
	// completion.
	StatusCancelled Status = "CANCELLED"
)

// Rental links a product to its renter for a time window. It exclusively owns
// the existence of at most one payment and at most one review.
type Rental struct {
	ID              RentalID
	ProductID       product.ProductID
	OwnerID         user.UserID
	RenterID        user.UserID
	StartDate       time.Time
	EndDate         time.Time
	TotalPriceCents int64
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
	events.EventRecorder
}

// Filter narrows rental listings; zero values match everything.
type Filter struct {
	ProductID product.ProductID
	OwnerID   user.UserID
	RenterID  user.UserID
	Status    Status
}

type Repository interface {
	ByID(ctx context.Context, id RentalID) (*Rental, error)
	Save(ctx context.Context, rental *Rental) error
	Delete(ctx context.Context, id RentalID) error
	DeleteByProduct(ctx context.Context, productID product.ProductID) error
	List(ctx context.Context, filter Filter) ([]*Rental, error)
}

type CreateParams struct {
	ID              RentalID
	ProductID       product.ProductID
	OwnerID         user.UserID
	RenterID        user.UserID
	StartDate       time.Time
	EndDate         time.Time
	TotalPriceCents int64
	CreatedAt       time.Time
}

// New validates the request window and price. Referential checks belong to
// the availability guard, not here.
func New(params CreateParams) (*Rental, error) {
	if params.StartDate.IsZero() || params.EndDate.IsZero() {
		return nil, fault.Validation("window", "start and end dates are required")
	}
	if !params.EndDate.After(params.StartDate) {
		return nil, fault.Validation("window", "end date must be after start date")
	}
	if params.TotalPriceCents < 0 {
		return nil, fault.Validation("totalPrice", "must not be negative")
	}
	now := params.CreatedAt.UTC()
	r := &Rental{
		ID:              params.ID,
		ProductID:       params.ProductID,
		OwnerID:         params.OwnerID,
		RenterID:        params.RenterID,
		StartDate:       params.StartDate.UTC(),
		EndDate:         params.EndDate.UTC(),
		TotalPriceCents: params.TotalPriceCents,
		Status:          StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.Record(RentalCreated{
		RentalID:        r.ID,
		ProductID:       r.ProductID,
		OwnerID:         r.OwnerID,
		RenterID:        r.RenterID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		TotalPriceCents: r.TotalPriceCents,
		At:              now,
	})
	return r, nil
}

// Complete advances an active rental to its terminal reviewed-enabling state.
func (r *Rental) Complete(now time.Time) error {
	if r.Status != StatusActive {
		return fault.Conflict(fault.ReasonRentalNotActive)
	}
	r.Status = StatusCompleted
	r.UpdatedAt = now.UTC()
	r.Record(RentalCompleted{RentalID: r.ID, ProductID: r.ProductID, At: r.UpdatedAt})
	return nil
}

// Cancel marks an active rental abandoned.
func (r *Rental) Cancel(now time.Time) error {
	if r.Status != StatusActive {
		return fault.Conflict(fault.ReasonRentalNotActive)
	}
	r.Status = StatusCancelled
	r.UpdatedAt = now.UTC()
	r.Record(RentalCancelled{RentalID: r.ID, ProductID: r.ProductID, At: r.UpdatedAt})
	return nil
}

// Completed reports whether the rental reached the review-enabling state.
func (r *Rental) Completed() bool {
	return r.Status == StatusCompleted
}
