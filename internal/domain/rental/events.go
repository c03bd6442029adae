package rental

import (
	"time"

	"rentflow/internal/domain/product"
	"rentflow/internal/domain/user"
)

type RentalCreated struct {
	RentalID        RentalID
	ProductID       product.ProductID
	OwnerID         user.UserID
	RenterID        user.UserID
	StartDate       time.Time
	EndDate         time.Time
	TotalPriceCents int64
	At              time.Time
}

func (e RentalCreated) EventName() string     { return "rental.created" }
func (e RentalCreated) AggregateID() string   { return string(e.RentalID) }
func (e RentalCreated) OccurredAt() time.Time { return e.At }

type RentalCompleted struct {
	RentalID  RentalID
	ProductID product.ProductID
	At        time.Time
}

func (e RentalCompleted) EventName() string     { return "rental.completed" }
func (e RentalCompleted) AggregateID() string   { return string(e.RentalID) }
func (e RentalCompleted) OccurredAt() time.Time { return e.At }

type RentalCancelled struct {
	RentalID  RentalID
	ProductID product.ProductID
	At        time.Time
}

func (e RentalCancelled) EventName() string     { return "rental.cancelled" }
func (e RentalCancelled) AggregateID() string   { return string(e.RentalID) }
func (e RentalCancelled) OccurredAt() time.Time { return e.At }

type RentalRemoved struct {
	RentalID   RentalID
	ProductID  product.ProductID
	HadPayment bool
	HadReview  bool
	At         time.Time
}

func (e RentalRemoved) EventName() string     { return "rental.removed" }
func (e RentalRemoved) AggregateID() string   { return string(e.RentalID) }
func (e RentalRemoved) OccurredAt() time.Time { return e.At }
