package product

import (
	"time"

	"rentflow/internal/domain/user"
)

type ProductListed struct {
	ProductID ProductID
	OwnerID   user.UserID
	At        time.Time
}

func (e ProductListed) EventName() string     { return "product.listed" }
func (e ProductListed) AggregateID() string   { return string(e.ProductID) }
func (e ProductListed) OccurredAt() time.Time { return e.At }

type ProductRemoved struct {
	ProductID ProductID
	OwnerID   user.UserID
	Rentals   int
	At        time.Time
}

func (e ProductRemoved) EventName() string     { return "product.removed" }
func (e ProductRemoved) AggregateID() string   { return string(e.ProductID) }
func (e ProductRemoved) OccurredAt() time.Time { return e.At }
