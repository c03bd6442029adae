package review

import (
	"time"

	"rentflow/internal/domain/product"
	"rentflow/internal/domain/rental"
)

type ReviewSubmitted struct {
	ReviewID  ReviewID
	RentalID  rental.RentalID
	ProductID product.ProductID
	Rating    int
	At        time.Time
}

func (e ReviewSubmitted) EventName() string     { return "review.submitted" }
func (e ReviewSubmitted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewSubmitted) OccurredAt() time.Time { return e.At }
