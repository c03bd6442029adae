package review

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentflow/internal/domain/product"
	"rentflow/internal/domain/rental"
	"rentflow/internal/domain/shared/events"
	"rentflow/internal/domain/shared/fault"
	"rentflow/internal/domain/user"
)

// ErrDuplicate signals a review already attached to the rental. Repositories
// return it when the rental-id uniqueness constraint rejects an insert.
var ErrDuplicate = errors.New("review: already exists for rental")

// Rating bounds, inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

type ReviewID string

// Review attaches feedback to exactly one completed rental.
type Review struct {
	ID         ReviewID
	RentalID   rental.RentalID
	ProductID  product.ProductID
	ReviewerID user.UserID
	RevieweeID user.UserID
	Rating     int
	Comment    string
	CreatedAt  time.Time
	events.EventRecorder
}

type Repository interface {
	ByRental(ctx context.Context, rentalID rental.RentalID) (*Review, error)
	Save(ctx context.Context, review *Review) error
	// DeleteByRental removes the rental's review if present; absence is not
	// an error.
	DeleteByRental(ctx context.Context, rentalID rental.RentalID) error
	DeleteByProduct(ctx context.Context, productID product.ProductID) error
	ListByProduct(ctx context.Context, productID product.ProductID) ([]*Review, error)
}

// ValidateRating rejects out-of-bounds ratings. Callers run this before any
// storage access.
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fault.Validation("rating", "must be between 1 and 5")
	}
	return nil
}

type SubmitParams struct {
	ID         ReviewID
	RentalID   rental.RentalID
	ProductID  product.ProductID
	ReviewerID user.UserID
	RevieweeID user.UserID
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if err := ValidateRating(params.Rating); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	r := &Review{
		ID:         params.ID,
		RentalID:   params.RentalID,
		ProductID:  params.ProductID,
		ReviewerID: params.ReviewerID,
		RevieweeID: params.RevieweeID,
		Rating:     params.Rating,
		Comment:    strings.TrimSpace(params.Comment),
		CreatedAt:  now,
	}
	r.Record(ReviewSubmitted{ReviewID: r.ID, RentalID: r.RentalID, ProductID: r.ProductID, Rating: r.Rating, At: now})
	return r, nil
}
