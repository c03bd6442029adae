package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentflow/internal/domain/shared/events"
	"rentflow/internal/domain/shared/fault"
	"rentflow/internal/domain/user"
)

// ErrStatusConflict signals that a conditional status transition did not match
// the expected pre-transition state. Repositories return it instead of writing.
var ErrStatusConflict = errors.New("product: status transition conflict")

type ProductID string

type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusRented    Status = "RENTED"
)

type Condition string

const (
	ConditionNew  Condition = "NEW"
	ConditionGood Condition = "GOOD"
	ConditionFair Condition = "FAIR"
)

// Product is a rentable item. Status is a projection of "does an outstanding
// rental exist" and is mutated only through conditional repository writes
// driven by the rental lifecycle.
type Product struct {
	ID               ProductID
	OwnerID          user.UserID
	Title            string
	Description      string
	PricePerDayCents int64
	DepositCents     int64
	Condition        Condition
	Location         string
	Images           []string
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ProductID) (*Product, error)
	Save(ctx context.Context, product *Product) error
	// TransitionStatus flips the status only when the stored value equals
	// from; otherwise it returns ErrStatusConflict without writing. The check
	// and the write are one serialized storage operation.
	TransitionStatus(ctx context.Context, id ProductID, from, to Status) error
	// SetStatus writes the status unconditionally. Used only inside rental
	// removal cascades, where the outstanding rental is deleted in the same
	// transactional scope.
	SetStatus(ctx context.Context, id ProductID, status Status) error
	Delete(ctx context.Context, id ProductID) error
}

type CreateParams struct {
	ID               ProductID
	OwnerID          user.UserID
	Title            string
	Description      string
	PricePerDayCents int64
	DepositCents     int64
	Condition        Condition
	Location         string
	Images           []string
	CreatedAt        time.Time
}

func New(params CreateParams) (*Product, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, fault.Validation("title", "must not be empty")
	}
	if params.PricePerDayCents < 0 {
		return nil, fault.Validation("pricePerDay", "must not be negative")
	}
	if params.DepositCents < 0 {
		return nil, fault.Validation("deposit", "must not be negative")
	}
	condition := params.Condition
	if condition == "" {
		condition = ConditionGood
	}
	switch condition {
	case ConditionNew, ConditionGood, ConditionFair:
	default:
		return nil, fault.Validation("condition", "unknown value")
	}
	now := params.CreatedAt.UTC()
	p := &Product{
		ID:               params.ID,
		OwnerID:          params.OwnerID,
		Title:            title,
		Description:      strings.TrimSpace(params.Description),
		PricePerDayCents: params.PricePerDayCents,
		DepositCents:     params.DepositCents,
		Condition:        condition,
		Location:         strings.TrimSpace(params.Location),
		Images:           append([]string(nil), params.Images...),
		Status:           StatusAvailable,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	p.Record(ProductListed{ProductID: p.ID, OwnerID: p.OwnerID, At: now})
	return p, nil
}

// Available reports whether the product may be newly rented.
func (p *Product) Available() bool {
	return p.Status == StatusAvailable
}
