package payment

import (
	"context"
	"errors"
	"time"

	"rentflow/internal/domain/rental"
	"rentflow/internal/domain/shared/events"
	"rentflow/internal/domain/shared/fault"
	"rentflow/internal/domain/user"
)

// ErrDuplicate signals a payment already recorded for the rental. Repositories
// return it when the rental-id uniqueness constraint rejects an insert.
var ErrDuplicate = errors.New("payment: already exists for rental")

type PaymentID string

type Method string

const (
	MethodCard     Method = "CARD"
	MethodCash     Method = "CASH"
	MethodTransfer Method = "TRANSFER"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

// Payment records the settlement of exactly one rental. Its lifecycle is
// owned by that rental: it is removed whenever the rental is removed.
type Payment struct {
	ID            PaymentID
	RentalID      rental.RentalID
	UserID        user.UserID
	AmountCents   int64
	Method        Method
	Status        Status
	TransactionID string
	CreatedAt     time.Time
	events.EventRecorder
}

type Repository interface {
	ByRental(ctx context.Context, rentalID rental.RentalID) (*Payment, error)
	Save(ctx context.Context, payment *Payment) error
	// DeleteByRental removes the rental's payment if present; absence is not
	// an error, cascades call it unconditionally.
	DeleteByRental(ctx context.Context, rentalID rental.RentalID) error
}

type CreateParams struct {
	ID            PaymentID
	RentalID      rental.RentalID
	UserID        user.UserID
	AmountCents   int64
	Method        Method
	Status        Status
	TransactionID string
	CreatedAt     time.Time
}

func New(params CreateParams) (*Payment, error) {
	if params.AmountCents <= 0 {
		return nil, fault.Validation("amount", "must be positive")
	}
	switch params.Method {
	case MethodCard, MethodCash, MethodTransfer:
	default:
		return nil, fault.Validation("method", "unknown value")
	}
	status := params.Status
	if status == "" {
		status = StatusPending
	}
	switch status {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
	default:
		return nil, fault.Validation("status", "unknown value")
	}
	now := params.CreatedAt.UTC()
	p := &Payment{
		ID:            params.ID,
		RentalID:      params.RentalID,
		UserID:        params.UserID,
		AmountCents:   params.AmountCents,
		Method:        params.Method,
		Status:        status,
		TransactionID: params.TransactionID,
		CreatedAt:     now,
	}
	p.Record(PaymentRecorded{PaymentID: p.ID, RentalID: p.RentalID, AmountCents: p.AmountCents, At: now})
	return p, nil
}
