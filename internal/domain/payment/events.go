package payment

import (
	"time"

	"rentflow/internal/domain/rental"
)

type PaymentRecorded struct {
	PaymentID   PaymentID
	RentalID    rental.RentalID
	AmountCents int64
	At          time.Time
}

func (e PaymentRecorded) EventName() string     { return "payment.recorded" }
func (e PaymentRecorded) AggregateID() string   { return string(e.PaymentID) }
func (e PaymentRecorded) OccurredAt() time.Time { return e.At }
