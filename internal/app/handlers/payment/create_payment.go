package payment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rentflow/internal/app/commands"
	"rentflow/internal/app/dto"
	"rentflow/internal/app/outbox"
	"rentflow/internal/app/uow"
	domainpayment "rentflow/internal/domain/payment"
	domainrental "rentflow/internal/domain/rental"
	"rentflow/internal/domain/shared/fault"
	domainuser "rentflow/internal/domain/user"
)

const createPaymentKey = "payment.create"

// CreatePaymentCommand records the settlement of a rental.
type CreatePaymentCommand struct {
	CommandID     string
	RentalID      string
	UserID        string
	AmountCents   int64
	Method        string
	Status        string
	TransactionID string
}

func (c CreatePaymentCommand) Key() string { return createPaymentKey }

// CreatePaymentHandler enforces at most one payment per rental. As with
// reviews, the pre-check is advisory and the uniqueness constraint decides.
type CreatePaymentHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *CreatePaymentHandler) Handle(ctx context.Context, cmd CreatePaymentCommand) (*dto.Payment, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.Bind(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	created, err := domainpayment.New(domainpayment.CreateParams{
		ID:            domainpayment.PaymentID(cmd.CommandID),
		RentalID:      domainrental.RentalID(cmd.RentalID),
		UserID:        domainuser.UserID(cmd.UserID),
		AmountCents:   cmd.AmountCents,
		Method:        domainpayment.Method(cmd.Method),
		Status:        domainpayment.Status(cmd.Status),
		TransactionID: cmd.TransactionID,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if _, err := unit.Rentals().ByID(ctx, created.RentalID); err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFound("Rental", cmd.RentalID)
		}
		return nil, err
	}
	if _, err := unit.Users().ByID(ctx, created.UserID); err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFound("User", cmd.UserID)
		}
		return nil, err
	}

	if _, err := unit.Payments().ByRental(ctx, created.RentalID); err == nil {
		return nil, fault.Conflict(fault.ReasonPaymentExists)
	} else if !fault.IsNotFound(err) {
		return nil, err
	}

	if err := unit.Payments().Save(ctx, created); err != nil {
		if errors.Is(err, domainpayment.ErrDuplicate) {
			return nil, fault.Conflict(fault.ReasonPaymentExists)
		}
		return nil, err
	}

	pending := created.PendingEvents()
	created.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("payment recorded", "payment_id", created.ID, "rental_id", created.RentalID, "amount_cents", created.AmountCents)
	}

	out := dto.MapPayment(created)
	return &out, nil
}

func (h *CreatePaymentHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreatePaymentCommand, *dto.Payment] = (*CreatePaymentHandler)(nil)
