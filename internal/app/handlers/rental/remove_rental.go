package rental

import (
	"context"
	"log/slog"
	"time"

	"rentflow/internal/app/commands"
	"rentflow/internal/app/dto"
	"rentflow/internal/app/outbox"
	"rentflow/internal/app/uow"
	domainproduct "rentflow/internal/domain/product"
	domainrental "rentflow/internal/domain/rental"
	sharedevents "rentflow/internal/domain/shared/events"
	"rentflow/internal/domain/shared/fault"
)

const removeRentalKey = "rental.remove"

// RemoveRentalCommand tears down a rental and everything it owns.
type RemoveRentalCommand struct {
	RentalID string
}

func (c RemoveRentalCommand) Key() string { return removeRentalKey }

// RemoveRentalHandler runs the dependent-record cascade: payment, review,
// availability restore and the rental row are all settled inside one unit of
// work, so a partial cascade is never observable.
type RemoveRentalHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *RemoveRentalHandler) Handle(ctx context.Context, cmd RemoveRentalCommand) (*dto.RentalSnapshot, error) {
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

	id := domainrental.RentalID(cmd.RentalID)
	removed, err := unit.Rentals().ByID(ctx, id)
	if err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFound("Rental", cmd.RentalID)
		}
		return nil, err
	}

	// Snapshot before deletion so the caller sees the record that was removed.
	snap, err := buildSnapshot(ctx, unit, removed)
	if err != nil {
		return nil, err
	}

	if err := unit.Payments().DeleteByRental(ctx, id); err != nil {
		return nil, err
	}
	if err := unit.Reviews().DeleteByRental(ctx, id); err != nil {
		return nil, err
	}
	// Availability flips back only in lock-step with rental removal; the set
	// is unconditional because this scope owns the outstanding rental.
	if err := unit.Products().SetStatus(ctx, removed.ProductID, domainproduct.StatusAvailable); err != nil {
		return nil, err
	}
	if err := unit.Rentals().Delete(ctx, id); err != nil {
		return nil, err
	}

	event := domainrental.RentalRemoved{
		RentalID:   removed.ID,
		ProductID:  removed.ProductID,
		HadPayment: snap.Payment != nil,
		HadReview:  snap.Review != nil,
		At:         time.Now().UTC(),
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), []sharedevents.DomainEvent{event}); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("rental removed", "rental_id", removed.ID, "product_id", removed.ProductID)
	}

	return snap, nil
}

func (h *RemoveRentalHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[RemoveRentalCommand, *dto.RentalSnapshot] = (*RemoveRentalHandler)(nil)
