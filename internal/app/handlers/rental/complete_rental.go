package rental

import (
	"context"
	"log/slog"
	"time"

	"rentflow/internal/app/commands"
	"rentflow/internal/app/dto"
	"rentflow/internal/app/outbox"
	"rentflow/internal/app/uow"
	domainrental "rentflow/internal/domain/rental"
	"rentflow/internal/domain/shared/fault"
)

const completeRentalKey = "rental.complete"

// CompleteRentalCommand advances a rental to its terminal COMPLETED state.
// The engine imposes no timing rules; whoever drives the rental lifecycle
// externally issues this command.
type CompleteRentalCommand struct {
	RentalID string
}

func (c CompleteRentalCommand) Key() string { return completeRentalKey }

type CompleteRentalHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *CompleteRentalHandler) Handle(ctx context.Context, cmd CompleteRentalCommand) (*dto.RentalSnapshot, error) {
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

	completed, err := unit.Rentals().ByID(ctx, domainrental.RentalID(cmd.RentalID))
	if err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFound("Rental", cmd.RentalID)
		}
		return nil, err
	}
	if err := completed.Complete(time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := unit.Rentals().Save(ctx, completed); err != nil {
		return nil, err
	}

	pending := completed.PendingEvents()
	completed.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	snap, err := buildSnapshot(ctx, unit, completed)
	if err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("rental completed", "rental_id", completed.ID)
	}

	return snap, nil
}

func (h *CompleteRentalHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CompleteRentalCommand, *dto.RentalSnapshot] = (*CompleteRentalHandler)(nil)
