package product

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

const removeProductKey = "product.remove"

// RemoveProductCommand deletes a listing together with every rental hanging
// off it, and each rental's payment and review.
type RemoveProductCommand struct {
	ProductID string
}

func (c RemoveProductCommand) Key() string { return removeProductKey }

// RemoveProductHandler walks the widest cascade in the system. Leaf records go
// first so no orphaned payment or review can survive a partial failure: the
// whole walk is one unit of work.
type RemoveProductHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *RemoveProductHandler) Handle(ctx context.Context, cmd RemoveProductCommand) (*dto.CascadeResult, error) {
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

	id := domainproduct.ProductID(cmd.ProductID)
	removed, err := unit.Products().ByID(ctx, id)
	if err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFound("Product", cmd.ProductID)
		}
		return nil, err
	}

	attached, err := unit.Rentals().List(ctx, domainrental.Filter{ProductID: id})
	if err != nil {
		return nil, err
	}
	for _, r := range attached {
		if err := unit.Payments().DeleteByRental(ctx, r.ID); err != nil {
			return nil, err
		}
		// Covers reviews filed against this rental even if their product
		// reference has drifted; the product-wide delete below cannot see
		// those.
		if err := unit.Reviews().DeleteByRental(ctx, r.ID); err != nil {
			return nil, err
		}
	}
	if err := unit.Reviews().DeleteByProduct(ctx, id); err != nil {
		return nil, err
	}
	if err := unit.Rentals().DeleteByProduct(ctx, id); err != nil {
		return nil, err
	}
	if err := unit.Products().Delete(ctx, id); err != nil {
		return nil, err
	}

	event := domainproduct.ProductRemoved{
		ProductID: removed.ID,
		OwnerID:   removed.OwnerID,
		Rentals:   len(attached),
		At:        time.Now().UTC(),
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
		h.Logger.Info("product removed", "product_id", removed.ID, "rentals", len(attached))
	}

	return &dto.CascadeResult{Message: "Product and all related data deleted successfully"}, nil
}

func (h *RemoveProductHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[RemoveProductCommand, *dto.CascadeResult] = (*RemoveProductHandler)(nil)
