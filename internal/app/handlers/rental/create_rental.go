package rental

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rentflow/internal/app/commands"
	"rentflow/internal/app/dto"
	"rentflow/internal/app/middleware"
	"rentflow/internal/app/outbox"
	"rentflow/internal/app/uow"
	domainproduct "rentflow/internal/domain/product"
	domainrental "rentflow/internal/domain/rental"
	"rentflow/internal/domain/shared/fault"
	domainuser "rentflow/internal/domain/user"
)

const createRentalKey = "rental.create"

// CreateRentalCommand requests a new rental for an available product.
type CreateRentalCommand struct {
	CommandID       string
	ProductID       string
	OwnerID         string
	RenterID        string
	StartDate       time.Time
	EndDate         time.Time
	TotalPriceCents int64
	IdempotencyKeyV string
}

func (c CreateRentalCommand) Key() string { return createRentalKey }

func (c CreateRentalCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateRentalCommand) ResultPrototype() any { return &dto.RentalSnapshot{} }

// CreateRentalHandler runs the availability guard and then the transactional
// coordination: insert the rental and flip the product to RENTED as one unit.
// The status flip is a conditional write, so two concurrent requests for the
// same product can never both succeed.
type CreateRentalHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *CreateRentalHandler) Handle(ctx context.Context, cmd CreateRentalCommand) (*dto.RentalSnapshot, error) {
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

	now := time.Now().UTC()

	// Input validation happens before any storage access.
	created, err := domainrental.New(domainrental.CreateParams{
		ID:              domainrental.RentalID(cmd.CommandID),
		ProductID:       domainproduct.ProductID(cmd.ProductID),
		OwnerID:         domainuser.UserID(cmd.OwnerID),
		RenterID:        domainuser.UserID(cmd.RenterID),
		StartDate:       cmd.StartDate,
		EndDate:         cmd.EndDate,
		TotalPriceCents: cmd.TotalPriceCents,
		CreatedAt:       now,
	})
	if err != nil {
		return nil, err
	}

	if _, err := guardRentalRequest(ctx, unit, cmd); err != nil {
		return nil, err
	}

	if err := unit.Rentals().Save(ctx, created); err != nil {
		return nil, err
	}
	// The authoritative availability decision: transition only if the stored
	// status still is AVAILABLE. A lost race surfaces as a conflict, never as
	// a double booking.
	err = unit.Products().TransitionStatus(ctx, created.ProductID, domainproduct.StatusAvailable, domainproduct.StatusRented)
	if err != nil {
		if errors.Is(err, domainproduct.ErrStatusConflict) {
			return nil, fault.Conflict(fault.ReasonProductUnavailable)
		}
		return nil, err
	}

	pending := created.PendingEvents()
	created.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	snap, err := buildSnapshot(ctx, unit, created)
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
		h.Logger.Info("rental created", "rental_id", created.ID, "product_id", created.ProductID, "renter_id", created.RenterID)
	}

	return snap, nil
}

func (h *CreateRentalHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateRentalCommand, *dto.RentalSnapshot] = (*CreateRentalHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateRentalCommand)(nil)
