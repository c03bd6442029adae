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
	"rentflow/internal/domain/shared/fault"
	domainuser "rentflow/internal/domain/user"
)

const createProductKey = "product.create"

// CreateProductCommand lists a new item under an existing owner. The listing
// starts AVAILABLE.
type CreateProductCommand struct {
	CommandID        string
	OwnerID          string
	Title            string
	Description      string
	PricePerDayCents int64
	DepositCents     int64
	Condition        string
	Location         string
	Images           []string
}

func (c CreateProductCommand) Key() string { return createProductKey }

type CreateProductHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *CreateProductHandler) Handle(ctx context.Context, cmd CreateProductCommand) (*dto.Product, error) {
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

	created, err := domainproduct.New(domainproduct.CreateParams{
		ID:               domainproduct.ProductID(cmd.CommandID),
		OwnerID:          domainuser.UserID(cmd.OwnerID),
		Title:            cmd.Title,
		Description:      cmd.Description,
		PricePerDayCents: cmd.PricePerDayCents,
		DepositCents:     cmd.DepositCents,
		Condition:        domainproduct.Condition(cmd.Condition),
		Location:         cmd.Location,
		Images:           cmd.Images,
		CreatedAt:        time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if _, err := unit.Users().ByID(ctx, created.OwnerID); err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFound("Owner", cmd.OwnerID)
		}
		return nil, err
	}

	if err := unit.Products().Save(ctx, created); err != nil {
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
		h.Logger.Info("product listed", "product_id", created.ID, "owner_id", created.OwnerID)
	}

	out := dto.MapProduct(created)
	return &out, nil
}

func (h *CreateProductHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateProductCommand, *dto.Product] = (*CreateProductHandler)(nil)
