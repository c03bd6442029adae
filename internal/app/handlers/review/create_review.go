package review

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rentflow/internal/app/commands"
	"rentflow/internal/app/dto"
	"rentflow/internal/app/outbox"
	"rentflow/internal/app/uow"
	domainproduct "rentflow/internal/domain/product"
	domainrental "rentflow/internal/domain/rental"
	domainreview "rentflow/internal/domain/review"
	"rentflow/internal/domain/shared/fault"
	domainuser "rentflow/internal/domain/user"
)

const createReviewKey = "review.create"

// CreateReviewCommand attaches feedback to a completed rental.
type CreateReviewCommand struct {
	CommandID  string
	RentalID   string
	ProductID  string
	ReviewerID string
	RevieweeID string
	Rating     int
	Comment    string
}

func (c CreateReviewCommand) Key() string { return createReviewKey }

// CreateReviewHandler enforces the review gate: rental COMPLETED, at most one
// review per rental. The duplicate check is advisory; the storage uniqueness
// constraint is what actually holds under concurrency.
type CreateReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *CreateReviewHandler) Handle(ctx context.Context, cmd CreateReviewCommand) (*dto.Review, error) {
	// Rating bounds are checked before touching storage.
	if err := domainreview.ValidateRating(cmd.Rating); err != nil {
		return nil, err
	}

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

	reviewed, err := unit.Rentals().ByID(ctx, domainrental.RentalID(cmd.RentalID))
	if err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFound("Rental", cmd.RentalID)
		}
		return nil, err
	}
	if _, err := unit.Products().ByID(ctx, domainproduct.ProductID(cmd.ProductID)); err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFound("Product", cmd.ProductID)
		}
		return nil, err
	}
	if reviewed.ProductID != domainproduct.ProductID(cmd.ProductID) {
		return nil, fault.Validation("product_id", "does not match the rental's product")
	}
	if _, err := unit.Users().ByID(ctx, domainuser.UserID(cmd.ReviewerID)); err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFound("Reviewer", cmd.ReviewerID)
		}
		return nil, err
	}
	if _, err := unit.Users().ByID(ctx, domainuser.UserID(cmd.RevieweeID)); err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFound("Reviewee", cmd.RevieweeID)
		}
		return nil, err
	}

	if !reviewed.Completed() {
		return nil, fault.Conflict(fault.ReasonRentalNotCompleted)
	}

	if _, err := unit.Reviews().ByRental(ctx, reviewed.ID); err == nil {
		return nil, fault.Conflict(fault.ReasonReviewExists)
	} else if !fault.IsNotFound(err) {
		return nil, err
	}

	created, err := domainreview.Submit(domainreview.SubmitParams{
		ID:         domainreview.ReviewID(cmd.CommandID),
		RentalID:   reviewed.ID,
		ProductID:  domainproduct.ProductID(cmd.ProductID),
		ReviewerID: domainuser.UserID(cmd.ReviewerID),
		RevieweeID: domainuser.UserID(cmd.RevieweeID),
		Rating:     cmd.Rating,
		Comment:    cmd.Comment,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Reviews().Save(ctx, created); err != nil {
		if errors.Is(err, domainreview.ErrDuplicate) {
			return nil, fault.Conflict(fault.ReasonReviewExists)
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
		h.Logger.Info("review submitted", "review_id", created.ID, "rental_id", created.RentalID, "rating", created.Rating)
	}

	out := dto.MapReview(created)
	return &out, nil
}

func (h *CreateReviewHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateReviewCommand, *dto.Review] = (*CreateReviewHandler)(nil)
