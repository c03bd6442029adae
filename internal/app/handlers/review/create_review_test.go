package review_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rentalapp "rentflow/internal/app/handlers/rental"
	reviewapp "rentflow/internal/app/handlers/review"
	"rentflow/internal/app/uow"
	domainproduct "rentflow/internal/domain/product"
	"rentflow/internal/domain/shared/fault"
	domainuser "rentflow/internal/domain/user"
	"rentflow/internal/infra/storage/memory"
)

type testEnv struct {
	factory *memory.Factory
	outbox  *memory.Outbox
}

// seeds owner, renter and product, then creates rental r-1.
func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	env := testEnv{
		factory: memory.NewFactory(memory.NewStore()),
		outbox:  memory.NewOutbox(),
	}
	ctx := context.Background()
	unit, err := env.factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	now := time.Now().UTC()

	owner, err := domainuser.New(domainuser.CreateParams{ID: "u-owner", Name: "Olya", Email: "olya@example.com", CreatedAt: now})
	require.NoError(t, err)
	renter, err := domainuser.New(domainuser.CreateParams{ID: "u-renter", Name: "Rita", Email: "rita@example.com", CreatedAt: now})
	require.NoError(t, err)
	require.NoError(t, unit.Users().Save(ctx, owner))
	require.NoError(t, unit.Users().Save(ctx, renter))

	p, err := domainproduct.New(domainproduct.CreateParams{ID: "p-1", OwnerID: owner.ID, Title: "tent", Condition: domainproduct.ConditionGood, CreatedAt: now})
	require.NoError(t, err)
	p.ClearEvents()
	require.NoError(t, unit.Products().Save(ctx, p))
	require.NoError(t, unit.Commit(ctx))

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	create := &rentalapp.CreateRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err = create.Handle(ctx, rentalapp.CreateRentalCommand{
		CommandID: "r-1",
		ProductID: "p-1",
		OwnerID:   "u-owner",
		RenterID:  "u-renter",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 2),
	})
	require.NoError(t, err)
	return env
}

func (e testEnv) completeRental(t *testing.T) {
	t.Helper()
	complete := &rentalapp.CompleteRentalHandler{UoWFactory: e.factory, Outbox: e.outbox}
	_, err := complete.Handle(context.Background(), rentalapp.CompleteRentalCommand{RentalID: "r-1"})
	require.NoError(t, err)
}

func reviewCommand() reviewapp.CreateReviewCommand {
	return reviewapp.CreateReviewCommand{
		CommandID:  "rev-1",
		RentalID:   "r-1",
		ProductID:  "p-1",
		ReviewerID: "u-renter",
		RevieweeID: "u-owner",
		Rating:     4,
		Comment:    "solid gear",
	}
}

func TestCreateReviewOnCompletedRental(t *testing.T) {
	env := newTestEnv(t)
	env.completeRental(t)

	h := &reviewapp.CreateReviewHandler{UoWFactory: env.factory, Outbox: env.outbox}
	created, err := h.Handle(context.Background(), reviewCommand())
	require.NoError(t, err)
	assert.Equal(t, "rev-1", created.ID)
	assert.Equal(t, "p-1", created.ProductID)
	assert.Equal(t, 4, created.Rating)
}

func TestCreateReviewGateRejectsActiveRental(t *testing.T) {
	env := newTestEnv(t)

	h := &reviewapp.CreateReviewHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err := h.Handle(context.Background(), reviewCommand())
	assert.True(t, fault.IsConflict(err))
	assert.Equal(t, fault.ReasonRentalNotCompleted, fault.ConflictReason(err))
}

func TestCreateReviewDuplicateConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.completeRental(t)

	h := &reviewapp.CreateReviewHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err := h.Handle(context.Background(), reviewCommand())
	require.NoError(t, err)

	second := reviewCommand()
	second.CommandID = "rev-2"
	_, err = h.Handle(context.Background(), second)
	assert.True(t, fault.IsConflict(err))
	assert.Equal(t, fault.ReasonReviewExists, fault.ConflictReason(err))
}

func TestCreateReviewRatingValidatedBeforeStorage(t *testing.T) {
	env := newTestEnv(t)
	env.completeRental(t)

	h := &reviewapp.CreateReviewHandler{UoWFactory: env.factory, Outbox: env.outbox}
	for _, rating := range []int{0, 6, -3} {
		cmd := reviewCommand()
		cmd.Rating = rating
		_, err := h.Handle(context.Background(), cmd)
		assert.True(t, fault.IsValidation(err), "rating %d", rating)
	}
}

func TestCreateReviewMissingRental(t *testing.T) {
	env := newTestEnv(t)
	h := &reviewapp.CreateReviewHandler{UoWFactory: env.factory, Outbox: env.outbox}

	cmd := reviewCommand()
	cmd.RentalID = "r-404"
	_, err := h.Handle(context.Background(), cmd)
	assert.True(t, fault.IsNotFound(err))
	assert.Equal(t, "Rental with ID r-404 not found", err.Error())
}

// A review must cite the product its rental was for; pointing it at another
// existing product would detach it from the cascade that cleans it up.
func TestCreateReviewProductMustMatchRental(t *testing.T) {
	env := newTestEnv(t)
	env.completeRental(t)
	ctx := context.Background()

	unit, err := env.factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	other, err := domainproduct.New(domainproduct.CreateParams{ID: "p-2", OwnerID: "u-owner", Title: "stove", Condition: domainproduct.ConditionGood, CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	other.ClearEvents()
	require.NoError(t, unit.Products().Save(ctx, other))
	require.NoError(t, unit.Commit(ctx))

	h := &reviewapp.CreateReviewHandler{UoWFactory: env.factory, Outbox: env.outbox}
	cmd := reviewCommand()
	cmd.ProductID = "p-2"
	_, err = h.Handle(ctx, cmd)
	assert.True(t, fault.IsValidation(err))
}

func TestCreateReviewMissingProduct(t *testing.T) {
	env := newTestEnv(t)
	env.completeRental(t)
	h := &reviewapp.CreateReviewHandler{UoWFactory: env.factory, Outbox: env.outbox}

	cmd := reviewCommand()
	cmd.ProductID = "p-404"
	_, err := h.Handle(context.Background(), cmd)
	assert.True(t, fault.IsNotFound(err))
	assert.Equal(t, "Product with ID p-404 not found", err.Error())
}

func TestCreateReviewMissingReviewer(t *testing.T) {
	env := newTestEnv(t)
	env.completeRental(t)
	h := &reviewapp.CreateReviewHandler{UoWFactory: env.factory, Outbox: env.outbox}

	cmd := reviewCommand()
	cmd.ReviewerID = "u-ghost"
	_, err := h.Handle(context.Background(), cmd)
	assert.True(t, fault.IsNotFound(err))
	assert.Equal(t, "Reviewer with ID u-ghost not found", err.Error())
}
