package product_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	productapp "rentflow/internal/app/handlers/product"
	rentalapp "rentflow/internal/app/handlers/rental"
	"rentflow/internal/app/uow"
	domainpayment "rentflow/internal/domain/payment"
	domainrental "rentflow/internal/domain/rental"
	domainreview "rentflow/internal/domain/review"
	"rentflow/internal/domain/shared/fault"
	domainuser "rentflow/internal/domain/user"
	"rentflow/internal/infra/storage/memory"
)

type testEnv struct {
	factory *memory.Factory
	outbox  *memory.Outbox
}

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
	require.NoError(t, unit.Commit(ctx))
	return env
}

func TestCreateProductStartsAvailable(t *testing.T) {
	env := newTestEnv(t)
	h := &productapp.CreateProductHandler{UoWFactory: env.factory, Outbox: env.outbox}

	created, err := h.Handle(context.Background(), productapp.CreateProductCommand{
		CommandID:        "p-1",
		OwnerID:          "u-owner",
		Title:            "projector",
		PricePerDayCents: 2500,
	})
	require.NoError(t, err)
	assert.Equal(t, "AVAILABLE", created.Status)
	assert.Equal(t, "GOOD", created.Condition)
}

func TestCreateProductUnknownOwner(t *testing.T) {
	env := newTestEnv(t)
	h := &productapp.CreateProductHandler{UoWFactory: env.factory, Outbox: env.outbox}

	_, err := h.Handle(context.Background(), productapp.CreateProductCommand{
		CommandID: "p-1",
		OwnerID:   "u-ghost",
		Title:     "projector",
	})
	assert.True(t, fault.IsNotFound(err))
	assert.Equal(t, "Owner with ID u-ghost not found", err.Error())
}

func TestCreateProductValidation(t *testing.T) {
	env := newTestEnv(t)
	h := &productapp.CreateProductHandler{UoWFactory: env.factory, Outbox: env.outbox}

	_, err := h.Handle(context.Background(), productapp.CreateProductCommand{
		CommandID: "p-1",
		OwnerID:   "u-owner",
		Title:     "   ",
	})
	assert.True(t, fault.IsValidation(err))
}

func TestRemoveProductCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	createProduct := &productapp.CreateProductHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err := createProduct.Handle(ctx, productapp.CreateProductCommand{
		CommandID: "p-1",
		OwnerID:   "u-owner",
		Title:     "drone",
	})
	require.NoError(t, err)

	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	createRental := &rentalapp.CreateRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err = createRental.Handle(ctx, rentalapp.CreateRentalCommand{
		CommandID: "r-1",
		ProductID: "p-1",
		OwnerID:   "u-owner",
		RenterID:  "u-renter",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 2),
	})
	require.NoError(t, err)

	// Attach a payment and a review so the cascade has leaves to clear.
	unit, err := env.factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Payments().Save(ctx, &domainpayment.Payment{ID: "pay-1", RentalID: "r-1", UserID: "u-renter", AmountCents: 100}))
	require.NoError(t, unit.Reviews().Save(ctx, &domainreview.Review{ID: "rev-1", RentalID: "r-1", ProductID: "p-1", ReviewerID: "u-renter", RevieweeID: "u-owner", Rating: 5}))
	require.NoError(t, unit.Commit(ctx))

	remove := &productapp.RemoveProductHandler{UoWFactory: env.factory, Outbox: env.outbox}
	result, err := remove.Handle(ctx, productapp.RemoveProductCommand{ProductID: "p-1"})
	require.NoError(t, err)
	assert.Equal(t, "Product and all related data deleted successfully", result.Message)

	// Nothing survives: product, rental, payment and review are all gone.
	check, err := env.factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	defer check.Rollback(ctx)

	_, err = check.Products().ByID(ctx, "p-1")
	assert.True(t, fault.IsNotFound(err))
	_, err = check.Rentals().ByID(ctx, "r-1")
	assert.True(t, fault.IsNotFound(err))
	_, err = check.Payments().ByRental(ctx, "r-1")
	assert.True(t, fault.IsNotFound(err))
	_, err = check.Reviews().ByRental(ctx, "r-1")
	assert.True(t, fault.IsNotFound(err))

	rentals, err := check.Rentals().List(ctx, domainrental.Filter{ProductID: "p-1"})
	require.NoError(t, err)
	assert.Empty(t, rentals)
}

// A review whose product reference drifted away from its rental's product
// still belongs to the rental; removing the rental's product must take it
// along instead of leaving it pointing at a deleted rental.
func TestRemoveProductClearsReviewsByRental(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	createProduct := &productapp.CreateProductHandler{UoWFactory: env.factory, Outbox: env.outbox}
	for _, id := range []string{"p-1", "p-2"} {
		_, err := createProduct.Handle(ctx, productapp.CreateProductCommand{
			CommandID: id,
			OwnerID:   "u-owner",
			Title:     "gear " + id,
		})
		require.NoError(t, err)
	}

	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	createRental := &rentalapp.CreateRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err := createRental.Handle(ctx, rentalapp.CreateRentalCommand{
		CommandID: "r-1",
		ProductID: "p-1",
		OwnerID:   "u-owner",
		RenterID:  "u-renter",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 2),
	})
	require.NoError(t, err)

	unit, err := env.factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Reviews().Save(ctx, &domainreview.Review{ID: "rev-1", RentalID: "r-1", ProductID: "p-2", ReviewerID: "u-renter", RevieweeID: "u-owner", Rating: 5}))
	require.NoError(t, unit.Commit(ctx))

	remove := &productapp.RemoveProductHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err = remove.Handle(ctx, productapp.RemoveProductCommand{ProductID: "p-1"})
	require.NoError(t, err)

	check, err := env.factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	defer check.Rollback(ctx)
	_, err = check.Reviews().ByRental(ctx, "r-1")
	assert.True(t, fault.IsNotFound(err))
	_, err = check.Products().ByID(ctx, "p-2")
	assert.NoError(t, err)
}

func TestRemoveProductMissing(t *testing.T) {
	env := newTestEnv(t)
	remove := &productapp.RemoveProductHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err := remove.Handle(context.Background(), productapp.RemoveProductCommand{ProductID: "p-404"})
	assert.True(t, fault.IsNotFound(err))
	assert.Equal(t, "Product with ID p-404 not found", err.Error())
}

func TestGetProductSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	createProduct := &productapp.CreateProductHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err := createProduct.Handle(ctx, productapp.CreateProductCommand{
		CommandID: "p-1",
		OwnerID:   "u-owner",
		Title:     "drone",
	})
	require.NoError(t, err)

	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	createRental := &rentalapp.CreateRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err = createRental.Handle(ctx, rentalapp.CreateRentalCommand{
		CommandID: "r-1",
		ProductID: "p-1",
		OwnerID:   "u-owner",
		RenterID:  "u-renter",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 2),
	})
	require.NoError(t, err)

	get := &productapp.GetProductHandler{UoWFactory: env.factory}
	snap, err := get.Handle(ctx, productapp.GetProductQuery{ProductID: "p-1"})
	require.NoError(t, err)
	assert.Equal(t, "RENTED", snap.Status)
	require.Len(t, snap.Rentals, 1)
	assert.Equal(t, "r-1", snap.Rentals[0].ID)
	assert.Empty(t, snap.Reviews)
}
