package rental_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rentalapp "rentflow/internal/app/handlers/rental"
	domainpayment "rentflow/internal/domain/payment"
	domainproduct "rentflow/internal/domain/product"
	domainreview "rentflow/internal/domain/review"
	"rentflow/internal/domain/shared/fault"
)

func TestRemoveRentalCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	create := &rentalapp.CreateRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err := create.Handle(ctx, createCommand())
	require.NoError(t, err)

	complete := &rentalapp.CompleteRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err = complete.Handle(ctx, rentalapp.CompleteRentalCommand{RentalID: "r-1"})
	require.NoError(t, err)

	env.savePayment(t, &domainpayment.Payment{ID: "pay-1", RentalID: "r-1", UserID: "u-renter", AmountCents: 7500, Method: domainpayment.MethodCard, Status: domainpayment.StatusCompleted, CreatedAt: time.Now().UTC()})
	env.saveReview(t, &domainreview.Review{ID: "rev-1", RentalID: "r-1", ProductID: "p-1", ReviewerID: "u-renter", RevieweeID: "u-owner", Rating: 5, CreatedAt: time.Now().UTC()})

	remove := &rentalapp.RemoveRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}
	snap, err := remove.Handle(ctx, rentalapp.RemoveRentalCommand{RentalID: "r-1"})
	require.NoError(t, err)

	// The snapshot shows the record as it stood before deletion.
	require.NotNil(t, snap.Payment)
	require.NotNil(t, snap.Review)

	// Rental gone, dependents gone, product rentable again.
	q := &rentalapp.GetRentalHandler{UoWFactory: env.factory}
	_, err = q.Handle(ctx, rentalapp.GetRentalQuery{RentalID: "r-1"})
	assert.True(t, fault.IsNotFound(err))
	assert.Equal(t, domainproduct.StatusAvailable, env.productStatus(t, "p-1"))
}

func TestRemoveRentalWithoutDependents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	create := &rentalapp.CreateRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err := create.Handle(ctx, createCommand())
	require.NoError(t, err)

	remove := &rentalapp.RemoveRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}
	snap, err := remove.Handle(ctx, rentalapp.RemoveRentalCommand{RentalID: "r-1"})
	require.NoError(t, err)
	assert.Nil(t, snap.Payment)
	assert.Nil(t, snap.Review)
	assert.Equal(t, domainproduct.StatusAvailable, env.productStatus(t, "p-1"))
}

func TestRemoveRentalMissing(t *testing.T) {
	env := newTestEnv(t)
	remove := &rentalapp.RemoveRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err := remove.Handle(context.Background(), rentalapp.RemoveRentalCommand{RentalID: "r-404"})
	assert.True(t, fault.IsNotFound(err))
	assert.Equal(t, "Rental with ID r-404 not found", err.Error())
}
