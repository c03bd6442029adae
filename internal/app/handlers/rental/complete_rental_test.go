package rental_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rentalapp "rentflow/internal/app/handlers/rental"
	"rentflow/internal/domain/shared/fault"
)

func TestCompleteRental(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	create := &rentalapp.CreateRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err := create.Handle(ctx, createCommand())
	require.NoError(t, err)

	complete := &rentalapp.CompleteRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}
	snap, err := complete.Handle(ctx, rentalapp.CompleteRentalCommand{RentalID: "r-1"})
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", snap.Status)
}

func TestCompleteRentalTwiceConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	create := &rentalapp.CreateRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err := create.Handle(ctx, createCommand())
	require.NoError(t, err)

	complete := &rentalapp.CompleteRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err = complete.Handle(ctx, rentalapp.CompleteRentalCommand{RentalID: "r-1"})
	require.NoError(t, err)

	_, err = complete.Handle(ctx, rentalapp.CompleteRentalCommand{RentalID: "r-1"})
	assert.True(t, fault.IsConflict(err))
	assert.Equal(t, fault.ReasonRentalNotActive, fault.ConflictReason(err))
}

func TestCompleteRentalMissing(t *testing.T) {
	env := newTestEnv(t)
	complete := &rentalapp.CompleteRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err := complete.Handle(context.Background(), rentalapp.CompleteRentalCommand{RentalID: "r-404"})
	assert.True(t, fault.IsNotFound(err))
}

func TestListRentalsByStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	create := &rentalapp.CreateRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err := create.Handle(ctx, createCommand())
	require.NoError(t, err)

	list := &rentalapp.ListRentalsHandler{UoWFactory: env.factory}
	active, err := list.Handle(ctx, rentalapp.ListRentalsQuery{Status: "ACTIVE"})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "r-1", active[0].ID)

	completed, err := list.Handle(ctx, rentalapp.ListRentalsQuery{Status: "COMPLETED"})
	require.NoError(t, err)
	assert.Empty(t, completed)
}

func TestListRentalsUnknownOwner(t *testing.T) {
	env := newTestEnv(t)
	list := &rentalapp.ListRentalsHandler{UoWFactory: env.factory}
	_, err := list.Handle(context.Background(), rentalapp.ListRentalsQuery{OwnerID: "u-ghost"})
	assert.True(t, fault.IsNotFound(err))
	assert.Equal(t, "Owner with ID u-ghost not found", err.Error())
}
