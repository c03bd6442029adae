package rental_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rentalapp "rentflow/internal/app/handlers/rental"
	domainproduct "rentflow/internal/domain/product"
	"rentflow/internal/domain/shared/fault"
)

func createCommand() rentalapp.CreateRentalCommand {
	start, end := window()
	return rentalapp.CreateRentalCommand{
		CommandID:       "r-1",
		ProductID:       "p-1",
		OwnerID:         "u-owner",
		RenterID:        "u-renter",
		StartDate:       start,
		EndDate:         end,
		TotalPriceCents: 7500,
	}
}

func TestCreateRentalFlipsProductToRented(t *testing.T) {
	env := newTestEnv(t)
	h := &rentalapp.CreateRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}

	snap, err := h.Handle(context.Background(), createCommand())
	require.NoError(t, err)

	assert.Equal(t, "r-1", snap.ID)
	assert.Equal(t, "ACTIVE", snap.Status)
	require.NotNil(t, snap.Product)
	assert.Equal(t, "RENTED", snap.Product.Status)
	require.NotNil(t, snap.Owner)
	require.NotNil(t, snap.Renter)
	assert.Nil(t, snap.Payment)
	assert.Nil(t, snap.Review)

	assert.Equal(t, domainproduct.StatusRented, env.productStatus(t, "p-1"))

	records := env.outbox.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "rental.created", records[0].Name)
}

func TestCreateRentalDoubleBookConflicts(t *testing.T) {
	env := newTestEnv(t)
	h := &rentalapp.CreateRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}

	_, err := h.Handle(context.Background(), createCommand())
	require.NoError(t, err)

	second := createCommand()
	second.CommandID = "r-2"
	_, err = h.Handle(context.Background(), second)
	assert.True(t, fault.IsConflict(err))
	assert.Equal(t, fault.ReasonProductUnavailable, fault.ConflictReason(err))
}

func TestCreateRentalMissingProduct(t *testing.T) {
	env := newTestEnv(t)
	h := &rentalapp.CreateRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}

	cmd := createCommand()
	cmd.ProductID = "p-missing"
	_, err := h.Handle(context.Background(), cmd)
	assert.True(t, fault.IsNotFound(err))
	assert.Equal(t, "Product with ID p-missing not found", err.Error())
}

func TestCreateRentalMissingRenter(t *testing.T) {
	env := newTestEnv(t)
	h := &rentalapp.CreateRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}

	cmd := createCommand()
	cmd.RenterID = "u-ghost"
	_, err := h.Handle(context.Background(), cmd)
	assert.True(t, fault.IsNotFound(err))
	assert.Equal(t, "Renter with ID u-ghost not found", err.Error())
}

func TestCreateRentalOwnerMismatch(t *testing.T) {
	env := newTestEnv(t)
	h := &rentalapp.CreateRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}

	cmd := createCommand()
	cmd.OwnerID = "u-renter"
	cmd.RenterID = "u-owner"
	_, err := h.Handle(context.Background(), cmd)
	assert.True(t, fault.IsConflict(err))
	assert.Equal(t, fault.ReasonOwnerMismatch, fault.ConflictReason(err))
}

func TestCreateRentalSelfRental(t *testing.T) {
	env := newTestEnv(t)
	h := &rentalapp.CreateRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}

	cmd := createCommand()
	cmd.RenterID = "u-owner"
	_, err := h.Handle(context.Background(), cmd)
	assert.True(t, fault.IsConflict(err))
	assert.Equal(t, fault.ReasonSelfRental, fault.ConflictReason(err))
}

// Validation failures must reject the request before any write happens: a bad
// window leaves no rental row and the product stays AVAILABLE.
func TestCreateRentalInvalidWindowLeavesNoTrace(t *testing.T) {
	env := newTestEnv(t)
	h := &rentalapp.CreateRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}

	cmd := createCommand()
	cmd.EndDate = cmd.StartDate
	_, err := h.Handle(context.Background(), cmd)
	assert.True(t, fault.IsValidation(err))

	assert.Equal(t, domainproduct.StatusAvailable, env.productStatus(t, "p-1"))
	assert.Empty(t, env.outbox.Records())
}

// A failed creation must not leave a rental row behind either: the rollback
// covers the rental insert that preceded the failed status flip.
func TestCreateRentalConflictRollsBackRentalInsert(t *testing.T) {
	env := newTestEnv(t)
	h := &rentalapp.CreateRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}

	_, err := h.Handle(context.Background(), createCommand())
	require.NoError(t, err)

	second := createCommand()
	second.CommandID = "r-2"
	_, err = h.Handle(context.Background(), second)
	require.Error(t, err)

	q := &rentalapp.GetRentalHandler{UoWFactory: env.factory}
	_, err = q.Handle(context.Background(), rentalapp.GetRentalQuery{RentalID: "r-2"})
	assert.True(t, fault.IsNotFound(err))
}
