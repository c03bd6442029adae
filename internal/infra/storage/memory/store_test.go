package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "rentflow/internal/app/outbox"
	"rentflow/internal/app/uow"
	domainpayment "rentflow/internal/domain/payment"
	domainproduct "rentflow/internal/domain/product"
	domainrental "rentflow/internal/domain/rental"
	"rentflow/internal/domain/shared/fault"
	domainuser "rentflow/internal/domain/user"
)

func seedProduct(t *testing.T, factory *Factory, id string, status domainproduct.Status) {
	t.Helper()
	ctx := context.Background()
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	now := time.Now().UTC()
	p := &domainproduct.Product{
		ID:        domainproduct.ProductID(id),
		OwnerID:   domainuser.UserID("u-owner"),
		Title:     "drill",
		Condition: domainproduct.ConditionGood,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, unit.Products().Save(ctx, p))
	require.NoError(t, unit.Commit(ctx))
}

func TestCommitMakesWritesVisible(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(NewStore())
	seedProduct(t, factory, "p-1", domainproduct.StatusAvailable)

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	got, err := unit.Products().ByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, domainproduct.StatusAvailable, got.Status)
	require.NoError(t, unit.Rollback(ctx))
}

func TestRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(NewStore())
	seedProduct(t, factory, "p-1", domainproduct.StatusAvailable)

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Products().SetStatus(ctx, "p-1", domainproduct.StatusRented))
	require.NoError(t, unit.Rollback(ctx))

	unit2, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	defer unit2.Rollback(ctx)
	got, err := unit2.Products().ByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, domainproduct.StatusAvailable, got.Status)
}

func TestTransitionStatusConflictsOnStaleExpectation(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(NewStore())
	seedProduct(t, factory, "p-1", domainproduct.StatusRented)

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	defer unit.Rollback(ctx)

	err = unit.Products().TransitionStatus(ctx, "p-1", domainproduct.StatusAvailable, domainproduct.StatusRented)
	assert.ErrorIs(t, err, domainproduct.ErrStatusConflict)
}

func TestTransitionStatusMissingProduct(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(NewStore())

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	defer unit.Rollback(ctx)

	err = unit.Products().TransitionStatus(ctx, "nope", domainproduct.StatusAvailable, domainproduct.StatusRented)
	assert.True(t, fault.IsNotFound(err))
}

// Two goroutines race to flip the same product; the store lock serializes the
// units, so exactly one transition succeeds.
func TestConcurrentTransitionOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(NewStore())
	seedProduct(t, factory, "p-1", domainproduct.StatusAvailable)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unit, err := factory.Begin(ctx, uow.TxOptions{})
			if err != nil {
				results <- err
				return
			}
			err = unit.Products().TransitionStatus(ctx, "p-1", domainproduct.StatusAvailable, domainproduct.StatusRented)
			if err != nil {
				_ = unit.Rollback(ctx)
				results <- err
				return
			}
			results <- unit.Commit(ctx)
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case err == domainproduct.ErrStatusConflict:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)
}

func TestPaymentUniquePerRental(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(NewStore())

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	defer unit.Rollback(ctx)

	first := &domainpayment.Payment{ID: "pay-1", RentalID: "r-1", AmountCents: 100}
	require.NoError(t, unit.Payments().Save(ctx, first))

	second := &domainpayment.Payment{ID: "pay-2", RentalID: "r-1", AmountCents: 100}
	assert.ErrorIs(t, unit.Payments().Save(ctx, second), domainpayment.ErrDuplicate)
}

// Outbox records are staged on the open unit: a rollback drops them, so a
// later command cannot flush events from work that never committed.
func TestOutboxRecordsFollowUnitOutcome(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(NewStore())
	box := NewOutbox()

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	uctx := uow.Bind(ctx, unit)
	require.NoError(t, box.Add(uctx, appoutbox.EventRecord{ID: "evt-1", Name: "rental.created"}))
	require.NoError(t, unit.Rollback(uctx))
	assert.Empty(t, box.Records())

	unit2, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	uctx2 := uow.Bind(ctx, unit2)
	require.NoError(t, box.Add(uctx2, appoutbox.EventRecord{ID: "evt-2", Name: "rental.created"}))
	assert.Empty(t, box.Records())
	require.NoError(t, unit2.Commit(uctx2))

	records := box.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "evt-2", records[0].ID)
}

func TestListRentalsFilter(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(NewStore())

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Rentals().Save(ctx, &domainrental.Rental{ID: "r-1", ProductID: "p-1", Status: domainrental.StatusActive}))
	require.NoError(t, unit.Rentals().Save(ctx, &domainrental.Rental{ID: "r-2", ProductID: "p-2", Status: domainrental.StatusCompleted}))
	require.NoError(t, unit.Commit(ctx))

	unit2, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	defer unit2.Rollback(ctx)

	active, err := unit2.Rentals().List(ctx, domainrental.Filter{Status: domainrental.StatusActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, domainrental.RentalID("r-1"), active[0].ID)

	all, err := unit2.Rentals().List(ctx, domainrental.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
