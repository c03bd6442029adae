package rental_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	rentalapp "rentflow/internal/app/handlers/rental"
	"rentflow/internal/app/uow"
	domainpayment "rentflow/internal/domain/payment"
	domainproduct "rentflow/internal/domain/product"
	domainreview "rentflow/internal/domain/review"
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

	p, err := domainproduct.New(domainproduct.CreateParams{
		ID:               "p-1",
		OwnerID:          owner.ID,
		Title:            "cordless drill",
		PricePerDayCents: 1500,
		Condition:        domainproduct.ConditionGood,
		CreatedAt:        now,
	})
	require.NoError(t, err)
	p.ClearEvents()
	require.NoError(t, unit.Products().Save(ctx, p))

	require.NoError(t, unit.Commit(ctx))
	return env
}

func (e testEnv) productStatus(t *testing.T, id string) domainproduct.Status {
	t.Helper()
	ctx := context.Background()
	unit, err := e.factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	defer unit.Rollback(ctx)
	p, err := unit.Products().ByID(ctx, domainproduct.ProductID(id))
	require.NoError(t, err)
	return p.Status
}

func (e testEnv) savePayment(t *testing.T, p *domainpayment.Payment) {
	t.Helper()
	ctx := context.Background()
	unit, err := e.factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Payments().Save(ctx, p))
	require.NoError(t, unit.Commit(ctx))
}

func (e testEnv) saveReview(t *testing.T, r *domainreview.Review) {
	t.Helper()
	ctx := context.Background()
	unit, err := e.factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Reviews().Save(ctx, r))
	require.NoError(t, unit.Commit(ctx))
}

func window() (time.Time, time.Time) {
	start := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 5)
}

// scopedFactory wraps another factory with units that carry their own
// execution scope, the way a driver-session unit does. Tests use it to pin
// down that handler-managed units go through the scope injection.
type scopedFactory struct {
	inner       uow.UoWFactory
	injectCalls *int
}

func (f scopedFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	unit, err := f.inner.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	return scopedUnit{UnitOfWork: unit, injectCalls: f.injectCalls}, nil
}

type scopedUnit struct {
	uow.UnitOfWork
	injectCalls *int
}

func (u scopedUnit) InjectContext(ctx context.Context) context.Context {
	*u.injectCalls += 1
	return ctx
}

var _ uow.ContextInjector = scopedUnit{}

// Handler-managed units must honor the unit's execution scope exactly like
// the transaction middleware does, or repositories run outside it.
func TestHandlerManagedUnitInjectsScope(t *testing.T) {
	env := newTestEnv(t)
	calls := 0
	factory := scopedFactory{inner: env.factory, injectCalls: &calls}

	create := &rentalapp.CreateRentalHandler{UoWFactory: factory, Outbox: env.outbox}
	_, err := create.Handle(context.Background(), createCommand())
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestQueryHandlerInjectsScope(t *testing.T) {
	env := newTestEnv(t)
	create := &rentalapp.CreateRentalHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err := create.Handle(context.Background(), createCommand())
	require.NoError(t, err)

	calls := 0
	factory := scopedFactory{inner: env.factory, injectCalls: &calls}
	get := &rentalapp.GetRentalHandler{UoWFactory: factory}
	_, err = get.Handle(context.Background(), rentalapp.GetRentalQuery{RentalID: "r-1"})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}
