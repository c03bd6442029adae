package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentflow/internal/app/uow"
	domainpayment "rentflow/internal/domain/payment"
	domainproduct "rentflow/internal/domain/product"
	domainrental "rentflow/internal/domain/rental"
	domainreview "rentflow/internal/domain/review"
	domainuser "rentflow/internal/domain/user"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo sessions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	UsersRepo    domainuser.Repository
	ProductsRepo domainproduct.Repository
	RentalsRepo  domainrental.Repository
	PaymentsRepo domainpayment.Repository
	ReviewsRepo  domainreview.Repository
}

func NewFactory(db *mongo.Database) *Factory {
	return &Factory{
		DB:           db,
		UsersRepo:    NewUserRepository(db),
		ProductsRepo: NewProductRepository(db),
		RentalsRepo:  NewRentalRepository(db),
		PaymentsRepo: NewPaymentRepository(db),
		ReviewsRepo:  NewReviewRepository(db),
	}
}

// Begin starts a MongoDB session/transaction.
func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:  session,
		users:    f.UsersRepo,
		products: f.ProductsRepo,
		rentals:  f.RentalsRepo,
		payments: f.PaymentsRepo,
		reviews:  f.ReviewsRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

	users    domainuser.Repository
	products domainproduct.Repository
	rentals  domainrental.Repository
	payments domainpayment.Repository
	reviews  domainreview.Repository
}

func (u *Unit) Users() domainuser.Repository       { return u.users }
func (u *Unit) Products() domainproduct.Repository { return u.products }
func (u *Unit) Rentals() domainrental.Repository   { return u.rentals }
func (u *Unit) Payments() domainpayment.Repository { return u.payments }
func (u *Unit) Reviews() domainreview.Repository   { return u.reviews }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the Mongo session visible to downstream repository
// calls, so their reads and writes join the transaction.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.UoWFactory = (*Factory)(nil)
var _ uow.UnitOfWork = (*Unit)(nil)
