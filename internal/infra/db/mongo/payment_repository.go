package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainpayment "rentflow/internal/domain/payment"
	domainrental "rentflow/internal/domain/rental"
	"rentflow/internal/domain/shared/fault"
	domainuser "rentflow/internal/domain/user"
)

type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{col: db.Collection("payments")}
}

func (r *PaymentRepository) ByRental(ctx context.Context, rentalID domainrental.RentalID) (*domainpayment.Payment, error) {
	var doc paymentDocument
	if err := r.col.FindOne(ctx, bson.M{"rental_id": string(rentalID)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fault.NotFound("Payment", string(rentalID))
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save inserts, never upserts: the unique rental_id index is what holds the
// one-payment-per-rental invariant under concurrency.
func (r *PaymentRepository) Save(ctx context.Context, p *domainpayment.Payment) error {
	_, err := r.col.InsertOne(ctx, newPaymentDocument(p))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainpayment.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *PaymentRepository) DeleteByRental(ctx context.Context, rentalID domainrental.RentalID) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"rental_id": string(rentalID)})
	return err
}

type paymentDocument struct {
	ID            string `bson:"_id"`
	RentalID      string `bson:"rental_id"`
	UserID        string `bson:"user_id"`
	AmountCents   int64  `bson:"amount_cents"`
	Method        string `bson:"method"`
	Status        string `bson:"status"`
	TransactionID string `bson:"transaction_id"`
	CreatedAt     int64  `bson:"created_at"`
}

func newPaymentDocument(p *domainpayment.Payment) paymentDocument {
	return paymentDocument{
		ID:            string(p.ID),
		RentalID:      string(p.RentalID),
		UserID:        string(p.UserID),
		AmountCents:   p.AmountCents,
		Method:        string(p.Method),
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt.UnixMilli(),
	}
}

func (d paymentDocument) toAggregate() *domainpayment.Payment {
	return &domainpayment.Payment{
		ID:            domainpayment.PaymentID(d.ID),
		RentalID:      domainrental.RentalID(d.RentalID),
		UserID:        domainuser.UserID(d.UserID),
		AmountCents:   d.AmountCents,
		Method:        domainpayment.Method(d.Method),
		Status:        domainpayment.Status(d.Status),
		TransactionID: d.TransactionID,
		CreatedAt:     timestampToTime(d.CreatedAt),
	}
}
