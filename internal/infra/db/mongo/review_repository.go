package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainproduct "rentflow/internal/domain/product"
	domainrental "rentflow/internal/domain/rental"
	domainreview "rentflow/internal/domain/review"
	"rentflow/internal/domain/shared/fault"
	domainuser "rentflow/internal/domain/user"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection("reviews")}
}

func (r *ReviewRepository) ByRental(ctx context.Context, rentalID domainrental.RentalID) (*domainreview.Review, error) {
	var doc reviewDocument
	if err := r.col.FindOne(ctx, bson.M{"rental_id": string(rentalID)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fault.NotFound("Review", string(rentalID))
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save inserts, never upserts: the unique rental_id index holds the
// one-review-per-rental invariant under concurrency.
func (r *ReviewRepository) Save(ctx context.Context, rev *domainreview.Review) error {
	_, err := r.col.InsertOne(ctx, newReviewDocument(rev))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainreview.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *ReviewRepository) DeleteByRental(ctx context.Context, rentalID domainrental.RentalID) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"rental_id": string(rentalID)})
	return err
}

func (r *ReviewRepository) DeleteByProduct(ctx context.Context, productID domainproduct.ProductID) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"product_id": string(productID)})
	return err
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID domainproduct.ProductID) ([]*domainreview.Review, error) {
	cur, err := r.col.Find(ctx, bson.M{"product_id": string(productID)})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domainreview.Review
	for cur.Next(ctx) {
		var doc reviewDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type reviewDocument struct {
	ID         string `bson:"_id"`
	RentalID   string `bson:"rental_id"`
	ProductID  string `bson:"product_id"`
	ReviewerID string `bson:"reviewer_id"`
	RevieweeID string `bson:"reviewee_id"`
	Rating     int    `bson:"rating"`
	Comment    string `bson:"comment"`
	CreatedAt  int64  `bson:"created_at"`
}

func newReviewDocument(r *domainreview.Review) reviewDocument {
	return reviewDocument{
		ID:         string(r.ID),
		RentalID:   string(r.RentalID),
		ProductID:  string(r.ProductID),
		ReviewerID: string(r.ReviewerID),
		RevieweeID: string(r.RevieweeID),
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt.UnixMilli(),
	}
}

func (d reviewDocument) toAggregate() *domainreview.Review {
	return &domainreview.Review{
		ID:         domainreview.ReviewID(d.ID),
		RentalID:   domainrental.RentalID(d.RentalID),
		ProductID:  domainproduct.ProductID(d.ProductID),
		ReviewerID: domainuser.UserID(d.ReviewerID),
		RevieweeID: domainuser.UserID(d.RevieweeID),
		Rating:     d.Rating,
		Comment:    d.Comment,
		CreatedAt:  timestampToTime(d.CreatedAt),
	}
}
