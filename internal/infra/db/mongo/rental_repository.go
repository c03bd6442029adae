package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproduct "rentflow/internal/domain/product"
	domainrental "rentflow/internal/domain/rental"
	"rentflow/internal/domain/shared/fault"
	domainuser "rentflow/internal/domain/user"
)

type RentalRepository struct {
	col *mongo.Collection
}

func NewRentalRepository(db *mongo.Database) *RentalRepository {
	return &RentalRepository{col: db.Collection("rentals")}
}

func (r *RentalRepository) ByID(ctx context.Context, id domainrental.RentalID) (*domainrental.Rental, error) {
	var doc rentalDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fault.NotFound("Rental", string(id))
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *RentalRepository) Save(ctx context.Context, rent *domainrental.Rental) error {
	doc := newRentalDocument(rent)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

func (r *RentalRepository) Delete(ctx context.Context, id domainrental.RentalID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	return err
}

func (r *RentalRepository) DeleteByProduct(ctx context.Context, productID domainproduct.ProductID) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"product_id": string(productID)})
	return err
}

func (r *RentalRepository) List(ctx context.Context, filter domainrental.Filter) ([]*domainrental.Rental, error) {
	query := bson.M{}
	if filter.ProductID != "" {
		query["product_id"] = string(filter.ProductID)
	}
	if filter.OwnerID != "" {
		query["owner_id"] = string(filter.OwnerID)
	}
	if filter.RenterID != "" {
		query["renter_id"] = string(filter.RenterID)
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	cur, err := r.col.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domainrental.Rental
	for cur.Next(ctx) {
		var doc rentalDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type rentalDocument struct {
	ID              string `bson:"_id"`
	ProductID       string `bson:"product_id"`
	OwnerID         string `bson:"owner_id"`
	RenterID        string `bson:"renter_id"`
	StartDate       int64  `bson:"start_date"`
	EndDate         int64  `bson:"end_date"`
	TotalPriceCents int64  `bson:"total_price_cents"`
	Status          string `bson:"status"`
	CreatedAt       int64  `bson:"created_at"`
	UpdatedAt       int64  `bson:"updated_at"`
}

func newRentalDocument(r *domainrental.Rental) rentalDocument {
	return rentalDocument{
		ID:              string(r.ID),
		ProductID:       string(r.ProductID),
		OwnerID:         string(r.OwnerID),
		RenterID:        string(r.RenterID),
		StartDate:       r.StartDate.UnixMilli(),
		EndDate:         r.EndDate.UnixMilli(),
		TotalPriceCents: r.TotalPriceCents,
		Status:          string(r.Status),
		CreatedAt:       r.CreatedAt.UnixMilli(),
		UpdatedAt:       r.UpdatedAt.UnixMilli(),
	}
}

func (d rentalDocument) toAggregate() *domainrental.Rental {
	return &domainrental.Rental{
		ID:              domainrental.RentalID(d.ID),
		ProductID:       domainproduct.ProductID(d.ProductID),
		OwnerID:         domainuser.UserID(d.OwnerID),
		RenterID:        domainuser.UserID(d.RenterID),
		StartDate:       timestampToTime(d.StartDate),
		EndDate:         timestampToTime(d.EndDate),
		TotalPriceCents: d.TotalPriceCents,
		Status:          domainrental.Status(d.Status),
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
	}
}
