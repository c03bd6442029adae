package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproduct "rentflow/internal/domain/product"
	"rentflow/internal/domain/shared/fault"
	domainuser "rentflow/internal/domain/user"
)

type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection("products")}
}

func (r *ProductRepository) ByID(ctx context.Context, id domainproduct.ProductID) (*domainproduct.Product, error) {
	var doc productDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fault.NotFound("Product", string(id))
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ProductRepository) Save(ctx context.Context, p *domainproduct.Product) error {
	doc := newProductDocument(p)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

// TransitionStatus matches on both the id and the expected current status, so
// the check and the write happen as one server-side operation. A filter miss
// on an existing product means somebody else already moved it.
func (r *ProductRepository) TransitionStatus(ctx context.Context, id domainproduct.ProductID, from, to domainproduct.Status) error {
	filter := bson.M{"_id": string(id), "status": string(from)}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"status": string(to)}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		count, err := r.col.CountDocuments(ctx, bson.M{"_id": string(id)})
		if err != nil {
			return err
		}
		if count == 0 {
			return fault.NotFound("Product", string(id))
		}
		return domainproduct.ErrStatusConflict
	}
	return nil
}

func (r *ProductRepository) SetStatus(ctx context.Context, id domainproduct.ProductID, status domainproduct.Status) error {
	res, err := r.col.UpdateByID(ctx, string(id), bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fault.NotFound("Product", string(id))
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id domainproduct.ProductID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	return err
}

type productDocument struct {
	ID               string   `bson:"_id"`
	OwnerID          string   `bson:"owner_id"`
	Title            string   `bson:"title"`
	Description      string   `bson:"description"`
	PricePerDayCents int64    `bson:"price_per_day_cents"`
	DepositCents     int64    `bson:"deposit_cents"`
	Condition        string   `bson:"condition"`
	Location         string   `bson:"location"`
	Images           []string `bson:"images"`
	Status           string   `bson:"status"`
	CreatedAt        int64    `bson:"created_at"`
	UpdatedAt        int64    `bson:"updated_at"`
}

func newProductDocument(p *domainproduct.Product) productDocument {
	return productDocument{
		ID:               string(p.ID),
		OwnerID:          string(p.OwnerID),
		Title:            p.Title,
		Description:      p.Description,
		PricePerDayCents: p.PricePerDayCents,
		DepositCents:     p.DepositCents,
		Condition:        string(p.Condition),
		Location:         p.Location,
		Images:           p.Images,
		Status:           string(p.Status),
		CreatedAt:        p.CreatedAt.UnixMilli(),
		UpdatedAt:        p.UpdatedAt.UnixMilli(),
	}
}

func (d productDocument) toAggregate() *domainproduct.Product {
	return &domainproduct.Product{
		ID:               domainproduct.ProductID(d.ID),
		OwnerID:          domainuser.UserID(d.OwnerID),
		Title:            d.Title,
		Description:      d.Description,
		PricePerDayCents: d.PricePerDayCents,
		DepositCents:     d.DepositCents,
		Condition:        domainproduct.Condition(d.Condition),
		Location:         d.Location,
		Images:           d.Images,
		Status:           domainproduct.Status(d.Status),
		CreatedAt:        timestampToTime(d.CreatedAt),
		UpdatedAt:        timestampToTime(d.UpdatedAt),
	}
}
