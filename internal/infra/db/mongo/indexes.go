package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the engine's invariants rely on. The
// unique rental_id indexes on payments and reviews are load-bearing: they are
// the storage-level backstop for the at-most-one-per-rental rules.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	if _, err := db.Collection("payments").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "rental_id", Value: 1}},
		Options: unique,
	}); err != nil {
		return err
	}
	if _, err := db.Collection("reviews").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "rental_id", Value: 1}},
		Options: unique,
	}); err != nil {
		return err
	}
	if _, err := db.Collection("reviews").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "product_id", Value: 1}},
	}); err != nil {
		return err
	}
	if _, err := db.Collection("rentals").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "product_id", Value: 1}},
	}); err != nil {
		return err
	}
	if _, err := db.Collection("products").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}},
	}); err != nil {
		return err
	}
	return nil
}
