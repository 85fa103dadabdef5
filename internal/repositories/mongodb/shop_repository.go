package mongodb

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/retailrewards/retail-rewards-backend/internal/apperrors"
	"github.com/retailrewards/retail-rewards-backend/internal/models"
	"github.com/retailrewards/retail-rewards-backend/internal/repositories"
)

// ShopRepository implements the repositories.ShopRepository interface
type ShopRepository struct {
	collection *mongo.Collection
}

// NewShopRepository creates a new ShopRepository
func NewShopRepository(db *mongo.Database) repositories.ShopRepository {
	return &ShopRepository{
		collection: db.Collection("shops"),
	}
}

// Create creates a new shop
func (r *ShopRepository) Create(ctx context.Context, shop *models.Shop) error {
	_, err := r.collection.InsertOne(ctx, shop)
	return err
}

// FindByID finds a shop by ID
func (r *ShopRepository) FindByID(ctx context.Context, id string) (*models.Shop, error) {
	var shop models.Shop
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&shop)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &shop, nil
}

// FindByName finds a shop by exact name, case-insensitively
func (r *ShopRepository) FindByName(ctx context.Context, name string) (*models.Shop, error) {
	filter := bson.M{"name": primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(name) + "$",
		Options: "i",
	}}

	var shop models.Shop
	err := r.collection.FindOne(ctx, filter).Decode(&shop)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &shop, nil
}

// FindAll finds all shops with pagination, busiest first
func (r *ShopRepository) FindAll(ctx context.Context, skip, limit int64) ([]*models.Shop, error) {
	opts := options.Find().
		SetSort(bson.M{"receiptCount": -1}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var shops []*models.Shop
	if err := cursor.All(ctx, &shops); err != nil {
		return nil, err
	}
	if shops == nil {
		shops = []*models.Shop{}
	}
	return shops, nil
}

// FindWithCoordinates finds shops that have a resolved location
func (r *ShopRepository) FindWithCoordinates(ctx context.Context, limit int64) ([]*models.Shop, error) {
	filter := bson.M{
		"latitude":  bson.M{"$ne": nil},
		"longitude": bson.M{"$ne": nil},
	}
	opts := options.Find().SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var shops []*models.Shop
	if err := cursor.All(ctx, &shops); err != nil {
		return nil, err
	}
	if shops == nil {
		shops = []*models.Shop{}
	}
	return shops, nil
}

// Count counts all shops
func (r *ShopRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// IncrementTotals atomically adjusts a shop's receipt aggregates
func (r *ShopRepository) IncrementTotals(ctx context.Context, id string, receipts int, sales float64) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$inc": bson.M{
			"receiptCount": receipts,
			"totalSales":   sales,
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// TopBySales returns shops ordered by lifetime sales
func (r *ShopRepository) TopBySales(ctx context.Context, limit int64) ([]*models.Shop, error) {
	opts := options.Find().
		SetSort(bson.M{"totalSales": -1}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var shops []*models.Shop
	if err := cursor.All(ctx, &shops); err != nil {
		return nil, err
	}
	if shops == nil {
		shops = []*models.Shop{}
	}
	return shops, nil
}

// DeleteAll removes every shop document
func (r *ShopRepository) DeleteAll(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{})
	return err
}
