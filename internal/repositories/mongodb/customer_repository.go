package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/retailrewards/retail-rewards-backend/internal/apperrors"
	"github.com/retailrewards/retail-rewards-backend/internal/models"
	"github.com/retailrewards/retail-rewards-backend/internal/repositories"
)

// CustomerRepository implements the repositories.CustomerRepository interface
type CustomerRepository struct {
	collection *mongo.Collection
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(db *mongo.Database) repositories.CustomerRepository {
	return &CustomerRepository{
		collection: db.Collection("customers"),
	}
}

// Create creates a new customer
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	_, err := r.collection.InsertOne(ctx, customer)
	return err
}

// FindByID finds a customer by ID
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*models.Customer, error) {
	var customer models.Customer
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindByPhone finds a customer by phone number
func (r *CustomerRepository) FindByPhone(ctx context.Context, phoneNumber string) (*models.Customer, error) {
	var customer models.Customer
	err := r.collection.FindOne(ctx, bson.M{"phoneNumber": phoneNumber}).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindAll finds all customers with pagination, newest first
func (r *CustomerRepository) FindAll(ctx context.Context, skip, limit int64) ([]*models.Customer, error) {
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var customers []*models.Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []*models.Customer{}
	}
	return customers, nil
}

// Count counts all customers
func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// UpdateLocation stores the customer's last known location
func (r *CustomerRepository) UpdateLocation(ctx context.Context, phoneNumber string, lat, lon float64, at time.Time) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"phoneNumber": phoneNumber},
		bson.M{"$set": bson.M{
			"lastLatitude":      lat,
			"lastLongitude":     lon,
			"locationUpdatedAt": at,
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

// IncrementReceiptTotals atomically adjusts a customer's receipt aggregates
func (r *CustomerRepository) IncrementReceiptTotals(ctx context.Context, id string, receipts int, amount float64) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$inc": bson.M{
			"totalReceipts": receipts,
			"totalSpent":    amount,
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

// IncrementWinTotals atomically adjusts a customer's win aggregates
func (r *CustomerRepository) IncrementWinTotals(ctx context.Context, id string, wins int, winnings float64) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$inc": bson.M{
			"totalWins":     wins,
			"totalWinnings": winnings,
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

// TopSpenders returns customers ordered by lifetime spend
func (r *CustomerRepository) TopSpenders(ctx context.Context, limit int64) ([]*models.Customer, error) {
	opts := options.Find().
		SetSort(bson.M{"totalSpent": -1}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var customers []*models.Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []*models.Customer{}
	}
	return customers, nil
}

// SumTotals returns platform-wide lifetime spend and winnings
func (r *CustomerRepository) SumTotals(ctx context.Context) (float64, float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"totalSpent":    bson.M{"$sum": "$totalSpent"},
			"totalWinnings": bson.M{"$sum": "$totalWinnings"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		TotalSpent    float64 `bson:"totalSpent"`
		TotalWinnings float64 `bson:"totalWinnings"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	return results[0].TotalSpent, results[0].TotalWinnings, nil
}

// DeleteAll removes every customer document
func (r *CustomerRepository) DeleteAll(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{})
	return err
}
