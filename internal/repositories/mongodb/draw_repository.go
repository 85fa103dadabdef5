package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/retailrewards/retail-rewards-backend/internal/apperrors"
	"github.com/retailrewards/retail-rewards-backend/internal/models"
	"github.com/retailrewards/retail-rewards-backend/internal/repositories"
)

// DrawRepository implements the repositories.DrawRepository interface
type DrawRepository struct {
	collection *mongo.Collection
}

// NewDrawRepository creates a new DrawRepository
func NewDrawRepository(db *mongo.Database) repositories.DrawRepository {
	return &DrawRepository{
		collection: db.Collection("draws"),
	}
}

// EnsureIndexes creates the partial unique index that allows at most one
// completed draw per date. Concurrent draw runs for the same date race on the
// insert; the loser gets a duplicate key error.
func (r *DrawRepository) EnsureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys: bson.D{{Key: "drawDate", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": models.DrawStatusCompleted}),
	}
	_, err := r.collection.Indexes().CreateOne(ctx, model)
	return err
}

// Create inserts a draw. A second completed draw for the same date violates
// the partial unique index and is reported as ErrConflict.
func (r *DrawRepository) Create(ctx context.Context, draw *models.Draw) error {
	_, err := r.collection.InsertOne(ctx, draw)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrConflict
		}
		return err
	}
	return nil
}

// FindCompletedByDate finds the completed draw for a date
func (r *DrawRepository) FindCompletedByDate(ctx context.Context, drawDate string) (*models.Draw, error) {
	var draw models.Draw
	err := r.collection.FindOne(ctx, bson.M{
		"drawDate": drawDate,
		"status":   models.DrawStatusCompleted,
	}).Decode(&draw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &draw, nil
}

// FindByDate finds any draw record for a date
func (r *DrawRepository) FindByDate(ctx context.Context, drawDate string) (*models.Draw, error) {
	var draw models.Draw
	err := r.collection.FindOne(ctx, bson.M{"drawDate": drawDate}).Decode(&draw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &draw, nil
}

// FindAll finds all draws with pagination, newest date first
func (r *DrawRepository) FindAll(ctx context.Context, skip, limit int64) ([]*models.Draw, error) {
	opts := options.Find().
		SetSort(bson.M{"drawDate": -1}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var draws []*models.Draw
	if err := cursor.All(ctx, &draws); err != nil {
		return nil, err
	}
	if draws == nil {
		draws = []*models.Draw{}
	}
	return draws, nil
}

// Count counts all draws
func (r *DrawRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// CountCompleted counts completed draws
func (r *DrawRepository) CountCompleted(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"status": models.DrawStatusCompleted})
}

// FindByWinnerPhone finds draws won by a customer, newest date first
func (r *DrawRepository) FindByWinnerPhone(ctx context.Context, phoneNumber string, limit int64) ([]*models.Draw, error) {
	opts := options.Find().
		SetSort(bson.M{"drawDate": -1}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"winnerCustomerPhone": phoneNumber}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var draws []*models.Draw
	if err := cursor.All(ctx, &draws); err != nil {
		return nil, err
	}
	if draws == nil {
		draws = []*models.Draw{}
	}
	return draws, nil
}

// DeleteAll removes every draw document
func (r *DrawRepository) DeleteAll(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{})
	return err
}
