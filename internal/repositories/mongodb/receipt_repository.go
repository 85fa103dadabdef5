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

// ReceiptRepository implements the repositories.ReceiptRepository interface
type ReceiptRepository struct {
	collection *mongo.Collection
}

// NewReceiptRepository creates a new ReceiptRepository
func NewReceiptRepository(db *mongo.Database) repositories.ReceiptRepository {
	return &ReceiptRepository{
		collection: db.Collection("receipts"),
	}
}

// Create creates a new receipt
func (r *ReceiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	_, err := r.collection.InsertOne(ctx, receipt)
	return err
}

// FindByID finds a receipt by ID
func (r *ReceiptRepository) FindByID(ctx context.Context, id string) (*models.Receipt, error) {
	var receipt models.Receipt
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&receipt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &receipt, nil
}

// FindByCustomerPhone finds a customer's receipts, newest first
func (r *ReceiptRepository) FindByCustomerPhone(ctx context.Context, phoneNumber string, skip, limit int64) ([]*models.Receipt, error) {
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(skip).
		SetLimit(limit)

	return r.findMany(ctx, bson.M{"customerPhone": phoneNumber}, opts)
}

// CountByCustomerPhone counts a customer's receipts
func (r *ReceiptRepository) CountByCustomerPhone(ctx context.Context, phoneNumber string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"customerPhone": phoneNumber})
}

// filterQuery translates a ReceiptFilter into a Mongo filter document. A date
// filter matches the UTC creation day as a half-open interval.
func filterQuery(filter models.ReceiptFilter) (bson.M, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.FraudTier != "" {
		query["fraudTier"] = filter.FraudTier
	}
	if filter.Date != "" {
		day, err := time.Parse("2006-01-02", filter.Date)
		if err != nil {
			return nil, apperrors.InvalidArgumentf("invalid date %q, expected YYYY-MM-DD", filter.Date)
		}
		start := day.UTC()
		query["createdAt"] = bson.M{
			"$gte": start,
			"$lt":  start.AddDate(0, 0, 1),
		}
	}
	return query, nil
}

// Find finds receipts matching the filter, newest first
func (r *ReceiptRepository) Find(ctx context.Context, filter models.ReceiptFilter, skip, limit int64) ([]*models.Receipt, error) {
	query, err := filterQuery(filter)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(skip).
		SetLimit(limit)

	return r.findMany(ctx, query, opts)
}

// CountFiltered counts receipts matching the filter
func (r *ReceiptRepository) CountFiltered(ctx context.Context, filter models.ReceiptFilter) (int64, error) {
	query, err := filterQuery(filter)
	if err != nil {
		return 0, err
	}
	return r.collection.CountDocuments(ctx, query)
}

// Count counts all receipts
func (r *ReceiptRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// FindEligibleForDraw finds receipts created in [start, end) whose status is
// not in excluded
func (r *ReceiptRepository) FindEligibleForDraw(ctx context.Context, start, end time.Time, excluded []models.ReceiptStatus) ([]*models.Receipt, error) {
	filter := bson.M{
		"createdAt": bson.M{"$gte": start, "$lt": end},
	}
	if len(excluded) > 0 {
		filter["status"] = bson.M{"$nin": excluded}
	}
	return r.findMany(ctx, filter, options.Find())
}

// CountCreatedBetween counts receipts created in [start, end)
func (r *ReceiptRepository) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"createdAt": bson.M{"$gte": start, "$lt": end},
	})
}

// UpdateStatus updates a receipt's status
func (r *ReceiptRepository) UpdateStatus(ctx context.Context, id string, status models.ReceiptStatus) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateFraudReview applies an admin review decision in one write
func (r *ReceiptRepository) UpdateFraudReview(ctx context.Context, id string, tier models.FraudTier, status models.ReceiptStatus, reason string) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{
			"fraudTier":   tier,
			"status":      status,
			"fraudReason": reason,
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

// flaggedFilter matches receipts awaiting manual review.
var flaggedFilter = bson.M{
	"$or": []bson.M{
		{"fraudTier": bson.M{"$in": []models.FraudTier{models.FraudTierSuspicious, models.FraudTierFlagged}}},
		{"status": models.ReceiptStatusReview},
	},
}

// FindFlagged finds receipts awaiting manual review, newest first
func (r *ReceiptRepository) FindFlagged(ctx context.Context, skip, limit int64) ([]*models.Receipt, error) {
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(skip).
		SetLimit(limit)

	return r.findMany(ctx, flaggedFilter, opts)
}

// CountFlagged counts receipts awaiting manual review
func (r *ReceiptRepository) CountFlagged(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, flaggedFilter)
}

// CountByFraudTier counts receipts in one fraud tier
func (r *ReceiptRepository) CountByFraudTier(ctx context.Context, tier models.FraudTier) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"fraudTier": tier})
}

// DistanceStatsByTier aggregates distance statistics per fraud tier over
// receipts that have a computed distance
func (r *ReceiptRepository) DistanceStatsByTier(ctx context.Context) ([]models.TierDistanceStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"distanceKm": bson.M{"$ne": nil}}}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$fraudTier",
			"avgDistance": bson.M{"$avg": "$distanceKm"},
			"maxDistance": bson.M{"$max": "$distanceKm"},
			"count":       bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stats []models.TierDistanceStats
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []models.TierDistanceStats{}
	}
	return stats, nil
}

// FindWithUploadCoordinates finds receipts that carry an upload location,
// optionally restricted to one creation day
func (r *ReceiptRepository) FindWithUploadCoordinates(ctx context.Context, date string, limit int64) ([]*models.Receipt, error) {
	filter := bson.M{
		"uploadLatitude":  bson.M{"$ne": nil},
		"uploadLongitude": bson.M{"$ne": nil},
	}
	if date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, apperrors.InvalidArgumentf("invalid date %q, expected YYYY-MM-DD", date)
		}
		start := day.UTC()
		filter["createdAt"] = bson.M{"$gte": start, "$lt": start.AddDate(0, 0, 1)}
	}

	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetLimit(limit)

	return r.findMany(ctx, filter, opts)
}

// SpendingByDay aggregates receipt volume and spend per UTC day over the last
// N days
func (r *ReceiptRepository) SpendingByDay(ctx context.Context, days int) ([]models.DailySpending, error) {
	since := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -(days - 1))

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m-%d",
				"date":   "$createdAt",
			}},
			"total": bson.M{"$sum": "$amount"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var daily []models.DailySpending
	if err := cursor.All(ctx, &daily); err != nil {
		return nil, err
	}
	if daily == nil {
		daily = []models.DailySpending{}
	}
	return daily, nil
}

// ReceiptsByHour aggregates receipt counts by UTC hour of day
func (r *ReceiptRepository) ReceiptsByHour(ctx context.Context) ([]models.HourCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$hour": "$createdAt"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var hours []models.HourCount
	if err := cursor.All(ctx, &hours); err != nil {
		return nil, err
	}
	if hours == nil {
		hours = []models.HourCount{}
	}
	return hours, nil
}

// DeleteAll removes every receipt document
func (r *ReceiptRepository) DeleteAll(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{})
	return err
}

func (r *ReceiptRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Receipt, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var receipts []*models.Receipt
	if err := cursor.All(ctx, &receipts); err != nil {
		return nil, err
	}
	if receipts == nil {
		receipts = []*models.Receipt{}
	}
	return receipts, nil
}
