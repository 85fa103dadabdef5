package repositories

import (
	"context"
	"time"

	"github.com/retailrewards/retail-rewards-backend/internal/models"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, id string) (*models.Customer, error)
	FindByPhone(ctx context.Context, phoneNumber string) (*models.Customer, error)
	FindAll(ctx context.Context, skip, limit int64) ([]*models.Customer, error)
	Count(ctx context.Context) (int64, error)
	UpdateLocation(ctx context.Context, phoneNumber string, lat, lon float64, at time.Time) error
	// IncrementReceiptTotals atomically adjusts totalReceipts/totalSpent.
	// Negative deltas undo an ingestion-time increment on rejection.
	IncrementReceiptTotals(ctx context.Context, id string, receipts int, amount float64) error
	// IncrementWinTotals atomically adjusts totalWins/totalWinnings.
	IncrementWinTotals(ctx context.Context, id string, wins int, winnings float64) error
	TopSpenders(ctx context.Context, limit int64) ([]*models.Customer, error)
	// SumTotals returns platform-wide lifetime spend and winnings.
	SumTotals(ctx context.Context) (spent, winnings float64, err error)
	DeleteAll(ctx context.Context) error
}

// ShopRepository defines the interface for shop data operations
type ShopRepository interface {
	Create(ctx context.Context, shop *models.Shop) error
	FindByID(ctx context.Context, id string) (*models.Shop, error)
	// FindByName matches the shop name case-insensitively.
	FindByName(ctx context.Context, name string) (*models.Shop, error)
	FindAll(ctx context.Context, skip, limit int64) ([]*models.Shop, error)
	FindWithCoordinates(ctx context.Context, limit int64) ([]*models.Shop, error)
	Count(ctx context.Context) (int64, error)
	// IncrementTotals atomically adjusts receiptCount/totalSales.
	IncrementTotals(ctx context.Context, id string, receipts int, sales float64) error
	TopBySales(ctx context.Context, limit int64) ([]*models.Shop, error)
	DeleteAll(ctx context.Context) error
}

// ReceiptRepository defines the interface for receipt data operations
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *models.Receipt) error
	FindByID(ctx context.Context, id string) (*models.Receipt, error)
	FindByCustomerPhone(ctx context.Context, phoneNumber string, skip, limit int64) ([]*models.Receipt, error)
	CountByCustomerPhone(ctx context.Context, phoneNumber string) (int64, error)
	Find(ctx context.Context, filter models.ReceiptFilter, skip, limit int64) ([]*models.Receipt, error)
	CountFiltered(ctx context.Context, filter models.ReceiptFilter) (int64, error)
	Count(ctx context.Context) (int64, error)
	// FindEligibleForDraw returns receipts created in [start, end) whose
	// status is not in excluded.
	FindEligibleForDraw(ctx context.Context, start, end time.Time, excluded []models.ReceiptStatus) ([]*models.Receipt, error)
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error)
	UpdateStatus(ctx context.Context, id string, status models.ReceiptStatus) error
	// UpdateFraudReview applies an admin review decision in one write.
	UpdateFraudReview(ctx context.Context, id string, tier models.FraudTier, status models.ReceiptStatus, reason string) error
	FindFlagged(ctx context.Context, skip, limit int64) ([]*models.Receipt, error)
	CountFlagged(ctx context.Context) (int64, error)
	CountByFraudTier(ctx context.Context, tier models.FraudTier) (int64, error)
	DistanceStatsByTier(ctx context.Context) ([]models.TierDistanceStats, error)
	FindWithUploadCoordinates(ctx context.Context, date string, limit int64) ([]*models.Receipt, error)
	SpendingByDay(ctx context.Context, days int) ([]models.DailySpending, error)
	ReceiptsByHour(ctx context.Context) ([]models.HourCount, error)
	DeleteAll(ctx context.Context) error
}

// DrawRepository defines the interface for draw data operations
type DrawRepository interface {
	// EnsureIndexes creates the partial unique index on
	// (drawDate, status=completed) that makes draw creation insert-if-absent.
	EnsureIndexes(ctx context.Context) error
	// Create inserts a draw; a duplicate completed draw for the same date
	// fails with apperrors.ErrConflict.
	Create(ctx context.Context, draw *models.Draw) error
	FindCompletedByDate(ctx context.Context, drawDate string) (*models.Draw, error)
	FindByDate(ctx context.Context, drawDate string) (*models.Draw, error)
	FindAll(ctx context.Context, skip, limit int64) ([]*models.Draw, error)
	Count(ctx context.Context) (int64, error)
	CountCompleted(ctx context.Context) (int64, error)
	FindByWinnerPhone(ctx context.Context, phoneNumber string, limit int64) ([]*models.Draw, error)
	DeleteAll(ctx context.Context) error
}

// AdminUserRepository defines the interface for admin account operations
type AdminUserRepository interface {
	Create(ctx context.Context, adminUser *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}
