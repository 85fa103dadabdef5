package services

import (
	"context"

	"github.com/retailrewards/retail-rewards-backend/internal/fraud"
	"github.com/retailrewards/retail-rewards-backend/internal/models"
)

// CustomerService defines the interface for customer-related operations
type CustomerService interface {
	// GetOrCreate returns the customer with the given phone number, creating
	// one on first contact.
	GetOrCreate(ctx context.Context, phoneNumber, name string) (*models.Customer, error)

	// GetByPhone retrieves a customer by phone number
	GetByPhone(ctx context.Context, phoneNumber string) (*models.Customer, error)

	// List retrieves customers with pagination
	List(ctx context.Context, skip, limit int64) ([]*models.Customer, int64, error)

	// UpdateLocation stores a customer's last known location
	UpdateLocation(ctx context.Context, req models.UpdateLocationRequest) error
}

// ShopService defines the interface for shop-related operations
type ShopService interface {
	// GetOrCreate returns the shop with the given name (case-insensitive),
	// creating one when unknown. Coordinates are only ever sourced from the
	// geocoder, never from a customer's upload location.
	GetOrCreate(ctx context.Context, name, address string, lat, lon *float64) (*models.Shop, error)

	// GetByID retrieves a shop by ID
	GetByID(ctx context.Context, id string) (*models.Shop, error)

	// List retrieves shops with pagination, busiest first
	List(ctx context.Context, skip, limit int64) ([]*models.Shop, int64, error)

	// MapShops retrieves shops that have resolved coordinates
	MapShops(ctx context.Context) ([]*models.Shop, error)
}

// ReceiptService defines the interface for receipt ingestion and queries
type ReceiptService interface {
	// ProcessImage runs the full ingestion pipeline over a receipt photo:
	// extraction, geocoding, fraud assessment, persistence and indexing.
	ProcessImage(ctx context.Context, req models.ProcessImageRequest) (*models.Receipt, error)

	// Upload ingests a receipt submitted through the web form, with optional
	// raw text and manual field overrides.
	Upload(ctx context.Context, req models.UploadReceiptRequest) (*models.Receipt, error)

	// GetByID retrieves a receipt by ID
	GetByID(ctx context.Context, id string) (*models.Receipt, error)

	// ListByCustomer retrieves a customer's receipts, newest first
	ListByCustomer(ctx context.Context, phoneNumber string, skip, limit int64) ([]*models.Receipt, int64, error)

	// List retrieves receipts matching the filter, newest first
	List(ctx context.Context, filter models.ReceiptFilter, skip, limit int64) ([]*models.Receipt, int64, error)

	// MapReceipts retrieves receipts with upload coordinates for map display
	MapReceipts(ctx context.Context, date string) ([]*models.Receipt, error)

	// Search retrieves receipts similar to the query text via the vector
	// index, most similar first
	Search(ctx context.Context, query string, limit int) ([]ReceiptMatch, error)
}

// ReceiptMatch pairs a receipt with its similarity score.
type ReceiptMatch struct {
	Receipt *models.Receipt `json:"receipt"`
	Score   float64         `json:"score"`
}

// DrawService defines the interface for the daily draw engine
type DrawService interface {
	// RunDraw runs the draw for the given date (YYYY-MM-DD). Running it
	// again for the same date is a no-op that reports the existing draw.
	RunDraw(ctx context.Context, drawDate string) (*models.DrawResult, error)

	// List retrieves draw history with pagination, newest date first
	List(ctx context.Context, skip, limit int64) ([]*models.Draw, int64, error)

	// GetByDate retrieves the draw record for a date
	GetByDate(ctx context.Context, drawDate string) (*models.Draw, error)

	// WinsByPhone retrieves the draws a customer has won
	WinsByPhone(ctx context.Context, phoneNumber string) ([]*models.Draw, error)
}

// ReviewDecision is the admin's verdict on a held receipt.
type ReviewDecision struct {
	Action string // "approve" or "reject"
	Reason string
}

// FraudService defines the interface for fraud review and statistics
type FraudService interface {
	// Flagged retrieves receipts held for manual review, newest first
	Flagged(ctx context.Context, skip, limit int64) ([]*models.Receipt, int64, error)

	// Stats computes fraud classification statistics across all receipts
	Stats(ctx context.Context) (*models.FraudStats, error)

	// Review applies an admin decision to a held receipt. Rejection rolls
	// back the customer aggregates recorded at ingestion.
	Review(ctx context.Context, receiptID string, decision ReviewDecision) (*models.Receipt, error)

	// Thresholds returns the active distance thresholds
	Thresholds() fraud.Thresholds
}

// AnalyticsService defines the interface for dashboard statistics
type AnalyticsService interface {
	Overview(ctx context.Context) (*models.PlatformOverview, error)
	SpendingByDay(ctx context.Context, days int) ([]models.DailySpending, error)
	PopularShops(ctx context.Context, limit int64) ([]*models.Shop, error)
	TopSpenders(ctx context.Context, limit int64) ([]*models.Customer, error)
	// ReceiptsByHour returns one entry per hour 0..23, zero-filled.
	ReceiptsByHour(ctx context.Context) ([]models.HourCount, error)
	SpendingByShop(ctx context.Context, limit int64) ([]*models.Shop, error)
}

// WebhookMessage is an incoming WhatsApp message relayed to the platform.
type WebhookMessage struct {
	PhoneNumber string   `json:"phone_number" binding:"required"`
	Type        string   `json:"type"`
	Content     string   `json:"content"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	ImageData   string   `json:"image_data"`
}

// WhatsAppService defines the interface for the conversational surface
type WhatsAppService interface {
	// HandleMessage processes an incoming message and returns the reply text
	HandleMessage(ctx context.Context, msg WebhookMessage) (string, error)
}

// AuthService defines the interface for admin authentication
type AuthService interface {
	// Login authenticates an admin and returns a signed JWT
	Login(ctx context.Context, req models.LoginRequest) (string, *models.AdminUser, error)

	// Register creates a new admin account
	Register(ctx context.Context, req models.RegisterRequest) (*models.AdminUser, error)
}

// SeedSummary reports what the demo seeder created.
type SeedSummary struct {
	Customers int            `json:"customers"`
	Shops     int            `json:"shops"`
	Receipts  int            `json:"receipts"`
	ByTier    map[string]int `json:"fraud_breakdown"`
}

// SeedService defines the interface for demo data seeding
type SeedService interface {
	// Seed wipes the promotion collections and loads demo data with mixed
	// fraud scenarios
	Seed(ctx context.Context) (*SeedSummary, error)
}
