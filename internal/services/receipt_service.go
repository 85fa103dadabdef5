package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/retailrewards/retail-rewards-backend/internal/apperrors"
	"github.com/retailrewards/retail-rewards-backend/internal/fraud"
	"github.com/retailrewards/retail-rewards-backend/internal/models"
	"github.com/retailrewards/retail-rewards-backend/internal/repositories"
	"github.com/retailrewards/retail-rewards-backend/pkg/extraction"
	"github.com/retailrewards/retail-rewards-backend/pkg/geocoding"
	"github.com/retailrewards/retail-rewards-backend/pkg/vectorstore"
)

// Extractor pulls structured fields out of a receipt image.
type Extractor interface {
	Extract(ctx context.Context, imageData, mimeType string) (*extraction.Result, error)
}

// Geocoder resolves addresses to coordinates and back. Both directions
// degrade to empty results on failure.
type Geocoder interface {
	Forward(ctx context.Context, address string) *geocoding.Location
	Reverse(ctx context.Context, lat, lon float64) string
}

// ReceiptIndexer maintains the similarity index over receipt text.
type ReceiptIndexer interface {
	Enabled() bool
	IndexReceipt(ctx context.Context, receiptID, text, shopName, customerPhone string, amount float64) error
	SearchSimilar(ctx context.Context, text string, limit int) ([]vectorstore.Match, error)
}

// Compile-time check to ensure ReceiptServiceImpl implements ReceiptService
var _ ReceiptService = (*ReceiptServiceImpl)(nil)

// ReceiptServiceImpl handles receipt ingestion and queries
type ReceiptServiceImpl struct {
	receiptRepo     repositories.ReceiptRepository
	customerRepo    repositories.CustomerRepository
	shopRepo        repositories.ShopRepository
	customerService CustomerService
	shopService     ShopService
	extractor       Extractor
	geocoder        Geocoder
	indexer         ReceiptIndexer
	assessor        *fraud.Assessor
	logger          *slog.Logger
}

// NewReceiptService creates a new ReceiptServiceImpl
func NewReceiptService(
	receiptRepo repositories.ReceiptRepository,
	customerRepo repositories.CustomerRepository,
	shopRepo repositories.ShopRepository,
	customerService CustomerService,
	shopService ShopService,
	extractor Extractor,
	geocoder Geocoder,
	indexer ReceiptIndexer,
	assessor *fraud.Assessor,
	logger *slog.Logger,
) *ReceiptServiceImpl {
	return &ReceiptServiceImpl{
		receiptRepo:     receiptRepo,
		customerRepo:    customerRepo,
		shopRepo:        shopRepo,
		customerService: customerService,
		shopService:     shopService,
		extractor:       extractor,
		geocoder:        geocoder,
		indexer:         indexer,
		assessor:        assessor,
		logger:          logger,
	}
}

// ProcessImage runs the full ingestion pipeline over a receipt photo. This is
// the path the WhatsApp relay calls for every incoming receipt image.
func (s *ReceiptServiceImpl) ProcessImage(ctx context.Context, req models.ProcessImageRequest) (*models.Receipt, error) {
	customer, err := s.customerService.GetOrCreate(ctx, req.PhoneNumber, "")
	if err != nil {
		return nil, err
	}

	// Extraction is best-effort. A down extractor yields an empty record
	// that lands in the review tier, never a dropped receipt.
	extracted, err := s.extractor.Extract(ctx, req.ImageData, req.MimeType)
	if err != nil {
		s.logger.Warn("receipt extraction failed", "phoneNumber", req.PhoneNumber, "error", err)
		extracted = &extraction.Result{}
	}

	receipt := models.NewReceipt(customer.ID, req.PhoneNumber)
	receipt.ImageData = req.ImageData
	receipt.Amount = extracted.Amount
	receipt.Items = toLineItems(extracted.Items)
	receipt.RawText = extracted.RawText
	receipt.ReceiptDate = extracted.Date
	receipt.Grounding = extracted.Grounding
	receipt.UploadLatitude = req.Latitude
	receipt.UploadLongitude = req.Longitude

	return s.finishIngestion(ctx, receipt, customer, extracted.ShopName, extracted.ShopAddress)
}

// Upload ingests a receipt submitted through the web form. Manual overrides
// beat parsed fields.
func (s *ReceiptServiceImpl) Upload(ctx context.Context, req models.UploadReceiptRequest) (*models.Receipt, error) {
	customer, err := s.customerService.GetOrCreate(ctx, req.PhoneNumber, "")
	if err != nil {
		return nil, err
	}

	parsed := extraction.FromText(req.ReceiptText)
	if req.ShopName != "" {
		parsed.ShopName = req.ShopName
	}
	if req.Amount != nil {
		parsed.Amount = *req.Amount
	}

	receipt := models.NewReceipt(customer.ID, req.PhoneNumber)
	receipt.ImageData = req.ImageData
	receipt.Amount = parsed.Amount
	receipt.Items = toLineItems(parsed.Items)
	receipt.RawText = req.ReceiptText
	receipt.ReceiptDate = parsed.Date
	receipt.UploadLatitude = req.Latitude
	receipt.UploadLongitude = req.Longitude

	return s.finishIngestion(ctx, receipt, customer, parsed.ShopName, parsed.ShopAddress)
}

// finishIngestion is the shared tail of both ingestion paths: geocoding,
// fraud assessment, persistence, aggregate updates and indexing.
func (s *ReceiptServiceImpl) finishIngestion(ctx context.Context, receipt *models.Receipt, customer *models.Customer, shopName, shopAddress string) (*models.Receipt, error) {
	if receipt.UploadLatitude != nil && receipt.UploadLongitude != nil {
		receipt.UploadAddress = s.geocoder.Reverse(ctx, *receipt.UploadLatitude, *receipt.UploadLongitude)
	}

	var shop *models.Shop
	if shopName != "" {
		// Shop coordinates come from the geocoder only. Upload location is
		// deliberately not a fallback: collapsing the two locations would
		// blind the distance check.
		var shopLat, shopLon *float64
		query := shopName
		if shopAddress != "" {
			query = shopName + ", " + shopAddress
		}
		if loc := s.geocoder.Forward(ctx, query); loc != nil {
			shopLat, shopLon = &loc.Latitude, &loc.Longitude
		}

		var err error
		shop, err = s.shopService.GetOrCreate(ctx, shopName, shopAddress, shopLat, shopLon)
		if err != nil {
			return nil, err
		}

		receipt.ShopID = shop.ID
		receipt.ShopName = shop.Name
		receipt.ShopLatitude = shop.Latitude
		receipt.ShopLongitude = shop.Longitude
		receipt.ShopAddress = shopAddress
		if receipt.ShopAddress == "" {
			receipt.ShopAddress = shop.Address
		}
	}

	receipt.DistanceKm = fraud.DistanceKm(
		receipt.ShopLatitude, receipt.ShopLongitude,
		receipt.UploadLatitude, receipt.UploadLongitude,
	)
	assessment := s.assessor.Assess(receipt.DistanceKm, receipt.Amount)
	receipt.FraudTier = assessment.Tier
	receipt.FraudScore = assessment.Score
	receipt.FraudReason = assessment.Reason
	receipt.Status = fraud.StatusForTier(assessment.Tier)

	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		return nil, fmt.Errorf("failed to store receipt: %w", err)
	}

	if err := s.customerRepo.IncrementReceiptTotals(ctx, customer.ID, 1, receipt.Amount); err != nil {
		s.logger.Error("failed to update customer aggregates", "customerId", customer.ID, "error", err)
	}
	if shop != nil {
		if err := s.shopRepo.IncrementTotals(ctx, shop.ID, 1, receipt.Amount); err != nil {
			s.logger.Error("failed to update shop aggregates", "shopId", shop.ID, "error", err)
		}
	}

	if s.indexer.Enabled() {
		if err := s.indexer.IndexReceipt(ctx, receipt.ID, receipt.RawText, receipt.ShopName, receipt.CustomerPhone, receipt.Amount); err != nil {
			s.logger.Warn("vector indexing failed", "receiptId", receipt.ID, "error", err)
		}
	}

	s.logger.Info("receipt ingested",
		"receiptId", receipt.ID,
		"phoneNumber", receipt.CustomerPhone,
		"shop", receipt.ShopName,
		"amount", receipt.Amount,
		"fraudTier", receipt.FraudTier,
		"status", receipt.Status,
	)
	return receipt, nil
}

// GetByID retrieves a receipt by ID
func (s *ReceiptServiceImpl) GetByID(ctx context.Context, id string) (*models.Receipt, error) {
	return s.receiptRepo.FindByID(ctx, id)
}

// ListByCustomer retrieves a customer's receipts, newest first
func (s *ReceiptServiceImpl) ListByCustomer(ctx context.Context, phoneNumber string, skip, limit int64) ([]*models.Receipt, int64, error) {
	receipts, err := s.receiptRepo.FindByCustomerPhone(ctx, phoneNumber, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.receiptRepo.CountByCustomerPhone(ctx, phoneNumber)
	if err != nil {
		return nil, 0, err
	}
	return receipts, total, nil
}

// List retrieves receipts matching the filter, newest first
func (s *ReceiptServiceImpl) List(ctx context.Context, filter models.ReceiptFilter, skip, limit int64) ([]*models.Receipt, int64, error) {
	receipts, err := s.receiptRepo.Find(ctx, filter, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.receiptRepo.CountFiltered(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return receipts, total, nil
}

// MapReceipts retrieves receipts with upload coordinates for map display
func (s *ReceiptServiceImpl) MapReceipts(ctx context.Context, date string) ([]*models.Receipt, error) {
	return s.receiptRepo.FindWithUploadCoordinates(ctx, date, 1000)
}

// Search retrieves receipts whose text is similar to the query, most similar
// first. Returns an empty result when indexing is switched off.
func (s *ReceiptServiceImpl) Search(ctx context.Context, query string, limit int) ([]ReceiptMatch, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	matches, err := s.indexer.SearchSimilar(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	results := make([]ReceiptMatch, 0, len(matches))
	for _, m := range matches {
		receipt, err := s.receiptRepo.FindByID(ctx, m.ReceiptID)
		if err != nil {
			// Index entries can outlive their receipts after a reseed.
			if apperrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		results = append(results, ReceiptMatch{Receipt: receipt, Score: m.Score})
	}
	return results, nil
}

func toLineItems(items []extraction.Item) []models.LineItem {
	out := make([]models.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, models.LineItem{
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}
	return out
}
