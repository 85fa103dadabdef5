package services

import (
	"context"

	"github.com/retailrewards/retail-rewards-backend/internal/models"
	"github.com/retailrewards/retail-rewards-backend/internal/repositories"
)

// Compile-time check to ensure AnalyticsServiceImpl implements AnalyticsService
var _ AnalyticsService = (*AnalyticsServiceImpl)(nil)

// AnalyticsServiceImpl computes dashboard statistics
type AnalyticsServiceImpl struct {
	customerRepo repositories.CustomerRepository
	receiptRepo  repositories.ReceiptRepository
	shopRepo     repositories.ShopRepository
	drawRepo     repositories.DrawRepository
}

// NewAnalyticsService creates a new AnalyticsServiceImpl
func NewAnalyticsService(
	customerRepo repositories.CustomerRepository,
	receiptRepo repositories.ReceiptRepository,
	shopRepo repositories.ShopRepository,
	drawRepo repositories.DrawRepository,
) *AnalyticsServiceImpl {
	return &AnalyticsServiceImpl{
		customerRepo: customerRepo,
		receiptRepo:  receiptRepo,
		shopRepo:     shopRepo,
		drawRepo:     drawRepo,
	}
}

// Overview returns whole-platform counters
func (s *AnalyticsServiceImpl) Overview(ctx context.Context) (*models.PlatformOverview, error) {
	overview := &models.PlatformOverview{}

	var err error
	if overview.TotalCustomers, err = s.customerRepo.Count(ctx); err != nil {
		return nil, err
	}
	if overview.TotalReceipts, err = s.receiptRepo.Count(ctx); err != nil {
		return nil, err
	}
	if overview.TotalShops, err = s.shopRepo.Count(ctx); err != nil {
		return nil, err
	}
	if overview.TotalDraws, err = s.drawRepo.CountCompleted(ctx); err != nil {
		return nil, err
	}
	if overview.TotalSpent, overview.TotalWinnings, err = s.customerRepo.SumTotals(ctx); err != nil {
		return nil, err
	}

	return overview, nil
}

// SpendingByDay returns daily receipt volume and spend for the last N days
func (s *AnalyticsServiceImpl) SpendingByDay(ctx context.Context, days int) ([]models.DailySpending, error) {
	if days <= 0 {
		days = 30
	}
	return s.receiptRepo.SpendingByDay(ctx, days)
}

// PopularShops returns the busiest shops by receipt count
func (s *AnalyticsServiceImpl) PopularShops(ctx context.Context, limit int64) ([]*models.Shop, error) {
	return s.shopRepo.FindAll(ctx, 0, limit)
}

// TopSpenders returns the highest-spending customers
func (s *AnalyticsServiceImpl) TopSpenders(ctx context.Context, limit int64) ([]*models.Customer, error) {
	return s.customerRepo.TopSpenders(ctx, limit)
}

// ReceiptsByHour returns receipt counts for every hour of the day, with
// quiet hours zero-filled
func (s *AnalyticsServiceImpl) ReceiptsByHour(ctx context.Context) ([]models.HourCount, error) {
	counts, err := s.receiptRepo.ReceiptsByHour(ctx)
	if err != nil {
		return nil, err
	}

	byHour := make(map[int]int64, len(counts))
	for _, c := range counts {
		byHour[c.Hour] = c.Count
	}

	filled := make([]models.HourCount, 24)
	for h := 0; h < 24; h++ {
		filled[h] = models.HourCount{Hour: h, Count: byHour[h]}
	}
	return filled, nil
}

// SpendingByShop returns shops ordered by lifetime sales
func (s *AnalyticsServiceImpl) SpendingByShop(ctx context.Context, limit int64) ([]*models.Shop, error) {
	return s.shopRepo.TopBySales(ctx, limit)
}
