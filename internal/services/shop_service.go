package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/retailrewards/retail-rewards-backend/internal/apperrors"
	"github.com/retailrewards/retail-rewards-backend/internal/models"
	"github.com/retailrewards/retail-rewards-backend/internal/repositories"
)

// Compile-time check to ensure ShopServiceImpl implements ShopService
var _ ShopService = (*ShopServiceImpl)(nil)

// ShopServiceImpl handles shop-related business logic
type ShopServiceImpl struct {
	shopRepo repositories.ShopRepository
	logger   *slog.Logger
}

// NewShopService creates a new ShopServiceImpl
func NewShopService(shopRepo repositories.ShopRepository, logger *slog.Logger) *ShopServiceImpl {
	return &ShopServiceImpl{
		shopRepo: shopRepo,
		logger:   logger,
	}
}

// GetOrCreate returns the shop with the given name, creating it when unknown.
// Names are deduplicated case-insensitively so "SPAR" and "Spar" are one shop.
func (s *ShopServiceImpl) GetOrCreate(ctx context.Context, name, address string, lat, lon *float64) (*models.Shop, error) {
	shop, err := s.shopRepo.FindByName(ctx, name)
	if err == nil {
		return shop, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to look up shop: %w", err)
	}

	shop = models.NewShop(name, address, lat, lon)
	if err := s.shopRepo.Create(ctx, shop); err != nil {
		return nil, fmt.Errorf("failed to create shop: %w", err)
	}
	s.logger.Info("registered new shop", "name", name, "geocoded", lat != nil)
	return shop, nil
}

// GetByID retrieves a shop by ID
func (s *ShopServiceImpl) GetByID(ctx context.Context, id string) (*models.Shop, error) {
	return s.shopRepo.FindByID(ctx, id)
}

// List retrieves shops with pagination, busiest first
func (s *ShopServiceImpl) List(ctx context.Context, skip, limit int64) ([]*models.Shop, int64, error) {
	shops, err := s.shopRepo.FindAll(ctx, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.shopRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return shops, total, nil
}

// MapShops retrieves shops that have resolved coordinates
func (s *ShopServiceImpl) MapShops(ctx context.Context) ([]*models.Shop, error) {
	return s.shopRepo.FindWithCoordinates(ctx, 1000)
}
