package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/retailrewards/retail-rewards-backend/internal/models"
	"github.com/retailrewards/retail-rewards-backend/pkg/extraction"
	"github.com/retailrewards/retail-rewards-backend/pkg/geocoding"
	"github.com/retailrewards/retail-rewards-backend/pkg/vectorstore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Repository mocks ---

type mockCustomerRepo struct {
	mock.Mock
}

func (m *mockCustomerRepo) Create(ctx context.Context, customer *models.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *mockCustomerRepo) FindByID(ctx context.Context, id string) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*models.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCustomerRepo) FindByPhone(ctx context.Context, phoneNumber string) (*models.Customer, error) {
	args := m.Called(ctx, phoneNumber)
	if c := args.Get(0); c != nil {
		return c.(*models.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCustomerRepo) FindAll(ctx context.Context, skip, limit int64) ([]*models.Customer, error) {
	args := m.Called(ctx, skip, limit)
	return args.Get(0).([]*models.Customer), args.Error(1)
}

func (m *mockCustomerRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCustomerRepo) UpdateLocation(ctx context.Context, phoneNumber string, lat, lon float64, at time.Time) error {
	return m.Called(ctx, phoneNumber, lat, lon, at).Error(0)
}

func (m *mockCustomerRepo) IncrementReceiptTotals(ctx context.Context, id string, receipts int, amount float64) error {
	return m.Called(ctx, id, receipts, amount).Error(0)
}

func (m *mockCustomerRepo) IncrementWinTotals(ctx context.Context, id string, wins int, winnings float64) error {
	return m.Called(ctx, id, wins, winnings).Error(0)
}

func (m *mockCustomerRepo) TopSpenders(ctx context.Context, limit int64) ([]*models.Customer, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*models.Customer), args.Error(1)
}

func (m *mockCustomerRepo) SumTotals(ctx context.Context) (float64, float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Get(1).(float64), args.Error(2)
}

func (m *mockCustomerRepo) DeleteAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockShopRepo struct {
	mock.Mock
}

func (m *mockShopRepo) Create(ctx context.Context, shop *models.Shop) error {
	return m.Called(ctx, shop).Error(0)
}

func (m *mockShopRepo) FindByID(ctx context.Context, id string) (*models.Shop, error) {
	args := m.Called(ctx, id)
	if s := args.Get(0); s != nil {
		return s.(*models.Shop), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockShopRepo) FindByName(ctx context.Context, name string) (*models.Shop, error) {
	args := m.Called(ctx, name)
	if s := args.Get(0); s != nil {
		return s.(*models.Shop), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockShopRepo) FindAll(ctx context.Context, skip, limit int64) ([]*models.Shop, error) {
	args := m.Called(ctx, skip, limit)
	return args.Get(0).([]*models.Shop), args.Error(1)
}

func (m *mockShopRepo) FindWithCoordinates(ctx context.Context, limit int64) ([]*models.Shop, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*models.Shop), args.Error(1)
}

func (m *mockShopRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockShopRepo) IncrementTotals(ctx context.Context, id string, receipts int, sales float64) error {
	return m.Called(ctx, id, receipts, sales).Error(0)
}

func (m *mockShopRepo) TopBySales(ctx context.Context, limit int64) ([]*models.Shop, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*models.Shop), args.Error(1)
}

func (m *mockShopRepo) DeleteAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockReceiptRepo struct {
	mock.Mock
}

func (m *mockReceiptRepo) Create(ctx context.Context, receipt *models.Receipt) error {
	return m.Called(ctx, receipt).Error(0)
}

func (m *mockReceiptRepo) FindByID(ctx context.Context, id string) (*models.Receipt, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*models.Receipt), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReceiptRepo) FindByCustomerPhone(ctx context.Context, phoneNumber string, skip, limit int64) ([]*models.Receipt, error) {
	args := m.Called(ctx, phoneNumber, skip, limit)
	return args.Get(0).([]*models.Receipt), args.Error(1)
}

func (m *mockReceiptRepo) CountByCustomerPhone(ctx context.Context, phoneNumber string) (int64, error) {
	args := m.Called(ctx, phoneNumber)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReceiptRepo) Find(ctx context.Context, filter models.ReceiptFilter, skip, limit int64) ([]*models.Receipt, error) {
	args := m.Called(ctx, filter, skip, limit)
	return args.Get(0).([]*models.Receipt), args.Error(1)
}

func (m *mockReceiptRepo) CountFiltered(ctx context.Context, filter models.ReceiptFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReceiptRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReceiptRepo) FindEligibleForDraw(ctx context.Context, start, end time.Time, excluded []models.ReceiptStatus) ([]*models.Receipt, error) {
	args := m.Called(ctx, start, end, excluded)
	return args.Get(0).([]*models.Receipt), args.Error(1)
}

func (m *mockReceiptRepo) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReceiptRepo) UpdateStatus(ctx context.Context, id string, status models.ReceiptStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockReceiptRepo) UpdateFraudReview(ctx context.Context, id string, tier models.FraudTier, status models.ReceiptStatus, reason string) error {
	return m.Called(ctx, id, tier, status, reason).Error(0)
}

func (m *mockReceiptRepo) FindFlagged(ctx context.Context, skip, limit int64) ([]*models.Receipt, error) {
	args := m.Called(ctx, skip, limit)
	return args.Get(0).([]*models.Receipt), args.Error(1)
}

func (m *mockReceiptRepo) CountFlagged(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReceiptRepo) CountByFraudTier(ctx context.Context, tier models.FraudTier) (int64, error) {
	args := m.Called(ctx, tier)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReceiptRepo) DistanceStatsByTier(ctx context.Context) ([]models.TierDistanceStats, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.TierDistanceStats), args.Error(1)
}

func (m *mockReceiptRepo) FindWithUploadCoordinates(ctx context.Context, date string, limit int64) ([]*models.Receipt, error) {
	args := m.Called(ctx, date, limit)
	return args.Get(0).([]*models.Receipt), args.Error(1)
}

func (m *mockReceiptRepo) SpendingByDay(ctx context.Context, days int) ([]models.DailySpending, error) {
	args := m.Called(ctx, days)
	return args.Get(0).([]models.DailySpending), args.Error(1)
}

func (m *mockReceiptRepo) ReceiptsByHour(ctx context.Context) ([]models.HourCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.HourCount), args.Error(1)
}

func (m *mockReceiptRepo) DeleteAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockDrawRepo struct {
	mock.Mock
}

func (m *mockDrawRepo) EnsureIndexes(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockDrawRepo) Create(ctx context.Context, draw *models.Draw) error {
	return m.Called(ctx, draw).Error(0)
}

func (m *mockDrawRepo) FindCompletedByDate(ctx context.Context, drawDate string) (*models.Draw, error) {
	args := m.Called(ctx, drawDate)
	if d := args.Get(0); d != nil {
		return d.(*models.Draw), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDrawRepo) FindByDate(ctx context.Context, drawDate string) (*models.Draw, error) {
	args := m.Called(ctx, drawDate)
	if d := args.Get(0); d != nil {
		return d.(*models.Draw), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDrawRepo) FindAll(ctx context.Context, skip, limit int64) ([]*models.Draw, error) {
	args := m.Called(ctx, skip, limit)
	return args.Get(0).([]*models.Draw), args.Error(1)
}

func (m *mockDrawRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockDrawRepo) CountCompleted(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockDrawRepo) FindByWinnerPhone(ctx context.Context, phoneNumber string, limit int64) ([]*models.Draw, error) {
	args := m.Called(ctx, phoneNumber, limit)
	return args.Get(0).([]*models.Draw), args.Error(1)
}

func (m *mockDrawRepo) DeleteAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// --- External client mocks ---

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyWinner(ctx context.Context, phoneNumber string, prizeAmount float64, drawDate string) error {
	return m.Called(ctx, phoneNumber, prizeAmount, drawDate).Error(0)
}

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, imageData, mimeType string) (*extraction.Result, error) {
	args := m.Called(ctx, imageData, mimeType)
	if r := args.Get(0); r != nil {
		return r.(*extraction.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) Forward(ctx context.Context, address string) *geocoding.Location {
	args := m.Called(ctx, address)
	if l := args.Get(0); l != nil {
		return l.(*geocoding.Location)
	}
	return nil
}

func (m *mockGeocoder) Reverse(ctx context.Context, lat, lon float64) string {
	return m.Called(ctx, lat, lon).String(0)
}

type mockIndexer struct {
	mock.Mock
}

func (m *mockIndexer) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *mockIndexer) IndexReceipt(ctx context.Context, receiptID, text, shopName, customerPhone string, amount float64) error {
	return m.Called(ctx, receiptID, text, shopName, customerPhone, amount).Error(0)
}

func (m *mockIndexer) SearchSimilar(ctx context.Context, text string, limit int) ([]vectorstore.Match, error) {
	args := m.Called(ctx, text, limit)
	if r := args.Get(0); r != nil {
		return r.([]vectorstore.Match), args.Error(1)
	}
	return nil, args.Error(1)
}
