package services

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/retailrewards/retail-rewards-backend/internal/fraud"
	"github.com/retailrewards/retail-rewards-backend/internal/models"
)

func TestSeed_LoadsDemoData(t *testing.T) {
	customerRepo := new(mockCustomerRepo)
	shopRepo := new(mockShopRepo)
	receiptRepo := new(mockReceiptRepo)
	drawRepo := new(mockDrawRepo)

	customerRepo.On("DeleteAll", mock.Anything).Return(nil)
	shopRepo.On("DeleteAll", mock.Anything).Return(nil)
	receiptRepo.On("DeleteAll", mock.Anything).Return(nil)
	drawRepo.On("DeleteAll", mock.Anything).Return(nil)

	var createdShops []*models.Shop
	shopRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Shop")).Run(func(args mock.Arguments) {
		createdShops = append(createdShops, args.Get(1).(*models.Shop))
	}).Return(nil)
	customerRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Customer")).Return(nil)

	var createdReceipts []*models.Receipt
	receiptRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Receipt")).Run(func(args mock.Arguments) {
		createdReceipts = append(createdReceipts, args.Get(1).(*models.Receipt))
	}).Return(nil)
	customerRepo.On("IncrementReceiptTotals", mock.Anything, mock.AnythingOfType("string"), 1, mock.AnythingOfType("float64")).Return(nil)
	shopRepo.On("IncrementTotals", mock.Anything, mock.AnythingOfType("string"), 1, mock.AnythingOfType("float64")).Return(nil)

	svc := NewSeedService(customerRepo, shopRepo, receiptRepo, drawRepo,
		fraud.NewAssessor(fraud.DefaultThresholds), rand.New(rand.NewSource(1)), testLogger())

	summary, err := svc.Seed(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 12, summary.Shops)
	assert.Equal(t, 6, summary.Customers)
	// Seven days of 8 to 18 receipts each.
	assert.GreaterOrEqual(t, summary.Receipts, 56)
	assert.LessOrEqual(t, summary.Receipts, 126)
	assert.Len(t, createdReceipts, summary.Receipts)

	var tierTotal int
	for _, n := range summary.ByTier {
		tierTotal += n
	}
	assert.Equal(t, summary.Receipts, tierTotal)

	for _, shop := range createdShops {
		require.NotNil(t, shop.Latitude)
		require.NotNil(t, shop.Longitude)
	}
	for _, r := range createdReceipts {
		assert.NotEmpty(t, r.ShopName)
		assert.GreaterOrEqual(t, r.Amount, 50.0)
		assert.LessOrEqual(t, r.Amount, 2000.0)
		require.NotNil(t, r.DistanceKm)
		assert.Equal(t, "ZAR", r.Currency)
		if r.FraudTier == models.FraudTierFlagged {
			assert.Equal(t, models.ReceiptStatusReview, r.Status)
		} else {
			assert.Equal(t, models.ReceiptStatusProcessed, r.Status)
		}
	}
}

func TestSeed_DeterministicWithSeededRand(t *testing.T) {
	run := func() int {
		customerRepo := new(mockCustomerRepo)
		shopRepo := new(mockShopRepo)
		receiptRepo := new(mockReceiptRepo)
		drawRepo := new(mockDrawRepo)

		customerRepo.On("DeleteAll", mock.Anything).Return(nil)
		shopRepo.On("DeleteAll", mock.Anything).Return(nil)
		receiptRepo.On("DeleteAll", mock.Anything).Return(nil)
		drawRepo.On("DeleteAll", mock.Anything).Return(nil)
		shopRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		customerRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		receiptRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		customerRepo.On("IncrementReceiptTotals", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		shopRepo.On("IncrementTotals", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		svc := NewSeedService(customerRepo, shopRepo, receiptRepo, drawRepo,
			fraud.NewAssessor(fraud.DefaultThresholds), rand.New(rand.NewSource(99)), testLogger())
		summary, err := svc.Seed(context.Background())
		require.NoError(t, err)
		return summary.Receipts
	}

	assert.Equal(t, run(), run())
}
