package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/retailrewards/retail-rewards-backend/internal/apperrors"
	"github.com/retailrewards/retail-rewards-backend/internal/fraud"
	"github.com/retailrewards/retail-rewards-backend/internal/models"
	"github.com/retailrewards/retail-rewards-backend/pkg/extraction"
	"github.com/retailrewards/retail-rewards-backend/pkg/geocoding"
	"github.com/retailrewards/retail-rewards-backend/pkg/vectorstore"
)

// ingestionFixture wires a ReceiptServiceImpl over mocks with real customer
// and shop services on top of the mocked repositories.
type ingestionFixture struct {
	receiptRepo  *mockReceiptRepo
	customerRepo *mockCustomerRepo
	shopRepo     *mockShopRepo
	extractor    *mockExtractor
	geocoder     *mockGeocoder
	indexer      *mockIndexer
	svc          *ReceiptServiceImpl
}

func newIngestionFixture() *ingestionFixture {
	f := &ingestionFixture{
		receiptRepo:  new(mockReceiptRepo),
		customerRepo: new(mockCustomerRepo),
		shopRepo:     new(mockShopRepo),
		extractor:    new(mockExtractor),
		geocoder:     new(mockGeocoder),
		indexer:      new(mockIndexer),
	}
	logger := testLogger()
	f.svc = NewReceiptService(
		f.receiptRepo, f.customerRepo, f.shopRepo,
		NewCustomerService(f.customerRepo, logger),
		NewShopService(f.shopRepo, logger),
		f.extractor, f.geocoder, f.indexer,
		fraud.NewAssessor(fraud.DefaultThresholds),
		logger,
	)
	return f
}

func (f *ingestionFixture) knownCustomer(phone string) *models.Customer {
	customer := models.NewCustomer(phone, "")
	f.customerRepo.On("FindByPhone", mock.Anything, phone).Return(customer, nil)
	return customer
}

func ptr(v float64) *float64 { return &v }

func TestProcessImage_NearbyUploadIsValid(t *testing.T) {
	f := newIngestionFixture()
	customer := f.knownCustomer("+27821111111")

	// Shop geocodes right next to where the photo was taken.
	shopLat, shopLon := -26.1076, 28.0567
	f.extractor.On("Extract", mock.Anything, "img-data", "image/jpeg").Return(&extraction.Result{
		ShopName:    "Checkers Sandton",
		ShopAddress: "Sandton City, Johannesburg",
		Amount:      152.96,
		Date:        "2024-06-15",
		Items:       []extraction.Item{{Name: "Milk 2L", Price: 22.99, Quantity: 2}},
		RawText:     "CHECKERS SANDTON\nTOTAL: R152.96",
	}, nil)
	f.geocoder.On("Reverse", mock.Anything, -26.108, 28.057).Return("Sandton, Johannesburg")
	f.geocoder.On("Forward", mock.Anything, "Checkers Sandton, Sandton City, Johannesburg").
		Return(&geocoding.Location{Latitude: shopLat, Longitude: shopLon})
	f.shopRepo.On("FindByName", mock.Anything, "Checkers Sandton").Return(nil, apperrors.ErrNotFound)
	f.shopRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Shop")).Return(nil)
	f.receiptRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Receipt")).Return(nil)
	f.customerRepo.On("IncrementReceiptTotals", mock.Anything, customer.ID, 1, 152.96).Return(nil)
	f.shopRepo.On("IncrementTotals", mock.Anything, mock.AnythingOfType("string"), 1, 152.96).Return(nil)
	f.indexer.On("Enabled").Return(false)

	receipt, err := f.svc.ProcessImage(context.Background(), models.ProcessImageRequest{
		PhoneNumber: "+27821111111",
		ImageData:   "img-data",
		MimeType:    "image/jpeg",
		Latitude:    ptr(-26.108),
		Longitude:   ptr(28.057),
	})

	require.NoError(t, err)
	assert.Equal(t, "Checkers Sandton", receipt.ShopName)
	assert.Equal(t, 152.96, receipt.Amount)
	assert.Equal(t, "ZAR", receipt.Currency)
	assert.Equal(t, "2024-06-15", receipt.ReceiptDate)
	assert.Equal(t, "Sandton, Johannesburg", receipt.UploadAddress)
	require.NotNil(t, receipt.DistanceKm)
	assert.Less(t, *receipt.DistanceKm, 1.0)
	assert.Equal(t, models.FraudTierValid, receipt.FraudTier)
	assert.Equal(t, models.ReceiptStatusProcessed, receipt.Status)
	require.Len(t, receipt.Items, 1)
	assert.Equal(t, 2, receipt.Items[0].Quantity)

	f.receiptRepo.AssertExpectations(t)
	f.customerRepo.AssertExpectations(t)
	f.shopRepo.AssertExpectations(t)
}

func TestProcessImage_FarUploadIsFlaggedAndHeld(t *testing.T) {
	f := newIngestionFixture()
	customer := f.knownCustomer("+27821111111")

	// Shop in Johannesburg, photo taken in Cape Town.
	f.extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything).Return(&extraction.Result{
		ShopName: "Checkers Sandton",
		Amount:   500,
	}, nil)
	f.geocoder.On("Reverse", mock.Anything, -33.9249, 18.4241).Return("Cape Town")
	f.geocoder.On("Forward", mock.Anything, "Checkers Sandton").
		Return(&geocoding.Location{Latitude: -26.1076, Longitude: 28.0567})
	f.shopRepo.On("FindByName", mock.Anything, "Checkers Sandton").Return(nil, apperrors.ErrNotFound)
	f.shopRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Shop")).Return(nil)
	f.receiptRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Receipt")).Return(nil)
	f.customerRepo.On("IncrementReceiptTotals", mock.Anything, customer.ID, 1, 500.0).Return(nil)
	f.shopRepo.On("IncrementTotals", mock.Anything, mock.AnythingOfType("string"), 1, 500.0).Return(nil)
	f.indexer.On("Enabled").Return(false)

	receipt, err := f.svc.ProcessImage(context.Background(), models.ProcessImageRequest{
		PhoneNumber: "+27821111111",
		ImageData:   "img-data",
		Latitude:    ptr(-33.9249),
		Longitude:   ptr(18.4241),
	})

	require.NoError(t, err)
	require.NotNil(t, receipt.DistanceKm)
	assert.Greater(t, *receipt.DistanceKm, 1000.0)
	assert.Equal(t, models.FraudTierFlagged, receipt.FraudTier)
	assert.Equal(t, 100, receipt.FraudScore)
	// Flagged receipts wait for manual review instead of entering the pool.
	assert.Equal(t, models.ReceiptStatusReview, receipt.Status)
}

func TestProcessImage_UnresolvedShopKeepsLocationsApart(t *testing.T) {
	f := newIngestionFixture()
	customer := f.knownCustomer("+27821111111")

	f.extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything).Return(&extraction.Result{
		ShopName: "Corner Cafe",
		Amount:   75,
	}, nil)
	f.geocoder.On("Reverse", mock.Anything, -26.108, 28.057).Return("Sandton")
	// Geocoder cannot resolve the shop.
	f.geocoder.On("Forward", mock.Anything, "Corner Cafe").Return(nil)
	f.shopRepo.On("FindByName", mock.Anything, "Corner Cafe").Return(nil, apperrors.ErrNotFound)
	f.shopRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Shop")).Run(func(args mock.Arguments) {
		shop := args.Get(1).(*models.Shop)
		// The upload location must never stand in for the shop's.
		assert.Nil(t, shop.Latitude)
		assert.Nil(t, shop.Longitude)
	}).Return(nil)
	f.receiptRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Receipt")).Return(nil)
	f.customerRepo.On("IncrementReceiptTotals", mock.Anything, customer.ID, 1, 75.0).Return(nil)
	f.shopRepo.On("IncrementTotals", mock.Anything, mock.AnythingOfType("string"), 1, 75.0).Return(nil)
	f.indexer.On("Enabled").Return(false)

	receipt, err := f.svc.ProcessImage(context.Background(), models.ProcessImageRequest{
		PhoneNumber: "+27821111111",
		ImageData:   "img-data",
		Latitude:    ptr(-26.108),
		Longitude:   ptr(28.057),
	})

	require.NoError(t, err)
	assert.Nil(t, receipt.ShopLatitude)
	assert.Nil(t, receipt.ShopLongitude)
	// Unknown distance goes to the review tier, not to valid.
	assert.Nil(t, receipt.DistanceKm)
	assert.Equal(t, models.FraudTierReview, receipt.FraudTier)
	assert.Equal(t, 30, receipt.FraudScore)
	assert.Equal(t, models.ReceiptStatusProcessed, receipt.Status)
}

func TestProcessImage_ExtractionFailureStillYieldsRecord(t *testing.T) {
	f := newIngestionFixture()
	customer := f.knownCustomer("+27821111111")

	f.extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("upstream timeout"))
	f.receiptRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Receipt")).Return(nil)
	f.customerRepo.On("IncrementReceiptTotals", mock.Anything, customer.ID, 1, 0.0).Return(nil)
	f.indexer.On("Enabled").Return(false)

	receipt, err := f.svc.ProcessImage(context.Background(), models.ProcessImageRequest{
		PhoneNumber: "+27821111111",
		ImageData:   "img-data",
	})

	// A down extractor degrades to an empty record held for manual handling.
	require.NoError(t, err)
	assert.Empty(t, receipt.ShopName)
	assert.Zero(t, receipt.Amount)
	assert.Equal(t, models.FraudTierReview, receipt.FraudTier)
	assert.Equal(t, 30, receipt.FraudScore)
	assert.Equal(t, models.ReceiptStatusProcessed, receipt.Status)
	f.receiptRepo.AssertExpectations(t)
	f.customerRepo.AssertExpectations(t)
	// No shop name means nothing to geocode or register.
	f.shopRepo.AssertNotCalled(t, "FindByName", mock.Anything, mock.Anything)
}

func TestProcessImage_IndexesWhenVectorStoreEnabled(t *testing.T) {
	f := newIngestionFixture()
	customer := f.knownCustomer("+27821111111")

	f.extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything).Return(&extraction.Result{
		ShopName: "Spar",
		Amount:   42,
		RawText:  "SPAR\nTOTAL: R42.00",
	}, nil)
	f.geocoder.On("Forward", mock.Anything, "Spar").Return(nil)
	f.shopRepo.On("FindByName", mock.Anything, "Spar").Return(nil, apperrors.ErrNotFound)
	f.shopRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Shop")).Return(nil)
	f.receiptRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Receipt")).Return(nil)
	f.customerRepo.On("IncrementReceiptTotals", mock.Anything, customer.ID, 1, 42.0).Return(nil)
	f.shopRepo.On("IncrementTotals", mock.Anything, mock.AnythingOfType("string"), 1, 42.0).Return(nil)
	f.indexer.On("Enabled").Return(true)
	f.indexer.On("IndexReceipt", mock.Anything, mock.AnythingOfType("string"),
		"SPAR\nTOTAL: R42.00", "Spar", "+27821111111", 42.0).Return(nil)

	_, err := f.svc.ProcessImage(context.Background(), models.ProcessImageRequest{
		PhoneNumber: "+27821111111",
		ImageData:   "img-data",
	})

	require.NoError(t, err)
	f.indexer.AssertExpectations(t)
}

func TestSearch_ReturnsIndexedReceiptsInScoreOrder(t *testing.T) {
	f := newIngestionFixture()

	r1 := models.NewReceipt("c1", "+27821111111")
	r1.ID = "r1"
	r2 := models.NewReceipt("c2", "+27822222222")
	r2.ID = "r2"

	f.indexer.On("SearchSimilar", mock.Anything, "milk", 10).Return([]vectorstore.Match{
		{ReceiptID: "r1", Score: 0.92},
		{ReceiptID: "gone", Score: 0.55},
		{ReceiptID: "r2", Score: 0.41},
	}, nil)
	f.receiptRepo.On("FindByID", mock.Anything, "r1").Return(r1, nil)
	// Stale index entries for deleted receipts are skipped.
	f.receiptRepo.On("FindByID", mock.Anything, "gone").Return(nil, apperrors.ErrNotFound)
	f.receiptRepo.On("FindByID", mock.Anything, "r2").Return(r2, nil)

	results, err := f.svc.Search(context.Background(), "milk", 10)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "r1", results[0].Receipt.ID)
	assert.Equal(t, 0.92, results[0].Score)
	assert.Equal(t, "r2", results[1].Receipt.ID)
}

func TestSearch_ClampsOutOfRangeLimit(t *testing.T) {
	f := newIngestionFixture()

	f.indexer.On("SearchSimilar", mock.Anything, "milk", 10).Return([]vectorstore.Match{}, nil)

	results, err := f.svc.Search(context.Background(), "milk", 9000)

	require.NoError(t, err)
	assert.Empty(t, results)
	f.indexer.AssertExpectations(t)
}

func TestUpload_ManualOverridesBeatParsedFields(t *testing.T) {
	f := newIngestionFixture()
	customer := f.knownCustomer("+27822222222")

	text := "PICK N PAY\nBread 18.99\nTOTAL: R18.99"
	f.geocoder.On("Forward", mock.Anything, mock.AnythingOfType("string")).Return(nil)
	f.shopRepo.On("FindByName", mock.Anything, "Woolworths").Return(nil, apperrors.ErrNotFound)
	f.shopRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Shop")).Return(nil)
	f.receiptRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Receipt")).Return(nil)
	f.customerRepo.On("IncrementReceiptTotals", mock.Anything, customer.ID, 1, 99.5).Return(nil)
	f.shopRepo.On("IncrementTotals", mock.Anything, mock.AnythingOfType("string"), 1, 99.5).Return(nil)
	f.indexer.On("Enabled").Return(false)

	receipt, err := f.svc.Upload(context.Background(), models.UploadReceiptRequest{
		PhoneNumber: "+27822222222",
		ReceiptText: text,
		ShopName:    "Woolworths",
		Amount:      ptr(99.5),
	})

	require.NoError(t, err)
	assert.Equal(t, "Woolworths", receipt.ShopName)
	assert.Equal(t, 99.5, receipt.Amount)
	assert.Equal(t, text, receipt.RawText)
}

func TestUpload_RegistersUnknownCustomer(t *testing.T) {
	f := newIngestionFixture()

	f.customerRepo.On("FindByPhone", mock.Anything, "+27823333333").Return(nil, apperrors.ErrNotFound)
	f.customerRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Customer")).Return(nil)
	f.receiptRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Receipt")).Return(nil)
	f.customerRepo.On("IncrementReceiptTotals", mock.Anything, mock.AnythingOfType("string"), 1, 0.0).Return(nil)
	f.indexer.On("Enabled").Return(false)

	receipt, err := f.svc.Upload(context.Background(), models.UploadReceiptRequest{
		PhoneNumber: "+27823333333",
	})

	require.NoError(t, err)
	assert.Equal(t, "+27823333333", receipt.CustomerPhone)
	// No shop name parsed, so no shop lookup happens.
	f.shopRepo.AssertNotCalled(t, "FindByName", mock.Anything, mock.Anything)
	f.customerRepo.AssertExpectations(t)
}
