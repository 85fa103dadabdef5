package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/retailrewards/retail-rewards-backend/internal/apperrors"
	"github.com/retailrewards/retail-rewards-backend/internal/fraud"
	"github.com/retailrewards/retail-rewards-backend/internal/models"
)

func heldReceipt() *models.Receipt {
	r := models.NewReceipt("c1", "+27821111111")
	r.ID = "r1"
	r.Amount = 250.75
	r.FraudTier = models.FraudTierFlagged
	r.Status = models.ReceiptStatusReview
	return r
}

func TestReview_Approve(t *testing.T) {
	receiptRepo := new(mockReceiptRepo)
	customerRepo := new(mockCustomerRepo)

	held := heldReceipt()
	approved := heldReceipt()
	approved.FraudTier = models.FraudTierValid
	approved.Status = models.ReceiptStatusProcessed

	receiptRepo.On("FindByID", mock.Anything, "r1").Return(held, nil).Once()
	receiptRepo.On("UpdateFraudReview", mock.Anything, "r1",
		models.FraudTierValid, models.ReceiptStatusProcessed, "Manually approved by admin").Return(nil)
	receiptRepo.On("FindByID", mock.Anything, "r1").Return(approved, nil).Once()

	svc := NewFraudService(receiptRepo, customerRepo, fraud.DefaultThresholds, testLogger())

	result, err := svc.Review(context.Background(), "r1", ReviewDecision{Action: "approve"})

	require.NoError(t, err)
	assert.Equal(t, models.ReceiptStatusProcessed, result.Status)
	assert.Equal(t, models.FraudTierValid, result.FraudTier)
	// Approval restores the receipt; the aggregates recorded at ingestion
	// stand.
	customerRepo.AssertNotCalled(t, "IncrementReceiptTotals", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	receiptRepo.AssertExpectations(t)
}

func TestReview_ApproveWithReason(t *testing.T) {
	receiptRepo := new(mockReceiptRepo)

	held := heldReceipt()
	receiptRepo.On("FindByID", mock.Anything, "r1").Return(held, nil)
	receiptRepo.On("UpdateFraudReview", mock.Anything, "r1",
		models.FraudTierValid, models.ReceiptStatusProcessed, "Manually approved: verified with shop").Return(nil)

	svc := NewFraudService(receiptRepo, new(mockCustomerRepo), fraud.DefaultThresholds, testLogger())

	_, err := svc.Review(context.Background(), "r1", ReviewDecision{Action: "approve", Reason: "verified with shop"})

	require.NoError(t, err)
	receiptRepo.AssertExpectations(t)
}

func TestReview_RejectRollsBackAggregates(t *testing.T) {
	receiptRepo := new(mockReceiptRepo)
	customerRepo := new(mockCustomerRepo)

	held := heldReceipt()
	rejected := heldReceipt()
	rejected.Status = models.ReceiptStatusRejected

	receiptRepo.On("FindByID", mock.Anything, "r1").Return(held, nil).Once()
	// Rejection keeps the assessed tier for the audit trail.
	receiptRepo.On("UpdateFraudReview", mock.Anything, "r1",
		models.FraudTierFlagged, models.ReceiptStatusRejected, "Rejected by admin - suspected fraud").Return(nil)
	customerRepo.On("IncrementReceiptTotals", mock.Anything, "c1", -1, -250.75).Return(nil)
	receiptRepo.On("FindByID", mock.Anything, "r1").Return(rejected, nil).Once()

	svc := NewFraudService(receiptRepo, customerRepo, fraud.DefaultThresholds, testLogger())

	result, err := svc.Review(context.Background(), "r1", ReviewDecision{Action: "reject"})

	require.NoError(t, err)
	assert.Equal(t, models.ReceiptStatusRejected, result.Status)
	receiptRepo.AssertExpectations(t)
	customerRepo.AssertExpectations(t)
}

func TestReview_WonReceiptIsUntouchable(t *testing.T) {
	receiptRepo := new(mockReceiptRepo)
	customerRepo := new(mockCustomerRepo)

	won := heldReceipt()
	won.Amount = 500
	won.Status = models.ReceiptStatusWon
	receiptRepo.On("FindByID", mock.Anything, "r1").Return(won, nil)

	svc := NewFraudService(receiptRepo, customerRepo, fraud.DefaultThresholds, testLogger())

	result, err := svc.Review(context.Background(), "r1", ReviewDecision{Action: "reject"})

	assert.Nil(t, result)
	assert.True(t, apperrors.IsConflict(err))
	receiptRepo.AssertNotCalled(t, "UpdateFraudReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	customerRepo.AssertNotCalled(t, "IncrementReceiptTotals", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReview_RejectTwiceRollsBackOnce(t *testing.T) {
	receiptRepo := new(mockReceiptRepo)
	customerRepo := new(mockCustomerRepo)

	held := heldReceipt()
	rejected := heldReceipt()
	rejected.Status = models.ReceiptStatusRejected

	receiptRepo.On("FindByID", mock.Anything, "r1").Return(held, nil).Once()
	receiptRepo.On("UpdateFraudReview", mock.Anything, "r1",
		models.FraudTierFlagged, models.ReceiptStatusRejected, "Rejected by admin - suspected fraud").Return(nil)
	customerRepo.On("IncrementReceiptTotals", mock.Anything, "c1", -1, -250.75).Return(nil)
	// Every lookup after the first decision sees the rejected state.
	receiptRepo.On("FindByID", mock.Anything, "r1").Return(rejected, nil)

	svc := NewFraudService(receiptRepo, customerRepo, fraud.DefaultThresholds, testLogger())

	_, err := svc.Review(context.Background(), "r1", ReviewDecision{Action: "reject"})
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), "r1", ReviewDecision{Action: "reject"})

	assert.True(t, apperrors.IsConflict(err))
	customerRepo.AssertNumberOfCalls(t, "IncrementReceiptTotals", 1)
}

func TestReview_UnknownAction(t *testing.T) {
	receiptRepo := new(mockReceiptRepo)
	receiptRepo.On("FindByID", mock.Anything, "r1").Return(heldReceipt(), nil)

	svc := NewFraudService(receiptRepo, new(mockCustomerRepo), fraud.DefaultThresholds, testLogger())

	result, err := svc.Review(context.Background(), "r1", ReviewDecision{Action: "maybe"})

	assert.Nil(t, result)
	assert.True(t, apperrors.IsInvalidArgument(err))
	receiptRepo.AssertNotCalled(t, "UpdateFraudReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReview_ReceiptNotFound(t *testing.T) {
	receiptRepo := new(mockReceiptRepo)
	receiptRepo.On("FindByID", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound)

	svc := NewFraudService(receiptRepo, new(mockCustomerRepo), fraud.DefaultThresholds, testLogger())

	_, err := svc.Review(context.Background(), "missing", ReviewDecision{Action: "approve"})

	assert.True(t, apperrors.IsNotFound(err))
}

func TestStats(t *testing.T) {
	receiptRepo := new(mockReceiptRepo)

	receiptRepo.On("Count", mock.Anything).Return(int64(200), nil)
	receiptRepo.On("CountByFraudTier", mock.Anything, models.FraudTierValid).Return(int64(170), nil)
	receiptRepo.On("CountByFraudTier", mock.Anything, models.FraudTierReview).Return(int64(15), nil)
	receiptRepo.On("CountByFraudTier", mock.Anything, models.FraudTierSuspicious).Return(int64(10), nil)
	receiptRepo.On("CountByFraudTier", mock.Anything, models.FraudTierFlagged).Return(int64(5), nil)
	receiptRepo.On("DistanceStatsByTier", mock.Anything).Return([]models.TierDistanceStats{
		{Tier: models.FraudTierValid, AvgDistance: 12.3456, MaxDistance: 49.999, Count: 170},
		{Tier: models.FraudTierFlagged, AvgDistance: 812.5, MaxDistance: 1400.123, Count: 5},
	}, nil)

	svc := NewFraudService(receiptRepo, new(mockCustomerRepo), fraud.DefaultThresholds, testLogger())

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(200), stats.TotalReceipts)
	assert.Equal(t, int64(170), stats.Valid)
	assert.Equal(t, int64(5), stats.Flagged)
	// 30 of 200 receipts fall outside the valid tier.
	assert.Equal(t, 15.0, stats.FraudRate)
	assert.Equal(t, 12.35, stats.DistanceStats[models.FraudTierValid].AvgDistance)
	assert.Equal(t, 50.0, stats.DistanceStats[models.FraudTierValid].MaxDistance)
	assert.Equal(t, 1400.12, stats.DistanceStats[models.FraudTierFlagged].MaxDistance)
}

func TestStats_EmptyStore(t *testing.T) {
	receiptRepo := new(mockReceiptRepo)

	receiptRepo.On("Count", mock.Anything).Return(int64(0), nil)
	receiptRepo.On("CountByFraudTier", mock.Anything, mock.Anything).Return(int64(0), nil)
	receiptRepo.On("DistanceStatsByTier", mock.Anything).Return([]models.TierDistanceStats{}, nil)

	svc := NewFraudService(receiptRepo, new(mockCustomerRepo), fraud.DefaultThresholds, testLogger())

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Zero(t, stats.FraudRate)
	assert.Empty(t, stats.DistanceStats)
}
