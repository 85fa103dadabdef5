package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/retailrewards/retail-rewards-backend/internal/apperrors"
	"github.com/retailrewards/retail-rewards-backend/internal/fraud"
	"github.com/retailrewards/retail-rewards-backend/internal/models"
	"github.com/retailrewards/retail-rewards-backend/internal/repositories"
)

// Compile-time check to ensure FraudServiceImpl implements FraudService
var _ FraudService = (*FraudServiceImpl)(nil)

// FraudServiceImpl handles the manual fraud review workflow and statistics
type FraudServiceImpl struct {
	receiptRepo  repositories.ReceiptRepository
	customerRepo repositories.CustomerRepository
	thresholds   fraud.Thresholds
	logger       *slog.Logger
}

// NewFraudService creates a new FraudServiceImpl
func NewFraudService(
	receiptRepo repositories.ReceiptRepository,
	customerRepo repositories.CustomerRepository,
	thresholds fraud.Thresholds,
	logger *slog.Logger,
) *FraudServiceImpl {
	return &FraudServiceImpl{
		receiptRepo:  receiptRepo,
		customerRepo: customerRepo,
		thresholds:   thresholds,
		logger:       logger,
	}
}

// Flagged retrieves receipts held for manual review
func (s *FraudServiceImpl) Flagged(ctx context.Context, skip, limit int64) ([]*models.Receipt, int64, error) {
	receipts, err := s.receiptRepo.FindFlagged(ctx, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.receiptRepo.CountFlagged(ctx)
	if err != nil {
		return nil, 0, err
	}
	return receipts, total, nil
}

// Stats computes fraud classification statistics across all receipts
func (s *FraudServiceImpl) Stats(ctx context.Context) (*models.FraudStats, error) {
	stats := &models.FraudStats{
		DistanceStats: map[models.FraudTier]models.TierDistanceStats{},
	}

	var err error
	if stats.TotalReceipts, err = s.receiptRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Valid, err = s.receiptRepo.CountByFraudTier(ctx, models.FraudTierValid); err != nil {
		return nil, err
	}
	if stats.Review, err = s.receiptRepo.CountByFraudTier(ctx, models.FraudTierReview); err != nil {
		return nil, err
	}
	if stats.Suspicious, err = s.receiptRepo.CountByFraudTier(ctx, models.FraudTierSuspicious); err != nil {
		return nil, err
	}
	if stats.Flagged, err = s.receiptRepo.CountByFraudTier(ctx, models.FraudTierFlagged); err != nil {
		return nil, err
	}

	if stats.TotalReceipts > 0 {
		nonValid := float64(stats.Review + stats.Suspicious + stats.Flagged)
		stats.FraudRate = math.Round(nonValid/float64(stats.TotalReceipts)*100*100) / 100
	}

	tierStats, err := s.receiptRepo.DistanceStatsByTier(ctx)
	if err != nil {
		return nil, err
	}
	for _, ts := range tierStats {
		ts.AvgDistance = math.Round(ts.AvgDistance*100) / 100
		ts.MaxDistance = math.Round(ts.MaxDistance*100) / 100
		stats.DistanceStats[ts.Tier] = ts
	}

	return stats, nil
}

// Review applies an admin decision to a held receipt. Approval returns it to
// the draw pool as valid; rejection removes it permanently and rolls back the
// customer aggregates recorded at ingestion.
func (s *FraudServiceImpl) Review(ctx context.Context, receiptID string, decision ReviewDecision) (*models.Receipt, error) {
	receipt, err := s.receiptRepo.FindByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}

	// won and rejected are terminal. Re-deciding a rejected receipt would
	// apply the aggregate rollback twice; re-deciding a won one would
	// rewrite draw history.
	if receipt.Status == models.ReceiptStatusWon || receipt.Status == models.ReceiptStatusRejected {
		return nil, apperrors.Conflictf("receipt %s is already %s", receiptID, receipt.Status)
	}

	switch decision.Action {
	case "approve":
		reason := "Manually approved by admin"
		if decision.Reason != "" {
			reason = fmt.Sprintf("Manually approved: %s", decision.Reason)
		}
		if err := s.receiptRepo.UpdateFraudReview(ctx, receiptID, models.FraudTierValid, models.ReceiptStatusProcessed, reason); err != nil {
			return nil, err
		}
		s.logger.Info("receipt approved", "receiptId", receiptID)

	case "reject":
		reason := "Rejected by admin - suspected fraud"
		if decision.Reason != "" {
			reason = fmt.Sprintf("Rejected: %s", decision.Reason)
		}
		if err := s.receiptRepo.UpdateFraudReview(ctx, receiptID, receipt.FraudTier, models.ReceiptStatusRejected, reason); err != nil {
			return nil, err
		}
		// The ingestion-time aggregate bump must not survive rejection.
		if err := s.customerRepo.IncrementReceiptTotals(ctx, receipt.CustomerID, -1, -receipt.Amount); err != nil {
			s.logger.Error("failed to roll back customer aggregates", "customerId", receipt.CustomerID, "error", err)
		}
		s.logger.Info("receipt rejected", "receiptId", receiptID)

	default:
		return nil, apperrors.InvalidArgumentf("action must be 'approve' or 'reject', got %q", decision.Action)
	}

	return s.receiptRepo.FindByID(ctx, receiptID)
}

// Thresholds returns the active distance thresholds
func (s *FraudServiceImpl) Thresholds() fraud.Thresholds {
	return s.thresholds
}
