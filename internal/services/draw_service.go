package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/retailrewards/retail-rewards-backend/internal/apperrors"
	"github.com/retailrewards/retail-rewards-backend/internal/models"
	"github.com/retailrewards/retail-rewards-backend/internal/repositories"
)

// WinnerNotifier delivers the congratulations message for a completed draw.
type WinnerNotifier interface {
	NotifyWinner(ctx context.Context, phoneNumber string, prizeAmount float64, drawDate string) error
}

const notifyTimeout = 30 * time.Second

// Compile-time check to ensure DrawServiceImpl implements DrawService
var _ DrawService = (*DrawServiceImpl)(nil)

// DrawServiceImpl runs the daily winner selection. The randomness source is
// injected so tests can seed it.
type DrawServiceImpl struct {
	drawRepo     repositories.DrawRepository
	receiptRepo  repositories.ReceiptRepository
	customerRepo repositories.CustomerRepository
	notifier     WinnerNotifier
	logger       *slog.Logger

	mu  sync.Mutex // guards rng, which is not safe for concurrent use
	rng *rand.Rand
}

// NewDrawService creates a new DrawServiceImpl
func NewDrawService(
	drawRepo repositories.DrawRepository,
	receiptRepo repositories.ReceiptRepository,
	customerRepo repositories.CustomerRepository,
	notifier WinnerNotifier,
	rng *rand.Rand,
	logger *slog.Logger,
) *DrawServiceImpl {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &DrawServiceImpl{
		drawRepo:     drawRepo,
		receiptRepo:  receiptRepo,
		customerRepo: customerRepo,
		notifier:     notifier,
		rng:          rng,
		logger:       logger,
	}
}

// RunDraw selects a winner among the date's eligible receipts. It is
// idempotent per date: the completed draw record acts as the lock, enforced
// by a unique index, so a rerun or a concurrent run reports the existing
// draw instead of picking a second winner.
func (s *DrawServiceImpl) RunDraw(ctx context.Context, drawDate string) (*models.DrawResult, error) {
	day, err := time.Parse("2006-01-02", drawDate)
	if err != nil {
		return nil, apperrors.InvalidArgumentf("invalid draw date %q, expected YYYY-MM-DD", drawDate)
	}

	if existing, err := s.drawRepo.FindCompletedByDate(ctx, drawDate); err == nil {
		s.logger.Info("draw already completed", "drawDate", drawDate)
		return &models.DrawResult{Outcome: models.DrawOutcomeAlreadyCompleted, Draw: existing}, nil
	} else if !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check for existing draw: %w", err)
	}

	// Eligibility window is the UTC calendar day, half-open so midnight
	// uploads count toward exactly one draw. Receipts that already won or
	// were rejected by review never re-enter the pool.
	start := day.UTC()
	end := start.AddDate(0, 0, 1)
	excluded := []models.ReceiptStatus{models.ReceiptStatusWon, models.ReceiptStatusRejected}

	receipts, err := s.receiptRepo.FindEligibleForDraw(ctx, start, end, excluded)
	if err != nil {
		return nil, fmt.Errorf("failed to load eligible receipts: %w", err)
	}
	if len(receipts) == 0 {
		s.logger.Info("no eligible receipts for draw", "drawDate", drawDate)
		return &models.DrawResult{Outcome: models.DrawOutcomeNoReceipts}, nil
	}

	winner := receipts[s.pick(len(receipts))]

	draw := models.NewDraw(drawDate)
	draw.TotalReceipts = len(receipts)
	for _, r := range receipts {
		draw.TotalAmount += r.Amount
	}
	draw.WinnerReceiptID = winner.ID
	draw.WinnerCustomerID = winner.CustomerID
	draw.WinnerCustomerPhone = winner.CustomerPhone
	// The winner gets back what they spent.
	draw.PrizeAmount = winner.Amount

	if err := s.drawRepo.Create(ctx, draw); err != nil {
		if apperrors.IsConflict(err) {
			// Lost the race against a concurrent run for the same date.
			existing, ferr := s.drawRepo.FindCompletedByDate(ctx, drawDate)
			if ferr != nil {
				return nil, fmt.Errorf("draw conflict but existing draw unreadable: %w", ferr)
			}
			s.logger.Info("concurrent draw detected", "drawDate", drawDate)
			return &models.DrawResult{Outcome: models.DrawOutcomeAlreadyCompleted, Draw: existing}, nil
		}
		return nil, fmt.Errorf("failed to record draw: %w", err)
	}

	if err := s.receiptRepo.UpdateStatus(ctx, winner.ID, models.ReceiptStatusWon); err != nil {
		s.logger.Error("failed to mark winning receipt", "receiptId", winner.ID, "error", err)
	}
	if err := s.customerRepo.IncrementWinTotals(ctx, winner.CustomerID, 1, draw.PrizeAmount); err != nil {
		s.logger.Error("failed to update winner aggregates", "customerId", winner.CustomerID, "error", err)
	}

	s.logger.Info("draw completed",
		"drawDate", drawDate,
		"winnerPhone", winner.CustomerPhone,
		"prizeAmount", draw.PrizeAmount,
		"totalReceipts", draw.TotalReceipts,
	)

	s.notifyAsync(winner.CustomerPhone, draw.PrizeAmount, drawDate)

	return &models.DrawResult{
		Outcome: models.DrawOutcomeWinner,
		Draw:    draw,
		Winner:  winner,
	}, nil
}

// notifyAsync delivers the winner notification without blocking the draw.
// Delivery failure only logs; the draw record already stands.
func (s *DrawServiceImpl) notifyAsync(phoneNumber string, prizeAmount float64, drawDate string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifier.NotifyWinner(ctx, phoneNumber, prizeAmount, drawDate); err != nil {
			s.logger.Error("failed to notify winner", "phoneNumber", phoneNumber, "error", err)
			return
		}
		s.logger.Info("winner notified", "phoneNumber", phoneNumber, "drawDate", drawDate)
	}()
}

func (s *DrawServiceImpl) pick(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// List retrieves draw history with pagination, newest date first
func (s *DrawServiceImpl) List(ctx context.Context, skip, limit int64) ([]*models.Draw, int64, error) {
	draws, err := s.drawRepo.FindAll(ctx, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.drawRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return draws, total, nil
}

// GetByDate retrieves the draw record for a date
func (s *DrawServiceImpl) GetByDate(ctx context.Context, drawDate string) (*models.Draw, error) {
	return s.drawRepo.FindByDate(ctx, drawDate)
}

// WinsByPhone retrieves the draws a customer has won
func (s *DrawServiceImpl) WinsByPhone(ctx context.Context, phoneNumber string) ([]*models.Draw, error) {
	return s.drawRepo.FindByWinnerPhone(ctx, phoneNumber, 100)
}
