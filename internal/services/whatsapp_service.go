package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/retailrewards/retail-rewards-backend/internal/apperrors"
	"github.com/retailrewards/retail-rewards-backend/internal/models"
	"github.com/retailrewards/retail-rewards-backend/internal/repositories"
)

const helpReply = `🎰 Welcome to Retail Rewards!

📸 Send a photo of your receipt to enter today's draw
📍 Share your location first for better tracking
🏆 Daily winners announced at midnight
💰 Win back what you spent!

Commands:
• RECEIPTS - View your receipts
• WINS - View your winnings
• STATUS - Check today's draw`

// Compile-time check to ensure WhatsAppServiceImpl implements WhatsAppService
var _ WhatsAppService = (*WhatsAppServiceImpl)(nil)

// WhatsAppServiceImpl turns incoming relay messages into platform actions and
// reply texts
type WhatsAppServiceImpl struct {
	customerService CustomerService
	receiptService  ReceiptService
	receiptRepo     repositories.ReceiptRepository
	drawRepo        repositories.DrawRepository
	logger          *slog.Logger
}

// NewWhatsAppService creates a new WhatsAppServiceImpl
func NewWhatsAppService(
	customerService CustomerService,
	receiptService ReceiptService,
	receiptRepo repositories.ReceiptRepository,
	drawRepo repositories.DrawRepository,
	logger *slog.Logger,
) *WhatsAppServiceImpl {
	return &WhatsAppServiceImpl{
		customerService: customerService,
		receiptService:  receiptService,
		receiptRepo:     receiptRepo,
		drawRepo:        drawRepo,
		logger:          logger,
	}
}

// HandleMessage processes one incoming message and returns the reply text.
// Unknown senders are registered before anything else so every interaction
// counts as first contact.
func (s *WhatsAppServiceImpl) HandleMessage(ctx context.Context, msg WebhookMessage) (string, error) {
	if _, err := s.customerService.GetOrCreate(ctx, msg.PhoneNumber, ""); err != nil {
		return "", err
	}

	if msg.Type == "image" && msg.ImageData != "" {
		return s.handleImage(ctx, msg)
	}
	if msg.Type == "location" {
		if msg.Latitude != nil && msg.Longitude != nil {
			return fmt.Sprintf("📍 Location received: %v, %v. Now send your receipt photo!", *msg.Latitude, *msg.Longitude), nil
		}
		return "📍 Location received. Now send your receipt photo!", nil
	}

	switch strings.ToLower(strings.TrimSpace(msg.Content)) {
	case "help", "hi", "hello", "start":
		return helpReply, nil
	case "receipts":
		return s.replyReceipts(ctx, msg.PhoneNumber)
	case "wins":
		return s.replyWins(ctx, msg.PhoneNumber)
	case "status":
		return s.replyStatus(ctx, msg.PhoneNumber)
	default:
		return "Send a receipt photo or type HELP for commands.", nil
	}
}

// handleImage runs the photo through the full ingestion pipeline and tells
// the sender where their receipt landed.
func (s *WhatsAppServiceImpl) handleImage(ctx context.Context, msg WebhookMessage) (string, error) {
	receipt, err := s.receiptService.ProcessImage(ctx, models.ProcessImageRequest{
		PhoneNumber: msg.PhoneNumber,
		ImageData:   msg.ImageData,
		Latitude:    msg.Latitude,
		Longitude:   msg.Longitude,
	})
	if err != nil {
		s.logger.Error("webhook receipt processing failed", "phoneNumber", msg.PhoneNumber, "error", err)
		return "📸 Receipt received, but we could not read it right now. Please try again in a few minutes.", nil
	}

	if receipt.Status == models.ReceiptStatusReview {
		return "📸 Receipt received! It needs a quick manual check before entering the draw. We'll keep you posted.", nil
	}
	if receipt.ShopName != "" {
		return fmt.Sprintf("📸 Receipt from %s for R%.2f registered! You're in today's draw. 🍀", receipt.ShopName, receipt.Amount), nil
	}
	return "📸 Receipt received! You're in today's draw. 🍀", nil
}

func (s *WhatsAppServiceImpl) replyReceipts(ctx context.Context, phoneNumber string) (string, error) {
	receipts, _, err := s.receiptService.ListByCustomer(ctx, phoneNumber, 0, 5)
	if err != nil {
		return "", err
	}
	if len(receipts) == 0 {
		return "No receipts yet. Send a receipt photo to get started!", nil
	}

	var b strings.Builder
	b.WriteString("📋 Your recent receipts:\n\n")
	for i, r := range receipts {
		emoji := "⏳"
		switch r.Status {
		case models.ReceiptStatusProcessed:
			emoji = "✅"
		case models.ReceiptStatusWon:
			emoji = "🏆"
		}
		name := r.ShopName
		if name == "" {
			name = "Unknown"
		}
		fmt.Fprintf(&b, "%d. %s - R%.2f %s\n", i+1, name, r.Amount, emoji)
	}
	return b.String(), nil
}

func (s *WhatsAppServiceImpl) replyWins(ctx context.Context, phoneNumber string) (string, error) {
	wins, err := s.drawRepo.FindByWinnerPhone(ctx, phoneNumber, 5)
	if err != nil {
		return "", err
	}
	if len(wins) == 0 {
		return "No wins yet. Keep uploading receipts for a chance to win!", nil
	}

	var total float64
	for _, w := range wins {
		total += w.PrizeAmount
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 Your winnings: R%.2f\n\n", total)
	for _, w := range wins {
		fmt.Fprintf(&b, "• %s: R%.2f\n", w.DrawDate, w.PrizeAmount)
	}
	return b.String(), nil
}

func (s *WhatsAppServiceImpl) replyStatus(ctx context.Context, phoneNumber string) (string, error) {
	now := time.Now().UTC()
	today := now.Format("2006-01-02")

	draw, err := s.drawRepo.FindCompletedByDate(ctx, today)
	if err == nil {
		if draw.WinnerCustomerPhone == phoneNumber {
			return fmt.Sprintf("🎉 YOU WON TODAY! Prize: R%.2f", draw.PrizeAmount), nil
		}
		return fmt.Sprintf("Today's draw is complete. Winner has been notified.\nTotal entries: %d", draw.TotalReceipts), nil
	}
	if !apperrors.IsNotFound(err) {
		return "", err
	}

	start := now.Truncate(24 * time.Hour)
	entries, err := s.receiptRepo.CountCreatedBetween(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🎰 Today's draw status:\nTotal entries: %d\nDraw at midnight!", entries), nil
}
