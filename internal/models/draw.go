package models

import (
	"time"

	"github.com/google/uuid"
)

// DrawStatus represents the status of a daily draw.
type DrawStatus string

const (
	DrawStatusPending   DrawStatus = "pending"
	DrawStatusCompleted DrawStatus = "completed"
)

// Draw records the outcome of one calendar date's winner selection. The
// winner's phone and receipt id are snapshotted here so draw history survives
// later edits to customers or receipts. At most one completed draw exists per
// date, enforced by a partial unique index on (drawDate, status=completed).
type Draw struct {
	ID                  string     `bson:"id" json:"id"`
	DrawDate            string     `bson:"drawDate" json:"draw_date"` // YYYY-MM-DD
	TotalReceipts       int        `bson:"totalReceipts" json:"total_receipts"`
	TotalAmount         float64    `bson:"totalAmount" json:"total_amount"`
	WinnerReceiptID     string     `bson:"winnerReceiptId,omitempty" json:"winner_receipt_id,omitempty"`
	WinnerCustomerID    string     `bson:"winnerCustomerId,omitempty" json:"winner_customer_id,omitempty"`
	WinnerCustomerPhone string     `bson:"winnerCustomerPhone,omitempty" json:"winner_customer_phone,omitempty"`
	PrizeAmount         float64    `bson:"prizeAmount" json:"prize_amount"`
	Status              DrawStatus `bson:"status" json:"status"`
	CreatedAt           time.Time  `bson:"createdAt" json:"created_at"`
}

// NewDraw creates a completed draw record for the given date.
func NewDraw(drawDate string) *Draw {
	return &Draw{
		ID:        uuid.NewString(),
		DrawDate:  drawDate,
		Status:    DrawStatusCompleted,
		CreatedAt: time.Now().UTC(),
	}
}

// DrawOutcome distinguishes the three results of a draw invocation.
type DrawOutcome string

const (
	DrawOutcomeWinner           DrawOutcome = "winner"
	DrawOutcomeAlreadyCompleted DrawOutcome = "already_completed"
	DrawOutcomeNoReceipts       DrawOutcome = "no_eligible_receipts"
)

// DrawResult is what a draw invocation reports back to its trigger.
type DrawResult struct {
	Outcome DrawOutcome `json:"outcome"`
	Draw    *Draw       `json:"draw,omitempty"`
	Winner  *Receipt    `json:"winner,omitempty"`
}
