package models

import (
	"time"

	"github.com/google/uuid"
)

// ReceiptStatus represents the lifecycle state of a receipt.
type ReceiptStatus string

const (
	ReceiptStatusPending   ReceiptStatus = "pending"   // just received, extraction incomplete
	ReceiptStatusProcessed ReceiptStatus = "processed" // extracted, draw-eligible
	ReceiptStatusReview    ReceiptStatus = "review"    // held for manual fraud review
	ReceiptStatusWon       ReceiptStatus = "won"       // selected by a draw, terminal
	ReceiptStatusRejected  ReceiptStatus = "rejected"  // admin override, terminal
)

// FraudTier classifies a receipt's distance-based fraud risk.
type FraudTier string

const (
	FraudTierValid      FraudTier = "valid"
	FraudTierReview     FraudTier = "review"
	FraudTierSuspicious FraudTier = "suspicious"
	FraudTierFlagged    FraudTier = "flagged"
)

// LineItem is a single purchased item extracted from a receipt.
type LineItem struct {
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`
	Quantity int     `bson:"quantity" json:"quantity"`
}

// Receipt represents an uploaded retail receipt. Shop coordinates and upload
// coordinates are independent optional pairs; DistanceKm is set only when
// both are present.
type Receipt struct {
	ID            string     `bson:"id" json:"id"`
	CustomerID    string     `bson:"customerId" json:"customer_id"`
	CustomerPhone string     `bson:"customerPhone" json:"customer_phone"`
	ShopID        string     `bson:"shopId,omitempty" json:"shop_id,omitempty"`
	ShopName      string     `bson:"shopName,omitempty" json:"shop_name,omitempty"`
	Amount        float64    `bson:"amount" json:"amount"`
	Currency      string     `bson:"currency" json:"currency"`
	Items         []LineItem `bson:"items" json:"items"`
	RawText       string     `bson:"rawText,omitempty" json:"raw_text,omitempty"`
	ImageData     string     `bson:"imageData,omitempty" json:"-"` // base64, never serialized out

	// Customer location at upload time.
	UploadLatitude  *float64 `bson:"uploadLatitude,omitempty" json:"upload_latitude,omitempty"`
	UploadLongitude *float64 `bson:"uploadLongitude,omitempty" json:"upload_longitude,omitempty"`
	UploadAddress   string   `bson:"uploadAddress,omitempty" json:"upload_address,omitempty"`

	// Shop location sourced from the receipt / geocoder.
	ShopLatitude  *float64 `bson:"shopLatitude,omitempty" json:"shop_latitude,omitempty"`
	ShopLongitude *float64 `bson:"shopLongitude,omitempty" json:"shop_longitude,omitempty"`
	ShopAddress   string   `bson:"shopAddress,omitempty" json:"shop_address,omitempty"`

	// Fraud assessment.
	DistanceKm  *float64  `bson:"distanceKm,omitempty" json:"distance_km,omitempty"`
	FraudTier   FraudTier `bson:"fraudTier" json:"fraud_tier"`
	FraudScore  int       `bson:"fraudScore" json:"fraud_score"`
	FraudReason string    `bson:"fraudReason,omitempty" json:"fraud_reason,omitempty"`

	// Extraction provenance (bounding boxes etc.), passed through opaquely.
	Grounding map[string]interface{} `bson:"grounding,omitempty" json:"grounding,omitempty"`

	Status      ReceiptStatus `bson:"status" json:"status"`
	ReceiptDate string        `bson:"receiptDate,omitempty" json:"receipt_date,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt" json:"created_at"`
}

// NewReceipt creates a pending receipt owned by the given customer.
func NewReceipt(customerID, customerPhone string) *Receipt {
	return &Receipt{
		ID:            uuid.NewString(),
		CustomerID:    customerID,
		CustomerPhone: customerPhone,
		Currency:      "ZAR",
		Items:         []LineItem{},
		FraudTier:     FraudTierValid,
		Status:        ReceiptStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
}

// ReceiptFilter narrows receipt list queries.
type ReceiptFilter struct {
	Date      string // YYYY-MM-DD, matches the creation day
	Status    ReceiptStatus
	FraudTier FraudTier
}

// ProcessImageRequest is the payload sent by the WhatsApp relay for an
// incoming receipt photo.
type ProcessImageRequest struct {
	PhoneNumber string   `json:"phone_number" binding:"required"`
	ImageData   string   `json:"image_data" binding:"required"`
	MimeType    string   `json:"mime_type"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// UploadReceiptRequest is the payload for the direct web upload path.
type UploadReceiptRequest struct {
	PhoneNumber string   `json:"phone_number" binding:"required"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	ImageData   string   `json:"image_data"`
	ReceiptText string   `json:"receipt_text"`
	Amount      *float64 `json:"amount"`
	ShopName    string   `json:"shop_name"`
}
