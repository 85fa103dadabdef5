package models

import (
	"time"

	"github.com/google/uuid"
)

// Shop represents a retail outlet referenced by receipts. Shops are
// deduplicated by case-insensitive name; ReceiptCount and TotalSales are
// maintained with atomic $inc updates.
type Shop struct {
	ID           string    `bson:"id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Address      string    `bson:"address,omitempty" json:"address,omitempty"`
	Latitude     *float64  `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude    *float64  `bson:"longitude,omitempty" json:"longitude,omitempty"`
	ReceiptCount int       `bson:"receiptCount" json:"receipt_count"`
	TotalSales   float64   `bson:"totalSales" json:"total_sales"`
	CreatedAt    time.Time `bson:"createdAt" json:"created_at"`
}

// NewShop creates a shop with a fresh ID. Coordinates stay nil when the
// geocoder could not resolve the shop; they must never be backfilled from a
// customer's upload location.
func NewShop(name, address string, lat, lon *float64) *Shop {
	return &Shop{
		ID:        uuid.NewString(),
		Name:      name,
		Address:   address,
		Latitude:  lat,
		Longitude: lon,
		CreatedAt: time.Now().UTC(),
	}
}
