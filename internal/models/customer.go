package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer represents a participant identified by phone number.
// Lifetime aggregates are maintained with atomic $inc updates and are
// never recomputed from receipts.
type Customer struct {
	ID                string     `bson:"id" json:"id"`
	PhoneNumber       string     `bson:"phoneNumber" json:"phone_number"`
	Name              string     `bson:"name,omitempty" json:"name,omitempty"`
	TotalReceipts     int        `bson:"totalReceipts" json:"total_receipts"`
	TotalSpent        float64    `bson:"totalSpent" json:"total_spent"`
	TotalWins         int        `bson:"totalWins" json:"total_wins"`
	TotalWinnings     float64    `bson:"totalWinnings" json:"total_winnings"`
	LastLatitude      *float64   `bson:"lastLatitude,omitempty" json:"last_latitude,omitempty"`
	LastLongitude     *float64   `bson:"lastLongitude,omitempty" json:"last_longitude,omitempty"`
	LocationUpdatedAt *time.Time `bson:"locationUpdatedAt,omitempty" json:"location_updated_at,omitempty"`
	CreatedAt         time.Time  `bson:"createdAt" json:"created_at"`
}

// NewCustomer creates a customer with a fresh ID and zeroed aggregates.
func NewCustomer(phoneNumber, name string) *Customer {
	return &Customer{
		ID:          uuid.NewString(),
		PhoneNumber: phoneNumber,
		Name:        name,
		CreatedAt:   time.Now().UTC(),
	}
}

// CreateCustomerRequest is the payload for POST /customers.
type CreateCustomerRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Name        string `json:"name"`
}

// UpdateLocationRequest is the payload for POST /customers/location.
type UpdateLocationRequest struct {
	PhoneNumber string  `json:"phone_number" binding:"required"`
	Latitude    float64 `json:"latitude" binding:"required"`
	Longitude   float64 `json:"longitude" binding:"required"`
}
