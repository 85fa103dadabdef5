package models

// TierDistanceStats aggregates receipt distances per fraud tier.
type TierDistanceStats struct {
	Tier        FraudTier `bson:"_id" json:"tier"`
	AvgDistance float64   `bson:"avgDistance" json:"avg"`
	MaxDistance float64   `bson:"maxDistance" json:"max"`
	Count       int64     `bson:"count" json:"count"`
}

// DailySpending is one day's receipt volume and spend.
type DailySpending struct {
	Date     string  `bson:"_id" json:"date"` // YYYY-MM-DD
	Amount   float64 `bson:"total" json:"amount"`
	Receipts int64   `bson:"count" json:"receipts"`
}

// HourCount is the receipt count for one hour of the day.
type HourCount struct {
	Hour  int   `bson:"_id" json:"hour"`
	Count int64 `bson:"count" json:"count"`
}

// FraudStats summarises fraud classification across all receipts.
type FraudStats struct {
	TotalReceipts int64                           `json:"total_receipts"`
	Valid         int64                           `json:"valid"`
	Review        int64                           `json:"review"`
	Suspicious    int64                           `json:"suspicious"`
	Flagged       int64                           `json:"flagged"`
	FraudRate     float64                         `json:"fraud_rate"` // percent of non-valid receipts
	DistanceStats map[FraudTier]TierDistanceStats `json:"distance_stats"`
}

// PlatformOverview summarises the whole platform for the analytics dashboard.
type PlatformOverview struct {
	TotalCustomers int64   `json:"total_customers"`
	TotalReceipts  int64   `json:"total_receipts"`
	TotalShops     int64   `json:"total_shops"`
	TotalDraws     int64   `json:"total_draws"`
	TotalSpent     float64 `json:"total_spent"`
	TotalWinnings  float64 `json:"total_winnings"`
}
