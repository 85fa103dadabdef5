package fraud

import (
	"fmt"
	"math"

	"github.com/retailrewards/retail-rewards-backend/internal/models"
)

// Thresholds holds the distance cut-offs (km) between fraud tiers.
type Thresholds struct {
	ValidKm      float64 // at or below: valid
	ReviewKm     float64 // at or below: review
	SuspiciousKm float64 // at or below: suspicious; above: flagged
}

// DefaultThresholds are the production cut-offs.
var DefaultThresholds = Thresholds{
	ValidKm:      50,
	ReviewKm:     100,
	SuspiciousKm: 200,
}

// Assessment is the result of scoring a receipt for distance-based fraud.
type Assessment struct {
	Tier   models.FraudTier
	Score  int // 0-100, higher is more suspicious
	Reason string
}

// Assessor maps a shop-to-upload distance to a fraud tier and score.
type Assessor struct {
	thresholds Thresholds
}

// NewAssessor creates an Assessor with the given thresholds.
func NewAssessor(t Thresholds) *Assessor {
	return &Assessor{thresholds: t}
}

// Assess scores a receipt. distanceKm is nil when either location is unknown;
// such receipts go to manual review rather than being assumed valid. amount is
// accepted for future amount-based weighting and is currently unused.
func (a *Assessor) Assess(distanceKm *float64, amount float64) Assessment {
	_ = amount

	if distanceKm == nil {
		return Assessment{
			Tier:   models.FraudTierReview,
			Score:  30,
			Reason: "Location data incomplete - manual review required",
		}
	}

	d := *distanceKm
	switch {
	case d <= a.thresholds.ValidKm:
		return Assessment{
			Tier:  models.FraudTierValid,
			Score: int(math.Max(0, math.Floor(d))),
		}
	case d <= a.thresholds.ReviewKm:
		return Assessment{
			Tier:   models.FraudTierReview,
			Score:  50 + int((d-a.thresholds.ValidKm)*0.5),
			Reason: fmt.Sprintf("Upload location %.2fkm from shop - may need verification", d),
		}
	case d <= a.thresholds.SuspiciousKm:
		return Assessment{
			Tier:   models.FraudTierSuspicious,
			Score:  75 + int((d-a.thresholds.ReviewKm)*0.25),
			Reason: fmt.Sprintf("Upload location %.2fkm from shop - suspicious distance", d),
		}
	default:
		return Assessment{
			Tier:   models.FraudTierFlagged,
			Score:  100,
			Reason: fmt.Sprintf("Upload location %.2fkm from shop - likely fraudulent", d),
		}
	}
}

// StatusForTier derives a receipt's lifecycle status from its fraud tier.
// Flagged receipts are held for manual review before entering the draw pool.
func StatusForTier(tier models.FraudTier) models.ReceiptStatus {
	if tier == models.FraudTierFlagged {
		return models.ReceiptStatusReview
	}
	return models.ReceiptStatusProcessed
}
