package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/retailrewards/retail-rewards-backend/internal/fraud"
	"github.com/retailrewards/retail-rewards-backend/internal/models"
	"github.com/retailrewards/retail-rewards-backend/internal/repositories"
)

type demoShop struct {
	name    string
	address string
	lat     float64
	lon     float64
}

// Demo shops across major South African retail centres.
var demoShops = []demoShop{
	{"Checkers Sandton City", "Sandton City Mall, Rivonia Rd, Sandton, Johannesburg", -26.1076, 28.0567},
	{"Pick n Pay Rosebank", "The Zone @ Rosebank, Oxford Rd, Rosebank, Johannesburg", -26.1452, 28.0436},
	{"Woolworths Melrose Arch", "Melrose Arch, Melrose, Johannesburg", -26.1340, 28.0690},
	{"Shoprite Soweto", "Maponya Mall, Chris Hani Rd, Soweto", -26.2678, 27.8893},
	{"Pick n Pay V&A Waterfront", "V&A Waterfront, Cape Town", -33.9036, 18.4208},
	{"Checkers Canal Walk", "Canal Walk Shopping Centre, Century City, Cape Town", -33.8941, 18.5123},
	{"Woolworths Cavendish", "Cavendish Square, Claremont, Cape Town", -33.9833, 18.4614},
	{"Pick n Pay Gateway", "Gateway Theatre of Shopping, Umhlanga, Durban", -29.7294, 31.0693},
	{"Checkers Pavilion", "The Pavilion, Westville, Durban", -29.8494, 30.9278},
	{"Woolworths Menlyn", "Menlyn Park Shopping Centre, Pretoria", -25.7823, 28.2756},
	{"Spar Brooklyn Mall", "Brooklyn Mall, Pretoria", -25.7714, 28.2378},
	{"Checkers Walmer Park", "Walmer Park Shopping Centre, Port Elizabeth", -33.9756, 25.6051},
}

var demoCustomers = []struct {
	phone string
	name  string
}{
	{"+27821234567", "Thabo Mokoena"},
	{"+27839876543", "Naledi Dlamini"},
	{"+27724567890", "Sipho Nkosi"},
	{"+27845551234", "Lerato Molefe"},
	{"+27716789012", "Mandla Zulu"},
	{"+27823456789", "Nomvula Khumalo"},
}

// fraudScenario drives the distance distribution of seeded receipts so the
// dashboard shows every tier.
type fraudScenario struct {
	minKm, maxKm float64
}

// Compile-time check to ensure SeedServiceImpl implements SeedService
var _ SeedService = (*SeedServiceImpl)(nil)

// SeedServiceImpl loads demo data for local runs and demos
type SeedServiceImpl struct {
	customerRepo repositories.CustomerRepository
	shopRepo     repositories.ShopRepository
	receiptRepo  repositories.ReceiptRepository
	drawRepo     repositories.DrawRepository
	assessor     *fraud.Assessor
	rng          *rand.Rand
	logger       *slog.Logger
}

// NewSeedService creates a new SeedServiceImpl
func NewSeedService(
	customerRepo repositories.CustomerRepository,
	shopRepo repositories.ShopRepository,
	receiptRepo repositories.ReceiptRepository,
	drawRepo repositories.DrawRepository,
	assessor *fraud.Assessor,
	rng *rand.Rand,
	logger *slog.Logger,
) *SeedServiceImpl {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SeedServiceImpl{
		customerRepo: customerRepo,
		shopRepo:     shopRepo,
		receiptRepo:  receiptRepo,
		drawRepo:     drawRepo,
		assessor:     assessor,
		rng:          rng,
		logger:       logger,
	}
}

// Seed wipes the promotion collections and loads seven days of demo receipts
// with a realistic mix of fraud scenarios.
func (s *SeedServiceImpl) Seed(ctx context.Context) (*SeedSummary, error) {
	for _, wipe := range []func(context.Context) error{
		s.customerRepo.DeleteAll,
		s.receiptRepo.DeleteAll,
		s.shopRepo.DeleteAll,
		s.drawRepo.DeleteAll,
	} {
		if err := wipe(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear demo collections: %w", err)
		}
	}

	shops := make([]*models.Shop, 0, len(demoShops))
	for _, d := range demoShops {
		lat, lon := d.lat, d.lon
		shop := models.NewShop(d.name, d.address, &lat, &lon)
		if err := s.shopRepo.Create(ctx, shop); err != nil {
			return nil, err
		}
		shops = append(shops, shop)
	}

	customers := make([]*models.Customer, 0, len(demoCustomers))
	for _, d := range demoCustomers {
		customer := models.NewCustomer(d.phone, d.name)
		if err := s.customerRepo.Create(ctx, customer); err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}

	summary := &SeedSummary{
		Customers: len(customers),
		Shops:     len(shops),
		ByTier:    map[string]int{},
	}

	now := time.Now().UTC()
	for daysAgo := 0; daysAgo < 7; daysAgo++ {
		day := now.AddDate(0, 0, -daysAgo)
		numReceipts := 8 + s.rng.Intn(11)

		for i := 0; i < numReceipts; i++ {
			customer := customers[s.rng.Intn(len(customers))]
			shop := shops[s.rng.Intn(len(shops))]
			amount := math.Round((50+s.rng.Float64()*1950)*100) / 100

			scenario := s.pickScenario()
			uploadLat, uploadLon := s.offsetLocation(*shop.Latitude, *shop.Longitude, scenario)

			receipt := models.NewReceipt(customer.ID, customer.PhoneNumber)
			receipt.ShopID = shop.ID
			receipt.ShopName = shop.Name
			receipt.Amount = amount
			receipt.Items = []models.LineItem{
				{Name: "Groceries", Price: math.Round(amount*0.4*100) / 100, Quantity: 1},
				{Name: "Household", Price: math.Round(amount*0.35*100) / 100, Quantity: 1},
				{Name: "Personal Care", Price: math.Round(amount*0.25*100) / 100, Quantity: 1},
			}
			receipt.UploadLatitude = &uploadLat
			receipt.UploadLongitude = &uploadLon
			receipt.ShopLatitude = shop.Latitude
			receipt.ShopLongitude = shop.Longitude
			receipt.ShopAddress = shop.Address
			receipt.CreatedAt = time.Date(day.Year(), day.Month(), day.Day(),
				8+s.rng.Intn(15), s.rng.Intn(60), 0, 0, time.UTC)

			receipt.DistanceKm = fraud.DistanceKm(shop.Latitude, shop.Longitude, &uploadLat, &uploadLon)
			assessment := s.assessor.Assess(receipt.DistanceKm, amount)
			receipt.FraudTier = assessment.Tier
			receipt.FraudScore = assessment.Score
			receipt.FraudReason = assessment.Reason
			receipt.Status = fraud.StatusForTier(assessment.Tier)

			if err := s.receiptRepo.Create(ctx, receipt); err != nil {
				return nil, err
			}
			if err := s.customerRepo.IncrementReceiptTotals(ctx, customer.ID, 1, amount); err != nil {
				return nil, err
			}
			if err := s.shopRepo.IncrementTotals(ctx, shop.ID, 1, amount); err != nil {
				return nil, err
			}

			summary.Receipts++
			summary.ByTier[string(assessment.Tier)]++
		}
	}

	s.logger.Info("demo data seeded",
		"customers", summary.Customers,
		"shops", summary.Shops,
		"receipts", summary.Receipts,
	)
	return summary, nil
}

// pickScenario returns a distance band: 70% local, 15% review range, 10%
// suspicious range, 5% far enough to flag.
func (s *SeedServiceImpl) pickScenario() fraudScenario {
	roll := s.rng.Intn(100) + 1
	switch {
	case roll <= 70:
		return fraudScenario{0, 30}
	case roll <= 85:
		return fraudScenario{55, 90}
	case roll <= 95:
		return fraudScenario{105, 180}
	default:
		return fraudScenario{500, 1400}
	}
}

// offsetLocation moves a point a random direction by a distance inside the
// scenario band, using the rough 111 km per degree conversion.
func (s *SeedServiceImpl) offsetLocation(lat, lon float64, sc fraudScenario) (float64, float64) {
	distanceKm := sc.minKm + s.rng.Float64()*(sc.maxKm-sc.minKm)
	angle := s.rng.Float64() * 2 * math.Pi
	return lat + (distanceKm/111)*math.Cos(angle),
		lon + (distanceKm/111)*math.Sin(angle)
}
