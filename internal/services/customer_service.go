package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/retailrewards/retail-rewards-backend/internal/apperrors"
	"github.com/retailrewards/retail-rewards-backend/internal/models"
	"github.com/retailrewards/retail-rewards-backend/internal/repositories"
)

// Compile-time check to ensure CustomerServiceImpl implements CustomerService
var _ CustomerService = (*CustomerServiceImpl)(nil)

// CustomerServiceImpl handles customer-related business logic
type CustomerServiceImpl struct {
	customerRepo repositories.CustomerRepository
	logger       *slog.Logger
}

// NewCustomerService creates a new CustomerServiceImpl
func NewCustomerService(customerRepo repositories.CustomerRepository, logger *slog.Logger) *CustomerServiceImpl {
	return &CustomerServiceImpl{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// GetOrCreate returns the customer for a phone number, registering them on
// first contact. A name supplied later never overwrites an existing record.
func (s *CustomerServiceImpl) GetOrCreate(ctx context.Context, phoneNumber, name string) (*models.Customer, error) {
	customer, err := s.customerRepo.FindByPhone(ctx, phoneNumber)
	if err == nil {
		return customer, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}

	customer = models.NewCustomer(phoneNumber, name)
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	s.logger.Info("registered new customer", "phoneNumber", phoneNumber)
	return customer, nil
}

// GetByPhone retrieves a customer by phone number
func (s *CustomerServiceImpl) GetByPhone(ctx context.Context, phoneNumber string) (*models.Customer, error) {
	return s.customerRepo.FindByPhone(ctx, phoneNumber)
}

// List retrieves customers with pagination
func (s *CustomerServiceImpl) List(ctx context.Context, skip, limit int64) ([]*models.Customer, int64, error) {
	customers, err := s.customerRepo.FindAll(ctx, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// UpdateLocation stores a customer's last known location
func (s *CustomerServiceImpl) UpdateLocation(ctx context.Context, req models.UpdateLocationRequest) error {
	err := s.customerRepo.UpdateLocation(ctx, req.PhoneNumber, req.Latitude, req.Longitude, time.Now().UTC())
	if err != nil && !apperrors.IsNotFound(err) {
		return err
	}
	// An unknown phone number is not an error here; the customer record is
	// created lazily on their first receipt.
	return nil
}
