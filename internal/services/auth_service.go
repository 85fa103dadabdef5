package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/retailrewards/retail-rewards-backend/internal/apperrors"
	"github.com/retailrewards/retail-rewards-backend/internal/config"
	"github.com/retailrewards/retail-rewards-backend/internal/models"
	"github.com/retailrewards/retail-rewards-backend/internal/repositories"
	"github.com/retailrewards/retail-rewards-backend/internal/utils"
)

// ErrInvalidCredentials is returned for any authentication failure. It is
// deliberately indistinguishable between unknown email and wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Compile-time check to ensure AuthServiceImpl implements AuthService
var _ AuthService = (*AuthServiceImpl)(nil)

// AuthServiceImpl handles admin authentication
type AuthServiceImpl struct {
	adminUserRepo repositories.AdminUserRepository
	cfg           *config.Config
	logger        *slog.Logger
}

// NewAuthService creates a new AuthServiceImpl
func NewAuthService(adminUserRepo repositories.AdminUserRepository, cfg *config.Config, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		adminUserRepo: adminUserRepo,
		cfg:           cfg,
		logger:        logger,
	}
}

// Register creates a new admin account
func (s *AuthServiceImpl) Register(ctx context.Context, req models.RegisterRequest) (*models.AdminUser, error) {
	_, err := s.adminUserRepo.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, fmt.Errorf("admin with email %s already exists: %w", req.Email, apperrors.ErrConflict)
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := &models.AdminUser{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  string(hashedPassword),
		Role:      "admin",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.adminUserRepo.Create(ctx, adminUser); err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	s.logger.Info("admin registered", "email", req.Email)
	adminUser.Password = ""
	return adminUser, nil
}

// Login authenticates an admin and returns a signed JWT
func (s *AuthServiceImpl) Login(ctx context.Context, req models.LoginRequest) (string, *models.AdminUser, error) {
	adminUser, err := s.adminUserRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(adminUser.Password), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(adminUser.ID.Hex(), adminUser.Email, adminUser.Role, s.cfg)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("admin logged in", "email", req.Email)
	adminUser.Password = ""
	return token, adminUser, nil
}
