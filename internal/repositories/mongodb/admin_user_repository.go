package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/retailrewards/retail-rewards-backend/internal/apperrors"
	"github.com/retailrewards/retail-rewards-backend/internal/models"
	"github.com/retailrewards/retail-rewards-backend/internal/repositories"
)

// AdminUserRepository implements the repositories.AdminUserRepository interface
type AdminUserRepository struct {
	collection *mongo.Collection
}

// NewAdminUserRepository creates a new AdminUserRepository
func NewAdminUserRepository(db *mongo.Database) repositories.AdminUserRepository {
	return &AdminUserRepository{
		collection: db.Collection("admin_users"),
	}
}

// Create creates a new admin user
func (r *AdminUserRepository) Create(ctx context.Context, adminUser *models.AdminUser) error {
	adminUser.ID = primitive.NewObjectID()
	adminUser.CreatedAt = time.Now()
	adminUser.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, adminUser)
	return err
}

// FindByEmail finds an admin user by email
func (r *AdminUserRepository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var adminUser models.AdminUser
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&adminUser)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &adminUser, nil
}
