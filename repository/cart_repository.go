package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/models"
)

// CartRepository defines the read side of the cart store. Clearing happens
// inside the checkout transaction so an aborted checkout keeps the cart.
type CartRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
}

// GormCartRepository implements CartRepository using GORM.
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository.
func NewGormCartRepository(db *gorm.DB) CartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
