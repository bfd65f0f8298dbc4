package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/models"
)

// OfferRepository defines the interface for offer reads. The checkout
// pre-check prices each line from here; the authoritative stock check is the
// conditional decrement inside the checkout transaction.
type OfferRepository interface {
	FindActiveByID(ctx context.Context, offerID uuid.UUID) (*models.Offer, error)
}

// GormOfferRepository implements OfferRepository using GORM.
type GormOfferRepository struct {
	db *gorm.DB
}

// NewGormOfferRepository creates a new GormOfferRepository.
func NewGormOfferRepository(db *gorm.DB) OfferRepository {
	return &GormOfferRepository{db: db}
}

func (r *GormOfferRepository) FindActiveByID(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", offerID, true).
		First(&offer).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}
