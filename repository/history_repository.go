package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/models"
)

// HistoryRepository reads the append-only status ledger. Entries are only
// ever written inside the transaction of the transition they record, so
// there is no standalone append here.
type HistoryRepository interface {
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error)
}

// GormHistoryRepository implements HistoryRepository using GORM.
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository.
func NewGormHistoryRepository(db *gorm.DB) HistoryRepository {
	return &GormHistoryRepository{db: db}
}

// FindByOrderID returns the order's timeline, newest first.
func (r *GormHistoryRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	var entries []models.OrderStatusHistory
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
