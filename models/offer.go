package models

import (
	"time"

	"github.com/google/uuid"
)

// Offer is a seller's price/stock listing for a product. The checkout core
// only ever mutates it through a conditional stock decrement.
type Offer struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID     uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	SellerID      uuid.UUID `gorm:"type:uuid;not null;index" json:"sellerId"`
	Price         float64   `gorm:"not null" json:"price"`
	StockQuantity int       `gorm:"not null;check:stock_quantity >= 0" json:"stockQuantity"`
	IsActive      bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
