package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one line of a customer's cart. The cart lives next to the
// order tables so checkout can clear it inside the same transaction.
type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	OfferID   uuid.UUID `gorm:"type:uuid;not null" json:"offerId"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
