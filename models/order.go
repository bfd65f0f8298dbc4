package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order statuses
const (
	OrderStatusPending   = "PENDING"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// Payment statuses
const (
	PaymentStatusPending  = "PENDING"
	PaymentStatusPaid     = "PAID"
	PaymentStatusFailed   = "FAILED"
	PaymentStatusRefunded = "REFUNDED"
)

type Order struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber       string    `gorm:"uniqueIndex;not null" json:"orderNumber"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	TotalAmount       float64   `gorm:"not null" json:"totalAmount"`
	ShippingAddress   string    `gorm:"type:text;not null" json:"shippingAddress"`
	Pincode           string    `gorm:"type:varchar(10);not null" json:"pincode"`
	Status            string    `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	PaymentStatus     string    `gorm:"type:varchar(20);not null;default:'PENDING'" json:"paymentStatus"`
	PaymentIntentID   *string   `gorm:"uniqueIndex" json:"paymentIntentId,omitempty"`
	GatewayPaymentID  *string   `gorm:"uniqueIndex" json:"gatewayPaymentId,omitempty"`
	EstimatedDelivery time.Time `json:"estimatedDelivery"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	// Orders are never hard-deleted; CANCELLED is the terminal state.
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	OrderItems []OrderItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// OrderItem snapshots the offer price at checkout time and is immutable after.
type OrderItem struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID  uuid.UUID `gorm:"type:uuid;not null;index" json:"orderId"`
	OfferID  uuid.UUID `gorm:"type:uuid;not null" json:"offerId"`
	Quantity int       `gorm:"not null" json:"quantity"`
	Price    float64   `gorm:"not null" json:"price"`
	Total    float64   `gorm:"not null" json:"total"`
}

// OrderStatusHistory is the append-only lifecycle ledger for an order.
type OrderStatusHistory struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"orderId"`
	Status    string     `gorm:"type:varchar(20);not null" json:"status"`
	Remarks   string     `gorm:"type:text" json:"remarks"`
	ActorID   *uuid.UUID `gorm:"type:uuid" json:"actorId,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}
