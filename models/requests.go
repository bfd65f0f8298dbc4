package models

import (
	"time"

	"github.com/google/uuid"
)

type CheckoutItem struct {
	OfferID  uuid.UUID `json:"offerId" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1"`
}

type CheckoutRequest struct {
	ShippingAddress string         `json:"shippingAddress" binding:"required"`
	Pincode         string         `json:"pincode" binding:"required"`
	PaymentMethod   string         `json:"paymentMethod" binding:"required"`
	Items           []CheckoutItem `json:"items" binding:"omitempty,dive"`
}

type CheckoutResponse struct {
	OrderID       uuid.UUID `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	TotalAmount   float64   `json:"totalAmount"`
	PaymentMethod string    `json:"paymentMethod"`
	Message       string    `json:"message"`
}

type OrderSummary struct {
	ID            uuid.UUID `json:"id"`
	OrderNumber   string    `json:"orderNumber"`
	TotalAmount   float64   `json:"totalAmount"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	CreatedAt     time.Time `json:"createdAt"`
	ItemCount     int       `json:"itemCount"`
}

type OrderListResponse struct {
	Orders []OrderSummary `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"totalOrders"`
	TotalPages  int64 `json:"totalPages"`
	HasMore     bool  `json:"hasMore"`
}

type OrderDetailResponse struct {
	Order         Order                `json:"order"`
	StatusHistory []OrderStatusHistory `json:"statusHistory"`
}

type UpdateOrderStatusRequest struct {
	Status        string  `json:"status" binding:"required"`
	PaymentStatus *string `json:"paymentStatus" binding:"omitempty"`
	Remarks       string  `json:"remarks" binding:"omitempty"`
}

type CreatePaymentResponse struct {
	GatewayOrderID string  `json:"gatewayOrderId"`
	Amount         int64   `json:"amount"`
	Currency       string  `json:"currency"`
	Receipt        string  `json:"receipt"`
	OrderNumber    string  `json:"orderNumber"`
	TotalAmount    float64 `json:"totalAmount"`
}

type VerifyPaymentRequest struct {
	GatewayOrderID   string `json:"gatewayOrderId" binding:"required"`
	GatewayPaymentID string `json:"gatewayPaymentId" binding:"required"`
	Signature        string `json:"signature" binding:"required"`
}

type VerifyPaymentResponse struct {
	Success     bool      `json:"success"`
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	PaymentID   string    `json:"paymentId"`
	Message     string    `json:"message"`
}

type PaymentFailureRequest struct {
	GatewayOrderID string `json:"gatewayOrderId" binding:"required"`
	Reason         string `json:"reason" binding:"omitempty"`
}

type PaymentFailureResponse struct {
	Success     bool      `json:"success"`
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Message     string    `json:"message"`
}

type RefundRequest struct {
	Amount *float64 `json:"amount" binding:"omitempty,gt=0"`
}

type RefundResponse struct {
	Success      bool      `json:"success"`
	OrderID      uuid.UUID `json:"orderId"`
	OrderNumber  string    `json:"orderNumber"`
	RefundAmount float64   `json:"refundAmount"`
	Message      string    `json:"message"`
}

type PaymentStatusResponse struct {
	OrderID         uuid.UUID `json:"orderId"`
	OrderNumber     string    `json:"orderNumber"`
	PaymentStatus   string    `json:"paymentStatus"`
	TotalAmount     float64   `json:"totalAmount"`
	PaymentIntentID *string   `json:"paymentIntentId"`
}
