package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/kafka"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/models"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/repository"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/statemachine"
)

// How many times checkout retries when the generated order number collides.
const orderNumberAttempts = 3

// CheckoutService converts carts or explicit item lists into durable orders
// and serves the customer/operator order reads.
type CheckoutService interface {
	Checkout(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.CheckoutResponse, *ServiceError)
	GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) (*models.OrderListResponse, *ServiceError)
	GetOrderByID(ctx context.Context, userID, orderID uuid.UUID) (*models.OrderDetailResponse, *ServiceError)
	GetAllOrders(ctx context.Context, page, limit int) (*models.OrderListResponse, *ServiceError)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateOrderStatusRequest, actorID uuid.UUID) *ServiceError
}

type checkoutServiceImpl struct {
	orderRepo   repository.OrderRepository
	offerRepo   repository.OfferRepository
	cartRepo    repository.CartRepository
	historyRepo repository.HistoryRepository
	producer    kafka.ProducerAPI
	logger      *zap.Logger
}

// NewCheckoutService creates a new CheckoutService. The producer may be nil;
// event publishing is best-effort.
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	offerRepo repository.OfferRepository,
	cartRepo repository.CartRepository,
	historyRepo repository.HistoryRepository,
	producer kafka.ProducerAPI,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		orderRepo:   orderRepo,
		offerRepo:   offerRepo,
		cartRepo:    cartRepo,
		historyRepo: historyRepo,
		producer:    producer,
		logger:      logger,
	}
}

func (s *checkoutServiceImpl) Checkout(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.CheckoutResponse, *ServiceError) {
	lines := req.Items
	fromCart := false

	if len(lines) == 0 {
		cartItems, err := s.cartRepo.FindByUserID(ctx, userID)
		if err != nil {
			s.logger.Error("Failed to read cart", zap.String("user_id", userID.String()), zap.Error(err))
			return nil, newInternalError("Failed to process checkout")
		}
		if len(cartItems) == 0 {
			return nil, newValidationError("Cart is empty")
		}
		for _, item := range cartItems {
			lines = append(lines, models.CheckoutItem{OfferID: item.OfferID, Quantity: item.Quantity})
		}
		fromCart = true
	}

	// Price each line from the current offer. This read is advisory: the
	// authoritative stock check is the conditional decrement inside the
	// checkout transaction.
	items := make([]models.OrderItem, 0, len(lines))
	decrements := make([]repository.StockDecrement, 0, len(lines))
	var totalAmount float64
	for _, line := range lines {
		offer, err := s.offerRepo.FindActiveByID(ctx, line.OfferID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, newNotFoundError(fmt.Sprintf("Offer %s not found or inactive", line.OfferID))
			}
			s.logger.Error("Failed to load offer", zap.String("offer_id", line.OfferID.String()), zap.Error(err))
			return nil, newInternalError("Failed to process checkout")
		}
		if offer.StockQuantity < line.Quantity {
			return nil, newConflictError(fmt.Sprintf("Offer %s not available or insufficient stock", line.OfferID))
		}

		lineTotal := offer.Price * float64(line.Quantity)
		items = append(items, models.OrderItem{
			ID:       uuid.New(),
			OfferID:  line.OfferID,
			Quantity: line.Quantity,
			Price:    offer.Price,
			Total:    lineTotal,
		})
		decrements = append(decrements, repository.StockDecrement{OfferID: line.OfferID, Quantity: line.Quantity})
		totalAmount += lineTotal
	}

	var clearCartUserID *uuid.UUID
	if fromCart {
		clearCartUserID = &userID
	}

	var order *models.Order
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		now := time.Now()
		order = &models.Order{
			ID:                uuid.New(),
			OrderNumber:       generateOrderNumber(now),
			UserID:            userID,
			TotalAmount:       totalAmount,
			ShippingAddress:   req.ShippingAddress,
			Pincode:           req.Pincode,
			Status:            models.OrderStatusPending,
			PaymentStatus:     models.PaymentStatusPending,
			EstimatedDelivery: estimateDelivery(now, req.Pincode),
		}
		for i := range items {
			items[i].OrderID = order.ID
		}

		err := s.orderRepo.CreateCheckout(ctx, order, items, decrements, clearCartUserID)
		if err == nil {
			break
		}

		var stockErr *repository.InsufficientStockError
		if errors.As(err, &stockErr) {
			// Lost the stock race after the pre-check; nothing committed.
			return nil, newConflictError(fmt.Sprintf("Offer %s not available or insufficient stock", stockErr.OfferID))
		}
		if isDuplicateKeyError(err) && attempt < orderNumberAttempts-1 {
			s.logger.Warn("Order number collision, retrying",
				zap.String("order_number", order.OrderNumber),
				zap.Int("attempt", attempt+1),
			)
			continue
		}

		s.logger.Error("Checkout transaction failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, newInternalError("Failed to create order")
	}

	s.publishOrderEvent(ctx, models.OrderEvent{
		Type:        models.EventOrderCreated,
		OrderID:     order.ID.String(),
		UserID:      userID.String(),
		OrderNumber: order.OrderNumber,
		TotalAmount: order.TotalAmount,
		Timestamp:   time.Now().UTC(),
	})

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Float64("total_amount", order.TotalAmount),
		zap.Bool("from_cart", fromCart),
	)

	return &models.CheckoutResponse{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: req.PaymentMethod,
		Message:       "Order created successfully. Proceed to payment.",
	}, nil
}

func (s *checkoutServiceImpl) GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) (*models.OrderListResponse, *ServiceError) {
	orders, total, err := s.orderRepo.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		s.logger.Error("Failed to fetch orders", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, newInternalError("Failed to fetch orders")
	}
	return buildOrderList(orders, total, page, limit), nil
}

func (s *checkoutServiceImpl) GetAllOrders(ctx context.Context, page, limit int) (*models.OrderListResponse, *ServiceError) {
	orders, total, err := s.orderRepo.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to fetch all orders", zap.Error(err))
		return nil, newInternalError("Failed to fetch orders")
	}
	return buildOrderList(orders, total, page, limit), nil
}

func (s *checkoutServiceImpl) GetOrderByID(ctx context.Context, userID, orderID uuid.UUID) (*models.OrderDetailResponse, *ServiceError) {
	order, err := s.orderRepo.FindByIDAndUserID(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFoundError("Order not found")
		}
		s.logger.Error("Failed to fetch order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, newInternalError("Failed to fetch order")
	}

	history, err := s.historyRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		s.logger.Error("Failed to fetch status history", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, newInternalError("Failed to fetch order")
	}

	return &models.OrderDetailResponse{Order: *order, StatusHistory: history}, nil
}

func (s *checkoutServiceImpl) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateOrderStatusRequest, actorID uuid.UUID) *ServiceError {
	if !statemachine.IsOrderStatus(req.Status) {
		return newValidationError(fmt.Sprintf("Unknown order status %q", req.Status))
	}
	if req.PaymentStatus != nil && !statemachine.IsPaymentStatus(*req.PaymentStatus) {
		return newValidationError(fmt.Sprintf("Unknown payment status %q", *req.PaymentStatus))
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newNotFoundError("Order not found")
		}
		s.logger.Error("Failed to load order", zap.String("order_id", orderID.String()), zap.Error(err))
		return newInternalError("Failed to update order")
	}

	if err := statemachine.ValidateOrderStatus(order.Status, req.Status); err != nil {
		return newConflictError(err.Error())
	}
	updates := map[string]interface{}{"status": req.Status}
	expect := map[string]interface{}{"status": order.Status}
	if req.PaymentStatus != nil {
		if err := statemachine.ValidatePaymentStatus(order.PaymentStatus, *req.PaymentStatus); err != nil {
			return newConflictError(err.Error())
		}
		updates["payment_status"] = *req.PaymentStatus
		expect["payment_status"] = order.PaymentStatus
	}

	remarks := req.Remarks
	if remarks == "" {
		remarks = fmt.Sprintf("Status updated to %s", req.Status)
	}

	if err := s.orderRepo.UpdateStatusWithHistory(ctx, orderID, updates, expect, req.Status, remarks, &actorID); err != nil {
		if errors.Is(err, repository.ErrStateChanged) {
			// another operator or a payment callback moved the order first
			return newConflictError("Order status changed concurrently, please retry")
		}
		s.logger.Error("Failed to apply status transition", zap.String("order_id", orderID.String()), zap.Error(err))
		return newInternalError("Failed to update order")
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", orderID.String()),
		zap.String("from", order.Status),
		zap.String("to", req.Status),
		zap.String("actor_id", actorID.String()),
	)
	return nil
}

func (s *checkoutServiceImpl) publishOrderEvent(ctx context.Context, event models.OrderEvent) {
	if s.producer == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal order event", zap.Error(err))
		return
	}
	if err := s.producer.Publish(ctx, event.OrderID, payload); err != nil {
		// Best-effort: the order is already durable.
		s.logger.Warn("Failed to publish order event",
			zap.String("event_type", event.Type),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}

func buildOrderList(orders []models.Order, total int64, page, limit int) *models.OrderListResponse {
	summaries := make([]models.OrderSummary, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, models.OrderSummary{
			ID:            o.ID,
			OrderNumber:   o.OrderNumber,
			TotalAmount:   o.TotalAmount,
			Status:        o.Status,
			PaymentStatus: o.PaymentStatus,
			CreatedAt:     o.CreatedAt,
			ItemCount:     len(o.OrderItems),
		})
	}
	return &models.OrderListResponse{
		Orders: summaries,
		Meta: models.MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			TotalPages:  calculateTotalPages(total, limit),
			HasMore:     total > int64(page*limit),
		},
	}
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

const orderNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateOrderNumber(now time.Time) string {
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = orderNumberCharset[rand.Intn(len(orderNumberCharset))]
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}

// estimateDelivery derives a stable 3-6 day window from the destination
// pincode so repeated reads of the same order never disagree.
func estimateDelivery(createdAt time.Time, pincode string) time.Time {
	h := fnv.New32a()
	h.Write([]byte(pincode))
	days := 3 + int(h.Sum32()%4)
	return createdAt.AddDate(0, 0, days)
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
