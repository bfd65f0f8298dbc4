package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/kafka"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/models"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/repository"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/statemachine"
)

// Replayed gateway callbacks are remembered this long in redis. The durable
// guard is the order's payment state; the cache only short-circuits.
const replayCacheTTL = 24 * time.Hour

// PaymentService drives the payment lifecycle of an order against the
// external gateway and the order state machine.
type PaymentService interface {
	CreateOrderPayment(ctx context.Context, orderID, userID uuid.UUID) (*models.CreatePaymentResponse, *ServiceError)
	VerifyPayment(ctx context.Context, req *models.VerifyPaymentRequest) (*models.VerifyPaymentResponse, *ServiceError)
	HandlePaymentFailure(ctx context.Context, gatewayOrderID, reason string) (*models.PaymentFailureResponse, *ServiceError)
	RefundPayment(ctx context.Context, orderID, userID uuid.UUID, amount *float64) (*models.RefundResponse, *ServiceError)
	GetPaymentStatus(ctx context.Context, orderID, userID uuid.UUID) (*models.PaymentStatusResponse, *ServiceError)
}

type paymentServiceImpl struct {
	orderRepo repository.OrderRepository
	idemRepo  repository.IdempotencyRepository
	gateway   PaymentGateway
	producer  kafka.ProducerAPI
	currency  string
	logger    *zap.Logger
}

// NewPaymentService creates a new PaymentService. idemRepo and producer may
// be nil; both are best-effort layers.
func NewPaymentService(
	orderRepo repository.OrderRepository,
	idemRepo repository.IdempotencyRepository,
	gateway PaymentGateway,
	producer kafka.ProducerAPI,
	currency string,
	logger *zap.Logger,
) PaymentService {
	return &paymentServiceImpl{
		orderRepo: orderRepo,
		idemRepo:  idemRepo,
		gateway:   gateway,
		producer:  producer,
		currency:  currency,
		logger:    logger,
	}
}

func (s *paymentServiceImpl) CreateOrderPayment(ctx context.Context, orderID, userID uuid.UUID) (*models.CreatePaymentResponse, *ServiceError) {
	order, err := s.orderRepo.FindByIDAndUserID(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFoundError("Order not found")
		}
		s.logger.Error("Failed to load order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, newInternalError("Failed to create payment")
	}

	if order.PaymentStatus != models.PaymentStatusPending {
		return nil, newConflictError("Payment already processed for this order")
	}

	// The receipt keys the gateway request, so a retry after a lost response
	// returns the same intent instead of opening a second one.
	amount := minorUnits(order.TotalAmount)
	gatewayOrder, err := s.gateway.CreateOrder(ctx, amount, s.currency, order.OrderNumber)
	if err != nil {
		s.logger.Warn("Gateway order creation failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return nil, newExternalServiceError("Payment gateway unavailable, please retry")
	}

	if err := s.orderRepo.SetPaymentIntentID(ctx, orderID, gatewayOrder.ID); err != nil {
		if errors.Is(err, repository.ErrIntentConflict) {
			return nil, newConflictError("A different payment intent is already attached to this order")
		}
		s.logger.Error("Failed to persist payment intent",
			zap.String("order_id", orderID.String()),
			zap.String("intent_id", gatewayOrder.ID),
			zap.Error(err),
		)
		return nil, newInternalError("Failed to create payment")
	}

	s.logger.Info("Payment intent created",
		zap.String("order_id", orderID.String()),
		zap.String("intent_id", gatewayOrder.ID),
		zap.Int64("amount", gatewayOrder.Amount),
	)

	return &models.CreatePaymentResponse{
		GatewayOrderID: gatewayOrder.ID,
		Amount:         gatewayOrder.Amount,
		Currency:       gatewayOrder.Currency,
		Receipt:        gatewayOrder.Receipt,
		OrderNumber:    order.OrderNumber,
		TotalAmount:    order.TotalAmount,
	}, nil
}

func (s *paymentServiceImpl) VerifyPayment(ctx context.Context, req *models.VerifyPaymentRequest) (*models.VerifyPaymentResponse, *ServiceError) {
	if !s.gateway.VerifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
		// Never trust the caller's word for a successful payment. A bad
		// signature is a potential forgery, not a retryable failure.
		s.logger.Warn("Payment signature mismatch, possible forgery",
			zap.String("gateway_order_id", req.GatewayOrderID),
			zap.String("gateway_payment_id", req.GatewayPaymentID),
		)
		return nil, newSecurityError("Payment verification failed")
	}

	order, err := s.orderRepo.FindByPaymentIntentID(ctx, req.GatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFoundError("Order not found for this payment")
		}
		s.logger.Error("Failed to resolve order by intent", zap.String("intent_id", req.GatewayOrderID), zap.Error(err))
		return nil, newInternalError("Failed to verify payment")
	}

	if order.PaymentStatus == models.PaymentStatusPaid {
		if order.GatewayPaymentID != nil && *order.GatewayPaymentID == req.GatewayPaymentID {
			// At-least-once delivery: same confirmation, same outcome, no
			// second transition and no duplicate ledger entry.
			s.logger.Info("Duplicate payment confirmation, replaying result",
				zap.String("order_id", order.ID.String()),
				zap.String("gateway_payment_id", req.GatewayPaymentID),
			)
			return verifiedResponse(order, req.GatewayPaymentID), nil
		}
		return nil, newConflictError("Payment already processed for this order")
	}

	if s.idemRepo != nil {
		if seenOrderID, err := s.idemRepo.Get(ctx, req.GatewayPaymentID); err == nil && seenOrderID == order.ID.String() {
			// The payment was verified before, yet the durable state is no
			// longer PAID (e.g. since refunded). Replaying success here
			// would contradict the order row, so this is a conflict just
			// like the cache-miss path below.
			s.logger.Info("Replay of a confirmation for an order that has moved on",
				zap.String("order_id", seenOrderID),
				zap.String("payment_status", order.PaymentStatus),
				zap.String("gateway_payment_id", req.GatewayPaymentID),
			)
			return nil, newConflictError("Payment already processed for this order")
		}
	}

	if err := statemachine.ValidatePaymentStatus(order.PaymentStatus, models.PaymentStatusPaid); err != nil {
		return nil, newConflictError(err.Error())
	}
	if err := statemachine.ValidateOrderStatus(order.Status, models.OrderStatusConfirmed); err != nil {
		return nil, newConflictError(err.Error())
	}

	updates := map[string]interface{}{
		"status":             models.OrderStatusConfirmed,
		"payment_status":     models.PaymentStatusPaid,
		"gateway_payment_id": req.GatewayPaymentID,
	}
	expect := map[string]interface{}{
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
	}
	if err := s.orderRepo.UpdateStatusWithHistory(ctx, order.ID, updates, expect, models.OrderStatusConfirmed, "Payment successful", nil); err != nil {
		if errors.Is(err, repository.ErrStateChanged) {
			// Lost a duplicate-delivery race: another delivery of this
			// confirmation committed first. Re-read and replay its outcome.
			current, rerr := s.orderRepo.FindByPaymentIntentID(ctx, req.GatewayOrderID)
			if rerr == nil && current.PaymentStatus == models.PaymentStatusPaid &&
				current.GatewayPaymentID != nil && *current.GatewayPaymentID == req.GatewayPaymentID {
				s.logger.Info("Concurrent duplicate confirmation, replaying result",
					zap.String("order_id", current.ID.String()),
					zap.String("gateway_payment_id", req.GatewayPaymentID),
				)
				return verifiedResponse(current, req.GatewayPaymentID), nil
			}
			return nil, newConflictError("Payment already processed for this order")
		}
		s.logger.Error("Failed to confirm payment", zap.String("order_id", order.ID.String()), zap.Error(err))
		return nil, newInternalError("Failed to verify payment")
	}

	if s.idemRepo != nil {
		if err := s.idemRepo.Set(ctx, req.GatewayPaymentID, order.ID.String(), replayCacheTTL); err != nil {
			s.logger.Warn("Failed to record replay key", zap.String("gateway_payment_id", req.GatewayPaymentID), zap.Error(err))
		}
	}

	s.publishPaymentEvent(ctx, models.PaymentEvent{
		Type:             models.EventPaymentSuccess,
		OrderID:          order.ID.String(),
		UserID:           order.UserID.String(),
		PaymentIntentID:  req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Amount:           minorUnits(order.TotalAmount),
		Currency:         s.currency,
		Timestamp:        time.Now().UTC(),
	})

	s.logger.Info("Payment verified",
		zap.String("order_id", order.ID.String()),
		zap.String("gateway_payment_id", req.GatewayPaymentID),
	)
	return verifiedResponse(order, req.GatewayPaymentID), nil
}

func (s *paymentServiceImpl) HandlePaymentFailure(ctx context.Context, gatewayOrderID, reason string) (*models.PaymentFailureResponse, *ServiceError) {
	order, err := s.orderRepo.FindByPaymentIntentID(ctx, gatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFoundError("Order not found for this payment")
		}
		s.logger.Error("Failed to resolve order by intent", zap.String("intent_id", gatewayOrderID), zap.Error(err))
		return nil, newInternalError("Failed to record payment failure")
	}

	if order.PaymentStatus == models.PaymentStatusFailed {
		// Replayed failure callback.
		return failureResponse(order), nil
	}
	if err := statemachine.ValidatePaymentStatus(order.PaymentStatus, models.PaymentStatusFailed); err != nil {
		return nil, newConflictError(err.Error())
	}

	if reason == "" {
		reason = "Unknown reason"
	}

	// Order status stays PENDING so the customer can retry payment.
	updates := map[string]interface{}{"payment_status": models.PaymentStatusFailed}
	expect := map[string]interface{}{"payment_status": order.PaymentStatus}
	remarks := fmt.Sprintf("Payment failed: %s", reason)
	if err := s.orderRepo.UpdateStatusWithHistory(ctx, order.ID, updates, expect, order.Status, remarks, nil); err != nil {
		if errors.Is(err, repository.ErrStateChanged) {
			current, rerr := s.orderRepo.FindByPaymentIntentID(ctx, gatewayOrderID)
			if rerr == nil && current.PaymentStatus == models.PaymentStatusFailed {
				// a concurrent delivery of the same failure won
				return failureResponse(current), nil
			}
			return nil, newConflictError("Payment already processed for this order")
		}
		s.logger.Error("Failed to record payment failure", zap.String("order_id", order.ID.String()), zap.Error(err))
		return nil, newInternalError("Failed to record payment failure")
	}

	s.publishPaymentEvent(ctx, models.PaymentEvent{
		Type:            models.EventPaymentFailed,
		OrderID:         order.ID.String(),
		UserID:          order.UserID.String(),
		PaymentIntentID: gatewayOrderID,
		Amount:          minorUnits(order.TotalAmount),
		Currency:        s.currency,
		Timestamp:       time.Now().UTC(),
	})

	s.logger.Info("Payment failure recorded",
		zap.String("order_id", order.ID.String()),
		zap.String("reason", reason),
	)
	return failureResponse(order), nil
}

func (s *paymentServiceImpl) RefundPayment(ctx context.Context, orderID, userID uuid.UUID, amount *float64) (*models.RefundResponse, *ServiceError) {
	order, err := s.orderRepo.FindByIDAndUserID(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFoundError("Order not found")
		}
		s.logger.Error("Failed to load order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, newInternalError("Failed to process refund")
	}

	if order.PaymentStatus != models.PaymentStatusPaid {
		return nil, newConflictError("Order is not eligible for refund")
	}
	if order.PaymentIntentID == nil {
		return nil, newConflictError("No payment intent recorded for this order")
	}
	if order.GatewayPaymentID == nil {
		return nil, newConflictError("No captured payment recorded for this order")
	}

	refundAmount := order.TotalAmount
	if amount != nil {
		if *amount > order.TotalAmount {
			return nil, newValidationError("Refund amount exceeds order total")
		}
		refundAmount = *amount
	}

	if err := statemachine.ValidatePaymentStatus(order.PaymentStatus, models.PaymentStatusRefunded); err != nil {
		return nil, newConflictError(err.Error())
	}
	if err := statemachine.ValidateOrderStatus(order.Status, models.OrderStatusCancelled); err != nil {
		return nil, newConflictError(err.Error())
	}

	// The gateway settles refunds asynchronously; a failure here leaves the
	// order untouched and the caller retries. The refund id is what a later
	// confirmation callback would carry.
	refund, err := s.gateway.CreateRefund(ctx, *order.GatewayPaymentID, minorUnits(refundAmount))
	if err != nil {
		s.logger.Warn("Gateway refund failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return nil, newExternalServiceError("Payment gateway unavailable, please retry")
	}

	updates := map[string]interface{}{
		"status":         models.OrderStatusCancelled,
		"payment_status": models.PaymentStatusRefunded,
	}
	expect := map[string]interface{}{
		"status":         order.Status,
		"payment_status": models.PaymentStatusPaid,
	}
	remarks := fmt.Sprintf("Refund processed for %.2f %s", refundAmount, s.currency)
	if err := s.orderRepo.UpdateStatusWithHistory(ctx, orderID, updates, expect, models.OrderStatusCancelled, remarks, &userID); err != nil {
		if errors.Is(err, repository.ErrStateChanged) {
			// the order moved between the eligibility read and the commit;
			// the gateway refund id stays available for reconciliation
			s.logger.Warn("Order state changed during refund",
				zap.String("order_id", orderID.String()),
				zap.String("refund_id", refund.ID),
			)
			return nil, newConflictError("Order is not eligible for refund")
		}
		s.logger.Error("Failed to apply refund transition", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, newInternalError("Failed to process refund")
	}

	s.publishPaymentEvent(ctx, models.PaymentEvent{
		Type:             models.EventPaymentRefunded,
		OrderID:          order.ID.String(),
		UserID:           order.UserID.String(),
		PaymentIntentID:  *order.PaymentIntentID,
		GatewayPaymentID: *order.GatewayPaymentID,
		Amount:           minorUnits(refundAmount),
		Currency:         s.currency,
		Timestamp:        time.Now().UTC(),
	})

	s.logger.Info("Refund processed",
		zap.String("order_id", orderID.String()),
		zap.String("refund_id", refund.ID),
		zap.Float64("refund_amount", refundAmount),
	)

	return &models.RefundResponse{
		Success:      true,
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		RefundAmount: refundAmount,
		Message:      "Refund processed successfully",
	}, nil
}

func (s *paymentServiceImpl) GetPaymentStatus(ctx context.Context, orderID, userID uuid.UUID) (*models.PaymentStatusResponse, *ServiceError) {
	order, err := s.orderRepo.FindByIDAndUserID(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFoundError("Order not found")
		}
		s.logger.Error("Failed to load order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, newInternalError("Failed to fetch payment status")
	}

	return &models.PaymentStatusResponse{
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		PaymentStatus:   order.PaymentStatus,
		TotalAmount:     order.TotalAmount,
		PaymentIntentID: order.PaymentIntentID,
	}, nil
}

func (s *paymentServiceImpl) publishPaymentEvent(ctx context.Context, event models.PaymentEvent) {
	if s.producer == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal payment event", zap.Error(err))
		return
	}
	if err := s.producer.Publish(ctx, event.OrderID, payload); err != nil {
		s.logger.Warn("Failed to publish payment event",
			zap.String("event_type", event.Type),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}

func verifiedResponse(order *models.Order, paymentID string) *models.VerifyPaymentResponse {
	return &models.VerifyPaymentResponse{
		Success:     true,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		PaymentID:   paymentID,
		Message:     "Payment verified successfully",
	}
}

func failureResponse(order *models.Order) *models.PaymentFailureResponse {
	return &models.PaymentFailureResponse{
		Success:     true,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Message:     "Payment failure recorded",
	}
}

func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
