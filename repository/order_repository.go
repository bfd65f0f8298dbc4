package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/models"
)

// StockDecrement is one conditional stock reservation inside the checkout
// transaction.
type StockDecrement struct {
	OfferID  uuid.UUID
	Quantity int
}

// InsufficientStockError reports which offer lost the stock race.
type InsufficientStockError struct {
	OfferID uuid.UUID
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("offer %s not available or insufficient stock", e.OfferID)
}

// ErrIntentConflict is returned when an order already carries a different
// payment intent id. The intent id is assigned exactly once.
var ErrIntentConflict = errors.New("payment intent already assigned to this order")

// ErrStateChanged is returned when a guarded transition matched no row: the
// order is gone or its state moved since the caller read it. The caller
// decides between replaying an idempotent outcome and reporting a conflict.
var ErrStateChanged = errors.New("order state changed since read")

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// CreateCheckout runs the atomic checkout unit: conditional stock
	// decrements, order row, line rows, optional cart clear and the initial
	// ledger entry. Everything commits or nothing does.
	CreateCheckout(ctx context.Context, order *models.Order, items []models.OrderItem, decrements []StockDecrement, clearCartUserID *uuid.UUID) error
	FindByIDAndUserID(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindByPaymentIntentID(ctx context.Context, intentID string) (*models.Order, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error)
	FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error)
	SetPaymentIntentID(ctx context.Context, orderID uuid.UUID, intentID string) error
	// UpdateStatusWithHistory applies a validated transition together with
	// exactly one ledger entry as a single transaction. The update is
	// conditioned on expect (column -> value read by the caller), so a
	// concurrent transition makes it match nothing instead of overwriting;
	// that case surfaces as ErrStateChanged.
	UpdateStatusWithHistory(ctx context.Context, orderID uuid.UUID, updates, expect map[string]interface{}, historyStatus, remarks string, actorID *uuid.UUID) error
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository.
func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) CreateCheckout(ctx context.Context, order *models.Order, items []models.OrderItem, decrements []StockDecrement, clearCartUserID *uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Decrement iff enough stock remains at decrement time. A plain
		// read-then-write would oversell under concurrent checkouts.
		for _, d := range decrements {
			res := tx.Model(&models.Offer{}).
				Where("id = ? AND is_active = ? AND stock_quantity >= ?", d.OfferID, true, d.Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", d.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &InsufficientStockError{OfferID: d.OfferID}
			}
		}

		if err := tx.Omit("OrderItems").Create(order).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}

		if clearCartUserID != nil {
			if err := tx.Where("user_id = ?", *clearCartUserID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
		}

		entry := models.OrderStatusHistory{
			OrderID: order.ID,
			Status:  models.OrderStatusPending,
			Remarks: "Order created",
		}
		return tx.Create(&entry).Error
	})
}

func (r *GormOrderRepository) FindByIDAndUserID(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("id = ?", orderID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByPaymentIntentID(ctx context.Context, intentID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Where("payment_intent_id = ?", intentID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByUserID retrieves orders for a specific user with pagination.
func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("OrderItems").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// FindAll retrieves all orders with pagination.
func (r *GormOrderRepository) FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("OrderItems").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// SetPaymentIntentID assigns the gateway intent id at most once. Re-assigning
// the same id is idempotent; a different id is a conflict.
func (r *GormOrderRepository) SetPaymentIntentID(ctx context.Context, orderID uuid.UUID, intentID string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND (payment_intent_id IS NULL OR payment_intent_id = ?)", orderID, intentID).
		Update("payment_intent_id", intentID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrIntentConflict
	}
	return nil
}

func (r *GormOrderRepository) UpdateStatusWithHistory(ctx context.Context, orderID uuid.UUID, updates, expect map[string]interface{}, historyStatus, remarks string, actorID *uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Guard the update on the state the caller validated against. A
		// read-then-write here would let two concurrent callbacks both
		// commit the same transition and double the ledger entry.
		q := tx.Model(&models.Order{}).Where("id = ?", orderID)
		for col, val := range expect {
			q = q.Where(fmt.Sprintf("%s = ?", col), val)
		}
		res := q.Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStateChanged
		}

		entry := models.OrderStatusHistory{
			OrderID: orderID,
			Status:  historyStatus,
			Remarks: remarks,
			ActorID: actorID,
		}
		return tx.Create(&entry).Error
	})
}
