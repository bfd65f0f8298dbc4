package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/models"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/repository"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/services"
)

const testGatewaySecret = "test_secret_key"

// --- Fake gateway ---

type refundCall struct {
	paymentID string
	amount    int64
}

type fakeGateway struct {
	mu        sync.Mutex
	secret    string
	createErr error
	refundErr error
	created   int
	refunds   []refundCall
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{secret: testGatewaySecret}
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*services.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created++
	return &services.GatewayOrder{
		ID:       fmt.Sprintf("order_FG%04d", g.created),
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func (g *fakeGateway) CreateRefund(_ context.Context, paymentID string, amount int64) (*services.GatewayRefund, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	g.refunds = append(g.refunds, refundCall{paymentID: paymentID, amount: amount})
	return &services.GatewayRefund{
		ID:        fmt.Sprintf("rfnd_FG%04d", len(g.refunds)),
		PaymentID: paymentID,
		Amount:    amount,
		Status:    "processed",
	}, nil
}

func (g *fakeGateway) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return services.SignPayload(g.secret, gatewayOrderID, gatewayPaymentID) == signature
}

// --- Fake replay cache ---

type fakeIdemRepo struct {
	mu   sync.Mutex
	keys map[string]string
}

func newFakeIdemRepo() *fakeIdemRepo {
	return &fakeIdemRepo{keys: make(map[string]string)}
}

func (r *fakeIdemRepo) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys[key], nil
}

func (r *fakeIdemRepo) Set(_ context.Context, key, orderID string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[key] = orderID
	return nil
}

// --- Helpers ---

func newPaymentService(store *fakeStore, gateway *fakeGateway, idem *fakeIdemRepo, producer *mockProducer) services.PaymentService {
	var idemRepo repository.IdempotencyRepository
	if idem != nil {
		idemRepo = idem
	}
	return services.NewPaymentService(store, idemRepo, gateway, producer, "INR", zap.NewNop())
}

// seedOrder puts an order straight into the store in the given payment state.
func seedOrder(store *fakeStore, userID uuid.UUID, total float64, status, paymentStatus string) *models.Order {
	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   fmt.Sprintf("ORD-%d-TEST%d", time.Now().UnixMilli(), len(store.orders)),
		UserID:        userID,
		TotalAmount:   total,
		Status:        status,
		PaymentStatus: paymentStatus,
		CreatedAt:     time.Now(),
	}
	store.orders[order.ID] = order
	store.orderNumbers[order.OrderNumber] = true
	store.history[order.ID] = []models.OrderStatusHistory{{
		ID:      uuid.New(),
		OrderID: order.ID,
		Status:  models.OrderStatusPending,
		Remarks: "Order created",
	}}
	return order
}

func signedVerifyRequest(intentID, paymentID string) *models.VerifyPaymentRequest {
	return &models.VerifyPaymentRequest{
		GatewayOrderID:   intentID,
		GatewayPaymentID: paymentID,
		Signature:        services.SignPayload(testGatewaySecret, intentID, paymentID),
	}
}

// --- CreateOrderPayment ---

func TestCreateOrderPayment_Success(t *testing.T) {
	store := newFakeStore()
	gateway := newFakeGateway()
	svc := newPaymentService(store, gateway, newFakeIdemRepo(), &mockProducer{})

	userID := uuid.New()
	order := seedOrder(store, userID, 1119.00, models.OrderStatusPending, models.PaymentStatusPending)

	resp, serr := svc.CreateOrderPayment(context.Background(), order.ID, userID)

	assert.Nil(t, serr)
	assert.Equal(t, int64(111900), resp.Amount, "amount must be in minor units")
	assert.Equal(t, "INR", resp.Currency)
	assert.Equal(t, order.OrderNumber, resp.Receipt)
	assert.Equal(t, resp.GatewayOrderID, *store.orders[order.ID].PaymentIntentID)
}

func TestCreateOrderPayment_AlreadyPaid(t *testing.T) {
	store := newFakeStore()
	gateway := newFakeGateway()
	svc := newPaymentService(store, gateway, newFakeIdemRepo(), &mockProducer{})

	userID := uuid.New()
	order := seedOrder(store, userID, 500, models.OrderStatusConfirmed, models.PaymentStatusPaid)

	_, serr := svc.CreateOrderPayment(context.Background(), order.ID, userID)

	assert.NotNil(t, serr)
	assert.Equal(t, 409, serr.StatusCode)
	assert.Equal(t, 0, gateway.created, "no gateway call for a settled order")
}

func TestCreateOrderPayment_GatewayDown(t *testing.T) {
	store := newFakeStore()
	gateway := newFakeGateway()
	gateway.createErr = errors.New("connection refused")
	svc := newPaymentService(store, gateway, newFakeIdemRepo(), &mockProducer{})

	userID := uuid.New()
	order := seedOrder(store, userID, 500, models.OrderStatusPending, models.PaymentStatusPending)

	_, serr := svc.CreateOrderPayment(context.Background(), order.ID, userID)

	assert.NotNil(t, serr)
	assert.Equal(t, 502, serr.StatusCode)
	assert.Equal(t, services.KindExternalService, serr.Kind)
	assert.Nil(t, store.orders[order.ID].PaymentIntentID, "no intent persisted on gateway failure")
	assert.Equal(t, models.PaymentStatusPending, store.orders[order.ID].PaymentStatus)
}

func TestCreateOrderPayment_WrongUser(t *testing.T) {
	store := newFakeStore()
	svc := newPaymentService(store, newFakeGateway(), newFakeIdemRepo(), &mockProducer{})

	order := seedOrder(store, uuid.New(), 500, models.OrderStatusPending, models.PaymentStatusPending)

	_, serr := svc.CreateOrderPayment(context.Background(), order.ID, uuid.New())

	assert.NotNil(t, serr)
	assert.Equal(t, 404, serr.StatusCode)
}

// --- VerifyPayment ---

func TestVerifyPayment_Success(t *testing.T) {
	store := newFakeStore()
	gateway := newFakeGateway()
	idem := newFakeIdemRepo()
	producer := &mockProducer{}
	svc := newPaymentService(store, gateway, idem, producer)

	userID := uuid.New()
	order := seedOrder(store, userID, 750.25, models.OrderStatusPending, models.PaymentStatusPending)
	createResp, serr := svc.CreateOrderPayment(context.Background(), order.ID, userID)
	assert.Nil(t, serr)

	resp, serr := svc.VerifyPayment(context.Background(), signedVerifyRequest(createResp.GatewayOrderID, "pay_AB123"))

	assert.Nil(t, serr)
	assert.True(t, resp.Success)
	assert.Equal(t, order.ID, resp.OrderID)
	assert.Equal(t, "pay_AB123", resp.PaymentID)

	stored := store.orders[order.ID]
	assert.Equal(t, models.OrderStatusConfirmed, stored.Status)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
	assert.Equal(t, "pay_AB123", *stored.GatewayPaymentID)

	history := store.history[order.ID]
	assert.Len(t, history, 2)
	assert.Equal(t, models.OrderStatusConfirmed, history[1].Status)
	assert.Equal(t, "Payment successful", history[1].Remarks)
	assert.Nil(t, history[1].ActorID, "gateway-driven transition carries no actor")

	assert.Equal(t, order.ID.String(), idem.keys["pay_AB123"])
	assert.Equal(t, 1, producer.count())
}

func TestVerifyPayment_BadSignature(t *testing.T) {
	store := newFakeStore()
	svc := newPaymentService(store, newFakeGateway(), newFakeIdemRepo(), &mockProducer{})

	userID := uuid.New()
	order := seedOrder(store, userID, 500, models.OrderStatusPending, models.PaymentStatusPending)
	createResp, serr := svc.CreateOrderPayment(context.Background(), order.ID, userID)
	assert.Nil(t, serr)

	_, serr = svc.VerifyPayment(context.Background(), &models.VerifyPaymentRequest{
		GatewayOrderID:   createResp.GatewayOrderID,
		GatewayPaymentID: "pay_AB123",
		Signature:        "deadbeef",
	})

	assert.NotNil(t, serr)
	assert.Equal(t, 400, serr.StatusCode)
	assert.Equal(t, services.KindSecurity, serr.Kind)
	assert.Equal(t, models.PaymentStatusPending, store.orders[order.ID].PaymentStatus, "forged callback must not move state")
	assert.Len(t, store.history[order.ID], 1)
}

func TestVerifyPayment_UnknownIntent(t *testing.T) {
	store := newFakeStore()
	svc := newPaymentService(store, newFakeGateway(), newFakeIdemRepo(), &mockProducer{})

	_, serr := svc.VerifyPayment(context.Background(), signedVerifyRequest("order_FG9999", "pay_AB123"))

	assert.NotNil(t, serr)
	assert.Equal(t, 404, serr.StatusCode)
}

func TestVerifyPayment_DuplicateConfirmationReplays(t *testing.T) {
	store := newFakeStore()
	producer := &mockProducer{}
	svc := newPaymentService(store, newFakeGateway(), newFakeIdemRepo(), producer)

	userID := uuid.New()
	order := seedOrder(store, userID, 500, models.OrderStatusPending, models.PaymentStatusPending)
	createResp, serr := svc.CreateOrderPayment(context.Background(), order.ID, userID)
	assert.Nil(t, serr)

	req := signedVerifyRequest(createResp.GatewayOrderID, "pay_AB123")
	first, serr := svc.VerifyPayment(context.Background(), req)
	assert.Nil(t, serr)
	second, serr := svc.VerifyPayment(context.Background(), req)
	assert.Nil(t, serr)

	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, first.PaymentID, second.PaymentID)
	assert.Len(t, store.history[order.ID], 2, "replay must not append a second ledger entry")
	assert.Equal(t, 1, producer.count(), "replay must not publish a second event")
}

// staleIntentReads serves one stale snapshot for FindByPaymentIntentID, then
// delegates. It models the second of two concurrent callback deliveries,
// which read the order before the first one committed.
type staleIntentReads struct {
	repository.OrderRepository
	stale *models.Order
}

func (r *staleIntentReads) FindByPaymentIntentID(ctx context.Context, intentID string) (*models.Order, error) {
	if r.stale != nil && r.stale.PaymentIntentID != nil && *r.stale.PaymentIntentID == intentID {
		o := *r.stale
		r.stale = nil
		return &o, nil
	}
	return r.OrderRepository.FindByPaymentIntentID(ctx, intentID)
}

func TestVerifyPayment_ConcurrentDuplicateDelivery(t *testing.T) {
	store := newFakeStore()
	producer := &mockProducer{}
	svc := newPaymentService(store, newFakeGateway(), nil, producer)

	userID := uuid.New()
	order := seedOrder(store, userID, 500, models.OrderStatusPending, models.PaymentStatusPending)
	createResp, serr := svc.CreateOrderPayment(context.Background(), order.ID, userID)
	assert.Nil(t, serr)

	// the losing delivery read the order while it was still PENDING
	stale := *store.orders[order.ID]
	staleRepo := &staleIntentReads{OrderRepository: store, stale: &stale}
	loser := services.NewPaymentService(staleRepo, nil, newFakeGateway(), producer, "INR", zap.NewNop())

	req := signedVerifyRequest(createResp.GatewayOrderID, "pay_AB123")
	winnerResp, serr := svc.VerifyPayment(context.Background(), req)
	assert.Nil(t, serr)

	// the stale delivery must not re-transition: its guarded update matches
	// nothing, and it replays the committed outcome instead
	loserResp, serr := loser.VerifyPayment(context.Background(), req)
	assert.Nil(t, serr)
	assert.True(t, loserResp.Success)
	assert.Equal(t, winnerResp.OrderID, loserResp.OrderID)
	assert.Equal(t, winnerResp.PaymentID, loserResp.PaymentID)

	stored := store.orders[order.ID]
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
	assert.Equal(t, "pay_AB123", *stored.GatewayPaymentID)
	assert.Len(t, store.history[order.ID], 2, "exactly one confirmation ledger entry")
	assert.Equal(t, 1, producer.count(), "only the winning delivery publishes")
}

func TestVerifyPayment_CacheHitAfterRefundConflicts(t *testing.T) {
	store := newFakeStore()
	idem := newFakeIdemRepo()
	svc := newPaymentService(store, newFakeGateway(), idem, &mockProducer{})

	userID := uuid.New()
	order := seedOrder(store, userID, 500, models.OrderStatusPending, models.PaymentStatusPending)
	createResp, serr := svc.CreateOrderPayment(context.Background(), order.ID, userID)
	assert.Nil(t, serr)

	req := signedVerifyRequest(createResp.GatewayOrderID, "pay_AB123")
	_, serr = svc.VerifyPayment(context.Background(), req)
	assert.Nil(t, serr)
	_, serr = svc.RefundPayment(context.Background(), order.ID, userID, nil)
	assert.Nil(t, serr)

	// the replay cache still remembers the payment, but the order has moved
	// on; a late redelivery must not report success against REFUNDED
	_, serr = svc.VerifyPayment(context.Background(), req)
	assert.NotNil(t, serr)
	assert.Equal(t, 409, serr.StatusCode)

	stored := store.orders[order.ID]
	assert.Equal(t, models.PaymentStatusRefunded, stored.PaymentStatus)
	assert.Equal(t, models.OrderStatusCancelled, stored.Status)
	assert.Len(t, store.history[order.ID], 3, "create, confirm, refund and nothing else")
}

func TestVerifyPayment_DifferentPaymentAfterPaid(t *testing.T) {
	store := newFakeStore()
	svc := newPaymentService(store, newFakeGateway(), newFakeIdemRepo(), &mockProducer{})

	userID := uuid.New()
	order := seedOrder(store, userID, 500, models.OrderStatusPending, models.PaymentStatusPending)
	createResp, serr := svc.CreateOrderPayment(context.Background(), order.ID, userID)
	assert.Nil(t, serr)

	_, serr = svc.VerifyPayment(context.Background(), signedVerifyRequest(createResp.GatewayOrderID, "pay_AB123"))
	assert.Nil(t, serr)

	_, serr = svc.VerifyPayment(context.Background(), signedVerifyRequest(createResp.GatewayOrderID, "pay_ZZ999"))
	assert.NotNil(t, serr)
	assert.Equal(t, 409, serr.StatusCode)
	assert.Equal(t, "pay_AB123", *store.orders[order.ID].GatewayPaymentID)
}

func TestVerifyPayment_AfterFailureSucceeds(t *testing.T) {
	store := newFakeStore()
	svc := newPaymentService(store, newFakeGateway(), newFakeIdemRepo(), &mockProducer{})

	userID := uuid.New()
	order := seedOrder(store, userID, 500, models.OrderStatusPending, models.PaymentStatusPending)
	createResp, serr := svc.CreateOrderPayment(context.Background(), order.ID, userID)
	assert.Nil(t, serr)

	_, serr = svc.HandlePaymentFailure(context.Background(), createResp.GatewayOrderID, "card declined")
	assert.Nil(t, serr)
	assert.Equal(t, models.PaymentStatusFailed, store.orders[order.ID].PaymentStatus)

	// retry with a fresh payment against the same intent
	resp, serr := svc.VerifyPayment(context.Background(), signedVerifyRequest(createResp.GatewayOrderID, "pay_RETRY1"))
	assert.Nil(t, serr)
	assert.True(t, resp.Success)
	assert.Equal(t, models.PaymentStatusPaid, store.orders[order.ID].PaymentStatus)
	assert.Equal(t, models.OrderStatusConfirmed, store.orders[order.ID].Status)
}

// --- HandlePaymentFailure ---

func TestHandlePaymentFailure_RecordsReason(t *testing.T) {
	store := newFakeStore()
	producer := &mockProducer{}
	svc := newPaymentService(store, newFakeGateway(), newFakeIdemRepo(), producer)

	userID := uuid.New()
	order := seedOrder(store, userID, 500, models.OrderStatusPending, models.PaymentStatusPending)
	createResp, serr := svc.CreateOrderPayment(context.Background(), order.ID, userID)
	assert.Nil(t, serr)

	resp, serr := svc.HandlePaymentFailure(context.Background(), createResp.GatewayOrderID, "card declined")

	assert.Nil(t, serr)
	assert.True(t, resp.Success)

	stored := store.orders[order.ID]
	assert.Equal(t, models.PaymentStatusFailed, stored.PaymentStatus)
	assert.Equal(t, models.OrderStatusPending, stored.Status, "order stays open for a payment retry")

	history := store.history[order.ID]
	assert.Len(t, history, 2)
	assert.Equal(t, "Payment failed: card declined", history[1].Remarks)
	assert.Equal(t, 1, producer.count())
}

func TestHandlePaymentFailure_DefaultReason(t *testing.T) {
	store := newFakeStore()
	svc := newPaymentService(store, newFakeGateway(), newFakeIdemRepo(), &mockProducer{})

	userID := uuid.New()
	order := seedOrder(store, userID, 500, models.OrderStatusPending, models.PaymentStatusPending)
	createResp, serr := svc.CreateOrderPayment(context.Background(), order.ID, userID)
	assert.Nil(t, serr)

	_, serr = svc.HandlePaymentFailure(context.Background(), createResp.GatewayOrderID, "")
	assert.Nil(t, serr)

	history := store.history[order.ID]
	assert.Equal(t, "Payment failed: Unknown reason", history[len(history)-1].Remarks)
}

func TestHandlePaymentFailure_Replay(t *testing.T) {
	store := newFakeStore()
	producer := &mockProducer{}
	svc := newPaymentService(store, newFakeGateway(), newFakeIdemRepo(), producer)

	userID := uuid.New()
	order := seedOrder(store, userID, 500, models.OrderStatusPending, models.PaymentStatusPending)
	createResp, serr := svc.CreateOrderPayment(context.Background(), order.ID, userID)
	assert.Nil(t, serr)

	_, serr = svc.HandlePaymentFailure(context.Background(), createResp.GatewayOrderID, "card declined")
	assert.Nil(t, serr)
	resp, serr := svc.HandlePaymentFailure(context.Background(), createResp.GatewayOrderID, "card declined")
	assert.Nil(t, serr)
	assert.True(t, resp.Success)

	assert.Len(t, store.history[order.ID], 2, "replayed failure must not append another ledger entry")
	assert.Equal(t, 1, producer.count())
}

func TestHandlePaymentFailure_AfterPaid(t *testing.T) {
	store := newFakeStore()
	svc := newPaymentService(store, newFakeGateway(), newFakeIdemRepo(), &mockProducer{})

	userID := uuid.New()
	order := seedOrder(store, userID, 500, models.OrderStatusPending, models.PaymentStatusPending)
	createResp, serr := svc.CreateOrderPayment(context.Background(), order.ID, userID)
	assert.Nil(t, serr)
	_, serr = svc.VerifyPayment(context.Background(), signedVerifyRequest(createResp.GatewayOrderID, "pay_AB123"))
	assert.Nil(t, serr)

	// late failure callback for an already-captured payment
	_, serr = svc.HandlePaymentFailure(context.Background(), createResp.GatewayOrderID, "timeout")
	assert.NotNil(t, serr)
	assert.Equal(t, 409, serr.StatusCode)
	assert.Equal(t, models.PaymentStatusPaid, store.orders[order.ID].PaymentStatus)
}

// --- RefundPayment ---

func paidOrder(t *testing.T, store *fakeStore, svc services.PaymentService, userID uuid.UUID, total float64) *models.Order {
	t.Helper()
	order := seedOrder(store, userID, total, models.OrderStatusPending, models.PaymentStatusPending)
	createResp, serr := svc.CreateOrderPayment(context.Background(), order.ID, userID)
	assert.Nil(t, serr)
	_, serr = svc.VerifyPayment(context.Background(), signedVerifyRequest(createResp.GatewayOrderID, "pay_"+order.ID.String()[:8]))
	assert.Nil(t, serr)
	return store.orders[order.ID]
}

func TestRefundPayment_FullRefund(t *testing.T) {
	store := newFakeStore()
	gateway := newFakeGateway()
	producer := &mockProducer{}
	svc := newPaymentService(store, gateway, newFakeIdemRepo(), producer)

	userID := uuid.New()
	order := paidOrder(t, store, svc, userID, 1250.50)

	resp, serr := svc.RefundPayment(context.Background(), order.ID, userID, nil)

	assert.Nil(t, serr)
	assert.True(t, resp.Success)
	assert.InDelta(t, 1250.50, resp.RefundAmount, 0.001)

	stored := store.orders[order.ID]
	assert.Equal(t, models.OrderStatusCancelled, stored.Status)
	assert.Equal(t, models.PaymentStatusRefunded, stored.PaymentStatus)

	assert.Len(t, gateway.refunds, 1)
	assert.Equal(t, *order.GatewayPaymentID, gateway.refunds[0].paymentID)
	assert.Equal(t, int64(125050), gateway.refunds[0].amount)

	history := store.history[order.ID]
	last := history[len(history)-1]
	assert.Equal(t, models.OrderStatusCancelled, last.Status)
	assert.Equal(t, userID, *last.ActorID)
}

func TestRefundPayment_PartialAmount(t *testing.T) {
	store := newFakeStore()
	gateway := newFakeGateway()
	svc := newPaymentService(store, gateway, newFakeIdemRepo(), &mockProducer{})

	userID := uuid.New()
	order := paidOrder(t, store, svc, userID, 1000)

	amount := 250.0
	resp, serr := svc.RefundPayment(context.Background(), order.ID, userID, &amount)

	assert.Nil(t, serr)
	assert.InDelta(t, 250.0, resp.RefundAmount, 0.001)
	assert.Equal(t, int64(25000), gateway.refunds[0].amount)
}

func TestRefundPayment_AmountExceedsTotal(t *testing.T) {
	store := newFakeStore()
	svc := newPaymentService(store, newFakeGateway(), newFakeIdemRepo(), &mockProducer{})

	userID := uuid.New()
	order := paidOrder(t, store, svc, userID, 1000)

	amount := 1000.01
	_, serr := svc.RefundPayment(context.Background(), order.ID, userID, &amount)

	assert.NotNil(t, serr)
	assert.Equal(t, 400, serr.StatusCode)
	assert.Equal(t, models.PaymentStatusPaid, store.orders[order.ID].PaymentStatus)
}

func TestRefundPayment_NotPaid(t *testing.T) {
	store := newFakeStore()
	gateway := newFakeGateway()
	svc := newPaymentService(store, gateway, newFakeIdemRepo(), &mockProducer{})

	userID := uuid.New()
	order := seedOrder(store, userID, 500, models.OrderStatusPending, models.PaymentStatusPending)

	_, serr := svc.RefundPayment(context.Background(), order.ID, userID, nil)

	assert.NotNil(t, serr)
	assert.Equal(t, 409, serr.StatusCode)
	assert.Empty(t, gateway.refunds)
}

func TestRefundPayment_GatewayDownLeavesStateUntouched(t *testing.T) {
	store := newFakeStore()
	gateway := newFakeGateway()
	svc := newPaymentService(store, gateway, newFakeIdemRepo(), &mockProducer{})

	userID := uuid.New()
	order := paidOrder(t, store, svc, userID, 1000)
	entriesBefore := len(store.history[order.ID])

	gateway.refundErr = errors.New("connection refused")
	_, serr := svc.RefundPayment(context.Background(), order.ID, userID, nil)

	assert.NotNil(t, serr)
	assert.Equal(t, 502, serr.StatusCode)

	stored := store.orders[order.ID]
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
	assert.Equal(t, models.OrderStatusConfirmed, stored.Status)
	assert.Len(t, store.history[order.ID], entriesBefore)
}

// --- GetPaymentStatus ---

func TestGetPaymentStatus(t *testing.T) {
	store := newFakeStore()
	svc := newPaymentService(store, newFakeGateway(), newFakeIdemRepo(), &mockProducer{})

	userID := uuid.New()
	order := paidOrder(t, store, svc, userID, 600)

	resp, serr := svc.GetPaymentStatus(context.Background(), order.ID, userID)

	assert.Nil(t, serr)
	assert.Equal(t, order.OrderNumber, resp.OrderNumber)
	assert.Equal(t, models.PaymentStatusPaid, resp.PaymentStatus)
	assert.NotNil(t, resp.PaymentIntentID)
}

func TestGetPaymentStatus_NotFound(t *testing.T) {
	store := newFakeStore()
	svc := newPaymentService(store, newFakeGateway(), newFakeIdemRepo(), &mockProducer{})

	_, serr := svc.GetPaymentStatus(context.Background(), uuid.New(), uuid.New())

	assert.NotNil(t, serr)
	assert.Equal(t, 404, serr.StatusCode)
}
