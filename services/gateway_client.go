package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GatewayOrder is the gateway-side payment intent for one of our orders.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type GatewayRefund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// PaymentGateway is the network boundary to the external payment provider.
type PaymentGateway interface {
	// CreateOrder opens a payment intent. Amount is in the smallest currency
	// unit; receipt keys the request so retries return the same intent.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*GatewayOrder, error)
	// CreateRefund requests a refund against a captured payment. Settlement
	// is asynchronous on the gateway side; the returned id is what a later
	// confirmation callback would reference.
	CreateRefund(ctx context.Context, paymentID string, amount int64) (*GatewayRefund, error)
	// VerifySignature checks a callback signature without any state change.
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
}

// SignPayload computes the callback signature: HMAC-SHA256 over
// "<gatewayOrderID>|<gatewayPaymentID>" with the shared key secret.
func SignPayload(secret, gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

type gatewayClient struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

// NewGatewayClient creates a PaymentGateway talking to a Razorpay-style HTTP
// API with basic auth.
func NewGatewayClient(baseURL, keyID, keySecret string) PaymentGateway {
	return &gatewayClient{
		baseURL:    baseURL,
		keyID:      keyID,
		keySecret:  keySecret,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *gatewayClient) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*GatewayOrder, error) {
	body := map[string]interface{}{
		"amount":          amount,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}

	var out GatewayOrder
	if err := g.post(ctx, "/v1/orders", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *gatewayClient) CreateRefund(ctx context.Context, paymentID string, amount int64) (*GatewayRefund, error) {
	body := map[string]interface{}{
		"amount": amount,
	}

	var out GatewayRefund
	path := fmt.Sprintf("/v1/payments/%s/refund", paymentID)
	if err := g.post(ctx, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *gatewayClient) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	expected := SignPayload(g.keySecret, gatewayOrderID, gatewayPaymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (g *gatewayClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("payment gateway returned %d for %s", resp.StatusCode, path)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
