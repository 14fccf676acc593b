// Package razorpay wraps the Razorpay SDK behind the payment-gateway
// interface used by the payment service.
package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	razorpaygo "github.com/razorpay/razorpay-go"

	"github.com/arvind9018/edusource-backend/services"
	"github.com/arvind9018/edusource-backend/utils/apperror"
)

// ErrMissingCredentials is returned when the key id or secret is absent
var ErrMissingCredentials = errors.New("razorpay key id and secret are required")

// Config holds Razorpay credentials
type Config struct {
	KeyID     string
	KeySecret string
}

// Client is the Razorpay-backed order gateway
type Client struct {
	api    *razorpaygo.Client
	secret string
}

// NewClient creates a Razorpay gateway client. It fails when either
// credential is missing so callers can fall back to an unconfigured
// (nil) gateway instead of issuing doomed API calls.
func NewClient(config Config) (*Client, error) {
	if config.KeyID == "" || config.KeySecret == "" {
		return nil, ErrMissingCredentials
	}

	return &Client{
		api:    razorpaygo.NewClient(config.KeyID, config.KeySecret),
		secret: config.KeySecret,
	}, nil
}

// CreateOrder creates an order with Razorpay. The notes map travels
// opaquely and comes back on the payment webhook/callback.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]interface{}) (*services.GatewayOrder, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}

	body, err := c.api.Order.Create(data, nil)
	if err != nil {
		if code, description, ok := parseProviderError(err); ok {
			message := description
			if message == "" {
				message = "Failed to create payment order."
			}
			return nil, apperror.Upstream(message, code, err)
		}
		return nil, fmt.Errorf("razorpay order create failed: %w", err)
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return nil, errors.New("razorpay order create returned no order id")
	}

	order := &services.GatewayOrder{
		ID:       id,
		Amount:   amount,
		Currency: currency,
	}
	// Echo back what the provider actually recorded when present
	if v, ok := body["amount"].(float64); ok {
		order.Amount = int64(v)
	}
	if v, ok := body["currency"].(string); ok && v != "" {
		order.Currency = v
	}

	return order, nil
}

// providerError mirrors the error body the Razorpay API returns
type providerError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// parseProviderError extracts the code and description from a Razorpay
// API error body. Transport-level failures are not JSON and report !ok.
func parseProviderError(err error) (code, description string, ok bool) {
	var body providerError
	if jsonErr := json.Unmarshal([]byte(err.Error()), &body); jsonErr != nil {
		return "", "", false
	}
	if body.Error.Code == "" && body.Error.Description == "" {
		return "", "", false
	}
	return body.Error.Code, body.Error.Description, true
}

// VerifySignature checks the callback signature Razorpay sends after
// checkout: hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
// Comparison is exact; any tampering with either id flips the result.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(c.secret, orderID, paymentID, signature)
}

// VerifySignature is the standalone form of the signature check,
// usable without a full client.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
