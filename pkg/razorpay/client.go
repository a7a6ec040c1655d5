/**
 * @description
 * This package provides a client for the Razorpay Orders API. It encapsulates
 * the logic for making authenticated HTTP requests to the gateway, handling
 * request body construction, and parsing responses.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, net/http, time: Standard Go libraries.
 */
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.razorpay.com"

// ErrGatewayUnavailable is returned when the gateway cannot be reached or
// times out. The caller must leave its transaction pending so the user can
// retry; it must never fabricate a gateway reference.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Client is a client for the Razorpay API.
type Client struct {
	BaseURL       string
	KeyID         string
	KeySecret     string
	WebhookSecret string
	HTTPClient    *http.Client
}

// NewClient creates a new Razorpay API client.
func NewClient(baseURL, keyID, keySecret, webhookSecret string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL:       baseURL,
		KeyID:         keyID,
		KeySecret:     keySecret,
		WebhookSecret: webhookSecret,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// OrderRequest is the payload for creating a gateway order.
type OrderRequest struct {
	Amount         int64             `json:"amount"` // in paise
	Currency       string            `json:"currency"`
	Receipt        string            `json:"receipt"`
	Notes          map[string]string `json:"notes,omitempty"`
	PaymentCapture int               `json:"payment_capture"`
}

// Order is the gateway's representation of an opened payment intent.
// Its ID is the gateway_payment_id every later status update correlates on.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// ErrorResponse represents an error returned by the Razorpay API.
type ErrorResponse struct {
	ErrorDetail struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (e *ErrorResponse) Error() string {
	if e.ErrorDetail.Code != "" || e.ErrorDetail.Description != "" {
		return fmt.Sprintf("razorpay api error: %s - %s", e.ErrorDetail.Code, e.ErrorDetail.Description)
	}
	return "unknown razorpay api error"
}

// CreateOrder opens a payment intent with the gateway. The receipt is the
// internal transaction id, amount is in paise, payment capture is automatic.
func (c *Client) CreateOrder(ctx context.Context, amount int64, receipt string, notes map[string]string) (*Order, error) {
	reqPayload := OrderRequest{
		Amount:         amount,
		Currency:       "INR",
		Receipt:        receipt,
		Notes:          notes,
		PaymentCapture: 1,
	}

	body, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v1/orders", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.KeyID, c.KeySecret)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Printf("level=warn component=razorpay_client op=create_order msg=\"gateway call failed\" err=%v", err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read order response: %w", err)
	}

	if resp.StatusCode >= 500 {
		log.Printf("level=warn component=razorpay_client op=create_order status=%d msg=\"gateway server error\"", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp ErrorResponse
		if err := json.Unmarshal(bodyBytes, &errResp); err != nil {
			log.Printf("level=warn component=razorpay_client op=create_order status=%d msg=\"non-2xx response (unparsable error body)\"", resp.StatusCode)
			return nil, fmt.Errorf("failed to decode error response (status %d)", resp.StatusCode)
		}
		log.Printf("level=warn component=razorpay_client op=create_order status=%d code=%q detail=%q", resp.StatusCode, errResp.ErrorDetail.Code, errResp.ErrorDetail.Description)
		return nil, &errResp
	}

	var order Order
	if err := json.Unmarshal(bodyBytes, &order); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}
	if order.ID == "" {
		return nil, errors.New("gateway returned an order without an id")
	}
	return &order, nil
}

// VerifyWebhookSignature checks a webhook delivery against the provisioned
// webhook secret.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	return VerifyWebhookSignature(body, signature, c.WebhookSecret)
}

// VerifyPaymentSignature checks a client checkout confirmation against the
// API key secret.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return VerifyPaymentSignature(orderID, paymentID, signature, c.KeySecret)
}

// CheckoutKeyID returns the public API key id the client app needs to launch
// the gateway checkout UI.
func (c *Client) CheckoutKeyID() string {
	return c.KeyID
}
