// Package payment provides a client for the external purchase/payment service.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vaquejada/senhas/internal/logger"
)

// Order is the purchase intent handed to the payment service. Amounts are integer cents.
type Order struct {
	PurchaseID     string   `json:"purchase_id"`
	BuyerID        string   `json:"buyer_id"`
	EventID        int      `json:"event_id"`
	CategoryID     int      `json:"category_id"`
	RecordIDs      []string `json:"record_ids"`
	Numbers        []int    `json:"numbers"`
	Quantity       int      `json:"quantity"`
	UnitPriceCents int64    `json:"unit_price_cents"`
	TotalCents     int64    `json:"total_cents"`
}

// Receipt is returned when the payment service accepts an order
type Receipt struct {
	Reference   string `json:"reference"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	// Pending is set when the order was accepted but payment has not settled yet
	Pending bool `json:"pending,omitempty"`
}

// response is the wire shape of every payment service reply
type response struct {
	Status      string `json:"status"`
	Reference   string `json:"reference"`
	CheckoutURL string `json:"checkout_url"`
	Reason      string `json:"reason"`
}

// RejectedError is returned when the payment service refuses an order.
// Reason is the service's message, unmodified.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return e.Reason
}

// IsRejected reports whether err is a payment rejection and returns it
func IsRejected(err error) (*RejectedError, bool) {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// Client defines the interface for payment operations
type Client interface {
	// SubmitPurchase hands an order to the payment service
	SubmitPurchase(ctx context.Context, order Order) (*Receipt, error)
	// BaseURL returns the configured payment service base URL
	BaseURL() string
}

// HTTPClient is a real HTTP client for the payment service
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a new payment HTTP client
func NewHTTPClient(baseURL string, timeout time.Duration, log logger.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// NewHTTPClientWithHTTPClient creates a new payment client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured payment service base URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// SubmitPurchase POSTs the order to /purchases. A 2xx reply with status "approved" or
// "pending" yields a receipt; status "rejected" or a 402/409/422 reply yields a
// *RejectedError carrying the service's reason.
func (c *HTTPClient) SubmitPurchase(ctx context.Context, order Order) (*Receipt, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}

	apiURL := c.baseURL + "/purchases"
	c.log.Debug("Payment request", "method", "POST", "url", apiURL, "purchase_id", order.PurchaseID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", order.PurchaseID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to payment service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Payment response", "status", resp.StatusCode, "body", string(raw))

	var out response
	decodeErr := json.Unmarshal(raw, &out)

	switch resp.StatusCode {
	case http.StatusPaymentRequired, http.StatusConflict, http.StatusUnprocessableEntity:
		reason := out.Reason
		if decodeErr != nil || reason == "" {
			reason = strings.TrimSpace(string(raw))
		}
		return nil, &RejectedError{Reason: reason}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("payment service returned status %d: %s", resp.StatusCode, string(raw))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to parse response: %w", decodeErr)
	}

	switch out.Status {
	case "approved", "pending":
		return &Receipt{Reference: out.Reference, CheckoutURL: out.CheckoutURL, Pending: out.Status == "pending"}, nil
	case "rejected":
		return nil, &RejectedError{Reason: out.Reason}
	default:
		return nil, fmt.Errorf("payment service returned unknown status %q", out.Status)
	}
}
