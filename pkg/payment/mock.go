package payment

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is a mock payment client for testing
type MockClient struct {
	mu        sync.Mutex
	baseURL   string
	submitErr error
	rejection string
	pending   bool
	orders    []Order
	nextRef   int
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithSubmitError sets a transport error to return from SubmitPurchase
func WithSubmitError(err error) MockOption {
	return func(m *MockClient) {
		m.submitErr = err
	}
}

// WithRejection makes every SubmitPurchase call fail with the given reason
func WithRejection(reason string) MockOption {
	return func(m *MockClient) {
		m.rejection = reason
	}
}

// WithPending makes SubmitPurchase accept orders without settling them
func WithPending() MockOption {
	return func(m *MockClient) {
		m.pending = true
	}
}

// WithBaseURL sets the base URL
func WithBaseURL(url string) MockOption {
	return func(m *MockClient) {
		m.baseURL = url
	}
}

// NewMockClient creates a new mock payment client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		baseURL: "http://mock-payment.local",
		nextRef: 1000,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BaseURL returns the configured base URL
func (m *MockClient) BaseURL() string {
	return m.baseURL
}

// SubmitPurchase records the order and approves it unless an error or rejection is configured
func (m *MockClient) SubmitPurchase(ctx context.Context, order Order) (*Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.orders = append(m.orders, order)
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	if m.rejection != "" {
		return nil, &RejectedError{Reason: m.rejection}
	}

	m.nextRef++
	return &Receipt{Reference: fmt.Sprintf("PAY-%d", m.nextRef), Pending: m.pending}, nil
}

// Orders returns every order submitted so far (for testing)
func (m *MockClient) Orders() []Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Order(nil), m.orders...)
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)
var _ Client = (*HTTPClient)(nil)
