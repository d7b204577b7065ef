package tests

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"bookingpay/internal/domain"
	"bookingpay/internal/identity"
	"bookingpay/internal/repository"
	"bookingpay/internal/widget"
)

// ──────────────────────────────────────────────
// MOCK BOOKING GATEWAY
// ──────────────────────────────────────────────

// MockBookingGateway is a mock implementation of gateway.BookingGateway.
type MockBookingGateway struct {
	mu       sync.RWMutex
	bookings []domain.Booking

	// Counters for verification
	FetchCallCount       int32
	CreateOrderCallCount int32
	ConfirmCallCount     int32
	CancelCallCount      int32

	// Error injection
	FetchError       error
	CreateOrderError error
	ConfirmError     error
	CancelError      error

	// Canned order returned by CreateOrder. When nil, an order echoing the
	// requested amount is returned.
	Order *domain.PaymentOrder

	// Recorded arguments for assertions.
	LastFetchUserID      string
	LastOrderAmount      int64
	LastConfirmation     domain.PaymentConfirmation
	LastConfirmBookingID string
	LastConfirmUserID    string
	LastCancelBookingID  string
}

// NewMockBookingGateway creates a new mock booking gateway.
func NewMockBookingGateway() *MockBookingGateway {
	return &MockBookingGateway{}
}

// SetBookings replaces the booking set the backend returns.
func (m *MockBookingGateway) SetBookings(bookings []domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = bookings
}

func (m *MockBookingGateway) BookingsByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	atomic.AddInt32(&m.FetchCallCount, 1)
	if m.FetchError != nil {
		return nil, m.FetchError
	}
	m.mu.Lock()
	m.LastFetchUserID = userID
	result := make([]domain.Booking, len(m.bookings))
	copy(result, m.bookings)
	m.mu.Unlock()
	return result, nil
}

func (m *MockBookingGateway) CreateOrder(ctx context.Context, amountMinor int64) (*domain.PaymentOrder, error) {
	atomic.AddInt32(&m.CreateOrderCallCount, 1)
	if m.CreateOrderError != nil {
		return nil, m.CreateOrderError
	}
	m.mu.Lock()
	m.LastOrderAmount = amountMinor
	m.mu.Unlock()
	if m.Order != nil {
		order := *m.Order
		return &order, nil
	}
	return &domain.PaymentOrder{ID: "order-1", Amount: amountMinor, Currency: "INR"}, nil
}

func (m *MockBookingGateway) ConfirmPayment(ctx context.Context, confirmation domain.PaymentConfirmation, bookingID, userID string) error {
	atomic.AddInt32(&m.ConfirmCallCount, 1)
	if m.ConfirmError != nil {
		return m.ConfirmError
	}
	m.mu.Lock()
	m.LastConfirmation = confirmation
	m.LastConfirmBookingID = bookingID
	m.LastConfirmUserID = userID
	m.mu.Unlock()
	return nil
}

func (m *MockBookingGateway) CancelBooking(ctx context.Context, bookingID string) error {
	atomic.AddInt32(&m.CancelCallCount, 1)
	if m.CancelError != nil {
		return m.CancelError
	}
	m.mu.Lock()
	m.LastCancelBookingID = bookingID
	m.mu.Unlock()
	return nil
}

// ──────────────────────────────────────────────
// MOCK IDENTITY PROVIDER
// ──────────────────────────────────────────────

// MockIdentityProvider is a mock implementation of identity.Provider.
type MockIdentityProvider struct {
	UserID string
	Absent bool

	// Counters for verification
	TerminateCallCount int32

	// Error injection
	ResolveError error
}

// NewMockIdentityProvider creates a provider resolving to the given user.
func NewMockIdentityProvider(userID string) *MockIdentityProvider {
	return &MockIdentityProvider{UserID: userID}
}

func (m *MockIdentityProvider) CurrentUserID(ctx context.Context) (string, error) {
	if m.ResolveError != nil {
		return "", m.ResolveError
	}
	if m.Absent {
		return "", identity.ErrNoSession
	}
	return m.UserID, nil
}

func (m *MockIdentityProvider) TerminateSession(ctx context.Context) error {
	atomic.AddInt32(&m.TerminateCallCount, 1)
	return nil
}

// ──────────────────────────────────────────────
// MOCK WIDGET AUTHORIZER
// ──────────────────────────────────────────────

// MockAuthorizer is a mock implementation of widget.Authorizer. It captures
// the success continuation so tests can simulate the widget resuming.
type MockAuthorizer struct {
	mu sync.Mutex

	// Counters for verification
	AuthorizeCallCount int32

	// Error injection
	AuthorizeError error

	LastOrder       domain.PaymentOrder
	LastDescription string
	onSuccess       widget.SuccessFunc
}

// NewMockAuthorizer creates a new mock authorizer.
func NewMockAuthorizer() *MockAuthorizer {
	return &MockAuthorizer{}
}

func (m *MockAuthorizer) Authorize(ctx context.Context, order domain.PaymentOrder, description string, onSuccess widget.SuccessFunc) (*widget.CheckoutOptions, error) {
	atomic.AddInt32(&m.AuthorizeCallCount, 1)
	if m.AuthorizeError != nil {
		return nil, m.AuthorizeError
	}
	m.mu.Lock()
	m.LastOrder = order
	m.LastDescription = description
	m.onSuccess = onSuccess
	m.mu.Unlock()

	return &widget.CheckoutOptions{
		Key:         "test-key",
		Amount:      order.Amount,
		Currency:    order.Currency,
		Description: description,
		OrderID:     order.ID,
	}, nil
}

// FireSuccess simulates the widget's success callback with the given
// confirmation payload.
func (m *MockAuthorizer) FireSuccess(ctx context.Context, confirmation domain.PaymentConfirmation) error {
	m.mu.Lock()
	onSuccess := m.onSuccess
	m.mu.Unlock()
	if onSuccess == nil {
		return nil
	}
	return onSuccess(ctx, confirmation)
}

// Callback returns the most recently captured success continuation, so a
// test can hold onto it before a later attempt replaces it.
func (m *MockAuthorizer) Callback() widget.SuccessFunc {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onSuccess
}

// CallbackRegistered reports whether a success continuation was captured.
func (m *MockAuthorizer) CallbackRegistered() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onSuccess != nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of redis.LockStoreInterface. Locks
// carry an owner token; release only removes a lock when the token matches,
// mirroring the compare-and-delete semantics of the Redis store.
type MockLockStore struct {
	mu      sync.Mutex
	held    map[string]string
	nextTok int

	// Counters for verification
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{held: make(map[string]string)}
}

func (m *MockLockStore) AcquireBookingLock(ctx context.Context, bookingID string, ttl time.Duration) (string, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return "", m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.held[bookingID]; held {
		return "", nil
	}
	m.nextTok++
	token := fmt.Sprintf("tok-%d", m.nextTok)
	m.held[bookingID] = token
	return token, nil
}

func (m *MockLockStore) ReleaseBookingLock(ctx context.Context, bookingID, token string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[bookingID] == token {
		delete(m.held, bookingID)
	}
	return nil
}

// ForceExpire drops a lock as if its TTL had elapsed in Redis.
func (m *MockLockStore) ForceExpire(bookingID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, bookingID)
}

// Held reports whether the lock for a booking is currently held.
func (m *MockLockStore) Held(bookingID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, held := m.held[bookingID]
	return held
}

// ──────────────────────────────────────────────
// GATED BOOKING GATEWAY
// ──────────────────────────────────────────────

// GatedBookingGateway serves a fixed response per fetch and holds each fetch
// until its gate is closed, so tests can control the order in which
// concurrent fetches complete.
type GatedBookingGateway struct {
	mu    sync.Mutex
	calls int

	// Responses[i] is returned by the i-th fetch.
	Responses [][]domain.Booking
	// Gates[i] blocks the i-th fetch until closed. A nil gate does not block.
	Gates []chan struct{}
	// Begun[i] is closed when the i-th fetch has entered the gateway.
	Begun []chan struct{}
}

// NewGatedBookingGateway creates a gateway serving n gated fetches.
func NewGatedBookingGateway(responses ...[]domain.Booking) *GatedBookingGateway {
	g := &GatedBookingGateway{Responses: responses}
	for range responses {
		g.Gates = append(g.Gates, make(chan struct{}))
		g.Begun = append(g.Begun, make(chan struct{}))
	}
	return g
}

func (g *GatedBookingGateway) BookingsByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	g.mu.Lock()
	i := g.calls
	g.calls++
	g.mu.Unlock()
	if i >= len(g.Responses) {
		return nil, fmt.Errorf("unexpected fetch %d", i)
	}
	close(g.Begun[i])
	if g.Gates[i] != nil {
		<-g.Gates[i]
	}
	result := make([]domain.Booking, len(g.Responses[i]))
	copy(result, g.Responses[i])
	return result, nil
}

func (g *GatedBookingGateway) CreateOrder(ctx context.Context, amountMinor int64) (*domain.PaymentOrder, error) {
	return nil, fmt.Errorf("not supported")
}

func (g *GatedBookingGateway) ConfirmPayment(ctx context.Context, confirmation domain.PaymentConfirmation, bookingID, userID string) error {
	return fmt.Errorf("not supported")
}

func (g *GatedBookingGateway) CancelBooking(ctx context.Context, bookingID string) error {
	return fmt.Errorf("not supported")
}

// ──────────────────────────────────────────────
// MOCK ATTEMPT REPOSITORY
// ──────────────────────────────────────────────

// MockAttemptRepository is a mock implementation of
// repository.PaymentAttemptRepository.
type MockAttemptRepository struct {
	mu       sync.RWMutex
	attempts map[string]*domain.PaymentAttempt

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
}

// NewMockAttemptRepository creates a new mock attempt repository.
func NewMockAttemptRepository() *MockAttemptRepository {
	return &MockAttemptRepository{attempts: make(map[string]*domain.PaymentAttempt)}
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *domain.PaymentAttempt) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *attempt
	m.attempts[attempt.ID] = &copy
	return nil
}

func (m *MockAttemptRepository) UpdateStatus(ctx context.Context, id string, status domain.AttemptStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if attempt, ok := m.attempts[id]; ok {
		attempt.Status = status
	}
	return nil
}

func (m *MockAttemptRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, attempt := range m.attempts {
		if attempt.OrderID == orderID {
			copy := *attempt
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockAttemptRepository) ListByBooking(ctx context.Context, bookingID string) ([]*domain.PaymentAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.PaymentAttempt
	for _, attempt := range m.attempts {
		if attempt.BookingID == bookingID {
			copy := *attempt
			result = append(result, &copy)
		}
	}
	return result, nil
}

// AttemptStatuses returns the recorded statuses keyed by order ID.
func (m *MockAttemptRepository) AttemptStatuses() map[string]domain.AttemptStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	statuses := make(map[string]domain.AttemptStatus, len(m.attempts))
	for _, attempt := range m.attempts {
		statuses[attempt.OrderID] = attempt.Status
	}
	return statuses
}
