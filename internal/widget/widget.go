package widget

import (
	"context"
	"sync"
	"time"

	"bookingpay/internal/domain"
)

// CheckoutOptions is the descriptor the presentation layer feeds the payment
// provider's checkout widget. Field names follow the provider's client API.
type CheckoutOptions struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	OrderID     string  `json:"order_id"`
	Prefill     Prefill `json:"prefill"`
	Theme       Theme   `json:"theme"`
}

// Prefill pre-populates the widget's contact form.
type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// Theme controls the widget's appearance.
type Theme struct {
	Color string `json:"color"`
}

// Config holds the provider-specific checkout configuration.
type Config struct {
	Key            string
	DisplayName    string
	ThemeColor     string
	PrefillName    string
	PrefillEmail   string
	PrefillContact string

	// PendingTTL bounds how long an unresolved continuation is kept. The
	// widget gives no signal on abandonment, so entries past this age are
	// dropped.
	PendingTTL time.Duration
}

// SuccessFunc is the continuation invoked with the provider's confirmation
// payload after a successful authorization. It runs at most once per order.
type SuccessFunc func(ctx context.Context, confirmation domain.PaymentConfirmation) error

// Authorizer hands a payment order to the out-of-process widget. The returned
// options are surfaced to the client; onSuccess fires later if and only if the
// provider reports a successful authorization. There is no failure signal.
type Authorizer interface {
	Authorize(ctx context.Context, order domain.PaymentOrder, description string, onSuccess SuccessFunc) (*CheckoutOptions, error)
}

// Dispatcher implements Authorizer by registering one success continuation per
// order and resolving it when the confirmation callback arrives.
type Dispatcher struct {
	cfg Config

	mu      sync.Mutex
	pending map[string]pendingAuthorization
}

type pendingAuthorization struct {
	onSuccess    SuccessFunc
	registeredAt time.Time
}

const defaultPendingTTL = time.Hour

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = defaultPendingTTL
	}
	return &Dispatcher{
		cfg:     cfg,
		pending: make(map[string]pendingAuthorization),
	}
}

var _ Authorizer = (*Dispatcher)(nil)

// Authorize builds the checkout options for the order and registers the
// success continuation. Registering the same order again replaces the earlier
// continuation.
func (d *Dispatcher) Authorize(ctx context.Context, order domain.PaymentOrder, description string, onSuccess SuccessFunc) (*CheckoutOptions, error) {
	d.mu.Lock()
	d.evictStaleLocked()
	d.pending[order.ID] = pendingAuthorization{
		onSuccess:    onSuccess,
		registeredAt: time.Now(),
	}
	d.mu.Unlock()

	return &CheckoutOptions{
		Key:         d.cfg.Key,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Name:        d.cfg.DisplayName,
		Description: description,
		OrderID:     order.ID,
		Prefill: Prefill{
			Name:    d.cfg.PrefillName,
			Email:   d.cfg.PrefillEmail,
			Contact: d.cfg.PrefillContact,
		},
		Theme: Theme{Color: d.cfg.ThemeColor},
	}, nil
}

// Resolve fires the continuation registered for the order, exactly once.
// Returns false when the order is unknown, already settled, or evicted.
func (d *Dispatcher) Resolve(ctx context.Context, orderID string, confirmation domain.PaymentConfirmation) (bool, error) {
	d.mu.Lock()
	entry, ok := d.pending[orderID]
	if ok {
		delete(d.pending, orderID)
	}
	d.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, entry.onSuccess(ctx, confirmation)
}

// evictStaleLocked drops continuations older than the pending TTL. Caller
// holds d.mu.
func (d *Dispatcher) evictStaleLocked() {
	cutoff := time.Now().Add(-d.cfg.PendingTTL)
	for orderID, entry := range d.pending {
		if entry.registeredAt.Before(cutoff) {
			delete(d.pending, orderID)
		}
	}
}
