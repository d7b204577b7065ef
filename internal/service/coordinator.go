package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"bookingpay/internal/domain"
	"bookingpay/internal/gateway"
	"bookingpay/internal/identity"
	"bookingpay/internal/redis"
	"bookingpay/internal/repository"
	"bookingpay/internal/widget"
)

// minorUnitsPerMajor converts booking prices to the payment provider's minor
// currency units. The factor is fixed by the provider's convention; it is not
// per-currency configuration.
const minorUnitsPerMajor = 100

const defaultInFlightTTL = 15 * time.Minute

// PaymentCoordinator drives a booking's transition through payment or
// cancellation against the booking backend and the out-of-process payment
// widget. It owns the in-memory view of the current user's actionable
// bookings; all booking state changes happen through backend round trips
// followed by a refresh of that view.
type PaymentCoordinator struct {
	gateway  gateway.BookingGateway
	identity identity.Provider
	widget   widget.Authorizer
	locks    redis.LockStoreInterface
	attempts repository.PaymentAttemptRepository
	notifier *NotificationService

	inFlightTTL time.Duration

	// fetchSeq orders concurrent refreshes: a response is applied only if no
	// later-started fetch has been applied already (last-response-wins by
	// start order).
	fetchSeq atomic.Uint64

	mu         sync.RWMutex
	bookings   []domain.Booking
	appliedSeq uint64
}

// NewPaymentCoordinator creates a new PaymentCoordinator. locks, attempts and
// notifier are optional; when locks is nil concurrent payment attempts for the
// same booking are not rejected.
func NewPaymentCoordinator(
	gw gateway.BookingGateway,
	idp identity.Provider,
	authorizer widget.Authorizer,
	locks redis.LockStoreInterface,
	attempts repository.PaymentAttemptRepository,
	notifier *NotificationService,
	inFlightTTL time.Duration,
) *PaymentCoordinator {
	if inFlightTTL <= 0 {
		inFlightTTL = defaultInFlightTTL
	}
	return &PaymentCoordinator{
		gateway:     gw,
		identity:    idp,
		widget:      authorizer,
		locks:       locks,
		attempts:    attempts,
		notifier:    notifier,
		inFlightTTL: inFlightTTL,
	}
}

// ActionableBookings returns a copy of the current actionable view.
func (c *PaymentCoordinator) ActionableBookings() []domain.Booking {
	c.mu.RLock()
	defer c.mu.RUnlock()

	view := make([]domain.Booking, len(c.bookings))
	copy(view, c.bookings)
	return view
}

// Refresh re-resolves the current user and replaces the actionable view with
// a fresh backend fetch, filtered to exclude delivered bookings. An absent
// identity terminates the session and returns ErrSessionExpired. A fetch
// failure leaves the prior view intact; stale-but-valid beats empty.
func (c *PaymentCoordinator) Refresh(ctx context.Context) error {
	userID, err := c.identity.CurrentUserID(ctx)
	if err != nil {
		if errors.Is(err, identity.ErrNoSession) {
			if terr := c.identity.TerminateSession(ctx); terr != nil {
				log.Printf("failed to terminate session: %v", terr)
			}
			return ErrSessionExpired
		}
		return fmt.Errorf("resolve identity: %w", err)
	}

	seq := c.fetchSeq.Add(1)

	fetched, err := c.gateway.BookingsByUser(ctx, userID)
	if err != nil {
		if c.notifier != nil {
			c.notifier.send(ctx, Notification{
				Type:        NotificationBookingsUnavailable,
				RecipientID: userID,
				Title:       "Bookings Unavailable",
				Message:     "Failed to load bookings. Please try again later.",
				CreatedAt:   time.Now(),
			})
		}
		return fmt.Errorf("%w: %v", ErrBookingFetch, err)
	}

	actionable := make([]domain.Booking, 0, len(fetched))
	for _, b := range fetched {
		if b.Actionable() {
			actionable = append(actionable, b)
		}
	}

	c.mu.Lock()
	if seq > c.appliedSeq {
		c.bookings = actionable
		c.appliedSeq = seq
	}
	c.mu.Unlock()

	return nil
}

// InitiatePayment starts a payment attempt for a booking in the current view.
// It creates a backend payment order, hands it to the widget, and returns the
// checkout options the presentation layer needs to open it. The verification
// continuation runs later, if the widget ever resumes; abandonment produces no
// signal and no state change beyond TTL-bounded bookkeeping.
func (c *PaymentCoordinator) InitiatePayment(ctx context.Context, bookingID string) (*widget.CheckoutOptions, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, ok := c.bookingFromView(bookingID)
	if !ok {
		return nil, ErrBookingNotFound
	}

	lockToken, ok := c.acquireLock(ctx, bookingID)
	if !ok {
		return nil, ErrPaymentInFlight
	}

	amountMinor := int64(math.Round(booking.Price * minorUnitsPerMajor))

	order, err := c.gateway.CreateOrder(ctx, amountMinor)
	if err != nil {
		c.releaseLock(ctx, bookingID, lockToken)
		return nil, fmt.Errorf("%w: %v", ErrOrderCreation, err)
	}

	attemptID := c.recordAttempt(ctx, booking.ID, order)

	description := fmt.Sprintf("Payment for Booking ID %s", booking.ID)
	options, err := c.widget.Authorize(ctx, *order, description, c.verification(booking.ID, attemptID, lockToken))
	if err != nil {
		c.releaseLock(ctx, bookingID, lockToken)
		return nil, fmt.Errorf("%w: %v", ErrWidgetUnavailable, err)
	}

	return options, nil
}

// verification returns the single-shot continuation run when the widget
// reports a successful authorization. Identity is re-resolved here; the
// session may have changed during the out-of-process detour.
func (c *PaymentCoordinator) verification(bookingID, attemptID, lockToken string) widget.SuccessFunc {
	return func(ctx context.Context, confirmation domain.PaymentConfirmation) error {
		defer c.releaseLock(ctx, bookingID, lockToken)

		userID, err := c.identity.CurrentUserID(ctx)
		if err != nil {
			c.finishAttempt(ctx, attemptID, domain.AttemptStatusFailed)
			if errors.Is(err, identity.ErrNoSession) {
				if terr := c.identity.TerminateSession(ctx); terr != nil {
					log.Printf("failed to terminate session: %v", terr)
				}
				return ErrSessionExpired
			}
			return fmt.Errorf("resolve identity: %w", err)
		}

		if err := c.gateway.ConfirmPayment(ctx, confirmation, bookingID, userID); err != nil {
			c.finishAttempt(ctx, attemptID, domain.AttemptStatusFailed)
			if c.notifier != nil {
				c.notifier.NotifyPaymentFailed(ctx, userID, bookingID)
			}
			return fmt.Errorf("%w: %v", ErrPaymentVerification, err)
		}

		c.finishAttempt(ctx, attemptID, domain.AttemptStatusVerified)
		if c.notifier != nil {
			c.notifier.NotifyPaymentSuccess(ctx, userID, bookingID)
		}

		// Reconcile the view with the backend-confirmed state. The payment
		// already succeeded; a refresh failure is its own retryable problem.
		if err := c.Refresh(ctx); err != nil {
			log.Printf("refresh after payment failed: %v", err)
		}
		return nil
	}
}

// Cancel requests deletion of a booking. The backend is authoritative; a stale
// ID is simply rejected there. Failure leaves the cached view untouched.
func (c *PaymentCoordinator) Cancel(ctx context.Context, bookingID string) error {
	if bookingID == "" {
		return ErrInvalidBookingID
	}

	userID, _ := c.identity.CurrentUserID(ctx)

	if err := c.gateway.CancelBooking(ctx, bookingID); err != nil {
		if c.notifier != nil {
			c.notifier.NotifyCancellationFailed(ctx, userID, bookingID, backendMessage(err))
		}
		return fmt.Errorf("%w: %w", ErrCancellation, err)
	}

	if c.notifier != nil {
		c.notifier.NotifyBookingCancelled(ctx, userID, bookingID)
	}

	if err := c.Refresh(ctx); err != nil {
		log.Printf("refresh after cancellation failed: %v", err)
	}
	return nil
}

// bookingFromView looks a booking up in the last-fetched actionable view.
func (c *PaymentCoordinator) bookingFromView(bookingID string) (domain.Booking, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, b := range c.bookings {
		if b.ID == bookingID {
			return b, true
		}
	}
	return domain.Booking{}, false
}

// acquireLock takes the per-booking in-flight lock and returns the owner
// token. A lock store failure is logged and treated as acquired with no token;
// payments must not depend on Redis health.
func (c *PaymentCoordinator) acquireLock(ctx context.Context, bookingID string) (string, bool) {
	if c.locks == nil {
		return "", true
	}
	token, err := c.locks.AcquireBookingLock(ctx, bookingID, c.inFlightTTL)
	if err != nil {
		log.Printf("booking lock unavailable for %s: %v", bookingID, err)
		return "", true
	}
	if token == "" {
		return "", false
	}
	return token, true
}

// releaseLock releases the attempt's lock. The token scopes the release to
// this attempt: after TTL expiry a newer attempt's lock stays untouched when a
// stale continuation finally fires.
func (c *PaymentCoordinator) releaseLock(ctx context.Context, bookingID, token string) {
	if c.locks == nil || token == "" {
		return
	}
	if err := c.locks.ReleaseBookingLock(ctx, bookingID, token); err != nil {
		log.Printf("failed to release booking lock for %s: %v", bookingID, err)
	}
}

// recordAttempt writes the audit record for a created order. Best effort; the
// payment flow never blocks on the audit trail.
func (c *PaymentCoordinator) recordAttempt(ctx context.Context, bookingID string, order *domain.PaymentOrder) string {
	attemptID := uuid.New().String()
	if c.attempts == nil {
		return attemptID
	}

	attempt := &domain.PaymentAttempt{
		ID:        attemptID,
		BookingID: bookingID,
		OrderID:   order.ID,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Status:    domain.AttemptStatusOrderCreated,
		CreatedAt: time.Now(),
	}
	if err := c.attempts.Create(ctx, attempt); err != nil {
		log.Printf("failed to record payment attempt for booking %s: %v", bookingID, err)
	}
	return attemptID
}

func (c *PaymentCoordinator) finishAttempt(ctx context.Context, attemptID string, status domain.AttemptStatus) {
	if c.attempts == nil {
		return
	}
	if err := c.attempts.UpdateStatus(ctx, attemptID, status); err != nil {
		log.Printf("failed to update payment attempt %s: %v", attemptID, err)
	}
}

// backendMessage extracts the backend's verbatim human-readable message from a
// gateway error, when it sent one.
func backendMessage(err error) string {
	var statusErr *gateway.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Message
	}
	return ""
}
