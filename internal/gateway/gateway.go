package gateway

import (
	"context"
	"fmt"

	"bookingpay/internal/domain"
)

// BookingGateway is the consumed contract of the booking backend. The backend
// owns booking state and payment verification; this service only issues
// requests against it.
type BookingGateway interface {
	// BookingsByUser retrieves the full booking set for a user.
	BookingsByUser(ctx context.Context, userID string) ([]domain.Booking, error)

	// CreateOrder creates a provider-side payment order for the given amount
	// in minor currency units.
	CreateOrder(ctx context.Context, amountMinor int64) (*domain.PaymentOrder, error)

	// ConfirmPayment forwards a widget confirmation to the backend for
	// verification and persistence against the booking.
	ConfirmPayment(ctx context.Context, confirmation domain.PaymentConfirmation, bookingID, userID string) error

	// CancelBooking requests deletion of a booking.
	CancelBooking(ctx context.Context, bookingID string) error
}

// StatusError is returned when the backend answers with a non-success status.
// Message is set only when the response body was a bare string; the backend
// uses that shape for human-readable rejections (e.g. cancellation refusals).
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Code)
}
