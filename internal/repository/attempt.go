package repository

import (
	"context"

	"bookingpay/internal/domain"
)

// PaymentAttemptRepository defines the persistence operations for the payment
// attempt audit trail.
type PaymentAttemptRepository interface {
	// Create persists a new payment attempt.
	Create(ctx context.Context, attempt *domain.PaymentAttempt) error

	// UpdateStatus updates the status of an attempt.
	UpdateStatus(ctx context.Context, id string, status domain.AttemptStatus) error

	// GetByOrderID retrieves the attempt tied to a provider order.
	GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentAttempt, error)

	// ListByBooking retrieves all attempts recorded for a booking, newest
	// first.
	ListByBooking(ctx context.Context, bookingID string) ([]*domain.PaymentAttempt, error)
}
