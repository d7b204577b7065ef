package service

import "errors"

var (
	// ErrSessionExpired is returned when no user identity can be resolved.
	// The session has already been terminated by the time callers see it.
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidBookingID is returned when booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrBookingNotFound is returned when the booking is not part of the
	// last-fetched actionable view.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrBookingFetch is returned when the backend booking fetch fails.
	// The cached view is left unchanged; the caller may retry.
	ErrBookingFetch = errors.New("failed to load bookings")

	// ErrPaymentInFlight is returned when a payment attempt for the booking
	// is already in progress.
	ErrPaymentInFlight = errors.New("payment already in flight for booking")

	// ErrOrderCreation is returned when the backend refuses to create a
	// payment order. No widget is opened; the caller may retry.
	ErrOrderCreation = errors.New("failed to initiate payment")

	// ErrWidgetUnavailable is returned when a created order cannot be handed
	// to the payment widget. The order is left unconsumed; a retry starts a
	// fresh one.
	ErrWidgetUnavailable = errors.New("failed to open payment widget")

	// ErrPaymentVerification is returned when the backend rejects a widget
	// confirmation. The attempt is abandoned; a retry starts a fresh order.
	ErrPaymentVerification = errors.New("payment verification failed")

	// ErrCancellation is returned when the backend refuses to cancel a
	// booking.
	ErrCancellation = errors.New("failed to cancel booking")
)
