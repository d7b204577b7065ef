package domain

import "encoding/json"

// BookingStatus represents the backend-assigned lifecycle status of a booking.
// The backend may introduce values beyond the ones listed here; unrecognized
// statuses are carried through opaquely and never acted upon.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "Pending"
	BookingStatusDelivered BookingStatus = "Delivered"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

// Booking is a reservation record owned by the booking backend. It is observed
// read-only here; state changes happen only through backend round trips.
type Booking struct {
	ID     string
	Price  float64 // major currency units
	Status BookingStatus

	// Extra holds backend fields this service does not interpret. They are
	// preserved verbatim so the view stays faithful to the backend payload.
	Extra map[string]json.RawMessage
}

// Actionable reports whether the booking can still be paid or cancelled.
// A delivered booking is terminal and never payment-actionable.
func (b Booking) Actionable() bool {
	return b.Status != BookingStatusDelivered
}
