package domain

import (
	"encoding/json"
	"time"
)

// PaymentOrder is the ephemeral provider-side order created per payment
// attempt. It is handed to the checkout widget and never cached.
type PaymentOrder struct {
	ID       string
	Amount   int64 // minor currency units
	Currency string
}

// PaymentConfirmation is the opaque payload the payment widget returns on a
// successful authorization. It is forwarded verbatim to the backend for
// verification and never inspected here.
type PaymentConfirmation = json.RawMessage

// AttemptStatus represents the recorded outcome of a payment attempt.
type AttemptStatus string

const (
	AttemptStatusOrderCreated AttemptStatus = "ORDER_CREATED"
	AttemptStatusVerified     AttemptStatus = "VERIFIED"
	AttemptStatusFailed       AttemptStatus = "FAILED"
)

// PaymentAttempt is the audit record kept for every order created against a
// booking. Attempts the widget silently abandons stay in ORDER_CREATED.
type PaymentAttempt struct {
	ID        string
	BookingID string
	OrderID   string
	Amount    int64 // minor currency units
	Currency  string
	Status    AttemptStatus
	CreatedAt time.Time
}
