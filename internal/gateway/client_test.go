package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookingpay/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second)
}

func TestBookingsByUser_DecodesAndPreservesExtraFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bookings/user/user-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"bookingId":"1","price":49.5,"status":"Pending","flightNo":"AI-202","seat":"12A"},
			{"bookingId":"2","price":100,"status":"Delivered"}
		]`)
	})

	bookings, err := client.BookingsByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(bookings))
	}

	first := bookings[0]
	if first.ID != "1" || first.Price != 49.5 || first.Status != domain.BookingStatusPending {
		t.Errorf("unexpected booking decode: %+v", first)
	}
	if string(first.Extra["flightNo"]) != `"AI-202"` {
		t.Errorf("expected extra field preserved verbatim, got %s", first.Extra["flightNo"])
	}
	if _, known := first.Extra["bookingId"]; known {
		t.Error("known fields must not leak into Extra")
	}
	if bookings[1].Extra != nil {
		t.Errorf("expected no extras for plain booking, got %v", bookings[1].Extra)
	}
}

func TestCreateOrder_PostsMinorUnitAmount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/payments/order" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]int64
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["amount"] != 4950 {
			t.Errorf("expected amount 4950, got %d", body["amount"])
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"order_9A3x","amount":4950,"currency":"INR"}`)
	})

	order, err := client.CreateOrder(context.Background(), 4950)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != "order_9A3x" || order.Amount != 4950 || order.Currency != "INR" {
		t.Errorf("unexpected order: %+v", order)
	}
}

func TestCreateOrder_RejectsOrderWithoutID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"amount":4950,"currency":"INR"}`)
	})

	if _, err := client.CreateOrder(context.Background(), 4950); err == nil {
		t.Error("expected error for order without id")
	}
}

func TestConfirmPayment_ForwardsConfirmationVerbatim(t *testing.T) {
	confirmation := domain.PaymentConfirmation(`{"order_id":"order-1","signature":"abc"}`)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PaymentResponse json.RawMessage `json:"paymentResponse"`
			BookingID       string          `json:"bookingId"`
			UserID          string          `json:"userId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if string(body.PaymentResponse) != string(confirmation) {
			t.Errorf("expected confirmation forwarded verbatim, got %s", body.PaymentResponse)
		}
		if body.BookingID != "1" || body.UserID != "user-1" {
			t.Errorf("unexpected identifiers: %+v", body)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := client.ConfirmPayment(context.Background(), confirmation, "1", "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCancelBooking_StringErrorBodySurfacesVerbatim(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		message string
	}{
		{"json string body", `"Booking already checked in"`, "Booking already checked in"},
		{"plain text body", "Cancellation window closed", "Cancellation window closed"},
		{"structured body", `{"code":"CHECKED_IN"}`, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete {
					t.Errorf("expected DELETE, got %s", r.Method)
				}
				w.WriteHeader(http.StatusConflict)
				io.WriteString(w, tc.body)
			})

			err := client.CancelBooking(context.Background(), "1")
			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if statusErr.Code != http.StatusConflict {
				t.Errorf("expected code 409, got %d", statusErr.Code)
			}
			if statusErr.Message != tc.message {
				t.Errorf("expected message %q, got %q", tc.message, statusErr.Message)
			}
		})
	}
}
