package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bookingpay/internal/domain"
)

// Client is the HTTP implementation of BookingGateway.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a gateway client for the given backend base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Ensure the contract is satisfied.
var _ BookingGateway = (*Client)(nil)

// BookingsByUser retrieves all bookings for a user.
func (c *Client) BookingsByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	endpoint := fmt.Sprintf("%s/bookings/user/%s", c.baseURL, url.PathEscape(userID))

	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var payloads []bookingPayload
	if err := json.Unmarshal(body, &payloads); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	bookings := make([]domain.Booking, 0, len(payloads))
	for _, p := range payloads {
		bookings = append(bookings, p.toDomain())
	}
	return bookings, nil
}

// CreateOrder creates a payment order for the given amount in minor units.
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64) (*domain.PaymentOrder, error) {
	reqBody, err := json.Marshal(map[string]int64{"amount": amountMinor})
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/payments/order", reqBody)
	if err != nil {
		return nil, err
	}

	var resp struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("backend returned order without id")
	}

	return &domain.PaymentOrder{
		ID:       resp.ID,
		Amount:   resp.Amount,
		Currency: resp.Currency,
	}, nil
}

// ConfirmPayment forwards the widget confirmation for backend verification.
// The confirmation payload is passed through verbatim.
func (c *Client) ConfirmPayment(ctx context.Context, confirmation domain.PaymentConfirmation, bookingID, userID string) error {
	reqBody, err := json.Marshal(struct {
		PaymentResponse domain.PaymentConfirmation `json:"paymentResponse"`
		BookingID       string                     `json:"bookingId"`
		UserID          string                     `json:"userId"`
	}{confirmation, bookingID, userID})
	if err != nil {
		return err
	}

	_, err = c.do(ctx, http.MethodPost, c.baseURL+"/payments", reqBody)
	return err
}

// CancelBooking requests deletion of a booking.
func (c *Client) CancelBooking(ctx context.Context, bookingID string) error {
	endpoint := fmt.Sprintf("%s/bookings/%s", c.baseURL, url.PathEscape(bookingID))
	_, err := c.do(ctx, http.MethodDelete, endpoint, nil)
	return err
}

// do issues a request and returns the response body, converting non-2xx
// responses into *StatusError.
func (c *Client) do(ctx context.Context, method, endpoint string, reqBody []byte) ([]byte, error) {
	var reader io.Reader
	if reqBody != nil {
		reader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Message: stringBody(body)}
	}

	return body, nil
}

// stringBody extracts a human-readable message from an error body when the
// backend sent a bare string, either JSON-encoded or plain text. Structured
// bodies yield no message.
func stringBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return s
	}
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return trimmed
	}
	return ""
}

// bookingPayload decodes a backend booking, keeping the fields this service
// understands and preserving everything else untouched.
type bookingPayload struct {
	ID     string
	Price  float64
	Status string
	Extra  map[string]json.RawMessage
}

func (p *bookingPayload) UnmarshalJSON(data []byte) error {
	var known struct {
		BookingID string  `json:"bookingId"`
		Price     float64 `json:"price"`
		Status    string  `json:"status"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	delete(fields, "bookingId")
	delete(fields, "price")
	delete(fields, "status")
	if len(fields) == 0 {
		fields = nil
	}

	p.ID = known.BookingID
	p.Price = known.Price
	p.Status = known.Status
	p.Extra = fields
	return nil
}

func (p bookingPayload) toDomain() domain.Booking {
	return domain.Booking{
		ID:     p.ID,
		Price:  p.Price,
		Status: domain.BookingStatus(p.Status),
		Extra:  p.Extra,
	}
}
