package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookingpay/internal/domain"
	"bookingpay/internal/service"
)

// BookingHandler handles HTTP requests for the booking payment flow.
type BookingHandler struct {
	coordinator *service.PaymentCoordinator
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(coordinator *service.PaymentCoordinator) *BookingHandler {
	return &BookingHandler{coordinator: coordinator}
}

// BookingResponse is the HTTP representation of an actionable booking.
type BookingResponse struct {
	BookingID string  `json:"bookingId"`
	Price     float64 `json:"price"`
	Status    string  `json:"status"`
}

// ListBookings handles GET /v1/bookings. It refreshes the actionable view
// from the backend and returns it.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	if err := h.coordinator.Refresh(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	bookings := h.coordinator.ActionableBookings()
	resp := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, toBookingResponse(b))
	}

	respondJSON(c, http.StatusOK, resp)
}

// InitiatePayment handles POST /v1/bookings/:id/pay. On success it returns
// the checkout options the client feeds the payment widget.
func (h *BookingHandler) InitiatePayment(c *gin.Context) {
	bookingID := c.Param("id")

	options, err := h.coordinator.InitiatePayment(c.Request.Context(), bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, options)
}

// CancelBooking handles POST /v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID := c.Param("id")

	if err := h.coordinator.Cancel(c.Request.Context(), bookingID); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "cancelled"})
}

func toBookingResponse(b domain.Booking) BookingResponse {
	return BookingResponse{
		BookingID: b.ID,
		Price:     b.Price,
		Status:    string(b.Status),
	}
}
