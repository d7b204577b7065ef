package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookingpay/internal/widget"
)

// PaymentHandler handles the payment widget's confirmation callback.
type PaymentHandler struct {
	dispatcher *widget.Dispatcher
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(dispatcher *widget.Dispatcher) *PaymentHandler {
	return &PaymentHandler{dispatcher: dispatcher}
}

// Confirm handles POST /v1/payments/callback. The body must carry the order
// id; the entire payload is forwarded verbatim to the backend as the
// confirmation to verify.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	var envelope struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.OrderID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "order_id is required"})
		return
	}

	resolved, err := h.dispatcher.Resolve(c.Request.Context(), envelope.OrderID, body)
	if !resolved {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown or already settled order"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "verified"})
}
