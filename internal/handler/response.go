package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookingpay/internal/gateway"
	"bookingpay/internal/repository"
	"bookingpay/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Cancellation refusals with a backend-supplied message surface that message
// verbatim; everything else gets the generic sentinel text.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)

	message := err.Error()
	if errors.Is(err, service.ErrCancellation) {
		message = service.ErrCancellation.Error()
		var statusErr *gateway.StatusError
		if errors.As(err, &statusErr) && statusErr.Message != "" {
			message = statusErr.Message
		}
	}

	c.JSON(code, ErrorResponse{Error: message})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Session gone - the client must re-authenticate.
	case errors.Is(err, service.ErrSessionExpired):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, service.ErrBookingNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidBookingID):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrPaymentInFlight):
		return http.StatusConflict

	// Collaborator round trips that failed; retryable by the client.
	case errors.Is(err, service.ErrBookingFetch),
		errors.Is(err, service.ErrOrderCreation),
		errors.Is(err, service.ErrWidgetUnavailable),
		errors.Is(err, service.ErrPaymentVerification),
		errors.Is(err, service.ErrCancellation):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
