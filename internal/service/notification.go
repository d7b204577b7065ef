package service

import (
	"context"
	"fmt"
	"log"
	"time"
)

// NotificationType represents the type of user-facing notification.
type NotificationType string

const (
	NotificationPaymentSuccess      NotificationType = "PAYMENT_SUCCESS"
	NotificationPaymentFailed       NotificationType = "PAYMENT_FAILED"
	NotificationBookingCancelled    NotificationType = "BOOKING_CANCELLED"
	NotificationCancellationFailed  NotificationType = "CANCELLATION_FAILED"
	NotificationBookingsUnavailable NotificationType = "BOOKINGS_UNAVAILABLE"
)

// Notification represents a notification to be delivered to the user. The
// presentation layer decides how it is rendered.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService delivers user-facing signals for payment and
// cancellation outcomes.
type NotificationService struct {
	// In a real system, this would have:
	// - Push notification client (FCM, APNS)
	// - Email client (SendGrid)
	// - WebSocket connections for real-time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyPaymentSuccess tells the user a booking payment went through.
func (s *NotificationService) NotifyPaymentSuccess(ctx context.Context, userID, bookingID string) {
	s.send(ctx, Notification{
		Type:        NotificationPaymentSuccess,
		RecipientID: userID,
		Title:       "Payment Successful",
		Message:     fmt.Sprintf("Payment for booking %s was completed.", bookingID),
		Data:        map[string]interface{}{"booking_id": bookingID},
		CreatedAt:   time.Now(),
	})
}

// NotifyPaymentFailed tells the user a payment attempt did not complete. The
// user may retry; a retry always starts a fresh order.
func (s *NotificationService) NotifyPaymentFailed(ctx context.Context, userID, bookingID string) {
	s.send(ctx, Notification{
		Type:        NotificationPaymentFailed,
		RecipientID: userID,
		Title:       "Payment Failed",
		Message:     fmt.Sprintf("Payment for booking %s could not be completed. Please try again.", bookingID),
		Data:        map[string]interface{}{"booking_id": bookingID},
		CreatedAt:   time.Now(),
	})
}

// NotifyBookingCancelled tells the user a booking was cancelled.
func (s *NotificationService) NotifyBookingCancelled(ctx context.Context, userID, bookingID string) {
	s.send(ctx, Notification{
		Type:        NotificationBookingCancelled,
		RecipientID: userID,
		Title:       "Booking Cancelled",
		Message:     fmt.Sprintf("Booking %s was cancelled.", bookingID),
		Data:        map[string]interface{}{"booking_id": bookingID},
		CreatedAt:   time.Now(),
	})
}

// NotifyCancellationFailed tells the user a cancellation was refused. When the
// backend supplied a human-readable reason it is passed along verbatim.
func (s *NotificationService) NotifyCancellationFailed(ctx context.Context, userID, bookingID, reason string) {
	message := fmt.Sprintf("Booking %s could not be cancelled. Please try again later.", bookingID)
	if reason != "" {
		message = fmt.Sprintf("Booking %s could not be cancelled: %s", bookingID, reason)
	}
	s.send(ctx, Notification{
		Type:        NotificationCancellationFailed,
		RecipientID: userID,
		Title:       "Cancellation Failed",
		Message:     message,
		Data:        map[string]interface{}{"booking_id": bookingID},
		CreatedAt:   time.Now(),
	})
}

// send delivers the notification. Currently logs; delivery transports plug in
// here.
func (s *NotificationService) send(ctx context.Context, n Notification) {
	log.Printf("[NOTIFICATION] type=%s recipient=%s title=%q message=%q",
		n.Type, n.RecipientID, n.Title, n.Message)
}
