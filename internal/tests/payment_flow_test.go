package tests

import (
	"context"
	"errors"
	"testing"

	"bookingpay/internal/domain"
	"bookingpay/internal/service"
)

func refreshWith(t *testing.T, coordinator *service.PaymentCoordinator) {
	t.Helper()
	if err := coordinator.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
}

func TestInitiatePayment_ConvertsPriceToMinorUnits(t *testing.T) {
	testCases := []struct {
		name   string
		price  float64
		amount int64
	}{
		{"whole units", 100, 10000},
		{"fractional units", 49.50, 4950},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gw := NewMockBookingGateway()
			gw.SetBookings([]domain.Booking{
				{ID: "1", Price: tc.price, Status: domain.BookingStatusPending},
			})
			idp := NewMockIdentityProvider("user-1")
			auth := NewMockAuthorizer()
			coordinator := newCoordinator(gw, idp, auth)
			refreshWith(t, coordinator)

			options, err := coordinator.InitiatePayment(context.Background(), "1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if gw.LastOrderAmount != tc.amount {
				t.Errorf("expected order amount %d, got %d", tc.amount, gw.LastOrderAmount)
			}
			if options.Amount != tc.amount {
				t.Errorf("expected checkout amount %d, got %d", tc.amount, options.Amount)
			}
		})
	}
}

func TestInitiatePayment_OrderFailureNeverOpensWidget(t *testing.T) {
	gw := NewMockBookingGateway()
	gw.SetBookings([]domain.Booking{
		{ID: "1", Price: 100, Status: domain.BookingStatusPending},
	})
	gw.CreateOrderError = errors.New("order backend down")
	idp := NewMockIdentityProvider("user-1")
	auth := NewMockAuthorizer()
	coordinator := newCoordinator(gw, idp, auth)
	refreshWith(t, coordinator)

	before := coordinator.ActionableBookings()
	_, err := coordinator.InitiatePayment(context.Background(), "1")

	if !errors.Is(err, service.ErrOrderCreation) {
		t.Errorf("expected ErrOrderCreation, got %v", err)
	}
	if auth.AuthorizeCallCount != 0 {
		t.Errorf("expected widget never invoked, got %d calls", auth.AuthorizeCallCount)
	}
	if after := coordinator.ActionableBookings(); len(after) != len(before) {
		t.Errorf("expected view unchanged, got %v", after)
	}
}

func TestInitiatePayment_UnknownBookingRejected(t *testing.T) {
	gw := NewMockBookingGateway()
	gw.SetBookings([]domain.Booking{
		{ID: "1", Price: 100, Status: domain.BookingStatusPending},
	})
	idp := NewMockIdentityProvider("user-1")
	coordinator := newCoordinator(gw, idp, NewMockAuthorizer())
	refreshWith(t, coordinator)

	_, err := coordinator.InitiatePayment(context.Background(), "99")
	if !errors.Is(err, service.ErrBookingNotFound) {
		t.Errorf("expected ErrBookingNotFound, got %v", err)
	}

	_, err = coordinator.InitiatePayment(context.Background(), "")
	if !errors.Is(err, service.ErrInvalidBookingID) {
		t.Errorf("expected ErrInvalidBookingID, got %v", err)
	}
}

func TestPaymentFlow_SuccessVerifiesAndRefreshesOnce(t *testing.T) {
	gw := NewMockBookingGateway()
	gw.SetBookings([]domain.Booking{
		{ID: "1", Price: 100, Status: domain.BookingStatusPending},
	})
	idp := NewMockIdentityProvider("user-1")
	auth := NewMockAuthorizer()
	coordinator := newCoordinator(gw, idp, auth)
	refreshWith(t, coordinator)

	_, err := coordinator.InitiatePayment(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.LastOrderAmount != 10000 {
		t.Errorf("expected order amount 10000, got %d", gw.LastOrderAmount)
	}

	// Backend marks the booking delivered once payment is verified.
	gw.SetBookings([]domain.Booking{
		{ID: "1", Price: 100, Status: domain.BookingStatusDelivered},
	})

	fetchesBefore := gw.FetchCallCount
	confirmation := domain.PaymentConfirmation(`{"order_id":"order-1","signature":"sig"}`)
	if err := auth.FireSuccess(context.Background(), confirmation); err != nil {
		t.Fatalf("unexpected callback error: %v", err)
	}

	if gw.ConfirmCallCount != 1 {
		t.Fatalf("expected one verification call, got %d", gw.ConfirmCallCount)
	}
	if string(gw.LastConfirmation) != string(confirmation) {
		t.Errorf("expected confirmation forwarded verbatim, got %s", gw.LastConfirmation)
	}
	if gw.LastConfirmBookingID != "1" {
		t.Errorf("expected verification for booking 1, got %s", gw.LastConfirmBookingID)
	}
	if gw.LastConfirmUserID != "user-1" {
		t.Errorf("expected verification for user-1, got %s", gw.LastConfirmUserID)
	}
	if got := gw.FetchCallCount - fetchesBefore; got != 1 {
		t.Errorf("expected exactly one refresh after verification, got %d", got)
	}
	if view := coordinator.ActionableBookings(); len(view) != 0 {
		t.Errorf("expected delivered booking to drop out of the view, got %v", view)
	}
}

func TestPaymentFlow_RefreshFollowsVerificationEvenWhenRefreshFails(t *testing.T) {
	gw := NewMockBookingGateway()
	gw.SetBookings([]domain.Booking{
		{ID: "1", Price: 100, Status: domain.BookingStatusPending},
	})
	idp := NewMockIdentityProvider("user-1")
	auth := NewMockAuthorizer()
	coordinator := newCoordinator(gw, idp, auth)
	refreshWith(t, coordinator)

	if _, err := coordinator.InitiatePayment(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gw.FetchError = errors.New("backend down")
	fetchesBefore := gw.FetchCallCount

	if err := auth.FireSuccess(context.Background(), domain.PaymentConfirmation(`{}`)); err != nil {
		t.Fatalf("unexpected callback error: %v", err)
	}

	if got := gw.FetchCallCount - fetchesBefore; got != 1 {
		t.Errorf("expected refresh attempted exactly once, got %d", got)
	}
	// The stale view survives the failed refresh.
	if view := coordinator.ActionableBookings(); len(view) != 1 {
		t.Errorf("expected stale view preserved, got %v", view)
	}
}

func TestPaymentFlow_VerificationFailureLeavesViewUnchanged(t *testing.T) {
	gw := NewMockBookingGateway()
	gw.SetBookings([]domain.Booking{
		{ID: "1", Price: 100, Status: domain.BookingStatusPending},
	})
	idp := NewMockIdentityProvider("user-1")
	auth := NewMockAuthorizer()
	coordinator := newCoordinator(gw, idp, auth)
	refreshWith(t, coordinator)

	if _, err := coordinator.InitiatePayment(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gw.ConfirmError = errors.New("signature mismatch")
	fetchesBefore := gw.FetchCallCount

	err := auth.FireSuccess(context.Background(), domain.PaymentConfirmation(`{}`))
	if !errors.Is(err, service.ErrPaymentVerification) {
		t.Errorf("expected ErrPaymentVerification, got %v", err)
	}
	if gw.FetchCallCount != fetchesBefore {
		t.Errorf("expected no refresh after failed verification, got %d extra", gw.FetchCallCount-fetchesBefore)
	}
	if view := coordinator.ActionableBookings(); len(view) != 1 || view[0].ID != "1" {
		t.Errorf("expected view unchanged, got %v", view)
	}
}

func TestPaymentFlow_IdentityReResolvedInCallback(t *testing.T) {
	gw := NewMockBookingGateway()
	gw.SetBookings([]domain.Booking{
		{ID: "1", Price: 100, Status: domain.BookingStatusPending},
	})
	idp := NewMockIdentityProvider("user-1")
	auth := NewMockAuthorizer()
	coordinator := newCoordinator(gw, idp, auth)
	refreshWith(t, coordinator)

	if _, err := coordinator.InitiatePayment(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Session rotated during the widget detour.
	idp.UserID = "user-renewed"

	if err := auth.FireSuccess(context.Background(), domain.PaymentConfirmation(`{}`)); err != nil {
		t.Fatalf("unexpected callback error: %v", err)
	}

	if gw.LastConfirmUserID != "user-renewed" {
		t.Errorf("expected re-resolved identity in verification, got %s", gw.LastConfirmUserID)
	}
}

func TestPaymentFlow_SessionGoneInCallbackTerminatesSession(t *testing.T) {
	gw := NewMockBookingGateway()
	gw.SetBookings([]domain.Booking{
		{ID: "1", Price: 100, Status: domain.BookingStatusPending},
	})
	idp := NewMockIdentityProvider("user-1")
	auth := NewMockAuthorizer()
	coordinator := newCoordinator(gw, idp, auth)
	refreshWith(t, coordinator)

	if _, err := coordinator.InitiatePayment(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	idp.Absent = true

	err := auth.FireSuccess(context.Background(), domain.PaymentConfirmation(`{}`))
	if !errors.Is(err, service.ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
	if gw.ConfirmCallCount != 0 {
		t.Errorf("expected no verification without identity, got %d", gw.ConfirmCallCount)
	}
	if idp.TerminateCallCount != 1 {
		t.Errorf("expected one session termination, got %d", idp.TerminateCallCount)
	}
}

func TestPaymentFlow_InFlightGuardRejectsSecondAttempt(t *testing.T) {
	gw := NewMockBookingGateway()
	gw.SetBookings([]domain.Booking{
		{ID: "1", Price: 100, Status: domain.BookingStatusPending},
	})
	idp := NewMockIdentityProvider("user-1")
	auth := NewMockAuthorizer()
	locks := NewMockLockStore()
	coordinator := service.NewPaymentCoordinator(gw, idp, auth, locks, nil, nil, 0)
	refreshWith(t, coordinator)

	if _, err := coordinator.InitiatePayment(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := coordinator.InitiatePayment(context.Background(), "1")
	if !errors.Is(err, service.ErrPaymentInFlight) {
		t.Errorf("expected ErrPaymentInFlight, got %v", err)
	}

	// The lock is released once the attempt settles; a fresh attempt may
	// then start a new order.
	if err := auth.FireSuccess(context.Background(), domain.PaymentConfirmation(`{}`)); err != nil {
		t.Fatalf("unexpected callback error: %v", err)
	}
	if locks.Held("1") {
		t.Error("expected lock released after settled attempt")
	}
	if _, err := coordinator.InitiatePayment(context.Background(), "1"); err != nil {
		t.Errorf("expected retry to start a fresh attempt, got %v", err)
	}
}

func TestPaymentFlow_LateCallbackDoesNotReleaseNewerAttemptsLock(t *testing.T) {
	gw := NewMockBookingGateway()
	gw.SetBookings([]domain.Booking{
		{ID: "1", Price: 100, Status: domain.BookingStatusPending},
	})
	idp := NewMockIdentityProvider("user-1")
	auth := NewMockAuthorizer()
	locks := NewMockLockStore()
	coordinator := service.NewPaymentCoordinator(gw, idp, auth, locks, nil, nil, 0)
	refreshWith(t, coordinator)

	// First attempt opens the widget, then sits there past the lock TTL.
	if _, err := coordinator.InitiatePayment(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	staleCallback := auth.Callback()
	locks.ForceExpire("1")

	// A second attempt takes a fresh lock with its own token.
	if _, err := coordinator.InitiatePayment(context.Background(), "1"); err != nil {
		t.Fatalf("expected second attempt after expiry, got %v", err)
	}

	// The abandoned attempt's callback finally fires. Its release must not
	// touch the second attempt's lock.
	if err := staleCallback(context.Background(), domain.PaymentConfirmation(`{}`)); err != nil {
		t.Fatalf("unexpected callback error: %v", err)
	}
	if !locks.Held("1") {
		t.Fatal("expected second attempt's lock to survive the stale release")
	}

	// The second attempt's own callback still releases normally.
	if err := auth.FireSuccess(context.Background(), domain.PaymentConfirmation(`{}`)); err != nil {
		t.Fatalf("unexpected callback error: %v", err)
	}
	if locks.Held("1") {
		t.Error("expected lock released by its owning attempt")
	}
}

func TestInitiatePayment_LockStoreOutageFailsOpen(t *testing.T) {
	gw := NewMockBookingGateway()
	gw.SetBookings([]domain.Booking{
		{ID: "1", Price: 100, Status: domain.BookingStatusPending},
	})
	idp := NewMockIdentityProvider("user-1")
	auth := NewMockAuthorizer()
	locks := NewMockLockStore()
	locks.AcquireError = errors.New("redis down")
	coordinator := service.NewPaymentCoordinator(gw, idp, auth, locks, nil, nil, 0)
	refreshWith(t, coordinator)

	// The guard is best-effort: a store outage must not block payments.
	if _, err := coordinator.InitiatePayment(context.Background(), "1"); err != nil {
		t.Fatalf("expected payment to proceed despite lock store outage, got %v", err)
	}
	if auth.AuthorizeCallCount != 1 {
		t.Errorf("expected widget opened, got %d calls", auth.AuthorizeCallCount)
	}
}

func TestInitiatePayment_WidgetFailureReleasesLock(t *testing.T) {
	gw := NewMockBookingGateway()
	gw.SetBookings([]domain.Booking{
		{ID: "1", Price: 100, Status: domain.BookingStatusPending},
	})
	idp := NewMockIdentityProvider("user-1")
	auth := NewMockAuthorizer()
	auth.AuthorizeError = errors.New("checkout rejected")
	locks := NewMockLockStore()
	coordinator := service.NewPaymentCoordinator(gw, idp, auth, locks, nil, nil, 0)
	refreshWith(t, coordinator)

	_, err := coordinator.InitiatePayment(context.Background(), "1")
	if !errors.Is(err, service.ErrWidgetUnavailable) {
		t.Errorf("expected ErrWidgetUnavailable, got %v", err)
	}
	// The order exists at this point; the failure must not read as one of
	// order creation.
	if errors.Is(err, service.ErrOrderCreation) {
		t.Errorf("expected widget failure distinct from order creation, got %v", err)
	}
	if locks.Held("1") {
		t.Error("expected lock released after widget failure")
	}

	auth.AuthorizeError = nil
	if _, err := coordinator.InitiatePayment(context.Background(), "1"); err != nil {
		t.Errorf("expected retry after widget failure, got %v", err)
	}
}

func TestPaymentFlow_RecordsAttemptAuditTrail(t *testing.T) {
	gw := NewMockBookingGateway()
	gw.SetBookings([]domain.Booking{
		{ID: "1", Price: 100, Status: domain.BookingStatusPending},
	})
	idp := NewMockIdentityProvider("user-1")
	auth := NewMockAuthorizer()
	attempts := NewMockAttemptRepository()
	coordinator := service.NewPaymentCoordinator(gw, idp, auth, nil, attempts, nil, 0)
	refreshWith(t, coordinator)

	if _, err := coordinator.InitiatePayment(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts.CreateCallCount != 1 {
		t.Fatalf("expected one attempt recorded, got %d", attempts.CreateCallCount)
	}
	if got := attempts.AttemptStatuses()["order-1"]; got != domain.AttemptStatusOrderCreated {
		t.Errorf("expected ORDER_CREATED, got %s", got)
	}

	if err := auth.FireSuccess(context.Background(), domain.PaymentConfirmation(`{}`)); err != nil {
		t.Fatalf("unexpected callback error: %v", err)
	}
	if got := attempts.AttemptStatuses()["order-1"]; got != domain.AttemptStatusVerified {
		t.Errorf("expected VERIFIED, got %s", got)
	}
}

func TestPaymentFlow_AuditFailureNeverBlocksPayment(t *testing.T) {
	gw := NewMockBookingGateway()
	gw.SetBookings([]domain.Booking{
		{ID: "1", Price: 100, Status: domain.BookingStatusPending},
	})
	idp := NewMockIdentityProvider("user-1")
	auth := NewMockAuthorizer()
	attempts := NewMockAttemptRepository()
	attempts.CreateError = errors.New("db down")
	coordinator := service.NewPaymentCoordinator(gw, idp, auth, nil, attempts, nil, 0)
	refreshWith(t, coordinator)

	if _, err := coordinator.InitiatePayment(context.Background(), "1"); err != nil {
		t.Errorf("expected payment to proceed despite audit failure, got %v", err)
	}
	if auth.AuthorizeCallCount != 1 {
		t.Errorf("expected widget opened, got %d calls", auth.AuthorizeCallCount)
	}
}
