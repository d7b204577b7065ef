package postgres

import (
	"context"
	"database/sql"
	"errors"

	"bookingpay/internal/domain"
	"bookingpay/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// PaymentAttemptRepository is a PostgreSQL implementation of
// repository.PaymentAttemptRepository.
type PaymentAttemptRepository struct {
	q Querier
}

// NewPaymentAttemptRepository creates a new PostgreSQL attempt repository.
func NewPaymentAttemptRepository(db *sql.DB) *PaymentAttemptRepository {
	return &PaymentAttemptRepository{q: db}
}

// NewPaymentAttemptRepositoryWithTx creates an attempt repository using a
// transaction.
func NewPaymentAttemptRepositoryWithTx(tx *sql.Tx) *PaymentAttemptRepository {
	return &PaymentAttemptRepository{q: tx}
}

// Create persists a new payment attempt.
func (r *PaymentAttemptRepository) Create(ctx context.Context, attempt *domain.PaymentAttempt) error {
	query := `
		INSERT INTO payment_attempts (id, booking_id, order_id, amount, currency, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		attempt.ID,
		attempt.BookingID,
		attempt.OrderID,
		attempt.Amount,
		attempt.Currency,
		attempt.Status,
		attempt.CreatedAt,
	)

	return err
}

// UpdateStatus updates the status of an attempt.
func (r *PaymentAttemptRepository) UpdateStatus(ctx context.Context, id string, status domain.AttemptStatus) error {
	query := `UPDATE payment_attempts SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// GetByOrderID retrieves the attempt tied to a provider order.
func (r *PaymentAttemptRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentAttempt, error) {
	query := `
		SELECT id, booking_id, order_id, amount, currency, status, created_at
		FROM payment_attempts WHERE order_id = $1
	`

	var attempt domain.PaymentAttempt
	err := r.q.QueryRowContext(ctx, query, orderID).Scan(
		&attempt.ID,
		&attempt.BookingID,
		&attempt.OrderID,
		&attempt.Amount,
		&attempt.Currency,
		&attempt.Status,
		&attempt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &attempt, nil
}

// ListByBooking retrieves all attempts recorded for a booking, newest first.
func (r *PaymentAttemptRepository) ListByBooking(ctx context.Context, bookingID string) ([]*domain.PaymentAttempt, error) {
	query := `
		SELECT id, booking_id, order_id, amount, currency, status, created_at
		FROM payment_attempts WHERE booking_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []*domain.PaymentAttempt
	for rows.Next() {
		var attempt domain.PaymentAttempt
		if err := rows.Scan(
			&attempt.ID,
			&attempt.BookingID,
			&attempt.OrderID,
			&attempt.Amount,
			&attempt.Currency,
			&attempt.Status,
			&attempt.CreatedAt,
		); err != nil {
			return nil, err
		}
		attempts = append(attempts, &attempt)
	}

	return attempts, rows.Err()
}
