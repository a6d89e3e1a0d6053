package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mentormatch/mentormatch-api/internal/database/postgres"
	"github.com/mentormatch/mentormatch-api/internal/models"
	apperrors "github.com/mentormatch/mentormatch-api/pkg/errors"
)

// PaymentRepository handles payment data access
type PaymentRepository struct {
	db *postgres.Client
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *postgres.Client) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a pending payment
func (r *PaymentRepository) Create(ctx context.Context, bookingID string, amountCents int64, currency string) (p *models.Payment, err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "createPayment", start, err) }()

	query := `
		INSERT INTO payments (booking_id, amount_cents, currency, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING ` + paymentColumns

	p, err = ScanPayment(r.db.Q().QueryRow(ctx, query, bookingID, amountCents, currency))
	if err != nil {
		return nil, translate(err, "payment")
	}
	return p, nil
}

// Succeed marks the payment succeeded and confirms the booking.
// Both changes commit together or not at all.
func (r *PaymentRepository) Succeed(ctx context.Context, paymentID, bookingID, reference string) (p *models.Payment, err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "succeedPayment", start, err) }()

	err = r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var txErr error
		p, txErr = ScanPayment(tx.QueryRow(ctx, `
			UPDATE payments
			SET status = 'succeeded', reference = $2, failure = NULL, updated_at = NOW()
			WHERE id = $1 AND status = 'pending'
			RETURNING `+paymentColumns,
			paymentID, reference))
		if txErr != nil {
			return translate(txErr, "payment")
		}

		tag, txErr := tx.Exec(ctx, `
			UPDATE bookings SET status = 'confirmed', updated_at = NOW()
			WHERE id = $1 AND status = 'pending'`,
			bookingID)
		if txErr != nil {
			return translate(txErr, "booking")
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ConflictError("booking is no longer pending")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Settle records a failed or cancelled payment
func (r *PaymentRepository) Settle(ctx context.Context, paymentID string, status models.PaymentStatus, failure string) (p *models.Payment, err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "settlePayment", start, err) }()

	query := `
		UPDATE payments
		SET status = $2, failure = NULLIF($3, ''), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + paymentColumns

	p, err = ScanPayment(r.db.Q().QueryRow(ctx, query, paymentID, string(status), failure))
	if err != nil {
		return nil, translate(err, "payment")
	}
	return p, nil
}

// LatestForBooking returns the most recent payment of a booking
func (r *PaymentRepository) LatestForBooking(ctx context.Context, bookingID string) (p *models.Payment, err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "latestPayment", start, err) }()

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1 ORDER BY created_at DESC LIMIT 1`

	p, err = ScanPayment(r.db.Q().QueryRow(ctx, query, bookingID))
	if err != nil {
		return nil, translate(err, "payment")
	}
	return p, nil
}

var _ PaymentStore = (*PaymentRepository)(nil)
