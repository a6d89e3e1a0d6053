package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mentormatch/mentormatch-api/internal/flow"
	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/mentormatch/mentormatch-api/internal/repository"
	apperrors "github.com/mentormatch/mentormatch-api/pkg/errors"
	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"github.com/mentormatch/mentormatch-api/pkg/metrics"
	"github.com/mentormatch/mentormatch-api/pkg/tracing"
	"github.com/mentormatch/mentormatch-api/pkg/trigger"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// PaymentConfig tunes the payment step
type PaymentConfig struct {
	Currency string
	// Timeout bounds one gateway call
	Timeout time.Duration
}

// PaymentService charges a mentee for a pending booking and confirms it
type PaymentService struct {
	payments repository.PaymentStore
	bookings repository.BookingStore
	mentors  repository.MentorStore
	gateway  flow.PaymentGateway
	checkout *flow.Checkout
	notifier *trigger.Notifier
	cfg      PaymentConfig
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	payments repository.PaymentStore,
	bookings repository.BookingStore,
	mentors repository.MentorStore,
	gateway flow.PaymentGateway,
	checkout *flow.Checkout,
	notifier *trigger.Notifier,
	cfg PaymentConfig,
) *PaymentService {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &PaymentService{
		payments: payments,
		bookings: bookings,
		mentors:  mentors,
		gateway:  gateway,
		checkout: checkout,
		notifier: notifier,
		cfg:      cfg,
	}
}

// AmountCents prices a session at the mentor's hourly rate, prorated by the minute
func AmountCents(hourlyRate int, d time.Duration) int64 {
	return int64(hourlyRate) * 100 * int64(d/time.Minute) / 60
}

// Pay charges the booking's mentee. Concurrent or repeated payments for the
// same booking share one charge; a declined or cancelled charge may be retried.
func (s *PaymentService) Pay(ctx context.Context, payerID, bookingID, cardToken string) (*models.PayBookingResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "payment.pay", attribute.String("booking.id", bookingID))
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.MenteeID != payerID {
		err = apperrors.AccessDeniedError("only the mentee can pay for a booking")
		return nil, err
	}

	start := time.Now()
	outcome := s.checkout.ConfirmPayment(ctx, bookingID, func(ctx context.Context) (string, error) {
		return s.charge(ctx, booking, cardToken)
	})
	if !outcome.Joined {
		metrics.PaymentOutcomes.WithLabelValues(outcome.Status.String()).Inc()
		metrics.PaymentDuration.Observe(metrics.MeasureDuration(start))
	}
	if !outcome.OK() {
		err = outcome.Err
		return nil, err
	}

	payment, err := s.payments.LatestForBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &models.PayBookingResponse{Payment: payment, Next: outcome.Next}, nil
}

func (s *PaymentService) charge(ctx context.Context, booking *models.Booking, cardToken string) (string, error) {
	if booking.Status != models.BookingPending {
		return "", apperrors.ConflictError(fmt.Sprintf("booking is %s, not awaiting payment", booking.Status))
	}

	mentor, err := s.mentors.GetByID(ctx, booking.MentorID)
	if err != nil {
		return "", err
	}
	amount := AmountCents(mentor.HourlyRate, booking.Duration())
	if amount <= 0 {
		return "", apperrors.InvalidInputError("booking", "session is too short to charge")
	}

	payment, err := s.payments.Create(ctx, booking.ID, amount, s.cfg.Currency)
	if err != nil {
		return "", err
	}

	chargeCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	charge, err := s.gateway.Charge(chargeCtx, flow.ChargeRequest{
		BookingID:      booking.ID,
		AmountCents:    amount,
		Currency:       s.cfg.Currency,
		CardToken:      cardToken,
		IdempotencyKey: payment.ID,
	})
	if err != nil {
		s.settleFailed(ctx, payment.ID, err)
		if errors.Is(err, flow.ErrCardDeclined) {
			return "", fmt.Errorf("%w: %w", flow.ErrCardDeclined, apperrors.ErrInvalidInput)
		}
		return "", err
	}

	if _, err := s.payments.Succeed(ctx, payment.ID, booking.ID, charge.Reference); err != nil {
		s.settleUnconfirmed(ctx, payment.ID, charge.Reference, err)
		return "", err
	}

	logger.Info("Booking paid",
		zap.String("booking_id", booking.ID),
		zap.String("payment_id", payment.ID),
		zap.Int64("amount_cents", amount),
		zap.String("reference", charge.Reference))
	metrics.BookingTransitions.WithLabelValues(string(models.BookingPending), string(models.BookingConfirmed)).Inc()
	s.notifier.FireAsync(ctx, trigger.BookingConfirmed, booking.ID, map[string]any{
		"booking_id":   booking.ID,
		"mentor_id":    booking.MentorID,
		"mentee_id":    booking.MenteeID,
		"start_time":   booking.StartTime,
		"amount_cents": amount,
	})

	return payment.ID, nil
}

// settleFailed records a failed or abandoned charge. It runs even when the
// request that started the charge has gone away.
func (s *PaymentService) settleFailed(ctx context.Context, paymentID string, cause error) {
	status := models.PaymentFailed
	if ctx.Err() != nil || errors.Is(cause, context.Canceled) {
		status = models.PaymentCancelled
	}

	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if _, err := s.payments.Settle(settleCtx, paymentID, status, cause.Error()); err != nil {
		logger.Error("Failed to settle payment",
			zap.String("payment_id", paymentID),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}

// settleUnconfirmed closes a payment whose charge went through but whose
// booking could not be confirmed. The reference is kept for the refund.
func (s *PaymentService) settleUnconfirmed(ctx context.Context, paymentID, reference string, cause error) {
	logger.Error("Charged payment could not be confirmed",
		zap.String("payment_id", paymentID),
		zap.String("reference", reference),
		zap.Error(cause))

	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	failure := fmt.Sprintf("charged but not confirmed (reference %s): %v", reference, cause)
	if _, err := s.payments.Settle(settleCtx, paymentID, models.PaymentFailed, failure); err != nil {
		logger.Error("Failed to settle payment",
			zap.String("payment_id", paymentID),
			zap.String("reference", reference),
			zap.Error(err))
	}
}

// LatestPayment returns the most recent payment of a booking visible to the actor
func (s *PaymentService) LatestPayment(ctx context.Context, actor *models.Identity, bookingID string) (*models.Payment, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.HasParticipant(actor.UserID) && !actor.Capabilities.Has(models.CapabilityAdmin) {
		return nil, apperrors.AccessDeniedError("not a participant of this booking")
	}
	return s.payments.LatestForBooking(ctx, bookingID)
}
