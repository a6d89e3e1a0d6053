package services

import (
	"context"
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

// BookingService creates bookings and moves them through their lifecycle
type BookingService struct {
	bookings repository.BookingStore
	mentors  repository.MentorStore
	checkout *flow.Checkout
	notifier *trigger.Notifier
	now      func() time.Time
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookings repository.BookingStore,
	mentors repository.MentorStore,
	checkout *flow.Checkout,
	notifier *trigger.Notifier,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		mentors:  mentors,
		checkout: checkout,
		notifier: notifier,
		now:      time.Now,
	}
}

// CreateBooking books a mentor's slot for the mentee. Repeated submissions
// of the same slot while the first is being confirmed join it.
func (s *BookingService) CreateBooking(ctx context.Context, menteeID string, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "booking.create",
		attribute.String("mentor.id", req.MentorID),
		attribute.String("mentee.id", menteeID))
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if err = s.validateBooking(ctx, menteeID, req); err != nil {
		metrics.BookingsCreated.WithLabelValues("rejected").Inc()
		return nil, err
	}

	key := fmt.Sprintf("%s:%s:%s", menteeID, req.MentorID, req.StartTime.UTC().Format(time.RFC3339))
	outcome := s.checkout.ConfirmBooking(ctx, key, func(ctx context.Context) (string, error) {
		b, createErr := s.bookings.Create(ctx, req.MentorID, menteeID, req.StartTime.UTC(), req.EndTime.UTC(), req.Notes)
		if createErr != nil {
			return "", createErr
		}
		return b.ID, nil
	})
	metrics.BookingsCreated.WithLabelValues(outcome.Status.String()).Inc()
	if !outcome.OK() {
		err = outcome.Err
		return nil, err
	}

	booking, err := s.bookings.GetByID(ctx, outcome.ResourceID)
	if err != nil {
		return nil, err
	}

	if !outcome.Joined {
		logger.Info("Booking created",
			zap.String("booking_id", booking.ID),
			zap.String("mentor_id", booking.MentorID),
			zap.String("mentee_id", booking.MenteeID),
			zap.Time("start_time", booking.StartTime))
	}

	return &models.CreateBookingResponse{Booking: booking, Next: outcome.Next}, nil
}

func (s *BookingService) validateBooking(ctx context.Context, menteeID string, req *models.CreateBookingRequest) error {
	if !req.StartTime.Before(req.EndTime) {
		return apperrors.InvalidInputError("endTime", "must be after startTime")
	}
	if !req.StartTime.After(s.now()) {
		return apperrors.InvalidInputError("startTime", "must be in the future")
	}
	if req.MentorID == menteeID {
		return apperrors.InvalidInputError("mentorId", "cannot book a session with yourself")
	}

	mentor, err := s.mentors.GetByID(ctx, req.MentorID)
	if err != nil {
		return err
	}
	if !mentor.Profile.IsMentor() {
		return apperrors.InvalidInputError("mentorId", "profile is not a mentor")
	}
	if !mentor.Availability.Allows(req.StartTime) {
		return apperrors.InvalidInputError("startTime", "outside the mentor's availability")
	}
	return nil
}

// GetBooking returns a booking visible to one of its participants
func (s *BookingService) GetBooking(ctx context.Context, actor *models.Identity, bookingID string) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.HasParticipant(actor.UserID) && !actor.Capabilities.Has(models.CapabilityAdmin) {
		return nil, apperrors.AccessDeniedError("not a participant of this booking")
	}
	return booking, nil
}

// ListForUser returns a user's bookings on one side, ordered by start time
func (s *BookingService) ListForUser(ctx context.Context, userID string, side models.BookingSide) ([]models.Booking, error) {
	switch side {
	case models.SideMentee, models.SideMentor, models.SideAny:
	case "":
		side = models.SideAny
	default:
		return nil, apperrors.InvalidInputError("side", "must be mentee, mentor or any")
	}
	return s.bookings.ListForUser(ctx, userID, side)
}

// ListForMentor returns the bookings of a mentor, ordered by start time
func (s *BookingService) ListForMentor(ctx context.Context, mentorID string) ([]models.Booking, error) {
	return s.bookings.ListForUser(ctx, mentorID, models.SideMentor)
}

// UpdateStatus moves a booking forward. Either participant may cancel;
// confirming and completing are the mentor's calls.
func (s *BookingService) UpdateStatus(ctx context.Context, actor *models.Identity, bookingID string, to models.BookingStatus) (*models.Booking, error) {
	booking, err := s.GetBooking(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}

	isAdmin := actor.Capabilities.Has(models.CapabilityAdmin)
	if to != models.BookingCancelled && booking.MentorID != actor.UserID && !isAdmin {
		return nil, apperrors.AccessDeniedError("only the mentor can " + statusVerb(to) + " a booking")
	}

	from := booking.Status
	if !from.CanTransitionTo(to) {
		return nil, apperrors.InvalidInputError("status", fmt.Sprintf("cannot move a %s booking to %s", from, to))
	}

	if err := s.bookings.UpdateStatus(ctx, bookingID, from, to); err != nil {
		return nil, err
	}
	metrics.BookingTransitions.WithLabelValues(string(from), string(to)).Inc()
	logger.Info("Booking status changed",
		zap.String("booking_id", bookingID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor_id", actor.UserID))

	booking.Status = to
	booking.UpdatedAt = s.now()

	switch to {
	case models.BookingConfirmed:
		s.notifier.FireAsync(ctx, trigger.BookingConfirmed, booking.ID, booking)
	case models.BookingCancelled:
		s.notifier.FireAsync(ctx, trigger.BookingCancelled, booking.ID, booking)
	}

	return booking, nil
}

// Cancel cancels a pending or confirmed booking
func (s *BookingService) Cancel(ctx context.Context, actor *models.Identity, bookingID string) (*models.Booking, error) {
	return s.UpdateStatus(ctx, actor, bookingID, models.BookingCancelled)
}

func statusVerb(to models.BookingStatus) string {
	switch to {
	case models.BookingConfirmed:
		return "confirm"
	case models.BookingCompleted:
		return "complete"
	default:
		return "change"
	}
}
