package services

import (
	"context"

	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/mentormatch/mentormatch-api/internal/repository"
	apperrors "github.com/mentormatch/mentormatch-api/pkg/errors"
	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"github.com/mentormatch/mentormatch-api/pkg/metrics"
	"github.com/mentormatch/mentormatch-api/pkg/trigger"
	"go.uber.org/zap"
)

// ReviewService accepts mentee reviews of completed sessions
type ReviewService struct {
	reviews  repository.ReviewStore
	bookings repository.BookingStore
	notifier *trigger.Notifier
}

// NewReviewService creates a new ReviewService
func NewReviewService(reviews repository.ReviewStore, bookings repository.BookingStore, notifier *trigger.Notifier) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		bookings: bookings,
		notifier: notifier,
	}
}

// SubmitReview records the mentee's rating of a completed booking.
// A booking can be reviewed once.
func (s *ReviewService) SubmitReview(ctx context.Context, reviewerID, bookingID string, req *models.SubmitReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		metrics.ReviewsSubmitted.WithLabelValues("rejected").Inc()
		return nil, apperrors.InvalidInputError("rating", "must be between 1 and 5")
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		metrics.ReviewsSubmitted.WithLabelValues("error").Inc()
		return nil, err
	}
	if booking.MenteeID != reviewerID {
		metrics.ReviewsSubmitted.WithLabelValues("rejected").Inc()
		return nil, apperrors.AccessDeniedError("only the mentee can review a booking")
	}
	if booking.Status != models.BookingCompleted {
		metrics.ReviewsSubmitted.WithLabelValues("rejected").Inc()
		return nil, apperrors.InvalidInputError("booking", "only completed sessions can be reviewed")
	}

	review, err := s.reviews.Create(ctx, bookingID, reviewerID, req.Rating, req.Comment)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			metrics.ReviewsSubmitted.WithLabelValues("duplicate").Inc()
		} else {
			metrics.ReviewsSubmitted.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	metrics.ReviewsSubmitted.WithLabelValues("success").Inc()
	logger.Info("Review submitted",
		zap.String("booking_id", bookingID),
		zap.String("mentor_id", booking.MentorID),
		zap.Int("rating", review.Rating))

	s.notifier.FireAsync(ctx, trigger.ReviewCreated, review.ID, map[string]any{
		"booking_id": bookingID,
		"mentor_id":  booking.MentorID,
		"rating":     review.Rating,
	})

	return review, nil
}

// ListForMentor returns the reviews of a mentor's sessions, newest first
func (s *ReviewService) ListForMentor(ctx context.Context, mentorID string, limit int) ([]models.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = mentorReviewsLimit
	}
	return s.reviews.ListForMentor(ctx, mentorID, limit)
}
