package services

import (
	"context"
	"strings"

	"github.com/mentormatch/mentormatch-api/internal/cache"
	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/mentormatch/mentormatch-api/internal/repository"
	apperrors "github.com/mentormatch/mentormatch-api/pkg/errors"
	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"github.com/mentormatch/mentormatch-api/pkg/metrics"
	"go.uber.org/zap"
)

const mentorReviewsLimit = 20

// MentorService serves the browse list, mentor pages and mentor registration.
// Reads go through the mentor cache when one is configured.
type MentorService struct {
	repo    repository.MentorStore
	reviews repository.ReviewStore
	cache   *cache.MentorCache
}

// NewMentorService creates a new MentorService; mentorCache may be nil
func NewMentorService(repo repository.MentorStore, reviews repository.ReviewStore, mentorCache *cache.MentorCache) *MentorService {
	return &MentorService{
		repo:    repo,
		reviews: reviews,
		cache:   mentorCache,
	}
}

func (s *MentorService) cached() bool {
	return s.cache != nil && s.cache.IsReady()
}

// ListMentors returns the browse list, newest mentors first
func (s *MentorService) ListMentors(ctx context.Context, filter models.MentorListFilter) ([]*models.MentorProfile, error) {
	if !s.cached() {
		return s.repo.List(ctx, filter)
	}

	all, err := s.cache.Get()
	if err != nil {
		logger.Warn("Mentor cache unavailable, reading from database", zap.Error(err))
		return s.repo.List(ctx, filter)
	}
	return filterMentors(all, filter), nil
}

// filterMentors applies the same narrowing as the database list query
func filterMentors(mentors []*models.MentorProfile, filter models.MentorListFilter) []*models.MentorProfile {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]*models.MentorProfile, 0, len(mentors))
	for _, m := range mentors {
		if !m.Profile.IsMentor() {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(m.Name()), search) &&
			!strings.Contains(strings.ToLower(m.Title), search) {
			continue
		}
		if filter.MaxRate > 0 && m.HourlyRate > filter.MaxRate {
			continue
		}
		out = append(out, m)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out
}

// GetMentor returns one mentor. Profiles that no longer hold the mentor
// capability are reported as not found.
func (s *MentorService) GetMentor(ctx context.Context, id string) (*models.MentorProfile, error) {
	var (
		mentor *models.MentorProfile
		err    error
	)
	if s.cached() {
		mentor, err = s.cache.GetByID(id)
	}
	if mentor == nil {
		mentor, err = s.repo.GetByID(ctx, id)
	}
	if err != nil {
		metrics.MentorProfileViews.WithLabelValues("error").Inc()
		return nil, err
	}
	if !mentor.Profile.IsMentor() {
		metrics.MentorProfileViews.WithLabelValues("not_found").Inc()
		return nil, apperrors.NotFoundError("mentor")
	}

	metrics.MentorProfileViews.WithLabelValues("success").Inc()
	return mentor, nil
}

// GetMentorDetail returns a mentor with recent reviews and their average rating
func (s *MentorService) GetMentorDetail(ctx context.Context, id string) (*models.MentorDetailResponse, error) {
	mentor, err := s.GetMentor(ctx, id)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListForMentor(ctx, id, mentorReviewsLimit)
	if err != nil {
		return nil, err
	}

	return &models.MentorDetailResponse{
		Mentor:        mentor,
		Reviews:       reviews,
		AverageRating: averageRating(reviews),
	}, nil
}

// ListReviews returns a mentor's reviews, newest first
func (s *MentorService) ListReviews(ctx context.Context, mentorID string, limit int) ([]models.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = mentorReviewsLimit
	}
	return s.reviews.ListForMentor(ctx, mentorID, limit)
}

func averageRating(reviews []models.Review) *float64 {
	if len(reviews) == 0 {
		return nil
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return &avg
}

// RegisterMentor grants the mentor capability to a profile and creates its
// mentor profile with an empty weekly schedule
func (s *MentorService) RegisterMentor(ctx context.Context, profileID string, req *models.RegisterMentorRequest) (*models.MentorProfile, error) {
	mentor, err := s.repo.Register(ctx, profileID, req, models.EmptyAvailability())
	if err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			metrics.MentorRegistrations.WithLabelValues("already_registered").Inc()
		} else {
			metrics.MentorRegistrations.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	s.refreshCached(ctx, mentor.ID)

	metrics.MentorRegistrations.WithLabelValues("success").Inc()
	logger.Info("Mentor registered",
		zap.String("mentor_id", mentor.ID),
		zap.String("title", mentor.Title))
	return mentor, nil
}

// UpdateAvailability replaces a mentor's weekly schedule
func (s *MentorService) UpdateAvailability(ctx context.Context, mentorID string, availability models.Availability) (*models.MentorProfile, error) {
	if err := availability.Validate(); err != nil {
		return nil, apperrors.InvalidInputError("availability", err.Error())
	}

	if err := s.repo.UpdateAvailability(ctx, mentorID, availability); err != nil {
		return nil, err
	}

	s.refreshCached(ctx, mentorID)
	return s.repo.GetByID(ctx, mentorID)
}

// RefreshMentor reloads one mentor into the cache after its profile changed
func (s *MentorService) RefreshMentor(ctx context.Context, mentorID string) {
	s.refreshCached(ctx, mentorID)
}

func (s *MentorService) refreshCached(ctx context.Context, mentorID string) {
	if !s.cached() {
		return
	}
	if err := s.cache.UpdateSingleMentor(ctx, mentorID); err != nil {
		logger.Warn("Failed to refresh mentor in cache",
			zap.String("mentor_id", mentorID),
			zap.Error(err))
	}
}
