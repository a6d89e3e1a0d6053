package repository

import (
	"context"
	"time"

	"github.com/mentormatch/mentormatch-api/internal/database/postgres"
	"github.com/mentormatch/mentormatch-api/internal/models"
)

// StatsRepository computes dashboard aggregates. Each aggregate is a single
// statement, so it either succeeds as a whole or fails as a whole.
type StatsRepository struct {
	db *postgres.Client
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *postgres.Client) *StatsRepository {
	return &StatsRepository{db: db}
}

// AdminStats counts users, mentors and bookings; revenue is completed bookings
// times revenuePerSession
func (r *StatsRepository) AdminStats(ctx context.Context, revenuePerSession int) (s *models.AdminStats, err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "adminStats", start, err) }()

	query := `
		SELECT
			(SELECT COUNT(*) FROM profiles),
			(SELECT COUNT(*) FROM mentor_profiles),
			(SELECT COUNT(*) FROM bookings),
			(SELECT COUNT(*) FROM bookings WHERE status = 'completed')`

	s = &models.AdminStats{}
	err = r.db.Q().QueryRow(ctx, query).Scan(&s.TotalUsers, &s.TotalMentors, &s.TotalBookings, &s.CompletedBookings)
	if err != nil {
		return nil, translate(err, "stats")
	}
	s.TotalRevenue = s.CompletedBookings * revenuePerSession
	return s, nil
}

// MentorStats summarizes one mentor's sessions and reviews.
// Earnings are completed sessions times the mentor's hourly rate.
func (r *StatsRepository) MentorStats(ctx context.Context, mentorID string) (s *models.MentorStats, err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "mentorStats", start, err) }()

	query := `
		SELECT
			(SELECT COUNT(*) FROM bookings WHERE mentor_id = mp.id),
			(SELECT COUNT(*) FROM bookings WHERE mentor_id = mp.id AND status = 'completed'),
			mp.hourly_rate,
			(SELECT AVG(r.rating)::float8 FROM reviews r JOIN bookings b ON b.id = r.booking_id WHERE b.mentor_id = mp.id),
			(SELECT COUNT(*) FROM reviews r JOIN bookings b ON b.id = r.booking_id WHERE b.mentor_id = mp.id)
		FROM mentor_profiles mp
		WHERE mp.id = $1`

	var hourlyRate int
	s = &models.MentorStats{}
	err = r.db.Q().QueryRow(ctx, query, mentorID).Scan(
		&s.TotalSessions, &s.CompletedSessions, &hourlyRate, &s.AverageRating, &s.ReviewCount)
	if err != nil {
		return nil, translate(err, "mentor")
	}
	s.Earnings = s.CompletedSessions * hourlyRate
	return s, nil
}

var _ StatsStore = (*StatsRepository)(nil)
