package services

import (
	"context"

	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/mentormatch/mentormatch-api/internal/repository"
)

// RevenuePerSession is the flat amount, in dollars, the admin dashboard
// counts for every completed session
const RevenuePerSession = 100

// DashboardService assembles the mentee, mentor and admin dashboards
type DashboardService struct {
	bookings repository.BookingStore
	stats    repository.StatsStore
	profiles repository.ProfileStore
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(bookings repository.BookingStore, stats repository.StatsStore, profiles repository.ProfileStore) *DashboardService {
	return &DashboardService{
		bookings: bookings,
		stats:    stats,
		profiles: profiles,
	}
}

// MenteeDashboard splits a mentee's bookings into upcoming (confirmed) and
// past (completed) sessions
func (s *DashboardService) MenteeDashboard(ctx context.Context, userID string) (*models.MenteeDashboard, error) {
	bookings, err := s.bookings.ListForUser(ctx, userID, models.SideMentee)
	if err != nil {
		return nil, err
	}

	dash := &models.MenteeDashboard{
		Upcoming: []models.Booking{},
		Past:     []models.Booking{},
	}
	for _, b := range bookings {
		switch b.Status {
		case models.BookingConfirmed:
			dash.Upcoming = append(dash.Upcoming, b)
		case models.BookingCompleted:
			dash.Past = append(dash.Past, b)
		}
	}
	return dash, nil
}

// MentorDashboard returns a mentor's aggregate and upcoming sessions
func (s *DashboardService) MentorDashboard(ctx context.Context, mentorID string) (*models.MentorDashboard, error) {
	stats, err := s.stats.MentorStats(ctx, mentorID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.ListForUser(ctx, mentorID, models.SideMentor)
	if err != nil {
		return nil, err
	}

	upcoming := []models.Booking{}
	for _, b := range bookings {
		if b.Status == models.BookingConfirmed {
			upcoming = append(upcoming, b)
		}
	}

	return &models.MentorDashboard{Stats: *stats, Upcoming: upcoming}, nil
}

// AdminStats returns the platform aggregate; it never returns a partial result
func (s *DashboardService) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	return s.stats.AdminStats(ctx, RevenuePerSession)
}

// AdminUsers pages through all profiles, newest first
func (s *DashboardService) AdminUsers(ctx context.Context, limit, offset int) ([]models.AdminUserListItem, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.profiles.List(ctx, limit, offset)
}
