package repository

import (
	"context"
	"time"

	"github.com/mentormatch/mentormatch-api/internal/models"
)

// ProfileStore persists user profiles and credentials
type ProfileStore interface {
	// Create inserts a profile; a taken email yields errors.ErrConflict
	Create(ctx context.Context, email, passwordHash, fullName string) (*models.Profile, error)

	// GetByID fetches a profile; a missing row yields errors.ErrNotFound
	GetByID(ctx context.Context, id string) (*models.Profile, error)

	// GetCredentials fetches a profile and its password hash by email
	GetCredentials(ctx context.Context, email string) (*models.Profile, string, error)

	// Update changes the editable profile fields
	Update(ctx context.Context, id, fullName string, bio *string) (*models.Profile, error)

	// UpdateAvatar stores a new avatar URL
	UpdateAvatar(ctx context.Context, id, avatarURL string) error

	// List returns profiles newest first with their booking counts
	List(ctx context.Context, limit, offset int) ([]models.AdminUserListItem, error)
}

// MentorStore persists mentor profiles
type MentorStore interface {
	// List returns mentors whose profile holds the mentor capability
	List(ctx context.Context, filter models.MentorListFilter) ([]*models.MentorProfile, error)

	// GetByID fetches one mentor; a missing row yields errors.ErrNotFound
	GetByID(ctx context.Context, id string) (*models.MentorProfile, error)

	// Register grants the mentor capability and creates the mentor profile atomically
	Register(ctx context.Context, profileID string, req *models.RegisterMentorRequest, availability models.Availability) (*models.MentorProfile, error)

	// UpdateAvailability replaces the weekly schedule
	UpdateAvailability(ctx context.Context, id string, availability models.Availability) error
}

// BookingStore persists bookings
type BookingStore interface {
	// Create inserts a pending booking; an occupied slot yields errors.ErrConflict
	Create(ctx context.Context, mentorID, menteeID string, start, end time.Time, notes *string) (*models.Booking, error)

	// GetByID fetches a booking joined to both participants
	GetByID(ctx context.Context, id string) (*models.Booking, error)

	// ListForUser returns a user's bookings on the given side ordered by start time
	ListForUser(ctx context.Context, userID string, side models.BookingSide) ([]models.Booking, error)

	// UpdateStatus moves a booking from one status to another; a concurrent change yields errors.ErrConflict
	UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) error
}

// ReviewStore persists reviews
type ReviewStore interface {
	// Create inserts a review; a second review for a booking yields errors.ErrConflict
	Create(ctx context.Context, bookingID, reviewerID string, rating int, comment *string) (*models.Review, error)

	// ListForMentor returns reviews of a mentor's bookings, newest first
	ListForMentor(ctx context.Context, mentorID string, limit int) ([]models.Review, error)
}

// PaymentStore persists payment attempts
type PaymentStore interface {
	// Create inserts a pending payment
	Create(ctx context.Context, bookingID string, amountCents int64, currency string) (*models.Payment, error)

	// Succeed marks the payment succeeded and confirms its booking in one transaction
	Succeed(ctx context.Context, paymentID, bookingID, reference string) (*models.Payment, error)

	// Settle records a failed or cancelled payment
	Settle(ctx context.Context, paymentID string, status models.PaymentStatus, failure string) (*models.Payment, error)

	// LatestForBooking returns the most recent payment of a booking
	LatestForBooking(ctx context.Context, bookingID string) (*models.Payment, error)
}

// StatsStore computes dashboard aggregates
type StatsStore interface {
	// AdminStats computes the platform aggregate in one query
	AdminStats(ctx context.Context, revenuePerSession int) (*models.AdminStats, error)

	// MentorStats computes one mentor's aggregate in one query
	MentorStats(ctx context.Context, mentorID string) (*models.MentorStats, error)
}
