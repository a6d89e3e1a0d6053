package services

import (
	"context"
	"time"

	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/mentormatch/mentormatch-api/internal/session"
)

// AuthServiceInterface defines the session operations used by handlers and middleware
type AuthServiceInterface interface {
	session.Authenticator
	SessionTTL() time.Duration
}

// MentorServiceInterface defines the interface for mentor service operations
type MentorServiceInterface interface {
	ListMentors(ctx context.Context, filter models.MentorListFilter) ([]*models.MentorProfile, error)
	GetMentor(ctx context.Context, id string) (*models.MentorProfile, error)
	GetMentorDetail(ctx context.Context, id string) (*models.MentorDetailResponse, error)
	ListReviews(ctx context.Context, mentorID string, limit int) ([]models.Review, error)
	RegisterMentor(ctx context.Context, profileID string, req *models.RegisterMentorRequest) (*models.MentorProfile, error)
	UpdateAvailability(ctx context.Context, mentorID string, availability models.Availability) (*models.MentorProfile, error)
}

// BookingServiceInterface defines the interface for booking operations
type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, menteeID string, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error)
	GetBooking(ctx context.Context, actor *models.Identity, bookingID string) (*models.Booking, error)
	ListForUser(ctx context.Context, userID string, side models.BookingSide) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, actor *models.Identity, bookingID string, to models.BookingStatus) (*models.Booking, error)
}

// PaymentServiceInterface defines the interface for payment operations
type PaymentServiceInterface interface {
	Pay(ctx context.Context, payerID, bookingID, cardToken string) (*models.PayBookingResponse, error)
	LatestPayment(ctx context.Context, actor *models.Identity, bookingID string) (*models.Payment, error)
}

// ReviewServiceInterface defines the interface for review operations
type ReviewServiceInterface interface {
	SubmitReview(ctx context.Context, reviewerID, bookingID string, req *models.SubmitReviewRequest) (*models.Review, error)
}

// DashboardServiceInterface defines the interface for dashboard operations
type DashboardServiceInterface interface {
	MenteeDashboard(ctx context.Context, userID string) (*models.MenteeDashboard, error)
	MentorDashboard(ctx context.Context, mentorID string) (*models.MentorDashboard, error)
	AdminStats(ctx context.Context) (*models.AdminStats, error)
	AdminUsers(ctx context.Context, limit, offset int) ([]models.AdminUserListItem, error)
}

// ProfileServiceInterface defines the interface for profile operations
type ProfileServiceInterface interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id string, req *models.UpdateProfileRequest) (*models.Profile, error)
	UploadAvatar(ctx context.Context, id string, req *models.UploadAvatarRequest) (*models.UploadAvatarResponse, error)
}

// Ensure services implement their interfaces
var _ AuthServiceInterface = (*AuthService)(nil)
var _ MentorServiceInterface = (*MentorService)(nil)
var _ BookingServiceInterface = (*BookingService)(nil)
var _ PaymentServiceInterface = (*PaymentService)(nil)
var _ ReviewServiceInterface = (*ReviewService)(nil)
var _ DashboardServiceInterface = (*DashboardService)(nil)
var _ ProfileServiceInterface = (*ProfileService)(nil)
