package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mentormatch/mentormatch-api/internal/middleware"
	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/mentormatch/mentormatch-api/internal/services"
	"github.com/mentormatch/mentormatch-api/internal/session"
	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = logger.Initialize(logger.Config{Level: "error", Environment: "test"}) //nolint:errcheck
}

// MockAuth implements services.AuthServiceInterface
type MockAuth struct {
	mock.Mock
}

func (m *MockAuth) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *MockAuth) SignUp(ctx context.Context, email, password, fullName string) (*session.Session, error) {
	args := m.Called(ctx, email, password, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *MockAuth) SignOut(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// CurrentSession resolves the fixed test tokens without expectations
func (m *MockAuth) CurrentSession(_ context.Context, token string) (*session.Session, error) {
	identity, ok := testIdentities[token]
	if !ok {
		return nil, nil
	}
	return &session.Session{Token: token, ExpiresAt: time.Now().Add(time.Hour), Identity: identity}, nil
}

func (m *MockAuth) SessionTTL() time.Duration {
	return time.Hour
}

var testIdentities = map[string]*models.Identity{
	"mentee-token": {UserID: "u-1", Email: "mentee@example.com", FullName: "Mia Mentee"},
	"mentor-token": {UserID: "m-1", Email: "mentor@example.com", FullName: "Max Mentor", Capabilities: models.NewCapabilities(models.CapabilityMentor)},
	"admin-token":  {UserID: "a-1", Email: "admin@example.com", FullName: "Ada Admin", Capabilities: models.NewCapabilities(models.CapabilityAdmin)},
}

func newSession(token string) *session.Session {
	return &session.Session{Token: token, ExpiresAt: time.Now().Add(time.Hour), Identity: testIdentities[token]}
}

type MockMentorService struct {
	mock.Mock
}

func (m *MockMentorService) ListMentors(ctx context.Context, filter models.MentorListFilter) ([]*models.MentorProfile, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MentorProfile), args.Error(1)
}

func (m *MockMentorService) GetMentor(ctx context.Context, id string) (*models.MentorProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorProfile), args.Error(1)
}

func (m *MockMentorService) GetMentorDetail(ctx context.Context, id string) (*models.MentorDetailResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorDetailResponse), args.Error(1)
}

func (m *MockMentorService) ListReviews(ctx context.Context, mentorID string, limit int) ([]models.Review, error) {
	args := m.Called(ctx, mentorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *MockMentorService) RegisterMentor(ctx context.Context, profileID string, req *models.RegisterMentorRequest) (*models.MentorProfile, error) {
	args := m.Called(ctx, profileID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorProfile), args.Error(1)
}

func (m *MockMentorService) UpdateAvailability(ctx context.Context, mentorID string, availability models.Availability) (*models.MentorProfile, error) {
	args := m.Called(ctx, mentorID, availability)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorProfile), args.Error(1)
}

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, menteeID string, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	args := m.Called(ctx, menteeID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreateBookingResponse), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, actor *models.Identity, bookingID string) (*models.Booking, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) ListForUser(ctx context.Context, userID string, side models.BookingSide) ([]models.Booking, error) {
	args := m.Called(ctx, userID, side)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingService) UpdateStatus(ctx context.Context, actor *models.Identity, bookingID string, to models.BookingStatus) (*models.Booking, error) {
	args := m.Called(ctx, actor, bookingID, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Pay(ctx context.Context, payerID, bookingID, cardToken string) (*models.PayBookingResponse, error) {
	args := m.Called(ctx, payerID, bookingID, cardToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PayBookingResponse), args.Error(1)
}

func (m *MockPaymentService) LatestPayment(ctx context.Context, actor *models.Identity, bookingID string) (*models.Payment, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) SubmitReview(ctx context.Context, reviewerID, bookingID string, req *models.SubmitReviewRequest) (*models.Review, error) {
	args := m.Called(ctx, reviewerID, bookingID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) MenteeDashboard(ctx context.Context, userID string) (*models.MenteeDashboard, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MenteeDashboard), args.Error(1)
}

func (m *MockDashboardService) MentorDashboard(ctx context.Context, mentorID string) (*models.MentorDashboard, error) {
	args := m.Called(ctx, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorDashboard), args.Error(1)
}

func (m *MockDashboardService) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminStats), args.Error(1)
}

func (m *MockDashboardService) AdminUsers(ctx context.Context, limit, offset int) ([]models.AdminUserListItem, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdminUserListItem), args.Error(1)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) UpdateProfile(ctx context.Context, id string, req *models.UpdateProfileRequest) (*models.Profile, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) UploadAvatar(ctx context.Context, id string, req *models.UploadAvatarRequest) (*models.UploadAvatarResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UploadAvatarResponse), args.Error(1)
}

var (
	_ services.AuthServiceInterface      = (*MockAuth)(nil)
	_ services.MentorServiceInterface    = (*MockMentorService)(nil)
	_ services.BookingServiceInterface   = (*MockBookingService)(nil)
	_ services.PaymentServiceInterface   = (*MockPaymentService)(nil)
	_ services.ReviewServiceInterface    = (*MockReviewService)(nil)
	_ services.DashboardServiceInterface = (*MockDashboardService)(nil)
	_ services.ProfileServiceInterface   = (*MockProfileService)(nil)
)

var errBoom = errors.New("boom")

// testRouter returns an engine with the session middleware installed
func testRouter(auth session.Authenticator) *gin.Engine {
	router := gin.New()
	router.Use(middleware.SessionMiddleware(auth, middleware.CookieConfig{TTL: time.Hour}))
	return router
}
