package services_test

import (
	"context"
	"time"

	"github.com/mentormatch/mentormatch-api/internal/flow"
	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockProfileStore is a mock implementation of repository.ProfileStore
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) Create(ctx context.Context, email, passwordHash, fullName string) (*models.Profile, error) {
	args := m.Called(ctx, email, passwordHash, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileStore) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileStore) GetCredentials(ctx context.Context, email string) (*models.Profile, string, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.Profile), args.String(1), args.Error(2)
}

func (m *MockProfileStore) Update(ctx context.Context, id, fullName string, bio *string) (*models.Profile, error) {
	args := m.Called(ctx, id, fullName, bio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileStore) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	args := m.Called(ctx, id, avatarURL)
	return args.Error(0)
}

func (m *MockProfileStore) List(ctx context.Context, limit, offset int) ([]models.AdminUserListItem, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdminUserListItem), args.Error(1)
}

// MockMentorStore is a mock implementation of repository.MentorStore
type MockMentorStore struct {
	mock.Mock
}

func (m *MockMentorStore) List(ctx context.Context, filter models.MentorListFilter) ([]*models.MentorProfile, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MentorProfile), args.Error(1)
}

func (m *MockMentorStore) GetByID(ctx context.Context, id string) (*models.MentorProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorProfile), args.Error(1)
}

func (m *MockMentorStore) Register(ctx context.Context, profileID string, req *models.RegisterMentorRequest, availability models.Availability) (*models.MentorProfile, error) {
	args := m.Called(ctx, profileID, req, availability)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorProfile), args.Error(1)
}

func (m *MockMentorStore) UpdateAvailability(ctx context.Context, id string, availability models.Availability) error {
	args := m.Called(ctx, id, availability)
	return args.Error(0)
}

// MockBookingStore is a mock implementation of repository.BookingStore
type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) Create(ctx context.Context, mentorID, menteeID string, start, end time.Time, notes *string) (*models.Booking, error) {
	args := m.Called(ctx, mentorID, menteeID, start, end, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingStore) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingStore) ListForUser(ctx context.Context, userID string, side models.BookingSide) ([]models.Booking, error) {
	args := m.Called(ctx, userID, side)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingStore) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

// MockReviewStore is a mock implementation of repository.ReviewStore
type MockReviewStore struct {
	mock.Mock
}

func (m *MockReviewStore) Create(ctx context.Context, bookingID, reviewerID string, rating int, comment *string) (*models.Review, error) {
	args := m.Called(ctx, bookingID, reviewerID, rating, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewStore) ListForMentor(ctx context.Context, mentorID string, limit int) ([]models.Review, error) {
	args := m.Called(ctx, mentorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

// MockPaymentStore is a mock implementation of repository.PaymentStore
type MockPaymentStore struct {
	mock.Mock
}

func (m *MockPaymentStore) Create(ctx context.Context, bookingID string, amountCents int64, currency string) (*models.Payment, error) {
	args := m.Called(ctx, bookingID, amountCents, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentStore) Succeed(ctx context.Context, paymentID, bookingID, reference string) (*models.Payment, error) {
	args := m.Called(ctx, paymentID, bookingID, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentStore) Settle(ctx context.Context, paymentID string, status models.PaymentStatus, failure string) (*models.Payment, error) {
	args := m.Called(ctx, paymentID, status, failure)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentStore) LatestForBooking(ctx context.Context, bookingID string) (*models.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

// MockStatsStore is a mock implementation of repository.StatsStore
type MockStatsStore struct {
	mock.Mock
}

func (m *MockStatsStore) AdminStats(ctx context.Context, revenuePerSession int) (*models.AdminStats, error) {
	args := m.Called(ctx, revenuePerSession)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminStats), args.Error(1)
}

func (m *MockStatsStore) MentorStats(ctx context.Context, mentorID string) (*models.MentorStats, error) {
	args := m.Called(ctx, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorStats), args.Error(1)
}

// MockGateway is a mock implementation of flow.PaymentGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Charge(ctx context.Context, req flow.ChargeRequest) (*flow.Charge, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flow.Charge), args.Error(1)
}

// MockUploader is a mock implementation of services.ImageUploader
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) UploadImage(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}
