package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/mentormatch/mentormatch-api/internal/repository"
	apperrors "github.com/mentormatch/mentormatch-api/pkg/errors"
	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"github.com/mentormatch/mentormatch-api/pkg/metrics"
	"github.com/mentormatch/mentormatch-api/pkg/storage"
	"go.uber.org/zap"
)

// ImageUploader stores an image and returns its public URL
type ImageUploader interface {
	UploadImage(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ProfileService reads and edits the caller's own profile
type ProfileService struct {
	profiles repository.ProfileStore
	uploader ImageUploader
	mentors  *MentorService
}

// NewProfileService creates a new ProfileService. uploader may be nil when
// object storage is not configured.
func NewProfileService(profiles repository.ProfileStore, uploader ImageUploader, mentors *MentorService) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		uploader: uploader,
		mentors:  mentors,
	}
}

// GetProfile returns a profile by id
func (s *ProfileService) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

// UpdateProfile changes the name and bio of a profile
func (s *ProfileService) UpdateProfile(ctx context.Context, id string, req *models.UpdateProfileRequest) (*models.Profile, error) {
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return nil, apperrors.InvalidInputError("full_name", "must not be blank")
	}

	profile, err := s.profiles.Update(ctx, id, name, req.Bio)
	if err != nil {
		metrics.ProfileUpdates.WithLabelValues("profile", "error").Inc()
		return nil, err
	}

	s.refreshMentor(ctx, profile)
	metrics.ProfileUpdates.WithLabelValues("profile", "success").Inc()
	logger.Info("Profile updated", zap.String("user_id", id))
	return profile, nil
}

// UploadAvatar stores a new avatar image and points the profile at it
func (s *ProfileService) UploadAvatar(ctx context.Context, id string, req *models.UploadAvatarRequest) (*models.UploadAvatarResponse, error) {
	if s.uploader == nil {
		return nil, apperrors.InternalError("avatar storage is not configured")
	}

	ext, err := storage.ImageExtension(req.ContentType)
	if err != nil {
		return nil, err
	}
	data, err := storage.DecodeImage(req.Image)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s/%s.%s", id, uuid.NewString(), ext)
	url, err := s.uploader.UploadImage(ctx, key, data, strings.ToLower(req.ContentType))
	if err != nil {
		metrics.ProfileUpdates.WithLabelValues("avatar", "error").Inc()
		logger.Error("Failed to upload avatar", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}

	if err := s.profiles.UpdateAvatar(ctx, id, url); err != nil {
		metrics.ProfileUpdates.WithLabelValues("avatar", "error").Inc()
		return nil, err
	}

	if profile, err := s.profiles.GetByID(ctx, id); err == nil {
		s.refreshMentor(ctx, profile)
	}

	metrics.ProfileUpdates.WithLabelValues("avatar", "success").Inc()
	logger.Info("Avatar uploaded", zap.String("user_id", id), zap.String("url", url))
	return &models.UploadAvatarResponse{Success: true, AvatarURL: url}, nil
}

func (s *ProfileService) refreshMentor(ctx context.Context, profile *models.Profile) {
	if s.mentors != nil && profile.IsMentor() {
		s.mentors.RefreshMentor(ctx, profile.ID)
	}
}
