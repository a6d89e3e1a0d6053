package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mentormatch/mentormatch-api/internal/cache"
	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/mentormatch/mentormatch-api/internal/repository"
	"github.com/mentormatch/mentormatch-api/internal/session"
	apperrors "github.com/mentormatch/mentormatch-api/pkg/errors"
	"github.com/mentormatch/mentormatch-api/pkg/jwt"
	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"github.com/mentormatch/mentormatch-api/pkg/metrics"
	"github.com/mentormatch/mentormatch-api/pkg/trigger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", apperrors.ErrUnauthorized)
	ErrEmailTaken         = fmt.Errorf("email already registered: %w", apperrors.ErrConflict)
)

// AuthService issues, resolves and revokes user sessions
type AuthService struct {
	profiles    repository.ProfileStore
	tokens      *jwt.TokenManager
	revocations cache.RevocationStore
	notifier    *trigger.Notifier
	bcryptCost  int
	dummyHash   []byte
}

// NewAuthService creates a new AuthService
func NewAuthService(
	profiles repository.ProfileStore,
	tokens *jwt.TokenManager,
	revocations cache.RevocationStore,
	notifier *trigger.Notifier,
	bcryptCost int,
) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte("mentormatch"), bcryptCost) //nolint:errcheck

	return &AuthService{
		dummyHash:   dummyHash,
		profiles:    profiles,
		tokens:      tokens,
		revocations: revocations,
		notifier:    notifier,
		bcryptCost:  bcryptCost,
	}
}

// SessionTTL returns the lifetime of issued sessions
func (s *AuthService) SessionTTL() time.Duration {
	return s.tokens.GetExpirationTime()
}

// SignUp creates a profile with a hashed password and signs it in
func (s *AuthService) SignUp(ctx context.Context, email, password, fullName string) (*session.Session, error) {
	email = normalizeEmail(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("signup", "error").Inc()
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile, err := s.profiles.Create(ctx, email, string(hash), strings.TrimSpace(fullName))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			metrics.AuthAttempts.WithLabelValues("signup", "email_taken").Inc()
			return nil, ErrEmailTaken
		}
		metrics.AuthAttempts.WithLabelValues("signup", "error").Inc()
		return nil, err
	}

	sess, err := s.issue(profile)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("signup", "error").Inc()
		return nil, err
	}

	s.notifier.FireAsync(ctx, trigger.WelcomeEmail, profile.ID, map[string]string{
		"email": profile.Email,
		"name":  profile.FullName,
	})

	metrics.AuthAttempts.WithLabelValues("signup", "success").Inc()
	logger.Info("Profile signed up", zap.String("user_id", profile.ID))
	return sess, nil
}

// SignIn checks credentials and issues a session
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	profile, hash, err := s.profiles.GetCredentials(ctx, normalizeEmail(email))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			// unknown emails cost the same as wrong passwords
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password)) //nolint:errcheck
			metrics.AuthAttempts.WithLabelValues("signin", "invalid").Inc()
			return nil, ErrInvalidCredentials
		}
		metrics.AuthAttempts.WithLabelValues("signin", "error").Inc()
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		metrics.AuthAttempts.WithLabelValues("signin", "invalid").Inc()
		logger.Warn("Sign-in with wrong password", zap.String("user_id", profile.ID))
		return nil, ErrInvalidCredentials
	}

	sess, err := s.issue(profile)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("signin", "error").Inc()
		return nil, err
	}

	metrics.AuthAttempts.WithLabelValues("signin", "success").Inc()
	return sess, nil
}

// SignOut revokes the session until it would have expired anyway.
// Tokens that are already invalid need no revocation.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("signout", "noop").Inc()
		return nil
	}

	if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		metrics.AuthAttempts.WithLabelValues("signout", "error").Inc()
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("signout", "success").Inc()
	logger.Info("Session revoked", zap.String("user_id", claims.UserID()))
	return nil
}

// CurrentSession resolves a token to its live session. Capabilities are
// read from the profile so a newly registered mentor sees them at once.
// Invalid, expired or revoked tokens yield (nil, nil).
func (s *AuthService) CurrentSession(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		if !errors.Is(err, jwt.ErrExpiredToken) {
			logger.Debug("Rejected session token", zap.Error(err))
		}
		return nil, nil
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session revocation: %w", err)
	}
	if revoked {
		return nil, nil
	}

	profile, err := s.profiles.GetByID(ctx, claims.UserID())
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &session.Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Identity:  models.IdentityFromProfile(profile),
	}, nil
}

func (s *AuthService) issue(profile *models.Profile) (*session.Session, error) {
	token, claims, err := s.tokens.GenerateToken(profile.ID, profile.Email, profile.FullName, profile.Capabilities.Strings())
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}
	return &session.Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Identity:  models.IdentityFromProfile(profile),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
