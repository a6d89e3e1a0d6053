package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/mentormatch/mentormatch-api/internal/session"
	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"go.uber.org/zap"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "mm_session"

	// SessionStoreContextKey is the key used to store the session store in the gin context
	SessionStoreContextKey = "session_store"
)

var (
	ErrSessionNotFound = errors.New("session not found in context")
	ErrInvalidSession  = errors.New("invalid session type")
)

// CookieConfig describes the session cookie
type CookieConfig struct {
	Domain string
	Secure bool
	TTL    time.Duration
}

// SessionMiddleware builds a session store for the request from its cookie
// or bearer token and runs the session check before handlers see it.
// Requests without a live session continue anonymously.
func SessionMiddleware(auth session.Authenticator, cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, fromCookie := sessionToken(c)
		store := session.NewStore(auth, session.WithToken(token))

		if err := store.Check(c.Request.Context()); err != nil {
			_ = c.Error(fmt.Errorf("session check failed: %w", err)) //nolint:errcheck
			logger.Warn("Session check failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
		} else if fromCookie && store.Identity() == nil {
			ClearSessionCookie(c, cookie)
		}

		c.Set(SessionStoreContextKey, store)
		c.Request = c.Request.WithContext(session.NewContext(c.Request.Context(), store))
		c.Next()
	}
}

// sessionToken prefers an Authorization bearer token over the cookie
func sessionToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token), false
		}
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

// GetSessionStore extracts the session store from context
func GetSessionStore(c *gin.Context) (*session.Store, error) {
	val, exists := c.Get(SessionStoreContextKey)
	if !exists {
		return nil, ErrSessionNotFound
	}

	store, ok := val.(*session.Store)
	if !ok {
		return nil, ErrInvalidSession
	}

	return store, nil
}

// GetIdentity returns the signed-in identity, or nil for anonymous requests
func GetIdentity(c *gin.Context) *models.Identity {
	store, err := GetSessionStore(c)
	if err != nil {
		return nil
	}
	return store.Identity()
}

// SessionState returns the request's session state; requests that never
// passed SessionMiddleware are anonymous and settled
func SessionState(c *gin.Context) session.State {
	store, err := GetSessionStore(c)
	if err != nil {
		return session.State{}
	}
	return store.Snapshot()
}

// RequireAuth rejects anonymous requests
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetIdentity(c) == nil {
			_ = c.Error(ErrSessionNotFound) //nolint:errcheck
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireCapability rejects requests whose identity lacks capability
func RequireCapability(capability models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity == nil {
			_ = c.Error(ErrSessionNotFound) //nolint:errcheck
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		if !identity.Capabilities.Has(capability) {
			_ = c.Error(fmt.Errorf("missing capability %s", capability)) //nolint:errcheck
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// SetSessionCookie sets the session cookie
func SetSessionCookie(c *gin.Context, token string, cfg CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		SessionCookieName,
		token,
		int(cfg.TTL.Seconds()),
		"/",
		cfg.Domain,
		cfg.Secure,
		true, // HttpOnly
	)
}

// ClearSessionCookie clears the session cookie
func ClearSessionCookie(c *gin.Context, cfg CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		SessionCookieName,
		"",
		-1,
		"/",
		cfg.Domain,
		cfg.Secure,
		true, // HttpOnly
	)
}
