package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mentormatch/mentormatch-api/internal/middleware"
	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/mentormatch/mentormatch-api/internal/session"
	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"go.uber.org/zap"
)

// AuthHandler exposes the session store operations over HTTP.
// Each request's store is prepared by middleware.SessionMiddleware.
type AuthHandler struct {
	cookie middleware.CookieConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(cookie middleware.CookieConfig) *AuthHandler {
	return &AuthHandler{cookie: cookie}
}

// SignUp handles POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	store, err := middleware.GetSessionStore(c)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	var req models.SignUpRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondBindError(c, bindErr)
		return
	}

	if err := store.SignUp(c.Request.Context(), req.Email, req.Password, req.FullName); err != nil {
		respondServiceError(c, err)
		return
	}

	h.respondSession(c, http.StatusCreated, store)
}

// SignIn handles POST /api/v1/auth/signin
func (h *AuthHandler) SignIn(c *gin.Context) {
	store, err := middleware.GetSessionStore(c)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	var req models.SignInRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondBindError(c, bindErr)
		return
	}

	if err := store.SignIn(c.Request.Context(), req.Email, req.Password); err != nil {
		respondServiceError(c, err)
		return
	}

	identity := store.Identity()
	logger.Info("Signed in", zap.String("user_id", identity.UserID))
	h.respondSession(c, http.StatusOK, store)
}

// SignOut handles POST /api/v1/auth/signout. Signing out without a session succeeds.
func (h *AuthHandler) SignOut(c *gin.Context) {
	store, err := middleware.GetSessionStore(c)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	if err := store.SignOut(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}

	middleware.ClearSessionCookie(c, h.cookie)
	c.JSON(http.StatusOK, models.SignOutResponse{Success: true})
}

// Session handles GET /api/v1/auth/session.
// Anonymous callers get a successful response with a null identity.
func (h *AuthHandler) Session(c *gin.Context) {
	store, err := middleware.GetSessionStore(c)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	identity := store.Identity()
	if identity == nil {
		c.JSON(http.StatusOK, models.SessionResponse{Success: true})
		return
	}

	_, expiresAt := store.Token()
	c.JSON(http.StatusOK, models.SessionResponse{
		Success:   true,
		ExpiresAt: &expiresAt,
		Identity:  identity,
	})
}

func (h *AuthHandler) respondSession(c *gin.Context, status int, store *session.Store) {
	token, expiresAt := store.Token()
	middleware.SetSessionCookie(c, token, h.cookie)
	c.JSON(status, models.SessionResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: &expiresAt,
		Identity:  store.Identity(),
	})
}
