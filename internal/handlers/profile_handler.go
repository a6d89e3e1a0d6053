package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mentormatch/mentormatch-api/internal/middleware"
	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/mentormatch/mentormatch-api/internal/services"
	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"go.uber.org/zap"
)

// ProfileHandler handles the signed-in user's own profile
type ProfileHandler struct {
	service services.ProfileServiceInterface
}

func NewProfileHandler(service services.ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetProfile handles GET /api/v1/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	profile, err := h.service.GetProfile(c.Request.Context(), identity.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// UpdateProfile handles POST /api/v1/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), identity.UserID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// UploadAvatar handles POST /api/v1/profile/avatar
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	var req models.UploadAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.service.UploadAvatar(c.Request.Context(), identity.UserID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	logger.Info("Avatar uploaded",
		zap.String("user_id", identity.UserID),
		zap.String("avatar_url", resp.AvatarURL))
	c.JSON(http.StatusOK, resp)
}
