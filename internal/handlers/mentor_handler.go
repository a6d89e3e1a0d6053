package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mentormatch/mentormatch-api/internal/middleware"
	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/mentormatch/mentormatch-api/internal/services"
	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"go.uber.org/zap"
)

const maxMentorListLimit = 100

type MentorHandler struct {
	service   services.MentorServiceInterface
	dashboard services.DashboardServiceInterface
}

func NewMentorHandler(service services.MentorServiceInterface, dashboard services.DashboardServiceInterface) *MentorHandler {
	return &MentorHandler{service: service, dashboard: dashboard}
}

// ListMentors handles GET /api/v1/mentors?search=&maxRate=&limit=
func (h *MentorHandler) ListMentors(c *gin.Context) {
	filter, err := parseMentorFilter(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	mentors, err := h.service.ListMentors(c.Request.Context(), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch mentors", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mentors": mentors})
}

func parseMentorFilter(c *gin.Context) (models.MentorListFilter, error) {
	filter := models.MentorListFilter{Search: c.Query("search")}

	if raw := c.Query("maxRate"); raw != "" {
		rate, err := strconv.Atoi(raw)
		if err != nil || rate < 0 {
			return filter, invalidQuery("maxRate")
		}
		filter.MaxRate = rate
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, invalidQuery("limit")
		}
		filter.Limit = min(limit, maxMentorListLimit)
	}
	return filter, nil
}

// GetMentor handles GET /api/v1/mentors/:id
func (h *MentorHandler) GetMentor(c *gin.Context) {
	detail, err := h.service.GetMentorDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// ListReviews handles GET /api/v1/mentors/:id/reviews
func (h *MentorHandler) ListReviews(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit")) //nolint:errcheck
	reviews, err := h.service.ListReviews(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// Register handles POST /api/v1/mentor/register
func (h *MentorHandler) Register(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	var req models.RegisterMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	mentor, err := h.service.RegisterMentor(c.Request.Context(), identity.UserID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"mentor": mentor})
}

// Dashboard handles GET /api/v1/mentor/dashboard
func (h *MentorHandler) Dashboard(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	dashboard, err := h.dashboard.MentorDashboard(c.Request.Context(), identity.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// UpdateAvailability handles POST /api/v1/mentor/availability
func (h *MentorHandler) UpdateAvailability(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	var req models.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	mentor, err := h.service.UpdateAvailability(c.Request.Context(), identity.UserID, req.Availability)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	logger.Info("Availability updated", zap.String("mentor_id", identity.UserID))
	c.JSON(http.StatusOK, gin.H{"mentor": mentor})
}
