package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mentormatch/mentormatch-api/internal/services"
)

type AdminHandler struct {
	dashboard services.DashboardServiceInterface
}

func NewAdminHandler(dashboard services.DashboardServiceInterface) *AdminHandler {
	return &AdminHandler{dashboard: dashboard}
}

// Stats handles GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.AdminStats(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Users handles GET /api/v1/admin/users?limit=&offset=
func (h *AdminHandler) Users(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))   //nolint:errcheck
	offset, _ := strconv.Atoi(c.Query("offset")) //nolint:errcheck

	users, err := h.dashboard.AdminUsers(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load users", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
