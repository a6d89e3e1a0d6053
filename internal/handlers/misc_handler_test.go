package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mentormatch/mentormatch-api/internal/middleware"
	"github.com/mentormatch/mentormatch-api/internal/models"
	apperrors "github.com/mentormatch/mentormatch-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Healthcheck(t *testing.T) {
	healthy := HealthCheck{Name: "database", Probe: func(context.Context) error { return nil }}
	down := HealthCheck{Name: "mentor_cache", Probe: func(context.Context) error { return errors.New("not initialized") }}

	tests := []struct {
		name   string
		checks []HealthCheck
		code   int
		body   string
	}{
		{"no checks", nil, http.StatusOK, `{"status":"ok","checks":{}}`},
		{"all healthy", []HealthCheck{healthy}, http.StatusOK, `{"status":"ok","checks":{"database":"ok"}}`},
		{"one down", []HealthCheck{healthy, down}, http.StatusServiceUnavailable,
			`{"status":"unavailable","checks":{"database":"ok","mentor_cache":"not initialized"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/healthcheck", NewHealthHandler(tt.checks...).Healthcheck)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", "/healthcheck", http.NoBody))

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, "no-cache, no-store, max-age=0, must-revalidate", w.Header().Get("Cache-Control"))
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{apperrors.NotFoundError("booking"), http.StatusNotFound},
		{apperrors.AccessDeniedError("nope"), http.StatusForbidden},
		{apperrors.InvalidInputError("rating", "must be 1..5"), http.StatusBadRequest},
		{apperrors.UnauthorizedError("expired"), http.StatusUnauthorized},
		{apperrors.ConflictError("slot already booked"), http.StatusConflict},
		{apperrors.InternalError("query failed"), http.StatusInternalServerError},
		{errBoom, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondServiceError(c, tt.err)

			assert.Equal(t, tt.code, w.Code)
			require.Len(t, c.Errors, 1)
			assert.ErrorIs(t, c.Errors[0].Err, tt.err)
		})
	}
}

func TestRespondBindError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"too large", fmt.Errorf("read body: %w", &http.MaxBytesError{Limit: 8}), http.StatusRequestEntityTooLarge, "Request body too large"},
		{"malformed", errors.New("unexpected EOF"), http.StatusBadRequest, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondBindError(c, tt.err)

			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), tt.msg)
		})
	}
}

func TestProfileHandler(t *testing.T) {
	profiles := new(MockProfileService)
	h := NewProfileHandler(profiles)
	router := testRouter(new(MockAuth))
	group := router.Group("/profile", middleware.RequireAuth())
	group.GET("", h.GetProfile)
	group.POST("", h.UpdateProfile)
	group.POST("/avatar", h.UploadAvatar)

	profiles.On("GetProfile", mock.Anything, "u-1").Return(&models.Profile{ID: "u-1", FullName: "Mia Mentee"}, nil)
	profiles.On("UpdateProfile", mock.Anything, "u-1", mock.MatchedBy(func(req *models.UpdateProfileRequest) bool {
		return req.FullName == "Mia M."
	})).Return(&models.Profile{ID: "u-1", FullName: "Mia M."}, nil)
	profiles.On("UploadAvatar", mock.Anything, "u-1", mock.Anything).
		Return(&models.UploadAvatarResponse{Success: true, AvatarURL: "https://cdn.example.com/avatars/u-1/a.png"}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authed("GET", "/profile", "", "mentee-token"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Mia Mentee")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authed("POST", "/profile", `{"full_name":"Mia M."}`, "mentee-token"))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authed("POST", "/profile/avatar",
		`{"image":"aGVsbG8=","fileName":"a.png","contentType":"image/gif"}`, "mentee-token"))
	assert.Equal(t, http.StatusBadRequest, w.Code, "unsupported content types fail binding")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authed("POST", "/profile/avatar",
		`{"image":"aGVsbG8=","fileName":"a.png","contentType":"image/png"}`, "mentee-token"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "avatars/u-1/a.png")
}

func TestAdminHandler(t *testing.T) {
	dashboard := new(MockDashboardService)
	h := NewAdminHandler(dashboard)
	router := testRouter(new(MockAuth))
	admin := router.Group("/admin", middleware.RequireCapability(models.CapabilityAdmin))
	admin.GET("/stats", h.Stats)
	admin.GET("/users", h.Users)

	dashboard.On("AdminStats", mock.Anything).Return(nil, errBoom)
	dashboard.On("AdminUsers", mock.Anything, 25, 50).Return([]models.AdminUserListItem{
		{Profile: models.Profile{ID: "u-1"}, BookingCount: 3},
	}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authed("GET", "/admin/stats", "", "mentor-token"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// a failed aggregate is an error, never a partial result
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authed("GET", "/admin/stats", "", "admin-token"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to load stats"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authed("GET", "/admin/users?limit=25&offset=50", "", "admin-token"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"booking_count":3`)
}

func TestLogsHandler(t *testing.T) {
	router := testRouter(new(MockAuth))
	router.POST("/logs", NewLogsHandler("web").ReceiveClientLogs)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"batch", `{"logs":[{"level":"error","message":"payment page crashed","route":"/payment/b-1"},{"level":"info","message":"ok"}]}`, http.StatusOK},
		{"empty batch", `{"logs":[]}`, http.StatusBadRequest},
		{"unknown level", `{"logs":[{"level":"fatal","message":"x"}]}`, http.StatusBadRequest},
		{"not json", `logs`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, authed("POST", "/logs", tt.body, "mentee-token"))
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestClientLevel(t *testing.T) {
	assert.Equal(t, "warn", clientLevel("WARN").String())
	assert.Equal(t, "info", clientLevel("trace").String())
	assert.True(t, strings.EqualFold("ERROR", clientLevel("error").String()))
}
