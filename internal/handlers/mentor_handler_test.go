package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mentormatch/mentormatch-api/internal/middleware"
	"github.com/mentormatch/mentormatch-api/internal/models"
	apperrors "github.com/mentormatch/mentormatch-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func mentorRouter() (*gin.Engine, *MockMentorService, *MockDashboardService) {
	mentors := new(MockMentorService)
	dashboard := new(MockDashboardService)
	h := NewMentorHandler(mentors, dashboard)

	router := testRouter(new(MockAuth))
	router.GET("/mentors", h.ListMentors)
	router.GET("/mentors/:id", h.GetMentor)
	router.GET("/mentors/:id/reviews", h.ListReviews)
	router.POST("/mentor/register", middleware.RequireAuth(), h.Register)
	mentorOnly := router.Group("/mentor", middleware.RequireCapability(models.CapabilityMentor))
	mentorOnly.GET("/dashboard", h.Dashboard)
	mentorOnly.POST("/availability", h.UpdateAvailability)
	return router, mentors, dashboard
}

func TestMentorHandler_ListMentors(t *testing.T) {
	router, mentors, _ := mentorRouter()
	mentors.On("ListMentors", mock.Anything, models.MentorListFilter{Search: "go", MaxRate: 150, Limit: 100}).
		Return([]*models.MentorProfile{{ID: "m-1", HourlyRate: 120}}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/mentors?search=go&maxRate=150&limit=500", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"m-1"`)
	mentors.AssertExpectations(t)
}

func TestMentorHandler_ListMentors_BadQuery(t *testing.T) {
	router, mentors, _ := mentorRouter()

	for _, q := range []string{"maxRate=cheap", "limit=-1"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/mentors?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
	mentors.AssertNotCalled(t, "ListMentors", mock.Anything, mock.Anything)
}

func TestMentorHandler_GetMentor(t *testing.T) {
	router, mentors, _ := mentorRouter()
	mentors.On("GetMentorDetail", mock.Anything, "m-1").Return(&models.MentorDetailResponse{Mentor: &models.MentorProfile{ID: "m-1"}}, nil)
	mentors.On("GetMentorDetail", mock.Anything, "u-1").Return(nil, apperrors.NotFoundError("mentor"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/mentors/m-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/mentors/u-1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMentorHandler_Register(t *testing.T) {
	router, mentors, _ := mentorRouter()
	mentors.On("RegisterMentor", mock.Anything, "u-1", mock.MatchedBy(func(req *models.RegisterMentorRequest) bool {
		return req.Title == "Backend Lead" && req.HourlyRate == 90
	})).Return(&models.MentorProfile{ID: "u-1", Title: "Backend Lead", HourlyRate: 90}, nil)

	body := `{"title":"Backend Lead","hourlyRate":90,"yearsOfExperience":8,"bio":"Ten years of Go services."}`

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authed("POST", "/mentor/register", body, ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authed("POST", "/mentor/register", body, "mentee-token"))
	assert.Equal(t, http.StatusCreated, w.Code)
	mentors.AssertExpectations(t)
}

func TestMentorHandler_MentorOnlyRoutes(t *testing.T) {
	router, mentors, dashboard := mentorRouter()
	dashboard.On("MentorDashboard", mock.Anything, "m-1").Return(&models.MentorDashboard{
		Stats:    models.MentorStats{TotalSessions: 4, CompletedSessions: 2, Earnings: 240},
		Upcoming: []models.Booking{},
	}, nil)
	mentors.On("UpdateAvailability", mock.Anything, "m-1", mock.Anything).
		Return(nil, apperrors.InvalidInputError("availability", "unknown weekday funday"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authed("GET", "/mentor/dashboard", "", "mentee-token"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authed("GET", "/mentor/dashboard", "", "mentor-token"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"earnings":240`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authed("POST", "/mentor/availability", `{"availability":{"funday":["09:00"]}}`, "mentor-token"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
