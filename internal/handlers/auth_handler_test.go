package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mentormatch/mentormatch-api/internal/middleware"
	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/mentormatch/mentormatch-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func authRouter(auth *MockAuth) *gin.Engine {
	h := NewAuthHandler(middleware.CookieConfig{TTL: auth.SessionTTL()})
	router := testRouter(auth)
	router.POST("/auth/signup", h.SignUp)
	router.POST("/auth/signin", h.SignIn)
	router.POST("/auth/signout", h.SignOut)
	router.GET("/auth/session", h.Session)
	return router
}

func decodeSession(t *testing.T, w *httptest.ResponseRecorder) models.SessionResponse {
	t.Helper()
	var resp models.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthHandler_SignUp(t *testing.T) {
	auth := new(MockAuth)
	auth.On("SignUp", mock.Anything, "mentee@example.com", "secret123", "Mia Mentee").
		Return(newSession("mentee-token"), nil)
	router := authRouter(auth)

	w := httptest.NewRecorder()
	body := `{"email":"mentee@example.com","password":"secret123","fullName":"Mia Mentee"}`
	router.ServeHTTP(w, httptest.NewRequest("POST", "/auth/signup", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeSession(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "mentee-token", resp.Token)
	require.NotNil(t, resp.Identity)
	assert.Equal(t, "u-1", resp.Identity.UserID)
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.SessionCookieName+"=mentee-token")
	auth.AssertExpectations(t)
}

func TestAuthHandler_SignUp_Validation(t *testing.T) {
	router := authRouter(new(MockAuth))

	w := httptest.NewRecorder()
	body := `{"email":"not-an-email","password":"123","fullName":""}`
	router.ServeHTTP(w, httptest.NewRequest("POST", "/auth/signup", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Validation failed")
	assert.Contains(t, w.Body.String(), "Invalid email format")
}

func TestAuthHandler_SignUp_EmailTaken(t *testing.T) {
	auth := new(MockAuth)
	auth.On("SignUp", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, services.ErrEmailTaken)
	router := authRouter(auth)

	w := httptest.NewRecorder()
	body := `{"email":"mentee@example.com","password":"secret123","fullName":"Mia Mentee"}`
	router.ServeHTTP(w, httptest.NewRequest("POST", "/auth/signup", strings.NewReader(body)))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, w.Header().Get("Set-Cookie"))
}

func TestAuthHandler_SignIn(t *testing.T) {
	auth := new(MockAuth)
	auth.On("SignIn", mock.Anything, "mentor@example.com", "secret123").Return(newSession("mentor-token"), nil)
	auth.On("SignIn", mock.Anything, "mentor@example.com", "wrong-pass").Return(nil, services.ErrInvalidCredentials)
	router := authRouter(auth)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/auth/signin",
		strings.NewReader(`{"email":"mentor@example.com","password":"secret123"}`)))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeSession(t, w)
	require.NotNil(t, resp.Identity)
	assert.True(t, resp.Identity.Capabilities.Has(models.CapabilityMentor))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/auth/signin",
		strings.NewReader(`{"email":"mentor@example.com","password":"wrong-pass"}`)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Session(t *testing.T) {
	router := authRouter(new(MockAuth))

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/auth/session", nil))

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeSession(t, w)
		assert.True(t, resp.Success)
		assert.Nil(t, resp.Identity)
	})

	t.Run("signed in by cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "admin-token"})
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeSession(t, w)
		require.NotNil(t, resp.Identity)
		assert.Equal(t, "a-1", resp.Identity.UserID)
		assert.Empty(t, resp.Token, "session check never echoes the token")
	})
}

func TestAuthHandler_SignOut(t *testing.T) {
	auth := new(MockAuth)
	auth.On("SignOut", mock.Anything, "mentee-token").Return(nil).Once()
	router := authRouter(auth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/signout", nil)
	req.Header.Set("Authorization", "Bearer mentee-token")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")

	// anonymous sign-out does not reach the authenticator
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/auth/signout", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	auth.AssertExpectations(t)
}

func TestAuthHandler_SignOut_Failure(t *testing.T) {
	auth := new(MockAuth)
	auth.On("SignOut", mock.Anything, "mentee-token").Return(errBoom)
	router := authRouter(auth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/signout", nil)
	req.Header.Set("Authorization", "Bearer mentee-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Set-Cookie"))
}
