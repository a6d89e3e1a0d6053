package routing

import (
	"encoding/json"
	"testing"

	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/mentormatch/mentormatch-api/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateWith(caps ...models.Capability) session.State {
	return session.State{Identity: &models.Identity{
		UserID:       "user-1",
		Email:        "ada@example.com",
		FullName:     "Ada",
		Capabilities: models.NewCapabilities(caps...),
	}}
}

var (
	loading   = session.State{Loading: true}
	anonymous = session.State{}
	mentee    = stateWith()
	mentor    = stateWith(models.CapabilityMentor)
	admin     = stateWith(models.CapabilityAdmin)
	both      = stateWith(models.CapabilityMentor, models.CapabilityAdmin)
)

// samplePath returns a concrete path for a route pattern
func samplePath(pattern string) string {
	switch pattern {
	case "/mentor/:id":
		return "/mentor/42"
	case "/book/:mentorId":
		return "/book/42"
	case "/payment/:bookingId":
		return "/payment/abc"
	case "/admin/*":
		return "/admin/users"
	default:
		return pattern
	}
}

func TestResolve_LoadingNeverRendersOrRedirects(t *testing.T) {
	for _, r := range DefaultRoutes() {
		t.Run(r.Name, func(t *testing.T) {
			d := Resolve(loading, samplePath(r.Pattern))
			assert.Equal(t, Loading, d.Outcome)
			assert.Empty(t, d.Location)
			assert.Nil(t, d.Route)
		})
	}
}

func TestResolve_AnonymousRedirectsToFallback(t *testing.T) {
	for _, r := range DefaultRoutes() {
		if !r.Protected() {
			continue
		}
		t.Run(r.Name, func(t *testing.T) {
			d := Resolve(anonymous, samplePath(r.Pattern))
			assert.Equal(t, Redirect, d.Outcome)
			assert.Equal(t, r.Fallback, d.Location)
		})
	}
}

func TestResolve_RolePredicates(t *testing.T) {
	states := map[string]session.State{"mentee": mentee, "mentor": mentor, "admin": admin, "both": both}

	for _, r := range DefaultRoutes() {
		for stateName, state := range states {
			t.Run(r.Name+"/"+stateName, func(t *testing.T) {
				d := Resolve(state, samplePath(r.Pattern))
				if Authorized(r.Requirement, state) {
					assert.Equal(t, Render, d.Outcome)
					require.NotNil(t, d.Route)
					assert.Equal(t, r.Name, d.Route.Name)
				} else {
					assert.Equal(t, Redirect, d.Outcome)
					assert.Equal(t, r.Fallback, d.Location)
				}
			})
		}
	}
}

func TestResolve_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		state    session.State
		path     string
		outcome  Outcome
		location string
	}{
		{"non-privileged visiting admin", mentee, "/admin/users", Redirect, HomePath},
		{"non-privileged visiting admin root", mentee, "/admin", Redirect, HomePath},
		{"mentor visiting mentor dashboard", mentor, "/mentor/dashboard", Render, ""},
		{"anonymous visiting dashboard", anonymous, "/dashboard", Redirect, LoginPath},
		{"admin without mentor capability", admin, "/mentor/dashboard", Redirect, HomePath},
		{"admin visiting admin", admin, "/admin/bookings", Render, ""},
		{"anonymous browsing", anonymous, "/browse", Render, ""},
		{"anonymous viewing mentor", anonymous, "/mentor/42", Render, ""},
		{"anonymous registering as mentor", anonymous, "/mentor/register", Redirect, LoginPath},
		{"anonymous paying", anonymous, "/payment/abc", Redirect, LoginPath},
		{"unknown path", mentee, "/nowhere", NotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Resolve(tt.state, tt.path)
			assert.Equal(t, tt.outcome, d.Outcome)
			assert.Equal(t, tt.location, d.Location)
		})
	}
}

func TestResolve_SignOutThenProtectedRedirects(t *testing.T) {
	before := Resolve(mentee, "/dashboard")
	assert.Equal(t, Render, before.Outcome)

	after := Resolve(session.State{Identity: nil, Loading: false}, "/dashboard")
	assert.Equal(t, Redirect, after.Outcome)
	assert.Equal(t, LoginPath, after.Location)
}

func TestGuard_MatchPrecedence(t *testing.T) {
	tests := []struct {
		path   string
		route  string
		params map[string]string
	}{
		{"/payment/success", "payment_success", map[string]string{}},
		{"/payment/b-1", "payment", map[string]string{"bookingId": "b-1"}},
		{"/mentor/register", "mentor_register", map[string]string{}},
		{"/mentor/dashboard", "mentor_dashboard", map[string]string{}},
		{"/mentor/m-1", "mentor_profile", map[string]string{"id": "m-1"}},
		{"/admin", "admin", map[string]string{"*": ""}},
		{"/admin/users/1", "admin", map[string]string{"*": "users/1"}},
		{"/", "home", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r, params, ok := Default().Match(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.route, r.Name)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestGuard_MatchIgnoresOrder(t *testing.T) {
	routes := DefaultRoutes()
	reversed := make([]Route, len(routes))
	for i, r := range routes {
		reversed[len(routes)-1-i] = r
	}

	r, _, ok := NewGuard(reversed).Match("/payment/success")
	require.True(t, ok)
	assert.Equal(t, "payment_success", r.Name)
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/", NormalizePath(""))
	assert.Equal(t, "/dashboard", NormalizePath("/dashboard/"))
	assert.Equal(t, "/mentor/1", NormalizePath("//mentor//1?tab=reviews"))
	assert.Equal(t, "/browse", NormalizePath("browse#top"))
}

func TestDecision_JSON(t *testing.T) {
	d := Resolve(anonymous, "/dashboard")

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "redirect", got["state"])
	assert.Equal(t, "/login", got["location"])
	route := got["route"].(map[string]any)
	assert.Equal(t, "authenticated", route["requires"])
}
