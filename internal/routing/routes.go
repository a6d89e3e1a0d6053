package routing

import "github.com/mentormatch/mentormatch-api/internal/models"

// Requirement is the predicate a visitor must satisfy to see a route
type Requirement int

const (
	Public Requirement = iota
	Authenticated
	MentorOnly
	AdminOnly
)

func (r Requirement) String() string {
	switch r {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case MentorOnly:
		return "mentor"
	case AdminOnly:
		return "admin"
	default:
		return "unknown"
	}
}

func (r Requirement) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// capability returns the capability r demands, if any
func (r Requirement) capability() (models.Capability, bool) {
	switch r {
	case MentorOnly:
		return models.CapabilityMentor, true
	case AdminOnly:
		return models.CapabilityAdmin, true
	default:
		return "", false
	}
}

// Fallback paths for unauthorized visitors
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Route is one entry of the routing surface
type Route struct {
	Name        string      `json:"name"`
	Pattern     string      `json:"pattern"`
	Requirement Requirement `json:"requires"`
	// Fallback is where unauthorized visitors are sent; empty for public routes
	Fallback string `json:"fallback,omitempty"`
}

// Protected reports whether the route needs a session
func (r Route) Protected() bool {
	return r.Requirement != Public
}

// DefaultRoutes is the routing surface of the marketplace
func DefaultRoutes() []Route {
	return []Route{
		{Name: "home", Pattern: "/"},
		{Name: "login", Pattern: "/login"},
		{Name: "signup", Pattern: "/signup"},
		{Name: "how_it_works", Pattern: "/how-it-works"},
		{Name: "browse", Pattern: "/browse"},
		{Name: "mentor_profile", Pattern: "/mentor/:id"},
		{Name: "book", Pattern: "/book/:mentorId", Requirement: Authenticated, Fallback: LoginPath},
		{Name: "payment", Pattern: "/payment/:bookingId", Requirement: Authenticated, Fallback: LoginPath},
		{Name: "payment_success", Pattern: "/payment/success", Requirement: Authenticated, Fallback: LoginPath},
		{Name: "dashboard", Pattern: "/dashboard", Requirement: Authenticated, Fallback: LoginPath},
		{Name: "mentor_register", Pattern: "/mentor/register", Requirement: Authenticated, Fallback: LoginPath},
		{Name: "mentor_dashboard", Pattern: "/mentor/dashboard", Requirement: MentorOnly, Fallback: HomePath},
		{Name: "admin", Pattern: "/admin/*", Requirement: AdminOnly, Fallback: HomePath},
	}
}
