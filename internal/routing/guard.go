// Package routing resolves paths of the marketplace routing surface against
// a session state. Resolution is pure: the same state and path always give
// the same decision.
package routing

import (
	"fmt"

	"github.com/mentormatch/mentormatch-api/internal/session"
)

// Outcome is the kind of decision the guard reached
type Outcome int

const (
	// Loading means the session check is still in flight; render a placeholder
	Loading Outcome = iota
	// Render means the target page may be shown
	Render
	// Redirect means the visitor must be sent to Decision.Location
	Redirect
	// NotFound means no route matches the path
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case NotFound:
		return "not_found"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Decision is the result of resolving a path
type Decision struct {
	Outcome  Outcome           `json:"state"`
	Path     string            `json:"path"`
	Route    *Route            `json:"route,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
	Location string            `json:"location,omitempty"`
}

// RouteName returns the matched route name or a placeholder for metrics
func (d Decision) RouteName() string {
	if d.Route == nil {
		return "unmatched"
	}
	return d.Route.Name
}

// Guard resolves paths against a fixed route table
type Guard struct {
	routes []compiledRoute
}

// NewGuard compiles routes into a Guard
func NewGuard(routes []Route) *Guard {
	g := &Guard{routes: make([]compiledRoute, 0, len(routes))}
	for _, r := range routes {
		g.routes = append(g.routes, compile(r))
	}
	return g
}

// Routes returns the route table
func (g *Guard) Routes() []Route {
	out := make([]Route, len(g.routes))
	for i, r := range g.routes {
		out[i] = r.Route
	}
	return out
}

// Match finds the most specific route for path without consulting a session
func (g *Guard) Match(path string) (*Route, map[string]string, bool) {
	parts := splitPath(NormalizePath(path))

	var (
		best   *compiledRoute
		params map[string]string
	)
	for i := range g.routes {
		candidate := &g.routes[i]
		p, ok := candidate.match(parts)
		if !ok {
			continue
		}
		if best == nil || candidate.moreSpecific(*best) {
			best, params = candidate, p
		}
	}
	if best == nil {
		return nil, nil, false
	}
	route := best.Route
	return &route, params, true
}

// Resolve decides what a visitor in state sees at path.
// While the session check is pending no route is resolved.
func (g *Guard) Resolve(state session.State, path string) Decision {
	path = NormalizePath(path)
	if state.Loading {
		return Decision{Outcome: Loading, Path: path}
	}

	route, params, ok := g.Match(path)
	if !ok {
		return Decision{Outcome: NotFound, Path: path}
	}

	d := Decision{Path: path, Route: route, Params: params}
	if Authorized(route.Requirement, state) {
		d.Outcome = Render
		return d
	}
	d.Outcome = Redirect
	d.Location = route.Fallback
	return d
}

// Authorized reports whether state satisfies requirement
func Authorized(req Requirement, state session.State) bool {
	if req == Public {
		return true
	}
	if !state.Authenticated() {
		return false
	}
	if c, ok := req.capability(); ok {
		return state.Has(c)
	}
	return true
}

var defaultGuard = NewGuard(DefaultRoutes())

// Resolve resolves path against the default routing surface
func Resolve(state session.State, path string) Decision {
	return defaultGuard.Resolve(state, path)
}

// Default returns the Guard over DefaultRoutes
func Default() *Guard {
	return defaultGuard
}
