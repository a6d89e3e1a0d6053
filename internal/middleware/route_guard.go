package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mentormatch/mentormatch-api/internal/routing"
	"github.com/mentormatch/mentormatch-api/pkg/metrics"
)

const (
	// RouteDecisionContextKey holds the guard decision for page handlers
	RouteDecisionContextKey = "route_decision"

	// PagesPrefix is where page data for the routing surface is served
	PagesPrefix = "/api/v1/pages"
)

// ResolveRoute runs the guard for path against the request's session and
// counts the decision
func ResolveRoute(c *gin.Context, guard *routing.Guard, path string) routing.Decision {
	d := guard.Resolve(SessionState(c), path)
	metrics.RouteDecisions.WithLabelValues(d.RouteName(), d.Outcome.String()).Inc()
	return d
}

// RouteGuardMiddleware guards page data served under PagesPrefix. The page
// path is taken from the "path" wildcard parameter. Unauthorized visitors are
// redirected to the fallback page without an error body.
func RouteGuardMiddleware(guard *routing.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := ResolveRoute(c, guard, c.Param("path"))
		c.Set(RouteDecisionContextKey, d)

		switch d.Outcome {
		case routing.Render:
			c.Next()
		case routing.Redirect:
			c.Header("Location", PagesPrefix+d.Location)
			c.JSON(http.StatusFound, d)
			c.Abort()
		case routing.NotFound:
			c.JSON(http.StatusNotFound, d)
			c.Abort()
		default:
			// the session check has not settled; the client shows a placeholder
			c.JSON(http.StatusAccepted, d)
			c.Abort()
		}
	}
}

// GetRouteDecision returns the decision stored by RouteGuardMiddleware
func GetRouteDecision(c *gin.Context) (routing.Decision, bool) {
	val, exists := c.Get(RouteDecisionContextKey)
	if !exists {
		return routing.Decision{}, false
	}
	d, ok := val.(routing.Decision)
	return d, ok
}
