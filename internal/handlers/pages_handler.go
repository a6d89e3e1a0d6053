package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mentormatch/mentormatch-api/internal/middleware"
	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/mentormatch/mentormatch-api/internal/routing"
	"github.com/mentormatch/mentormatch-api/internal/services"
	apperrors "github.com/mentormatch/mentormatch-api/pkg/errors"
)

const featuredMentors = 6

// PageResponse is the view model of one page of the routing surface
type PageResponse struct {
	Route  string            `json:"route"`
	Path   string            `json:"path"`
	Params map[string]string `json:"params,omitempty"`
	Data   any               `json:"data,omitempty"`
}

type pageLoader func(ctx context.Context, identity *models.Identity, params map[string]string) (any, error)

// PagesHandler serves page data for paths the route guard let through
type PagesHandler struct {
	guard   *routing.Guard
	loaders map[string]pageLoader
}

func NewPagesHandler(
	guard *routing.Guard,
	mentors services.MentorServiceInterface,
	bookings services.BookingServiceInterface,
	payments services.PaymentServiceInterface,
	dashboard services.DashboardServiceInterface,
	profiles services.ProfileServiceInterface,
) *PagesHandler {
	mentorPage := func(ctx context.Context, id string) (any, error) {
		detail, err := mentors.GetMentorDetail(ctx, id)
		if apperrors.Is(err, apperrors.ErrNotFound) {
			// unknown mentors render an empty state
			return gin.H{"mentor": nil}, nil
		}
		return detail, err
	}

	return &PagesHandler{
		guard: guard,
		loaders: map[string]pageLoader{
			"home": func(ctx context.Context, _ *models.Identity, _ map[string]string) (any, error) {
				featured, err := mentors.ListMentors(ctx, models.MentorListFilter{Limit: featuredMentors})
				return gin.H{"featured": featured}, err
			},
			"browse": func(ctx context.Context, _ *models.Identity, _ map[string]string) (any, error) {
				list, err := mentors.ListMentors(ctx, models.MentorListFilter{})
				return gin.H{"mentors": list}, err
			},
			"mentor_profile": func(ctx context.Context, _ *models.Identity, params map[string]string) (any, error) {
				return mentorPage(ctx, params["id"])
			},
			"book": func(ctx context.Context, _ *models.Identity, params map[string]string) (any, error) {
				return mentorPage(ctx, params["mentorId"])
			},
			"payment": func(ctx context.Context, identity *models.Identity, params map[string]string) (any, error) {
				booking, err := bookings.GetBooking(ctx, identity, params["bookingId"])
				if err != nil {
					return nil, err
				}
				payment, err := payments.LatestPayment(ctx, identity, booking.ID)
				if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
					return nil, err
				}
				return gin.H{"booking": booking, "payment": payment}, nil
			},
			"dashboard": func(ctx context.Context, identity *models.Identity, _ map[string]string) (any, error) {
				return dashboard.MenteeDashboard(ctx, identity.UserID)
			},
			"mentor_register": func(ctx context.Context, identity *models.Identity, _ map[string]string) (any, error) {
				profile, err := profiles.GetProfile(ctx, identity.UserID)
				return gin.H{"profile": profile, "alreadyMentor": identity.Capabilities.Has(models.CapabilityMentor)}, err
			},
			"mentor_dashboard": func(ctx context.Context, identity *models.Identity, _ map[string]string) (any, error) {
				return dashboard.MentorDashboard(ctx, identity.UserID)
			},
			"admin": func(ctx context.Context, _ *models.Identity, _ map[string]string) (any, error) {
				stats, err := dashboard.AdminStats(ctx)
				if err != nil {
					return nil, err
				}
				users, err := dashboard.AdminUsers(ctx, 0, 0)
				return gin.H{"stats": stats, "users": users}, err
			},
		},
	}
}

// Resolve handles GET /api/v1/route?path= and reports the guard decision
// for the caller's session without loading any page data
func (h *PagesHandler) Resolve(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		respondError(c, http.StatusBadRequest, "path is required", apperrors.InvalidInputError("path", "required"))
		return
	}
	c.JSON(http.StatusOK, middleware.ResolveRoute(c, h.guard, path))
}

// Page handles GET /api/v1/pages/*path. It runs behind
// middleware.RouteGuardMiddleware, so only rendered decisions reach it.
// Static pages carry no data.
func (h *PagesHandler) Page(c *gin.Context) {
	d, ok := middleware.GetRouteDecision(c)
	if !ok {
		respondError(c, http.StatusInternalServerError, "Internal server error", middleware.ErrSessionNotFound)
		return
	}

	resp := PageResponse{Route: d.RouteName(), Path: d.Path, Params: d.Params}
	if load, found := h.loaders[resp.Route]; found {
		data, err := load(c.Request.Context(), middleware.GetIdentity(c), d.Params)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		resp.Data = data
	}

	c.JSON(http.StatusOK, resp)
}
