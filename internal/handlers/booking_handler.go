package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mentormatch/mentormatch-api/internal/middleware"
	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/mentormatch/mentormatch-api/internal/services"
)

// BookingHandler serves the booking, payment and review endpoints.
// Every route behind it requires a signed-in identity.
type BookingHandler struct {
	bookings services.BookingServiceInterface
	payments services.PaymentServiceInterface
	reviews  services.ReviewServiceInterface
}

func NewBookingHandler(
	bookings services.BookingServiceInterface,
	payments services.PaymentServiceInterface,
	reviews services.ReviewServiceInterface,
) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		payments: payments,
		reviews:  reviews,
	}
}

// ListBookings handles GET /api/v1/bookings?side=mentee|mentor|any
func (h *BookingHandler) ListBookings(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	bookings, err := h.bookings.ListForUser(c.Request.Context(), identity.UserID, models.BookingSide(c.Query("side")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// CreateBooking handles POST /api/v1/bookings. The response names the
// payment page to navigate to.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.bookings.CreateBooking(c.Request.Context(), identity.UserID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	booking, err := h.bookings.GetBooking(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// UpdateStatus handles POST /api/v1/bookings/:id/status
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	var req models.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	booking, err := h.bookings.UpdateStatus(c.Request.Context(), identity, c.Param("id"), req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// Pay handles POST /api/v1/bookings/:id/pay. Leaving before the charge
// settles cancels it.
func (h *BookingHandler) Pay(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	var req models.PayBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.payments.Pay(c.Request.Context(), identity.UserID, c.Param("id"), req.CardToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetPayment handles GET /api/v1/bookings/:id/payment
func (h *BookingHandler) GetPayment(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	payment, err := h.payments.LatestPayment(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

// SubmitReview handles POST /api/v1/bookings/:id/review
func (h *BookingHandler) SubmitReview(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	var req models.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := h.reviews.SubmitReview(c.Request.Context(), identity.UserID, c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": review})
}
