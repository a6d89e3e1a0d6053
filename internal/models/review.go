package models

import "time"

// Review is a mentee's rating of a completed booking
type Review struct {
	ID         string    `json:"id"`
	BookingID  string    `json:"booking_id"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	ReviewerID string    `json:"reviewer_id"`
	CreatedAt  time.Time `json:"created_at"`
	Reviewer   *Profile  `json:"reviewer,omitempty"`
}

// SubmitReviewRequest represents a review form submission from a mentee
type SubmitReviewRequest struct {
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment *string `json:"comment" binding:"omitempty,max=5000"`
}
