package models

import "time"

// PaymentStatus is the outcome of a payment attempt
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Payment records one attempt to pay for a booking
type Payment struct {
	ID          string        `json:"id"`
	BookingID   string        `json:"booking_id"`
	AmountCents int64         `json:"amount_cents"`
	Currency    string        `json:"currency"`
	Status      PaymentStatus `json:"status"`
	Reference   *string       `json:"reference,omitempty"`
	Failure     *string       `json:"failure,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// PayBookingRequest carries the card token for the simulated gateway
type PayBookingRequest struct {
	CardToken string `json:"cardToken" binding:"required,max=128"`
}

// PayBookingResponse is returned after a payment attempt completes
type PayBookingResponse struct {
	Payment *Payment `json:"payment"`
	Next    string   `json:"next,omitempty"`
}
