package models

import "time"

// BookingStatus is the lifecycle state of a booking
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

// IsValid reports whether s is a known status
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// IsActive reports whether the booking still holds its slot
func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingConfirmed
}

// CanTransitionTo reports whether moving from s to next is a forward step
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking links a mentor and a mentee for one session
type Booking struct {
	ID        string        `json:"id"`
	MentorID  string        `json:"mentor_id"`
	MenteeID  string        `json:"mentee_id"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Status    BookingStatus `json:"status"`
	Notes     *string       `json:"notes,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Mentor    *Profile      `json:"mentor,omitempty"`
	Mentee    *Profile      `json:"mentee,omitempty"`
}

// HasParticipant reports whether userID is the mentor or the mentee
func (b *Booking) HasParticipant(userID string) bool {
	return b.MentorID == userID || b.MenteeID == userID
}

// Duration returns the booked session length
func (b *Booking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

// BookingSide selects which participant column a listing filters on
type BookingSide string

const (
	SideMentee BookingSide = "mentee"
	SideMentor BookingSide = "mentor"
	SideAny    BookingSide = "any"
)

// CreateBookingRequest represents a booking form submission
type CreateBookingRequest struct {
	MentorID  string    `json:"mentorId" binding:"required,uuid"`
	StartTime time.Time `json:"startTime" binding:"required"`
	EndTime   time.Time `json:"endTime" binding:"required,gtfield=StartTime"`
	Notes     *string   `json:"notes" binding:"omitempty,max=2000"`
}

// UpdateBookingStatusRequest moves a booking along its lifecycle
type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status" binding:"required,oneof=confirmed cancelled completed"`
}

// CreateBookingResponse is returned after a booking is confirmed
type CreateBookingResponse struct {
	Booking *Booking `json:"booking"`
	Next    string   `json:"next"`
}
