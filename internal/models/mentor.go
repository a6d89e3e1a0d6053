package models

import (
	"fmt"
	"sort"
	"time"
)

// Weekdays are the keys used in an availability schedule
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Availability maps a lowercase weekday to its bookable start times ("HH:MM").
// Days without an entry are unavailable.
type Availability map[string][]string

// EmptyAvailability returns a schedule with every weekday present and no slots
func EmptyAvailability() Availability {
	a := make(Availability, len(Weekdays))
	for _, day := range Weekdays {
		a[day] = []string{}
	}
	return a
}

// Validate checks weekday keys and slot format, and normalizes slot order
func (a Availability) Validate() error {
	for day, slots := range a {
		if !isWeekday(day) {
			return fmt.Errorf("unknown weekday %q", day)
		}
		seen := make(map[string]struct{}, len(slots))
		for _, slot := range slots {
			if _, err := time.Parse("15:04", slot); err != nil {
				return fmt.Errorf("invalid slot %q on %s", slot, day)
			}
			if _, dup := seen[slot]; dup {
				return fmt.Errorf("duplicate slot %q on %s", slot, day)
			}
			seen[slot] = struct{}{}
		}
		sort.Strings(slots)
	}
	return nil
}

// Allows reports whether a session starting at t (UTC) falls on a published slot
func (a Availability) Allows(t time.Time) bool {
	t = t.UTC()
	day := Weekdays[(int(t.Weekday())+6)%7]
	slot := t.Format("15:04")
	for _, s := range a[day] {
		if s == slot {
			return true
		}
	}
	return false
}

func isWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// MentorProfile is the one-to-one mentor extension of a Profile
type MentorProfile struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	HourlyRate        int          `json:"hourly_rate"`
	YearsOfExperience int          `json:"years_of_experience"`
	LinkedInURL       *string      `json:"linkedin_url,omitempty"`
	Availability      Availability `json:"availability"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
	Profile           *Profile     `json:"profile,omitempty"`
}

// Name returns the mentor's display name, if the profile was joined
func (m *MentorProfile) Name() string {
	if m.Profile == nil {
		return ""
	}
	return m.Profile.FullName
}

// MentorListFilter narrows the browse list
type MentorListFilter struct {
	Search  string
	MaxRate int
	Limit   int
}

// RegisterMentorRequest represents the become-a-mentor form
type RegisterMentorRequest struct {
	Title             string  `json:"title" binding:"required,min=2,max=120"`
	HourlyRate        int     `json:"hourlyRate" binding:"required,min=1,max=10000"`
	YearsOfExperience int     `json:"yearsOfExperience" binding:"min=0,max=70"`
	LinkedInProfile   *string `json:"linkedinProfile" binding:"omitempty,url,max=255"`
	Bio               string  `json:"bio" binding:"required,min=10,max=5000"`
}

// UpdateAvailabilityRequest replaces a mentor's weekly schedule
type UpdateAvailabilityRequest struct {
	Availability Availability `json:"availability" binding:"required"`
}

// MentorDetailResponse is the mentor profile page payload
type MentorDetailResponse struct {
	Mentor        *MentorProfile `json:"mentor"`
	Reviews       []Review       `json:"reviews"`
	AverageRating *float64       `json:"averageRating,omitempty"`
}
