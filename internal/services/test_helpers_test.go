package services_test

import (
	"time"

	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/mentormatch/mentormatch-api/pkg/logger"
)

func init() {
	// Initialize logger for tests
	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}

func strPtr(s string) *string {
	return &s
}

func mentorProfile(id string) *models.Profile {
	return &models.Profile{
		ID:           id,
		FullName:     "Mentor " + id,
		Email:        id + "@example.com",
		Capabilities: models.NewCapabilities(models.CapabilityMentor),
	}
}

func menteeProfile(id string) *models.Profile {
	return &models.Profile{ID: id, FullName: "Mentee " + id, Email: id + "@example.com"}
}

// bookableSlot returns a future start time and a schedule that publishes it
func bookableSlot() (time.Time, models.Availability) {
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	availability := models.EmptyAvailability()
	day := models.Weekdays[(int(start.Weekday())+6)%7]
	availability[day] = []string{start.Format("15:04")}
	return start, availability
}

func mentorWithSlot(id string, rate int) (*models.MentorProfile, time.Time) {
	start, availability := bookableSlot()
	return &models.MentorProfile{
		ID:           id,
		Title:        "Staff Engineer",
		HourlyRate:   rate,
		Availability: availability,
		Profile:      mentorProfile(id),
	}, start
}
