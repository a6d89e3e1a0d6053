package repository

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mentormatch/mentormatch-api/internal/models"
)

// profileColumns lists the profile columns selected for alias
func profileColumns(alias string) string {
	cols := []string{"id::text", "email", "full_name", "avatar_url", "bio", "is_mentor", "is_admin", "created_at", "updated_at"}
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

type profileRow struct {
	ID        string
	Email     string
	FullName  string
	AvatarURL *string
	Bio       *string
	IsMentor  bool
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *profileRow) dest() []any {
	return []any{&r.ID, &r.Email, &r.FullName, &r.AvatarURL, &r.Bio, &r.IsMentor, &r.IsAdmin, &r.CreatedAt, &r.UpdatedAt}
}

func (r *profileRow) toModel() *models.Profile {
	return &models.Profile{
		ID:           r.ID,
		FullName:     r.FullName,
		AvatarURL:    r.AvatarURL,
		Bio:          r.Bio,
		Email:        r.Email,
		Capabilities: models.CapabilitiesFromFlags(r.IsMentor, r.IsAdmin),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ScanProfile scans a row selected with profileColumns
func ScanProfile(row pgx.Row) (*models.Profile, error) {
	var r profileRow
	if err := row.Scan(r.dest()...); err != nil {
		return nil, err
	}
	return r.toModel(), nil
}

const bookingColumns = `b.id::text, b.mentor_id::text, b.mentee_id::text, b.start_time, b.end_time, b.status, b.notes, b.created_at, b.updated_at`

type bookingRow struct {
	ID        string
	MentorID  string
	MenteeID  string
	StartTime time.Time
	EndTime   time.Time
	Status    string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *bookingRow) dest() []any {
	return []any{&r.ID, &r.MentorID, &r.MenteeID, &r.StartTime, &r.EndTime, &r.Status, &r.Notes, &r.CreatedAt, &r.UpdatedAt}
}

func (r *bookingRow) toModel() *models.Booking {
	return &models.Booking{
		ID:        r.ID,
		MentorID:  r.MentorID,
		MenteeID:  r.MenteeID,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Status:    models.BookingStatus(r.Status),
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ScanBooking scans a booking row joined to its mentor and mentee profiles
func ScanBooking(row pgx.Row) (*models.Booking, error) {
	var (
		b              bookingRow
		mentor, mentee profileRow
	)
	dest := append(b.dest(), mentor.dest()...)
	dest = append(dest, mentee.dest()...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	booking := b.toModel()
	booking.Mentor = mentor.toModel()
	booking.Mentee = mentee.toModel()
	return booking, nil
}

const mentorColumns = `mp.id::text, mp.title, mp.hourly_rate, mp.years_of_experience, mp.linkedin_url, mp.availability, mp.created_at, mp.updated_at`

type mentorRow struct {
	ID                string
	Title             string
	HourlyRate        int
	YearsOfExperience int
	LinkedInURL       *string
	Availability      []byte
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (r *mentorRow) dest() []any {
	return []any{&r.ID, &r.Title, &r.HourlyRate, &r.YearsOfExperience, &r.LinkedInURL, &r.Availability, &r.CreatedAt, &r.UpdatedAt}
}

func (r *mentorRow) toModel() (*models.MentorProfile, error) {
	availability := models.Availability{}
	if len(r.Availability) > 0 {
		if err := json.Unmarshal(r.Availability, &availability); err != nil {
			return nil, fmt.Errorf("invalid availability for mentor %s: %w", r.ID, err)
		}
	}
	return &models.MentorProfile{
		ID:                r.ID,
		Title:             r.Title,
		HourlyRate:        r.HourlyRate,
		YearsOfExperience: r.YearsOfExperience,
		LinkedInURL:       r.LinkedInURL,
		Availability:      availability,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}, nil
}

// ScanMentor scans a mentor_profiles row joined to its profile
func ScanMentor(row pgx.Row) (*models.MentorProfile, error) {
	var (
		m mentorRow
		p profileRow
	)
	if err := row.Scan(append(m.dest(), p.dest()...)...); err != nil {
		return nil, err
	}
	mentor, err := m.toModel()
	if err != nil {
		return nil, err
	}
	mentor.Profile = p.toModel()
	return mentor, nil
}

const reviewColumns = `r.id::text, r.booking_id::text, r.rating, r.comment, r.reviewer_id::text, r.created_at`

// ScanReview scans a review row joined to its reviewer profile
func ScanReview(row pgx.Row) (*models.Review, error) {
	var (
		rv       models.Review
		reviewer profileRow
	)
	dest := []any{&rv.ID, &rv.BookingID, &rv.Rating, &rv.Comment, &rv.ReviewerID, &rv.CreatedAt}
	if err := row.Scan(append(dest, reviewer.dest()...)...); err != nil {
		return nil, err
	}
	rv.Reviewer = reviewer.toModel()
	return &rv, nil
}

const paymentColumns = `id::text, booking_id::text, amount_cents, currency, status, reference, failure, created_at, updated_at`

// ScanPayment scans a payments row
func ScanPayment(row pgx.Row) (*models.Payment, error) {
	var (
		p      models.Payment
		status string
	)
	err := row.Scan(&p.ID, &p.BookingID, &p.AmountCents, &p.Currency, &status, &p.Reference, &p.Failure, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = models.PaymentStatus(status)
	return &p, nil
}
