package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mentormatch/mentormatch-api/internal/database/postgres"
	"github.com/mentormatch/mentormatch-api/internal/models"
)

func mentorQuery(where string) string {
	q := `SELECT ` + mentorColumns + `, ` + profileColumns("p") + `
		FROM mentor_profiles mp
		JOIN profiles p ON p.id = mp.id`
	if where != "" {
		q += "\n\t\tWHERE " + where
	}
	return q
}

// MentorRepository handles mentor data access
type MentorRepository struct {
	db *postgres.Client
}

// NewMentorRepository creates a new mentor repository
func NewMentorRepository(db *postgres.Client) *MentorRepository {
	return &MentorRepository{db: db}
}

// List returns mentors whose profile holds the mentor capability
func (r *MentorRepository) List(ctx context.Context, filter models.MentorListFilter) (mentors []*models.MentorProfile, err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "listMentors", start, err) }()

	conditions := []string{"p.is_mentor"}
	args := []any{}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		conditions = append(conditions, fmt.Sprintf("(p.full_name ILIKE $%d OR mp.title ILIKE $%d)", len(args), len(args)))
	}
	if filter.MaxRate > 0 {
		args = append(args, filter.MaxRate)
		conditions = append(conditions, fmt.Sprintf("mp.hourly_rate <= $%d", len(args)))
	}
	query := mentorQuery(strings.Join(conditions, " AND ")) + "\n\t\tORDER BY mp.created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Q().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mentors: %w", err)
	}
	defer rows.Close()

	mentors = make([]*models.MentorProfile, 0)
	for rows.Next() {
		m, scanErr := ScanMentor(rows)
		if scanErr != nil {
			err = fmt.Errorf("failed to scan mentor row: %w", scanErr)
			return nil, err
		}
		mentors = append(mentors, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mentor rows: %w", err)
	}
	return mentors, nil
}

// GetByID fetches one mentor with its profile
func (r *MentorRepository) GetByID(ctx context.Context, id string) (m *models.MentorProfile, err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "getMentor", start, err) }()

	m, err = ScanMentor(r.db.Q().QueryRow(ctx, mentorQuery("mp.id = $1 AND p.is_mentor"), id))
	if err != nil {
		return nil, translate(err, "mentor")
	}
	return m, nil
}

// Register grants the mentor capability and creates the mentor profile
func (r *MentorRepository) Register(ctx context.Context, profileID string, req *models.RegisterMentorRequest, availability models.Availability) (m *models.MentorProfile, err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "registerMentor", start, err) }()

	availabilityJSON, err := json.Marshal(availability)
	if err != nil {
		return nil, fmt.Errorf("failed to encode availability: %w", err)
	}

	err = r.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, txErr := tx.Exec(ctx,
			`UPDATE profiles SET is_mentor = TRUE, bio = $2, updated_at = NOW() WHERE id = $1`,
			profileID, req.Bio)
		if txErr != nil {
			return translate(txErr, "profile")
		}
		if tag.RowsAffected() == 0 {
			return translate(errNoRows, "profile")
		}

		_, txErr = tx.Exec(ctx, `
			INSERT INTO mentor_profiles (id, title, hourly_rate, years_of_experience, linkedin_url, availability)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			profileID, req.Title, req.HourlyRate, req.YearsOfExperience, req.LinkedInProfile, availabilityJSON)
		if txErr != nil {
			return translate(txErr, "mentor")
		}

		m, txErr = ScanMentor(tx.QueryRow(ctx, mentorQuery("mp.id = $1"), profileID))
		return translate(txErr, "mentor")
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateAvailability replaces the weekly schedule
func (r *MentorRepository) UpdateAvailability(ctx context.Context, id string, availability models.Availability) (err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "updateAvailability", start, err) }()

	availabilityJSON, err := json.Marshal(availability)
	if err != nil {
		return fmt.Errorf("failed to encode availability: %w", err)
	}

	tag, err := r.db.Q().Exec(ctx,
		`UPDATE mentor_profiles SET availability = $2, updated_at = NOW() WHERE id = $1`,
		id, availabilityJSON)
	if err != nil {
		return translate(err, "mentor")
	}
	if tag.RowsAffected() == 0 {
		return translate(errNoRows, "mentor")
	}
	return nil
}

var _ MentorStore = (*MentorRepository)(nil)
