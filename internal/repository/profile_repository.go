package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mentormatch/mentormatch-api/internal/database/postgres"
	"github.com/mentormatch/mentormatch-api/internal/models"
)

// ProfileRepository handles profile data access
type ProfileRepository struct {
	db *postgres.Client
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *postgres.Client) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a new profile
func (r *ProfileRepository) Create(ctx context.Context, email, passwordHash, fullName string) (p *models.Profile, err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "createProfile", start, err) }()

	query := `
		INSERT INTO profiles AS p (email, password_hash, full_name)
		VALUES ($1, $2, $3)
		RETURNING ` + profileColumns("p")

	p, err = ScanProfile(r.db.Q().QueryRow(ctx, query, email, passwordHash, fullName))
	if err != nil {
		return nil, translate(err, "profile")
	}
	return p, nil
}

// GetByID fetches a profile by id
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (p *models.Profile, err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "getProfile", start, err) }()

	query := `SELECT ` + profileColumns("p") + ` FROM profiles p WHERE p.id = $1`

	p, err = ScanProfile(r.db.Q().QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err, "profile")
	}
	return p, nil
}

// GetCredentials fetches a profile and its password hash by email (case-insensitive)
func (r *ProfileRepository) GetCredentials(ctx context.Context, email string) (p *models.Profile, hash string, err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "getCredentials", start, err) }()

	query := `SELECT ` + profileColumns("p") + `, p.password_hash FROM profiles p WHERE LOWER(p.email) = LOWER($1)`

	var row profileRow
	err = r.db.Q().QueryRow(ctx, query, email).Scan(append(row.dest(), &hash)...)
	if err != nil {
		return nil, "", translate(err, "profile")
	}
	return row.toModel(), hash, nil
}

// Update changes the display name and bio
func (r *ProfileRepository) Update(ctx context.Context, id, fullName string, bio *string) (p *models.Profile, err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "updateProfile", start, err) }()

	query := `
		UPDATE profiles AS p
		SET full_name = $2, bio = $3, updated_at = NOW()
		WHERE p.id = $1
		RETURNING ` + profileColumns("p")

	p, err = ScanProfile(r.db.Q().QueryRow(ctx, query, id, fullName, bio))
	if err != nil {
		return nil, translate(err, "profile")
	}
	return p, nil
}

// UpdateAvatar stores a new avatar URL
func (r *ProfileRepository) UpdateAvatar(ctx context.Context, id, avatarURL string) (err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "updateAvatar", start, err) }()

	tag, err := r.db.Q().Exec(ctx, `UPDATE profiles SET avatar_url = $2, updated_at = NOW() WHERE id = $1`, id, avatarURL)
	if err != nil {
		return translate(err, "profile")
	}
	if tag.RowsAffected() == 0 {
		return translate(errNoRows, "profile")
	}
	return nil
}

// List returns profiles newest first with their booking counts
func (r *ProfileRepository) List(ctx context.Context, limit, offset int) (items []models.AdminUserListItem, err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "listProfiles", start, err) }()

	query := `
		SELECT ` + profileColumns("p") + `,
			(SELECT COUNT(*) FROM bookings b WHERE b.mentor_id = p.id OR b.mentee_id = p.id) AS booking_count
		FROM profiles p
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Q().Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	items = make([]models.AdminUserListItem, 0)
	for rows.Next() {
		var (
			row   profileRow
			count int
		)
		if err = rows.Scan(append(row.dest(), &count)...); err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		items = append(items, models.AdminUserListItem{Profile: *row.toModel(), BookingCount: count})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile rows: %w", err)
	}
	return items, nil
}

var _ ProfileStore = (*ProfileRepository)(nil)
