package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mentormatch/mentormatch-api/internal/database/postgres"
	"github.com/mentormatch/mentormatch-api/internal/models"
)

// ReviewRepository handles review data access
type ReviewRepository struct {
	db *postgres.Client
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *postgres.Client) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create creates a new review for a booking.
// The unique booking_id constraint rejects a second review.
func (r *ReviewRepository) Create(ctx context.Context, bookingID, reviewerID string, rating int, comment *string) (rv *models.Review, err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "createReview", start, err) }()

	query := `
		WITH r AS (
			INSERT INTO reviews (booking_id, reviewer_id, rating, comment)
			VALUES ($1, $2, $3, $4)
			RETURNING *
		)
		SELECT ` + reviewColumns + `, ` + profileColumns("p") + `
		FROM r
		JOIN profiles p ON p.id = r.reviewer_id`

	rv, err = ScanReview(r.db.Q().QueryRow(ctx, query, bookingID, reviewerID, rating, comment))
	if err != nil {
		return nil, translate(err, "review")
	}
	return rv, nil
}

// ListForMentor returns reviews left on a mentor's bookings, newest first
func (r *ReviewRepository) ListForMentor(ctx context.Context, mentorID string, limit int) (reviews []models.Review, err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "listMentorReviews", start, err) }()

	query := `
		SELECT ` + reviewColumns + `, ` + profileColumns("p") + `
		FROM reviews r
		JOIN bookings b ON b.id = r.booking_id
		JOIN profiles p ON p.id = r.reviewer_id
		WHERE b.mentor_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2`

	rows, err := r.db.Q().Query(ctx, query, mentorID, limit)
	if err != nil {
		return nil, translate(err, "review")
	}
	defer rows.Close()

	reviews = make([]models.Review, 0)
	for rows.Next() {
		rv, scanErr := ScanReview(rows)
		if scanErr != nil {
			err = fmt.Errorf("failed to scan review row: %w", scanErr)
			return nil, err
		}
		reviews = append(reviews, *rv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review rows: %w", err)
	}
	return reviews, nil
}

var _ ReviewStore = (*ReviewRepository)(nil)
