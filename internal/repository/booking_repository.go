package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mentormatch/mentormatch-api/internal/database/postgres"
	"github.com/mentormatch/mentormatch-api/internal/models"
	apperrors "github.com/mentormatch/mentormatch-api/pkg/errors"
)

// bookingQuery selects bookings joined to both participants through the
// bookings_mentor_id_fkey and bookings_mentee_id_fkey relations
func bookingQuery(where string) string {
	return `SELECT ` + bookingColumns + `, ` + profileColumns("m") + `, ` + profileColumns("e") + `
		FROM bookings b
		JOIN profiles m ON m.id = b.mentor_id
		JOIN profiles e ON e.id = b.mentee_id
		WHERE ` + where
}

// BookingRepository handles booking data access
type BookingRepository struct {
	db *postgres.Client
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *postgres.Client) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a pending booking and returns it joined to both participants
func (r *BookingRepository) Create(ctx context.Context, mentorID, menteeID string, startTime, endTime time.Time, notes *string) (b *models.Booking, err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "createBooking", start, err) }()

	query := `
		WITH b AS (
			INSERT INTO bookings (mentor_id, mentee_id, start_time, end_time, status, notes)
			VALUES ($1, $2, $3, $4, 'pending', $5)
			RETURNING *
		)
		SELECT ` + bookingColumns + `, ` + profileColumns("m") + `, ` + profileColumns("e") + `
		FROM b
		JOIN profiles m ON m.id = b.mentor_id
		JOIN profiles e ON e.id = b.mentee_id`

	b, err = ScanBooking(r.db.Q().QueryRow(ctx, query, mentorID, menteeID, startTime.UTC(), endTime.UTC(), notes))
	if err != nil {
		return nil, translate(err, "booking")
	}
	return b, nil
}

// GetByID fetches a booking joined to both participants
func (r *BookingRepository) GetByID(ctx context.Context, id string) (b *models.Booking, err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "getBooking", start, err) }()

	b, err = ScanBooking(r.db.Q().QueryRow(ctx, bookingQuery("b.id = $1"), id))
	if err != nil {
		return nil, translate(err, "booking")
	}
	return b, nil
}

// ListForUser returns a user's bookings ordered by start time
func (r *BookingRepository) ListForUser(ctx context.Context, userID string, side models.BookingSide) (bookings []models.Booking, err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "listBookings", start, err) }()

	var where string
	switch side {
	case models.SideMentor:
		where = "b.mentor_id = $1"
	case models.SideMentee:
		where = "b.mentee_id = $1"
	case models.SideAny, "":
		where = "(b.mentor_id = $1 OR b.mentee_id = $1)"
	default:
		return nil, apperrors.InvalidInputError("side", fmt.Sprintf("unknown booking side %q", side))
	}

	rows, err := r.db.Q().Query(ctx, bookingQuery(where)+"\n\t\tORDER BY b.start_time ASC", userID)
	if err != nil {
		return nil, translate(err, "booking")
	}
	defer rows.Close()

	bookings = make([]models.Booking, 0)
	for rows.Next() {
		b, scanErr := ScanBooking(rows)
		if scanErr != nil {
			err = fmt.Errorf("failed to scan booking row: %w", scanErr)
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating booking rows: %w", err)
	}
	return bookings, nil
}

// UpdateStatus moves a booking from one status to another.
// The update only applies while the booking is still in from.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (err error) {
	start := time.Now()
	defer func() { postgres.Observe(ctx, "updateBookingStatus", start, err) }()

	tag, err := r.db.Q().Exec(ctx,
		`UPDATE bookings SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, string(from), string(to))
	if err != nil {
		return translate(err, "booking")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ConflictError(fmt.Sprintf("booking is no longer %s", from))
	}
	return nil
}

var _ BookingStore = (*BookingRepository)(nil)
