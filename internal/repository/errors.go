package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/mentormatch/mentormatch-api/internal/database/postgres"
	apperrors "github.com/mentormatch/mentormatch-api/pkg/errors"
)

var errNoRows = pgx.ErrNoRows

// translate maps driver errors onto the application error taxonomy
func translate(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || postgres.InvalidText(err) {
		return apperrors.NotFoundError(resource)
	}
	if name, ok := postgres.UniqueViolation(err); ok {
		return apperrors.ConflictError(conflictReason(name, resource))
	}
	if name, ok := postgres.ForeignKeyViolation(err); ok {
		return apperrors.InvalidInputError(name, "references a missing record")
	}
	if name, ok := postgres.CheckViolation(err); ok {
		return apperrors.InvalidInputError(name, "violates a constraint")
	}
	return err
}

func conflictReason(constraint, resource string) string {
	switch constraint {
	case "profiles_email_idx":
		return "email already registered"
	case "bookings_active_slot_idx":
		return "slot already booked"
	case "reviews_booking_id_key":
		return "booking already reviewed"
	case "payments_succeeded_idx":
		return "booking already paid"
	case "mentor_profiles_pkey":
		return "already registered as mentor"
	default:
		return resource + " already exists"
	}
}
