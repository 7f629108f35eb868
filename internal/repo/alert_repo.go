package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/safehaven/server/internal/common"
	"github.com/safehaven/server/internal/model"
)

// AlertRepo defines the emergency alert repository operations. Writes are
// conditional: the at-most-one-active invariant and the terminal-state rules
// are enforced at the store, not just by the pre-read, so they hold under
// concurrent callers.
type AlertRepo interface {
	InsertActive(ctx context.Context, a model.EmergencyAlert) error
	FindActive(ctx context.Context, userID uuid.UUID) (model.EmergencyAlert, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (model.EmergencyAlert, error)
	TerminateActive(ctx context.Context, id, userID uuid.UUID, toStatus string, resolvedAt time.Time) error
}

type alertRepo struct {
	db *sql.DB
}

// NewAlertRepo creates a new AlertRepo instance
func NewAlertRepo(db *sql.DB) AlertRepo {
	return &alertRepo{db: db}
}

// InsertActive inserts a new alert only if the user has no active one. The
// read-check alone would leave a check-then-act window between two
// concurrent activations, so the insert itself carries the condition and the
// partial unique index on (user_id) WHERE status = 'active' backstops it;
// either path surfaces as ErrConflict.
func (r *alertRepo) InsertActive(ctx context.Context, a model.EmergencyAlert) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO emergency_alerts (id, user_id, latitude, longitude, location_description, alert_type, status, notes, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
		WHERE NOT EXISTS (
			SELECT 1 FROM emergency_alerts WHERE user_id = $2 AND status = $7
		)
	`, a.ID.String(), a.UserID.String(), a.Latitude, a.Longitude, a.LocationDescription, a.AlertType, model.AlertStatusActive, a.Notes, a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict
		}
		return fmt.Errorf("insert alert: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert alert rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrConflict
	}
	return nil
}

// FindActive returns the user's active alert, newest first, or ErrNotFound.
func (r *alertRepo) FindActive(ctx context.Context, userID uuid.UUID) (model.EmergencyAlert, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, latitude, longitude, location_description, alert_type, status, notes, resolved_at, created_at
		FROM emergency_alerts
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, userID.String(), model.AlertStatusActive)
	return scanAlert(row)
}

// GetByID returns the user's alert by id, or ErrNotFound.
func (r *alertRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (model.EmergencyAlert, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, latitude, longitude, location_description, alert_type, status, notes, resolved_at, created_at
		FROM emergency_alerts
		WHERE id = $1 AND user_id = $2
	`, id.String(), userID.String())
	return scanAlert(row)
}

// TerminateActive applies a compare-and-swap transition from active to the
// given terminal status, stamping resolved_at. A failed swap is never
// silently overwritten: it is ErrNotFound when the id is absent and
// ErrInvalidState when the record already left active.
func (r *alertRepo) TerminateActive(ctx context.Context, id, userID uuid.UUID, toStatus string, resolvedAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE emergency_alerts
		SET status = $3, resolved_at = $4
		WHERE id = $1 AND user_id = $2 AND status = $5
	`, id.String(), userID.String(), toStatus, resolvedAt, model.AlertStatusActive)
	if err != nil {
		return fmt.Errorf("terminate alert: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 1 {
		return nil
	}

	// Distinguish a missing record from one already terminated.
	var exists bool
	err = r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM emergency_alerts WHERE id = $1 AND user_id = $2)
	`, id.String(), userID.String()).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check alert existence: %w", err)
	}
	if !exists {
		return common.ErrNotFound
	}
	return common.ErrInvalidState
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (model.EmergencyAlert, error) {
	var a model.EmergencyAlert
	var idStr, userIDStr string
	var lat, lng sql.NullFloat64
	var locDesc, notes sql.NullString
	var resolvedAt sql.NullTime
	err := row.Scan(&idStr, &userIDStr, &lat, &lng, &locDesc, &a.AlertType, &a.Status, &notes, &resolvedAt, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.EmergencyAlert{}, common.ErrNotFound
		}
		return model.EmergencyAlert{}, fmt.Errorf("scan alert: %w", err)
	}
	if a.ID, err = uuid.Parse(idStr); err != nil {
		return model.EmergencyAlert{}, fmt.Errorf("parse alert ID: %w", err)
	}
	if a.UserID, err = uuid.Parse(userIDStr); err != nil {
		return model.EmergencyAlert{}, fmt.Errorf("parse alert user ID: %w", err)
	}
	if lat.Valid {
		a.Latitude = &lat.Float64
	}
	if lng.Valid {
		a.Longitude = &lng.Float64
	}
	if locDesc.Valid {
		a.LocationDescription = &locDesc.String
	}
	if notes.Valid {
		a.Notes = &notes.String
	}
	if resolvedAt.Valid {
		a.ResolvedAt = &resolvedAt.Time
	}
	return a, nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation
// (23505), e.g. the partial unique index rejecting a second active alert.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
