package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/safehaven/server/internal/common"
	"github.com/safehaven/server/internal/model"
)

// CheckInRepo defines the check-in repository operations. Complete, cancel,
// and missed are mutually exclusive terminal transitions; the store applies
// them as a compare-and-swap on the pending status so the first writer wins.
type CheckInRepo interface {
	Insert(ctx context.Context, c model.CheckIn) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (model.CheckIn, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.CheckIn, error)
	ListOverduePending(ctx context.Context, now time.Time, limit int) ([]model.CheckIn, error)
	Terminate(ctx context.Context, id, userID uuid.UUID, toStatus string, checkInTime *time.Time) error
}

type checkInRepo struct {
	db *sql.DB
}

// NewCheckInRepo creates a new CheckInRepo instance
func NewCheckInRepo(db *sql.DB) CheckInRepo {
	return &checkInRepo{db: db}
}

// Insert stores a new pending check-in
func (r *checkInRepo) Insert(ctx context.Context, c model.CheckIn) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO check_ins (id, user_id, destination, expected_arrival, check_in_time, status, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, c.ID.String(), c.UserID.String(), c.Destination, c.ExpectedArrival, c.CheckInTime, c.Status, c.Latitude, c.Longitude, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert check-in: %w", err)
	}
	return nil
}

// GetByID returns the user's check-in by id, or ErrNotFound.
func (r *checkInRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (model.CheckIn, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, destination, expected_arrival, check_in_time, status, latitude, longitude, created_at
		FROM check_ins
		WHERE id = $1 AND user_id = $2
	`, id.String(), userID.String())
	return scanCheckIn(row)
}

// ListForUser returns the user's check-ins, newest first.
func (r *checkInRepo) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.CheckIn, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, destination, expected_arrival, check_in_time, status, latitude, longitude, created_at
		FROM check_ins
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	return collectCheckIns(rows)
}

// ListOverduePending returns pending check-ins whose expected arrival has
// passed. Used by the sweep; the pending-only CAS in Terminate makes the
// sweep safe at any cadence and under retries.
func (r *checkInRepo) ListOverduePending(ctx context.Context, now time.Time, limit int) ([]model.CheckIn, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, destination, expected_arrival, check_in_time, status, latitude, longitude, created_at
		FROM check_ins
		WHERE status = $1 AND expected_arrival < $2
		ORDER BY expected_arrival ASC
		LIMIT $3
	`, model.CheckInStatusPending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list overdue check-ins: %w", err)
	}
	return collectCheckIns(rows)
}

// Terminate applies a compare-and-swap transition from pending to the given
// terminal status. checkInTime is set only for completion. A failed swap is
// ErrNotFound when the id is absent and ErrInvalidState when another caller
// already terminated the record.
func (r *checkInRepo) Terminate(ctx context.Context, id, userID uuid.UUID, toStatus string, checkInTime *time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE check_ins
		SET status = $3, check_in_time = $4
		WHERE id = $1 AND user_id = $2 AND status = $5
	`, id.String(), userID.String(), toStatus, checkInTime, model.CheckInStatusPending)
	if err != nil {
		return fmt.Errorf("terminate check-in: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 1 {
		return nil
	}

	var exists bool
	err = r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM check_ins WHERE id = $1 AND user_id = $2)
	`, id.String(), userID.String()).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check check-in existence: %w", err)
	}
	if !exists {
		return common.ErrNotFound
	}
	return common.ErrInvalidState
}

func collectCheckIns(rows *sql.Rows) ([]model.CheckIn, error) {
	defer rows.Close()
	var checkIns []model.CheckIn
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, err
		}
		checkIns = append(checkIns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate check-ins: %w", err)
	}
	return checkIns, nil
}

func scanCheckIn(row rowScanner) (model.CheckIn, error) {
	var c model.CheckIn
	var idStr, userIDStr string
	var checkInTime sql.NullTime
	var lat, lng sql.NullFloat64
	err := row.Scan(&idStr, &userIDStr, &c.Destination, &c.ExpectedArrival, &checkInTime, &c.Status, &lat, &lng, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CheckIn{}, common.ErrNotFound
		}
		return model.CheckIn{}, fmt.Errorf("scan check-in: %w", err)
	}
	if c.ID, err = uuid.Parse(idStr); err != nil {
		return model.CheckIn{}, fmt.Errorf("parse check-in ID: %w", err)
	}
	if c.UserID, err = uuid.Parse(userIDStr); err != nil {
		return model.CheckIn{}, fmt.Errorf("parse check-in user ID: %w", err)
	}
	if checkInTime.Valid {
		c.CheckInTime = &checkInTime.Time
	}
	if lat.Valid {
		c.Latitude = &lat.Float64
	}
	if lng.Valid {
		c.Longitude = &lng.Float64
	}
	return c, nil
}
