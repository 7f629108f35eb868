package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/safehaven/server/internal/model"
)

// SafeZoneRepo reads the community safe zone directory. Entries are not
// user-owned and are never written by this service.
type SafeZoneRepo interface {
	ListAll(ctx context.Context) ([]model.SafeZone, error)
}

type safeZoneRepo struct {
	db *sql.DB
}

// NewSafeZoneRepo creates a new SafeZoneRepo instance
func NewSafeZoneRepo(db *sql.DB) SafeZoneRepo {
	return &safeZoneRepo{db: db}
}

// ListAll returns every directory entry. Type filtering and display ordering
// are applied by safety.FilterZones.
func (r *safeZoneRepo) ListAll(ctx context.Context) ([]model.SafeZone, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type, address, latitude, longitude, phone_number, operating_hours, verified, created_by, created_at
		FROM safe_zones
	`)
	if err != nil {
		return nil, fmt.Errorf("list safe zones: %w", err)
	}
	defer rows.Close()

	var zones []model.SafeZone
	for rows.Next() {
		var z model.SafeZone
		var idStr string
		var phone, hours, createdBy sql.NullString
		if err := rows.Scan(&idStr, &z.Name, &z.Type, &z.Address, &z.Latitude, &z.Longitude, &phone, &hours, &z.Verified, &createdBy, &z.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan safe zone: %w", err)
		}
		if z.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parse safe zone ID: %w", err)
		}
		if phone.Valid {
			z.PhoneNumber = &phone.String
		}
		if hours.Valid {
			z.OperatingHours = &hours.String
		}
		if createdBy.Valid {
			creator, err := uuid.Parse(createdBy.String)
			if err != nil {
				return nil, fmt.Errorf("parse safe zone creator ID: %w", err)
			}
			z.CreatedBy = &creator
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate safe zones: %w", err)
	}
	return zones, nil
}
