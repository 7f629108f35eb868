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

// ProfileRepo defines the profile repository operations. Identity itself is
// owned by the external provider; this stores the profile attributes keyed
// by its user id, including the fallback emergency contact.
type ProfileRepo interface {
	Get(ctx context.Context, id uuid.UUID) (model.Profile, error)
	Upsert(ctx context.Context, p model.Profile) error
}

type profileRepo struct {
	db *sql.DB
}

// NewProfileRepo creates a new ProfileRepo instance
func NewProfileRepo(db *sql.DB) ProfileRepo {
	return &profileRepo{db: db}
}

// Get retrieves a profile by user id, or ErrNotFound.
func (r *profileRepo) Get(ctx context.Context, id uuid.UUID) (model.Profile, error) {
	var p model.Profile
	var idStr string
	var phone, ecName, ecPhone, avatar sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, full_name, phone_number, emergency_contact_name, emergency_contact_phone, avatar_url, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`, id.String()).Scan(&idStr, &p.FullName, &phone, &ecName, &ecPhone, &avatar, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Profile{}, common.ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if p.ID, err = uuid.Parse(idStr); err != nil {
		return model.Profile{}, fmt.Errorf("parse profile ID: %w", err)
	}
	if phone.Valid {
		p.PhoneNumber = &phone.String
	}
	if ecName.Valid {
		p.EmergencyContactName = &ecName.String
	}
	if ecPhone.Valid {
		p.EmergencyContactPhone = &ecPhone.String
	}
	if avatar.Valid {
		p.AvatarURL = &avatar.String
	}
	return p, nil
}

// Upsert creates or replaces the profile attributes for a user.
func (r *profileRepo) Upsert(ctx context.Context, p model.Profile) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, full_name, phone_number, emergency_contact_name, emergency_contact_phone, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			phone_number = EXCLUDED.phone_number,
			emergency_contact_name = EXCLUDED.emergency_contact_name,
			emergency_contact_phone = EXCLUDED.emergency_contact_phone,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = EXCLUDED.updated_at
	`, p.ID.String(), p.FullName, p.PhoneNumber, p.EmergencyContactName, p.EmergencyContactPhone, p.AvatarURL, now)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
