package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/safehaven/server/internal/common"
	"github.com/safehaven/server/internal/model"
)

// ContactRepo defines the trusted contact repository operations. All
// operations are scoped to the owning user; a contact is never visible to or
// mutable by anyone else.
type ContactRepo interface {
	Create(ctx context.Context, c model.TrustedContact) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.TrustedContact, error)
	SetActive(ctx context.Context, id, userID uuid.UUID, active bool) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type contactRepo struct {
	db *sql.DB
}

// NewContactRepo creates a new ContactRepo instance
func NewContactRepo(db *sql.DB) ContactRepo {
	return &contactRepo{db: db}
}

// Create inserts a new trusted contact
func (r *contactRepo) Create(ctx context.Context, c model.TrustedContact) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trusted_contacts (id, user_id, contact_name, contact_phone, contact_email, relationship, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID.String(), c.UserID.String(), c.ContactName, c.ContactPhone, c.ContactEmail, c.Relationship, c.IsActive, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert trusted contact: %w", err)
	}
	return nil
}

// ListForUser returns the user's contacts, most recently added first. This is
// both the directory listing order and the notification fan-out order.
func (r *contactRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.TrustedContact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, contact_name, contact_phone, contact_email, relationship, is_active, created_at
		FROM trusted_contacts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list trusted contacts: %w", err)
	}
	defer rows.Close()

	var contacts []model.TrustedContact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trusted contacts: %w", err)
	}
	return contacts, nil
}

// SetActive toggles the active flag for the owner's contact
func (r *contactRepo) SetActive(ctx context.Context, id, userID uuid.UUID, active bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE trusted_contacts SET is_active = $3 WHERE id = $1 AND user_id = $2
	`, id.String(), userID.String(), active)
	if err != nil {
		return fmt.Errorf("set contact active: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Delete removes the owner's contact. Hard delete: no tombstone is kept.
func (r *contactRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM trusted_contacts WHERE id = $1 AND user_id = $2
	`, id.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanContact(rows *sql.Rows) (model.TrustedContact, error) {
	var c model.TrustedContact
	var idStr, userIDStr string
	var email, relationship sql.NullString
	if err := rows.Scan(&idStr, &userIDStr, &c.ContactName, &c.ContactPhone, &email, &relationship, &c.IsActive, &c.CreatedAt); err != nil {
		return model.TrustedContact{}, fmt.Errorf("scan contact: %w", err)
	}
	var err error
	if c.ID, err = uuid.Parse(idStr); err != nil {
		return model.TrustedContact{}, fmt.Errorf("parse contact ID: %w", err)
	}
	if c.UserID, err = uuid.Parse(userIDStr); err != nil {
		return model.TrustedContact{}, fmt.Errorf("parse contact user ID: %w", err)
	}
	if email.Valid {
		c.ContactEmail = &email.String
	}
	if relationship.Valid {
		c.Relationship = &relationship.String
	}
	return c, nil
}
