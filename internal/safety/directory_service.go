package safety

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/safehaven/server/internal/common"
	"github.com/safehaven/server/internal/model"
)

// ContactInput carries the caller-supplied fields of a trusted contact.
type ContactInput struct {
	Name         string
	Phone        string
	Email        *string
	Relationship *string
}

// AddContact creates an active trusted contact for the user.
func (s *Service) AddContact(ctx context.Context, userID uuid.UUID, in ContactInput) (model.TrustedContact, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" {
		return model.TrustedContact{}, common.Validationf("contact_name is required")
	}
	if in.Phone == "" {
		return model.TrustedContact{}, common.Validationf("contact_phone is required")
	}

	contact := model.TrustedContact{
		ID:           uuid.New(),
		UserID:       userID,
		ContactName:  in.Name,
		ContactPhone: in.Phone,
		ContactEmail: in.Email,
		Relationship: in.Relationship,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return model.TrustedContact{}, err
	}
	return contact, nil
}

// ListContacts returns the user's contacts, most recently added first.
// Inactive contacts are included: they stay visible to their owner even
// though the resolver skips them.
func (s *Service) ListContacts(ctx context.Context, userID uuid.UUID) ([]model.TrustedContact, error) {
	return s.contacts.ListForUser(ctx, userID)
}

// SetContactActive toggles whether a contact participates in fan-out.
func (s *Service) SetContactActive(ctx context.Context, userID, contactID uuid.UUID, active bool) error {
	return s.contacts.SetActive(ctx, contactID, userID, active)
}

// RemoveContact hard-deletes the user's contact.
func (s *Service) RemoveContact(ctx context.Context, userID, contactID uuid.UUID) error {
	return s.contacts.Delete(ctx, contactID, userID)
}

// Profile returns the user's profile, or ErrNotFound before first save.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	return s.profiles.Get(ctx, userID)
}

// SaveProfile creates or updates the user's profile attributes.
func (s *Service) SaveProfile(ctx context.Context, p model.Profile) error {
	p.FullName = strings.TrimSpace(p.FullName)
	if p.FullName == "" {
		return common.Validationf("full_name is required")
	}
	return s.profiles.Upsert(ctx, p)
}

// SafeZones returns the directory entries for the given type filter, ordered
// verified-first then by name.
func (s *Service) SafeZones(ctx context.Context, typeFilter string) ([]model.SafeZone, error) {
	zones, err := s.zones.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return FilterZones(zones, strings.TrimSpace(typeFilter)), nil
}
