package safety

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/safehaven/server/internal/common"
	"github.com/safehaven/server/internal/model"
)

// Activation is the result of a successful alert activation: the stored
// alert plus the computed notification fan-out. Delivering the notifications
// is the caller's concern.
type Activation struct {
	Alert  model.EmergencyAlert
	Fanout Fanout
}

// ActivateSOS raises an SOS alert for the user. The coordinate is optional;
// when absent a best-effort geolocation sample is attempted and its failure
// is absorbed. Returns common.ErrConflict when the user already has an
// active alert, whether the pre-condition was caught by the conditional
// insert or by the store's uniqueness constraint.
func (s *Service) ActivateSOS(ctx context.Context, userID uuid.UUID, coord *model.Coordinate, locationDescription *string) (*Activation, error) {
	return s.activate(ctx, userID, model.AlertTypeSOS, coord, locationDescription)
}

func (s *Service) activate(ctx context.Context, userID uuid.UUID, alertType string, coord *model.Coordinate, locationDescription *string) (*Activation, error) {
	coord = s.resolvePosition(ctx, coord)

	alert := NewAlert(userID, alertType, coord, locationDescription, s.now())
	if err := s.alerts.InsertActive(ctx, alert); err != nil {
		return nil, err
	}

	fanout := s.resolveFanoutForUser(ctx, userID)
	s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"alert_id":   alert.ID,
		"alert_type": alertType,
		"fanout":     fanout.Mode,
		"recipients": len(fanout.Contacts),
	}).Info("alert activated")
	if fanout.Mode == FanoutNone {
		s.log.WithField("user_id", userID).Warn("alert activated with no notifiable contact")
	}

	return &Activation{Alert: alert, Fanout: fanout}, nil
}

// resolveFanoutForUser loads the records the eligibility resolver needs. A
// resolver failure never fails the activation that triggered it; the outcome
// degrades to an empty fan-out.
func (s *Service) resolveFanoutForUser(ctx context.Context, userID uuid.UUID) Fanout {
	contacts, err := s.contacts.ListForUser(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("loading contacts for fan-out failed")
		contacts = nil
	}
	var profile *model.Profile
	p, err := s.profiles.Get(ctx, userID)
	if err == nil {
		profile = &p
	} else if !errors.Is(err, common.ErrNotFound) {
		s.log.WithError(err).WithField("user_id", userID).Error("loading profile for fan-out failed")
	}
	return ResolveFanout(profile, contacts)
}

// ResolveActiveAlert marks the user's alert resolved ("I'm safe now").
func (s *Service) ResolveActiveAlert(ctx context.Context, userID, alertID uuid.UUID) (model.EmergencyAlert, error) {
	return s.terminate(ctx, userID, alertID, model.AlertStatusResolved)
}

// MarkAlertFalseAlarm marks the user's alert a false alarm.
func (s *Service) MarkAlertFalseAlarm(ctx context.Context, userID, alertID uuid.UUID) (model.EmergencyAlert, error) {
	return s.terminate(ctx, userID, alertID, model.AlertStatusFalseAlarm)
}

func (s *Service) terminate(ctx context.Context, userID, alertID uuid.UUID, toStatus string) (model.EmergencyAlert, error) {
	alert, err := s.alerts.GetByID(ctx, alertID, userID)
	if err != nil {
		return model.EmergencyAlert{}, err
	}

	var updated model.EmergencyAlert
	switch toStatus {
	case model.AlertStatusResolved:
		updated, err = ResolveAlert(alert, s.now())
	case model.AlertStatusFalseAlarm:
		updated, err = MarkFalseAlarm(alert, s.now())
	default:
		return model.EmergencyAlert{}, fmt.Errorf("unsupported alert transition to %q", toStatus)
	}
	if err != nil {
		return model.EmergencyAlert{}, err
	}

	// The pre-read can race another caller; the compare-and-swap on the
	// active status is what actually decides.
	if err := s.alerts.TerminateActive(ctx, alertID, userID, updated.Status, *updated.ResolvedAt); err != nil {
		return model.EmergencyAlert{}, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"alert_id": alertID,
		"status":   updated.Status,
	}).Info("alert terminated")
	return updated, nil
}

// ActiveAlert returns the user's currently active alert, or ErrNotFound.
func (s *Service) ActiveAlert(ctx context.Context, userID uuid.UUID) (model.EmergencyAlert, error) {
	return s.alerts.FindActive(ctx, userID)
}
