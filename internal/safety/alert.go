// Package safety implements the alert and check-in lifecycle engine: the
// pure state-machine decisions, the notification eligibility resolver, and
// the services that apply those decisions through the record store.
package safety

import (
	"time"

	"github.com/google/uuid"
	"github.com/safehaven/server/internal/common"
	"github.com/safehaven/server/internal/model"
)

// NewAlert builds a new emergency alert in active status. The coordinate is
// optional: geolocation may have failed or been denied, and that must not
// block activation.
func NewAlert(userID uuid.UUID, alertType string, coord *model.Coordinate, locationDescription *string, now time.Time) model.EmergencyAlert {
	a := model.EmergencyAlert{
		ID:                  uuid.New(),
		UserID:              userID,
		AlertType:           alertType,
		Status:              model.AlertStatusActive,
		LocationDescription: locationDescription,
		CreatedAt:           now.UTC(),
	}
	if coord != nil {
		lat, lng := coord.Latitude, coord.Longitude
		a.Latitude = &lat
		a.Longitude = &lng
	}
	return a
}

// ResolveAlert transitions an active alert to resolved and stamps
// resolved_at. Resolved and false_alarm are terminal: any further transition
// attempt fails with ErrInvalidState and leaves the record untouched.
func ResolveAlert(a model.EmergencyAlert, now time.Time) (model.EmergencyAlert, error) {
	return terminateAlert(a, model.AlertStatusResolved, now)
}

// MarkFalseAlarm transitions an active alert to false_alarm with the same
// precondition as ResolveAlert.
func MarkFalseAlarm(a model.EmergencyAlert, now time.Time) (model.EmergencyAlert, error) {
	return terminateAlert(a, model.AlertStatusFalseAlarm, now)
}

func terminateAlert(a model.EmergencyAlert, to string, now time.Time) (model.EmergencyAlert, error) {
	if a.Status != model.AlertStatusActive {
		return a, common.ErrInvalidState
	}
	ts := now.UTC()
	a.Status = to
	a.ResolvedAt = &ts
	return a, nil
}
