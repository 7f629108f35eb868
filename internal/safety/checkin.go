package safety

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/safehaven/server/internal/common"
	"github.com/safehaven/server/internal/model"
)

// NewCheckIn builds a pending check-in. The destination must be non-empty
// after trimming and the duration strictly positive; the UI offers choices
// between 15 minutes and 12 hours but any positive duration is accepted.
func NewCheckIn(userID uuid.UUID, destination string, durationFromNow time.Duration, coord *model.Coordinate, now time.Time) (model.CheckIn, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return model.CheckIn{}, common.Validationf("destination is required")
	}
	if durationFromNow <= 0 {
		return model.CheckIn{}, common.Validationf("duration must be positive")
	}
	c := model.CheckIn{
		ID:              uuid.New(),
		UserID:          userID,
		Destination:     destination,
		ExpectedArrival: now.UTC().Add(durationFromNow),
		Status:          model.CheckInStatusPending,
		CreatedAt:       now.UTC(),
	}
	if coord != nil {
		lat, lng := coord.Latitude, coord.Longitude
		c.Latitude = &lat
		c.Longitude = &lng
	}
	return c, nil
}

// CompleteCheckIn confirms arrival. Valid even past expected_arrival: an
// explicit completion always takes precedence over lateness.
func CompleteCheckIn(c model.CheckIn, now time.Time) (model.CheckIn, error) {
	if c.Status != model.CheckInStatusPending {
		return c, common.ErrInvalidState
	}
	ts := now.UTC()
	c.Status = model.CheckInStatusCompleted
	c.CheckInTime = &ts
	return c, nil
}

// CancelCheckIn aborts a pending check-in.
func CancelCheckIn(c model.CheckIn) (model.CheckIn, error) {
	if c.Status != model.CheckInStatusPending {
		return c, common.ErrInvalidState
	}
	c.Status = model.CheckInStatusCancelled
	return c, nil
}

// MarkCheckInMissed transitions an overdue pending check-in to missed. It is
// invoked by the sweep, never directly by the owner, and shares the
// pending-only precondition with complete and cancel: exactly one of the
// three ever succeeds for a given record.
func MarkCheckInMissed(c model.CheckIn) (model.CheckIn, error) {
	if c.Status != model.CheckInStatusPending {
		return c, common.ErrInvalidState
	}
	c.Status = model.CheckInStatusMissed
	return c, nil
}

// IsOverdue reports whether a check-in is pending past its expectation
// window. Advisory only: it never mutates state. The sweep uses it to decide
// which records to attempt MarkCheckInMissed on.
func IsOverdue(c model.CheckIn, now time.Time) bool {
	return c.Status == model.CheckInStatusPending && now.After(c.ExpectedArrival)
}
