package safety

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/safehaven/server/internal/common"
	"github.com/safehaven/server/internal/model"
)

const (
	defaultCheckInLimit = 10
	maxCheckInLimit     = 100
	sweepBatchSize      = 100
)

// CreateCheckIn starts a destination check-in expiring after the given
// duration.
func (s *Service) CreateCheckIn(ctx context.Context, userID uuid.UUID, destination string, durationFromNow time.Duration, coord *model.Coordinate) (model.CheckIn, error) {
	coord = s.resolvePosition(ctx, coord)

	checkIn, err := NewCheckIn(userID, destination, durationFromNow, coord, s.now())
	if err != nil {
		return model.CheckIn{}, err
	}
	if err := s.checkIns.Insert(ctx, checkIn); err != nil {
		return model.CheckIn{}, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":          userID,
		"check_in_id":      checkIn.ID,
		"expected_arrival": checkIn.ExpectedArrival,
	}).Info("check-in created")
	return checkIn, nil
}

// CompleteCheckIn confirms a safe arrival. Late completion still counts as
// completed, never missed: once explicitly invoked, completion takes
// precedence over lateness.
func (s *Service) CompleteCheckIn(ctx context.Context, userID, checkInID uuid.UUID) (model.CheckIn, error) {
	checkIn, err := s.checkIns.GetByID(ctx, checkInID, userID)
	if err != nil {
		return model.CheckIn{}, err
	}
	updated, err := CompleteCheckIn(checkIn, s.now())
	if err != nil {
		return model.CheckIn{}, err
	}
	if err := s.checkIns.Terminate(ctx, checkInID, userID, updated.Status, updated.CheckInTime); err != nil {
		return model.CheckIn{}, err
	}
	return updated, nil
}

// CancelCheckIn aborts a pending check-in.
func (s *Service) CancelCheckIn(ctx context.Context, userID, checkInID uuid.UUID) (model.CheckIn, error) {
	checkIn, err := s.checkIns.GetByID(ctx, checkInID, userID)
	if err != nil {
		return model.CheckIn{}, err
	}
	updated, err := CancelCheckIn(checkIn)
	if err != nil {
		return model.CheckIn{}, err
	}
	if err := s.checkIns.Terminate(ctx, checkInID, userID, updated.Status, nil); err != nil {
		return model.CheckIn{}, err
	}
	return updated, nil
}

// ListCheckIns returns the user's check-ins, newest first.
func (s *Service) ListCheckIns(ctx context.Context, userID uuid.UUID, limit int) ([]model.CheckIn, error) {
	if limit <= 0 {
		limit = defaultCheckInLimit
	}
	if limit > maxCheckInLimit {
		limit = maxCheckInLimit
	}
	return s.checkIns.ListForUser(ctx, userID, limit)
}

// SweepMissedCheckIns transitions overdue pending check-ins to missed and
// raises a check_in_missed alert for each affected user. It is invoked on a
// schedule and is idempotent: the pending-only compare-and-swap makes it
// safe to run at any cadence or be retried, and a record completed or
// cancelled mid-sweep is simply skipped. Returns the number of check-ins
// marked missed.
func (s *Service) SweepMissedCheckIns(ctx context.Context) (int, error) {
	now := s.now()
	overdue, err := s.checkIns.ListOverduePending(ctx, now, sweepBatchSize)
	if err != nil {
		return 0, err
	}

	missed := 0
	for _, checkIn := range overdue {
		if !IsOverdue(checkIn, now) {
			continue
		}
		updated, err := MarkCheckInMissed(checkIn)
		if err != nil {
			continue
		}
		err = s.checkIns.Terminate(ctx, checkIn.ID, checkIn.UserID, updated.Status, nil)
		if errors.Is(err, common.ErrInvalidState) || errors.Is(err, common.ErrNotFound) {
			// Another caller terminated it first; their transition wins.
			continue
		}
		if err != nil {
			s.log.WithError(err).WithField("check_in_id", checkIn.ID).Error("marking check-in missed failed")
			continue
		}
		missed++

		var coord *model.Coordinate
		if checkIn.Latitude != nil && checkIn.Longitude != nil {
			coord = &model.Coordinate{Latitude: *checkIn.Latitude, Longitude: *checkIn.Longitude}
		}
		desc := "missed check-in: " + checkIn.Destination
		if _, err := s.activate(ctx, checkIn.UserID, model.AlertTypeCheckInMissed, coord, &desc); err != nil {
			if errors.Is(err, common.ErrConflict) {
				// The user already has an active alert; nothing to add.
				continue
			}
			s.log.WithError(err).WithField("user_id", checkIn.UserID).Error("raising missed check-in alert failed")
		}
	}
	return missed, nil
}
