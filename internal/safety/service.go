package safety

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/safehaven/server/internal/common"
	"github.com/safehaven/server/internal/geo"
	"github.com/safehaven/server/internal/model"
	"github.com/safehaven/server/internal/repo"
)

// Service applies the lifecycle decisions through the record store. It holds
// no state of its own: every operation reads current records, runs the pure
// transition, and commits it with a conditional write, so concurrent callers
// (a second device, the background sweep) are serialized by the store.
type Service struct {
	profiles repo.ProfileRepo
	contacts repo.ContactRepo
	alerts   repo.AlertRepo
	checkIns repo.CheckInRepo
	reports  repo.ReportRepo
	zones    repo.SafeZoneRepo
	geo      geo.Provider
	log      *logrus.Logger
	now      func() time.Time
}

// NewService creates a new safety Service
func NewService(
	profiles repo.ProfileRepo,
	contacts repo.ContactRepo,
	alerts repo.AlertRepo,
	checkIns repo.CheckInRepo,
	reports repo.ReportRepo,
	zones repo.SafeZoneRepo,
	geoProvider geo.Provider,
	log *logrus.Logger,
) *Service {
	return &Service{
		profiles: profiles,
		contacts: contacts,
		alerts:   alerts,
		checkIns: checkIns,
		reports:  reports,
		zones:    zones,
		geo:      geoProvider,
		log:      log,
		now:      time.Now,
	}
}

// resolvePosition returns the caller-supplied coordinate, or asks the
// geolocation provider for a best-effort sample. Location errors are the one
// kind absorbed locally: availability of the SOS path outweighs completeness
// of location data, so failure degrades to a nil coordinate.
func (s *Service) resolvePosition(ctx context.Context, supplied *model.Coordinate) *model.Coordinate {
	if supplied != nil {
		return supplied
	}
	pos, err := s.geo.CurrentPosition(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrLocationUnavailable) {
			s.log.WithError(err).Warn("geolocation provider failed")
		}
		return nil
	}
	return &pos
}
