package safety

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/safehaven/server/internal/common"
	"github.com/safehaven/server/internal/model"
)

// ReportInput carries the caller-supplied fields of an incident report.
type ReportInput struct {
	IncidentType        string
	Description         string
	LocationDescription string
	IncidentDate        time.Time
	Coordinate          *model.Coordinate
	IsAnonymous         bool
}

// NewIncidentReport validates input and builds a report in submitted status.
// When the submission is anonymous the owner reference is omitted entirely,
// not merely hidden: no later code path can recover the submitter's identity
// from the stored record. The incident date is accepted without range
// validation; past incidents are reportable.
func NewIncidentReport(userID uuid.UUID, in ReportInput, now time.Time) (model.IncidentReport, error) {
	in.IncidentType = strings.TrimSpace(in.IncidentType)
	in.Description = strings.TrimSpace(in.Description)
	in.LocationDescription = strings.TrimSpace(in.LocationDescription)

	if in.IncidentType == "" {
		return model.IncidentReport{}, common.Validationf("incident_type is required")
	}
	if in.Description == "" {
		return model.IncidentReport{}, common.Validationf("description is required")
	}
	if in.LocationDescription == "" {
		return model.IncidentReport{}, common.Validationf("location_description is required")
	}
	if in.IncidentDate.IsZero() {
		return model.IncidentReport{}, common.Validationf("incident_date is required")
	}

	r := model.IncidentReport{
		ID:                  uuid.New(),
		IncidentType:        in.IncidentType,
		Description:         in.Description,
		LocationDescription: in.LocationDescription,
		IncidentDate:        in.IncidentDate.UTC(),
		IsAnonymous:         in.IsAnonymous,
		Status:              model.ReportStatusSubmitted,
		CreatedAt:           now.UTC(),
	}
	if !in.IsAnonymous {
		owner := userID
		r.UserID = &owner
	}
	if in.Coordinate != nil {
		lat, lng := in.Coordinate.Latitude, in.Coordinate.Longitude
		r.Latitude = &lat
		r.Longitude = &lng
	}
	return r, nil
}
