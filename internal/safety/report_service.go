package safety

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/safehaven/server/internal/model"
)

const (
	defaultReportLimit = 20
	maxReportLimit     = 100
)

// SubmitReport files an incident report. For anonymous submissions the
// stored record carries no owner reference at all, so the submitter cannot
// retrieve it afterwards either; see ListReports.
func (s *Service) SubmitReport(ctx context.Context, userID uuid.UUID, in ReportInput) (model.IncidentReport, error) {
	report, err := NewIncidentReport(userID, in, s.now())
	if err != nil {
		return model.IncidentReport{}, err
	}
	if err := s.reports.Insert(ctx, report); err != nil {
		return model.IncidentReport{}, err
	}

	s.log.WithFields(logrus.Fields{
		"report_id":     report.ID,
		"incident_type": report.IncidentType,
		"anonymous":     report.IsAnonymous,
	}).Info("incident report submitted")
	return report, nil
}

// ListReports returns the reports owned by the user, newest first. Anonymous
// reports are excluded by construction: their owner column is NULL.
func (s *Service) ListReports(ctx context.Context, userID uuid.UUID, limit int) ([]model.IncidentReport, error) {
	if limit <= 0 {
		limit = defaultReportLimit
	}
	if limit > maxReportLimit {
		limit = maxReportLimit
	}
	return s.reports.ListForUser(ctx, userID, limit)
}
