package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/safehaven/server/internal/model"
)

// ReportRepo defines the incident report ledger operations. Status advances
// past "submitted" only through an external reviewing authority; this
// service never writes those transitions.
type ReportRepo interface {
	Insert(ctx context.Context, r model.IncidentReport) error
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.IncidentReport, error)
}

type reportRepo struct {
	db *sql.DB
}

// NewReportRepo creates a new ReportRepo instance
func NewReportRepo(db *sql.DB) ReportRepo {
	return &reportRepo{db: db}
}

// Insert stores a new incident report. For anonymous reports UserID is nil
// and the column is written as NULL; the ownership link is gone for good.
func (r *reportRepo) Insert(ctx context.Context, report model.IncidentReport) error {
	var userID *string
	if report.UserID != nil {
		s := report.UserID.String()
		userID = &s
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO incident_reports (id, user_id, incident_type, description, latitude, longitude, location_description, incident_date, is_anonymous, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, report.ID.String(), userID, report.IncidentType, report.Description, report.Latitude, report.Longitude,
		report.LocationDescription, report.IncidentDate, report.IsAnonymous, report.Status, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert incident report: %w", err)
	}
	return nil
}

// ListForUser returns only reports owned by the user, newest first. Anonymous
// reports the user submitted are not retrievable here: their owner column is
// NULL, so the user_id match can never select them. Intentional, not a bug.
func (r *reportRepo) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.IncidentReport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, incident_type, description, latitude, longitude, location_description, incident_date, is_anonymous, status, created_at
		FROM incident_reports
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("list incident reports: %w", err)
	}
	defer rows.Close()

	var reports []model.IncidentReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incident reports: %w", err)
	}
	return reports, nil
}

func scanReport(rows *sql.Rows) (model.IncidentReport, error) {
	var report model.IncidentReport
	var idStr string
	var userIDStr sql.NullString
	var lat, lng sql.NullFloat64
	err := rows.Scan(&idStr, &userIDStr, &report.IncidentType, &report.Description, &lat, &lng,
		&report.LocationDescription, &report.IncidentDate, &report.IsAnonymous, &report.Status, &report.CreatedAt)
	if err != nil {
		return model.IncidentReport{}, fmt.Errorf("scan incident report: %w", err)
	}
	if report.ID, err = uuid.Parse(idStr); err != nil {
		return model.IncidentReport{}, fmt.Errorf("parse report ID: %w", err)
	}
	if userIDStr.Valid {
		owner, err := uuid.Parse(userIDStr.String)
		if err != nil {
			return model.IncidentReport{}, fmt.Errorf("parse report user ID: %w", err)
		}
		report.UserID = &owner
	}
	if lat.Valid {
		report.Latitude = &lat.Float64
	}
	if lng.Valid {
		report.Longitude = &lng.Float64
	}
	return report, nil
}
