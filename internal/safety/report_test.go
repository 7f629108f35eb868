package safety

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/safehaven/server/internal/common"
	"github.com/safehaven/server/internal/model"
)

func validReportInput() ReportInput {
	return ReportInput{
		IncidentType:        "harassment",
		Description:         "followed for several blocks",
		LocationDescription: "5th and Main",
		IncidentDate:        time.Date(2026, 2, 27, 22, 0, 0, 0, time.UTC),
	}
}

func TestNewIncidentReport_identified(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()

	r, err := NewIncidentReport(userID, validReportInput(), now)
	if err != nil {
		t.Fatalf("creating report: %v", err)
	}
	if r.UserID == nil || *r.UserID != userID {
		t.Errorf("user id = %v, want %s", r.UserID, userID)
	}
	if r.IsAnonymous {
		t.Error("report should not be anonymous")
	}
	if r.Status != model.ReportStatusSubmitted {
		t.Errorf("status = %q, want submitted", r.Status)
	}
}

func TestNewIncidentReport_anonymousOmitsOwner(t *testing.T) {
	in := validReportInput()
	in.IsAnonymous = true

	r, err := NewIncidentReport(uuid.New(), in, time.Now())
	if err != nil {
		t.Fatalf("creating anonymous report: %v", err)
	}
	if r.UserID != nil {
		t.Error("anonymous report must not carry an owner reference")
	}
	if !r.IsAnonymous {
		t.Error("anonymous flag should be preserved")
	}
}

func TestNewIncidentReport_pastDateAccepted(t *testing.T) {
	in := validReportInput()
	in.IncidentDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := NewIncidentReport(uuid.New(), in, time.Now()); err != nil {
		t.Errorf("past incident date should be accepted: %v", err)
	}
}

func TestNewIncidentReport_validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ReportInput)
	}{
		{"missing type", func(in *ReportInput) { in.IncidentType = "  " }},
		{"missing description", func(in *ReportInput) { in.Description = "" }},
		{"missing location", func(in *ReportInput) { in.LocationDescription = "" }},
		{"missing date", func(in *ReportInput) { in.IncidentDate = time.Time{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validReportInput()
			tc.mutate(&in)
			if _, err := NewIncidentReport(uuid.New(), in, time.Now()); !errors.Is(err, common.ErrValidation) {
				t.Errorf("got %v, want ErrValidation", err)
			}
		})
	}
}
