package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/safehaven/server/internal/middleware"
	"github.com/safehaven/server/internal/model"
	"github.com/safehaven/server/internal/safety"
)

// ReportHandler handles incident report endpoints
type ReportHandler struct {
	service   *safety.Service
	log       *logrus.Logger
	ipLimiter *middleware.RateLimiter
}

// NewReportHandler creates a new report handler. Submission is IP
// rate-limited as abuse control; the SOS path is deliberately not.
func NewReportHandler(service *safety.Service, log *logrus.Logger) *ReportHandler {
	return &ReportHandler{
		service:   service,
		log:       log,
		ipLimiter: middleware.NewRateLimiter(10*time.Minute, 20),
	}
}

// submitReportRequest is the request body for POST /reports
type submitReportRequest struct {
	IncidentType        string    `json:"incident_type"`
	Description         string    `json:"description"`
	LocationDescription string    `json:"location_description"`
	IncidentDate        time.Time `json:"incident_date"`
	Latitude            *float64  `json:"latitude"`
	Longitude           *float64  `json:"longitude"`
	IsAnonymous         bool      `json:"is_anonymous"`
}

// reportResponse is the report object in API responses. The owner id is
// never echoed: the caller already knows who they are, and anonymous
// records have none.
type reportResponse struct {
	ID                  string    `json:"id"`
	IncidentType        string    `json:"incident_type"`
	Description         string    `json:"description"`
	Latitude            *float64  `json:"latitude,omitempty"`
	Longitude           *float64  `json:"longitude,omitempty"`
	LocationDescription string    `json:"location_description"`
	IncidentDate        time.Time `json:"incident_date"`
	IsAnonymous         bool      `json:"is_anonymous"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"created_at"`
}

// HandleSubmit handles POST /reports
func (h *ReportHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if !h.ipLimiter.Allow(middleware.GetIPKey(r)) {
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var req submitReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.service.SubmitReport(r.Context(), userID, safety.ReportInput{
		IncidentType:        req.IncidentType,
		Description:         req.Description,
		LocationDescription: req.LocationDescription,
		IncidentDate:        req.IncidentDate,
		Coordinate:          coordinateFrom(req.Latitude, req.Longitude),
		IsAnonymous:         req.IsAnonymous,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]reportResponse{"report": toReportResponse(report)})
}

// HandleList handles GET /reports
func (h *ReportHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondWithError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	reports, err := h.service.ListReports(r.Context(), userID, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	responses := make([]reportResponse, 0, len(reports))
	for _, report := range reports {
		responses = append(responses, toReportResponse(report))
	}
	respondJSON(w, http.StatusOK, map[string][]reportResponse{"reports": responses})
}

func toReportResponse(report model.IncidentReport) reportResponse {
	return reportResponse{
		ID:                  report.ID.String(),
		IncidentType:        report.IncidentType,
		Description:         report.Description,
		Latitude:            report.Latitude,
		Longitude:           report.Longitude,
		LocationDescription: report.LocationDescription,
		IncidentDate:        report.IncidentDate,
		IsAnonymous:         report.IsAnonymous,
		Status:              report.Status,
		CreatedAt:           report.CreatedAt,
	}
}
