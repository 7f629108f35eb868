package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/safehaven/server/internal/middleware"
	"github.com/safehaven/server/internal/model"
	"github.com/safehaven/server/internal/safety"
)

// CheckInHandler handles safety check-in endpoints
type CheckInHandler struct {
	service *safety.Service
	log     *logrus.Logger
}

// NewCheckInHandler creates a new check-in handler
func NewCheckInHandler(service *safety.Service, log *logrus.Logger) *CheckInHandler {
	return &CheckInHandler{service: service, log: log}
}

// createCheckInRequest is the request body for POST /check_ins
type createCheckInRequest struct {
	Destination     string   `json:"destination"`
	DurationMinutes int      `json:"duration_minutes"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
}

// checkInResponse is the check-in object in API responses
type checkInResponse struct {
	ID              string     `json:"id"`
	Destination     string     `json:"destination"`
	ExpectedArrival time.Time  `json:"expected_arrival"`
	CheckInTime     *time.Time `json:"check_in_time,omitempty"`
	Status          string     `json:"status"`
	Latitude        *float64   `json:"latitude,omitempty"`
	Longitude       *float64   `json:"longitude,omitempty"`
	Overdue         bool       `json:"overdue"`
	CreatedAt       time.Time  `json:"created_at"`
}

// HandleCreate handles POST /check_ins
func (h *CheckInHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createCheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	checkIn, err := h.service.CreateCheckIn(
		r.Context(),
		userID,
		req.Destination,
		time.Duration(req.DurationMinutes)*time.Minute,
		coordinateFrom(req.Latitude, req.Longitude),
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]checkInResponse{"check_in": toCheckInResponse(checkIn, time.Now())})
}

// HandleList handles GET /check_ins
func (h *CheckInHandler) HandleList(w http.ResponseWriter, r *http.Request) {
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

	checkIns, err := h.service.ListCheckIns(r.Context(), userID, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	now := time.Now()
	responses := make([]checkInResponse, 0, len(checkIns))
	for _, c := range checkIns {
		responses = append(responses, toCheckInResponse(c, now))
	}
	respondJSON(w, http.StatusOK, map[string][]checkInResponse{"check_ins": responses})
}

// HandleComplete handles POST /check_ins/{id}/complete
func (h *CheckInHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	h.terminate(w, r, model.CheckInStatusCompleted)
}

// HandleCancel handles POST /check_ins/{id}/cancel
func (h *CheckInHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	h.terminate(w, r, model.CheckInStatusCancelled)
}

func (h *CheckInHandler) terminate(w http.ResponseWriter, r *http.Request, toStatus string) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	checkInID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid check-in id")
		return
	}

	var checkIn model.CheckIn
	if toStatus == model.CheckInStatusCompleted {
		checkIn, err = h.service.CompleteCheckIn(r.Context(), userID, checkInID)
	} else {
		checkIn, err = h.service.CancelCheckIn(r.Context(), userID, checkInID)
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]checkInResponse{"check_in": toCheckInResponse(checkIn, time.Now())})
}

func toCheckInResponse(c model.CheckIn, now time.Time) checkInResponse {
	return checkInResponse{
		ID:              c.ID.String(),
		Destination:     c.Destination,
		ExpectedArrival: c.ExpectedArrival,
		CheckInTime:     c.CheckInTime,
		Status:          c.Status,
		Latitude:        c.Latitude,
		Longitude:       c.Longitude,
		Overdue:         safety.IsOverdue(c, now),
		CreatedAt:       c.CreatedAt,
	}
}
