package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/safehaven/server/internal/common"
	"github.com/safehaven/server/internal/middleware"
	"github.com/safehaven/server/internal/model"
	"github.com/safehaven/server/internal/safety"
)

// AlertHandler handles emergency alert endpoints
type AlertHandler struct {
	service *safety.Service
	log     *logrus.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(service *safety.Service, log *logrus.Logger) *AlertHandler {
	return &AlertHandler{service: service, log: log}
}

// activateRequest is the request body for POST /alerts/activate
type activateRequest struct {
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
	LocationDescription *string  `json:"location_description"`
}

// alertResponse is the alert object in API responses
type alertResponse struct {
	ID                  string     `json:"id"`
	Latitude            *float64   `json:"latitude,omitempty"`
	Longitude           *float64   `json:"longitude,omitempty"`
	LocationDescription *string    `json:"location_description,omitempty"`
	AlertType           string     `json:"alert_type"`
	Status              string     `json:"status"`
	Notes               *string    `json:"notes,omitempty"`
	ResolvedAt          *time.Time `json:"resolved_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// notificationResponse reports who is eligible to be notified. Delivery is
// out of scope; the mode tells the client whether fan-out was degraded.
type notificationResponse struct {
	Mode     string            `json:"mode"`
	Contacts []contactResponse `json:"contacts,omitempty"`
	Fallback *fallbackResponse `json:"fallback,omitempty"`
}

type fallbackResponse struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone"`
}

// activateResponse is the JSON response for activate
type activateResponse struct {
	Alert        alertResponse        `json:"alert"`
	Notification notificationResponse `json:"notification"`
}

// HandleActivate handles POST /alerts/activate
func (h *AlertHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// An empty body is fine: the coordinate is best-effort.
	var req activateRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	activation, err := h.service.ActivateSOS(r.Context(), userID, coordinateFrom(req.Latitude, req.Longitude), req.LocationDescription)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			respondWithError(w, http.StatusConflict, "an active alert already exists")
			return
		}
		h.log.WithError(err).Error("alert activation failed")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, activateResponse{
		Alert:        toAlertResponse(activation.Alert),
		Notification: toNotificationResponse(activation.Fanout),
	})
}

// HandleResolve handles POST /alerts/{id}/resolve
func (h *AlertHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	h.terminate(w, r, model.AlertStatusResolved)
}

// HandleFalseAlarm handles POST /alerts/{id}/false_alarm
func (h *AlertHandler) HandleFalseAlarm(w http.ResponseWriter, r *http.Request) {
	h.terminate(w, r, model.AlertStatusFalseAlarm)
}

func (h *AlertHandler) terminate(w http.ResponseWriter, r *http.Request, toStatus string) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	alertID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	var alert model.EmergencyAlert
	if toStatus == model.AlertStatusResolved {
		alert, err = h.service.ResolveActiveAlert(r.Context(), userID, alertID)
	} else {
		alert, err = h.service.MarkAlertFalseAlarm(r.Context(), userID, alertID)
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]alertResponse{"alert": toAlertResponse(alert)})
}

// HandleActive handles GET /alerts/active
func (h *AlertHandler) HandleActive(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	alert, err := h.service.ActiveAlert(r.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "no active alert")
			return
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]alertResponse{"alert": toAlertResponse(alert)})
}

func toAlertResponse(a model.EmergencyAlert) alertResponse {
	return alertResponse{
		ID:                  a.ID.String(),
		Latitude:            a.Latitude,
		Longitude:           a.Longitude,
		LocationDescription: a.LocationDescription,
		AlertType:           a.AlertType,
		Status:              a.Status,
		Notes:               a.Notes,
		ResolvedAt:          a.ResolvedAt,
		CreatedAt:           a.CreatedAt,
	}
}

func toNotificationResponse(f safety.Fanout) notificationResponse {
	resp := notificationResponse{Mode: string(f.Mode)}
	for _, c := range f.Contacts {
		resp.Contacts = append(resp.Contacts, toContactResponse(c))
	}
	if f.Fallback != nil {
		resp.Fallback = &fallbackResponse{Name: f.Fallback.Name, Phone: f.Fallback.Phone}
	}
	return resp
}

// coordinateFrom builds a coordinate only when both halves are present.
func coordinateFrom(lat, lng *float64) *model.Coordinate {
	if lat == nil || lng == nil {
		return nil
	}
	return &model.Coordinate{Latitude: *lat, Longitude: *lng}
}
