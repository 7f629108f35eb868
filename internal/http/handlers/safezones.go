package handlers

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/safehaven/server/internal/model"
	"github.com/safehaven/server/internal/safety"
)

// SafeZoneHandler handles the safe zone directory endpoint
type SafeZoneHandler struct {
	service *safety.Service
	log     *logrus.Logger
}

// NewSafeZoneHandler creates a new safe zone handler
func NewSafeZoneHandler(service *safety.Service, log *logrus.Logger) *SafeZoneHandler {
	return &SafeZoneHandler{service: service, log: log}
}

// safeZoneResponse is the directory entry in API responses
type safeZoneResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Address        string    `json:"address"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	PhoneNumber    *string   `json:"phone_number,omitempty"`
	OperatingHours *string   `json:"operating_hours,omitempty"`
	Verified       bool      `json:"verified"`
	CreatedAt      time.Time `json:"created_at"`
}

// HandleList handles GET /safe_zones. The optional "type" query parameter
// filters by exact zone type; absent or "all" returns everything.
func (h *SafeZoneHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	zones, err := h.service.SafeZones(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	responses := make([]safeZoneResponse, 0, len(zones))
	for _, z := range zones {
		responses = append(responses, toSafeZoneResponse(z))
	}
	respondJSON(w, http.StatusOK, map[string][]safeZoneResponse{"safe_zones": responses})
}

func toSafeZoneResponse(z model.SafeZone) safeZoneResponse {
	return safeZoneResponse{
		ID:             z.ID.String(),
		Name:           z.Name,
		Type:           z.Type,
		Address:        z.Address,
		Latitude:       z.Latitude,
		Longitude:      z.Longitude,
		PhoneNumber:    z.PhoneNumber,
		OperatingHours: z.OperatingHours,
		Verified:       z.Verified,
		CreatedAt:      z.CreatedAt,
	}
}
