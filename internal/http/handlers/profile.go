package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/safehaven/server/internal/common"
	"github.com/safehaven/server/internal/middleware"
	"github.com/safehaven/server/internal/model"
	"github.com/safehaven/server/internal/safety"
)

// ProfileHandler handles the user profile endpoints
type ProfileHandler struct {
	service *safety.Service
	log     *logrus.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(service *safety.Service, log *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{service: service, log: log}
}

// profileRequest is the request body for PUT /me
type profileRequest struct {
	FullName              string  `json:"full_name"`
	PhoneNumber           *string `json:"phone_number"`
	EmergencyContactName  *string `json:"emergency_contact_name"`
	EmergencyContactPhone *string `json:"emergency_contact_phone"`
	AvatarURL             *string `json:"avatar_url"`
}

// profileResponse is the profile object in API responses
type profileResponse struct {
	ID                    string  `json:"id"`
	FullName              string  `json:"full_name"`
	PhoneNumber           *string `json:"phone_number,omitempty"`
	EmergencyContactName  *string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string `json:"emergency_contact_phone,omitempty"`
	AvatarURL             *string `json:"avatar_url,omitempty"`
}

// HandleGet handles GET /me
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "profile not set up yet")
			return
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]profileResponse{"profile": toProfileResponse(profile)})
}

// HandleSave handles PUT /me
func (h *ProfileHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile := model.Profile{
		ID:                    userID,
		FullName:              req.FullName,
		PhoneNumber:           req.PhoneNumber,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		AvatarURL:             req.AvatarURL,
	}
	if err := h.service.SaveProfile(r.Context(), profile); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]profileResponse{"profile": toProfileResponse(profile)})
}

func toProfileResponse(p model.Profile) profileResponse {
	return profileResponse{
		ID:                    p.ID.String(),
		FullName:              p.FullName,
		PhoneNumber:           p.PhoneNumber,
		EmergencyContactName:  p.EmergencyContactName,
		EmergencyContactPhone: p.EmergencyContactPhone,
		AvatarURL:             p.AvatarURL,
	}
}
