package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/safehaven/server/internal/middleware"
	"github.com/safehaven/server/internal/model"
	"github.com/safehaven/server/internal/safety"
)

// ContactHandler handles trusted contact endpoints
type ContactHandler struct {
	service *safety.Service
	log     *logrus.Logger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(service *safety.Service, log *logrus.Logger) *ContactHandler {
	return &ContactHandler{service: service, log: log}
}

// createContactRequest is the request body for POST /contacts
type createContactRequest struct {
	ContactName  string  `json:"contact_name"`
	ContactPhone string  `json:"contact_phone"`
	ContactEmail *string `json:"contact_email"`
	Relationship *string `json:"relationship"`
}

// setActiveRequest is the request body for PATCH /contacts/{id}/active
type setActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// contactResponse is the contact object in API responses
type contactResponse struct {
	ID           string    `json:"id"`
	ContactName  string    `json:"contact_name"`
	ContactPhone string    `json:"contact_phone"`
	ContactEmail *string   `json:"contact_email,omitempty"`
	Relationship *string   `json:"relationship,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// HandleCreate handles POST /contacts
func (h *ContactHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contact, err := h.service.AddContact(r.Context(), userID, safety.ContactInput{
		Name:         req.ContactName,
		Phone:        req.ContactPhone,
		Email:        req.ContactEmail,
		Relationship: req.Relationship,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]contactResponse{"contact": toContactResponse(contact)})
}

// HandleList handles GET /contacts
func (h *ContactHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	contacts, err := h.service.ListContacts(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	responses := make([]contactResponse, 0, len(contacts))
	for _, c := range contacts {
		responses = append(responses, toContactResponse(c))
	}
	respondJSON(w, http.StatusOK, map[string][]contactResponse{"contacts": responses})
}

// HandleSetActive handles PATCH /contacts/{id}/active
func (h *ContactHandler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	contactID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.SetContactActive(r.Context(), userID, contactID, req.IsActive); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"is_active": req.IsActive})
}

// HandleDelete handles DELETE /contacts/{id}
func (h *ContactHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	contactID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	if err := h.service.RemoveContact(r.Context(), userID, contactID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "contact deleted"})
}

func toContactResponse(c model.TrustedContact) contactResponse {
	return contactResponse{
		ID:           c.ID.String(),
		ContactName:  c.ContactName,
		ContactPhone: c.ContactPhone,
		ContactEmail: c.ContactEmail,
		Relationship: c.Relationship,
		IsActive:     c.IsActive,
		CreatedAt:    c.CreatedAt,
	}
}
