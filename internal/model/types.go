package model

import (
	"time"

	"github.com/google/uuid"
)

// Alert types.
const (
	AlertTypeSOS           = "sos"
	AlertTypeCheckInMissed = "check_in_missed"
	AlertTypeManual        = "manual"
)

// Alert statuses. Resolved and false_alarm are terminal.
const (
	AlertStatusActive     = "active"
	AlertStatusResolved   = "resolved"
	AlertStatusFalseAlarm = "false_alarm"
)

// Check-in statuses. Everything except pending is terminal.
const (
	CheckInStatusPending   = "pending"
	CheckInStatusCompleted = "completed"
	CheckInStatusMissed    = "missed"
	CheckInStatusCancelled = "cancelled"
)

// Incident report statuses. Only "submitted" is ever written by this service;
// the later stages belong to an external reviewing authority.
const (
	ReportStatusSubmitted   = "submitted"
	ReportStatusUnderReview = "under_review"
	ReportStatusResolved    = "resolved"
)

// Safe zone types.
const (
	SafeZonePolice          = "police"
	SafeZoneHospital        = "hospital"
	SafeZoneShelter         = "shelter"
	SafeZoneCommunityCenter = "community_center"
)

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Profile holds the per-user attributes owned by the identity provider plus
// the single profile-level emergency contact used as notification fallback.
type Profile struct {
	ID                    uuid.UUID
	FullName              string
	PhoneNumber           *string
	EmergencyContactName  *string
	EmergencyContactPhone *string
	AvatarURL             *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// TrustedContact belongs to exactly one user. Inactive contacts stay visible
// to their owner but are excluded from notification fan-out.
type TrustedContact struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	ContactName  string
	ContactPhone string
	ContactEmail *string
	Relationship *string
	IsActive     bool
	CreatedAt    time.Time
}

// EmergencyAlert is append-mostly: after creation only Status and ResolvedAt
// ever change.
type EmergencyAlert struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	Latitude            *float64
	Longitude           *float64
	LocationDescription *string
	AlertType           string
	Status              string
	Notes               *string
	ResolvedAt          *time.Time
	CreatedAt           time.Time
}

// CheckIn is a destination check-in with a time-based expectation window.
type CheckIn struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Destination     string
	ExpectedArrival time.Time
	CheckInTime     *time.Time
	Status          string
	Latitude        *float64
	Longitude       *float64
	CreatedAt       time.Time
}

// IncidentReport may be anonymous, in which case UserID is nil and the
// ownership link is permanently absent from the stored record.
type IncidentReport struct {
	ID                  uuid.UUID
	UserID              *uuid.UUID
	IncidentType        string
	Description         string
	Latitude            *float64
	Longitude           *float64
	LocationDescription string
	IncidentDate        time.Time
	IsAnonymous         bool
	Status              string
	CreatedAt           time.Time
}

// SafeZone is a community directory entry; read-only from this service.
type SafeZone struct {
	ID             uuid.UUID
	Name           string
	Type           string
	Address        string
	Latitude       float64
	Longitude      float64
	PhoneNumber    *string
	OperatingHours *string
	Verified       bool
	CreatedBy      *uuid.UUID
	CreatedAt      time.Time
}
