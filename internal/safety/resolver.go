package safety

import "github.com/safehaven/server/internal/model"

// FanoutMode distinguishes how notification recipients were chosen, so
// callers can tell "fan-out to N trusted contacts" from "fell back to the
// profile emergency contact" from "no contact available at all".
type FanoutMode string

const (
	FanoutContacts FanoutMode = "contacts"
	FanoutFallback FanoutMode = "fallback"
	FanoutNone     FanoutMode = "none"
)

// FallbackContact is the single profile-level emergency contact.
type FallbackContact struct {
	Name  string
	Phone string
}

// Fanout is the computed recipient set for an alert notification. Transport
// is external; this is eligibility only.
type Fanout struct {
	Mode     FanoutMode
	Contacts []model.TrustedContact
	Fallback *FallbackContact
}

// ResolveFanout computes the notification recipients for a user: the active
// trusted contacts in the given order (most recently added first, mirroring
// the directory listing). When none are active, the profile emergency
// contact is the designated fallback. An empty result is not an error;
// activation proceeds and the degraded outcome is surfaced to the caller.
func ResolveFanout(profile *model.Profile, contacts []model.TrustedContact) Fanout {
	eligible := make([]model.TrustedContact, 0, len(contacts))
	for _, c := range contacts {
		if c.IsActive {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) > 0 {
		return Fanout{Mode: FanoutContacts, Contacts: eligible}
	}
	if profile != nil && profile.EmergencyContactPhone != nil && *profile.EmergencyContactPhone != "" {
		fb := &FallbackContact{Phone: *profile.EmergencyContactPhone}
		if profile.EmergencyContactName != nil {
			fb.Name = *profile.EmergencyContactName
		}
		return Fanout{Mode: FanoutFallback, Fallback: fb}
	}
	return Fanout{Mode: FanoutNone}
}
