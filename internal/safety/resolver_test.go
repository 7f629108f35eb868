package safety

import (
	"testing"

	"github.com/google/uuid"
	"github.com/safehaven/server/internal/model"
)

func contact(name string, active bool) model.TrustedContact {
	return model.TrustedContact{
		ID:           uuid.New(),
		ContactName:  name,
		ContactPhone: "+1555" + name,
		IsActive:     active,
	}
}

func TestResolveFanout_activeContacts(t *testing.T) {
	contacts := []model.TrustedContact{
		contact("alice", true),
		contact("bob", false),
		contact("carol", true),
	}
	phone := "+15550000"
	profile := &model.Profile{EmergencyContactPhone: &phone}

	f := ResolveFanout(profile, contacts)
	if f.Mode != FanoutContacts {
		t.Fatalf("mode = %q, want contacts", f.Mode)
	}
	if len(f.Contacts) != 2 {
		t.Fatalf("recipients = %d, want 2", len(f.Contacts))
	}
	// Inactive contacts are skipped, order otherwise preserved.
	if f.Contacts[0].ContactName != "alice" || f.Contacts[1].ContactName != "carol" {
		t.Errorf("recipients = %q, %q", f.Contacts[0].ContactName, f.Contacts[1].ContactName)
	}
	if f.Fallback != nil {
		t.Error("fallback should not be set when contacts are eligible")
	}
}

func TestResolveFanout_fallbackWhenNoneActive(t *testing.T) {
	contacts := []model.TrustedContact{contact("bob", false)}
	name := "Mum"
	phone := "+15551234"
	profile := &model.Profile{EmergencyContactName: &name, EmergencyContactPhone: &phone}

	f := ResolveFanout(profile, contacts)
	if f.Mode != FanoutFallback {
		t.Fatalf("mode = %q, want fallback", f.Mode)
	}
	if f.Fallback == nil || f.Fallback.Phone != phone || f.Fallback.Name != name {
		t.Errorf("fallback = %+v", f.Fallback)
	}
	if len(f.Contacts) != 0 {
		t.Error("no contact recipients expected in fallback mode")
	}
}

func TestResolveFanout_none(t *testing.T) {
	if f := ResolveFanout(nil, nil); f.Mode != FanoutNone {
		t.Errorf("no profile, no contacts: mode = %q, want none", f.Mode)
	}

	empty := ""
	profile := &model.Profile{EmergencyContactPhone: &empty}
	if f := ResolveFanout(profile, nil); f.Mode != FanoutNone {
		t.Errorf("empty fallback phone: mode = %q, want none", f.Mode)
	}

	profile = &model.Profile{}
	if f := ResolveFanout(profile, []model.TrustedContact{contact("bob", false)}); f.Mode != FanoutNone {
		t.Errorf("inactive contacts, no fallback: mode = %q, want none", f.Mode)
	}
}
