package safety

import (
	"testing"

	"github.com/google/uuid"
	"github.com/safehaven/server/internal/model"
)

func zone(name, zoneType string, verified bool) model.SafeZone {
	return model.SafeZone{ID: uuid.New(), Name: name, Type: zoneType, Verified: verified}
}

func TestFilterZones_byType(t *testing.T) {
	zones := []model.SafeZone{
		zone("Mercy Hospital", model.SafeZoneHospital, true),
		zone("12th Precinct", model.SafeZonePolice, true),
		zone("Harbor Shelter", model.SafeZoneShelter, false),
	}

	got := FilterZones(zones, model.SafeZonePolice)
	if len(got) != 1 || got[0].Name != "12th Precinct" {
		t.Errorf("police filter returned %d zones", len(got))
	}

	if got := FilterZones(zones, "library"); len(got) != 0 {
		t.Errorf("unknown type should match nothing, got %d", len(got))
	}
}

func TestFilterZones_allAndEmptyAreIdentity(t *testing.T) {
	zones := []model.SafeZone{
		zone("B", model.SafeZoneHospital, false),
		zone("A", model.SafeZonePolice, false),
	}
	if got := FilterZones(zones, ""); len(got) != 2 {
		t.Errorf("empty filter returned %d zones, want 2", len(got))
	}
	if got := FilterZones(zones, "all"); len(got) != 2 {
		t.Errorf("all filter returned %d zones, want 2", len(got))
	}
}

func TestFilterZones_ordering(t *testing.T) {
	zones := []model.SafeZone{
		zone("Zeta Shelter", model.SafeZoneShelter, false),
		zone("Beta Clinic", model.SafeZoneHospital, true),
		zone("Alpha Shelter", model.SafeZoneShelter, false),
		zone("Delta Precinct", model.SafeZonePolice, true),
	}

	got := FilterZones(zones, "")
	want := []string{"Beta Clinic", "Delta Precinct", "Alpha Shelter", "Zeta Shelter"}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("position %d = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestFilterZones_doesNotMutateInput(t *testing.T) {
	zones := []model.SafeZone{
		zone("B", model.SafeZoneShelter, false),
		zone("A", model.SafeZoneShelter, true),
	}
	FilterZones(zones, "")
	if zones[0].Name != "B" {
		t.Error("input slice order should be preserved")
	}
}
