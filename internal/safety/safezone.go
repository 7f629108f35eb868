package safety

import (
	"sort"

	"github.com/safehaven/server/internal/model"
)

// FilterZones returns the zones matching the given type, ordered for
// display: verified entries first, then lexicographically by name, stable
// otherwise. An empty filter or "all" is the identity filter.
func FilterZones(zones []model.SafeZone, typeFilter string) []model.SafeZone {
	out := make([]model.SafeZone, 0, len(zones))
	for _, z := range zones {
		if typeFilter == "" || typeFilter == "all" || z.Type == typeFilter {
			out = append(out, z)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Verified != out[j].Verified {
			return out[i].Verified
		}
		return out[i].Name < out[j].Name
	})
	return out
}
