// Package geo abstracts the geolocation collaborator. Acquisition is a
// single best-effort sample: a provider either returns a coordinate promptly
// or reports that none is available, and callers degrade to "no coordinate"
// instead of failing the triggering action.
package geo

import (
	"context"

	"github.com/safehaven/server/internal/common"
	"github.com/safehaven/server/internal/model"
)

// Provider returns the current position or common.ErrLocationUnavailable.
type Provider interface {
	CurrentPosition(ctx context.Context) (model.Coordinate, error)
}

// StaticProvider always reports a fixed coordinate. Used in dev mode and in
// tests.
type StaticProvider struct {
	Coordinate model.Coordinate
}

func (p *StaticProvider) CurrentPosition(_ context.Context) (model.Coordinate, error) {
	return p.Coordinate, nil
}

// UnavailableProvider reports that no position can be acquired. This is the
// production default: real positions arrive from clients with each request,
// and the server itself has no location source.
type UnavailableProvider struct{}

func (p *UnavailableProvider) CurrentPosition(_ context.Context) (model.Coordinate, error) {
	return model.Coordinate{}, common.ErrLocationUnavailable
}
