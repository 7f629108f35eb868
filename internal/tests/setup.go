// Package tests exercises the HTTP surface end to end: router, auth
// middleware, handlers, and service, over in-memory stores that keep the
// same conditional write semantics as the SQL repositories.
package tests

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/safehaven/server/internal/auth"
	"github.com/safehaven/server/internal/common"
	"github.com/safehaven/server/internal/geo"
	httphandler "github.com/safehaven/server/internal/http"
	"github.com/safehaven/server/internal/http/handlers"
	"github.com/safehaven/server/internal/model"
	"github.com/safehaven/server/internal/safety"
)

const testJWTSecret = "test-jwt-secret-at-least-32-characters-long"

type memStore struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]model.Profile
	contacts []model.TrustedContact
	alerts   map[uuid.UUID]model.EmergencyAlert
	checkIns map[uuid.UUID]model.CheckIn
	reports  []model.IncidentReport
	zones    []model.SafeZone
}

func newMemStore() *memStore {
	return &memStore{
		profiles: make(map[uuid.UUID]model.Profile),
		alerts:   make(map[uuid.UUID]model.EmergencyAlert),
		checkIns: make(map[uuid.UUID]model.CheckIn),
	}
}

// Profile repo.

type memProfiles struct{ s *memStore }

func (m memProfiles) Get(_ context.Context, id uuid.UUID) (model.Profile, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.profiles[id]
	if !ok {
		return model.Profile{}, common.ErrNotFound
	}
	return p, nil
}

func (m memProfiles) Upsert(_ context.Context, p model.Profile) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.profiles[p.ID] = p
	return nil
}

// Contact repo.

type memContacts struct{ s *memStore }

func (m memContacts) Create(_ context.Context, c model.TrustedContact) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.contacts = append([]model.TrustedContact{c}, m.s.contacts...)
	return nil
}

func (m memContacts) ListForUser(_ context.Context, userID uuid.UUID) ([]model.TrustedContact, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.TrustedContact
	for _, c := range m.s.contacts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m memContacts) SetActive(_ context.Context, id, userID uuid.UUID, active bool) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i, c := range m.s.contacts {
		if c.ID == id && c.UserID == userID {
			m.s.contacts[i].IsActive = active
			return nil
		}
	}
	return common.ErrNotFound
}

func (m memContacts) Delete(_ context.Context, id, userID uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i, c := range m.s.contacts {
		if c.ID == id && c.UserID == userID {
			m.s.contacts = append(m.s.contacts[:i], m.s.contacts[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

// Alert repo with the conditional insert and compare-and-swap semantics.

type memAlerts struct{ s *memStore }

func (m memAlerts) InsertActive(_ context.Context, a model.EmergencyAlert) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.alerts {
		if existing.UserID == a.UserID && existing.Status == model.AlertStatusActive {
			return common.ErrConflict
		}
	}
	m.s.alerts[a.ID] = a
	return nil
}

func (m memAlerts) FindActive(_ context.Context, userID uuid.UUID) (model.EmergencyAlert, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, a := range m.s.alerts {
		if a.UserID == userID && a.Status == model.AlertStatusActive {
			return a, nil
		}
	}
	return model.EmergencyAlert{}, common.ErrNotFound
}

func (m memAlerts) GetByID(_ context.Context, id, userID uuid.UUID) (model.EmergencyAlert, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.alerts[id]
	if !ok || a.UserID != userID {
		return model.EmergencyAlert{}, common.ErrNotFound
	}
	return a, nil
}

func (m memAlerts) TerminateActive(_ context.Context, id, userID uuid.UUID, toStatus string, resolvedAt time.Time) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.alerts[id]
	if !ok || a.UserID != userID {
		return common.ErrNotFound
	}
	if a.Status != model.AlertStatusActive {
		return common.ErrInvalidState
	}
	a.Status = toStatus
	a.ResolvedAt = &resolvedAt
	m.s.alerts[id] = a
	return nil
}

// Check-in repo.

type memCheckIns struct{ s *memStore }

func (m memCheckIns) Insert(_ context.Context, c model.CheckIn) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.checkIns[c.ID] = c
	return nil
}

func (m memCheckIns) GetByID(_ context.Context, id, userID uuid.UUID) (model.CheckIn, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.checkIns[id]
	if !ok || c.UserID != userID {
		return model.CheckIn{}, common.ErrNotFound
	}
	return c, nil
}

func (m memCheckIns) ListForUser(_ context.Context, userID uuid.UUID, limit int) ([]model.CheckIn, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.CheckIn
	for _, c := range m.s.checkIns {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m memCheckIns) ListOverduePending(_ context.Context, now time.Time, limit int) ([]model.CheckIn, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.CheckIn
	for _, c := range m.s.checkIns {
		if c.Status == model.CheckInStatusPending && now.After(c.ExpectedArrival) {
			out = append(out, c)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m memCheckIns) Terminate(_ context.Context, id, userID uuid.UUID, toStatus string, checkInTime *time.Time) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.checkIns[id]
	if !ok || c.UserID != userID {
		return common.ErrNotFound
	}
	if c.Status != model.CheckInStatusPending {
		return common.ErrInvalidState
	}
	c.Status = toStatus
	c.CheckInTime = checkInTime
	m.s.checkIns[id] = c
	return nil
}

// Report repo.

type memReports struct{ s *memStore }

func (m memReports) Insert(_ context.Context, r model.IncidentReport) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.reports = append(m.s.reports, r)
	return nil
}

func (m memReports) ListForUser(_ context.Context, userID uuid.UUID, limit int) ([]model.IncidentReport, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.IncidentReport
	for _, r := range m.s.reports {
		if r.UserID != nil && *r.UserID == userID {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Safe zone repo.

type memZones struct{ s *memStore }

func (m memZones) ListAll(_ context.Context) ([]model.SafeZone, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.zones, nil
}

// apiEnv is a running API instance over in-memory stores.
type apiEnv struct {
	Server  *httptest.Server
	JWT     *auth.JWTService
	Store   *memStore
	Service *safety.Service
}

func newAPIEnv() *apiEnv {
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := newMemStore()
	service := safety.NewService(
		memProfiles{store}, memContacts{store}, memAlerts{store},
		memCheckIns{store}, memReports{store}, memZones{store},
		&geo.UnavailableProvider{}, log,
	)

	jwtService := auth.NewJWTService(testJWTSecret)
	router := httphandler.NewRouter(httphandler.Handlers{
		Alerts:    handlers.NewAlertHandler(service, log),
		CheckIns:  handlers.NewCheckInHandler(service, log),
		Contacts:  handlers.NewContactHandler(service, log),
		Reports:   handlers.NewReportHandler(service, log),
		SafeZones: handlers.NewSafeZoneHandler(service, log),
		Profile:   handlers.NewProfileHandler(service, log),
	}, jwtService)

	return &apiEnv{
		Server:  httptest.NewServer(router),
		JWT:     jwtService,
		Store:   store,
		Service: service,
	}
}

func (e *apiEnv) Close() { e.Server.Close() }

// Token signs a bearer token for the given user.
func (e *apiEnv) Token(userID uuid.UUID) (string, error) {
	return e.JWT.SignToken(userID, "Test User")
}
