package safety

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safehaven/server/internal/common"
	"github.com/safehaven/server/internal/geo"
	"github.com/safehaven/server/internal/model"
)

// In-memory fakes implementing the repo interfaces with the same conditional
// write semantics as the SQL versions.

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]model.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]model.Profile)}
}

func (f *fakeProfileRepo) Get(_ context.Context, id uuid.UUID) (model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return model.Profile{}, common.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) Upsert(_ context.Context, p model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.ID] = p
	return nil
}

type fakeContactRepo struct {
	mu       sync.Mutex
	contacts []model.TrustedContact
}

func (f *fakeContactRepo) Create(_ context.Context, c model.TrustedContact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Most recently added first, matching the SQL ordering.
	f.contacts = append([]model.TrustedContact{c}, f.contacts...)
	return nil
}

func (f *fakeContactRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]model.TrustedContact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.TrustedContact
	for _, c := range f.contacts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContactRepo) SetActive(_ context.Context, id, userID uuid.UUID, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.contacts {
		if c.ID == id && c.UserID == userID {
			f.contacts[i].IsActive = active
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeContactRepo) Delete(_ context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.contacts {
		if c.ID == id && c.UserID == userID {
			f.contacts = append(f.contacts[:i], f.contacts[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

type fakeAlertRepo struct {
	mu     sync.Mutex
	alerts map[uuid.UUID]model.EmergencyAlert
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{alerts: make(map[uuid.UUID]model.EmergencyAlert)}
}

func (f *fakeAlertRepo) InsertActive(_ context.Context, a model.EmergencyAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.alerts {
		if existing.UserID == a.UserID && existing.Status == model.AlertStatusActive {
			return common.ErrConflict
		}
	}
	f.alerts[a.ID] = a
	return nil
}

func (f *fakeAlertRepo) FindActive(_ context.Context, userID uuid.UUID) (model.EmergencyAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alerts {
		if a.UserID == userID && a.Status == model.AlertStatusActive {
			return a, nil
		}
	}
	return model.EmergencyAlert{}, common.ErrNotFound
}

func (f *fakeAlertRepo) GetByID(_ context.Context, id, userID uuid.UUID) (model.EmergencyAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.alerts[id]
	if !ok || a.UserID != userID {
		return model.EmergencyAlert{}, common.ErrNotFound
	}
	return a, nil
}

func (f *fakeAlertRepo) TerminateActive(_ context.Context, id, userID uuid.UUID, toStatus string, resolvedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.alerts[id]
	if !ok || a.UserID != userID {
		return common.ErrNotFound
	}
	if a.Status != model.AlertStatusActive {
		return common.ErrInvalidState
	}
	a.Status = toStatus
	a.ResolvedAt = &resolvedAt
	f.alerts[id] = a
	return nil
}

type fakeCheckInRepo struct {
	mu       sync.Mutex
	checkIns map[uuid.UUID]model.CheckIn
}

func newFakeCheckInRepo() *fakeCheckInRepo {
	return &fakeCheckInRepo{checkIns: make(map[uuid.UUID]model.CheckIn)}
}

func (f *fakeCheckInRepo) Insert(_ context.Context, c model.CheckIn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkIns[c.ID] = c
	return nil
}

func (f *fakeCheckInRepo) GetByID(_ context.Context, id, userID uuid.UUID) (model.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.checkIns[id]
	if !ok || c.UserID != userID {
		return model.CheckIn{}, common.ErrNotFound
	}
	return c, nil
}

func (f *fakeCheckInRepo) ListForUser(_ context.Context, userID uuid.UUID, limit int) ([]model.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.CheckIn
	for _, c := range f.checkIns {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCheckInRepo) ListOverduePending(_ context.Context, now time.Time, limit int) ([]model.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.CheckIn
	for _, c := range f.checkIns {
		if c.Status == model.CheckInStatusPending && now.After(c.ExpectedArrival) {
			out = append(out, c)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCheckInRepo) Terminate(_ context.Context, id, userID uuid.UUID, toStatus string, checkInTime *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.checkIns[id]
	if !ok || c.UserID != userID {
		return common.ErrNotFound
	}
	if c.Status != model.CheckInStatusPending {
		return common.ErrInvalidState
	}
	c.Status = toStatus
	c.CheckInTime = checkInTime
	f.checkIns[id] = c
	return nil
}

type fakeReportRepo struct {
	mu      sync.Mutex
	reports []model.IncidentReport
}

func (f *fakeReportRepo) Insert(_ context.Context, r model.IncidentReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, r)
	return nil
}

func (f *fakeReportRepo) ListForUser(_ context.Context, userID uuid.UUID, limit int) ([]model.IncidentReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.IncidentReport
	for _, r := range f.reports {
		if r.UserID != nil && *r.UserID == userID {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeZoneRepo struct {
	zones []model.SafeZone
}

func (f *fakeZoneRepo) ListAll(_ context.Context) ([]model.SafeZone, error) {
	return f.zones, nil
}

type testEnv struct {
	svc      *Service
	profiles *fakeProfileRepo
	contacts *fakeContactRepo
	alerts   *fakeAlertRepo
	checkIns *fakeCheckInRepo
	reports  *fakeReportRepo
	zones    *fakeZoneRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	env := &testEnv{
		profiles: newFakeProfileRepo(),
		contacts: &fakeContactRepo{},
		alerts:   newFakeAlertRepo(),
		checkIns: newFakeCheckInRepo(),
		reports:  &fakeReportRepo{},
		zones:    &fakeZoneRepo{},
	}
	env.svc = NewService(
		env.profiles, env.contacts, env.alerts, env.checkIns, env.reports, env.zones,
		&geo.UnavailableProvider{}, log,
	)
	return env
}

func TestActivateSOS_fanOutToActiveContacts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := env.svc.AddContact(ctx, userID, ContactInput{Name: "Alice", Phone: "+15551111"})
	require.NoError(t, err)
	inactive, err := env.svc.AddContact(ctx, userID, ContactInput{Name: "Bob", Phone: "+15552222"})
	require.NoError(t, err)
	require.NoError(t, env.svc.SetContactActive(ctx, userID, inactive.ID, false))

	coord := &model.Coordinate{Latitude: 48.1, Longitude: 11.6}
	act, err := env.svc.ActivateSOS(ctx, userID, coord, nil)
	require.NoError(t, err)

	assert.Equal(t, model.AlertStatusActive, act.Alert.Status)
	assert.Equal(t, model.AlertTypeSOS, act.Alert.AlertType)
	require.NotNil(t, act.Alert.Latitude)
	assert.Equal(t, 48.1, *act.Alert.Latitude)

	assert.Equal(t, FanoutContacts, act.Fanout.Mode)
	require.Len(t, act.Fanout.Contacts, 1)
	assert.Equal(t, "Alice", act.Fanout.Contacts[0].ContactName)
}

func TestActivateSOS_secondActivationConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := env.svc.ActivateSOS(ctx, userID, nil, nil)
	require.NoError(t, err)

	_, err = env.svc.ActivateSOS(ctx, userID, nil, nil)
	assert.ErrorIs(t, err, common.ErrConflict)

	// Another user is unaffected.
	_, err = env.svc.ActivateSOS(ctx, uuid.New(), nil, nil)
	assert.NoError(t, err)

	// Resolving frees the slot.
	_, err = env.svc.ResolveActiveAlert(ctx, userID, first.Alert.ID)
	require.NoError(t, err)
	_, err = env.svc.ActivateSOS(ctx, userID, nil, nil)
	assert.NoError(t, err)
}

func TestActivateSOS_fallbackAndNone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	withFallback := uuid.New()
	phone := "+15559999"
	name := "Mum"
	require.NoError(t, env.profiles.Upsert(ctx, model.Profile{
		ID: withFallback, FullName: "Dana", EmergencyContactName: &name, EmergencyContactPhone: &phone,
	}))

	act, err := env.svc.ActivateSOS(ctx, withFallback, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, FanoutFallback, act.Fanout.Mode)
	require.NotNil(t, act.Fanout.Fallback)
	assert.Equal(t, phone, act.Fanout.Fallback.Phone)

	// No contacts, no profile: activation still succeeds.
	bare := uuid.New()
	act, err = env.svc.ActivateSOS(ctx, bare, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, FanoutNone, act.Fanout.Mode)
	assert.Nil(t, act.Alert.Latitude, "no coordinate available anywhere")
}

func TestActivateSOS_usesGeoProviderWhenNoCoordinateSupplied(t *testing.T) {
	env := newTestEnv(t)
	env.svc.geo = &geo.StaticProvider{Coordinate: model.Coordinate{Latitude: 59.33, Longitude: 18.07}}
	ctx := context.Background()

	act, err := env.svc.ActivateSOS(ctx, uuid.New(), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, act.Alert.Latitude)
	assert.Equal(t, 59.33, *act.Alert.Latitude)

	// A supplied coordinate wins over the provider.
	act, err = env.svc.ActivateSOS(ctx, uuid.New(), &model.Coordinate{Latitude: 1, Longitude: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, *act.Alert.Latitude)
}

func TestTerminateAlert_wrongUserAndWrongState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	act, err := env.svc.ActivateSOS(ctx, owner, nil, nil)
	require.NoError(t, err)

	// Another user cannot see or terminate the alert.
	_, err = env.svc.ResolveActiveAlert(ctx, uuid.New(), act.Alert.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = env.svc.MarkAlertFalseAlarm(ctx, owner, act.Alert.ID)
	require.NoError(t, err)

	// Terminal state rejects the second transition.
	_, err = env.svc.ResolveActiveAlert(ctx, owner, act.Alert.ID)
	assert.ErrorIs(t, err, common.ErrInvalidState)
}

func TestSweepMissedCheckIns(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return base }

	coord := &model.Coordinate{Latitude: 35.68, Longitude: 139.69}
	checkIn, err := env.svc.CreateCheckIn(ctx, userID, "Night shift", 30*time.Minute, coord)
	require.NoError(t, err)

	// Nothing overdue yet.
	missed, err := env.svc.SweepMissedCheckIns(ctx)
	require.NoError(t, err)
	assert.Zero(t, missed)

	env.svc.now = func() time.Time { return base.Add(time.Hour) }

	missed, err = env.svc.SweepMissedCheckIns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, missed)

	got, err := env.checkIns.GetByID(ctx, checkIn.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, model.CheckInStatusMissed, got.Status)

	alert, err := env.svc.ActiveAlert(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, model.AlertTypeCheckInMissed, alert.AlertType)
	require.NotNil(t, alert.Latitude)
	assert.Equal(t, 35.68, *alert.Latitude)
	require.NotNil(t, alert.LocationDescription)
	assert.Equal(t, "missed check-in: Night shift", *alert.LocationDescription)

	// Idempotent: the record is no longer pending.
	missed, err = env.svc.SweepMissedCheckIns(ctx)
	require.NoError(t, err)
	assert.Zero(t, missed)
}

func TestSweepSkipsCheckInCompletedInTheMeantime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return base }

	checkIn, err := env.svc.CreateCheckIn(ctx, userID, "Gym", 15*time.Minute, nil)
	require.NoError(t, err)

	// Owner completes late, after the window but before the sweep runs.
	env.svc.now = func() time.Time { return base.Add(time.Hour) }
	done, err := env.svc.CompleteCheckIn(ctx, userID, checkIn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CheckInStatusCompleted, done.Status)

	missed, err := env.svc.SweepMissedCheckIns(ctx)
	require.NoError(t, err)
	assert.Zero(t, missed)

	_, err = env.svc.ActiveAlert(ctx, userID)
	assert.ErrorIs(t, err, common.ErrNotFound, "no alert for a completed check-in")
}

func TestSweepWithExistingActiveAlertStillMarksMissed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return base }

	checkIn, err := env.svc.CreateCheckIn(ctx, userID, "Walk home", 10*time.Minute, nil)
	require.NoError(t, err)

	sos, err := env.svc.ActivateSOS(ctx, userID, nil, nil)
	require.NoError(t, err)

	env.svc.now = func() time.Time { return base.Add(time.Hour) }
	missed, err := env.svc.SweepMissedCheckIns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, missed, "check-in is marked missed even when the alert slot is taken")

	got, err := env.checkIns.GetByID(ctx, checkIn.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, model.CheckInStatusMissed, got.Status)

	// The pre-existing SOS alert is untouched.
	active, err := env.svc.ActiveAlert(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, sos.Alert.ID, active.ID)
}

func TestSubmitReport_anonymousInvisibleToOwnHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	in := ReportInput{
		IncidentType:        "theft",
		Description:         "bag snatched",
		LocationDescription: "metro exit",
		IncidentDate:        time.Date(2026, 2, 20, 19, 0, 0, 0, time.UTC),
	}
	_, err := env.svc.SubmitReport(ctx, userID, in)
	require.NoError(t, err)

	in.IsAnonymous = true
	anon, err := env.svc.SubmitReport(ctx, userID, in)
	require.NoError(t, err)
	assert.Nil(t, anon.UserID)

	reports, err := env.svc.ListReports(ctx, userID, 0)
	require.NoError(t, err)
	require.Len(t, reports, 1, "anonymous submission must not appear in the submitter's history")
	assert.False(t, reports[0].IsAnonymous)
}

func TestSaveProfile_validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.svc.SaveProfile(ctx, model.Profile{ID: uuid.New(), FullName: "  "})
	assert.ErrorIs(t, err, common.ErrValidation)

	p := model.Profile{ID: uuid.New(), FullName: "Dana"}
	require.NoError(t, env.svc.SaveProfile(ctx, p))
	got, err := env.svc.Profile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dana", got.FullName)
}

func TestSafeZones_filterApplied(t *testing.T) {
	env := newTestEnv(t)
	env.zones.zones = []model.SafeZone{
		{ID: uuid.New(), Name: "Harbor Shelter", Type: model.SafeZoneShelter},
		{ID: uuid.New(), Name: "Mercy Hospital", Type: model.SafeZoneHospital, Verified: true},
	}

	zones, err := env.svc.SafeZones(context.Background(), model.SafeZoneHospital)
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, "Mercy Hospital", zones[0].Name)

	zones, err = env.svc.SafeZones(context.Background(), " all ")
	require.NoError(t, err)
	assert.Len(t, zones, 2)
}
