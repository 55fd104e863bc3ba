package garage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Driverassistance/driveassist-app/internal/db"
	"github.com/Driverassistance/driveassist-app/internal/i18n"
	"github.com/Driverassistance/driveassist-app/internal/models"
	"github.com/Driverassistance/driveassist-app/internal/onboarding"
	"github.com/Driverassistance/driveassist-app/internal/pins"
)

var errDisk = errors.New("disk full")

// hookStore wraps a MemoryStore with switchable failures.
type hookStore struct {
	*db.MemoryStore
	getErr   error
	putErr   error
	putKey   string // when set, putErr only applies to this key
	afterGet func()
	puts     int
}

func (h *hookStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if h.getErr != nil {
		return nil, false, h.getErr
	}
	raw, ok, err := h.MemoryStore.Get(ctx, key)
	if h.afterGet != nil {
		h.afterGet()
	}
	return raw, ok, err
}

func (h *hookStore) Put(ctx context.Context, key string, value []byte) error {
	if h.putErr != nil && (h.putKey == "" || h.putKey == key) {
		return h.putErr
	}
	h.puts++
	return h.MemoryStore.Put(ctx, key, value)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestService(t *testing.T, now time.Time, lang string) (*Service, *hookStore, *fakeClock) {
	t.Helper()
	store := &hookStore{MemoryStore: db.NewMemoryStore()}
	clock := &fakeClock{t: now}
	return NewService(store, WithClock(clock.Now), WithCatalog(i18n.Match(lang))), store, clock
}

func TestSaveSchedule_DerivesInsuranceEnd(t *testing.T) {
	svc, _, _ := newTestService(t, time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC), "ru")
	ctx := context.Background()

	saved, err := svc.SaveSchedule(ctx, models.ScheduleDates{
		InsuranceStart:                "2025-01-01",
		InsuranceTermMonths:           12,
		TechnicalInspectionTermMonths: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01", saved.InsuranceEnd)

	saved, err = svc.SaveSchedule(ctx, models.ScheduleDates{
		InsuranceStart:                "",
		InsuranceTermMonths:           12,
		InsuranceEnd:                  "2025-07-19",
		TechnicalInspectionTermMonths: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-07-19", saved.InsuranceEnd)

	got, err := svc.Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestSaveSchedule_RejectsNegativeTermWithStart(t *testing.T) {
	svc, store, _ := newTestService(t, time.Now(), "ru")
	_, err := svc.SaveSchedule(context.Background(), models.ScheduleDates{
		InsuranceStart:                "2025-01-01",
		InsuranceTermMonths:           -1,
		TechnicalInspectionTermMonths: 12,
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "insuranceTermMonths", verr.Field)
	assert.Equal(t, 0, store.puts)
}

func TestSaveSchedule_ManualEndIgnoresTerm(t *testing.T) {
	svc, _, _ := newTestService(t, time.Now(), "ru")
	ctx := context.Background()

	saved, err := svc.SaveSchedule(ctx, models.ScheduleDates{
		InsuranceTermMonths:           0,
		InsuranceEnd:                  "2025-07-19",
		TechnicalInspectionTermMonths: -3,
		TechnicalInspectionEnd:        "2026-02-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-07-19", saved.InsuranceEnd)
	assert.Equal(t, "2026-02-01", saved.TechnicalInspectionEnd)
	assert.Equal(t, models.DefaultTermMonths, saved.TechnicalInspectionTermMonths)

	got, err := svc.Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestSaveSchedule_ZeroTermEndsOnStart(t *testing.T) {
	svc, _, _ := newTestService(t, time.Now(), "ru")
	saved, err := svc.SaveSchedule(context.Background(), models.ScheduleDates{
		InsuranceStart:                "2025-03-31",
		InsuranceTermMonths:           0,
		TechnicalInspectionTermMonths: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-31", saved.InsuranceEnd)
}

func TestDashboard_InspectionBanner(t *testing.T) {
	svc, _, _ := newTestService(t, time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC), "en")
	ctx := context.Background()

	_, err := svc.SaveSchedule(ctx, models.ScheduleDates{
		NextInspectionDate:            "2025-01-15",
		InsuranceTermMonths:           12,
		TechnicalInspectionTermMonths: 12,
	})
	require.NoError(t, err)

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.NotNil(t, d.Banner.Headline)
	assert.Equal(t, "Inspection: due in 5 days", *d.Banner.Headline)
	assert.Equal(t, models.SeverityWarning, d.Banner.Severity)
	assert.Empty(t, d.Summary)
	assert.Len(t, d.Items, len(models.ScheduleFieldIDs)+len(models.FixedCatalog))
}

func TestDashboard_OilPinned(t *testing.T) {
	svc, _, _ := newTestService(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), "ru")
	ctx := context.Background()

	_, err := svc.SaveProfile(ctx, models.VehicleProfile{OdometerKm: "123 500"})
	require.NoError(t, err)
	_, err = svc.UpdateFixed(ctx, "engine_oil", ItemInput{LastKm: "120000", IntervalKm: "5000"})
	require.NoError(t, err)
	_, err = svc.TogglePin(ctx, "engine_oil")
	require.NoError(t, err)

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Len(t, d.Summary, 1)
	assert.Equal(t, "через 1500 км", d.Summary[0].Text)
	assert.Equal(t, 0.7, d.Summary[0].Ratio)
	assert.Equal(t, models.SeverityOK, d.Summary[0].Severity)
	assert.Nil(t, d.Banner.Headline)
}

func TestOnboarding_SnoozeCycle(t *testing.T) {
	start := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	svc, store, clock := newTestService(t, start, "ru")
	ctx := context.Background()

	v, err := svc.Onboarding(ctx)
	require.NoError(t, err)
	assert.True(t, v.Visible)

	v, err = svc.SnoozeChecklist(ctx, onboarding.DefaultSnooze)
	require.NoError(t, err)
	assert.False(t, v.Visible)

	clock.t = start.Add(179 * time.Minute)
	v, err = svc.Onboarding(ctx)
	require.NoError(t, err)
	assert.False(t, v.Visible)

	clock.t = start.Add(181 * time.Minute)
	v, err = svc.Onboarding(ctx)
	require.NoError(t, err)
	assert.True(t, v.Visible)

	// a fresh service over the same store sees the same state
	again := NewService(store, WithClock(clock.Now))
	v, err = again.Onboarding(ctx)
	require.NoError(t, err)
	assert.True(t, v.Visible)
}

func TestOnboarding_MarkAndComplete(t *testing.T) {
	svc, _, _ := newTestService(t, time.Now(), "ru")
	ctx := context.Background()

	for _, item := range models.ChecklistItems[:3] {
		v, err := svc.MarkChecklist(ctx, item, true)
		require.NoError(t, err)
		assert.True(t, v.Visible)
	}
	v, err := svc.MarkChecklist(ctx, models.ChecklistGeoConsent, true)
	require.NoError(t, err)
	assert.False(t, v.Visible)

	_, err = svc.MarkChecklist(ctx, "geo", true)
	assert.ErrorIs(t, err, onboarding.ErrUnknownChecklistItem)

	_, err = svc.MarkChecklist(ctx, models.ChecklistGeoConsent, false)
	require.NoError(t, err)
	v, err = svc.CompleteChecklist(ctx)
	require.NoError(t, err)
	assert.False(t, v.Visible)
	for _, it := range v.Items {
		assert.True(t, it.Done, it.Key)
	}
}

func TestSaveProfile_Validation(t *testing.T) {
	tests := []struct {
		name  string
		draft models.VehicleProfile
		field string
	}{
		{"short vin", models.VehicleProfile{VIN: "ABC123", OdometerKm: "1000"}, "vin"},
		{"vin with O", models.VehicleProfile{VIN: "WVWZZZ1KZ6WOOOOO1", OdometerKm: "1000"}, "vin"},
		{"missing odometer", models.VehicleProfile{VIN: "WVWZZZ1KZ6W000001"}, "odometerKm"},
		{"odometer text", models.VehicleProfile{OdometerKm: "12k"}, "odometerKm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newTestService(t, time.Now(), "ru")
			_, err := svc.SaveProfile(context.Background(), tt.draft)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, 0, store.puts)
		})
	}
}

func TestSaveProfile_NormalizesAndGuessesBrand(t *testing.T) {
	svc, _, _ := newTestService(t, time.Now(), "ru")
	ctx := context.Background()

	_, err := svc.AttachDocument(ctx, "file:///techpass.jpg")
	require.NoError(t, err)

	p, err := svc.SaveProfile(ctx, models.VehicleProfile{
		VIN:        " wvw-zzz1kz6w000001 ",
		OdometerKm: " 098 000 ",
		Model:      " Golf ",
	})
	require.NoError(t, err)
	assert.Equal(t, "WVWZZZ1KZ6W000001", p.VIN)
	assert.Equal(t, "98000", p.OdometerKm)
	assert.Equal(t, "Volkswagen", p.Brand)
	assert.Equal(t, "Golf", p.Model)
	assert.Equal(t, "file:///techpass.jpg", p.DocumentPhotoRef)

	p, err = svc.RemoveDocument(ctx)
	require.NoError(t, err)
	assert.Empty(t, p.DocumentPhotoRef)
	assert.Equal(t, "98000", p.OdometerKm)

	_, err = svc.AttachDocument(ctx, "  ")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestPersistenceFailure_KeepsLastGood(t *testing.T) {
	svc, store, _ := newTestService(t, time.Now(), "ru")
	ctx := context.Background()

	_, err := svc.SaveThresholds(ctx, models.Thresholds{Remind: true, RemindDays: 3, RemindKm: 200})
	require.NoError(t, err)
	th, err := svc.Thresholds(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, th.RemindDays)

	store.putErr = errDisk
	_, err = svc.SaveThresholds(ctx, models.Thresholds{Remind: false, RemindDays: 30})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, errDisk)

	store.getErr = errDisk
	th, err = svc.Thresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Thresholds{Remind: true, RemindDays: 3, RemindKm: 200}, th)

	_, err = svc.TogglePin(ctx, "to")
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestReadFailure_WithoutHistoryUsesDefaults(t *testing.T) {
	svc, store, _ := newTestService(t, time.Now(), "ru")
	store.getErr = errDisk

	th, err := svc.Thresholds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultThresholds(), th)

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Nil(t, d.Banner.Headline)
}

func TestCancelledContext_DiscardsResult(t *testing.T) {
	svc, store, _ := newTestService(t, time.Now(), "ru")
	ctx, cancel := context.WithCancel(context.Background())
	store.afterGet = cancel

	_, err := svc.TogglePin(ctx, "to")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, store.puts)

	_, err = svc.Dashboard(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlan_CustomLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t, time.Now(), "en")
	ctx := context.Background()

	item, err := svc.AddCustom(ctx, ItemInput{Name: " Cabin filter ", LastKm: "10000", IntervalKm: "15000"})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Cabin filter", item.Name)

	pinned, err := svc.TogglePin(ctx, item.PinID())
	require.NoError(t, err)
	assert.True(t, pinned.Has(item.PinID()))

	updated, err := svc.UpdateCustom(ctx, item.ID, ItemInput{Name: "Cabin filter", LastKm: "25000", IntervalKm: "15000", Note: "OEM"})
	require.NoError(t, err)
	assert.Equal(t, "25000", updated.LastKm)

	plan, err := svc.Plan(ctx)
	require.NoError(t, err)
	require.Len(t, plan.Custom, 1)
	assert.Equal(t, "OEM", plan.Custom[0].Note)

	require.NoError(t, svc.RemoveCustom(ctx, item.ID))
	current, err := svc.Pins(ctx)
	require.NoError(t, err)
	assert.False(t, current.Has(item.PinID()))

	assert.ErrorIs(t, svc.RemoveCustom(ctx, item.ID), ErrNotFound)
	_, err = svc.UpdateCustom(ctx, "nope", ItemInput{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.UpdateFixed(ctx, "spark_plugs", ItemInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlan_CustomWithoutStoredID(t *testing.T) {
	svc, store, _ := newTestService(t, time.Now(), "en")
	ctx := context.Background()
	require.NoError(t, store.MemoryStore.Put(ctx, db.KeyPlan,
		[]byte(`{"custom":[{"name":"Timing belt","lastKm":"1","intervalKm":"2"}]}`)))

	plan, err := svc.Plan(ctx)
	require.NoError(t, err)
	require.Len(t, plan.Custom, 1)
	id := plan.Custom[0].ID
	require.NotEmpty(t, id)

	again, err := svc.Plan(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, again.Custom[0].ID)

	updated, err := svc.UpdateCustom(ctx, id, ItemInput{Name: "Timing belt", LastKm: "90000", IntervalKm: "60000"})
	require.NoError(t, err)
	assert.Equal(t, id, updated.ID)

	_, err = svc.TogglePin(ctx, models.CustomPinPrefix+id)
	require.NoError(t, err)
	require.NoError(t, svc.RemoveCustom(ctx, id))
}

func TestTogglePin_Unknown(t *testing.T) {
	svc, store, _ := newTestService(t, time.Now(), "ru")
	_, err := svc.TogglePin(context.Background(), "custom:ghost")
	assert.ErrorIs(t, err, pins.ErrUnknownItem)
	assert.Equal(t, 0, store.puts)
}

func TestSaveNotes(t *testing.T) {
	svc, _, _ := newTestService(t, time.Now(), "ru")
	plan, err := svc.SaveNotes(context.Background(), "замена колодок в мае")
	require.NoError(t, err)
	assert.Equal(t, "замена колодок в мае", plan.Notes)
	assert.Len(t, plan.Fixed, len(models.FixedCatalog))
}

func TestBanner(t *testing.T) {
	svc, _, _ := newTestService(t, time.Date(2025, 12, 27, 0, 0, 0, 0, time.UTC), "ru")
	ctx := context.Background()
	_, err := svc.SaveSchedule(ctx, models.ScheduleDates{
		InsuranceStart:                "2025-01-01",
		InsuranceTermMonths:           12,
		TechnicalInspectionTermMonths: 12,
	})
	require.NoError(t, err)

	b, err := svc.Banner(ctx)
	require.NoError(t, err)
	require.NotNil(t, b.Headline)
	assert.Equal(t, "Страховка: через 5 дн", *b.Headline)
}

func TestLegacyServiceRecord(t *testing.T) {
	svc, store, _ := newTestService(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), "en")
	ctx := context.Background()
	require.NoError(t, store.MemoryStore.Put(ctx, db.KeyLegacyService, []byte(`{
		"nextTO":"2025-01-15",
		"insuranceFrom":"2025-01-01","insuranceTerm":12,"insuranceTo":"2026-01-01",
		"plan":[{"key":"engine_oil","lastKm":"120000","intervalKm":5000}],
		"custom":[{"id":7,"name":"Timing belt"}],
		"remind":true,"remindDays":7,"remindKm":500,
		"notes":"old notes"
	}`)))

	sched, err := svc.Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15", sched.NextInspectionDate)
	assert.Equal(t, "2026-01-01", sched.InsuranceEnd)

	plan, err := svc.Plan(ctx)
	require.NoError(t, err)
	assert.Equal(t, "120000", plan.Fixed[0].LastKm)
	require.Len(t, plan.Custom, 1)
	assert.Equal(t, "7", plan.Custom[0].ID)
	assert.Equal(t, "old notes", plan.Notes)

	th, err := svc.Thresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Thresholds{Remind: true, RemindDays: 7, RemindKm: 500}, th)

	_, err = svc.SaveNotes(ctx, "new notes")
	require.NoError(t, err)
	plan, err = svc.Plan(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new notes", plan.Notes)
	assert.Equal(t, "120000", plan.Fixed[0].LastKm)

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.NotNil(t, d.Banner.Headline)
	assert.Equal(t, "Inspection: due in 5 days", *d.Banner.Headline)
}

func TestRemoveCustom_PinWriteFailureLeavesHarmlessPin(t *testing.T) {
	svc, store, _ := newTestService(t, time.Now(), "en")
	ctx := context.Background()

	item, err := svc.AddCustom(ctx, ItemInput{Name: "Cabin filter", LastKm: "10000", IntervalKm: "15000"})
	require.NoError(t, err)
	_, err = svc.TogglePin(ctx, item.PinID())
	require.NoError(t, err)

	store.putErr = errDisk
	store.putKey = db.KeyPins
	err = svc.RemoveCustom(ctx, item.ID)
	assert.ErrorIs(t, err, ErrPersistence)

	plan, err := svc.Plan(ctx)
	require.NoError(t, err)
	assert.Empty(t, plan.Custom)

	current, err := svc.Pins(ctx)
	require.NoError(t, err)
	assert.True(t, current.Has(item.PinID()))

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Empty(t, d.Summary)
}
