package onboarding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Driverassistance/driveassist-app/internal/i18n"
	"github.com/Driverassistance/driveassist-app/internal/models"
)

var now = time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)

func TestGate_SnoozeThenReappear(t *testing.T) {
	g := NewGate(models.ChecklistState{TrustedContacts: true, OfferAccepted: true}, nil, now)
	require.Equal(t, Visible, g.State())

	assert.Equal(t, Hidden, g.Snooze(DefaultSnooze, now))
	assert.Equal(t, Hidden, g.Evaluate(now.Add(179*time.Minute)))
	assert.Equal(t, Visible, g.Evaluate(now.Add(181*time.Minute)))
}

func TestGate_SnoozeBoundary(t *testing.T) {
	until := now.Add(time.Hour)
	g := NewGate(models.ChecklistState{}, &until, now)
	assert.Equal(t, Hidden, g.State())
	assert.Equal(t, Visible, g.Evaluate(until))
}

func TestGate_AllDoneStaysHidden(t *testing.T) {
	g := NewGate(models.CompletedChecklist(), nil, now)
	assert.Equal(t, Hidden, g.State())
	assert.Equal(t, Hidden, g.Evaluate(now.Add(1000*time.Hour)))

	g = NewGate(models.ChecklistState{}, nil, now)
	assert.Equal(t, Hidden, g.MarkAllDone(now))
	assert.True(t, g.Checklist.AllDone())
}

func TestGate_MarkLastItemHides(t *testing.T) {
	c := models.CompletedChecklist()
	c.GeoConsent = false
	g := NewGate(c, nil, now)
	require.Equal(t, Visible, g.State())

	st, err := g.Mark(models.ChecklistGeoConsent, true, now)
	require.NoError(t, err)
	assert.Equal(t, Hidden, st)

	st, err = g.Mark(models.ChecklistGeoConsent, false, now)
	require.NoError(t, err)
	assert.Equal(t, Visible, st)
}

func TestGate_MarkUnknown(t *testing.T) {
	g := NewGate(models.ChecklistState{}, nil, now)
	st, err := g.Mark("contacts", true, now)
	assert.ErrorIs(t, err, ErrUnknownChecklistItem)
	assert.Equal(t, Visible, st)
	assert.Equal(t, models.ChecklistState{}, g.Checklist)
}

func TestGate_NonPositiveSnoozeUsesDefault(t *testing.T) {
	g := NewGate(models.ChecklistState{}, nil, now)
	g.Snooze(0, now)
	require.NotNil(t, g.SnoozeUntil)
	assert.Equal(t, now.Add(DefaultSnooze), *g.SnoozeUntil)
}

func TestGate_View(t *testing.T) {
	g := NewGate(models.ChecklistState{OfferAccepted: true}, nil, now)
	v := g.View(i18n.Match("en"))

	assert.True(t, v.Visible)
	require.Len(t, v.Items, 4)
	assert.Equal(t, models.ChecklistTrustedContacts, v.Items[0].Key)
	assert.False(t, v.Items[0].Done)
	assert.Equal(t, models.ChecklistOfferAccepted, v.Items[1].Key)
	assert.True(t, v.Items[1].Done)
	assert.NotEmpty(t, v.Items[1].Label)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "visible", Visible.String())
	assert.Equal(t, "hidden", Hidden.String())
}
