package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Driverassistance/driveassist-app/internal/i18n"
	"github.com/Driverassistance/driveassist-app/internal/models"
)

var (
	today = time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	ru    = i18n.Match("ru")
)

func TestAggregate_InsuranceEndingSoon(t *testing.T) {
	sched := models.ScheduleDates{InsuranceEnd: "2025-01-15"}
	b := Aggregate(sched, models.DefaultThresholds(), today, ru)

	require.NotNil(t, b.Headline)
	assert.Equal(t, "Страховка: через 5 дн", *b.Headline)
	assert.Equal(t, models.SeverityWarning, b.Severity)
}

func TestAggregate_PicksMostUrgent(t *testing.T) {
	sched := models.ScheduleDates{
		NextInspectionDate:     "2025-01-14",
		InsuranceEnd:           "2025-01-08",
		TechnicalInspectionEnd: "2025-01-12",
	}
	b := Aggregate(sched, models.DefaultThresholds(), today, ru)

	require.NotNil(t, b.Headline)
	assert.Equal(t, "Страховка: просрочено 2 дн", *b.Headline)
	assert.Equal(t, models.SeverityOverdue, b.Severity)
}

func TestAggregate_TieKeepsFieldOrder(t *testing.T) {
	sched := models.ScheduleDates{
		InsuranceEnd:           "2025-01-13",
		TechnicalInspectionEnd: "2025-01-13",
	}
	b := Aggregate(sched, models.DefaultThresholds(), today, ru)

	require.NotNil(t, b.Headline)
	assert.Equal(t, "Страховка: через 3 дн", *b.Headline)
}

func TestAggregate_NoHeadline(t *testing.T) {
	tests := []struct {
		name  string
		sched models.ScheduleDates
		th    models.Thresholds
	}{
		{"reminders off", models.ScheduleDates{InsuranceEnd: "2025-01-11"}, models.Thresholds{Remind: false, RemindDays: 7}},
		{"nothing within window", models.ScheduleDates{InsuranceEnd: "2025-03-01"}, models.DefaultThresholds()},
		{"all unknown", models.ScheduleDates{NextInspectionDate: "soon", InsuranceEnd: ""}, models.DefaultThresholds()},
		{"empty schedule", models.DefaultSchedule(), models.DefaultThresholds()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Aggregate(tt.sched, tt.th, today, ru)
			assert.Nil(t, b.Headline)
			assert.Equal(t, models.SeverityOK, b.Severity)
		})
	}
}

func TestAggregate_WindowBoundaryIsInclusive(t *testing.T) {
	sched := models.ScheduleDates{TechnicalInspectionEnd: "2025-01-17"}
	b := Aggregate(sched, models.DefaultThresholds(), today, i18n.Match("en"))

	require.NotNil(t, b.Headline)
	assert.Equal(t, "Technical inspection: due in 7 days", *b.Headline)
}
