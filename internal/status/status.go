// Package status turns raw maintenance facts into urgency signals.
//
// Every function here is pure: the same profile, target, thresholds and day
// always produce the same ComputedStatus. Malformed input is never an error;
// it degrades to SeverityUnknown.
package status

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Driverassistance/driveassist-app/internal/calendar"
	"github.com/Driverassistance/driveassist-app/internal/models"
)

// NominalHorizonDays is the span date progress bars are drawn against.
// Only the bar uses it; severity never does.
const NominalHorizonDays = 365

// Compute evaluates target against the profile's odometer or against today.
func Compute(profile models.VehicleProfile, target models.Target, th models.Thresholds, today time.Time) models.ComputedStatus {
	switch t := target.(type) {
	case models.DistanceTarget:
		return Distance(profile.OdometerKm, t, th.RemindKm)
	case models.DateTarget:
		return Date(t, th.RemindDays, today)
	default:
		return models.ComputedStatus{Severity: models.SeverityUnknown}
	}
}

// Distance computes a kilometre-based status. It is unknown when the last
// service reading or the odometer is missing, or when the interval is
// missing or not positive. A zero reading is valid.
func Distance(odometerKm string, t models.DistanceTarget, remindKm int) models.ComputedStatus {
	unknown := models.ComputedStatus{Kind: models.KindDistance, Severity: models.SeverityUnknown}

	last, ok := ParseKm(t.LastKm)
	if !ok {
		return unknown
	}
	interval, ok := ParseKm(t.IntervalKm)
	if !ok || interval <= 0 {
		return unknown
	}
	current, ok := ParseKm(odometerKm)
	if !ok {
		return unknown
	}

	remaining := last + interval - current
	return models.ComputedStatus{
		Kind:          models.KindDistance,
		Remaining:     &remaining,
		ProgressRatio: clamp01(float64(current-last) / float64(interval)),
		Severity:      classify(remaining, remindKm),
	}
}

// Date computes a calendar-based status relative to today's date.
func Date(t models.DateTarget, remindDays int, today time.Time) models.ComputedStatus {
	due, ok := calendar.ParseDay(t.Due)
	if !ok {
		return models.ComputedStatus{Kind: models.KindDate, Severity: models.SeverityUnknown}
	}
	remaining := calendar.DaysBetween(today, due)
	return models.ComputedStatus{
		Kind:          models.KindDate,
		Remaining:     &remaining,
		ProgressRatio: 1 - clamp01(float64(remaining)/NominalHorizonDays),
		Severity:      classify(remaining, remindDays),
	}
}

// ParseKm strips everything but ASCII digits and parses the rest. Empty or
// overflowing input reports false.
func ParseKm(s string) (int, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

func classify(remaining, limit int) models.Severity {
	switch {
	case remaining < 0:
		return models.SeverityOverdue
	case remaining <= limit:
		return models.SeverityWarning
	default:
		return models.SeverityOK
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
