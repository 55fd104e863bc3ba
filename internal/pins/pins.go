// Package pins manages which items appear in the dashboard summary widget
// and renders those rows.
package pins

import (
	"errors"
	"time"

	"github.com/Driverassistance/driveassist-app/internal/i18n"
	"github.com/Driverassistance/driveassist-app/internal/models"
	"github.com/Driverassistance/driveassist-app/internal/status"
)

var ErrUnknownItem = errors.New("unknown dashboard item")

var colors = map[models.Severity]string{
	models.SeverityOK:      "#10b981",
	models.SeverityWarning: "#f59e0b",
	models.SeverityOverdue: "#ef4444",
	models.SeverityUnknown: "#94a3b8",
}

// Color returns the accent color for a severity.
func Color(sev models.Severity) string {
	if c, ok := colors[sev]; ok {
		return c
	}
	return colors[models.SeverityUnknown]
}

// Universe lists every pinnable id in render order.
func Universe(plan models.MaintenancePlan) []string {
	ids := make([]string, 0, len(models.ScheduleFieldIDs)+len(plan.Fixed)+len(plan.Custom))
	ids = append(ids, models.ScheduleFieldIDs...)
	for _, it := range plan.Items() {
		ids = append(ids, it.PinID())
	}
	return ids
}

func inUniverse(id string, plan models.MaintenancePlan) bool {
	for _, v := range Universe(plan) {
		if v == id {
			return true
		}
	}
	return false
}

// Toggle adds id when absent and removes it when present.
func Toggle(current models.DashboardPins, id string, plan models.MaintenancePlan) (models.DashboardPins, error) {
	if !inUniverse(id, plan) {
		return current, ErrUnknownItem
	}
	if current.Has(id) {
		return current.Without(id), nil
	}
	next := make(models.DashboardPins, 0, len(current)+1)
	next = append(next, current...)
	return append(next, id), nil
}

// Prune drops pins that no longer name an item of the plan.
func Prune(current models.DashboardPins, plan models.MaintenancePlan) models.DashboardPins {
	out := make(models.DashboardPins, 0, len(current))
	for _, id := range current {
		if inUniverse(id, plan) {
			out = append(out, id)
		}
	}
	return out
}

// Row is one line of the summary widget.
type Row struct {
	ID       string            `json:"id"`
	Label    string            `json:"label"`
	Text     string            `json:"text"`
	Ratio    float64           `json:"ratio"`
	Color    string            `json:"color"`
	Kind     models.StatusKind `json:"kind"`
	Severity models.Severity   `json:"severity"`
}

// Input is the state a summary render reads.
type Input struct {
	Profile    models.VehicleProfile
	Plan       models.MaintenancePlan
	Schedule   models.ScheduleDates
	Thresholds models.Thresholds
	Pins       models.DashboardPins
}

// Render returns a row for every pinned id, in Universe order.
// Stale ids are skipped.
func Render(in Input, today time.Time, cat i18n.Catalog) []Row {
	rows := []Row{}
	for _, id := range models.ScheduleFieldIDs {
		if !in.Pins.Has(id) {
			continue
		}
		target, _ := in.Schedule.Target(id)
		st := status.Compute(in.Profile, target, in.Thresholds, today)
		rows = append(rows, row(id, cat.SummaryLabel(id), st, cat))
	}
	for _, it := range in.Plan.Items() {
		id := it.PinID()
		if !in.Pins.Has(id) {
			continue
		}
		st := status.Compute(in.Profile, it.Target(), in.Thresholds, today)
		rows = append(rows, row(id, cat.ItemLabel(it), st, cat))
	}
	return rows
}

func row(id, label string, st models.ComputedStatus, cat i18n.Catalog) Row {
	return Row{
		ID:       id,
		Label:    label,
		Text:     cat.Remaining(st),
		Ratio:    st.ProgressRatio,
		Color:    Color(st.Severity),
		Kind:     st.Kind,
		Severity: st.Severity,
	}
}
