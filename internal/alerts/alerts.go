// Package alerts picks the single most urgent schedule date for the
// dashboard banner.
package alerts

import (
	"sort"
	"time"

	"github.com/Driverassistance/driveassist-app/internal/i18n"
	"github.com/Driverassistance/driveassist-app/internal/models"
	"github.com/Driverassistance/driveassist-app/internal/status"
)

// Banner is what the banner renderer shows. Headline is nil when nothing
// is due within the reminder window.
type Banner struct {
	Headline *string         `json:"headline"`
	Severity models.Severity `json:"severity"`
}

type candidate struct {
	id        string
	remaining int
	severity  models.Severity
}

// Aggregate evaluates the three schedule dates and returns the banner for
// the one with the smallest remaining day count. Ties keep field order:
// next inspection, insurance, technical inspection.
func Aggregate(sched models.ScheduleDates, th models.Thresholds, today time.Time, cat i18n.Catalog) Banner {
	none := Banner{Severity: models.SeverityOK}
	if !th.Remind {
		return none
	}

	var due []candidate
	for _, id := range models.ScheduleFieldIDs {
		target, _ := sched.Target(id)
		st := status.Date(target, th.RemindDays, today)
		if st.Remaining == nil || *st.Remaining > th.RemindDays {
			continue
		}
		due = append(due, candidate{id: id, remaining: *st.Remaining, severity: st.Severity})
	}
	if len(due) == 0 {
		return none
	}

	sort.SliceStable(due, func(i, j int) bool { return due[i].remaining < due[j].remaining })
	top := due[0]
	headline := cat.Headline(cat.BannerLabel(top.id), top.remaining)
	return Banner{Headline: &headline, Severity: top.severity}
}
