// Package i18n holds the user-facing labels and phrases for ru and en.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/Driverassistance/driveassist-app/internal/models"
)

// NoValue is shown in place of a remaining amount that cannot be computed.
const NoValue = "—"

// Catalog renders labels and remaining-amount phrases in one language.
type Catalog struct {
	Tag language.Tag
	m   messages
}

type messages struct {
	bannerLabels    map[string]string
	summaryLabels   map[string]string
	fixedLabels     map[string]string
	checklistLabels map[models.ChecklistItem]string
	customFormat    string
	untitled        string
	dueKm           string
	overdueKm       string
	dueDays         string
	overdueDays     string
	headlineDue     string
	headlineOverdue string
}

var supported = []language.Tag{language.Russian, language.English}

var matcher = language.NewMatcher(supported)

var catalogs = map[language.Tag]messages{
	language.Russian: {
		bannerLabels: map[string]string{
			models.PinNextInspection:      "ТО",
			models.PinInsurance:           "Страховка",
			models.PinTechnicalInspection: "Техосмотр",
		},
		summaryLabels: map[string]string{
			models.PinNextInspection:      "До ТО",
			models.PinInsurance:           "До страховки",
			models.PinTechnicalInspection: "До техосмотра",
		},
		fixedLabels: map[string]string{},
		checklistLabels: map[models.ChecklistItem]string{
			models.ChecklistTrustedContacts:  "Добавить доверенные контакты",
			models.ChecklistOfferAccepted:    "Принять оферту и ответственность",
			models.ChecklistDocumentCaptured: "Сфотографировать и внести техпаспорт",
			models.ChecklistGeoConsent:       "Дать согласие на геопозицию",
		},
		customFormat:    "Своя ТО: %s",
		untitled:        "Без названия",
		dueKm:           "через %d км",
		overdueKm:       "просрочено %d км",
		dueDays:         "через %d дн",
		overdueDays:     "просрочено %d дн",
		headlineDue:     "%s: через %d дн",
		headlineOverdue: "%s: просрочено %d дн",
	},
	language.English: {
		bannerLabels: map[string]string{
			models.PinNextInspection:      "Inspection",
			models.PinInsurance:           "Insurance",
			models.PinTechnicalInspection: "Technical inspection",
		},
		summaryLabels: map[string]string{
			models.PinNextInspection:      "Until inspection",
			models.PinInsurance:           "Until insurance",
			models.PinTechnicalInspection: "Until technical inspection",
		},
		fixedLabels: map[string]string{
			"engine_oil":  "Engine oil",
			"ps_fluid":    "Power steering fluid",
			"antifreeze":  "Antifreeze",
			"gearbox":     "Transmission",
			"axles":       "Axles",
			"brake_fluid": "Brake fluid",
		},
		checklistLabels: map[models.ChecklistItem]string{
			models.ChecklistTrustedContacts:  "Add trusted contacts",
			models.ChecklistOfferAccepted:    "Accept the offer and liability terms",
			models.ChecklistDocumentCaptured: "Photograph the registration certificate",
			models.ChecklistGeoConsent:       "Allow location access",
		},
		customFormat:    "Custom: %s",
		untitled:        "Untitled",
		dueKm:           "in %d km",
		overdueKm:       "overdue by %d km",
		dueDays:         "in %d days",
		overdueDays:     "overdue by %d days",
		headlineDue:     "%s: due in %d days",
		headlineOverdue: "%s: overdue by %d days",
	},
}

// Match picks the closest supported catalog for a BCP 47 tag or
// Accept-Language value. Russian is the fallback.
func Match(preferred ...string) Catalog {
	tag, _ := language.MatchStrings(matcher, preferred...)
	base, _ := tag.Base()
	for _, t := range supported {
		if b, _ := t.Base(); b == base {
			return Catalog{Tag: t, m: catalogs[t]}
		}
	}
	return Catalog{Tag: language.Russian, m: catalogs[language.Russian]}
}

// BannerLabel is the short name of a schedule field used in the headline.
func (c Catalog) BannerLabel(id string) string {
	return c.m.bannerLabels[id]
}

// SummaryLabel is the summary-widget label of a schedule field.
func (c Catalog) SummaryLabel(id string) string {
	return c.m.summaryLabels[id]
}

// ItemLabel labels a maintenance item. Fixed items fall back to their stored title.
func (c Catalog) ItemLabel(it models.MaintenanceItem) string {
	if it.Kind == models.ItemCustom {
		name := it.Name
		if name == "" {
			name = c.m.untitled
		}
		return fmt.Sprintf(c.m.customFormat, name)
	}
	if label, ok := c.m.fixedLabels[it.Key]; ok {
		return label
	}
	return it.Title
}

// ChecklistLabel labels an onboarding step.
func (c Catalog) ChecklistLabel(item models.ChecklistItem) string {
	return c.m.checklistLabels[item]
}

// Remaining renders a computed status as "in N km" / "overdue by N days" etc.
func (c Catalog) Remaining(st models.ComputedStatus) string {
	if st.Remaining == nil {
		return NoValue
	}
	n := *st.Remaining
	due, overdue := c.m.dueDays, c.m.overdueDays
	if st.Kind == models.KindDistance {
		due, overdue = c.m.dueKm, c.m.overdueKm
	}
	if n < 0 {
		return fmt.Sprintf(overdue, -n)
	}
	return fmt.Sprintf(due, n)
}

// Headline renders the dashboard banner text for a schedule field.
func (c Catalog) Headline(label string, days int) string {
	if days < 0 {
		return fmt.Sprintf(c.m.headlineOverdue, label, -days)
	}
	return fmt.Sprintf(c.m.headlineDue, label, days)
}
