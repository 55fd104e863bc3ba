package models

import (
	"encoding/json"
	"strings"

	"github.com/Driverassistance/driveassist-app/internal/calendar"
)

// DefaultTermMonths is used when a coverage term is missing or malformed.
const DefaultTermMonths = 12

// Pin identifiers for the three schedule fields.
const (
	PinNextInspection      = "to"
	PinInsurance           = "ins"
	PinTechnicalInspection = "insp"
)

// ScheduleFieldIDs lists the schedule fields in display order.
var ScheduleFieldIDs = []string{PinNextInspection, PinInsurance, PinTechnicalInspection}

// ScheduleDates holds the calendar due dates. The *End values are derived
// from *Start and *TermMonths whenever *Start is set.
type ScheduleDates struct {
	NextInspectionDate            string `json:"nextInspectionDate"`
	InsuranceStart                string `json:"insuranceStart"`
	InsuranceTermMonths           int    `json:"insuranceTermMonths"`
	InsuranceEnd                  string `json:"insuranceEnd"`
	TechnicalInspectionStart      string `json:"technicalInspectionStart"`
	TechnicalInspectionTermMonths int    `json:"technicalInspectionTermMonths"`
	TechnicalInspectionEnd        string `json:"technicalInspectionEnd"`
}

// DefaultSchedule has no dates and the default coverage terms.
func DefaultSchedule() ScheduleDates {
	return ScheduleDates{
		InsuranceTermMonths:           DefaultTermMonths,
		TechnicalInspectionTermMonths: DefaultTermMonths,
	}
}

// DecodeSchedule reads a stored schedule record. The first release's keys
// (nextTO, insuranceFrom/Term/To, inspectionFrom/Term/To) are read when the
// current ones are absent.
func DecodeSchedule(raw []byte) ScheduleDates {
	m := decodeObject(raw)
	return ScheduleDates{
		NextInspectionDate:            textField(m, "nextInspectionDate", textField(m, "nextTO", "")),
		InsuranceStart:                textField(m, "insuranceStart", textField(m, "insuranceFrom", "")),
		InsuranceTermMonths:           intField(m, "insuranceTermMonths", intField(m, "insuranceTerm", DefaultTermMonths)),
		InsuranceEnd:                  textField(m, "insuranceEnd", textField(m, "insuranceTo", "")),
		TechnicalInspectionStart:      textField(m, "technicalInspectionStart", textField(m, "inspectionFrom", "")),
		TechnicalInspectionTermMonths: intField(m, "technicalInspectionTermMonths", intField(m, "inspectionTerm", DefaultTermMonths)),
		TechnicalInspectionEnd:        textField(m, "technicalInspectionEnd", textField(m, "inspectionTo", "")),
	}
}

// Encode serializes the schedule for storage.
func (s ScheduleDates) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Derive trims every date and recomputes each *End from a non-empty *Start.
// With an empty *Start the entered *End is kept as is. An unparsable *Start
// also leaves *End alone.
func (s ScheduleDates) Derive() ScheduleDates {
	s.NextInspectionDate = strings.TrimSpace(s.NextInspectionDate)
	s.InsuranceStart = strings.TrimSpace(s.InsuranceStart)
	s.InsuranceEnd = strings.TrimSpace(s.InsuranceEnd)
	s.TechnicalInspectionStart = strings.TrimSpace(s.TechnicalInspectionStart)
	s.TechnicalInspectionEnd = strings.TrimSpace(s.TechnicalInspectionEnd)

	if s.InsuranceStart != "" {
		if end, ok := calendar.AddMonthsText(s.InsuranceStart, s.InsuranceTermMonths); ok {
			s.InsuranceEnd = end
		}
	}
	if s.TechnicalInspectionStart != "" {
		if end, ok := calendar.AddMonthsText(s.TechnicalInspectionStart, s.TechnicalInspectionTermMonths); ok {
			s.TechnicalInspectionEnd = end
		}
	}
	return s
}

// Target returns the due date tracked under a schedule pin id.
func (s ScheduleDates) Target(id string) (DateTarget, bool) {
	switch id {
	case PinNextInspection:
		return DateTarget{Due: s.NextInspectionDate}, true
	case PinInsurance:
		return DateTarget{Due: s.InsuranceEnd}, true
	case PinTechnicalInspection:
		return DateTarget{Due: s.TechnicalInspectionEnd}, true
	default:
		return DateTarget{}, false
	}
}
