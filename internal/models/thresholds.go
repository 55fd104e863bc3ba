package models

import "encoding/json"

const (
	DefaultRemindDays = 7
	DefaultRemindKm   = 1000
)

// Thresholds controls when an item turns to warning, and whether the
// dashboard banner is shown at all.
type Thresholds struct {
	Remind     bool `json:"remind"`
	RemindDays int  `json:"remindDays"`
	RemindKm   int  `json:"remindKm"`
}

// DefaultThresholds returns the out-of-the-box reminder settings.
func DefaultThresholds() Thresholds {
	return Thresholds{Remind: true, RemindDays: DefaultRemindDays, RemindKm: DefaultRemindKm}
}

// DecodeThresholds reads stored thresholds. Negative values fall back to defaults.
func DecodeThresholds(raw []byte) Thresholds {
	m := decodeObject(raw)
	th := Thresholds{
		Remind:     boolField(m, "remind", true),
		RemindDays: intField(m, "remindDays", DefaultRemindDays),
		RemindKm:   intField(m, "remindKm", DefaultRemindKm),
	}
	if th.RemindDays < 0 {
		th.RemindDays = DefaultRemindDays
	}
	if th.RemindKm < 0 {
		th.RemindKm = DefaultRemindKm
	}
	return th
}

// Encode serializes the thresholds for storage.
func (t Thresholds) Encode() ([]byte, error) {
	return json.Marshal(t)
}
