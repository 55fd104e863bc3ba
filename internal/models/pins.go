package models

import "encoding/json"

// DashboardPins is the user-chosen set of items shown in the summary widget.
// Membership is what matters; the stored order is not used for rendering.
type DashboardPins []string

// DecodePins reads a stored pin list, skipping non-strings and duplicates.
func DecodePins(raw []byte) DashboardPins {
	var entries []interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &entries) != nil {
		return DashboardPins{}
	}
	pins := make(DashboardPins, 0, len(entries))
	seen := map[string]bool{}
	for _, e := range entries {
		s, ok := e.(string)
		if !ok || s == "" || seen[s] {
			continue
		}
		seen[s] = true
		pins = append(pins, s)
	}
	return pins
}

// Encode serializes the pin set for storage.
func (p DashboardPins) Encode() ([]byte, error) {
	if p == nil {
		p = DashboardPins{}
	}
	return json.Marshal([]string(p))
}

// Has reports pin membership.
func (p DashboardPins) Has(id string) bool {
	for _, v := range p {
		if v == id {
			return true
		}
	}
	return false
}

// Without returns a copy with id removed.
func (p DashboardPins) Without(id string) DashboardPins {
	out := make(DashboardPins, 0, len(p))
	for _, v := range p {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
