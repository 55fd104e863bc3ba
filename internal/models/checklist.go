package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ChecklistItem names one step of the onboarding checklist
type ChecklistItem string

const (
	ChecklistTrustedContacts  ChecklistItem = "trustedContacts"
	ChecklistOfferAccepted    ChecklistItem = "offerAccepted"
	ChecklistDocumentCaptured ChecklistItem = "documentCaptured"
	ChecklistGeoConsent       ChecklistItem = "geoConsent"
)

// ChecklistItems lists the steps in display order.
var ChecklistItems = []ChecklistItem{
	ChecklistTrustedContacts,
	ChecklistOfferAccepted,
	ChecklistDocumentCaptured,
	ChecklistGeoConsent,
}

// IsValidChecklistItem checks if an item is a known checklist step
func IsValidChecklistItem(item ChecklistItem) bool {
	switch item {
	case ChecklistTrustedContacts, ChecklistOfferAccepted, ChecklistDocumentCaptured, ChecklistGeoConsent:
		return true
	default:
		return false
	}
}

// ChecklistState holds four independent flags.
type ChecklistState struct {
	TrustedContacts  bool `json:"trustedContacts"`
	OfferAccepted    bool `json:"offerAccepted"`
	DocumentCaptured bool `json:"documentCaptured"`
	GeoConsent       bool `json:"geoConsent"`
}

// AllDone reports whether every step is complete.
func (c ChecklistState) AllDone() bool {
	return c.TrustedContacts && c.OfferAccepted && c.DocumentCaptured && c.GeoConsent
}

// Done reports the flag for item.
func (c ChecklistState) Done(item ChecklistItem) bool {
	switch item {
	case ChecklistTrustedContacts:
		return c.TrustedContacts
	case ChecklistOfferAccepted:
		return c.OfferAccepted
	case ChecklistDocumentCaptured:
		return c.DocumentCaptured
	case ChecklistGeoConsent:
		return c.GeoConsent
	default:
		return false
	}
}

// Set updates the flag for item. Unknown items leave the state untouched.
func (c *ChecklistState) Set(item ChecklistItem, done bool) {
	switch item {
	case ChecklistTrustedContacts:
		c.TrustedContacts = done
	case ChecklistOfferAccepted:
		c.OfferAccepted = done
	case ChecklistDocumentCaptured:
		c.DocumentCaptured = done
	case ChecklistGeoConsent:
		c.GeoConsent = done
	}
}

// CompletedChecklist has every step done.
func CompletedChecklist() ChecklistState {
	return ChecklistState{TrustedContacts: true, OfferAccepted: true, DocumentCaptured: true, GeoConsent: true}
}

// legacy keys written by the first release of the app
var legacyChecklistKeys = map[ChecklistItem]string{
	ChecklistTrustedContacts:  "contacts",
	ChecklistOfferAccepted:    "offer",
	ChecklistDocumentCaptured: "techpass",
	ChecklistGeoConsent:       "geo",
}

// DecodeChecklist reads a stored checklist. Anything but a literal true is false.
func DecodeChecklist(raw []byte) ChecklistState {
	m := decodeObject(raw)
	var c ChecklistState
	for _, item := range ChecklistItems {
		done := boolField(m, string(item), false) || boolField(m, legacyChecklistKeys[item], false)
		c.Set(item, done)
	}
	return c
}

// Encode serializes the checklist for storage.
func (c ChecklistState) Encode() ([]byte, error) {
	return json.Marshal(c)
}

// DecodeSnooze reads the stored snooze deadline (unix milliseconds, as a
// JSON number or a numeric string). Zero, negative or malformed values mean
// no snooze.
func DecodeSnooze(raw []byte) *time.Time {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" {
		return nil
	}
	ms, err := strconv.ParseFloat(s, 64)
	if err != nil || ms <= 0 {
		return nil
	}
	t := time.UnixMilli(int64(ms))
	return &t
}

// EncodeSnooze renders a snooze deadline as unix milliseconds.
func EncodeSnooze(until time.Time) []byte {
	return []byte(strconv.FormatInt(until.UnixMilli(), 10))
}
