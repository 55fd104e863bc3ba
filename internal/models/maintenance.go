package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ItemKind tags a maintenance item as built-in or user-defined.
type ItemKind string

const (
	ItemFixed  ItemKind = "fixed"
	ItemCustom ItemKind = "custom"
)

// CustomPinPrefix prefixes custom item ids in the dashboard pin set.
const CustomPinPrefix = "custom:"

// MaintenanceItem is either Fixed{Key} or Custom{ID}. Kilometre values keep
// the user's text; blank means the value was never entered.
type MaintenanceItem struct {
	Kind       ItemKind `json:"-"`
	Key        string   `json:"key,omitempty"`
	ID         string   `json:"id,omitempty"`
	Title      string   `json:"title,omitempty"`
	Name       string   `json:"name,omitempty"`
	LastKm     string   `json:"lastKm"`
	IntervalKm string   `json:"intervalKm"`
	Note       string   `json:"note,omitempty"`
}

// PinID is the identifier used for this item in the dashboard pin set.
func (it MaintenanceItem) PinID() string {
	if it.Kind == ItemCustom {
		return CustomPinPrefix + it.ID
	}
	return it.Key
}

// Target exposes the item to the status engine.
func (it MaintenanceItem) Target() DistanceTarget {
	return DistanceTarget{LastKm: it.LastKm, IntervalKm: it.IntervalKm}
}

// FixedSpec describes one entry of the built-in catalog.
type FixedSpec struct {
	Key               string
	Title             string
	DefaultIntervalKm string
}

// FixedCatalog is seeded into every plan, in display order, and never removed.
var FixedCatalog = []FixedSpec{
	{Key: "engine_oil", Title: "Мотор", DefaultIntervalKm: "5000"},
	{Key: "ps_fluid", Title: "ГУР", DefaultIntervalKm: "10000"},
	{Key: "antifreeze", Title: "Антифриз", DefaultIntervalKm: "20000"},
	{Key: "gearbox", Title: "АКПП/МКПП", DefaultIntervalKm: "40000"},
	{Key: "axles", Title: "Мосты", DefaultIntervalKm: "20000"},
	{Key: "brake_fluid", Title: "Тормозная жидкость", DefaultIntervalKm: "20000"},
}

// IsFixedKey reports whether key belongs to the built-in catalog.
func IsFixedKey(key string) bool {
	for _, spec := range FixedCatalog {
		if spec.Key == key {
			return true
		}
	}
	return false
}

// MaintenancePlan holds the fixed catalog items followed by custom items in
// creation order.
type MaintenancePlan struct {
	Fixed  []MaintenanceItem `json:"plan"`
	Custom []MaintenanceItem `json:"custom"`
	Notes  string            `json:"notes"`
}

// DefaultPlan returns the seeded catalog with no service history.
func DefaultPlan() MaintenancePlan {
	fixed := make([]MaintenanceItem, 0, len(FixedCatalog))
	for _, spec := range FixedCatalog {
		fixed = append(fixed, MaintenanceItem{
			Kind:       ItemFixed,
			Key:        spec.Key,
			Title:      spec.Title,
			IntervalKm: spec.DefaultIntervalKm,
		})
	}
	return MaintenancePlan{Fixed: fixed, Custom: []MaintenanceItem{}}
}

// DecodePlan reads a stored plan. Fixed items are always rebuilt from the
// catalog so none can go missing; stored values override the defaults.
// Custom entries that are not objects are dropped.
func DecodePlan(raw []byte) MaintenancePlan {
	plan, _ := DecodePlanRepaired(raw)
	return plan
}

// DecodePlanRepaired is DecodePlan that also reports whether a custom entry
// had a missing or duplicate id. Such entries get an id derived from their
// position and name, so repeated decodes of the same record agree.
func DecodePlanRepaired(raw []byte) (MaintenancePlan, bool) {
	m := decodeObject(raw)
	repaired := false
	plan := DefaultPlan()

	stored := map[string]map[string]interface{}{}
	for _, entry := range arrayField(m, "plan") {
		obj, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if key := textField(obj, "key", ""); key != "" {
			stored[key] = obj
		}
	}
	for i := range plan.Fixed {
		obj, ok := stored[plan.Fixed[i].Key]
		if !ok {
			continue
		}
		plan.Fixed[i].Title = textField(obj, "title", plan.Fixed[i].Title)
		plan.Fixed[i].LastKm = textField(obj, "lastKm", "")
		plan.Fixed[i].IntervalKm = textField(obj, "intervalKm", plan.Fixed[i].IntervalKm)
	}

	seen := map[string]bool{}
	for pos, entry := range arrayField(m, "custom") {
		obj, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		id := strings.TrimSpace(textField(obj, "id", ""))
		if id == "" || seen[id] {
			id = derivedCustomID(pos, textField(obj, "name", ""), seen)
			repaired = true
		}
		seen[id] = true
		plan.Custom = append(plan.Custom, MaintenanceItem{
			Kind:       ItemCustom,
			ID:         id,
			Name:       textField(obj, "name", ""),
			LastKm:     textField(obj, "lastKm", ""),
			IntervalKm: textField(obj, "intervalKm", ""),
			Note:       textField(obj, "note", ""),
		})
	}

	plan.Notes = textField(m, "notes", "")
	return plan, repaired
}

func derivedCustomID(pos int, name string, taken map[string]bool) string {
	for salt := 0; ; salt++ {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("custom/%d/%d/%s", pos, salt, name))).String()
		if !taken[id] {
			return id
		}
	}
}

// Encode serializes the plan for storage.
func (p MaintenancePlan) Encode() ([]byte, error) {
	if p.Custom == nil {
		p.Custom = []MaintenanceItem{}
	}
	return json.Marshal(p)
}

// Items returns fixed items then custom items.
func (p MaintenancePlan) Items() []MaintenanceItem {
	items := make([]MaintenanceItem, 0, len(p.Fixed)+len(p.Custom))
	items = append(items, p.Fixed...)
	return append(items, p.Custom...)
}

// FixedIndex returns the position of the fixed item with key.
func (p MaintenancePlan) FixedIndex(key string) (int, bool) {
	for i, it := range p.Fixed {
		if it.Key == key {
			return i, true
		}
	}
	return -1, false
}

// CustomIndex returns the position of the custom item with id.
func (p MaintenancePlan) CustomIndex(id string) (int, bool) {
	for i, it := range p.Custom {
		if it.ID == id {
			return i, true
		}
	}
	return -1, false
}
