// Package onboarding decides whether the four-step setup checklist is shown.
package onboarding

import (
	"errors"
	"time"

	"github.com/Driverassistance/driveassist-app/internal/i18n"
	"github.com/Driverassistance/driveassist-app/internal/models"
)

// DefaultSnooze is how long "remind me later" hides the checklist.
const DefaultSnooze = 180 * time.Minute

var ErrUnknownChecklistItem = errors.New("unknown checklist item")

// State of the gate.
type State int

const (
	Hidden State = iota
	Visible
)

func (s State) String() string {
	if s == Visible {
		return "visible"
	}
	return "hidden"
}

// Gate is the Hidden/Visible state machine over a checklist and an optional
// snooze deadline. It is not safe for concurrent use.
type Gate struct {
	Checklist   models.ChecklistState
	SnoozeUntil *time.Time
	state       State
}

// NewGate restores a gate from stored state and evaluates it at now.
func NewGate(c models.ChecklistState, snoozeUntil *time.Time, now time.Time) *Gate {
	g := &Gate{Checklist: c, SnoozeUntil: snoozeUntil}
	g.Evaluate(now)
	return g
}

// State returns the state from the last evaluation.
func (g *Gate) State() State {
	return g.state
}

// Evaluate recomputes visibility. It is called on every screen focus.
func (g *Gate) Evaluate(now time.Time) State {
	g.state = Hidden
	if !g.Checklist.AllDone() && (g.SnoozeUntil == nil || !now.Before(*g.SnoozeUntil)) {
		g.state = Visible
	}
	return g.state
}

// Mark sets one checklist flag.
func (g *Gate) Mark(item models.ChecklistItem, done bool, now time.Time) (State, error) {
	if !models.IsValidChecklistItem(item) {
		return g.state, ErrUnknownChecklistItem
	}
	g.Checklist.Set(item, done)
	return g.Evaluate(now), nil
}

// Snooze hides the checklist until now+d. A non-positive d uses DefaultSnooze.
func (g *Gate) Snooze(d time.Duration, now time.Time) State {
	if d <= 0 {
		d = DefaultSnooze
	}
	until := now.Add(d)
	g.SnoozeUntil = &until
	return g.Evaluate(now)
}

// MarkAllDone completes every step.
func (g *Gate) MarkAllDone(now time.Time) State {
	g.Checklist = models.CompletedChecklist()
	return g.Evaluate(now)
}

// Item is one checklist row.
type Item struct {
	Key   models.ChecklistItem `json:"key"`
	Label string               `json:"label"`
	Done  bool                 `json:"done"`
}

// View is the renderer payload.
type View struct {
	Visible bool   `json:"visible"`
	Items   []Item `json:"items"`
}

// View renders the last evaluated state.
func (g *Gate) View(cat i18n.Catalog) View {
	items := make([]Item, 0, len(models.ChecklistItems))
	for _, key := range models.ChecklistItems {
		items = append(items, Item{Key: key, Label: cat.ChecklistLabel(key), Done: g.Checklist.Done(key)})
	}
	return View{Visible: g.state == Visible, Items: items}
}
