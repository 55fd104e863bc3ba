package garage

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Driverassistance/driveassist-app/internal/db"
	"github.com/Driverassistance/driveassist-app/internal/models"
	"github.com/Driverassistance/driveassist-app/internal/onboarding"
)

// Onboarding evaluates the checklist gate at the current time.
func (s *Service) Onboarding(ctx context.Context) (onboarding.View, error) {
	checklist, err := s.read(ctx, db.KeyChecklist)
	if err != nil {
		return onboarding.View{}, err
	}
	snooze, err := s.read(ctx, db.KeyChecklistSnooze)
	if err != nil {
		return onboarding.View{}, err
	}
	g := onboarding.NewGate(models.DecodeChecklist(checklist), models.DecodeSnooze(snooze), s.now())
	return g.View(s.catalog), nil
}

func (s *Service) gateForUpdate(ctx context.Context) (*onboarding.Gate, error) {
	checklist, err := s.readForUpdate(ctx, db.KeyChecklist)
	if err != nil {
		return nil, err
	}
	snooze, err := s.readForUpdate(ctx, db.KeyChecklistSnooze)
	if err != nil {
		return nil, err
	}
	return onboarding.NewGate(models.DecodeChecklist(checklist), models.DecodeSnooze(snooze), s.now()), nil
}

// MarkChecklist sets one checklist step.
func (s *Service) MarkChecklist(ctx context.Context, item models.ChecklistItem, done bool) (onboarding.View, error) {
	if !models.IsValidChecklistItem(item) {
		return onboarding.View{}, onboarding.ErrUnknownChecklistItem
	}
	g, err := s.gateForUpdate(ctx)
	if err != nil {
		return onboarding.View{}, err
	}
	if _, err := g.Mark(item, done, s.now()); err != nil {
		return onboarding.View{}, err
	}
	if err := s.writeRecord(ctx, db.KeyChecklist, g.Checklist); err != nil {
		return onboarding.View{}, err
	}
	return g.View(s.catalog), nil
}

// SnoozeChecklist hides the checklist for d.
func (s *Service) SnoozeChecklist(ctx context.Context, d time.Duration) (onboarding.View, error) {
	g, err := s.gateForUpdate(ctx)
	if err != nil {
		return onboarding.View{}, err
	}
	g.Snooze(d, s.now())
	if err := s.write(ctx, db.KeyChecklistSnooze, models.EncodeSnooze(*g.SnoozeUntil)); err != nil {
		return onboarding.View{}, err
	}
	log.WithFields(log.Fields{"until": g.SnoozeUntil.UTC().Format(time.RFC3339)}).Info("checklist snoozed")
	return g.View(s.catalog), nil
}

// CompleteChecklist marks every step done.
func (s *Service) CompleteChecklist(ctx context.Context) (onboarding.View, error) {
	g, err := s.gateForUpdate(ctx)
	if err != nil {
		return onboarding.View{}, err
	}
	g.MarkAllDone(s.now())
	if err := s.writeRecord(ctx, db.KeyChecklist, g.Checklist); err != nil {
		return onboarding.View{}, err
	}
	return g.View(s.catalog), nil
}
