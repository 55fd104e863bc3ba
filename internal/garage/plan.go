package garage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/Driverassistance/driveassist-app/internal/db"
	"github.com/Driverassistance/driveassist-app/internal/models"
)

// ItemInput carries the editable fields of a maintenance item. Name and
// Note are ignored for fixed items.
type ItemInput struct {
	Name       string `json:"name"`
	LastKm     string `json:"lastKm"`
	IntervalKm string `json:"intervalKm"`
	Note       string `json:"note"`
}

// Plan returns the maintenance plan. Custom items that were stored without
// a usable id are written back with the id they were given.
func (s *Service) Plan(ctx context.Context) (models.MaintenancePlan, error) {
	raw, err := s.read(ctx, db.KeyPlan)
	if err != nil {
		return models.MaintenancePlan{}, err
	}
	plan, repaired := models.DecodePlanRepaired(raw)
	if repaired {
		if err := s.writeRecord(ctx, db.KeyPlan, plan); err != nil {
			log.WithError(err).Warn("could not persist repaired custom item ids")
		}
	}
	return plan, nil
}

func (s *Service) planForUpdate(ctx context.Context) (models.MaintenancePlan, error) {
	raw, err := s.readForUpdate(ctx, db.KeyPlan)
	if err != nil {
		return models.MaintenancePlan{}, err
	}
	return models.DecodePlan(raw), nil
}

// UpdateFixed sets the service history of a catalog item.
func (s *Service) UpdateFixed(ctx context.Context, key string, in ItemInput) (models.MaintenanceItem, error) {
	if !models.IsFixedKey(key) {
		return models.MaintenanceItem{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	plan, err := s.planForUpdate(ctx)
	if err != nil {
		return models.MaintenanceItem{}, err
	}
	i, _ := plan.FixedIndex(key)
	plan.Fixed[i].LastKm = strings.TrimSpace(in.LastKm)
	plan.Fixed[i].IntervalKm = strings.TrimSpace(in.IntervalKm)

	if err := s.writeRecord(ctx, db.KeyPlan, plan); err != nil {
		return models.MaintenanceItem{}, err
	}
	return plan.Fixed[i], nil
}

// AddCustom appends a user-defined item with a fresh id.
func (s *Service) AddCustom(ctx context.Context, in ItemInput) (models.MaintenanceItem, error) {
	plan, err := s.planForUpdate(ctx)
	if err != nil {
		return models.MaintenanceItem{}, err
	}
	item := customItem(uuid.NewString(), in)
	plan.Custom = append(plan.Custom, item)

	if err := s.writeRecord(ctx, db.KeyPlan, plan); err != nil {
		return models.MaintenanceItem{}, err
	}
	log.WithFields(log.Fields{"id": item.ID, "name": item.Name}).Info("custom item added")
	return item, nil
}

// UpdateCustom replaces the fields of a custom item.
func (s *Service) UpdateCustom(ctx context.Context, id string, in ItemInput) (models.MaintenanceItem, error) {
	plan, err := s.planForUpdate(ctx)
	if err != nil {
		return models.MaintenanceItem{}, err
	}
	i, ok := plan.CustomIndex(id)
	if !ok {
		return models.MaintenanceItem{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	plan.Custom[i] = customItem(id, in)

	if err := s.writeRecord(ctx, db.KeyPlan, plan); err != nil {
		return models.MaintenanceItem{}, err
	}
	return plan.Custom[i], nil
}

// RemoveCustom deletes a custom item and drops its dashboard pin. The plan
// is written first; if the pin write then fails the error is returned and a
// stale pin stays behind. Render and Prune skip pins with no item, so it is
// never shown and the next toggle or prune clears it.
func (s *Service) RemoveCustom(ctx context.Context, id string) error {
	plan, err := s.planForUpdate(ctx)
	if err != nil {
		return err
	}
	i, ok := plan.CustomIndex(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	pinID := plan.Custom[i].PinID()
	plan.Custom = append(plan.Custom[:i:i], plan.Custom[i+1:]...)

	if err := s.writeRecord(ctx, db.KeyPlan, plan); err != nil {
		return err
	}

	current, err := s.pinsForUpdate(ctx)
	if err != nil {
		return err
	}
	if current.Has(pinID) {
		if err := s.writeRecord(ctx, db.KeyPins, current.Without(pinID)); err != nil {
			return err
		}
	}
	log.WithFields(log.Fields{"id": id}).Info("custom item removed")
	return nil
}

// SaveNotes stores the free-form service notes.
func (s *Service) SaveNotes(ctx context.Context, notes string) (models.MaintenancePlan, error) {
	plan, err := s.planForUpdate(ctx)
	if err != nil {
		return models.MaintenancePlan{}, err
	}
	plan.Notes = notes
	if err := s.writeRecord(ctx, db.KeyPlan, plan); err != nil {
		return models.MaintenancePlan{}, err
	}
	return plan, nil
}

func customItem(id string, in ItemInput) models.MaintenanceItem {
	return models.MaintenanceItem{
		Kind:       models.ItemCustom,
		ID:         id,
		Name:       strings.TrimSpace(in.Name),
		LastKm:     strings.TrimSpace(in.LastKm),
		IntervalKm: strings.TrimSpace(in.IntervalKm),
		Note:       strings.TrimSpace(in.Note),
	}
}
