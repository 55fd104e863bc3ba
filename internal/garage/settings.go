package garage

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Driverassistance/driveassist-app/internal/db"
	"github.com/Driverassistance/driveassist-app/internal/models"
	"github.com/Driverassistance/driveassist-app/internal/pins"
)

// Schedule returns the calendar due dates.
func (s *Service) Schedule(ctx context.Context) (models.ScheduleDates, error) {
	raw, err := s.read(ctx, db.KeySchedule)
	if err != nil {
		return models.ScheduleDates{}, err
	}
	return models.DecodeSchedule(raw), nil
}

// SaveSchedule derives the coverage end dates and stores the result.
// A term only matters next to a start date: there it must not be negative
// (0 makes the end equal the start). Without a start a negative term is
// replaced by the default and the entered end is kept.
func (s *Service) SaveSchedule(ctx context.Context, draft models.ScheduleDates) (models.ScheduleDates, error) {
	var err error
	if draft.InsuranceTermMonths, err = checkTerm("insuranceTermMonths", draft.InsuranceStart, draft.InsuranceTermMonths); err != nil {
		return models.ScheduleDates{}, err
	}
	if draft.TechnicalInspectionTermMonths, err = checkTerm("technicalInspectionTermMonths", draft.TechnicalInspectionStart, draft.TechnicalInspectionTermMonths); err != nil {
		return models.ScheduleDates{}, err
	}
	sched := draft.Derive()
	if err := s.writeRecord(ctx, db.KeySchedule, sched); err != nil {
		return models.ScheduleDates{}, err
	}
	log.WithFields(log.Fields{
		"insurance_end":            sched.InsuranceEnd,
		"technical_inspection_end": sched.TechnicalInspectionEnd,
	}).Info("schedule saved")
	return sched, nil
}

func checkTerm(field, start string, months int) (int, error) {
	if months >= 0 {
		return months, nil
	}
	if strings.TrimSpace(start) != "" {
		return 0, &ValidationError{Field: field, Reason: "must not be negative"}
	}
	return models.DefaultTermMonths, nil
}

// Thresholds returns the reminder settings.
func (s *Service) Thresholds(ctx context.Context) (models.Thresholds, error) {
	raw, err := s.read(ctx, db.KeyThresholds)
	if err != nil {
		return models.Thresholds{}, err
	}
	return models.DecodeThresholds(raw), nil
}

// SaveThresholds stores the reminder settings.
func (s *Service) SaveThresholds(ctx context.Context, th models.Thresholds) (models.Thresholds, error) {
	if th.RemindDays < 0 {
		return models.Thresholds{}, &ValidationError{Field: "remindDays", Reason: "must not be negative"}
	}
	if th.RemindKm < 0 {
		return models.Thresholds{}, &ValidationError{Field: "remindKm", Reason: "must not be negative"}
	}
	if err := s.writeRecord(ctx, db.KeyThresholds, th); err != nil {
		return models.Thresholds{}, err
	}
	return th, nil
}

// Pins returns the dashboard pin set.
func (s *Service) Pins(ctx context.Context) (models.DashboardPins, error) {
	raw, err := s.read(ctx, db.KeyPins)
	if err != nil {
		return nil, err
	}
	return models.DecodePins(raw), nil
}

func (s *Service) pinsForUpdate(ctx context.Context) (models.DashboardPins, error) {
	raw, err := s.readForUpdate(ctx, db.KeyPins)
	if err != nil {
		return nil, err
	}
	return models.DecodePins(raw), nil
}

// TogglePin flips membership of id in the pin set. Ids that name nothing
// in the current plan are rejected with pins.ErrUnknownItem.
func (s *Service) TogglePin(ctx context.Context, id string) (models.DashboardPins, error) {
	plan, err := s.planForUpdate(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.pinsForUpdate(ctx)
	if err != nil {
		return nil, err
	}
	next, err := pins.Toggle(current, id, plan)
	if err != nil {
		return current, err
	}
	if err := s.writeRecord(ctx, db.KeyPins, next); err != nil {
		return nil, err
	}
	return next, nil
}
