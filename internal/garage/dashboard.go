package garage

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Driverassistance/driveassist-app/internal/alerts"
	"github.com/Driverassistance/driveassist-app/internal/db"
	"github.com/Driverassistance/driveassist-app/internal/models"
	"github.com/Driverassistance/driveassist-app/internal/pins"
)

// Dashboard is the payload of the main screen. Summary holds the pinned
// rows; Items holds every trackable item.
type Dashboard struct {
	Banner  alerts.Banner `json:"banner"`
	Summary []pins.Row    `json:"summary"`
	Items   []pins.Row    `json:"items"`
}

// snapshot loads every record the dashboard reads, concurrently.
func (s *Service) snapshot(ctx context.Context) (pins.Input, error) {
	var in pins.Input
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		raw, err := s.read(gctx, db.KeyProfile)
		in.Profile = models.DecodeProfile(raw)
		return err
	})
	g.Go(func() error {
		raw, err := s.read(gctx, db.KeyPlan)
		in.Plan = models.DecodePlan(raw)
		return err
	})
	g.Go(func() error {
		raw, err := s.read(gctx, db.KeySchedule)
		in.Schedule = models.DecodeSchedule(raw)
		return err
	})
	g.Go(func() error {
		raw, err := s.read(gctx, db.KeyThresholds)
		in.Thresholds = models.DecodeThresholds(raw)
		return err
	})
	g.Go(func() error {
		raw, err := s.read(gctx, db.KeyPins)
		in.Pins = models.DecodePins(raw)
		return err
	})

	if err := g.Wait(); err != nil {
		return pins.Input{}, err
	}
	return in, nil
}

// Dashboard recomputes the banner and every status from current state.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	in, err := s.snapshot(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	today := s.now()

	all := in
	all.Pins = models.DashboardPins(pins.Universe(in.Plan))
	items := pins.Render(all, today, s.catalog)
	for _, r := range items {
		s.metrics.StatusComputed(string(r.Kind), string(r.Severity))
	}

	return Dashboard{
		Banner:  alerts.Aggregate(in.Schedule, in.Thresholds, today, s.catalog),
		Summary: pins.Render(in, today, s.catalog),
		Items:   items,
	}, nil
}

// Banner computes only the dashboard headline.
func (s *Service) Banner(ctx context.Context) (alerts.Banner, error) {
	sched, err := s.Schedule(ctx)
	if err != nil {
		return alerts.Banner{}, err
	}
	th, err := s.Thresholds(ctx)
	if err != nil {
		return alerts.Banner{}, err
	}
	return alerts.Aggregate(sched, th, s.now(), s.catalog), nil
}
