package garage

import (
	"context"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Driverassistance/driveassist-app/internal/db"
	"github.com/Driverassistance/driveassist-app/internal/models"
	"github.com/Driverassistance/driveassist-app/internal/status"
	"github.com/Driverassistance/driveassist-app/internal/vin"
)

// Profile returns the stored vehicle profile.
func (s *Service) Profile(ctx context.Context) (models.VehicleProfile, error) {
	raw, err := s.read(ctx, db.KeyProfile)
	if err != nil {
		return models.VehicleProfile{}, err
	}
	return models.DecodeProfile(raw), nil
}

// SaveProfile validates and stores draft. The stored document photo is kept;
// it is managed by AttachDocument and RemoveDocument.
func (s *Service) SaveProfile(ctx context.Context, draft models.VehicleProfile) (models.VehicleProfile, error) {
	p, err := cleanProfile(draft)
	if err != nil {
		return models.VehicleProfile{}, err
	}

	raw, err := s.readForUpdate(ctx, db.KeyProfile)
	if err != nil {
		return models.VehicleProfile{}, err
	}
	p.DocumentPhotoRef = models.DecodeProfile(raw).DocumentPhotoRef

	if err := s.writeRecord(ctx, db.KeyProfile, p); err != nil {
		return models.VehicleProfile{}, err
	}
	log.WithFields(log.Fields{"brand": p.Brand, "odometer_km": p.OdometerKm}).Info("profile saved")
	return p, nil
}

func cleanProfile(p models.VehicleProfile) (models.VehicleProfile, error) {
	p.Brand = strings.TrimSpace(p.Brand)
	p.Model = strings.TrimSpace(p.Model)
	p.Year = strings.TrimSpace(p.Year)
	p.Plate = strings.TrimSpace(p.Plate)

	p.VIN = vin.Normalize(p.VIN)
	if p.VIN != "" {
		if err := vin.Validate(p.VIN); err != nil {
			return p, &ValidationError{Field: "vin", Reason: err.Error()}
		}
	}

	km := strings.Join(strings.Fields(p.OdometerKm), "")
	if km == "" {
		return p, &ValidationError{Field: "odometerKm", Reason: "required"}
	}
	for _, r := range km {
		if r < '0' || r > '9' {
			return p, &ValidationError{Field: "odometerKm", Reason: "digits only"}
		}
	}
	n, ok := status.ParseKm(km)
	if !ok {
		return p, &ValidationError{Field: "odometerKm", Reason: "out of range"}
	}
	p.OdometerKm = strconv.Itoa(n)

	if p.Brand == "" {
		if brand, ok := vin.GuessBrand(p.VIN); ok {
			p.Brand = brand
		}
	}
	return p, nil
}

// AttachDocument stores a reference to the registration certificate photo.
func (s *Service) AttachDocument(ctx context.Context, ref string) (models.VehicleProfile, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.VehicleProfile{}, &ValidationError{Field: "documentPhotoRef", Reason: "required"}
	}
	return s.setDocument(ctx, ref)
}

// RemoveDocument clears the document photo reference.
func (s *Service) RemoveDocument(ctx context.Context) (models.VehicleProfile, error) {
	return s.setDocument(ctx, "")
}

func (s *Service) setDocument(ctx context.Context, ref string) (models.VehicleProfile, error) {
	raw, err := s.readForUpdate(ctx, db.KeyProfile)
	if err != nil {
		return models.VehicleProfile{}, err
	}
	p := models.DecodeProfile(raw)
	p.DocumentPhotoRef = ref
	if err := s.writeRecord(ctx, db.KeyProfile, p); err != nil {
		return models.VehicleProfile{}, err
	}
	return p, nil
}
