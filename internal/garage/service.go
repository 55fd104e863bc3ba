// Package garage owns the persisted state of the tracked vehicle and serves
// every read and edit the app makes.
//
// Each edit is a read-modify-write of one whole record. There is a single
// writer and the last write wins. Reads that fail fall back to the value
// last read successfully; writes that fail are reported and change nothing.
package garage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Driverassistance/driveassist-app/internal/db"
	"github.com/Driverassistance/driveassist-app/internal/i18n"
	"github.com/Driverassistance/driveassist-app/internal/metrics"
)

// Clock returns the current time.
type Clock func() time.Time

var (
	ErrPersistence = errors.New("persistence failure")
	ErrNotFound    = errors.New("maintenance item not found")
)

// ValidationError rejects a save. Nothing is written when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Service is the explicit owner of profile, plan, schedule, thresholds,
// pins, checklist, expenses and parts request state.
type Service struct {
	store   db.Store
	catalog i18n.Catalog
	now     Clock
	metrics *metrics.Recorder

	mu       sync.Mutex
	lastGood map[string][]byte
}

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) { s.now = c }
}

func WithCatalog(c i18n.Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService wires a Service over store. Defaults: wall clock, ru catalog,
// no metrics.
func NewService(store db.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		catalog:  i18n.Match(),
		now:      time.Now,
		lastGood: map[string][]byte{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the label catalog in use.
func (s *Service) Catalog() i18n.Catalog {
	return s.catalog
}

type encoder interface {
	Encode() ([]byte, error)
}

// read loads key for display. A store failure is logged and the last good
// value (or nil, meaning defaults) is returned instead.
func (s *Service) read(ctx context.Context, key string) ([]byte, error) {
	raw, ok, err := s.get(ctx, key)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		s.metrics.StoreError("get")
		log.WithFields(log.Fields{"key": key}).WithError(err).Warn("store read failed, using last good value")
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.lastGood[key], nil
	}
	if !ok {
		raw = nil
	}
	s.remember(key, raw)
	return raw, nil
}

// readForUpdate loads key ahead of a write. Failures are returned.
func (s *Service) readForUpdate(ctx context.Context, key string) ([]byte, error) {
	raw, ok, err := s.get(ctx, key)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		s.metrics.StoreError("get")
		log.WithFields(log.Fields{"key": key}).WithError(err).Error("store read failed")
		return nil, fmt.Errorf("%w: read %s: %w", ErrPersistence, key, err)
	}
	if !ok {
		raw = nil
	}
	s.remember(key, raw)
	return raw, nil
}

// get loads key, falling back to the legacy combined record when key was
// never written.
func (s *Service) get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil || ok {
		return raw, ok, err
	}
	legacy, has := db.LegacySource(key)
	if !has {
		return nil, false, nil
	}
	return s.store.Get(ctx, legacy)
}

func (s *Service) write(ctx context.Context, key string, value []byte) error {
	err := s.store.Put(ctx, key, value)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		s.metrics.StoreError("put")
		log.WithFields(log.Fields{"key": key}).WithError(err).Error("store write failed")
		return fmt.Errorf("%w: write %s: %w", ErrPersistence, key, err)
	}
	s.remember(key, value)
	return nil
}

func (s *Service) writeRecord(ctx context.Context, key string, rec encoder) error {
	raw, err := rec.Encode()
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.write(ctx, key, raw)
}

func (s *Service) remember(key string, raw []byte) {
	s.mu.Lock()
	s.lastGood[key] = raw
	s.mu.Unlock()
}
