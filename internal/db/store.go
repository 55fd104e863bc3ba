package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Storage keys. Each holds one JSON document.
const (
	KeyProfile         = "mycar/profile"
	KeyPlan            = "mycar/plan"
	KeySchedule        = "mycar/schedule"
	KeyThresholds      = "mycar/thresholds"
	KeyPins            = "mycar/pins"
	KeyChecklist       = "home/checklist/v1"
	KeyChecklistSnooze = "home/checklist/nextRemind"
	KeyExpenses        = "expenses/v1"
	KeyPartsRequests   = "mycar/parts/requests"

	// KeyLegacyService is the first release's combined record holding the
	// plan, schedule and thresholds in one document.
	KeyLegacyService = "mycar/service"
)

// LegacySource returns the older key a record was kept under, if any.
func LegacySource(key string) (string, bool) {
	switch key {
	case KeyPlan, KeySchedule, KeyThresholds:
		return KeyLegacyService, true
	default:
		return "", false
	}
}

var ErrStoreClosed = errors.New("store is closed")

// Store defines the key-value operations the app persists through.
// Get reports false for a key that was never written.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close(ctx context.Context) error
}

// Options selects and configures a Store driver.
type Options struct {
	Driver     string
	SQLitePath string
	MongoURI   string
	MongoDB    string
}

// Open connects the configured driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Driver) {
	case "", "sqlite":
		return OpenSQLite(ctx, opts.SQLitePath)
	case "mongo", "mongodb":
		client, err := ConnectMongo(opts.MongoURI)
		if err != nil {
			return nil, err
		}
		return NewMongoStore(client, opts.MongoDB), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
