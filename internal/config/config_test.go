package config

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOCALE", "STORE_DRIVER", "SQLITE_PATH", "JWT_SECRET", "JWT_EXPIRY",
		"OWNER_PASSCODE_HASH", "LOG_LEVEL", "LOG_FORMAT", "MQTT_BROKER", "MQTT_TOPIC", "RATE_LIMIT_PER_MINUTE"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "ru", cfg.Locale)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "driveassist.db", cfg.Store.SQLitePath)
	assert.Equal(t, defaultJWTSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenExpiry)
	assert.Empty(t, cfg.Auth.PasscodeHash)
	assert.Equal(t, 120, cfg.Auth.RateLimit)
	assert.Empty(t, cfg.MQTT.Broker)
	assert.Equal(t, "driveassist/reminders", cfg.MQTT.Topic)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("MONGO_DB", "garage")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("LOCALE", "en")
	t.Setenv("MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "10")

	cfg := FromEnv()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "mongo", cfg.Store.Driver)
	assert.Equal(t, "garage", cfg.Store.MongoDB)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenExpiry)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, 10, cfg.Auth.RateLimit)
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "tomorrow")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "-3")

	cfg := FromEnv()
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenExpiry)
	assert.Equal(t, 120, cfg.Auth.RateLimit)
}

func TestConfigureLogging(t *testing.T) {
	defer log.SetLevel(log.GetLevel())
	defer log.SetFormatter(log.StandardLogger().Formatter)

	LogConfig{Level: "debug", Format: "json"}.ConfigureLogging()
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	LogConfig{Level: "loud", Format: "text"}.ConfigureLogging()
	assert.Equal(t, log.InfoLevel, log.GetLevel())
	assert.IsType(t, &log.TextFormatter{}, log.StandardLogger().Formatter)
}
