// Package config reads runtime settings from the environment. A .env file
// in the working directory, when present, is loaded first.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/Driverassistance/driveassist-app/internal/db"
	"github.com/Driverassistance/driveassist-app/internal/notify"
)

const defaultJWTSecret = "default-secret-key-change-in-production"

type Config struct {
	Port   string
	Locale string
	Store  db.Options
	Auth   AuthConfig
	Log    LogConfig
	MQTT   notify.Options
}

type AuthConfig struct {
	JWTSecret    string
	TokenExpiry  time.Duration
	PasscodeHash string
	RateLimit    int
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env (if any) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("could not read .env")
	}
	return FromEnv()
}

// FromEnv reads the process environment only.
func FromEnv() Config {
	return Config{
		Port:   getEnv("PORT", "8080"),
		Locale: getEnv("LOCALE", "ru"),
		Store: db.Options{
			Driver:     getEnv("STORE_DRIVER", "sqlite"),
			SQLitePath: getEnv("SQLITE_PATH", db.DefaultSQLitePath),
			MongoURI:   getEnv("MONGO_URI", db.DefaultMongoURI),
			MongoDB:    getEnv("MONGO_DB", db.DefaultMongoDB),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", defaultJWTSecret),
			TokenExpiry:  getDuration("JWT_EXPIRY", 24*time.Hour),
			PasscodeHash: os.Getenv("OWNER_PASSCODE_HASH"),
			RateLimit:    getInt("RATE_LIMIT_PER_MINUTE", 120),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		MQTT: notify.Options{
			Broker:   os.Getenv("MQTT_BROKER"),
			Topic:    getEnv("MQTT_TOPIC", notify.DefaultTopic),
			ClientID: getEnv("MQTT_CLIENT_ID", notify.DefaultClientID),
		},
	}
}

// ConfigureLogging applies level and format to the standard logrus logger.
func (c LogConfig) ConfigureLogging() {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		log.WithField("level", c.Level).Warn("unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if strings.EqualFold(c.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
		log.WithField(key, v).Warn("invalid duration, using default")
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
		log.WithField(key, v).Warn("invalid number, using default")
	}
	return def
}
