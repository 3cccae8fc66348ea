package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every process-level knob. All of it comes from the
// environment; a local .env file is loaded first when present.
type Config struct {
	// HTTP_ADDR is the listen address of the API server.
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// DB_URL is the Postgres DSN.
	DBURL string `envconfig:"DB_URL" required:"true"`

	// REDIS_URL backs both the cache and the task queue.
	RedisURL string `envconfig:"REDIS_URL"`

	// IDENTITY_BASE_URL is the user/identity provider the directory
	// resolves display names and roles from.
	IdentityBaseURL string `envconfig:"IDENTITY_BASE_URL" required:"true"`

	// ARCHIVE_STALE_AFTER_DAYS controls the background sweep that flags
	// long-inactive threads as archived. Zero uses the built-in default.
	ArchiveStaleAfterDays int `envconfig:"ARCHIVE_STALE_AFTER_DAYS"`

	// ARCHIVE_SWEEP_ENABLED turns the periodic sweep task on.
	ArchiveSweepEnabled bool `envconfig:"ARCHIVE_SWEEP_ENABLED" default:"true"`

	// LOG_DEBUG lowers the log level to debug.
	LogDebug bool `envconfig:"LOG_DEBUG" default:"false"`
}

// Load reads the .env file (best effort) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
