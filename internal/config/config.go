// Package config loads the server configuration from the environment.
//
// An optional .env file in the working directory is read first (godotenv),
// then envconfig fills Config from the process environment. Variables that
// are already set win over the .env file, so deployments can override
// anything without editing it.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoreSQLite    = "sqlite"
	StoreMongo     = "mongo"
	StoreFirestore = "firestore"
)

type Config struct {
	Port     int        `envconfig:"PORT" default:"8080"`
	LogLevel slog.Level `envconfig:"LOG_LEVEL" default:"debug"`

	StoreDriver   string `envconfig:"STORE_DRIVER" default:"sqlite"`
	DBPath        string `envconfig:"DB_PATH" default:"data/mentorchat.db"`
	MongoURI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"mentorchat"`
	// FirestoreProjectID may stay empty on GCP, where the client detects it.
	FirestoreProjectID string `envconfig:"FIRESTORE_PROJECT_ID"`

	// JWTSecret signs session cookies. Generate one with:
	//   JWT_SECRET=$(openssl rand -hex 32)
	JWTSecret  string        `envconfig:"JWT_SECRET"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"15m"`

	AuthIssuerURL    string `envconfig:"AUTH_ISSUER_URL"`
	AuthClientID     string `envconfig:"AUTH_CLIENT_ID"`
	AuthClientSecret string `envconfig:"AUTH_CLIENT_SECRET"`
	// AuthRedirectURL defaults to http://localhost:{PORT}/auth/callback.
	AuthRedirectURL string `envconfig:"AUTH_REDIRECT_URL"`

	SigninTheme string `envconfig:"SIGNIN_THEME" default:"LoginTheme"`
	SigninLogo  string `envconfig:"SIGNIN_LOGO"`
}

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: reading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	if cfg.AuthRedirectURL == "" {
		cfg.AuthRedirectURL = fmt.Sprintf("http://localhost:%d/auth/callback", cfg.Port)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}
	switch c.StoreDriver {
	case StoreSQLite, StoreMongo, StoreFirestore:
	default:
		return fmt.Errorf("config: STORE_DRIVER must be %q, %q or %q, got %q",
			StoreSQLite, StoreMongo, StoreFirestore, c.StoreDriver)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// AuthEnabled reports whether sign-in can be offered. Without a session
// secret or a provider to talk to, the server runs with auth routes off.
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != "" && c.AuthIssuerURL != "" && c.AuthClientID != ""
}
