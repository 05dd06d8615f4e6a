// Package config handles configuration for the auth server, including
// defaults, environment, JSON overlay and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// DevSecretKey is the signing secret used when none is configured. It is
// only accepted outside production and is logged as a warning.
const DevSecretKey = "dev-only-secret-key-change-me"

const minProductionSecretLength = 32

// Config holds runtime settings for the auth server.
//
// Fields:
//   - EndpointAddr: bind address of the HTTP API.
//   - Environment: "development" or "production". Production refuses the dev secret.
//   - SecretKey: HMAC secret for signing tokens (HS256).
//   - AccessTokenValidityDuration: lifetime of issued tokens.
//   - StorageBackend: "memory", "postgres" or "sqlite".
//   - DatabaseDSN: PostgreSQL DSN (pgx) or SQLite file path.
//   - PasswordHashAlgorithm / BcryptCost: password hasher selection.
//   - LogFormat: "json" (slog) or "console" (zerolog).
//   - ShutdownTimeout: grace period for in-flight requests on stop.
type Config struct {
	EndpointAddr                string
	Environment                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	StorageBackend              string
	DatabaseDSN                 string
	PasswordHashAlgorithm       string
	BcryptCost                  int
	LogFormat                   string
	ShutdownTimeout             time.Duration
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":3000"
	c.Environment = EnvDevelopment
	c.SecretKey = DevSecretKey
	c.AccessTokenValidityDuration = 1 * time.Hour
	c.StorageBackend = "memory"
	c.DatabaseDSN = ""
	c.PasswordHashAlgorithm = "bcrypt"
	c.BcryptCost = 10
	c.LogFormat = "json"
	c.ShutdownTimeout = 5 * time.Second
}

// LoadConfig builds a Config by applying defaults, then the environment
// (including an optional .env file), then an optional JSON file and finally
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// IsDevSecret reports whether the built-in development secret is in use.
func (c *Config) IsDevSecret() bool {
	return c.SecretKey == DevSecretKey
}

var (
	ErrEmptySecret        = errors.New("secret key is empty")
	ErrDevSecretInProd    = errors.New("development secret key used in production")
	ErrShortProdSecret    = fmt.Errorf("secret key must be at least %d bytes in production", minProductionSecretLength)
	ErrInvalidTokenTTL    = errors.New("access token validity must be positive")
	ErrMissingDSN         = errors.New("database DSN is required for the postgres backend")
	ErrUnknownEnvironment = errors.New("unknown environment")
)

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		return fmt.Errorf("%w: %q", ErrUnknownEnvironment, c.Environment)
	}
	if c.SecretKey == "" {
		return ErrEmptySecret
	}
	if c.Environment == EnvProduction {
		if c.IsDevSecret() {
			return ErrDevSecretInProd
		}
		if len(c.SecretKey) < minProductionSecretLength {
			return ErrShortProdSecret
		}
	}
	if c.AccessTokenValidityDuration <= 0 {
		return ErrInvalidTokenTTL
	}
	if c.StorageBackend == "postgres" && c.DatabaseDSN == "" {
		return ErrMissingDSN
	}
	return nil
}
