package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// envFile is loaded before reading variables; a missing file is ignored.
var envFile = ".env"

// parseEnv overlays Config with environment variables. Values already set
// in the process environment win over the .env file.
//
// Variables:
//
//	AUTHKEEPER_ADDR            bind address (PORT=3000 is accepted too)
//	AUTHKEEPER_ENV             development | production
//	AUTHKEEPER_SECRET_KEY      token signing secret (JWT_SECRET is accepted too)
//	AUTHKEEPER_TOKEN_TTL       token lifetime, e.g. "1h"
//	AUTHKEEPER_STORAGE         memory | postgres | sqlite
//	AUTHKEEPER_DATABASE_DSN    DSN or SQLite path
//	AUTHKEEPER_PASSWORD_HASH   bcrypt | argon2id
//	AUTHKEEPER_LOG_FORMAT      json | console
//
// Panics if the .env file exists but cannot be parsed, or a duration is
// malformed.
func parseEnv(cfg *Config) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.EndpointAddr = ":" + v
	}
	setString(&cfg.EndpointAddr, "AUTHKEEPER_ADDR")
	setString(&cfg.Environment, "AUTHKEEPER_ENV")
	setString(&cfg.SecretKey, "JWT_SECRET")
	setString(&cfg.SecretKey, "AUTHKEEPER_SECRET_KEY")
	setString(&cfg.StorageBackend, "AUTHKEEPER_STORAGE")
	setString(&cfg.DatabaseDSN, "AUTHKEEPER_DATABASE_DSN")
	setString(&cfg.PasswordHashAlgorithm, "AUTHKEEPER_PASSWORD_HASH")
	setString(&cfg.LogFormat, "AUTHKEEPER_LOG_FORMAT")

	if v := os.Getenv("AUTHKEEPER_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.AccessTokenValidityDuration = d
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
