// Package config reads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultPort               = "8080"
	defaultLoginAttemptLimit  = 10
	defaultLoginAttemptWindow = 15 * time.Minute
)

// Config carries everything main needs to wire the service.
type Config struct {
	DatabaseURL string

	// JWTSecret enables HS256 issue and verify; JWKSURL switches token
	// verification to RS256 against a remote key set. Exactly one is set.
	JWTSecret string
	JWKSURL   string
	// JWTTTL adds an expiry to issued tokens. Zero issues unbounded tokens.
	JWTTTL time.Duration

	S3Bucket  string
	AWSRegion string

	// RedisURL enables the login throttle when set.
	RedisURL           string
	LoginAttemptLimit  int64
	LoginAttemptWindow time.Duration

	MaxUploadBytes int64
	PageSize       int
	Port           string
	Debug          bool
}

// FromEnv builds a Config from environment variables, validating that the
// required ones are present.
func FromEnv() (Config, error) {
	cfg := Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWKSURL:            os.Getenv("JWKS_URL"),
		S3Bucket:           os.Getenv("AWS_S3_BUCKET_NAME"),
		AWSRegion:          os.Getenv("AWS_REGION"),
		RedisURL:           os.Getenv("REDIS_CONNECTION_STRING"),
		LoginAttemptLimit:  defaultLoginAttemptLimit,
		LoginAttemptWindow: defaultLoginAttemptWindow,
		Port:               defaultPort,
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL must be set")
	}
	if cfg.JWTSecret == "" && cfg.JWKSURL == "" {
		return Config{}, errors.New("JWT_SECRET or JWKS_URL must be set")
	}
	if cfg.S3Bucket == "" || cfg.AWSRegion == "" {
		return Config{}, errors.New("AWS_S3_BUCKET_NAME and AWS_REGION must be set")
	}

	if raw := os.Getenv("JWT_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid JWT_TTL: %q", raw)
		}
		cfg.JWTTTL = d
	}
	if raw := os.Getenv("MAX_UPLOAD_BYTES"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %q", raw)
		}
		cfg.MaxUploadBytes = n
	}
	if raw := os.Getenv("TASKS_PAGE_SIZE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid TASKS_PAGE_SIZE: %q", raw)
		}
		cfg.PageSize = n
	}
	if raw := os.Getenv("LOGIN_ATTEMPT_LIMIT"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid LOGIN_ATTEMPT_LIMIT: %q", raw)
		}
		cfg.LoginAttemptLimit = n
	}
	if raw := os.Getenv("LOGIN_ATTEMPT_WINDOW"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid LOGIN_ATTEMPT_WINDOW: %q", raw)
		}
		cfg.LoginAttemptWindow = d
	}
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil {
		cfg.Debug = dbg
	}

	return cfg, nil
}
