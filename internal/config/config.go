// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/msomdec/inkwell/internal/storage"
)

// Storage backends.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

type (
	Config struct {
		HTTP      HTTP
		Log       Log
		Auth      Auth
		Storage   Storage
		RateLimit RateLimit

		DatabasePath string `env:"DATABASE_PATH" envDefault:"inkwell.db"`
	}

	HTTP struct {
		Port            string        `env:"PORT" envDefault:"8080"`
		BaseURL         string        `env:"BASE_URL"` // Defaults to http://localhost:<port>
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	}

	Log struct {
		Level slog.Level `env:"LOG_LEVEL" envDefault:"info"`
	}

	Auth struct {
		JWTSecret    string `env:"JWT_SECRET,required,unset"`
		BcryptCost   int    `env:"BCRYPT_COST" envDefault:"12"`
		CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"true"`
	}

	Storage struct {
		Backend   string        `env:"STORAGE_BACKEND" envDefault:"local"`
		URLExpiry time.Duration `env:"UPLOAD_URL_EXPIRY" envDefault:"15m"`
		S3        S3            `envPrefix:"S3_"`
	}

	S3 struct {
		Endpoint      string `env:"ENDPOINT"`
		Region        string `env:"REGION" envDefault:"us-east-1"`
		Bucket        string `env:"BUCKET"`
		AccessKey     string `env:"ACCESS_KEY"`
		SecretKey     string `env:"SECRET_KEY,unset"`
		PublicBaseURL string `env:"PUBLIC_BASE_URL"`
		UsePathStyle  bool   `env:"USE_PATH_STYLE" envDefault:"true"`
	}

	RateLimit struct {
		LoginPerMinute  float64 `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`
		LoginBurst      float64 `env:"LOGIN_RATE_BURST" envDefault:"5"`
		UploadPerMinute float64 `env:"UPLOAD_RATE_PER_MINUTE" envDefault:"60"`
		UploadBurst     float64 `env:"UPLOAD_RATE_BURST" envDefault:"20"`
	}
)

// New reads the process environment.
func New() (*Config, error) {
	return parse(env.Options{})
}

// FromMap reads settings from environ instead of the process environment.
func FromMap(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if cfg.HTTP.BaseURL == "" {
		cfg.HTTP.BaseURL = "http://localhost:" + cfg.HTTP.Port
	}
	cfg.HTTP.BaseURL = strings.TrimRight(cfg.HTTP.BaseURL, "/")
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 14 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.Auth.BcryptCost))
	}
	if c.Storage.URLExpiry <= 0 {
		errs = append(errs, errors.New("UPLOAD_URL_EXPIRY must be positive"))
	}
	if c.RateLimit.LoginPerMinute <= 0 || c.RateLimit.UploadPerMinute <= 0 ||
		c.RateLimit.LoginBurst < 1 || c.RateLimit.UploadBurst < 1 {
		errs = append(errs, errors.New("rate limits must be positive with a burst of at least 1"))
	}

	switch c.Storage.Backend {
	case BackendLocal:
	case BackendS3:
		if c.Storage.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 storage backend"))
		}
		if c.Storage.S3.PublicBaseURL == "" {
			errs = append(errs, errors.New("S3_PUBLIC_BASE_URL is required for the s3 storage backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", BackendLocal, BackendS3, c.Storage.Backend))
	}
	return errors.Join(errs...)
}

// S3Config converts the S3 settings for the storage package.
func (c *Config) S3Config() storage.S3Config {
	s := c.Storage.S3
	return storage.S3Config{
		Endpoint:      s.Endpoint,
		Region:        s.Region,
		Bucket:        s.Bucket,
		AccessKey:     s.AccessKey,
		SecretKey:     s.SecretKey,
		PublicBaseURL: s.PublicBaseURL,
		UsePathStyle:  s.UsePathStyle,
		Expiry:        c.Storage.URLExpiry,
	}
}

// PerSecond converts a per-minute rate for service.NewTokenBucket.
func PerSecond(perMinute float64) float64 {
	return perMinute / 60
}
