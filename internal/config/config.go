// Package config loads runtime settings from the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// EnvProduction is the LEMBAH_ENV value that enables secure cookies and strict key checks.
const EnvProduction = "production"

// Config holds every setting the binaries read.
type Config struct {
	Addr            string
	DBPath          string
	Env             string
	CSRFKey         []byte
	FlashKey        []byte
	TrustedOrigins  []string
	ManagerPassword string
	LogLevel        slog.Level
	LogFormat       string // "text" or "json"
	LogFile         string // empty logs to stdout only
	ResendKey       string
	ResendFrom      string
	GymName         string
	Location        *time.Location
	RateLimit       int // requests per second per client IP; 0 disables
	LoginLimit      int // login attempts and portal lookups per minute per client IP; 0 disables
	SlowQueryMs     int
	SlowRequestMs   int
}

// Production reports whether the app runs with production safeguards.
func (c Config) Production() bool {
	return c.Env == EnvProduction
}

// Load reads an optional .env file, then the LEMBAH_* environment variables.
// POST: in production a missing or malformed LEMBAH_CSRF_KEY or LEMBAH_FLASH_KEY is an error;
// in development missing keys are generated per process
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Addr:            env("LEMBAH_ADDR", ":8080"),
		DBPath:          env("LEMBAH_DB_PATH", "lembah_fitness.db"),
		Env:             env("LEMBAH_ENV", "development"),
		ManagerPassword: getenv("LEMBAH_MANAGER_PASSWORD"),
		LogFormat:       strings.ToLower(env("LEMBAH_LOG_FORMAT", "text")),
		LogFile:         env("LEMBAH_LOG_FILE", ""),
		ResendKey:       env("LEMBAH_RESEND_KEY", ""),
		ResendFrom:      env("LEMBAH_RESEND_FROM", "Lembah Fitness <noreply@lembahfitness.id>"),
		GymName:         env("LEMBAH_GYM_NAME", "Lembah Fitness"),
	}
	if origins := env("LEMBAH_TRUSTED_ORIGINS", ""); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.TrustedOrigins = append(cfg.TrustedOrigins, o)
			}
		}
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("LEMBAH_LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(env("LEMBAH_LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("LEMBAH_LOG_LEVEL: %w", err)
	}

	loc, err := time.LoadLocation(env("LEMBAH_TZ", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("LEMBAH_TZ: %w", err)
	}
	cfg.Location = loc

	for _, n := range []struct {
		key      string
		fallback int
		dst      *int
	}{
		{"LEMBAH_RATE_LIMIT", 20, &cfg.RateLimit},
		{"LEMBAH_LOGIN_LIMIT", 10, &cfg.LoginLimit},
		{"LEMBAH_SLOW_QUERY_MS", 50, &cfg.SlowQueryMs},
		{"LEMBAH_SLOW_REQUEST_MS", 200, &cfg.SlowRequestMs},
	} {
		v, err := intOrDefault(getenv(n.key), n.fallback)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", n.key, err)
		}
		*n.dst = v
	}

	if cfg.CSRFKey, err = key(getenv("LEMBAH_CSRF_KEY"), cfg.Production()); err != nil {
		return Config{}, fmt.Errorf("LEMBAH_CSRF_KEY: %w", err)
	}
	if cfg.FlashKey, err = key(getenv("LEMBAH_FLASH_KEY"), cfg.Production()); err != nil {
		return Config{}, fmt.Errorf("LEMBAH_FLASH_KEY: %w", err)
	}
	return cfg, nil
}

func intOrDefault(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("must be a whole number, got %q", raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative, got %d", n)
	}
	return n, nil
}

// key decodes a 32-byte key given as 64 hex characters.
// Outside production an empty value yields a random key, so sessions and
// CSRF tokens do not survive a restart.
func key(raw string, required bool) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if required {
			return nil, errors.New("required in production (64 hex characters)")
		}
		k := make([]byte, 32)
		if _, err := rand.Read(k); err != nil {
			return nil, err
		}
		return k, nil
	}
	k, err := hex.DecodeString(raw)
	if err != nil || len(k) != 32 {
		return nil, errors.New("must be 64 hex characters")
	}
	return k, nil
}
