package app

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/quokkaworks/ident/pkg/jwtx"
)

type Config struct {
	SigningSecret []byte // Required: HS256 token signing secret (>= 32 bytes)
	Issuer        string // Optional: issuer claim for tokens (default: ident)

	BootstrapAdminEmail string        // Optional: this email registers as admin
	TokenTTL            time.Duration // Optional: access token lifetime (default: 168h)
	VerificationTTL     time.Duration // Optional: verification token lifetime (default: 24h)
	Providers           []string      // Optional: external identity providers (default: none)
	BaseURL             string        // Optional: base URL used in verification links (default: http://localhost:<port>)
	MailTimeout         time.Duration // Optional: verification email dispatch timeout (default: 5s)

	DatabaseFile         string        // Optional: path to SQLite database file (default: ./ident.db)
	PepperFile           string        // Optional: path to password-pepper file (default: ./pepper)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

// ErrMissingSecret means IDENT_SIGNING_SECRET was not set. There is no
// generated fallback: a restarted process must keep verifying old tokens.
var ErrMissingSecret = errors.New("IDENT_SIGNING_SECRET is required")

func LoadConfig() (Config, error) {
	cfg := Config{
		SigningSecret:        []byte(os.Getenv("IDENT_SIGNING_SECRET")),
		Issuer:               getEnvOrDefault("IDENT_ISSUER", "ident"),
		BootstrapAdminEmail:  os.Getenv("IDENT_BOOTSTRAP_ADMIN_EMAIL"),
		TokenTTL:             getEnvDurationOrDefault("IDENT_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		VerificationTTL:      getEnvDurationOrDefault("IDENT_VERIFY_TTL", 24*time.Hour),
		BaseURL:              os.Getenv("IDENT_BASE_URL"),
		MailTimeout:          getEnvDurationOrDefault("IDENT_MAIL_TIMEOUT", 5*time.Second),
		DatabaseFile:         getEnvOrDefault("IDENT_DATABASE_FILE", "ident.db"),
		PepperFile:           getEnvOrDefault("IDENT_PEPPER_FILE", "pepper"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if providers := os.Getenv("IDENT_PROVIDERS"); providers != "" {
		for _, p := range strings.Split(providers, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Providers = append(cfg.Providers, p)
			}
		}
	}

	if len(cfg.SigningSecret) == 0 {
		return Config{}, ErrMissingSecret
	}
	if len(cfg.SigningSecret) < jwtx.MinSecretLength {
		return Config{}, jwtx.ErrWeakSecret
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + strconv.Itoa(cfg.Port)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
