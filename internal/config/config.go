package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every externally injected knob. Auth logic never reads the
// environment directly; everything flows in from here.
type Config struct {
	HTTPAddr          string
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration

	DatabaseDSN string

	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	TokenPepper     string

	CookieDomain   string
	CookieSecure   bool
	CookieSameSite string

	InternalAPIKey string

	RedisAddr             string
	HandleLookupMissTTL   time.Duration
	SweepInterval         time.Duration
	APIRateLimitRPM       int
	AuthRateLimitRPM      int
	RateLimitFailureMode  string
	OTELEnabled           bool
	OTELExporterEndpoint  string
	OTELExporterInsecure  bool
	OTELServiceName       string
	OTELEnvironment       string
	OTELExportInterval    time.Duration
	OTELLogsEnabled       bool
	LogLevel              string
}

// Load reads configuration from the environment, with an optional .env file
// for local development. Variables already present in the environment win
// over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg := &Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		ShutdownTimeout:   getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getDuration("READ_HEADER_TIMEOUT", 5*time.Second),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTIssuer:       getEnv("JWT_ISSUER", "applyr"),
		AccessTokenTTL:  time.Duration(getInt("ACCESS_TOKEN_TTL_MINUTES", 15)) * time.Minute,
		RefreshTokenTTL: time.Duration(getInt("REFRESH_TOKEN_TTL_DAYS", 10)) * 24 * time.Hour,
		TokenPepper:     os.Getenv("TOKEN_PEPPER"),

		CookieDomain:   os.Getenv("COOKIE_DOMAIN"),
		CookieSecure:   getBool("COOKIE_SECURE", true),
		CookieSameSite: strings.ToLower(getEnv("COOKIE_SAMESITE", "lax")),

		InternalAPIKey: os.Getenv("INTERNAL_API_KEY"),

		RedisAddr:            os.Getenv("REDIS_ADDR"),
		HandleLookupMissTTL:  getDuration("HANDLE_LOOKUP_MISS_TTL", 30*time.Second),
		SweepInterval:        getDuration("SWEEP_INTERVAL", time.Hour),
		APIRateLimitRPM:      getInt("API_RATE_LIMIT_RPM", 300),
		AuthRateLimitRPM:     getInt("AUTH_RATE_LIMIT_RPM", 30),
		RateLimitFailureMode: getEnv("RATE_LIMIT_FAILURE_MODE", "fail_closed"),

		OTELEnabled:          getBool("OTEL_ENABLED", false),
		OTELExporterEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterInsecure: getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELServiceName:      getEnv("OTEL_SERVICE_NAME", "applyr"),
		OTELEnvironment:      getEnv("OTEL_ENVIRONMENT", "dev"),
		OTELExportInterval:   getDuration("OTEL_EXPORT_INTERVAL", 30*time.Second),
		OTELLogsEnabled:      getBool("OTEL_LOGS_ENABLED", false),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.validate(); err != nil {
		recordConfigValidationEvent(context.Background(), cfg.OTELEnvironment, "failure", classifyConfigError(err))
		return nil, fmt.Errorf("validate config: %w", err)
	}
	recordConfigValidationEvent(context.Background(), cfg.OTELEnvironment, "success", "none")
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	switch c.CookieSameSite {
	case "lax", "strict", "none":
	default:
		return fmt.Errorf("COOKIE_SAMESITE must be lax, strict or none, got %q", c.CookieSameSite)
	}
	switch c.RateLimitFailureMode {
	case "fail_open", "fail_closed":
	default:
		return fmt.Errorf("RATE_LIMIT_FAILURE_MODE must be fail_open or fail_closed, got %q", c.RateLimitFailureMode)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
