// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server settings,
// logging, landlord/tenant database credentials, tenant naming material,
// resolver caching, rate limiting, and observability.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-commerce-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig holds the base database server credentials shared by the landlord
// database and every provisioned tenant database. Tenant databases live on
// the same server; only the database name differs per store.
type DBConfig struct {
	Host     string // DB_HOST
	Port     int    // DB_PORT
	User     string // DB_USER
	Password string // DB_PASSWORD
	Landlord string // DB_LANDLORD_NAME, the central platform database
	Params   string // DB_PARAMS, extra DSN parameters (charset etc.)
}

// DSN builds a MySQL DSN for the named database. An empty name yields a
// server-level DSN, which is what CREATE/DROP DATABASE statements need.
func (c DBConfig) DSN(database string) string {
	params := c.Params
	if params == "" {
		params = "charset=utf8mb4&parseTime=True&loc=UTC"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", c.User, c.Password, c.Host, c.Port, database, params)
}

// TenantConfig holds the material the tenant-resolution core needs:
// database naming inputs, host resolution, caching, and provisioning limits.
type TenantConfig struct {
	DBPrefix         string        // TENANT_DB_PREFIX, e.g. "tenant_"
	NameSecret       string        // TENANT_NAME_SECRET, server-wide secret hashed into DB names
	BaseDomain       string        // BASE_DOMAIN, e.g. "platform.test"; <slug>.<base> resolves by subdomain
	CacheTTL         time.Duration // TENANT_CACHE_TTL for the host→store cache
	ProvisionTimeout time.Duration // PROVISION_TIMEOUT for create+migrate+seed
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel    string // debug|info|warn|error|fatal|panic
	LogPretty   bool   // pretty console logs in dev
	APIBasePath string // base path for API routes

	// Databases
	DB DBConfig

	// Tenant core
	Tenant TenantConfig

	// Auth
	JWTSecret string        // JWT_SECRET for employee tokens
	JWTTTL    time.Duration // JWT_TTL token lifetime

	// Webhooks
	WebhookSecret string // WEBHOOK_SECRET, HMAC key for inbound webhook payloads

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:   getbool("LOG_PRETTY", false),
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Databases
		DB: DBConfig{
			Host:     getenv("DB_HOST", "localhost"),
			Port:     getint("DB_PORT", 3306),
			User:     getenv("DB_USER", "root"),
			Password: getenv("DB_PASSWORD", ""),
			Landlord: getenv("DB_LANDLORD_NAME", "platform"),
			Params:   getenv("DB_PARAMS", ""),
		},

		// Tenant core
		Tenant: TenantConfig{
			DBPrefix:         getenv("TENANT_DB_PREFIX", "tenant_"),
			NameSecret:       getenv("TENANT_NAME_SECRET", ""),
			BaseDomain:       strings.ToLower(getenv("BASE_DOMAIN", "")),
			CacheTTL:         getdur("TENANT_CACHE_TTL", 30*time.Second),
			ProvisionTimeout: getdur("PROVISION_TIMEOUT", 2*time.Minute),
		},

		// Auth
		JWTSecret: getenv("JWT_SECRET", ""),
		JWTTTL:    getdur("JWT_TTL", 12*time.Hour),

		// Webhooks (empty disables inbound webhook ingestion)
		WebhookSecret: getenv("WEBHOOK_SECRET", ""),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 10.0),
		RateBurst: getint("RATE_BURST", 20),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-commerce-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DB.Host) == "" {
		return cfg, errors.New("DB_HOST must not be empty")
	}
	if cfg.DB.Port <= 0 || cfg.DB.Port > 65535 {
		return cfg, errors.New("DB_PORT must be a valid TCP port")
	}
	if strings.TrimSpace(cfg.DB.Landlord) == "" {
		return cfg, errors.New("DB_LANDLORD_NAME must not be empty")
	}
	if strings.TrimSpace(cfg.Tenant.DBPrefix) == "" {
		return cfg, errors.New("TENANT_DB_PREFIX must not be empty")
	}
	if strings.TrimSpace(cfg.Tenant.NameSecret) == "" {
		return cfg, errors.New("TENANT_NAME_SECRET must not be empty")
	}
	if cfg.Tenant.CacheTTL <= 0 {
		return cfg, errors.New("TENANT_CACHE_TTL must be > 0")
	}
	if cfg.Tenant.ProvisionTimeout <= 0 {
		return cfg, errors.New("PROVISION_TIMEOUT must be > 0")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return cfg, errors.New("JWT_SECRET must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return cfg, errors.New("JWT_TTL must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
