// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes gateway settings
// such as server timeouts, logging, database selection and pooling, the
// upstream risk API, and observability.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// MaxHistoryLimit is the hard cap on records returned by the history route.
const MaxHistoryLimit = 5

// DefaultUpstreamURL is the risk API base used when UPSTREAM_BASE_URL is unset.
const DefaultUpstreamURL = "https://api.chainalysis.com/api/risk/v2"

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
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "risk-gateway")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig selects the storage engine and tunes the connection pool.
type DBConfig struct {
	Driver          string        // sqlite|postgres
	URL             string        // DATABASE_URL (postgres DSN)
	Path            string        // DB_PATH (sqlite file)
	MaxOpenConns    int           // DB_MAX_OPEN_CONNS
	MaxIdleConns    int           // DB_MAX_IDLE_CONNS
	ConnMaxLifetime time.Duration // DB_CONN_MAX_LIFETIME
	ConnMaxIdleTime time.Duration // DB_CONN_MAX_IDLE_TIME
}

// UpstreamConfig configures the risk-intelligence API client.
type UpstreamConfig struct {
	BaseURL      string        // UPSTREAM_BASE_URL
	APIKey       string        // SERVER_API_KEY, sent as the Token header
	Timeout      time.Duration // UPSTREAM_TIMEOUT
	MaxBodyBytes int64         // UPSTREAM_MAX_BODY_BYTES
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

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage
	DB DBConfig

	// Upstream risk API
	Upstream UpstreamConfig

	// Screening behaviour
	HistoryLimit      int  // records served by the history route (1..5)
	WriteThrough      bool // persist verdicts on GET /entities/:address
	RequireEVMAddress bool // reject non-hex addresses on register

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// Load reads the environment, fills defaults, normalizes aliases and returns
// the result of Validate.
func Load() (Config, error) {
	cfg := fromEnv()
	cfg.normalize()
	return cfg, cfg.Validate()
}

func fromEnv() Config {
	dbURL := getenv("DATABASE_URL", "")
	defDriver := DriverSQLite
	if dbURL != "" {
		defDriver = DriverPostgres
	}

	return Config{
		Port:              getenv("PORT", "3001"),
		ReadTimeout:       envOr("READ_TIMEOUT", 15*time.Second, time.ParseDuration),
		ReadHeaderTimeout: envOr("READ_HEADER_TIMEOUT", 10*time.Second, time.ParseDuration),
		WriteTimeout:      envOr("WRITE_TIMEOUT", 30*time.Second, time.ParseDuration),
		IdleTimeout:       envOr("IDLE_TIMEOUT", 60*time.Second, time.ParseDuration),
		MaxHeaderBytes:    envOr("MAX_HEADER_BYTES", 1<<20, strconv.Atoi),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      envOr("LOG_PRETTY", false, parseBool),
		SwaggerEnabled: envOr("SWAGGER_ENABLED", false, parseBool),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		DB: DBConfig{
			Driver:          strings.ToLower(getenv("DB_DRIVER", defDriver)),
			URL:             dbURL,
			Path:            getenv("DB_PATH", "screen.db"),
			MaxOpenConns:    envOr("DB_MAX_OPEN_CONNS", 10, strconv.Atoi),
			MaxIdleConns:    envOr("DB_MAX_IDLE_CONNS", 10, strconv.Atoi),
			ConnMaxLifetime: envOr("DB_CONN_MAX_LIFETIME", 30*time.Minute, time.ParseDuration),
			ConnMaxIdleTime: envOr("DB_CONN_MAX_IDLE_TIME", 5*time.Minute, time.ParseDuration),
		},

		Upstream: UpstreamConfig{
			BaseURL:      strings.TrimRight(getenv("UPSTREAM_BASE_URL", DefaultUpstreamURL), "/"),
			APIKey:       getenv("SERVER_API_KEY", ""),
			Timeout:      envOr("UPSTREAM_TIMEOUT", 10*time.Second, time.ParseDuration),
			MaxBodyBytes: envOr("UPSTREAM_MAX_BODY_BYTES", int64(5<<20), parseInt64),
		},

		HistoryLimit:      envOr("HISTORY_LIMIT", MaxHistoryLimit, strconv.Atoi),
		WriteThrough:      envOr("SCREEN_WRITE_THROUGH", false, parseBool),
		RequireEVMAddress: envOr("REQUIRE_EVM_ADDRESS", false, parseBool),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: envOr("ENABLE_HSTS", false, parseBool),
			HSTSMaxAge: envOr("HSTS_MAX_AGE", 180*24*time.Hour, time.ParseDuration),
		},

		OTEL: OTELConfig{
			Enabled:     envOr("OTEL_ENABLED", false, parseBool),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    envOr("OTEL_EXPORTER_OTLP_INSECURE", true, parseBool),
			ServiceName: getenv("OTEL_SERVICE_NAME", "risk-gateway"),
			SampleRatio: envOr("OTEL_TRACES_SAMPLER_ARG", 1.0, parseFloat),
		},
	}
}

func (c *Config) normalize() {
	if c.LogLevel == "warning" {
		c.LogLevel = "warn"
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		c.GinMode = "release"
	}
	switch c.DB.Driver {
	case "postgresql", "pg":
		c.DB.Driver = DriverPostgres
	case "sqlite3":
		c.DB.Driver = DriverSQLite
	}
}

// Validate reports every invalid setting at once, joined with errors.Join.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q must be one of: debug, info, warn, error, fatal, panic", c.LogLevel))
	}
	check(strings.TrimSpace(c.Port) != "", "PORT must not be empty")
	check(c.ReadTimeout > 0 && c.ReadHeaderTimeout > 0 && c.WriteTimeout > 0 && c.IdleTimeout > 0,
		"timeouts must be positive durations")
	check(c.MaxHeaderBytes > 0, "MAX_HEADER_BYTES must be > 0")

	switch c.DB.Driver {
	case DriverSQLite:
		check(strings.TrimSpace(c.DB.Path) != "", "DB_PATH must not be empty")
	case DriverPostgres:
		check(strings.TrimSpace(c.DB.URL) != "", "DATABASE_URL is required when DB_DRIVER=postgres")
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q must be one of: sqlite, postgres", c.DB.Driver))
	}
	check(c.DB.MaxOpenConns >= 1 && c.DB.MaxIdleConns >= 0,
		"DB_MAX_OPEN_CONNS must be >= 1 and DB_MAX_IDLE_CONNS >= 0")

	if u, err := url.Parse(c.Upstream.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("UPSTREAM_BASE_URL %q must be an absolute http(s) URL", c.Upstream.BaseURL))
	}
	check(c.Upstream.Timeout > 0, "UPSTREAM_TIMEOUT must be > 0")
	check(c.Upstream.MaxBodyBytes > 0, "UPSTREAM_MAX_BODY_BYTES must be > 0")

	check(c.HistoryLimit >= 1 && c.HistoryLimit <= MaxHistoryLimit,
		fmt.Sprintf("HISTORY_LIMIT must be between 1 and %d", MaxHistoryLimit))
	check(c.Security.HSTSMaxAge >= 0, "HSTS_MAX_AGE must be >= 0")
	check(c.OTEL.SampleRatio >= 0 && c.OTEL.SampleRatio <= 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")

	return errors.Join(errs...)
}

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

// envOr parses the variable k with parse and falls back to def when the
// variable is unset, empty or malformed.
func envOr[T any](k string, def T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(k)
	if !ok || v == "" {
		return def
	}
	out, err := parse(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return out
}

func parseInt64(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }
func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath returns p with exactly one leading slash and no trailing
// slash; blank input maps to "/".
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
