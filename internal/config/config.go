package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Log       LogConfig
	Tracing   TracingConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Ward      WardConfig
	Events    EventsConfig
	Archive   ArchiveConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	// Driver selects the record store: "postgres" or "memory".
	Driver             string
	Host               string
	Port               int
	Name               string
	User               string
	Password           string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
	Service    string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	SampleRate  float64
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

type RateLimitConfig struct {
	// Global rate limit per IP
	RequestsPerSecond float64
	BurstSize         int
	// Login is limited separately
	AuthRequestsPerMinute int
}

// WardConfig holds the inpatient rules that are tunable per deployment.
type WardConfig struct {
	Timezone string
	// VisibilityWindow is how long a discharged visit stays on operational views.
	VisibilityWindow time.Duration
	// RejectDischargeBeforeAdmission turns the warning into a validation error.
	RejectDischargeBeforeAdmission bool
}

// Location resolves Timezone, falling back to UTC.
func (w WardConfig) Location() *time.Location {
	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type EventsConfig struct {
	Brokers []string
	Topic   string
}

func (e EventsConfig) Enabled() bool {
	return len(e.Brokers) > 0
}

type ArchiveConfig struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, for MinIO and other S3-compatible stores
	PathStyle bool
	Prefix    string

	// Static credentials are optional; the default AWS chain is used otherwise.
	AccessKeyID     string
	SecretAccessKey string
}

func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

var defaults = map[string]any{
	"APP_NAME":                    "wardtrack",
	"APP_ENV":                     "development",
	"APP_VERSION":                 "0.0.0",
	"SERVER_HOST":                 "0.0.0.0",
	"SERVER_PORT":                 8080,
	"SERVER_READ_TIMEOUT":         15 * time.Second,
	"SERVER_WRITE_TIMEOUT":        30 * time.Second,
	"SERVER_IDLE_TIMEOUT":         60 * time.Second,
	"SERVER_SHUTDOWN_TIMEOUT":     30 * time.Second,
	"DB_DRIVER":                   "postgres",
	"DB_HOST":                     "localhost",
	"DB_PORT":                     5432,
	"DB_NAME":                     "wardtrack",
	"DB_USER":                     "wardtrack",
	"DB_PASSWORD":                 "",
	"DB_SSLMODE":                  "require",
	"DB_MAX_OPEN_CONNS":           25,
	"DB_MAX_IDLE_CONNS":           10,
	"DB_CONN_MAX_LIFETIME":        30 * time.Minute,
	"DB_CONN_MAX_IDLE_TIME":       5 * time.Minute,
	"DB_SLOW_QUERY_THRESHOLD":     200 * time.Millisecond,
	"JWT_SECRET":                  "",
	"JWT_ACCESS_TTL":              30 * time.Minute,
	"JWT_REFRESH_TTL":             12 * time.Hour,
	"JWT_ISSUER":                  "wardtrack",
	"LOG_LEVEL":                   "info",
	"LOG_FORMAT":                  "json",
	"LOG_OUTPUT":                  "stdout",
	"TRACING_ENABLED":             false,
	"TRACING_SERVICE_NAME":        "wardtrack",
	"OTLP_ENDPOINT":               "otel-collector:4318",
	"TRACING_SAMPLE_RATE":         0.1,
	"CORS_ALLOWED_ORIGINS":        "http://localhost:5173",
	"CORS_ALLOWED_METHODS":        "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	"CORS_ALLOWED_HEADERS":        "Authorization,Content-Type,X-Request-ID",
	"CORS_MAX_AGE":                12 * time.Hour,
	"RATE_LIMIT_RPS":              50.0,
	"RATE_LIMIT_BURST":            100,
	"RATE_LIMIT_AUTH_RPM":         10,
	"WARD_TIMEZONE":               "UTC",
	"WARD_VISIBILITY_WINDOW":      48 * time.Hour,
	"WARD_REJECT_EARLY_DISCHARGE": false,
	"EVENTS_KAFKA_BROKERS":        "",
	"EVENTS_KAFKA_TOPIC":          "wardtrack.visits",
	"ARCHIVE_S3_BUCKET":           "",
	"ARCHIVE_S3_REGION":           "us-east-1",
	"ARCHIVE_S3_ENDPOINT":         "",
	"ARCHIVE_S3_PATH_STYLE":       false,
	"ARCHIVE_S3_PREFIX":           "reports/",
	"ARCHIVE_S3_ACCESS_KEY_ID":    "",
	"ARCHIVE_S3_SECRET_KEY":       "",
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			Environment: v.GetString("APP_ENV"),
			Version:     v.GetString("APP_VERSION"),
		},
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Driver:             strings.ToLower(v.GetString("DB_DRIVER")),
			Host:               v.GetString("DB_HOST"),
			Port:               v.GetInt("DB_PORT"),
			Name:               v.GetString("DB_NAME"),
			User:               v.GetString("DB_USER"),
			Password:           v.GetString("DB_PASSWORD"),
			SSLMode:            v.GetString("DB_SSLMODE"),
			MaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime:    v.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime:    v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
			SlowQueryThreshold: v.GetDuration("DB_SLOW_QUERY_THRESHOLD"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			AccessTokenTTL:  v.GetDuration("JWT_ACCESS_TTL"),
			RefreshTokenTTL: v.GetDuration("JWT_REFRESH_TTL"),
			Issuer:          v.GetString("JWT_ISSUER"),
		},
		Log: LogConfig{
			Level:      v.GetString("LOG_LEVEL"),
			Format:     v.GetString("LOG_FORMAT"),
			OutputPath: v.GetString("LOG_OUTPUT"),
			Service:    v.GetString("APP_NAME"),
		},
		Tracing: TracingConfig{
			Enabled:     v.GetBool("TRACING_ENABLED"),
			ServiceName: v.GetString("TRACING_SERVICE_NAME"),
			Endpoint:    v.GetString("OTLP_ENDPOINT"),
			SampleRate:  v.GetFloat64("TRACING_SAMPLE_RATE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: splitList(v.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders: splitList(v.GetString("CORS_ALLOWED_HEADERS")),
			MaxAge:         v.GetDuration("CORS_MAX_AGE"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond:     v.GetFloat64("RATE_LIMIT_RPS"),
			BurstSize:             v.GetInt("RATE_LIMIT_BURST"),
			AuthRequestsPerMinute: v.GetInt("RATE_LIMIT_AUTH_RPM"),
		},
		Ward: WardConfig{
			Timezone:                       v.GetString("WARD_TIMEZONE"),
			VisibilityWindow:               v.GetDuration("WARD_VISIBILITY_WINDOW"),
			RejectDischargeBeforeAdmission: v.GetBool("WARD_REJECT_EARLY_DISCHARGE"),
		},
		Events: EventsConfig{
			Brokers: splitList(v.GetString("EVENTS_KAFKA_BROKERS")),
			Topic:   v.GetString("EVENTS_KAFKA_TOPIC"),
		},
		Archive: ArchiveConfig{
			Bucket:    v.GetString("ARCHIVE_S3_BUCKET"),
			Region:    v.GetString("ARCHIVE_S3_REGION"),
			Endpoint:  v.GetString("ARCHIVE_S3_ENDPOINT"),
			PathStyle: v.GetBool("ARCHIVE_S3_PATH_STYLE"),
			Prefix:    v.GetString("ARCHIVE_S3_PREFIX"),

			AccessKeyID:     v.GetString("ARCHIVE_S3_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("ARCHIVE_S3_SECRET_KEY"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate enforces production security requirements.
func validate(cfg *Config) error {
	var errs []string

	if cfg.JWT.Secret == "" {
		errs = append(errs, "JWT_SECRET is required")
	} else if len(cfg.JWT.Secret) < 32 && cfg.App.Environment == "production" {
		errs = append(errs, "JWT_SECRET must be at least 32 characters in production")
	}

	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.Password == "" && cfg.App.Environment != "development" {
			errs = append(errs, "DB_PASSWORD is required in non-development environments")
		}
		if cfg.Database.SSLMode == "disable" && cfg.App.Environment == "production" {
			errs = append(errs, "DB_SSLMODE=disable is not allowed in production")
		}
	case "memory":
		if cfg.App.Environment == "production" {
			errs = append(errs, "DB_DRIVER=memory is not allowed in production")
		}
	default:
		errs = append(errs, fmt.Sprintf("DB_DRIVER must be postgres or memory, got %q", cfg.Database.Driver))
	}

	if _, err := time.LoadLocation(cfg.Ward.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("WARD_TIMEZONE %q is not a valid IANA zone", cfg.Ward.Timezone))
	}
	if cfg.Ward.VisibilityWindow <= 0 {
		errs = append(errs, "WARD_VISIBILITY_WINDOW must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			result = append(result, t)
		}
	}
	return result
}
