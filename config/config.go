package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the runtime configuration, read from the environment after an
// optional .env file has been loaded.
type Config struct {
	Port string

	Database Database

	JWTSecret     string
	JWTTTL        time.Duration
	SessionSecret string
	SessionSecure bool

	CORSOrigins []string

	ImportFetchTimeout time.Duration

	RabbitMQURL   string
	RabbitMQQueue string

	AdminEmail    string
	AdminPassword string
	AdminName     string

	LogLevel  string
	LogFormat string
}

type Database struct {
	Driver string
	DSN    string
}

var ErrMissingSecret = errors.New("JWT_SECRET is not set")

// LoadEnvFile loads .env when present. A missing file is not an error.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

func Load() Config {
	jwtSecret := envString("JWT_SECRET", "")
	return Config{
		Port: envString("PORT", "5000"),
		Database: Database{
			Driver: strings.ToLower(envString("DB_DRIVER", "postgres")),
			DSN:    databaseDSN(),
		},
		JWTSecret:          jwtSecret,
		JWTTTL:             envDuration("JWT_TTL", 7*24*time.Hour),
		SessionSecret:      envString("SESSION_SECRET", jwtSecret),
		SessionSecure:      envBool("SESSION_SECURE", false),
		CORSOrigins:        splitCSV(envString("CORS_ORIGINS", "*")),
		ImportFetchTimeout: envDuration("IMPORT_FETCH_TIMEOUT", 15*time.Second),
		RabbitMQURL:        envString("RABBITMQ_URL", ""),
		RabbitMQQueue:      envString("RABBITMQ_QUEUE", "application_events"),
		AdminEmail:         envString("ADMIN_EMAIL", ""),
		AdminPassword:      envString("ADMIN_PASSWORD", ""),
		AdminName:          envString("ADMIN_NAME", "Administrator"),
		LogLevel:           envString("LOG_LEVEL", "info"),
		LogFormat:          envString("LOG_FORMAT", "json"),
	}
}

// Validate checks what the HTTP server cannot run without.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("no database configured for driver %q", c.Database.Driver)
	}
	return nil
}

// databaseDSN prefers DB_DSN and falls back to the discrete postgres
// variables.
func databaseDSN() string {
	if dsn := envString("DB_DSN", ""); dsn != "" {
		return dsn
	}
	host := envString("DB_HOST", "")
	if host == "" {
		return ""
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host,
		envString("DB_USER", "postgres"),
		envString("DB_PASSWORD", ""),
		envString("DB_NAME", "jobsy"),
		envString("DB_PORT", "5432"),
		envString("DB_SSLMODE", "disable"))
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	if parsed, err := time.ParseDuration(val); err == nil {
		return parsed
	}
	// plain integers are seconds
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
