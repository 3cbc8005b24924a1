// Package config loads runtime settings from the environment (and an
// optional .env file) and builds the process-wide clients from them.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yeremiapane/billiard-pos/billing"
)

type Config struct {
	Port               string
	GinMode            string
	DBDriver           string
	DatabaseDSN        string
	JWTSecret          string
	JWTTTL             time.Duration
	CookieName         string
	CookieSecure       bool
	CORSAllowedOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	RabbitMQURL   string

	TaxRate               float64
	PointValue            int64
	PointEarnThreshold    int64
	PackageWarningSeconds int64
	NoShowGraceMinutes    int
	UpcomingWindowMinutes int
	Timezone              string

	RateLimitPerSecond int
	LogLevel           string
	AdminEmail         string
	AdminPassword      string
}

// field: default value
var defaults = map[string]interface{}{
	"PORT":                    "8080",
	"GIN_MODE":                "debug",
	"DB_DRIVER":               "sqlite",
	"DATABASE_DSN":            "billiard.db",
	"JWT_SECRET":              "",
	"JWT_TTL":                 "12h",
	"AUTH_COOKIE_NAME":        "auth_token",
	"AUTH_COOKIE_SECURE":      false,
	"CORS_ALLOWED_ORIGINS":    "http://localhost:3000",
	"REDIS_ADDR":              "",
	"REDIS_PASSWORD":          "",
	"REDIS_DB":                0,
	"CACHE_TTL":               "60s",
	"RABBITMQ_URL":            "",
	"TAX_RATE":                0.11,
	"POINT_VALUE":             1000,
	"POINT_EARN_THRESHOLD":    10000,
	"PACKAGE_WARNING_SECONDS": billing.DefaultWarnSeconds,
	"NO_SHOW_GRACE_MINUTES":   15,
	"UPCOMING_WINDOW_MINUTES": 5,
	"TIMEZONE":                "Asia/Jakarta",
	"RATE_LIMIT_PER_SECOND":   5,
	"LOG_LEVEL":               "info",
	"ADMIN_EMAIL":             "admin@billiard.local",
	"ADMIN_PASSWORD":          "",
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present; real environment values
// take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{
		Port:                  v.GetString("PORT"),
		GinMode:               v.GetString("GIN_MODE"),
		DBDriver:              strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:           v.GetString("DATABASE_DSN"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		JWTTTL:                v.GetDuration("JWT_TTL"),
		CookieName:            v.GetString("AUTH_COOKIE_NAME"),
		CookieSecure:          v.GetBool("AUTH_COOKIE_SECURE"),
		CORSAllowedOrigins:    splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		RedisAddr:             v.GetString("REDIS_ADDR"),
		RedisPassword:         v.GetString("REDIS_PASSWORD"),
		RedisDB:               v.GetInt("REDIS_DB"),
		CacheTTL:              v.GetDuration("CACHE_TTL"),
		RabbitMQURL:           v.GetString("RABBITMQ_URL"),
		TaxRate:               v.GetFloat64("TAX_RATE"),
		PointValue:            v.GetInt64("POINT_VALUE"),
		PointEarnThreshold:    v.GetInt64("POINT_EARN_THRESHOLD"),
		PackageWarningSeconds: v.GetInt64("PACKAGE_WARNING_SECONDS"),
		NoShowGraceMinutes:    v.GetInt("NO_SHOW_GRACE_MINUTES"),
		UpcomingWindowMinutes: v.GetInt("UPCOMING_WINDOW_MINUTES"),
		Timezone:              v.GetString("TIMEZONE"),
		RateLimitPerSecond:    v.GetInt("RATE_LIMIT_PER_SECOND"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		AdminEmail:            v.GetString("ADMIN_EMAIL"),
		AdminPassword:         v.GetString("ADMIN_PASSWORD"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.JWTSecret == "" {
		if c.GinMode == "release" {
			return fmt.Errorf("JWT_SECRET is required in release mode")
		}
		c.JWTSecret = "dev-secret-change-me"
	}
	if c.TaxRate < 0 || c.TaxRate >= 1 {
		return fmt.Errorf("TAX_RATE must be in [0, 1), got %v", c.TaxRate)
	}
	if c.PointValue < 0 || c.PointEarnThreshold <= 0 {
		return fmt.Errorf("POINT_VALUE must be >= 0 and POINT_EARN_THRESHOLD > 0")
	}
	if c.NoShowGraceMinutes <= 0 || c.UpcomingWindowMinutes <= 0 {
		return fmt.Errorf("reservation windows must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location is the venue timezone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) Rates() billing.Rates {
	return billing.NewRates(c.TaxRate, c.PointValue, c.PointEarnThreshold)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
