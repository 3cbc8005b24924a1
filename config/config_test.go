package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("GIN_MODE", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 12*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 15, cfg.NoShowGraceMinutes)
	assert.Equal(t, 5, cfg.UpcomingWindowMinutes)
	assert.NotEmpty(t, cfg.JWTSecret)

	rates := cfg.Rates()
	assert.Equal(t, int64(1100), rates.TaxBasisPoints)
	assert.Equal(t, int64(1000), rates.PointValue)
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("DATABASE_DSN", "user:pass@tcp(localhost:3306)/billiard")
	t.Setenv("TAX_RATE", "0.1")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("CACHE_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, int64(1000), cfg.Rates().TaxBasisPoints)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"driver":   {"DB_DRIVER", "postgres"},
		"tax":      {"TAX_RATE", "1.5"},
		"timezone": {"TIMEZONE", "Mars/Olympus"},
		"grace":    {"NO_SHOW_GRACE_MINUTES", "0"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestReleaseModeRequiresSecret(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestNewRedisClientDisabled(t *testing.T) {
	assert.Nil(t, NewRedisClient(&Config{}))
}
