package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/overstock-orders/internal/config"
)

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/overstock?sslmode=disable",
		"REDIS_URL":    "redis://localhost:6379/0",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(baseEnv())
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "TRY", cfg.CurrencyCode)
	require.Empty(t, cfg.TracingEndpoint)
	require.Equal(t, float64(1), cfg.TracingSampleRatio)
	require.False(t, cfg.CommissionVisible)
	require.Equal(t, 3*time.Second, cfg.StockCheckTimeout)
	require.Equal(t, "stock.changes", cfg.StockChannel)
	require.Equal(t, 30*time.Second, cfg.CatalogCacheTTL)
	require.Equal(t, "300-M", cfg.RateLimitFormatted)
	require.Equal(t, 5, cfg.WorkerConcurrency)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	env := baseEnv()
	env["DATABASE_URL"] = ""
	_, err := config.LoadForTests(env)
	require.Error(t, err)
}

func TestLoadRequiresRedisURL(t *testing.T) {
	env := baseEnv()
	env["REDIS_URL"] = ""
	_, err := config.LoadForTests(env)
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["PORT"] = "9090"
	env["COMMISSION_VISIBLE"] = "true"
	env["STOCK_CHECK_TIMEOUT"] = "500ms"
	env["CORS_ALLOWED_ORIGINS"] = "https://a.example, https://b.example"
	env["TRACING_SAMPLE_RATIO"] = "0.25"

	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.True(t, cfg.CommissionVisible)
	require.Equal(t, 500*time.Millisecond, cfg.StockCheckTimeout)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	require.Equal(t, 0.25, cfg.TracingSampleRatio)
}

func TestInvalidDurationFallsBack(t *testing.T) {
	env := baseEnv()
	env["STOCK_CHECK_TIMEOUT"] = "soon"
	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, cfg.StockCheckTimeout)
}
