package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnv_Defaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, ":8080", cfg.Server.HTTPPort)
	assert.Equal(t, ":8082", cfg.Server.GRPCPort)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "omnipos_ledger", cfg.Postgres.DBName)
	assert.Equal(t, "ledger.events", cfg.Kafka.Topic)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "bills", cfg.Elastic.Index)
	assert.Equal(t, 5*time.Minute, cfg.Analytics.CacheTTL)
	assert.Equal(t, 5, cfg.Analytics.TopProducts)
	assert.Empty(t, cfg.Extractor.APIKey)
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("ANALYTICS_CACHE_TTL", "90s")
	t.Setenv("GEMINI_TIMEOUT", "15")
	t.Setenv("ANALYTICS_TOP_PRODUCTS", "ten")

	cfg := LoadEnv()

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 90*time.Second, cfg.Analytics.CacheTTL)
	assert.Equal(t, 15*time.Second, cfg.Extractor.Timeout)
	assert.Equal(t, 5, cfg.Analytics.TopProducts, "unparsable values keep the default")
}
