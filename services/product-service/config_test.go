package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "PRODUCTS_TABLE", "STOCKS_TABLE", "DEDUP_TTL", "DEDUP_REDIS_URL", "AWS_USE_SECRETS"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8082", cfg.Port)
	assert.Equal(t, "Products", cfg.ProductsTable)
	assert.Equal(t, "Stocks", cfg.StocksTable)
	assert.Equal(t, 24*time.Hour, cfg.DedupTTL)
	assert.Empty(t, cfg.DedupRedisURL)
}

func TestLoadConfig_DedupTTL(t *testing.T) {
	t.Setenv("AWS_USE_SECRETS", "")
	t.Setenv("DEDUP_TTL", "90m")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, cfg.DedupTTL)

	t.Setenv("DEDUP_TTL", "soon")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_RejectsSameTables(t *testing.T) {
	t.Setenv("AWS_USE_SECRETS", "")
	t.Setenv("DEDUP_TTL", "")
	t.Setenv("PRODUCTS_TABLE", "Catalog")
	t.Setenv("STOCKS_TABLE", "Catalog")
	_, err := LoadConfig()
	assert.Error(t, err)
}
