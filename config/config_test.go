package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, 30*time.Minute, cfg.Shop.CartExpiry())
	assert.Equal(t, 5*time.Minute, cfg.Shop.CartSweepInterval())
	assert.Equal(t, 14*24*time.Hour, cfg.Shop.SessionTTL())
	assert.True(t, cfg.Shop.UseUpsellProducts)
	assert.False(t, cfg.Shop.ReserveStockOnAdd)
	assert.Equal(t, "1:Size,2:Colour", cfg.Shop.OptionTypes)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SHOP_CART_EXPIRY_MINUTES", "45")
	t.Setenv("SHOP_RESERVE_STOCK_ON_ADD", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("STORE_DRIVER", "memory")

	cfg := LoadEnv()

	assert.Equal(t, 45*time.Minute, cfg.Shop.CartExpiry())
	assert.True(t, cfg.Shop.ReserveStockOnAdd)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "memory", cfg.Store.Driver)
}

func TestLoadEnvIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("SHOP_CART_EXPIRY_MINUTES", "soon")

	assert.Equal(t, 30, LoadEnv().Shop.CartExpiryMinutes)
}

func TestParseOptionTypes(t *testing.T) {
	types, err := ParseOptionTypes("1:Size, 2:Colour ,3:Material")
	require.NoError(t, err)
	require.Len(t, types, 3)
	assert.Equal(t, 1, types[0].ID)
	assert.Equal(t, "Size", types[0].Name)
	assert.Equal(t, "Colour", types[1].Name)
	assert.Equal(t, 3, types[2].ID)

	types, err = ParseOptionTypes("")
	require.NoError(t, err)
	assert.Empty(t, types)

	for _, raw := range []string{"Size", "x:Size", "0:Size", "1:", "1:Size,1:Colour"} {
		_, err := ParseOptionTypes(raw)
		assert.Error(t, err, raw)
	}
}
