package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/constants"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cf, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "8080", cf.ServerPort)
	require.Equal(t, constants.StorePostgres, cf.StoreDriver)
	require.Equal(t, 5*time.Second, cf.LockTimeout)
	require.Equal(t, 10*time.Minute, cf.StockCacheTTL)
	require.Empty(t, cf.KafkaBrokerList())
}

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	path := writeEnvFile(t, `SERVER_PORT=9090
STORE_DRIVER=memory
LOCK_TIMEOUT=250ms
KAFKA_BROKERS=k1:9092, k2:9092
SEED_DEMO_DATA=true
`)
	t.Setenv("SERVER_PORT", "7070")

	cf, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "7070", cf.ServerPort)
	require.Equal(t, constants.StoreMemory, cf.StoreDriver)
	require.Equal(t, 250*time.Millisecond, cf.LockTimeout)
	require.True(t, cf.SeedDemoData)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cf.KafkaBrokerList())
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
}

func TestOnReload_NotifiesListeners(t *testing.T) {
	var got *Config
	OnReload(func(cf *Config) { got = cf })

	path := writeEnvFile(t, `LOCK_TIMEOUT=250ms
CHECKOUT_BURST=3
`)
	cf, err := LoadConfig(path)
	require.NoError(t, err)

	applyReload(cf)
	require.Same(t, cf, got)
	require.Equal(t, 250*time.Millisecond, GetConfig().LockTimeout)
	require.Equal(t, 3, GetConfig().CheckoutBurst)
}
