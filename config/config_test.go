package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE", "REDIS_DB", "EXPORT_EXTENSION", "EXPORT_DEFAULT_NAME", "SEED_DATA"} {
		t.Setenv(key, "")
	}
	logger, _ := test.NewNullLogger()
	cfg := Load(logger, filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "redis", cfg.Store)
	assert.Equal(t, 8, cfg.RedisDB)
	assert.Equal(t, ".xls", cfg.ExportExtension)
	assert.Equal(t, "report", cfg.ExportName)
	assert.False(t, cfg.SeedData)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE", "Postgres")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SEED_DATA", "true")
	t.Setenv("REPORT_LOCALE", "zh-TW")

	logger, _ := test.NewNullLogger()
	cfg := Load(logger, filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres", cfg.Store)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.SeedData)
	assert.Equal(t, "zh-TW", cfg.Locale)
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("EXPORT_EXTENSION=.xlsx\nCHART_WIDTH=1024\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("EXPORT_EXTENSION")
		os.Unsetenv("CHART_WIDTH")
	})

	logger, _ := test.NewNullLogger()
	cfg := Load(logger, path)

	assert.Equal(t, ".xlsx", cfg.ExportExtension)
	assert.Equal(t, 1024, cfg.ChartWidth)
}

func TestLoadInvalidNumber(t *testing.T) {
	t.Setenv("CHART_HEIGHT", "tall")

	logger, hook := test.NewNullLogger()
	cfg := Load(logger, filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, 600, cfg.ChartHeight)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestNewLogger(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("debug").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("loud").GetLevel())
}

func TestStoreOptions(t *testing.T) {
	cfg := &Config{Store: "postgres", RedisAddr: "redis:6379", RedisDB: 2, DatabaseDSN: "host=db"}
	opts := cfg.StoreOptions()

	assert.Equal(t, "postgres", opts.Backend)
	assert.Equal(t, "redis:6379", opts.Redis.Addr)
	assert.Equal(t, 2, opts.Redis.DB)
	assert.Equal(t, "host=db", opts.PostgresDSN)
}
