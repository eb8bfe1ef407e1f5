package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SCRAPPYMART_PORT", "SCRAPPYMART_DB_PATH", "SCRAPPYMART_LOG_LEVEL", "SCRAPPYMART_LOG_FORMAT",
		"SCRAPPYMART_BASE_URL", "SCRAPPYMART_PRESET_URL", "SCRAPPYMART_IMPORT_LINK",
		"SCRAPPYMART_PRESET_CACHE_SIZE", "SCRAPPYMART_PRESET_CACHE_TTL",
	} {
		t.Setenv(k, "")
	}
	// Keep a stray .env in the package directory from leaking in.
	t.Chdir(t.TempDir())
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, defaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 64, cfg.PresetCacheSize)
	assert.Equal(t, 10*time.Minute, cfg.PresetCacheTTL)
	assert.Empty(t, cfg.ImportLink)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = "9000"
db_path = "/var/lib/scrappymart/state.db"
base_url = "https://mart.example/"
preset_cache_ttl = "30s"
`), 0o644))

	t.Setenv("SCRAPPYMART_PORT", "9100")
	t.Setenv("SCRAPPYMART_IMPORT_LINK", "https://mart.example/#d=abc")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "/var/lib/scrappymart/state.db", cfg.DBPath)
	assert.Equal(t, "https://mart.example/", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.PresetCacheTTL)
	assert.Equal(t, "https://mart.example/#d=abc", cfg.ImportLink)
}

func TestLoadInvalidValues(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "missing.toml")

	t.Setenv("SCRAPPYMART_PRESET_CACHE_SIZE", "lots")
	_, err := Load(missing)
	assert.Error(t, err)

	t.Setenv("SCRAPPYMART_PRESET_CACHE_SIZE", "")
	t.Setenv("SCRAPPYMART_PRESET_CACHE_TTL", "soon")
	_, err = Load(missing)
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = "), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
