package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	for _, key := range []string{"PCFORGE_API_URL", "PCFORGE_TRANSPORT", "PCFORGE_CACHE_TTL", "PCFORGE_CACHE_MAX_ENTRIES", "PCFORGE_DB_PATH"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()
	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, TransportHTTP, cfg.Transport)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 100, cfg.CacheMaxEntries)
	assert.Equal(t, 200*time.Millisecond, cfg.Debounce)
	assert.Equal(t, "pcforge.db", filepath.Base(cfg.DBPath))
}

func TestOverridesAndBadValues(t *testing.T) {
	t.Setenv("PCFORGE_API_URL", "https://shop.example.com/")
	t.Setenv("PCFORGE_TRANSPORT", "UDS")
	t.Setenv("PCFORGE_CACHE_TTL", "30s")
	t.Setenv("PCFORGE_CACHE_MAX_ENTRIES", "-4")
	t.Setenv("PCFORGE_HTTP_TIMEOUT", "soon")
	t.Setenv("PCFORGE_DB_PATH", "~/x/local.db")

	cfg := FromEnv()
	assert.Equal(t, "https://shop.example.com", cfg.APIURL)
	assert.Equal(t, TransportUDS, cfg.Transport)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 100, cfg.CacheMaxEntries)
	assert.Equal(t, 20*time.Second, cfg.HTTPTimeout)

	if home, err := os.UserHomeDir(); err == nil {
		assert.Equal(t, filepath.Join(home, "x", "local.db"), cfg.DBPath)
	}
}
