package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("signing key is required", func(t *testing.T) {
		t.Setenv("JWT_SIGNING_KEY", "")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("JWT_SIGNING_KEY", "k")
		t.Setenv("BLACKLIST_BACKEND", "Memory")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "memory", cfg.BlacklistBackend)
		assert.Equal(t, 5*time.Minute, cfg.AccessTTL())
		assert.Equal(t, 24*time.Hour, cfg.RefreshTTL())
		assert.Contains(t, cfg.BindingExcludedPaths, "/v1/login")
		assert.Contains(t, cfg.BindingExcludedPaths, "/v1/refresh-token")
		assert.Empty(t, cfg.TrustedProxies)
	})

	t.Run("unknown blacklist backend", func(t *testing.T) {
		t.Setenv("JWT_SIGNING_KEY", "k")
		t.Setenv("BLACKLIST_BACKEND", "etcd")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("TEST_LIST", " /a, ,/b ,")
	assert.Equal(t, []string{"/a", "/b"}, getEnvList("TEST_LIST", nil))

	t.Setenv("TEST_LIST", "")
	assert.Empty(t, getEnvList("TEST_LIST", []string{"/x"}))

	assert.Equal(t, []string{"/x"}, getEnvList("TEST_LIST_UNSET", []string{"/x"}))
}
