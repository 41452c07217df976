package webnet

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ogalib.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, 30*time.Second, cfg.ResolveTimeout)
	require.Equal(t, 30*time.Second, cfg.ConnectTimeout)
	require.Equal(t, 30*time.Second, cfg.SendTimeout)
	require.Equal(t, 30*time.Second, cfg.ReceiveTimeout)
	require.False(t, cfg.IgnoreSSLErrors)
	require.NotEmpty(t, cfg.UserAgent)
}

func TestLoadConfig(t *testing.T) {
	t.Run("overrides present keys", func(t *testing.T) {
		path := writeConfig(t, `{
			"baseAPI": "https://api.example.com",
			"apiKey": "secret",
			"ignoreSSLErrors": true,
			"encodeURLRequests": true,
			"receiveTimeout": "5s",
			"unknown": [1, 2]
		}`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, "https://api.example.com", cfg.BaseAPI)
		require.Equal(t, "secret", cfg.APIKey)
		require.True(t, cfg.IgnoreSSLErrors)
		require.True(t, cfg.EncodeURLRequests)
		require.Equal(t, 5*time.Second, cfg.ReceiveTimeout)
		require.Equal(t, 30*time.Second, cfg.SendTimeout)
	})

	t.Run("missing file returns error", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid json returns parse error", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, `{"baseAPI": `))
		require.Error(t, err)
		require.Contains(t, err.Error(), "ogalib json parse error")
	})

	t.Run("wrong types return error", func(t *testing.T) {
		invalid := []string{
			`[]`,
			`{"baseAPI": 1}`,
			`{"ignoreSSLErrors": "yes"}`,
			`{"sendTimeout": "soon"}`,
			`{"sendTimeout": "-1s"}`,
		}
		for _, content := range invalid {
			_, err := LoadConfig(writeConfig(t, content))
			require.Error(t, err, "expected error for %s", content)
		}
	})
}
