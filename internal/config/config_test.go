package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateServerURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain http", raw: "http://media.local:8096", want: "http://media.local:8096"},
		{name: "trailing slash trimmed", raw: "https://media.example.com/jellyfin/", want: "https://media.example.com/jellyfin"},
		{name: "surrounding space", raw: "  http://10.0.0.2  ", want: "http://10.0.0.2"},
		{name: "empty", raw: "", wantErr: true},
		{name: "no scheme", raw: "media.local:8096", wantErr: true},
		{name: "ftp scheme", raw: "ftp://media.local", wantErr: true},
		{name: "missing host", raw: "http://", wantErr: true},
		{name: "unparsable", raw: "http://[::1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateServerURL(tt.raw)
			if tt.wantErr {
				var cfgErr *domain.ConfigurationError
				require.Error(t, err)
				assert.True(t, errors.As(err, &cfgErr))
				assert.Equal(t, "server.url", cfgErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Reel", cfg.Client.Name)
	assert.Equal(t, "{number} - {title}", cfg.Catalog.EpisodeTemplate)
	assert.Equal(t, []string{DetailOverview, DetailSize, DetailRuntime}, cfg.Catalog.EpisodeDetails)
	assert.False(t, cfg.IsConfigured())
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `server:
  url: http://media.local:8096/
  username: alice
catalog:
  episode_template: "{seriesTitle} {number}"
  episode_details: [Size]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("REEL_SERVER_PASSWORD", "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://media.local:8096", cfg.Server.URL)
	assert.Equal(t, "alice", cfg.Server.Username)
	assert.Equal(t, "s3cret", cfg.Server.Password)
	assert.Equal(t, "{seriesTitle} {number}", cfg.Catalog.EpisodeTemplate)
	assert.Equal(t, []string{DetailSize}, cfg.Catalog.EpisodeDetails)
	assert.True(t, cfg.IsConfigured())
}

func TestLoadRejectsBadURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  url: not-a-url\n"), 0644))

	_, err := Load(path)
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoadRejectsUnknownDetail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog:\n  episode_details: [Bitrate]\n"), 0644))

	_, err := Load(path)
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Bitrate", cfgErr.Value)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	require.NoError(t, cfg.SetServerURL("http://media.local/"))
	cfg.Server.Username = "bob"
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://media.local", loaded.Server.URL)
	assert.Equal(t, "bob", loaded.Server.Username)
}

func TestSetServerURLKeepsOldValueOnError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.URL = "http://old.local"

	err := cfg.SetServerURL("nope")
	require.Error(t, err)
	assert.Equal(t, "http://old.local", cfg.Server.URL)
}
