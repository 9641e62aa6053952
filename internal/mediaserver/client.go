package mediaserver

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/reel/internal/config"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/mediaserver/jellyfin"
)

// Client is everything the application needs from a media server backend
type Client interface {
	domain.Catalog
	domain.FilterSource
	domain.PlaybackResolver
}

var _ Client = (*jellyfin.Client)(nil)

// NewClient creates a Jellyfin/Emby client from configuration. The store
// holds the session and device identity across runs.
func NewClient(cfg *config.Config, store domain.CredentialStore, version string, logger *slog.Logger) (*jellyfin.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if cfg.Server.URL == "" {
		return nil, &domain.ConfigurationError{Field: "server.url", Reason: "not set"}
	}

	device, err := jellyfin.LoadDeviceIdentity(store, cfg.Client.Name, version, cfg.Client.DeviceName)
	if err != nil {
		return nil, fmt.Errorf("device identity: %w", err)
	}

	return jellyfin.NewClient(jellyfin.Options{
		BaseURL: cfg.Server.URL,
		Credentials: jellyfin.Credentials{
			Username: cfg.Server.Username,
			Password: cfg.Server.Password,
		},
		Device:  device,
		Store:   store,
		Timeout: time.Duration(cfg.Server.Timeout) * time.Second,
		Labels: jellyfin.EpisodeLabels{
			Template: cfg.Catalog.EpisodeTemplate,
			Prefix:   cfg.Catalog.EpisodePrefix,
			Details:  cfg.Catalog.EpisodeDetails,
		},
		Logger: logger,
	})
}
