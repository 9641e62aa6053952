package mediaserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/reel/internal/config"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/mediaserver/jellyfin"
)

const detectTimeout = 10 * time.Second

// ServerInfo describes a probed server
type ServerInfo struct {
	URL         string `json:"url" yaml:"url"`
	ProductName string `json:"product" yaml:"product"`
	ServerName  string `json:"name" yaml:"name"`
	Version     string `json:"version" yaml:"version"`
	ID          string `json:"id" yaml:"id"`
}

// Detect probes the unauthenticated /System/Info/Public endpoint and reports
// the server if it is Jellyfin or Emby.
func Detect(ctx context.Context, serverURL string) (ServerInfo, error) {
	normalized, err := config.ValidateServerURL(serverURL)
	if err != nil {
		return ServerInfo{}, err
	}

	client := &http.Client{Timeout: detectTimeout}
	info, err := fetchSystemInfo(ctx, client, normalized)
	if err != nil {
		return ServerInfo{}, err
	}

	product := strings.ToLower(info.ProductName)
	if !strings.Contains(product, "jellyfin") && !strings.Contains(product, "emby") {
		return ServerInfo{}, fmt.Errorf("not a Jellyfin or Emby server (ProductName: %s)", info.ProductName)
	}

	return ServerInfo{
		URL:         normalized,
		ProductName: info.ProductName,
		ServerName:  info.ServerName,
		Version:     info.Version,
		ID:          info.ID,
	}, nil
}

func fetchSystemInfo(ctx context.Context, client *http.Client, serverURL string) (jellyfin.SystemInfo, error) {
	url := serverURL + "/System/Info/Public"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return jellyfin.SystemInfo{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return jellyfin.SystemInfo{}, &domain.TransportError{Op: http.MethodGet, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return jellyfin.SystemInfo{}, &domain.APIError{StatusCode: resp.StatusCode}
	}

	var info jellyfin.SystemInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return jellyfin.SystemInfo{}, &domain.DecodeError{Target: "system info", Err: err}
	}
	return info, nil
}
