package jellyfin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tracksel/internal/config"
	"tracksel/internal/services"
)

// HTTPDoer describes the HTTP client used by the Jellyfin client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to one Jellyfin server.
type Client struct {
	baseURL string
	apiKey  string
	http    HTTPDoer
}

// NewConfiguredClient builds a client from the [jellyfin] config section.
func NewConfiguredClient(cfg *config.Config) (*Client, error) {
	if cfg == nil || !cfg.Jellyfin.Enabled {
		return nil, services.Wrap(services.ErrConfiguration, "jellyfin", "configure", "jellyfin.enabled is false", nil)
	}
	timeout := time.Duration(cfg.Jellyfin.TimeoutSeconds) * time.Second
	return New(cfg.Jellyfin.URL, cfg.Jellyfin.APIKey, &http.Client{Timeout: timeout})
}

// New constructs a client for baseURL authenticated with apiKey.
func New(baseURL, apiKey string, doer HTTPDoer) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	apiKey = strings.TrimSpace(apiKey)
	if baseURL == "" || apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "jellyfin", "configure", "url and api_key are required", nil)
	}
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, http: doer}, nil
}

// BaseURL returns the server URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type playbackInfo struct {
	MediaSources []struct {
		ID           string        `json:"Id"`
		Path         string        `json:"Path"`
		MediaStreams []MediaStream `json:"MediaStreams"`
	} `json:"MediaSources"`
}

// MediaStreams returns the streams of the first media source of itemID.
func (c *Client) MediaStreams(ctx context.Context, itemID string) ([]MediaStream, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, services.Wrap(services.ErrValidation, "jellyfin", "playback info", "empty item id", nil)
	}
	endpoint := fmt.Sprintf("%s/Items/%s/PlaybackInfo", c.baseURL, url.PathEscape(itemID))
	var info playbackInfo
	if err := c.getJSON(ctx, endpoint, &info); err != nil {
		return nil, err
	}
	if len(info.MediaSources) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "jellyfin", "playback info", "item "+itemID+" has no media sources", nil)
	}
	return info.MediaSources[0].MediaStreams, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build jellyfin request: %w", err)
	}
	req.Header.Set("X-Emby-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "jellyfin", "request", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "jellyfin", "request", endpoint, nil)
	case resp.StatusCode >= http.StatusMultipleChoices:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return services.Wrap(services.ErrExternalTool, "jellyfin", "request",
			fmt.Sprintf("%s returned %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrExternalTool, "jellyfin", "decode", endpoint, err)
	}
	return nil
}
