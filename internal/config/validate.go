package config

import (
	"errors"
	"fmt"
	"net/url"

	"tracksel/internal/track"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlayer(); err != nil {
		return err
	}
	if err := c.validatePreferences(); err != nil {
		return err
	}
	if err := c.validateJellyfin(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePlayer() error {
	if c.Player.MPVSocket == "" {
		return errors.New("player.mpv_socket must be set")
	}
	if c.Player.IPCTimeoutSeconds < 0 {
		return errors.New("player.ipc_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validatePreferences() error {
	for _, kind := range c.Preferences.DisabledKinds {
		if !kind.Valid() {
			return fmt.Errorf("preferences.disabled_kinds: %w", &track.InvalidKindError{Value: string(kind)})
		}
	}
	return nil
}

func (c *Config) validateJellyfin() error {
	if !c.Jellyfin.Enabled {
		return nil
	}
	if c.Jellyfin.URL == "" {
		return errors.New("jellyfin.url is required when jellyfin is enabled")
	}
	parsed, err := url.Parse(c.Jellyfin.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("jellyfin.url %q is not an absolute URL", c.Jellyfin.URL)
	}
	if c.Jellyfin.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/tracksel/config.toml"
		}
		return fmt.Errorf("jellyfin.api_key is required. Set JELLYFIN_API_KEY env var or edit %s (create with 'tracksel config init')", defaultPath)
	}
	if c.Jellyfin.TimeoutSeconds < 0 {
		return errors.New("jellyfin.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
