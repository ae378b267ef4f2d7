package config

import (
	"fmt"
	"os"
	"strings"

	"tracksel/internal/language"
	"tracksel/internal/track"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePlayer()
	if err := c.normalizePreferences(); err != nil {
		return err
	}
	c.normalizeJellyfin()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CachePath) == "" {
		c.Paths.CachePath = defaultCachePath
	}
	if c.Paths.CachePath, err = expandPath(c.Paths.CachePath); err != nil {
		return fmt.Errorf("paths.cache_path: %w", err)
	}
	return nil
}

func (c *Config) normalizePlayer() {
	c.Player.MPVSocket = strings.TrimSpace(c.Player.MPVSocket)
	if c.Player.MPVSocket == "" {
		c.Player.MPVSocket = defaultMPVSocket
	}
	if expanded, err := expandPath(c.Player.MPVSocket); err == nil {
		c.Player.MPVSocket = expanded
	}
	c.Player.FFprobeBinary = strings.TrimSpace(c.Player.FFprobeBinary)
	if c.Player.FFprobeBinary == "" {
		c.Player.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Player.IPCTimeoutSeconds == 0 {
		c.Player.IPCTimeoutSeconds = defaultIPCTimeout
	}
}

func (c *Config) normalizePreferences() error {
	c.Preferences.AudioLanguages = language.NormalizeList(c.Preferences.AudioLanguages)
	c.Preferences.SubtitleLanguages = language.NormalizeList(c.Preferences.SubtitleLanguages)

	names := append([]string(nil), c.Preferences.DisabledKindNames...)
	for _, kind := range c.Preferences.DisabledKinds {
		names = append(names, kind.String())
	}
	seen := make(map[track.Kind]struct{}, len(names))
	kinds := make([]track.Kind, 0, len(names))
	for _, name := range names {
		kind, err := track.ParseKind(strings.TrimSpace(name))
		if err != nil {
			return fmt.Errorf("preferences.disabled_kinds: %w", err)
		}
		if _, ok := seen[kind]; ok {
			continue
		}
		seen[kind] = struct{}{}
		kinds = append(kinds, kind)
	}
	c.Preferences.DisabledKinds = kinds
	c.Preferences.DisabledKindNames = nil
	return nil
}

func (c *Config) normalizeJellyfin() {
	if c.Jellyfin.APIKey == "" {
		if value, ok := os.LookupEnv("JELLYFIN_API_KEY"); ok {
			c.Jellyfin.APIKey = value
		}
	}
	c.Jellyfin.APIKey = strings.TrimSpace(c.Jellyfin.APIKey)
	c.Jellyfin.URL = strings.TrimRight(strings.TrimSpace(c.Jellyfin.URL), "/")
	if c.Jellyfin.TimeoutSeconds == 0 {
		c.Jellyfin.TimeoutSeconds = defaultJellyfinTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
