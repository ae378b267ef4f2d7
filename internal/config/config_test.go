package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"tracksel/internal/config"
	"tracksel/internal/track"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("JELLYFIN_API_KEY", "")
	origWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWD) })

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogDir := filepath.Join(tempHome, ".local", "share", "tracksel", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	wantCache := filepath.Join(tempHome, ".cache", "tracksel", "tracks.db")
	if cfg.Paths.CachePath != wantCache {
		t.Fatalf("unexpected cache path: got %q want %q", cfg.Paths.CachePath, wantCache)
	}
	if cfg.Jellyfin.Enabled {
		t.Fatal("expected Jellyfin disabled by default")
	}
	if cfg.Preferences.SubtitlesEnabled {
		t.Fatal("expected subtitles disabled by default")
	}
	if !reflect.DeepEqual(cfg.Preferences.AudioLanguages, []string{"en"}) {
		t.Fatalf("unexpected audio languages: %v", cfg.Preferences.AudioLanguages)
	}
	if len(cfg.Preferences.DisabledKinds) != 0 {
		t.Fatalf("expected no disabled kinds, got %v", cfg.Preferences.DisabledKinds)
	}
	if cfg.Player.FFprobeBinary != "ffprobe" {
		t.Fatalf("unexpected ffprobe binary: %q", cfg.Player.FFprobeBinary)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomConfigNormalizesPreferences(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("JELLYFIN_API_KEY", "env-key")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `[paths]
log_dir = "~/logs"

[player]
mpv_socket = "~/mpv.sock"

[preferences]
audio_languages = ["jpn", "eng", "en-US"]
subtitle_languages = ["ger"]
subtitles_enabled = true
disabled_kinds = ["video", "video"]

[jellyfin]
enabled = true
url = "https://jellyfin.example/"

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q, got %q exists=%v", configPath, resolved, exists)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Player.MPVSocket != filepath.Join(tempHome, "mpv.sock") {
		t.Fatalf("unexpected mpv socket: %q", cfg.Player.MPVSocket)
	}
	if !reflect.DeepEqual(cfg.Preferences.AudioLanguages, []string{"ja", "en"}) {
		t.Fatalf("unexpected audio languages: %v", cfg.Preferences.AudioLanguages)
	}
	if !reflect.DeepEqual(cfg.Preferences.SubtitleLanguages, []string{"de"}) {
		t.Fatalf("unexpected subtitle languages: %v", cfg.Preferences.SubtitleLanguages)
	}
	if !reflect.DeepEqual(cfg.Preferences.DisabledKinds, []track.Kind{track.KindVideo}) {
		t.Fatalf("unexpected disabled kinds: %v", cfg.Preferences.DisabledKinds)
	}
	if cfg.Jellyfin.URL != "https://jellyfin.example" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Jellyfin.URL)
	}
	if cfg.Jellyfin.APIKey != "env-key" {
		t.Fatalf("expected Jellyfin key from env, got %q", cfg.Jellyfin.APIKey)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
}

func TestLoadRejectsUnknownDisabledKind(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[preferences]\ndisabled_kinds = [\"subtitle\"]\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(configPath)
	if err == nil {
		t.Fatal("expected load to fail")
	}
	if !errors.Is(err, track.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
	if !strings.Contains(err.Error(), "preferences.disabled_kinds") {
		t.Fatalf("expected field name in error, got %v", err)
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"jellyfin without url", func(c *config.Config) { c.Jellyfin.Enabled = true; c.Jellyfin.APIKey = "k" }, "jellyfin.url"},
		{"jellyfin relative url", func(c *config.Config) {
			c.Jellyfin.Enabled = true
			c.Jellyfin.URL = "jellyfin.local"
			c.Jellyfin.APIKey = "k"
		}, "absolute URL"},
		{"jellyfin without key", func(c *config.Config) { c.Jellyfin.Enabled = true; c.Jellyfin.URL = "http://jf:8096" }, "jellyfin.api_key"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad disabled kind", func(c *config.Config) { c.Preferences.DisabledKinds = []track.Kind{"chapter"} }, "invalid track kind"},
		{"empty socket", func(c *config.Config) { c.Player.MPVSocket = "" }, "player.mpv_socket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg.Player.FFprobeBinary != "ffprobe" {
		t.Fatalf("unexpected sample ffprobe binary: %q", cfg.Player.FFprobeBinary)
	}
}

func TestEnsureDirectoriesCreatesLogAndCacheDirs(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.CachePath = filepath.Join(base, "cache", "tracks.db")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, filepath.Dir(cfg.Paths.CachePath)} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}
