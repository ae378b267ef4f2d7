package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"tracksel/internal/config"
	"tracksel/internal/track"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CachePath = filepath.Join(base, "cache", "tracks.db")
	cfgVal.Player.MPVSocket = filepath.Join(base, "mpv.sock")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSocket points the player config at an existing socket, such as a FakeMPV.
func WithSocket(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Player.MPVSocket = path
	}
}

// WithJellyfin enables the Jellyfin section against url.
func WithJellyfin(url, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Jellyfin.Enabled = true
		b.cfg.Jellyfin.URL = url
		b.cfg.Jellyfin.APIKey = apiKey
	}
}

// WithDisabledKinds switches off the given kinds.
func WithDisabledKinds(kinds ...track.Kind) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Preferences.DisabledKinds = append([]track.Kind(nil), kinds...)
		names := make([]string, 0, len(kinds))
		for _, k := range kinds {
			names = append(names, k.String())
		}
		b.cfg.Preferences.DisabledKindNames = names
	}
}

// WithFFprobeOutput installs a stub ffprobe that prints payload and points
// the config at it.
func WithFFprobeOutput(payload string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		fixture := filepath.Join(binDir, "ffprobe.json")
		if err := os.WriteFile(fixture, []byte(payload), 0o644); err != nil {
			b.t.Fatalf("write ffprobe fixture: %v", err)
		}
		stub := filepath.Join(binDir, "ffprobe")
		script := "#!/bin/sh\necho \"$@\" >> " + filepath.Join(binDir, "ffprobe.calls") + "\ncat " + fixture + "\n"
		if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
			b.t.Fatalf("write ffprobe stub: %v", err)
		}
		b.cfg.Player.FFprobeBinary = stub
	}
}

// FFprobeCalls returns how many times the stub installed by WithFFprobeOutput ran.
func FFprobeCalls(t testing.TB, cfg *config.Config) int {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(filepath.Dir(cfg.Player.FFprobeBinary), "ffprobe.calls"))
	if err != nil {
		if os.IsNotExist(err) {
			return 0
		}
		t.Fatalf("read ffprobe calls: %v", err)
	}
	count := 0
	for _, b := range data {
		if b == '\n' {
			count++
		}
	}
	return count
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
