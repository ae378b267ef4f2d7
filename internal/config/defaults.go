package config

const (
	defaultLogDir          = "~/.local/share/tracksel/logs"
	defaultCachePath       = "~/.cache/tracksel/tracks.db"
	defaultMPVSocket       = "/tmp/mpvsocket"
	defaultFFprobeBinary   = "ffprobe"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultJellyfinTimeout = 15
	defaultIPCTimeout      = 5
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			CachePath: defaultCachePath,
		},
		Player: Player{
			MPVSocket:         defaultMPVSocket,
			FFprobeBinary:     defaultFFprobeBinary,
			IPCTimeoutSeconds: defaultIPCTimeout,
		},
		Preferences: Preferences{
			AudioLanguages:    []string{"en"},
			SubtitleLanguages: []string{"en"},
			SubtitlesEnabled:  false,
		},
		Jellyfin: Jellyfin{
			Enabled:        false,
			TimeoutSeconds: defaultJellyfinTimeout,
		},
		Cache: Cache{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
