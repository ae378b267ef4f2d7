package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tracksel/internal/config"
	"tracksel/internal/logging"
	"tracksel/internal/mpv"
	"tracksel/internal/preflight"
	"tracksel/internal/selection"
	"tracksel/internal/services"
	"tracksel/internal/trackcache"
)

type commandContext struct {
	socketFlag *string
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	log        *logging.Logger
	requestID  string
}

func newCommandContext(socketFlag, configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		socketFlag: socketFlag,
		configFlag: configFlag,
		verbose:    verbose,
		requestID:  uuid.NewString(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger returns the process logger, falling back to a no-op logger when the
// configured outputs cannot be opened.
func (c *commandContext) logger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, _ := c.ensureConfig()
		log, err := logging.NewFromConfig(cfg)
		if err != nil {
			return
		}
		if c.verbose != nil && *c.verbose {
			log.SetLevel("debug")
		}
		c.log = log
	})
	if c.log == nil {
		return logging.NewNop()
	}
	return c.log.Logger
}

func (c *commandContext) close() error {
	if c.log == nil {
		return nil
	}
	return c.log.Close()
}

// requestContext tags ctx with this invocation's correlation id and the mpv
// socket in use so every log line can be traced back to one command.
func (c *commandContext) requestContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = services.WithRequestID(ctx, c.requestID)
	if socket := c.socketPath(); socket != "" {
		ctx = services.WithSocket(ctx, socket)
	}
	return ctx
}

func (c *commandContext) socketPath() string {
	if c.socketFlag != nil {
		if s := strings.TrimSpace(*c.socketFlag); s != "" {
			return s
		}
	}
	if c.config != nil {
		return c.config.Player.MPVSocket
	}
	return ""
}

func (c *commandContext) preferences() selection.Preferences {
	cfg, _ := c.ensureConfig()
	if cfg == nil {
		return selection.Preferences{}
	}
	return selection.Preferences{
		AudioLanguages:    cfg.Preferences.AudioLanguages,
		SubtitleLanguages: cfg.Preferences.SubtitleLanguages,
		SubtitlesEnabled:  cfg.Preferences.SubtitlesEnabled,
		Disabled:          cfg.Preferences.DisabledKinds,
	}
}

func (c *commandContext) withMPV(cmd *cobra.Command, fn func(context.Context, *mpv.Client) error) error {
	socket := c.socketPath()
	if check := preflight.CheckSocket("mpv socket", socket); !check.Passed {
		return services.Wrap(services.ErrExternalTool, "mpv", "connect", check.Detail, nil)
	}
	ctx := c.requestContext(cmd)
	timeout := 5 * time.Second
	if c.config != nil && c.config.Player.IPCTimeoutSeconds > 0 {
		timeout = time.Duration(c.config.Player.IPCTimeoutSeconds) * time.Second
	}
	client, err := mpv.Dial(ctx, socket,
		mpv.WithLogger(logging.WithContext(ctx, c.logger())),
		mpv.WithTimeout(timeout),
	)
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(ctx, client)
}

// openCache returns nil without error when the cache is disabled.
func (c *commandContext) openCache() (*trackcache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	cache, err := trackcache.Open(cfg.Paths.CachePath, c.logger())
	if err != nil {
		return nil, fmt.Errorf("open track cache: %w", err)
	}
	return cache, nil
}

func (c *commandContext) requireCache() (*trackcache.Cache, error) {
	cache, err := c.openCache()
	if err != nil {
		return nil, err
	}
	if cache == nil {
		return nil, services.Wrap(services.ErrConfiguration, "cache", "open", "cache.enabled is false", nil)
	}
	return cache, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
