package trackcache

import (
	"context"
	"log/slog"

	"tracksel/internal/logging"
	"tracksel/internal/track"
)

// InspectFunc probes a file and returns its tracks.
type InspectFunc func(ctx context.Context, path string) (track.List, error)

// Probe returns the tracks of path, consulting cache first when it is not
// nil. The boolean reports a cache hit. Cache failures are logged and fall
// through to inspect.
func Probe(ctx context.Context, cache *Cache, path string, inspect InspectFunc, logger *slog.Logger) (track.List, bool, error) {
	logger = logging.NewComponentLogger(logger, "trackcache")
	if cache == nil {
		list, err := inspect(ctx, path)
		return list, false, err
	}

	key, err := KeyFor(path)
	if err != nil {
		return nil, false, err
	}
	if list, ok, err := cache.Lookup(ctx, key); err != nil {
		logging.WarnWithContext(logger, "track cache lookup failed", "cache_lookup_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run tracksel cache clear"),
			logging.String(logging.FieldImpact, "file is probed again"),
		)
	} else if ok {
		logger.Debug("track cache hit", logging.String("path", key.Path))
		return list, true, nil
	}

	list, err := inspect(ctx, key.Path)
	if err != nil {
		return nil, false, err
	}
	if _, err := cache.Store(ctx, key, list); err != nil {
		logging.WarnWithContext(logger, "track cache store failed", "cache_store_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "next probe of this file runs ffprobe again"),
		)
	}
	return list, false, nil
}
