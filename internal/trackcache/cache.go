package trackcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tracksel/internal/logging"
	"tracksel/internal/track"
)

// Key identifies one version of a media file on disk.
type Key struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// KeyFor stats path and returns its cache key.
func KeyFor(path string) (Key, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Key{}, fmt.Errorf("resolve %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Key{}, fmt.Errorf("stat %q: %w", abs, err)
	}
	if info.IsDir() {
		return Key{}, fmt.Errorf("%q is a directory", abs)
	}
	return Key{Path: abs, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Entry is one cached probe.
type Entry struct {
	ID       string     `json:"id"`
	Path     string     `json:"path"`
	Size     int64      `json:"size"`
	ModTime  time.Time  `json:"mod_time"`
	ProbedAt time.Time  `json:"probed_at"`
	Tracks   track.List `json:"tracks"`
}

// Cache is the SQLite-backed probe cache.
type Cache struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open creates or opens the cache database at path.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// PRAGMAs are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	c := &Cache{db: db, path: path, logger: logging.NewComponentLogger(logger, "trackcache")}
	if err := c.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Path returns the database file location.
func (c *Cache) Path() string {
	return c.path
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Lookup returns the cached tracks for key. A stale or missing entry misses.
func (c *Cache) Lookup(ctx context.Context, key Key) (track.List, bool, error) {
	var (
		id    string
		size  int64
		modNS int64
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT id, size, mod_time_ns FROM probes WHERE path = ?", key.Path,
	).Scan(&id, &size, &modNS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup %q: %w", key.Path, err)
	}
	if size != key.Size || modNS != key.ModTime.UnixNano() {
		c.logger.Debug("cache entry stale", logging.String("path", key.Path))
		return nil, false, nil
	}
	tracks, err := c.loadTracks(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return tracks, true, nil
}

// Store replaces any entry for key.Path with tracks.
func (c *Cache) Store(ctx context.Context, key Key, tracks track.List) (Entry, error) {
	for i, t := range tracks {
		if !t.Kind.Valid() {
			return Entry{}, fmt.Errorf("store track %d: %w", i, &track.InvalidKindError{Value: string(t.Kind)})
		}
	}

	entry := Entry{
		ID:       uuid.NewString(),
		Path:     key.Path,
		Size:     key.Size,
		ModTime:  key.ModTime,
		ProbedAt: time.Now().UTC(),
		Tracks:   append(track.List(nil), tracks...),
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("begin store tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM probes WHERE path = ?", key.Path); err != nil {
		return Entry{}, fmt.Errorf("replace %q: %w", key.Path, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO probes (id, path, size, mod_time_ns, probed_at) VALUES (?, ?, ?, ?, ?)",
		entry.ID, entry.Path, entry.Size, entry.ModTime.UnixNano(), entry.ProbedAt.Format(time.RFC3339Nano),
	); err != nil {
		return Entry{}, fmt.Errorf("insert probe: %w", err)
	}
	for i, t := range tracks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO probe_tracks (
                probe_id, position, track_id, kind, title, lang, codec,
                is_default, is_forced, ff_index, width, height, channels, sample_rate
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.ID, i, t.ID, t.Kind.String(), t.Title, t.Lang, t.Codec,
			boolToInt(t.Default), boolToInt(t.Forced), t.FFIndex, t.Width, t.Height, t.Channels, t.SampleRate,
		); err != nil {
			return Entry{}, fmt.Errorf("insert track %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("commit probe: %w", err)
	}
	c.logger.Debug("cache entry stored",
		logging.String("path", entry.Path),
		logging.Int("tracks", len(entry.Tracks)),
	)
	return entry, nil
}

// Remove deletes the entry for path and reports whether one existed.
func (c *Cache) Remove(ctx context.Context, path string) (bool, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM probes WHERE path = ?", path)
	if err != nil {
		return false, fmt.Errorf("remove %q: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove %q: %w", path, err)
	}
	return n > 0, nil
}

// Clear deletes every entry and returns how many were removed.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM probes")
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return int(n), nil
}

// List returns every entry ordered by path.
func (c *Cache) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT id, path, size, mod_time_ns, probed_at FROM probes ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("list cache: %w", err)
	}
	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			modNS    int64
			probedAt string
		)
		if err := rows.Scan(&e.ID, &e.Path, &e.Size, &modNS, &probedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan probe: %w", err)
		}
		e.ModTime = time.Unix(0, modNS)
		if e.ProbedAt, err = time.Parse(time.RFC3339Nano, probedAt); err != nil {
			logging.WarnWithContext(c.logger, "cache entry has invalid probe time", "cache_entry_invalid",
				logging.String("path", e.Path),
				logging.String("probed_at", probedAt),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run tracksel cache remove on the file"),
			)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("list cache: %w", err)
	}
	_ = rows.Close()

	for i := range entries {
		tracks, err := c.loadTracks(ctx, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Tracks = tracks
	}
	return entries, nil
}

func (c *Cache) loadTracks(ctx context.Context, probeID string) (track.List, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT track_id, kind, title, lang, codec, is_default, is_forced,
                ff_index, width, height, channels, sample_rate
         FROM probe_tracks WHERE probe_id = ? ORDER BY position`, probeID)
	if err != nil {
		return nil, fmt.Errorf("load tracks: %w", err)
	}
	defer rows.Close()

	list := make(track.List, 0)
	for rows.Next() {
		var (
			t         track.Track
			kind      string
			isDefault int
			isForced  int
		)
		if err := rows.Scan(&t.ID, &kind, &t.Title, &t.Lang, &t.Codec, &isDefault, &isForced,
			&t.FFIndex, &t.Width, &t.Height, &t.Channels, &t.SampleRate); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		parsed, err := track.ParseKind(kind)
		if err != nil {
			return nil, fmt.Errorf("cached track %d of %s: %w", t.ID, probeID, err)
		}
		t.Kind = parsed
		t.Default = isDefault != 0
		t.Forced = isForced != 0
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load tracks: %w", err)
	}
	return list, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
