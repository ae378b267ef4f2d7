package trackcache

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"tracksel/internal/logging"
	"tracksel/internal/testsupport"
	"tracksel/internal/track"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := Open(filepath.Join(t.TempDir(), "cache", "tracks.db"), nil)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func sampleList() track.List {
	return track.List{
		{ID: 1, Kind: track.KindVideo, Codec: "hevc", Width: 3840, Height: 2160, Default: true},
		{ID: 1, Kind: track.KindAudio, Lang: "eng", Codec: "truehd", Channels: 8, SampleRate: 48000, FFIndex: 1},
		{ID: 1, Kind: track.KindSubtitle, Lang: "eng", Codec: "subrip", Title: "Forced", Forced: true, FFIndex: 2},
	}
}

func TestStoreAndLookup(t *testing.T) {
	cache := openTestCache(t)
	ctx := context.Background()
	media := testsupport.WriteMedia(t, t.TempDir(), "movie.mkv", 128)
	key, err := KeyFor(media)
	if err != nil {
		t.Fatalf("KeyFor returned error: %v", err)
	}

	if _, ok, err := cache.Lookup(ctx, key); err != nil || ok {
		t.Fatalf("expected miss on empty cache, got ok=%v err=%v", ok, err)
	}

	entry, err := cache.Store(ctx, key, sampleList())
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	if len(entry.ID) != 36 {
		t.Fatalf("expected uuid entry id, got %q", entry.ID)
	}

	got, ok, err := cache.Lookup(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, sampleList()) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, sampleList())
	}
}

func TestLookupMissesWhenFileChanges(t *testing.T) {
	cache := openTestCache(t)
	ctx := context.Background()
	media := testsupport.WriteMedia(t, t.TempDir(), "movie.mkv", 64)
	key, err := KeyFor(media)
	if err != nil {
		t.Fatalf("KeyFor returned error: %v", err)
	}
	if _, err := cache.Store(ctx, key, sampleList()); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	testsupport.Touch(t, media, key.ModTime.Add(time.Hour))
	changed, err := KeyFor(media)
	if err != nil {
		t.Fatalf("KeyFor returned error: %v", err)
	}
	if _, ok, err := cache.Lookup(ctx, changed); err != nil || ok {
		t.Fatalf("expected miss after mtime change, got ok=%v err=%v", ok, err)
	}
}

func TestStoreReplacesExistingPath(t *testing.T) {
	cache := openTestCache(t)
	ctx := context.Background()
	key := Key{Path: "/media/a.mkv", Size: 10, ModTime: time.Unix(1700000000, 0)}

	if _, err := cache.Store(ctx, key, sampleList()); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	if _, err := cache.Store(ctx, key, sampleList()[:1]); err != nil {
		t.Fatalf("second Store returned error: %v", err)
	}
	entries, err := cache.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 1 || len(entries[0].Tracks) != 1 {
		t.Fatalf("expected one entry with one track, got %+v", entries)
	}
}

func TestStoreRejectsInvalidKind(t *testing.T) {
	cache := openTestCache(t)
	key := Key{Path: "/media/a.mkv", Size: 10, ModTime: time.Unix(1700000000, 0)}
	_, err := cache.Store(context.Background(), key, track.List{{ID: 1, Kind: track.Kind("subtitle")}})
	if !errors.Is(err, track.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestCorruptKindSurfacesAsError(t *testing.T) {
	cache := openTestCache(t)
	ctx := context.Background()
	key := Key{Path: "/media/a.mkv", Size: 10, ModTime: time.Unix(1700000000, 0)}
	if _, err := cache.Store(ctx, key, sampleList()); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	if _, err := cache.db.ExecContext(ctx, "UPDATE probe_tracks SET kind = 'Subtitles' WHERE kind = 'sub'"); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}
	_, _, err := cache.Lookup(ctx, key)
	if !errors.Is(err, track.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestRemoveAndClear(t *testing.T) {
	cache := openTestCache(t)
	ctx := context.Background()
	for _, p := range []string{"/media/a.mkv", "/media/b.mkv", "/media/c.mkv"} {
		if _, err := cache.Store(ctx, Key{Path: p, Size: 1, ModTime: time.Unix(1, 0)}, sampleList()); err != nil {
			t.Fatalf("Store(%s) returned error: %v", p, err)
		}
	}

	removed, err := cache.Remove(ctx, "/media/b.mkv")
	if err != nil || !removed {
		t.Fatalf("expected removal, got %v %v", removed, err)
	}
	removed, err = cache.Remove(ctx, "/media/b.mkv")
	if err != nil || removed {
		t.Fatalf("second removal should report false, got %v %v", removed, err)
	}

	entries, err := cache.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 2 || entries[0].Path != "/media/a.mkv" || entries[1].Path != "/media/c.mkv" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	n, err := cache.Clear(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Clear = %d, %v; want 2, nil", n, err)
	}
	var orphans int
	if err := cache.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM probe_tracks").Scan(&orphans); err != nil {
		t.Fatalf("count tracks: %v", err)
	}
	if orphans != 0 {
		t.Fatalf("expected tracks to cascade, found %d", orphans)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracks.db")
	cache, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	key := Key{Path: "/media/a.mkv", Size: 1, ModTime: time.Unix(5, 0)}
	if _, err := cache.Store(context.Background(), key, sampleList()); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	_ = cache.Close()

	reopened, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()
	if _, ok, err := reopened.Lookup(context.Background(), key); err != nil || !ok {
		t.Fatalf("expected hit after reopen, got %v %v", ok, err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracks.db")
	cache, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if _, err := cache.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = cache.Close()

	if _, err := Open(path, nil); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestProbeUsesCache(t *testing.T) {
	cache := openTestCache(t)
	media := testsupport.WriteMedia(t, t.TempDir(), "show.mkv", 32)
	calls := 0
	inspect := func(ctx context.Context, path string) (track.List, error) {
		calls++
		return sampleList(), nil
	}

	for i, wantHit := range []bool{false, true, true} {
		list, hit, err := Probe(context.Background(), cache, media, inspect, nil)
		if err != nil {
			t.Fatalf("Probe %d returned error: %v", i, err)
		}
		if hit != wantHit {
			t.Fatalf("Probe %d hit = %v, want %v", i, hit, wantHit)
		}
		if len(list) != 3 {
			t.Fatalf("Probe %d returned %d tracks", i, len(list))
		}
	}
	if calls != 1 {
		t.Fatalf("expected one inspect call, got %d", calls)
	}
}

func TestProbeWithoutCache(t *testing.T) {
	calls := 0
	inspect := func(ctx context.Context, path string) (track.List, error) {
		calls++
		return nil, errors.New("boom")
	}
	if _, _, err := Probe(context.Background(), nil, "/nowhere.mkv", inspect, nil); err == nil {
		t.Fatal("expected inspect error")
	}
	if calls != 1 {
		t.Fatalf("expected inspect to run, got %d calls", calls)
	}
}

func TestListWarnsOnInvalidProbeTime(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New returned error: %v", err)
	}
	cache, err := Open(filepath.Join(t.TempDir(), "tracks.db"), logger.Logger)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	ctx := context.Background()
	media := testsupport.WriteMedia(t, t.TempDir(), "movie.mkv", 64)
	key, err := KeyFor(media)
	if err != nil {
		t.Fatalf("KeyFor returned error: %v", err)
	}
	if _, err := cache.Store(ctx, key, sampleList()); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	if _, err := cache.db.ExecContext(ctx, "UPDATE probes SET probed_at = 'yesterday'"); err != nil {
		t.Fatalf("corrupt probed_at: %v", err)
	}

	entries, err := cache.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 1 || len(entries[0].Tracks) != len(sampleList()) {
		t.Fatalf("expected the entry to still be listed, got %+v", entries)
	}
	if !entries[0].ProbedAt.IsZero() {
		t.Fatalf("expected zero probe time, got %v", entries[0].ProbedAt)
	}
	out := buf.String()
	if !strings.Contains(out, `"event_type":"cache_entry_invalid"`) || !strings.Contains(out, "yesterday") {
		t.Fatalf("expected invalid probe time warning, got %s", out)
	}
}
