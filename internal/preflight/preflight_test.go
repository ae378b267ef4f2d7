package preflight

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"tracksel/internal/config"
	"tracksel/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed || result.Detail == "" {
		t.Fatalf("expected failure with detail, got %+v", result)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckSocket(t *testing.T) {
	fake := testsupport.NewFakeMPV(t)
	if result := CheckSocket("mpv", fake.Socket); !result.Passed {
		t.Fatalf("expected pass for live socket, got %s", result.Detail)
	}

	missing := CheckSocket("mpv", filepath.Join(t.TempDir(), "absent.sock"))
	if missing.Passed {
		t.Fatal("expected failure for missing socket")
	}

	regular := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(regular, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckSocket("mpv", regular); result.Passed {
		t.Fatal("expected failure for regular file")
	}

	if result := CheckSocket("mpv", " "); result.Passed {
		t.Fatal("expected failure for empty path")
	}
}

func TestCheckSocketAcceptsAnyUnixListener(t *testing.T) {
	dir, err := os.MkdirTemp("", "sock")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "s")
	l, err := net.Listen("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	if result := CheckSocket("mpv", path); !result.Passed {
		t.Fatalf("expected pass, got %s", result.Detail)
	}
}

func TestCheckBinary(t *testing.T) {
	if result := CheckBinary("shell", "sh"); !result.Passed {
		t.Fatalf("expected sh on PATH, got %s", result.Detail)
	}
	if result := CheckBinary("missing", "definitely-not-a-binary-xyz"); result.Passed {
		t.Fatal("expected failure for missing binary")
	}
	if result := CheckBinary("empty", ""); result.Passed {
		t.Fatal("expected failure for empty command")
	}
}

func TestCheckJellyfin_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Emby-Token") != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if result := CheckJellyfin(context.Background(), srv.URL, "good-key"); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckJellyfin(context.Background(), srv.URL, "bad-key"); result.Passed {
		t.Fatal("expected failure for bad key")
	}
}

func TestCheckJellyfin_MissingSettings(t *testing.T) {
	if result := CheckJellyfin(context.Background(), "", "key"); result.Passed {
		t.Fatal("expected failure for missing URL")
	}
	if result := CheckJellyfin(context.Background(), "http://localhost", ""); result.Passed {
		t.Fatal("expected failure for missing key")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MissingSocketIsOptional(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFFprobeOutput(`{"streams":[]}`))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), cfg)
	if len(results) != 4 {
		t.Fatalf("expected ffprobe, log dir, cache dir and socket checks, got %+v", results)
	}
	if Failed(results) {
		t.Fatalf("missing socket should not fail preflight: %+v", results)
	}
	last := results[len(results)-1]
	if last.Passed || !last.Optional {
		t.Fatalf("expected optional failing socket check, got %+v", last)
	}
}

func TestRunAll_IncludesJellyfinWhenEnabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Cache.Enabled = false
	cfg.Jellyfin.Enabled = true
	cfg.Jellyfin.URL = srv.URL
	cfg.Jellyfin.APIKey = "test"

	results := RunAll(context.Background(), &cfg)
	found := false
	for _, r := range results {
		if r.Name == "Jellyfin" {
			found = true
			if !r.Passed {
				t.Errorf("Jellyfin check failed: %s", r.Detail)
			}
		}
	}
	if !found {
		t.Fatal("expected Jellyfin check in results")
	}
}
