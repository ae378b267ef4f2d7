package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"tracksel/internal/services"
	"tracksel/internal/track"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "mpv", "set_property", "aid rejected", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"mpv", "set_property", "aid rejected"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestClassify(t *testing.T) {
	_, kindErr := track.ParseKind("subtitles")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", services.Wrap(services.ErrValidation, "cli", "parse", "bad", nil), "validation"},
		{"not found", services.Wrap(services.ErrNotFound, "jellyfin", "item", "missing", nil), "not_found"},
		{"external", services.Wrap(services.ErrExternalTool, "ffprobe", "run", "exit 1", nil), "external_tool"},
		{"timeout", services.Wrap(services.ErrTimeout, "mpv", "dial", "", nil), "timeout"},
		{"invalid kind", fmt.Errorf("select: %w", kindErr), "validation"},
		{"plain", errors.New("io"), "transient"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.Classify(tt.err); got != tt.want {
				t.Fatalf("Classify = %q, want %q", got, tt.want)
			}
		})
	}
}
