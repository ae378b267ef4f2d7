package jellyfin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tracksel/internal/config"
	"tracksel/internal/services"
	"tracksel/internal/track"
)

const playbackInfoBody = `{
  "MediaSources": [{
    "Id": "src1",
    "Path": "/media/movie.mkv",
    "MediaStreams": [
      {"Index": 0, "Type": "Video", "Codec": "HEVC", "Width": 1920, "Height": 1080, "IsDefault": true},
      {"Index": 1, "Type": "Audio", "Codec": "eac3", "Language": "eng", "Channels": 6, "SampleRate": 48000, "IsDefault": true},
      {"Index": 2, "Type": "Subtitle", "Codec": "subrip", "Language": "eng", "DisplayTitle": "English - SUBRIP"},
      {"Index": 3, "Type": "EmbeddedImage", "Codec": "mjpeg"},
      {"Index": 4, "Type": "Subtitle", "Codec": "ass", "Language": "jpn", "Title": "Signs", "IsForced": true,
       "IsExternal": true, "DeliveryUrl": "/Videos/abc/src1/Subtitles/4/0/Stream.ass"},
      {"Index": 5, "Type": "Subtitle", "Codec": "webvtt", "Language": "fre", "IsExternal": true}
    ]
  }]
}`

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := r.Header.Get("X-Emby-Token"); token != "token-123" {
			t.Errorf("unexpected token: %q", token)
		}
		if r.URL.Path != "/Items/item-1/PlaybackInfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestMediaStreamsReadsFirstSource(t *testing.T) {
	server := newTestServer(t, http.StatusOK, playbackInfoBody)
	client, err := New(server.URL+"/", "token-123", server.Client())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	streams, err := client.MediaStreams(context.Background(), "item-1")
	if err != nil {
		t.Fatalf("MediaStreams returned error: %v", err)
	}
	if len(streams) != 6 {
		t.Fatalf("expected 6 streams, got %d", len(streams))
	}

	list := Tracks(streams)
	if len(list) != 5 {
		t.Fatalf("expected image stream to be dropped, got %d tracks", len(list))
	}
	counts := list.Counts()
	if counts[track.KindSubtitle] != 3 || counts[track.KindAudio] != 1 || counts[track.KindVideo] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
	if list[0].Codec != "hevc" || list[0].Width != 1920 {
		t.Fatalf("unexpected video track %+v", list[0])
	}
	if list[2].Title != "English - SUBRIP" || list[2].ID != 1 {
		t.Fatalf("expected display title fallback, got %+v", list[2])
	}
	if !list[3].External || !list[3].Forced || list[3].FFIndex != 4 || list[3].ID != 2 {
		t.Fatalf("unexpected external subtitle %+v", list[3])
	}
}

func TestExternalSubtitles(t *testing.T) {
	streams := []MediaStream{
		{Index: 2, Type: "Subtitle", Codec: "subrip", Language: "eng"},
		{Index: 4, Type: "Subtitle", Codec: "ass", Language: "jpn", Title: "Signs", IsForced: true, IsExternal: true,
			DeliveryURL: "/Videos/abc/src1/Subtitles/4/0/Stream.ass"},
		{Index: 5, Type: "Subtitle", Codec: "webvtt", IsExternal: true},
		{Index: 6, Type: "Audio", IsExternal: true, DeliveryURL: "/audio.mka"},
	}
	subs := ExternalSubtitles("http://jellyfin.local:8096/base/", streams)
	if len(subs) != 1 {
		t.Fatalf("expected 1 external subtitle, got %+v", subs)
	}
	got := subs[0]
	if got.URL != "http://jellyfin.local:8096/base/Videos/abc/src1/Subtitles/4/0/Stream.ass" {
		t.Fatalf("unexpected url %q", got.URL)
	}
	if got.MimeType != "text/x-ssa" || got.Title != "Signs" || got.Language != "jpn" || !got.Forced {
		t.Fatalf("unexpected subtitle %+v", got)
	}
}

func TestSubtitleMimeType(t *testing.T) {
	cases := map[string]string{
		"subrip": "application/x-subrip",
		"SRT":    "application/x-subrip",
		"webvtt": "text/vtt",
		"ass":    "text/x-ssa",
		"ssa":    "text/x-ssa",
		"pgssub": "text/x-unknown",
		"":       "text/x-unknown",
	}
	for codec, want := range cases {
		if got := SubtitleMimeType(codec); got != want {
			t.Errorf("SubtitleMimeType(%q) = %q, want %q", codec, got, want)
		}
	}
}

func TestMediaStreamsNotFound(t *testing.T) {
	server := newTestServer(t, http.StatusOK, playbackInfoBody)
	client, err := New(server.URL, "token-123", server.Client())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = client.MediaStreams(context.Background(), "missing")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMediaStreamsServerError(t *testing.T) {
	server := newTestServer(t, http.StatusInternalServerError, "boom")
	client, err := New(server.URL, "token-123", server.Client())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = client.MediaStreams(context.Background(), "item-1")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestMediaStreamsWithoutSources(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{"MediaSources": []}`)
	client, err := New(server.URL, "token-123", server.Client())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = client.MediaStreams(context.Background(), "item-1")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewConfiguredClientRequiresEnabled(t *testing.T) {
	cfg := config.Default()
	if _, err := NewConfiguredClient(&cfg); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	cfg.Jellyfin.Enabled = true
	cfg.Jellyfin.URL = "http://jellyfin.local/"
	cfg.Jellyfin.APIKey = "token-123"
	client, err := NewConfiguredClient(&cfg)
	if err != nil {
		t.Fatalf("NewConfiguredClient returned error: %v", err)
	}
	if client.BaseURL() != "http://jellyfin.local" {
		t.Fatalf("unexpected base url %q", client.BaseURL())
	}
}
