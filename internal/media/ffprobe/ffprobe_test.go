package ffprobe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tracksel/internal/services"
	"tracksel/internal/track"
)

const sampleProbe = `{
  "streams": [
    {"index": 0, "codec_name": "hevc", "codec_type": "video", "width": 3840, "height": 2160, "disposition": {"default": 1}},
    {"index": 1, "codec_name": "truehd", "codec_type": "audio", "channels": 8, "sample_rate": "48000",
     "tags": {"language": "eng", "title": "Atmos"}, "disposition": {"default": 1}},
    {"index": 2, "codec_name": "ac3", "codec_type": "audio", "channels": 2, "sample_rate": "48000",
     "tags": {"LANGUAGE": "fre"}},
    {"index": 3, "codec_name": "hdmv_pgs_subtitle", "codec_type": "subtitle",
     "tags": {"language": "eng"}, "disposition": {"forced": 1}},
    {"index": 4, "codec_name": "ttf", "codec_type": "attachment", "tags": {"filename": "font.ttf"}},
    {"index": 5, "codec_name": "subrip", "codec_type": "subtitle", "tags": {"language": "spa", "title": "SDH"}}
  ],
  "format": {"filename": "movie.mkv", "nb_streams": 6, "duration": "7260.5", "size": "1000"}
}`

func TestParseAndTracks(t *testing.T) {
	result, err := Parse([]byte(sampleProbe))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	list := result.Tracks()
	if len(list) != 5 {
		t.Fatalf("expected 5 tracks (attachment skipped), got %d", len(list))
	}

	want := []struct {
		kind    track.Kind
		id      int
		ffIndex int
		lang    string
	}{
		{track.KindVideo, 1, 0, ""},
		{track.KindAudio, 1, 1, "eng"},
		{track.KindAudio, 2, 2, "fre"},
		{track.KindSubtitle, 1, 3, "eng"},
		{track.KindSubtitle, 2, 5, "spa"},
	}
	for i, w := range want {
		got := list[i]
		if got.Kind != w.kind || got.ID != w.id || got.FFIndex != w.ffIndex || got.Lang != w.lang {
			t.Fatalf("track %d = %+v, want %+v", i, got, w)
		}
	}

	if !list[0].Default || list[0].Width != 3840 || list[0].Height != 2160 {
		t.Fatalf("unexpected video track %+v", list[0])
	}
	if list[1].Channels != 8 || list[1].SampleRate != 48000 || list[1].Title != "Atmos" {
		t.Fatalf("unexpected audio track %+v", list[1])
	}
	if !list[3].Forced || list[3].Default {
		t.Fatalf("expected forced non-default subtitle, got %+v", list[3])
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	if _, err := Parse([]byte("{")); err == nil {
		t.Fatal("expected parse error")
	}
}

func writeStub(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestInspectRunsBinary(t *testing.T) {
	fixture := filepath.Join(t.TempDir(), "probe.json")
	if err := os.WriteFile(fixture, []byte(sampleProbe), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	binary := writeStub(t, "cat "+fixture)

	result, err := Inspect(context.Background(), binary, "/media/movie.mkv")
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if len(result.Streams) != 6 {
		t.Fatalf("expected 6 streams, got %d", len(result.Streams))
	}
	if got := result.Tracks().Counts(); got[track.KindAudio] != 2 || got[track.KindSubtitle] != 2 {
		t.Fatalf("unexpected track counts %v", got)
	}
}

func TestInspectFailureIsExternalToolError(t *testing.T) {
	binary := writeStub(t, "echo 'movie.mkv: No such file or directory' >&2\nexit 1")
	_, err := Inspect(context.Background(), binary, "/missing.mkv")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	_, err := Inspect(context.Background(), "ffprobe", "  ")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
