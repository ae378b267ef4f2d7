package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"tracksel/internal/services"
	"tracksel/internal/track"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index         int               `json:"index"`
	CodecName     string            `json:"codec_name"`
	CodecLongName string            `json:"codec_long_name"`
	CodecType     string            `json:"codec_type"`
	Profile       string            `json:"profile"`
	Width         int               `json:"width"`
	Height        int               `json:"height"`
	SampleRate    string            `json:"sample_rate"`
	Channels      int               `json:"channels"`
	ChannelLayout string            `json:"channel_layout"`
	Tags          map[string]string `json:"tags"`
	Disposition   map[string]int    `json:"disposition"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, services.Wrap(services.ErrValidation, "ffprobe", "inspect", "empty path", nil)
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		detail := ""
		if errors.As(err, &exitErr) {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		return Result{}, services.Wrap(services.ErrExternalTool, "ffprobe", "inspect", detail, err)
	}
	return Parse(output)
}

// Parse decodes a captured ffprobe JSON payload.
func Parse(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// Kind classifies the stream. Data and attachment streams report false.
func (s Stream) Kind() (track.Kind, bool) {
	return track.FromCodecType(s.CodecType)
}

// Language returns the stream language tag, if any.
func (s Stream) Language() string {
	return tagValue(s.Tags, "language", "LANGUAGE", "language_ietf")
}

// Title returns the stream title tag, if any.
func (s Stream) Title() string {
	return tagValue(s.Tags, "title", "TITLE", "handler_name")
}

// Flag reports a disposition flag such as "default" or "forced".
func (s Stream) Flag(name string) bool {
	return s.Disposition[name] == 1
}

// Tracks converts the classified streams into tracks. IDs are assigned per
// kind starting at 1 in stream order; FFIndex keeps the container index.
func (r Result) Tracks() track.List {
	next := make(map[track.Kind]int, len(track.Kinds()))
	list := make(track.List, 0, len(r.Streams))
	for _, stream := range r.Streams {
		kind, ok := stream.Kind()
		if !ok {
			continue
		}
		next[kind]++
		t := track.Track{
			ID:       next[kind],
			Kind:     kind,
			Title:    stream.Title(),
			Lang:     stream.Language(),
			Codec:    strings.ToLower(strings.TrimSpace(stream.CodecName)),
			Default:  stream.Flag("default"),
			Forced:   stream.Flag("forced"),
			FFIndex:  stream.Index,
			Channels: stream.Channels,
		}
		switch kind {
		case track.KindVideo:
			t.Width = stream.Width
			t.Height = stream.Height
		case track.KindAudio:
			if rate, err := strconv.Atoi(strings.TrimSpace(stream.SampleRate)); err == nil {
				t.SampleRate = rate
			}
		}
		list = append(list, t)
	}
	return list
}

func tagValue(tags map[string]string, keys ...string) string {
	for _, key := range keys {
		if value, ok := tags[key]; ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
