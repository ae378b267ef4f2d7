package jellyfin

import (
	"net/url"
	"strings"

	"tracksel/internal/track"
)

// MediaStream is the subset of Jellyfin's MediaStream DTO used for tracks.
type MediaStream struct {
	Index        int    `json:"Index"`
	Type         string `json:"Type"`
	Codec        string `json:"Codec"`
	Language     string `json:"Language"`
	Title        string `json:"Title"`
	DisplayTitle string `json:"DisplayTitle"`
	IsDefault    bool   `json:"IsDefault"`
	IsForced     bool   `json:"IsForced"`
	IsExternal   bool   `json:"IsExternal"`
	DeliveryURL  string `json:"DeliveryUrl"`
	Width        int    `json:"Width"`
	Height       int    `json:"Height"`
	Channels     int    `json:"Channels"`
	SampleRate   int    `json:"SampleRate"`
}

// Kind classifies the stream. EmbeddedImage, Data and Lyric streams report false.
func (s MediaStream) Kind() (track.Kind, bool) {
	return track.FromJellyfinType(s.Type)
}

// ExternalSubtitle is a server-hosted subtitle file the player can sideload.
type ExternalSubtitle struct {
	Title    string `json:"title"`
	Language string `json:"language"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Forced   bool   `json:"forced"`
}

// Tracks converts classified streams into tracks numbered per kind from 1.
// FFIndex carries the Jellyfin stream index.
func Tracks(streams []MediaStream) track.List {
	next := make(map[track.Kind]int, len(track.Kinds()))
	list := make(track.List, 0, len(streams))
	for _, s := range streams {
		kind, ok := s.Kind()
		if !ok {
			continue
		}
		next[kind]++
		title := strings.TrimSpace(s.Title)
		if title == "" {
			title = strings.TrimSpace(s.DisplayTitle)
		}
		t := track.Track{
			ID:       next[kind],
			Kind:     kind,
			Title:    title,
			Lang:     strings.TrimSpace(s.Language),
			Codec:    strings.ToLower(strings.TrimSpace(s.Codec)),
			External: s.IsExternal,
			Default:  s.IsDefault,
			Forced:   s.IsForced,
			FFIndex:  s.Index,
		}
		switch kind {
		case track.KindVideo:
			t.Width, t.Height = s.Width, s.Height
		case track.KindAudio:
			t.Channels, t.SampleRate = s.Channels, s.SampleRate
		}
		list = append(list, t)
	}
	return list
}

// ExternalSubtitles returns the external subtitle streams that have a
// delivery URL, resolved against baseURL.
func ExternalSubtitles(baseURL string, streams []MediaStream) []ExternalSubtitle {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/")
	if err != nil {
		return nil
	}
	var subs []ExternalSubtitle
	for _, s := range streams {
		kind, ok := s.Kind()
		if !ok || kind != track.KindSubtitle || !s.IsExternal || strings.TrimSpace(s.DeliveryURL) == "" {
			continue
		}
		ref, err := url.Parse(strings.TrimLeft(strings.TrimSpace(s.DeliveryURL), "/"))
		if err != nil {
			continue
		}
		title := strings.TrimSpace(s.Title)
		if title == "" {
			title = strings.TrimSpace(s.DisplayTitle)
		}
		subs = append(subs, ExternalSubtitle{
			Title:    title,
			Language: strings.TrimSpace(s.Language),
			URL:      base.ResolveReference(ref).String(),
			MimeType: SubtitleMimeType(s.Codec),
			Forced:   s.IsForced,
		})
	}
	return subs
}

// SubtitleMimeType maps a Jellyfin subtitle codec to a MIME type.
func SubtitleMimeType(codec string) string {
	switch strings.ToLower(strings.TrimSpace(codec)) {
	case "subrip", "srt":
		return "application/x-subrip"
	case "webvtt", "vtt":
		return "text/vtt"
	case "ass", "ssa":
		return "text/x-ssa"
	}
	return "text/x-unknown"
}
