package track

import (
	"strconv"
	"strings"
)

// Track describes a single stream of a playable item.
type Track struct {
	ID               int    `json:"id"`
	Kind             Kind   `json:"kind"`
	Title            string `json:"title,omitempty"`
	Lang             string `json:"lang,omitempty"`
	Codec            string `json:"codec,omitempty"`
	External         bool   `json:"external"`
	ExternalFilename string `json:"external_filename,omitempty"`
	Selected         bool   `json:"selected"`
	Default          bool   `json:"default"`
	Forced           bool   `json:"forced"`
	FFIndex          int    `json:"ff_index"`
	Width            int    `json:"width,omitempty"`
	Height           int    `json:"height,omitempty"`
	Channels         int    `json:"channels,omitempty"`
	SampleRate       int    `json:"sample_rate,omitempty"`
}

// MimeType returns "<base>/<codec>", or just the base when the codec is unknown.
func (t Track) MimeType() string {
	base := t.Kind.MimeBase()
	codec := strings.TrimSpace(t.Codec)
	if codec == "" {
		return base
	}
	return base + "/" + codec
}

// Label returns a short human-readable summary of the track.
func (t Track) Label() string {
	parts := make([]string, 0, 5)
	if lang := strings.TrimSpace(t.Lang); lang != "" {
		parts = append(parts, strings.ToLower(lang))
	}
	if t.Codec != "" {
		parts = append(parts, t.Codec)
	}
	switch t.Kind {
	case KindVideo:
		if t.Width > 0 && t.Height > 0 {
			parts = append(parts, strconv.Itoa(t.Width)+"x"+strconv.Itoa(t.Height))
		}
	case KindAudio:
		if t.Channels > 0 {
			parts = append(parts, strconv.Itoa(t.Channels)+"ch")
		}
	}
	if title := strings.TrimSpace(t.Title); title != "" {
		parts = append(parts, title)
	}
	if t.Forced {
		parts = append(parts, "forced")
	}
	if len(parts) == 0 {
		return t.Kind.String() + " #" + strconv.Itoa(t.ID)
	}
	return strings.Join(parts, " | ")
}
