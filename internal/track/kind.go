package track

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a media track.
type Kind string

const (
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindSubtitle Kind = "sub"
)

// ErrInvalidKind marks strings that are not a canonical track kind.
var ErrInvalidKind = errors.New("invalid track kind")

// InvalidKindError reports the offending input of a failed classification.
type InvalidKindError struct {
	Value string
}

func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("%s %q (want one of %s)", ErrInvalidKind, e.Value, strings.Join(kindNames(), ", "))
}

func (e *InvalidKindError) Is(target error) bool {
	return target == ErrInvalidKind
}

// ErrorKind classifies the error for status reporting.
func (e *InvalidKindError) ErrorKind() string {
	return "validation"
}

var allKinds = []Kind{
	KindVideo,
	KindAudio,
	KindSubtitle,
}

var kindSet = func() map[string]Kind {
	set := make(map[string]Kind, len(allKinds))
	for _, kind := range allKinds {
		set[string(kind)] = kind
	}
	return set
}()

// Kinds returns every track kind in canonical order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseKind returns the kind whose canonical string is exactly value.
// Matching is case sensitive and does not trim whitespace.
func ParseKind(value string) (Kind, error) {
	if kind, ok := kindSet[value]; ok {
		return kind, nil
	}
	return "", &InvalidKindError{Value: value}
}

// Valid reports whether k is one of the three track kinds.
func (k Kind) Valid() bool {
	_, ok := kindSet[string(k)]
	return ok
}

// String returns the canonical string.
func (k Kind) String() string {
	return string(k)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, &InvalidKindError{Value: string(k)}
	}
	return []byte(k), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Property returns the mpv property that selects the active track of k.
func (k Kind) Property() string {
	switch k {
	case KindVideo:
		return "vid"
	case KindAudio:
		return "aid"
	case KindSubtitle:
		return "sid"
	}
	return ""
}

// LanguageOption returns the mpv option that holds the preferred languages
// for k. Video tracks have none.
func (k Kind) LanguageOption() string {
	switch k {
	case KindAudio:
		return "alang"
	case KindSubtitle:
		return "slang"
	}
	return ""
}

// MimeBase returns the top-level MIME type of tracks of kind k.
func (k Kind) MimeBase() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindSubtitle:
		return "text"
	}
	return ""
}

// DisplayName returns a capitalised label for UI output.
func (k Kind) DisplayName() string {
	switch k {
	case KindVideo:
		return "Video"
	case KindAudio:
		return "Audio"
	case KindSubtitle:
		return "Subtitle"
	}
	return "Unknown"
}

// FromCodecType maps an ffprobe codec_type. Data and attachment streams are
// not tracks and report false.
func FromCodecType(codecType string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(codecType)) {
	case "video":
		return KindVideo, true
	case "audio":
		return KindAudio, true
	case "subtitle":
		return KindSubtitle, true
	}
	return "", false
}

// FromJellyfinType maps a Jellyfin MediaStream type. Embedded images, data
// and lyric streams report false.
func FromJellyfinType(streamType string) (Kind, bool) {
	switch strings.TrimSpace(streamType) {
	case "Video":
		return KindVideo, true
	case "Audio":
		return KindAudio, true
	case "Subtitle":
		return KindSubtitle, true
	}
	return "", false
}

func kindNames() []string {
	names := make([]string, 0, len(allKinds))
	for _, kind := range allKinds {
		names = append(names, string(kind))
	}
	return names
}
