package selection

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"tracksel/internal/language"
	"tracksel/internal/track"
)

// Mode describes how a kind is resolved.
type Mode string

const (
	ModeTrack Mode = "track"
	ModeAuto  Mode = "auto"
	ModeOff   Mode = "off"
)

// Preferences is the selection input derived from configuration or flags.
type Preferences struct {
	AudioLanguages    []string
	SubtitleLanguages []string
	SubtitlesEnabled  bool
	Disabled          []track.Kind
}

func (p Preferences) disabled(k track.Kind) bool {
	for _, d := range p.Disabled {
		if d == k {
			return true
		}
	}
	return false
}

func (p Preferences) languagesFor(k track.Kind) []string {
	switch k {
	case track.KindAudio:
		return p.AudioLanguages
	case track.KindSubtitle:
		return p.SubtitleLanguages
	}
	return nil
}

// Decision is the outcome for a single kind.
type Decision struct {
	Kind    track.Kind `json:"kind"`
	TrackID int        `json:"track_id,omitempty"`
	Mode    Mode       `json:"mode"`
	Reason  string     `json:"reason"`
}

// Value renders the decision as an mpv vid/aid/sid property value.
func (d Decision) Value() string {
	switch d.Mode {
	case ModeTrack:
		return strconv.Itoa(d.TrackID)
	case ModeOff:
		return "no"
	default:
		return "auto"
	}
}

func (d Decision) String() string {
	return fmt.Sprintf("%s=%s (%s)", d.Kind, d.Value(), d.Reason)
}

// Plan returns one decision per kind in track.Kinds order.
func Plan(list track.List, prefs Preferences) []Decision {
	kinds := track.Kinds()
	decisions := make([]Decision, 0, len(kinds))
	for _, k := range kinds {
		decisions = append(decisions, Choose(list, k, prefs))
	}
	return decisions
}

// Choose picks the track of kind k that best matches prefs.
func Choose(list track.List, k track.Kind, prefs Preferences) Decision {
	if !k.Valid() {
		return Decision{Kind: k, Mode: ModeAuto, Reason: "unknown kind"}
	}
	if prefs.disabled(k) {
		return Decision{Kind: k, Mode: ModeOff, Reason: k.String() + " disabled"}
	}

	tracks := list.ByKind(k)
	if len(tracks) == 0 {
		return Decision{Kind: k, Mode: ModeAuto, Reason: "no " + k.String() + " tracks"}
	}

	if k == track.KindSubtitle && !prefs.SubtitlesEnabled {
		return chooseForcedOnly(list, tracks, prefs)
	}

	ranked := rank(tracks, k, prefs.languagesFor(k))
	best := ranked[0]
	return Decision{Kind: k, TrackID: best.track.ID, Mode: ModeTrack, Reason: best.reason()}
}

// chooseForcedOnly keeps forced subtitles that translate foreign dialogue in
// the audio language while regular subtitles are switched off.
func chooseForcedOnly(list track.List, subs track.List, prefs Preferences) Decision {
	audioLangs := forcedLanguages(list, prefs)
	forced := make(track.List, 0, len(subs))
	for _, t := range subs {
		if t.Forced && language.Index(t.Lang, audioLangs) >= 0 {
			forced = append(forced, t)
		}
	}
	if len(forced) == 0 {
		return Decision{Kind: track.KindSubtitle, Mode: ModeOff, Reason: "subtitles disabled"}
	}
	ranked := rank(forced, track.KindSubtitle, audioLangs)
	best := ranked[0]
	return Decision{
		Kind:    track.KindSubtitle,
		TrackID: best.track.ID,
		Mode:    ModeTrack,
		Reason:  "forced subtitles for " + language.DisplayName(best.track.Lang),
	}
}

// forcedLanguages is the language of the audio track that would be chosen,
// followed by the audio preferences.
func forcedLanguages(list track.List, prefs Preferences) []string {
	langs := make([]string, 0, len(prefs.AudioLanguages)+1)
	if audio := Choose(list, track.KindAudio, prefs); audio.Mode == ModeTrack {
		if t, ok := list.Find(track.KindAudio, audio.TrackID); ok && t.Lang != "" {
			langs = append(langs, t.Lang)
		}
	}
	return append(langs, prefs.AudioLanguages...)
}

type candidate struct {
	track     track.Track
	order     int
	langIndex int
}

func (c candidate) reason() string {
	var parts []string
	if c.langIndex >= 0 {
		parts = append(parts, "preferred language "+language.DisplayName(c.track.Lang))
	}
	if c.track.Default {
		parts = append(parts, "default flag")
	}
	if len(parts) == 0 {
		parts = append(parts, "first track")
	}
	return strings.Join(parts, ", ")
}

func rank(tracks track.List, k track.Kind, preferred []string) []candidate {
	candidates := make([]candidate, 0, len(tracks))
	for i, t := range tracks {
		idx := -1
		if k != track.KindVideo {
			idx = language.Index(t.Lang, preferred)
		}
		candidates = append(candidates, candidate{track: t, order: i, langIndex: idx})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return better(candidates[i], candidates[j], k)
	})
	return candidates
}

func better(a, b candidate, k track.Kind) bool {
	if ra, rb := langRank(a.langIndex), langRank(b.langIndex); ra != rb {
		return ra < rb
	}
	if k == track.KindSubtitle && a.track.Forced != b.track.Forced {
		return !a.track.Forced
	}
	if a.track.Default != b.track.Default {
		return a.track.Default
	}
	if k == track.KindAudio && a.track.Channels != b.track.Channels {
		return a.track.Channels > b.track.Channels
	}
	return a.order < b.order
}

func langRank(idx int) int {
	if idx < 0 {
		return int(^uint(0) >> 1)
	}
	return idx
}
