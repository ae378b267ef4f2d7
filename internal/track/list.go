package track

import (
	"encoding/json"
	"fmt"
)

// List is the ordered track inventory of one playable item.
type List []Track

// ByKind returns the tracks of kind k in source order.
func (l List) ByKind(k Kind) List {
	out := make(List, 0, len(l))
	for _, t := range l {
		if t.Kind == k {
			out = append(out, t)
		}
	}
	return out
}

// Selected returns the active track of kind k.
func (l List) Selected(k Kind) (Track, bool) {
	for _, t := range l {
		if t.Kind == k && t.Selected {
			return t, true
		}
	}
	return Track{}, false
}

// Find returns the track of kind k with the given player ID.
func (l List) Find(k Kind, id int) (Track, bool) {
	for _, t := range l {
		if t.Kind == k && t.ID == id {
			return t, true
		}
	}
	return Track{}, false
}

// Counts returns the number of tracks per kind. Every kind has an entry.
func (l List) Counts() map[Kind]int {
	counts := make(map[Kind]int, len(allKinds))
	for _, k := range allKinds {
		counts[k] = 0
	}
	for _, t := range l {
		counts[t.Kind]++
	}
	return counts
}

// mpvTrack mirrors one entry of mpv's track-list property.
type mpvTrack struct {
	ID               int    `json:"id"`
	Type             string `json:"type"`
	Title            string `json:"title"`
	Lang             string `json:"lang"`
	External         bool   `json:"external"`
	ExternalFilename string `json:"external-filename"`
	Selected         bool   `json:"selected"`
	Default          bool   `json:"default"`
	Forced           bool   `json:"forced"`
	FFIndex          int    `json:"ff-index"`
	Codec            string `json:"codec"`
	DemuxW           int    `json:"demux-w"`
	DemuxH           int    `json:"demux-h"`
	DemuxChannels    int    `json:"demux-channel-count"`
	DemuxSampleRate  int    `json:"demux-samplerate"`
}

// ParseMPVTrackList decodes the JSON value of mpv's track-list property.
// An entry with an unknown type fails the whole list.
func ParseMPVTrackList(data []byte) (List, error) {
	var raw []mpvTrack
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode track-list: %w", err)
	}
	list := make(List, 0, len(raw))
	for i, entry := range raw {
		kind, err := ParseKind(entry.Type)
		if err != nil {
			return nil, fmt.Errorf("track-list entry %d (id %d): %w", i, entry.ID, err)
		}
		list = append(list, Track{
			ID:               entry.ID,
			Kind:             kind,
			Title:            entry.Title,
			Lang:             entry.Lang,
			Codec:            entry.Codec,
			External:         entry.External,
			ExternalFilename: entry.ExternalFilename,
			Selected:         entry.Selected,
			Default:          entry.Default,
			Forced:           entry.Forced,
			FFIndex:          entry.FFIndex,
			Width:            positive(entry.DemuxW),
			Height:           positive(entry.DemuxH),
			Channels:         positive(entry.DemuxChannels),
			SampleRate:       positive(entry.DemuxSampleRate),
		})
	}
	return list, nil
}

func positive(value int) int {
	if value > 0 {
		return value
	}
	return 0
}
