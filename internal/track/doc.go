// Package track classifies the media tracks of a playable item.
//
// Kind is the closed video/audio/subtitle classification. Its canonical
// strings ("video", "audio", "sub") are the tokens mpv reports in the `type`
// field of its track-list property, and they are the only strings ParseKind
// accepts. Other vocabularies (ffprobe codec_type, Jellyfin stream types) are
// mapped through dedicated adapters that report unknown values instead of
// guessing.
//
// Track and List model the per-item track inventory as the player sees it.
// This package has no dependencies beyond the standard library so every
// other component (mpv, ffprobe, jellyfin, selection) can share it.
package track
