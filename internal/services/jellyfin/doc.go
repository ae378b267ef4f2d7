// Package jellyfin reads the media streams of Jellyfin server items and maps
// them onto tracks.
//
// Client issues authenticated requests (X-Emby-Token) against the configured
// server. MediaStreams returns the streams of an item's first media source;
// Tracks and ExternalSubtitles turn them into track lists and sideloadable
// subtitle descriptors that the mpv package can hand to the player.
package jellyfin
