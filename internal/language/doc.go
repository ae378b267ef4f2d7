// Package language normalizes the language codes attached to media tracks.
//
// Players, containers and servers disagree on notation: mpv reports whatever
// the container carries ("eng", "ger", "en-US"), ffprobe tags use ISO 639-2,
// Jellyfin prefers ISO 639-2/T. Every comparison in tracksel goes through
// Normalize so "eng", "en" and "en-GB" all match a preference of "en".
package language
