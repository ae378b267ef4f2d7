// Package ffprobe provides a typed wrapper around ffprobe JSON output and
// converts probed streams into tracks.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: one container stream with its tags and disposition flags
//
// Inspect executes ffprobe and returns a parsed Result; Parse decodes an
// already captured payload. Result.Tracks numbers tracks per kind from 1 the
// way mpv does, so probed lists and player lists share IDs.
package ffprobe
