// Package mpv drives a running mpv player over its JSON IPC socket.
//
// Client speaks the newline-delimited protocol enabled by mpv's
// --input-ipc-server option: commands carry a request_id, replies are matched
// back to the waiting caller, and asynchronous events are fanned out on the
// Events channel. On top of the raw commands the package reads the player's
// track-list, switches tracks per kind, and applies selection plans.
//
// Watcher keeps a player aligned with the configured preferences by
// re-planning whenever mpv reports a new track-list. A lock file next to the
// socket ensures only one watcher drives a given player.
package mpv
