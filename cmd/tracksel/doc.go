// Package main hosts the tracksel CLI entrypoint and command graph.
//
// The Cobra-based command tree exposes the track kind vocabulary, probes local
// files through ffprobe and the track cache, drives a running mpv player over
// its IPC socket, and reads item streams from Jellyfin. It centralizes
// configuration resolution, logger setup, and socket discovery so subcommands
// can focus on output instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
