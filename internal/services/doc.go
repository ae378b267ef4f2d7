// Package services defines shared utilities consumed by the player, probe and
// server integrations.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers and the mpv socket
//     being driven, for logging.
//   - Structured error markers plus the Wrap helper, and Classify which turns
//     any error (including track.ErrInvalidKind) into a short kind string.
//
// Use these helpers when wiring new integrations so error handling and
// observability stay uniform.
package services
