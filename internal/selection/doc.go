// Package selection decides which track of each kind the player should use.
//
// Choose ranks the tracks of one kind against the user's language
// preferences and returns a Decision: a concrete track, "auto" when there is
// nothing to choose from, or "off" when the kind is disabled. Plan produces
// one decision per kind in canonical order. Decisions render directly to mpv
// property values so the mpv package can apply them without translation.
package selection
