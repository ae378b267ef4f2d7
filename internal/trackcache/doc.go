// Package trackcache persists probed track lists in SQLite so repeated
// inspections of an unchanged file skip ffprobe.
//
// Entries are keyed by absolute path, size and modification time; a file that
// changed on disk simply misses. Each track is stored as its own row with the
// kind in canonical string form and parsed back on read, so a corrupt row
// surfaces as an error instead of a silently reclassified track.
package trackcache
