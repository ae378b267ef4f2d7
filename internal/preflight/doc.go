// Package preflight provides readiness checks for the external tools, sockets
// and directories tracksel depends on.
//
// The CLI "tracksel doctor" command runs RunAll and renders the results; the
// mpv subcommands call CheckSocket before dialing so an absent player is
// reported plainly instead of as a raw connection error.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
