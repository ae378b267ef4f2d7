package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldSocket is the standardized structured logging key for the mpv IPC socket path.
	FieldSocket = "mpv_socket"
	// FieldTrackKind is the standardized structured logging key for a track kind.
	FieldTrackKind = "track_kind"
	// FieldTrackID is the standardized structured logging key for a player track ID.
	FieldTrackID = "track_id"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to try next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldDecisionType names the kind of automated decision being logged.
	FieldDecisionType = "decision_type"
)
