package services

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	socketKey    contextKey = "mpv_socket"
)

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSocket annotates context with the mpv IPC socket being driven.
func WithSocket(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, socketKey, path)
}

// SocketFromContext returns the mpv IPC socket path if present.
func SocketFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(socketKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
