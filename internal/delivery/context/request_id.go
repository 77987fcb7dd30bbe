// Package context carries request-scoped values between the delivery
// layer and the services without leaking echo types downward.
package context

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	loggerKey
)

// HeaderXRequestID is the header a request id travels in, both inbound
// when a client supplies one and on every response.
const HeaderXRequestID = "X-Request-Id"

// WithRequestID stores the request id on the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request id, or "" when the context carries none.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)

	return id
}

// WithLogger stores the request-scoped logger on the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLoggerOrDefault returns the request-scoped logger, falling back to
// the given service logger for background work that has no request,
// such as the outbox worker.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}

	return fallback
}
