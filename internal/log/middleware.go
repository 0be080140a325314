package log

import (
	"context"
	"log/slog"
	"net/http"
)

type loggerKey struct{}

// NewContext returns a copy of ctx that carries logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the request logger. Outside a request it falls back to
// slog's default logger under the "unknown" component.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// derive builds middleware that replaces the request logger with next(current, r).
func derive(next func(*Logger, *http.Request) *Logger) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := next(FromContext(r.Context()), r)
			h.ServeHTTP(w, r.WithContext(NewContext(r.Context(), logger)))
		})
	}
}

// Middleware installs logger as the request logger.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return derive(func(*Logger, *http.Request) *Logger { return logger })
}

// ComponentMiddleware tags the request logger with component, so a route
// group's records can be told apart from the access log.
func ComponentMiddleware(component string) func(http.Handler) http.Handler {
	return derive(func(l *Logger, _ *http.Request) *Logger { return l.WithComponent(component) })
}

// RequestIDMiddleware adds the request id to every record of the request.
// Requests without an id keep the logger unchanged.
func RequestIDMiddleware(extractRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	return derive(func(l *Logger, r *http.Request) *Logger {
		if id := extractRequestID(r); id != "" {
			return l.With(FieldRequestID, id)
		}
		return l
	})
}
