package logging

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestFieldsKey
)

// requestFields collects attributes that handlers further down the chain
// want on the completion line, such as the authenticated user
type requestFields struct {
	mu    sync.Mutex
	attrs []any
}

// AddRequestFields attaches key/value pairs to the completion line of the
// current request and to the request logger seen by later handlers. It
// returns ctx unchanged outside RequestLogger.
func AddRequestFields(ctx context.Context, args ...any) context.Context {
	rf, ok := ctx.Value(requestFieldsKey).(*requestFields)
	if !ok {
		return ctx
	}
	rf.mu.Lock()
	rf.attrs = append(rf.attrs, args...)
	rf.mu.Unlock()

	return WithContext(ctx, &Logger{Logger: GetLoggerFromContext(ctx).With(args...)})
}

// RequestLogger logs one line per request at info, warn or error by status.
// Requests are identified by their chi route pattern so ids in the path do
// not fan out into distinct messages.
func RequestLogger(logger *Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLogger := &Logger{Logger: logger.With(
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"remote_ip", r.RemoteAddr,
			)}
			reqLogger.Debug("request started", "path", r.URL.Path)

			rf := &requestFields{}
			ctx := context.WithValue(WithContext(r.Context(), reqLogger), requestFieldsKey, rf)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			rf.mu.Lock()
			attrs := append([]any{
				"route", routePattern(r),
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
			}, rf.attrs...)
			rf.mu.Unlock()

			reqLogger.Log(r.Context(), level, "request completed", attrs...)
		})
	}
}

// routePattern is the matched chi pattern, or the raw path when no route
// matched
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// GetLoggerFromContext retrieves the logger from the request context,
// falling back to a development logger
func GetLoggerFromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerKey).(*Logger); ok {
		return logger
	}
	return NewLogger(true)
}
