package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	webcontext "github.com/conduit-lang/causeway/internal/web/context"
)

// LoggingConfig holds configuration for the logging middleware
type LoggingConfig struct {
	// Logger receives one entry per completed request
	Logger func(LogEntry)
	// SkipPaths is a list of paths to skip logging
	SkipPaths []string
}

// LogEntry represents a log entry for a request
type LogEntry struct {
	RequestID    string
	Method       string
	Path         string
	Query        string
	StatusCode   int
	Duration     time.Duration
	BytesWritten int
	RemoteAddr   string
	UserAgent    string
}

// Logging creates a logging middleware writing to logger
func Logging(logger *zap.Logger) Middleware {
	return LoggingWithConfig(LoggingConfig{Logger: ZapSink(logger)})
}

// LoggingWithConfig creates a logging middleware with custom configuration
func LoggingWithConfig(config LoggingConfig) Middleware {
	skip := make(map[string]bool, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skip[path] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] || config.Logger == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			config.Logger(LogEntry{
				RequestID:    webcontext.GetRequestID(r.Context()),
				Method:       r.Method,
				Path:         r.URL.Path,
				Query:        r.URL.RawQuery,
				StatusCode:   rw.statusCode,
				Duration:     time.Since(start),
				BytesWritten: rw.bytesWritten,
				RemoteAddr:   r.RemoteAddr,
				UserAgent:    r.UserAgent(),
			})
		})
	}
}

// ZapSink logs entries at a level chosen by status: errors for 5xx,
// warnings for 4xx and info otherwise
func ZapSink(logger *zap.Logger) func(LogEntry) {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(entry LogEntry) {
		fields := []zap.Field{
			zap.String("request_id", entry.RequestID),
			zap.String("method", entry.Method),
			zap.String("path", entry.Path),
			zap.Int("status", entry.StatusCode),
			zap.Duration("duration", entry.Duration),
			zap.Int("bytes", entry.BytesWritten),
			zap.String("remote_addr", entry.RemoteAddr),
		}
		if entry.Query != "" {
			fields = append(fields, zap.String("query", entry.Query))
		}
		if entry.UserAgent != "" {
			fields = append(fields, zap.String("user_agent", entry.UserAgent))
		}

		switch {
		case entry.StatusCode >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case entry.StatusCode >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture status code and bytes written
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
	wroteHeader  bool
}

// WriteHeader captures the status code
func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.wroteHeader {
		rw.statusCode = statusCode
		rw.wroteHeader = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

// Write captures bytes written
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
