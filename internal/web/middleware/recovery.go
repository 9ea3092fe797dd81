package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	webcontext "github.com/conduit-lang/causeway/internal/web/context"
	"github.com/conduit-lang/causeway/internal/web/response"
)

// RecoveryConfig holds configuration for the recovery middleware
type RecoveryConfig struct {
	// EnableStackTrace determines whether to log stack traces
	EnableStackTrace bool
	// Logger is used when the request carries no scoped logger
	Logger *zap.Logger
}

// Recovery creates a middleware that turns panics into 500 error documents
func Recovery(logger *zap.Logger) Middleware {
	return RecoveryWithConfig(RecoveryConfig{EnableStackTrace: true, Logger: logger})
}

// RecoveryWithConfig creates a recovery middleware with custom configuration
func RecoveryWithConfig(config RecoveryConfig) Middleware {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// The server relies on this sentinel to abort the connection
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger := config.Logger
				if webcontext.GetRequestID(r.Context()) != "" {
					logger = webcontext.Logger(r.Context())
				}

				fields := []zap.Field{
					zap.Error(panicError{value: rec}),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				}
				if config.EnableStackTrace {
					fields = append(fields, zap.ByteString("stack", debug.Stack()))
				}
				logger.Error("panic recovered", fields...)

				response.RenderError(w, response.NewHTTPError(http.StatusInternalServerError, "an unexpected error occurred"))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// panicError wraps a panic value as an error
type panicError struct {
	value any
}

func (e panicError) Error() string {
	if err, ok := e.value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(e.value)
}

// Unwrap exposes a panicked error to errors.Is
func (e panicError) Unwrap() error {
	err, _ := e.value.(error)
	return err
}
