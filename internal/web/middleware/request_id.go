package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	webcontext "github.com/conduit-lang/causeway/internal/web/context"
)

// maxRequestIDLength bounds ids accepted from clients
const maxRequestIDLength = 128

// RequestIDConfig holds configuration for the request ID middleware
type RequestIDConfig struct {
	// HeaderName is the name of the header to read/write the request ID
	HeaderName string
	// Generator is a custom function to generate request IDs
	Generator func() string
	// Logger is scoped to each request with a request_id field
	Logger *zap.Logger
}

// DefaultRequestIDConfig returns the default request ID configuration
func DefaultRequestIDConfig(logger *zap.Logger) RequestIDConfig {
	return RequestIDConfig{
		HeaderName: "X-Request-ID",
		Generator:  uuid.NewString,
		Logger:     logger,
	}
}

// RequestID creates a middleware that assigns each request an id and a
// logger carrying it
func RequestID(logger *zap.Logger) Middleware {
	return RequestIDWithConfig(DefaultRequestIDConfig(logger))
}

// RequestIDWithConfig creates a request ID middleware with custom configuration
func RequestIDWithConfig(config RequestIDConfig) Middleware {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(config.HeaderName)
			if !validRequestID(requestID) {
				requestID = config.Generator()
			}

			ctx := webcontext.SetRequestID(r.Context(), requestID)
			ctx = webcontext.SetLogger(ctx, config.Logger.With(zap.String("request_id", requestID)))

			w.Header().Set(config.HeaderName, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validRequestID accepts short printable ASCII ids
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
