package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/conduit-lang/causeway/internal/web/response"
)

// TimeoutConfig holds configuration for the timeout middleware
type TimeoutConfig struct {
	// Timeout is the maximum duration for a request
	Timeout time.Duration
	// ErrorMessage is the detail of the error document returned on timeout
	ErrorMessage string
	// StatusCode is the HTTP status code returned on timeout
	StatusCode int
}

// Timeout creates a timeout middleware that answers 503 once d elapses
func Timeout(d time.Duration) Middleware {
	return TimeoutWithConfig(TimeoutConfig{
		Timeout:      d,
		ErrorMessage: "request timed out",
		StatusCode:   http.StatusServiceUnavailable,
	})
}

// timeoutWriter buffers headers per request and drops writes after the deadline
type timeoutWriter struct {
	w           http.ResponseWriter
	header      http.Header
	mu          sync.Mutex
	timedOut    bool
	wroteHeader bool
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.header
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.writeHeaderLocked(code)
}

func (tw *timeoutWriter) writeHeaderLocked(code int) {
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	dst := tw.w.Header()
	for k, v := range tw.header {
		dst[k] = v
	}
	tw.w.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	tw.writeHeaderLocked(http.StatusOK)
	return tw.w.Write(b)
}

// expire marks the writer timed out and reports whether the caller may
// still write a response
func (tw *timeoutWriter) expire() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.timedOut = true
	return !tw.wroteHeader
}

// TimeoutWithConfig creates a timeout middleware with custom configuration
func TimeoutWithConfig(config TimeoutConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), config.Timeout)
			defer cancel()

			done := make(chan struct{})
			panicChan := make(chan any, 1)
			tw := &timeoutWriter{w: w, header: make(http.Header)}

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicChan <- p
					}
				}()

				next.ServeHTTP(tw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
			case p := <-panicChan:
				panic(p)
			case <-ctx.Done():
				if tw.expire() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
					response.RenderError(w, response.NewHTTPError(config.StatusCode, config.ErrorMessage))
				}
			}
		})
	}
}
