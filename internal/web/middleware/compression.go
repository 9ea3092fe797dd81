package middleware

import (
	"compress/gzip"
	"io"
	"mime"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/conduit-lang/causeway/internal/web/response"
)

// CompressionConfig holds configuration for the compression middleware
type CompressionConfig struct {
	// Level is the gzip compression level (1-9)
	Level int
	// MinSize is the minimum first write to compress, in bytes
	MinSize int
	// ContentTypes lists the media types that are compressed
	ContentTypes []string
}

// DefaultCompressionConfig compresses JSON documents of 1KB or more
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		Level:        gzip.DefaultCompression,
		MinSize:      1024,
		ContentTypes: []string{response.JSONAPIMediaType, "application/json"},
	}
}

// Compression creates a compression middleware with default configuration
func Compression() Middleware {
	return CompressionWithConfig(DefaultCompressionConfig())
}

// CompressionWithConfig creates a compression middleware with custom configuration
func CompressionWithConfig(config CompressionConfig) Middleware {
	pool := &sync.Pool{
		New: func() any {
			writer, _ := gzip.NewWriterLevel(io.Discard, config.Level)
			return writer
		},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Accept-Encoding")
			if !acceptsGzip(r.Header.Get("Accept-Encoding")) {
				next.ServeHTTP(w, r)
				return
			}

			gzw := &gzipResponseWriter{
				ResponseWriter: w,
				pool:           pool,
				config:         config,
				statusCode:     http.StatusOK,
			}
			defer gzw.Close()

			next.ServeHTTP(gzw, r)
		})
	}
}

// acceptsGzip reports whether an Accept-Encoding header allows gzip
func acceptsGzip(header string) bool {
	for _, part := range strings.Split(header, ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(coding), "gzip") {
			continue
		}
		return strings.ReplaceAll(strings.TrimSpace(params), " ", "") != "q=0"
	}
	return false
}

// gzipResponseWriter defers the status line until the first write so it
// can decide whether to compress
type gzipResponseWriter struct {
	http.ResponseWriter
	gz          *gzip.Writer
	pool        *sync.Pool
	config      CompressionConfig
	statusCode  int
	wroteHeader bool
	decided     bool
}

// WriteHeader records the status; it is sent on the first write or on Close
func (gzw *gzipResponseWriter) WriteHeader(statusCode int) {
	if !gzw.wroteHeader {
		gzw.statusCode = statusCode
		gzw.wroteHeader = true
	}
}

// Write compresses b when the response qualifies
func (gzw *gzipResponseWriter) Write(b []byte) (int, error) {
	if !gzw.decided {
		gzw.decide(len(b))
	}
	if gzw.gz == nil {
		return gzw.ResponseWriter.Write(b)
	}
	return gzw.gz.Write(b)
}

func (gzw *gzipResponseWriter) decide(size int) {
	gzw.decided = true
	h := gzw.ResponseWriter.Header()

	if size >= gzw.config.MinSize && h.Get("Content-Encoding") == "" && gzw.compressible(h.Get("Content-Type")) {
		h.Set("Content-Encoding", "gzip")
		h.Del("Content-Length")
		gzw.gz = gzw.pool.Get().(*gzip.Writer)
		gzw.gz.Reset(gzw.ResponseWriter)
	}
	gzw.ResponseWriter.WriteHeader(gzw.statusCode)
}

func (gzw *gzipResponseWriter) compressible(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return slices.Contains(gzw.config.ContentTypes, mediaType)
}

// Close flushes the gzip stream, or sends a bodyless status
func (gzw *gzipResponseWriter) Close() error {
	if !gzw.decided {
		gzw.decided = true
		if gzw.wroteHeader {
			gzw.ResponseWriter.WriteHeader(gzw.statusCode)
		}
		return nil
	}
	if gzw.gz == nil {
		return nil
	}
	err := gzw.gz.Close()
	gzw.pool.Put(gzw.gz)
	gzw.gz = nil
	return err
}
