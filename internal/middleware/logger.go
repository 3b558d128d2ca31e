package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

type responseInfo struct {
	status int
	size   int
}

type loggingResponseWriter struct {
	http.ResponseWriter
	info *responseInfo
}

func (w *loggingResponseWriter) Write(b []byte) (int, error) {
	size, err := w.ResponseWriter.Write(b)
	w.info.size += size
	return size, err
}

func (w *loggingResponseWriter) WriteHeader(statusCode int) {
	w.ResponseWriter.WriteHeader(statusCode)
	w.info.status = statusCode
}

// Logger returns a middleware that logs each request and its response with
// the injected zap logger.
func Logger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			info := &responseInfo{status: http.StatusOK}
			lw := &loggingResponseWriter{ResponseWriter: w, info: info}

			next.ServeHTTP(lw, r)

			logger.Info("request handled",
				zap.String("method", r.Method),
				zap.String("uri", r.RequestURI),
				zap.Int("status", info.status),
				zap.Int("size", info.size),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
