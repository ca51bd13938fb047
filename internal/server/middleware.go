package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/robotomize/ratesboard/internal/logging"
	"go.uber.org/zap"
)

// RequestIDHeader carries the identifier issued for every request
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the identifier of the request handled with ctx
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LoggingMiddleware issues a request ID, attaches a request scoped logger to the context and logs
// every request with its response status and size
func LoggingMiddleware(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := uuid.New().String()

			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			reqLog := log.With("request_id", reqID)

			ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
			ctx = logging.WithLogger(ctx, reqLog)
			r = r.WithContext(ctx)
			w.Header().Set(RequestIDHeader, reqID)

			next.ServeHTTP(rw, r)

			reqLog.Infow("request",
				"method", r.Method,
				"uri", r.RequestURI,
				"status", rw.statusCode,
				"response_size", strconv.Itoa(rw.size)+"B",
				"duration", time.Since(start),
			)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}
