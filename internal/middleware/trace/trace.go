package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"sync/atomic"
	"time"

	"spendlens/internal/log"
)

// HeaderRequestID is read from the caller when present and always echoed.
const HeaderRequestID = "X-Request-ID"

type contextKey struct{}

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// Middleware assigns request ids, puts a request-scoped logger in the
// context and writes one access log line per request.
type Middleware struct {
	logger   *log.Logger
	clientIP func(*http.Request) string
	requests atomic.Int64
	failures atomic.Int64
}

func NewMiddleware(logger *log.Logger, clientIP func(*http.Request) string) *Middleware {
	if clientIP == nil {
		clientIP = func(r *http.Request) string { return r.RemoteAddr }
	}
	return &Middleware{logger: logger, clientIP: clientIP}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(HeaderRequestID)
		if !requestIDPattern.MatchString(requestID) {
			requestID = GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		logger := m.logger.With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), contextKey{}, requestID)
		ctx = log.IntoContext(ctx, logger)
		r = r.WithContext(ctx)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		m.requests.Add(1)
		level := slog.LevelInfo
		switch {
		case rw.statusCode >= 500:
			level = slog.LevelError
			m.failures.Add(1)
		case rw.statusCode >= 400:
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "http request",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldQuery, r.URL.RawQuery,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, m.clientIP(r),
			log.FieldSuccess, rw.statusCode < 400)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// Counts returns the number of completed requests and how many ended in 5xx.
func (m *Middleware) Counts() (requests, failures int64) {
	return m.requests.Load(), m.failures.Load()
}

func GenerateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

// RequestID returns the id assigned by the middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
