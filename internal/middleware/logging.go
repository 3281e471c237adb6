package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "taxava",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "Duration of HTTP requests by route and status.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route", "status"})

// requestInfo is shared by the middlewares of one request. RequireSession
// fills in the user ID for the access log.
type requestInfo struct {
	id     string
	userID int
}

type requestInfoKey struct{}

func getRequestInfo(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(*requestInfo)
	return info
}

// GetRequestID extracts the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	if info := getRequestInfo(ctx); info != nil {
		return info.id
	}
	return ""
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Logging returns a middleware that tags every request with an ID and logs
// the route, user ID, status and duration.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		info := &requestInfo{id: requestID}
		ctx := context.WithValue(r.Context(), requestInfoKey{}, info)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		duration := time.Since(start)
		requestDuration.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Observe(duration.Seconds())

		attrs := []any{
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"request_id", requestID,
			"user_id", info.userID,
			"duration_ms", duration.Milliseconds(),
		}
		switch {
		case rec.status >= http.StatusInternalServerError:
			slog.Error("HTTP error", attrs...)
		case rec.status >= http.StatusBadRequest:
			slog.Warn("HTTP error", attrs...)
		default:
			slog.Info("HTTP ok", attrs...)
		}
	})
}
