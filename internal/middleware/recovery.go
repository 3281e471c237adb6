package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
)

// Recovery turns a panicking handler into a 500 response. A handler that
// already started its response keeps it; the panic is only logged.
func Recovery(writeError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				if v := recover(); v != nil {
					slog.Error("Handler panicked",
						"panic", v,
						"request_id", GetRequestID(r.Context()),
						"response_started", rec.wroteHeader,
					)
					if !rec.wroteHeader {
						writeError(rec, r, fmt.Errorf("panic: %v", v))
					}
				}
			}()
			next.ServeHTTP(rec, r)
		})
	}
}
