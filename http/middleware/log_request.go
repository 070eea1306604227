package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/xy-planning-network/budget"
	"github.com/xy-planning-network/budget/logger"
)

// LogMaskVal replaces sensitive query values in logged URIs.
const LogMaskVal = "xxxxxxx"

// LogRequest logs the request's method, requested URL, and originating IP address
// once the rest of the chain has responded, using the enclosed logger.Logger.
//
// LogRequest scrubs the values for the following keys:
// - password
//
// if logger.Logger is nil, NoopAdapter returns and this middleware does nothing.
func LogRequest(ls logger.Logger) Adapter {
	if ls == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			h.ServeHTTP(sw, r)

			uri := r.URL.Path
			q := r.URL.Query()
			if q.Has("password") {
				q.Set("password", LogMaskVal)
			}

			if query := q.Encode(); query != "" {
				uri += "?" + query
			}

			strs := []string{r.Method, uri}
			if ip, ok := r.Context().Value(budget.IpAddrKey).(string); ok {
				strs = append([]string{ip}, strs...)
			}

			data := map[string]any{
				"duration": time.Since(start).String(),
				"status":   sw.Status(),
			}
			if id, ok := r.Context().Value(budget.RequestIDKey).(string); ok {
				data["request_id"] = id
			}

			ls.Info(strings.Join(strs, " "), &logger.LogContext{Data: data})
		})
	}
}

// A statusWriter remembers the status code written through it.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.status == 0 {
		sw.status = code
	}

	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}

	return sw.ResponseWriter.Write(b)
}

// Status returns the status code sent, defaulting to 200 as net/http does.
func (sw *statusWriter) Status() int {
	if sw.status == 0 {
		return http.StatusOK
	}

	return sw.status
}
