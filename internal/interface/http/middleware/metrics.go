package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/httpx"
	"github.com/iruldev/golang-api-hexagonal/internal/shared/metrics"
)

// Metrics middleware records HTTP request count and duration through the
// shared metrics.HTTPMetrics contract, letting the transport layer stay
// decoupled from the concrete Prometheus registry built in
// internal/infra/observability.
func Metrics(m metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := httpx.NewResponseWriter(w)
			next.ServeHTTP(rw, r)

			duration := time.Since(start).Seconds()
			method := r.Method
			route := r.URL.Path
			status := strconv.Itoa(rw.StatusCode())

			m.IncRequest(method, route, status)
			m.ObserveRequestDuration(method, route, duration)
		})
	}
}
