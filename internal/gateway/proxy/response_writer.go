package proxy

import (
	"net/http"
	"time"
)

// countingResponseWriter wraps an http.ResponseWriter to count bytes
// actually written to the client connection. The logged response size
// reflects this count rather than any upstream Content-Length header,
// since the two can diverge on truncated or streamed responses. It also
// stamps the request-id and elapsed-time headers on the first write, the
// last point at which response headers can still be mutated.
type countingResponseWriter struct {
	http.ResponseWriter
	status    int
	bytes     int64
	requestID string
	start     time.Time
}

func (w *countingResponseWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
		w.stampHeaders()
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *countingResponseWriter) stampHeaders() {
	if w.requestID != "" {
		w.Header().Set("X-Request-ID", w.requestID)
	}
	if !w.start.IsZero() {
		w.Header().Set("X-Response-Time", time.Since(w.start).String())
	}
}

func (w *countingResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
		w.stampHeaders()
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

func (w *countingResponseWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}
