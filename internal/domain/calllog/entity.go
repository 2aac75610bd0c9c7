// Package calllog provides the CallLog domain entity: one record per
// completed request, written asynchronously by the call logger.
package calllog

import "time"

// CallLog is the per-request telemetry row persisted after a response has
// been delivered to the client.
type CallLog struct {
	ID                    string
	RequestID             string
	UserID                string
	Method                string
	Path                  string
	QueryParams           string
	HeadersSubset         string
	ClientIP              string
	UserAgent             string
	TargetService         string
	ResponseStatus        int
	ResponseSize          int64
	ResponseTimeMS        int64
	ErrorMessage          string
	PermissionCheckResult string
	StartedAt             time.Time
	CompletedAt           time.Time
}
