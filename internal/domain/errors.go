// Package domain contains the core business entities and interfaces for the
// gateway: routes, service instances, circuit-breaker state, call logs, and
// permissions. It has no HTTP, database, or cache dependencies.
package domain

import "errors"

// Kind is the taxonomy of gateway error outcomes surfaced to clients. It is
// the sum type called for by the design notes: every pipeline stage returns
// one of these instead of throwing, and a single translator in the HTTP
// transport layer maps a Kind to a status code and envelope code.
type Kind string

const (
	KindRouteNotFound   Kind = "route_not_found"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindRateLimited     Kind = "rate_limited"
	KindCircuitOpen     Kind = "circuit_open"
	KindNoInstance      Kind = "no_instance"
	KindUpstreamTimeout Kind = "upstream_timeout"
	KindUpstreamError   Kind = "upstream_error"
	KindValidationError Kind = "validation_error"
	KindInternalError   Kind = "internal_error"
	KindClientCancelled Kind = "client_cancelled"
)

// GatewayError is the error type returned by every gateway component.
// Message is safe to show to end users; Cause is the wrapped internal error
// and is never rendered to the client.
type GatewayError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *GatewayError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// NewError builds a GatewayError of the given kind.
func NewError(kind Kind, message string) *GatewayError {
	return &GatewayError{Kind: kind, Message: message}
}

// Wrap builds a GatewayError of the given kind around a lower-level cause.
func Wrap(kind Kind, message string, cause error) *GatewayError {
	return &GatewayError{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind from err, defaulting to KindInternalError for any
// error that did not originate as a *GatewayError.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindInternalError
}
