package response

import (
	"errors"
	"net/http"

	"github.com/iruldev/golang-api-hexagonal/internal/domain"
)

// statusAndCode maps a domain.Kind to an HTTP status and an envelope
// code. KindValidationError is the one case where the two disagree on
// purpose: the compat rule sends validation failures back as HTTP 200 with
// F10001 so older clients that only branch on envelope.code still work.
func statusAndCode(kind domain.Kind) (status int, code string) {
	switch kind {
	case domain.KindRouteNotFound:
		return http.StatusNotFound, CodeRouteNotFound
	case domain.KindUnauthorized:
		return http.StatusUnauthorized, CodeUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden, CodeForbidden
	case domain.KindValidationError:
		return http.StatusOK, CodeValidation
	case domain.KindRateLimited:
		return http.StatusTooManyRequests, CodeRateLimited
	case domain.KindCircuitOpen:
		return http.StatusServiceUnavailable, CodeCircuitOpen
	case domain.KindNoInstance:
		return http.StatusServiceUnavailable, CodeNoInstance
	case domain.KindUpstreamTimeout:
		return http.StatusGatewayTimeout, CodeUpstreamTimeout
	case domain.KindUpstreamError:
		return http.StatusBadGateway, CodeUpstreamError
	case domain.KindClientCancelled:
		return 499, CodeClientCancelled
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// HandleError writes the envelope for err, deriving status and code from
// its domain.Kind (KindInternalError for any error that isn't one).
func HandleError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	status, code := statusAndCode(kind)
	msg := publicMessage(err, kind)
	Fail(w, status, code, msg)
}

// publicMessage returns the message safe to show a client: a *GatewayError's
// own Message field, or a generic fallback for anything else so internal
// error text (SQL, stack traces, driver errors) never reaches the wire.
func publicMessage(err error, kind domain.Kind) string {
	var ge *domain.GatewayError
	if errors.As(err, &ge) {
		return ge.Message
	}
	if kind == domain.KindInternalError {
		return "internal error"
	}
	return err.Error()
}
