package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iruldev/golang-api-hexagonal/internal/domain"
)

func TestHandleError_MapsGatewayErrorKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"route not found", domain.NewError(domain.KindRouteNotFound, "no route matches"), http.StatusNotFound, CodeRouteNotFound},
		{"unauthorized", domain.NewError(domain.KindUnauthorized, "token invalid"), http.StatusUnauthorized, CodeUnauthorized},
		{"forbidden", domain.NewError(domain.KindForbidden, "missing permission"), http.StatusForbidden, CodeForbidden},
		{"validation rewritten to 200", domain.NewError(domain.KindValidationError, "bad body"), http.StatusOK, CodeValidation},
		{"rate limited", domain.NewError(domain.KindRateLimited, "too many requests"), http.StatusTooManyRequests, CodeRateLimited},
		{"circuit open", domain.NewError(domain.KindCircuitOpen, "breaker open"), http.StatusServiceUnavailable, CodeCircuitOpen},
		{"no instance", domain.NewError(domain.KindNoInstance, "no healthy instance"), http.StatusServiceUnavailable, CodeNoInstance},
		{"upstream timeout", domain.NewError(domain.KindUpstreamTimeout, "upstream timed out"), http.StatusGatewayTimeout, CodeUpstreamTimeout},
		{"upstream error", domain.NewError(domain.KindUpstreamError, "upstream 500"), http.StatusBadGateway, CodeUpstreamError},
		{"client cancelled", domain.NewError(domain.KindClientCancelled, "client gone"), 499, CodeClientCancelled},
		{"unknown error defaults to internal", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var env Envelope
			decodeJSON(t, rec.Body.Bytes(), &env)
			assert.Equal(t, tt.wantCode, env.Code)
		})
	}
}

func TestPublicMessage_HidesWrappedCause(t *testing.T) {
	err := domain.Wrap(domain.KindInternalError, "internal error", errors.New("pgx: connection reset"))
	rec := httptest.NewRecorder()
	HandleError(rec, err)

	var env Envelope
	decodeJSON(t, rec.Body.Bytes(), &env)
	assert.Equal(t, "internal error", env.Msg)
	assert.NotContains(t, env.Msg, "pgx")
}

func TestSuccess_WritesS10000(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusOK, rec.Code)
	var env Envelope
	decodeJSON(t, rec.Body.Bytes(), &env)
	assert.Equal(t, CodeSuccess, env.Code)
}

func decodeJSON(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}
