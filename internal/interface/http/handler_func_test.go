package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iruldev/golang-api-hexagonal/internal/domain"
	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/response"
)

func TestWrapHandler(t *testing.T) {
	t.Run("handler returns nil - success path", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) error {
			response.Success(w, map[string]string{"status": "ok"})
			return nil
		}

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()

		WrapHandler(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var envelope response.Envelope
		if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if envelope.Code != response.CodeSuccess {
			t.Errorf("expected code %s, got %s", response.CodeSuccess, envelope.Code)
		}
	})

	t.Run("handler returns GatewayError", func(t *testing.T) {
		handler := func(_ http.ResponseWriter, _ *http.Request) error {
			return domain.NewError(domain.KindRouteNotFound, "route not found")
		}

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()

		WrapHandler(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}

		var envelope response.Envelope
		if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if envelope.Code != response.CodeRouteNotFound {
			t.Errorf("expected code %s, got %s", response.CodeRouteNotFound, envelope.Code)
		}

		if envelope.Msg != "route not found" {
			t.Errorf("expected message %q, got %q", "route not found", envelope.Msg)
		}
	})

	t.Run("handler returns wrapped GatewayError", func(t *testing.T) {
		handler := func(_ http.ResponseWriter, _ *http.Request) error {
			return domain.Wrap(domain.KindValidationError, "invalid email format", errors.New("regex mismatch"))
		}

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()

		WrapHandler(handler).ServeHTTP(rec, req)

		// Validation errors are reported with HTTP 200 per the compat rule;
		// clients branch on envelope.code, not the transport status.
		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var envelope response.Envelope
		if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if envelope.Msg != "invalid email format" {
			t.Errorf("expected message %q, got %q", "invalid email format", envelope.Msg)
		}
	})

	t.Run("handler returns unknown error - maps to internal error", func(t *testing.T) {
		handler := func(_ http.ResponseWriter, _ *http.Request) error {
			return errors.New("unexpected database error")
		}

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()

		WrapHandler(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
		}

		var envelope response.Envelope
		if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if envelope.Code != response.CodeInternal {
			t.Errorf("expected code %s, got %s", response.CodeInternal, envelope.Code)
		}

		// Internal errors never leak the wrapped cause to the client.
		if envelope.Msg != "internal error" {
			t.Errorf("expected generic message, got %q", envelope.Msg)
		}
	})
}

func TestWrapHandler_ErrorCodeMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "route not found",
			err:            domain.NewError(domain.KindRouteNotFound, "not found"),
			expectedStatus: http.StatusNotFound,
			expectedCode:   response.CodeRouteNotFound,
		},
		{
			name:           "unauthorized",
			err:            domain.NewError(domain.KindUnauthorized, "unauthorized"),
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   response.CodeUnauthorized,
		},
		{
			name:           "forbidden",
			err:            domain.NewError(domain.KindForbidden, "forbidden"),
			expectedStatus: http.StatusForbidden,
			expectedCode:   response.CodeForbidden,
		},
		{
			name:           "rate limited",
			err:            domain.NewError(domain.KindRateLimited, "rate limit"),
			expectedStatus: http.StatusTooManyRequests,
			expectedCode:   response.CodeRateLimited,
		},
		{
			name:           "circuit open",
			err:            domain.NewError(domain.KindCircuitOpen, "circuit open"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   response.CodeCircuitOpen,
		},
		{
			name:           "no instance",
			err:            domain.NewError(domain.KindNoInstance, "no healthy instance"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   response.CodeNoInstance,
		},
		{
			name:           "upstream timeout",
			err:            domain.NewError(domain.KindUpstreamTimeout, "timeout"),
			expectedStatus: http.StatusGatewayTimeout,
			expectedCode:   response.CodeUpstreamTimeout,
		},
		{
			name:           "upstream error",
			err:            domain.NewError(domain.KindUpstreamError, "bad gateway"),
			expectedStatus: http.StatusBadGateway,
			expectedCode:   response.CodeUpstreamError,
		},
		{
			name:           "internal error",
			err:            domain.NewError(domain.KindInternalError, "internal error"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   response.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := func(_ http.ResponseWriter, _ *http.Request) error {
				return tt.err
			}

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			rec := httptest.NewRecorder()

			WrapHandler(handler).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}

			var envelope response.Envelope
			if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if envelope.Code != tt.expectedCode {
				t.Errorf("expected code %s, got %s", tt.expectedCode, envelope.Code)
			}
		})
	}
}
