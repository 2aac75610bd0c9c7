// Package response writes the gateway's unified response envelope:
// {"code": "S10000"|"Fxxxxx", "msg": "...", "content": ...}. Every handler
// in this module, admin or proxied, writes through this package so callers
// never see a raw net/http response shape.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// CodeSuccess is the single success code. The gateway does not distinguish
// "created" from "ok" at the envelope level; HTTP status still varies.
const CodeSuccess = "S10000"

// Envelope is the response body written on every request.
type Envelope struct {
	Code    string `json:"code"`
	Msg     string `json:"msg"`
	Content any    `json:"content,omitempty"`
}

// WriteJSON writes data with the given HTTP status and Content-Type.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("response: failed to encode JSON", "error", err)
	}
}

// Success writes content with HTTP 200 and the S10000 envelope code.
func Success(w http.ResponseWriter, content any) {
	WriteJSON(w, http.StatusOK, Envelope{Code: CodeSuccess, Msg: "success", Content: content})
}

// SuccessWithStatus writes content with a caller-chosen HTTP status (e.g.
// 201 for admin create endpoints) and the S10000 envelope code.
func SuccessWithStatus(w http.ResponseWriter, status int, content any) {
	WriteJSON(w, status, Envelope{Code: CodeSuccess, Msg: "success", Content: content})
}

// Page wraps a list payload with pagination metadata in Content.
type Page struct {
	Items      any `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// SuccessPage writes a paginated list response.
func SuccessPage(w http.ResponseWriter, items any, page, pageSize, total int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	Success(w, Page{Items: items, Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages})
}

// Fail writes an envelope with the given F-code and HTTP status. msg is
// safe for client display; it never carries a wrapped internal cause.
func Fail(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, Envelope{Code: code, Msg: msg})
}
