package domain

// Redactor strips sensitive fields from arbitrary structured data before it
// is persisted or logged. Call logs capture upstream request/response
// headers verbatim; a Redactor is applied to that payload first.
type Redactor interface {
	Redact(data any) any
	RedactMap(data map[string]any) map[string]any
}

// Email redaction modes for RedactorConfig.EmailMode.
const (
	EmailModeFull    = "full"
	EmailModePartial = "partial"
)

// RedactorConfig configures a Redactor implementation.
type RedactorConfig struct {
	EmailMode string
}
