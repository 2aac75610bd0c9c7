package response

// Envelope error codes. Format: "F" + HTTP-status-like digits + a 2-digit
// sequence, matching the unified envelope's "Fxxxxx" shape. The validation
// code is the one exception required by the compat rule below: it is
// always sent with HTTP 200 so legacy clients that only branch on the
// envelope code (not the transport status) still see it.
const (
	CodeRouteNotFound   = "F40400"
	CodeUnauthorized    = "F40100"
	CodeForbidden       = "F40300"
	CodeValidation      = "F10001"
	CodeRateLimited     = "F42900"
	CodeCircuitOpen     = "F50301"
	CodeNoInstance      = "F50302"
	CodeUpstreamTimeout = "F50400"
	CodeUpstreamError   = "F50200"
	CodeClientCancelled = "F49900"
	CodeInternal        = "F50000"
)
