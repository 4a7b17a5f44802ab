package tracing

// Span attribute keys for ticketing API calls.
const (
	AttrHTTPMethod     = "http.request.method"
	AttrHTTPRoute      = "http.route"
	AttrHTTPStatusCode = "http.response.status_code"
	AttrRequestID      = "request.id"
	AttrPosition       = "ticket.position"
	AttrGuestCount     = "guest.count"
	AttrGateOpen       = "gate.open"
)

// SpanPrefixAPI prefixes every API client span, e.g. "api.register".
const SpanPrefixAPI = "api."
