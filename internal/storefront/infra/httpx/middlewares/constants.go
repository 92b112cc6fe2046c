package middlewares

// contextKey keeps our context values from colliding with other packages.
type contextKey string

const (
	HeaderXRequestId      = "X-Request-Id"
	HeaderXIdempotencyKey = "X-Idempotency-Key"
	HeaderXSessionId      = "X-Session-Id"

	ContextKeyRequestID      contextKey = "request_id"
	ContextKeyIdempotencyKey contextKey = "idempotency_key"
	ContextKeySessionID      contextKey = "session_id"
)
