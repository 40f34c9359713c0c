package middleware

// ContextKey is a private key type for request context values, avoiding
// collisions with other packages.
type ContextKey string

const (
	// IdentityCtxKey holds the auth.Identity resolved for the request. It is
	// set by both RequireAuth and OptionalAuth.
	IdentityCtxKey = ContextKey("identity")

	// RequestIDCtxKey holds the generated request ID.
	RequestIDCtxKey = ContextKey("request_id")
)
