package common

const (
	// SessionCookieName is the HTTP-only cookie carrying the session token.
	SessionCookieName = "session_token"

	// AuthorizationHeader and BearerPrefix carry the session token for
	// non-browser clients.
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
)
