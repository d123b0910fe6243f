package middleware

// Token lifecycle headers shared between the auth and refresh
// middleware. The server answers an expired access token with
// Token-Expired; the client retries with the same header set on the
// request plus its refresh secret, and receives the fresh pair in the
// New-* headers.
const (
	HeaderTokenExpired       = "Token-Expired"
	HeaderRefreshToken       = "X-Refresh-Token"
	HeaderNewAccessToken     = "New-Access-Token"
	HeaderNewRefreshToken    = "New-Refresh-Token"
	HeaderTokenExpiresAt     = "Token-Expires-At"
	HeaderTokenRefreshNeeded = "Token-Refresh-Required"
	HeaderTokenRefreshError  = "Token-Refresh-Error"
)
