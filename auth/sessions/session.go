package sessions

import "time"

// Session is the server-side record of an issued persisted-user token. Its
// presence is what makes logout effective: the bearer token stays
// cryptographically valid until its embedded expiry, but authentication
// additionally requires a live row here. System-admin tokens are never
// recorded; their liveness is exactly their signature validity.
type Session struct {
	Token       string
	PrincipalID string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Live reports whether the session has not yet expired at the given time.
func (s Session) Live(now time.Time) bool {
	return s.ExpiresAt.After(now)
}
