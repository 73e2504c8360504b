package model

import "time"

// SessionState is the authentication state machine of the partner session.
// The session manager is the sole writer.
type SessionState string

const (
	SessionUnauthenticated SessionState = "unauthenticated"
	SessionAuthenticating  SessionState = "authenticating"
	SessionValid           SessionState = "valid"
	SessionExpired         SessionState = "expired"
)

// AccessToken is the cached bearer credential returned by the partner's
// token endpoint. In-memory only; never persisted across restarts.
type AccessToken struct {
	Value     string
	TokenType string
	ExpiresAt time.Time
}

// ExpiredAt reports whether the token must not be presented anymore.
// Expiry is strict: a token is dead the instant now reaches ExpiresAt.
func (t AccessToken) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsZero reports whether no token has been installed yet.
func (t AccessToken) IsZero() bool { return t.Value == "" }
