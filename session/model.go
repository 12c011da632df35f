package session

import "time"

// Fixed durable keys. They match the names the browser console used in local
// storage so a shared Redis store can serve both.
const (
	KeyAccessToken  = "authToken"
	KeyRefreshToken = "refreshToken"
)

// DefaultExpiryMargin is how early a token is treated as expired.
const DefaultExpiryMargin = 60 * time.Second

// Tokens is the access/refresh pair. It is always replaced wholesale.
type Tokens struct {
	Access  string
	Refresh string
}

// Empty reports whether no access token is held.
func (t Tokens) Empty() bool {
	return t.Access == ""
}
