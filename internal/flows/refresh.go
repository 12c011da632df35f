package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/trackAdmin/session"
)

// RefreshFailureKind classifies refresh failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureNoToken
	RefreshFailureTransport
	RefreshFailureRejected
	RefreshFailureIncomplete
	RefreshFailurePersist
)

var errIncompletePair = errors.New("refresh response missing token")

// TokenPair is the backend's answer to a refresh call.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshTokenStore is the part of the session store the refresh flow needs:
// the current pair to compare against and a way to install the rotated one.
type RefreshTokenStore interface {
	Tokens() session.Tokens
	SetSession(ctx context.Context, access, refresh string) error
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	Store RefreshTokenStore
	// CallRefresh posts the refresh token to the backend.
	CallRefresh func(ctx context.Context, refreshToken string) (TokenPair, error)
	// IsTransport distinguishes "no response" failures from rejections.
	IsTransport func(error) bool
}

// RefreshResult reports the outcome of one refresh-and-recover run.
type RefreshResult struct {
	Failure RefreshFailureKind
	Err     error
	// Rotated is false when another caller already rotated the observed token.
	Rotated bool
}

// OK reports success.
func (r RefreshResult) OK() bool {
	return r.Failure == RefreshFailureNone
}

// RunRefresh exchanges the current refresh token for a new pair.
//
// observed is the refresh token the caller saw when it decided to refresh. If
// the store already holds a different pair, somebody else rotated it and the
// caller can simply proceed with the new access token. An empty observed
// value forces a call.
func RunRefresh(ctx context.Context, observed string, deps RefreshDeps) RefreshResult {
	current := deps.Store.Tokens()
	if current.Refresh == "" {
		return RefreshResult{Failure: RefreshFailureNoToken, Err: errors.New("no refresh token")}
	}
	if observed != "" && observed != current.Refresh && current.Access != "" {
		return RefreshResult{Failure: RefreshFailureNone}
	}

	pair, err := deps.CallRefresh(ctx, current.Refresh)
	if err != nil {
		kind := RefreshFailureRejected
		if deps.IsTransport != nil && deps.IsTransport(err) {
			kind = RefreshFailureTransport
		}
		return RefreshResult{Failure: kind, Err: err}
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return RefreshResult{Failure: RefreshFailureIncomplete, Err: errIncompletePair}
	}

	if err := deps.Store.SetSession(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return RefreshResult{Failure: RefreshFailurePersist, Err: err}
	}
	return RefreshResult{Failure: RefreshFailureNone, Rotated: true}
}
