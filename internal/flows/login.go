package flows

import (
	"context"
	"errors"
)

// LoginFailureKind classifies login failures.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureCall
	LoginFailureIncomplete
	LoginFailurePersist
)

// LoginResponse is the backend's login payload. Extra fields describe the operator.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ID           int64  `json:"id,omitempty"`
	Username     string `json:"username,omitempty"`
	Role         string `json:"role,omitempty"`
}

// LoginTokenStore receives the pair issued by a successful login.
type LoginTokenStore interface {
	SetSession(ctx context.Context, access, refresh string) error
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	Store     LoginTokenStore
	CallLogin func(ctx context.Context, username, password string) (LoginResponse, error)
}

// LoginResult carries the operator profile or failure metadata.
type LoginResult struct {
	Failure  LoginFailureKind
	Err      error
	Response LoginResponse
}

// RunLogin authenticates and adopts the issued pair.
func RunLogin(ctx context.Context, username, password string, deps LoginDeps) LoginResult {
	resp, err := deps.CallLogin(ctx, username, password)
	if err != nil {
		return LoginResult{Failure: LoginFailureCall, Err: err}
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		return LoginResult{Failure: LoginFailureIncomplete, Err: errors.New("login response missing token")}
	}
	if err := deps.Store.SetSession(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		return LoginResult{Failure: LoginFailurePersist, Err: err}
	}
	return LoginResult{Failure: LoginFailureNone, Response: resp}
}
