package flows

import (
	"context"
	"errors"
	"net/http"

	"github.com/MrEthical07/trackAdmin/session"
)

// MaxAttempts bounds a logical call to the original send plus one retry.
const MaxAttempts = 2

// RequestFailureKind classifies request loop failures.
type RequestFailureKind int

const (
	RequestFailureNone RequestFailureKind = iota
	// RequestFailureUnauthorized means the session could not be recovered and
	// ForceLogout has already been called.
	RequestFailureUnauthorized
	RequestFailureTransport
	RequestFailureStatus
	RequestFailureStale
)

var errUnauthorized = errors.New("unauthorized")

// Response is the raw outcome of a single send.
type Response struct {
	Status int
	Body   []byte
}

// RequestDeps captures the request loop dependencies.
type RequestDeps struct {
	Tokens        func() session.Tokens
	AccessExpired func() bool
	Epoch         func() uint64
	// Refresh runs refresh-and-recover and reports success.
	Refresh     func(ctx context.Context, observedRefresh string) bool
	ForceLogout func(ctx context.Context)
	// Send performs one HTTP exchange with the given bearer token ("" for none).
	Send    func(ctx context.Context, accessToken string, attempt int) (Response, error)
	OnRetry func(attempt int)
}

// RequestResult is the outcome of a logical call.
type RequestResult struct {
	Failure  RequestFailureKind
	Err      error
	Response Response
	Attempts int
}

// RunRequest sends a request with proactive refresh and at most one retry
// after a 401.
func RunRequest(ctx context.Context, deps RequestDeps) RequestResult {
	var attempts int
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		tokens := deps.Tokens()
		if tokens.Access != "" && deps.AccessExpired() {
			if !deps.Refresh(ctx, tokens.Refresh) {
				deps.ForceLogout(ctx)
				return RequestResult{Failure: RequestFailureUnauthorized, Err: errUnauthorized, Attempts: attempts}
			}
			tokens = deps.Tokens()
		}

		epoch := deps.Epoch()
		attempts++
		resp, err := deps.Send(ctx, tokens.Access, attempt)
		if err != nil {
			return RequestResult{Failure: RequestFailureTransport, Err: err, Attempts: attempts}
		}
		if tokens.Access != "" && deps.Epoch() != epoch {
			return RequestResult{Failure: RequestFailureStale, Response: resp, Attempts: attempts}
		}

		if resp.Status == http.StatusUnauthorized {
			if attempt == 0 && tokens.Refresh != "" && deps.Refresh(ctx, tokens.Refresh) {
				if deps.OnRetry != nil {
					deps.OnRetry(attempt + 1)
				}
				continue
			}
			deps.ForceLogout(ctx)
			return RequestResult{Failure: RequestFailureUnauthorized, Err: errUnauthorized, Response: resp, Attempts: attempts}
		}
		if resp.Status < 200 || resp.Status >= 300 {
			return RequestResult{Failure: RequestFailureStatus, Response: resp, Attempts: attempts}
		}
		return RequestResult{Failure: RequestFailureNone, Response: resp, Attempts: attempts}
	}

	// Unreachable: the second iteration never continues.
	deps.ForceLogout(ctx)
	return RequestResult{Failure: RequestFailureUnauthorized, Err: errUnauthorized, Attempts: attempts}
}
