package flows

import "context"

// Service is the flow runner built once by the console.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired.
func (s Service) Initialized() bool {
	return s.deps.Refresh.CallRefresh != nil && s.deps.Login.CallLogin != nil
}

// Login runs the login flow against the wired store and backend call.
func (s Service) Login(ctx context.Context, username, password string) LoginResult {
	return RunLogin(ctx, username, password, s.deps.Login)
}

// Refresh runs one refresh for the access token the caller observed.
// Coalescing concurrent callers is the caller's job.
func (s Service) Refresh(ctx context.Context, observed string) RefreshResult {
	return RunRefresh(ctx, observed, s.deps.Refresh)
}
