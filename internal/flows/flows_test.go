package flows

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/MrEthical07/trackAdmin/session"
)

type fakeStore struct {
	tokens  session.Tokens
	setErr  error
	setCall int
}

func (f *fakeStore) Tokens() session.Tokens { return f.tokens }

func (f *fakeStore) SetSession(_ context.Context, access, refresh string) error {
	f.setCall++
	if f.setErr != nil {
		return f.setErr
	}
	f.tokens = session.Tokens{Access: access, Refresh: refresh}
	return nil
}

func TestRunRefreshRotatesPair(t *testing.T) {
	store := &fakeStore{tokens: session.Tokens{Access: "A1", Refresh: "R1"}}
	var sent string
	res := RunRefresh(context.Background(), "R1", RefreshDeps{
		Store: store,
		CallRefresh: func(_ context.Context, refresh string) (TokenPair, error) {
			sent = refresh
			return TokenPair{AccessToken: "A2", RefreshToken: "R2"}, nil
		},
	})
	if !res.OK() || !res.Rotated {
		t.Fatalf("unexpected result: %+v", res)
	}
	if sent != "R1" {
		t.Fatalf("expected R1 to be sent, got %q", sent)
	}
	if store.tokens != (session.Tokens{Access: "A2", Refresh: "R2"}) {
		t.Fatalf("pair not adopted: %+v", store.tokens)
	}
}

func TestRunRefreshSkipsWhenAlreadyRotated(t *testing.T) {
	store := &fakeStore{tokens: session.Tokens{Access: "A2", Refresh: "R2"}}
	calls := 0
	res := RunRefresh(context.Background(), "R1", RefreshDeps{
		Store: store,
		CallRefresh: func(context.Context, string) (TokenPair, error) {
			calls++
			return TokenPair{}, nil
		},
	})
	if !res.OK() || res.Rotated {
		t.Fatalf("expected skipped success, got %+v", res)
	}
	if calls != 0 {
		t.Fatalf("expected no backend call, got %d", calls)
	}
}

func TestRunRefreshFailures(t *testing.T) {
	transport := errors.New("dial failed")
	tests := []struct {
		name   string
		tokens session.Tokens
		pair   TokenPair
		err    error
		setErr error
		want   RefreshFailureKind
	}{
		{name: "no token", want: RefreshFailureNoToken},
		{name: "transport", tokens: session.Tokens{Access: "A", Refresh: "R"}, err: transport, want: RefreshFailureTransport},
		{name: "rejected", tokens: session.Tokens{Access: "A", Refresh: "R"}, err: errors.New("status 401"), want: RefreshFailureRejected},
		{name: "incomplete", tokens: session.Tokens{Access: "A", Refresh: "R"}, pair: TokenPair{AccessToken: "A2"}, want: RefreshFailureIncomplete},
		{name: "persist", tokens: session.Tokens{Access: "A", Refresh: "R"}, pair: TokenPair{AccessToken: "A2", RefreshToken: "R2"}, setErr: errors.New("disk full"), want: RefreshFailurePersist},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{tokens: tc.tokens, setErr: tc.setErr}
			res := RunRefresh(context.Background(), "", RefreshDeps{
				Store: store,
				CallRefresh: func(context.Context, string) (TokenPair, error) {
					return tc.pair, tc.err
				},
				IsTransport: func(err error) bool { return errors.Is(err, transport) },
			})
			if res.Failure != tc.want {
				t.Fatalf("expected %v, got %v (%v)", tc.want, res.Failure, res.Err)
			}
			if tc.setErr != nil && store.tokens != tc.tokens {
				t.Fatalf("failed persist must keep previous pair, got %+v", store.tokens)
			}
		})
	}
}

type requestHarness struct {
	store     *fakeStore
	expired   bool
	epoch     uint64
	statuses  []int
	sent      []string
	refreshes int
	refreshOK bool
	logouts   int
}

func (h *requestHarness) deps() RequestDeps {
	return RequestDeps{
		Tokens:        h.store.Tokens,
		AccessExpired: func() bool { return h.expired },
		Epoch:         func() uint64 { return h.epoch },
		Refresh: func(context.Context, string) bool {
			h.refreshes++
			if h.refreshOK {
				h.store.tokens = session.Tokens{Access: "A2", Refresh: "R2"}
				h.expired = false
			}
			return h.refreshOK
		},
		ForceLogout: func(context.Context) {
			h.logouts++
			h.store.tokens = session.Tokens{}
		},
		Send: func(_ context.Context, access string, attempt int) (Response, error) {
			h.sent = append(h.sent, access)
			return Response{Status: h.statuses[attempt]}, nil
		},
	}
}

func TestRunRequestRetriesOnceAfterRefresh(t *testing.T) {
	h := &requestHarness{
		store:     &fakeStore{tokens: session.Tokens{Access: "A1", Refresh: "R1"}},
		statuses:  []int{http.StatusUnauthorized, http.StatusOK},
		refreshOK: true,
	}
	res := RunRequest(context.Background(), h.deps())
	if res.Failure != RequestFailureNone || res.Attempts != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(h.sent) != 2 || h.sent[0] != "A1" || h.sent[1] != "A2" {
		t.Fatalf("unexpected bearer sequence: %v", h.sent)
	}
	if h.refreshes != 1 || h.logouts != 0 {
		t.Fatalf("refreshes=%d logouts=%d", h.refreshes, h.logouts)
	}
}

func TestRunRequestSecond401LogsOut(t *testing.T) {
	h := &requestHarness{
		store:     &fakeStore{tokens: session.Tokens{Access: "A1", Refresh: "R1"}},
		statuses:  []int{http.StatusUnauthorized, http.StatusUnauthorized},
		refreshOK: true,
	}
	res := RunRequest(context.Background(), h.deps())
	if res.Failure != RequestFailureUnauthorized {
		t.Fatalf("expected unauthorized, got %+v", res)
	}
	if len(h.sent) != 2 || h.refreshes != 1 || h.logouts != 1 {
		t.Fatalf("sent=%d refreshes=%d logouts=%d", len(h.sent), h.refreshes, h.logouts)
	}
}

func TestRunRequestFailedRefreshLogsOut(t *testing.T) {
	h := &requestHarness{
		store:    &fakeStore{tokens: session.Tokens{Access: "A1", Refresh: "R1"}},
		statuses: []int{http.StatusUnauthorized},
	}
	res := RunRequest(context.Background(), h.deps())
	if res.Failure != RequestFailureUnauthorized || len(h.sent) != 1 || h.logouts != 1 {
		t.Fatalf("unexpected: %+v sent=%d logouts=%d", res, len(h.sent), h.logouts)
	}
}

func TestRunRequestProactiveRefresh(t *testing.T) {
	h := &requestHarness{
		store:     &fakeStore{tokens: session.Tokens{Access: "A1", Refresh: "R1"}},
		expired:   true,
		statuses:  []int{http.StatusOK},
		refreshOK: true,
	}
	res := RunRequest(context.Background(), h.deps())
	if res.Failure != RequestFailureNone || len(h.sent) != 1 || h.sent[0] != "A2" {
		t.Fatalf("unexpected: %+v sent=%v", res, h.sent)
	}
}

func TestRunRequestProactiveRefreshFailureSendsNothing(t *testing.T) {
	h := &requestHarness{
		store:   &fakeStore{tokens: session.Tokens{Access: "A1", Refresh: "R1"}},
		expired: true,
	}
	res := RunRequest(context.Background(), h.deps())
	if res.Failure != RequestFailureUnauthorized || len(h.sent) != 0 || h.logouts != 1 {
		t.Fatalf("unexpected: %+v sent=%d logouts=%d", res, len(h.sent), h.logouts)
	}
}

func TestRunRequestAnonymousSendsNoBearer(t *testing.T) {
	h := &requestHarness{
		store:    &fakeStore{},
		statuses: []int{http.StatusNotFound},
	}
	res := RunRequest(context.Background(), h.deps())
	if res.Failure != RequestFailureStatus || res.Response.Status != http.StatusNotFound {
		t.Fatalf("unexpected: %+v", res)
	}
	if h.sent[0] != "" {
		t.Fatalf("expected no bearer, got %q", h.sent[0])
	}
}

func TestRunRequestStaleAfterLogout(t *testing.T) {
	h := &requestHarness{
		store:    &fakeStore{tokens: session.Tokens{Access: "A1", Refresh: "R1"}},
		statuses: []int{http.StatusOK},
	}
	deps := h.deps()
	send := deps.Send
	deps.Send = func(ctx context.Context, access string, attempt int) (Response, error) {
		h.epoch++
		return send(ctx, access, attempt)
	}
	res := RunRequest(context.Background(), deps)
	if res.Failure != RequestFailureStale {
		t.Fatalf("expected stale, got %+v", res)
	}
}

func TestRunLogin(t *testing.T) {
	store := &fakeStore{}
	res := RunLogin(context.Background(), "admin", "pw", LoginDeps{
		Store: store,
		CallLogin: func(_ context.Context, u, p string) (LoginResponse, error) {
			if u != "admin" || p != "pw" {
				t.Fatalf("unexpected credentials %q/%q", u, p)
			}
			return LoginResponse{AccessToken: "A", RefreshToken: "R", Username: "admin"}, nil
		},
	})
	if res.Failure != LoginFailureNone || store.tokens.Access != "A" {
		t.Fatalf("unexpected: %+v", res)
	}

	res = RunLogin(context.Background(), "admin", "pw", LoginDeps{
		Store: store,
		CallLogin: func(context.Context, string, string) (LoginResponse, error) {
			return LoginResponse{AccessToken: "A"}, nil
		},
	})
	if res.Failure != LoginFailureIncomplete {
		t.Fatalf("expected incomplete, got %+v", res)
	}
}
