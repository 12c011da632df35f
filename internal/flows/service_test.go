package flows

import (
	"context"
	"testing"

	"github.com/MrEthical07/trackAdmin/session"
)

func TestServiceUsesWiredDeps(t *testing.T) {
	if (Service{}).Initialized() {
		t.Fatal("zero service must not report initialized")
	}

	store := &fakeStore{tokens: session.Tokens{Access: "A1", Refresh: "R1"}}
	svc := New(Deps{
		Login: LoginDeps{
			Store: store,
			CallLogin: func(context.Context, string, string) (LoginResponse, error) {
				return LoginResponse{AccessToken: "A0", RefreshToken: "R0"}, nil
			},
		},
		Refresh: RefreshDeps{
			Store: store,
			CallRefresh: func(context.Context, string) (TokenPair, error) {
				return TokenPair{AccessToken: "A2", RefreshToken: "R2"}, nil
			},
		},
	})
	if !svc.Initialized() {
		t.Fatal("expected wired service to report initialized")
	}

	if res := svc.Login(context.Background(), "admin", "pw"); res.Failure != LoginFailureNone {
		t.Fatalf("Login failed: %+v", res)
	}
	if store.tokens != (session.Tokens{Access: "A0", Refresh: "R0"}) {
		t.Fatalf("login pair not stored: %+v", store.tokens)
	}

	if res := svc.Refresh(context.Background(), "R0"); !res.OK() || !res.Rotated {
		t.Fatalf("Refresh failed: %+v", res)
	}
	if store.tokens != (session.Tokens{Access: "A2", Refresh: "R2"}) {
		t.Fatalf("refresh pair not stored: %+v", store.tokens)
	}
}
