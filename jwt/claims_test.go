package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"testing"
	"time"
)

func newHSIssuer(t *testing.T, now time.Time) *Issuer {
	t.Helper()
	iss, err := NewIssuer(Config{
		AccessTTL: 30 * time.Minute,
		Secret:    []byte("0123456789abcdef0123456789abcdef"),
		Issuer:    "trackadmin-test",
	})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return iss.WithClock(func() time.Time { return now })
}

func TestDecodeExpiryReadsExpClaim(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	iss := newHSIssuer(t, now)

	token, exp, err := iss.Issue(42, "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	got, err := DecodeExpiry(token)
	if err != nil {
		t.Fatalf("decode expiry: %v", err)
	}
	if !got.Equal(exp) {
		t.Fatalf("expected exp %v, got %v", exp, got)
	}
}

func TestDecodeExpiryIgnoresSignature(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"exp":1900000000}`))
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

	got, err := DecodeExpiry(header + "." + payload + ".not-a-signature")
	if err != nil {
		t.Fatalf("decode expiry: %v", err)
	}
	if got.Unix() != 1900000000 {
		t.Fatalf("unexpected exp %d", got.Unix())
	}
}

func TestDecodeExpiryRejectsMalformed(t *testing.T) {
	noExp := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"1"}`))
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256"}`))

	cases := map[string]struct {
		token string
		want  error
	}{
		"empty":          {token: "", want: ErrMalformed},
		"one segment":    {token: "abc", want: ErrMalformed},
		"bad base64":     {token: "a.%%%.c", want: ErrMalformed},
		"payload no exp": {token: header + "." + noExp + ".sig", want: ErrNoExpiry},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeExpiry(tc.token); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestIssuerVerifyRejectsExpiredAndForeign(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	iss := newHSIssuer(t, now)

	token, _, err := iss.Issue(7, "bob")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := iss.Verify(token)
	if err != nil {
		t.Fatalf("verify fresh token: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "bob" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	iss.WithClock(func() time.Time { return now.Add(31 * time.Minute) })
	if _, err := iss.Verify(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}

	other, err := NewIssuer(Config{AccessTTL: time.Minute, Secret: []byte("another-secret-another-secret!!")})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	if _, err := other.WithClock(func() time.Time { return now }).Verify(token); err == nil {
		t.Fatal("expected foreign signature to be rejected")
	}
}

func TestIssuerEd25519RoundTrip(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	iss, err := NewIssuer(Config{AccessTTL: time.Minute, SigningMethod: MethodEd25519, Secret: priv})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	token, _, err := iss.Issue(1, "root")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := iss.Verify(token); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestNewIssuerValidatesConfig(t *testing.T) {
	if _, err := NewIssuer(Config{AccessTTL: 0, Secret: []byte("0123456789abcdef")}); err == nil {
		t.Fatal("expected zero TTL to be rejected")
	}
	if _, err := NewIssuer(Config{AccessTTL: time.Minute, Secret: []byte("short")}); err == nil {
		t.Fatal("expected short secret to be rejected")
	}
	if _, err := NewIssuer(Config{AccessTTL: time.Minute, SigningMethod: "rs256", Secret: []byte("0123456789abcdef")}); err == nil {
		t.Fatal("expected unsupported method to be rejected")
	}
}

// FuzzDecodeExpiry exercises the unverified decoder with arbitrary strings.
// Goal: no panics on malformed input.
func FuzzDecodeExpiry(f *testing.F) {
	f.Add("")
	f.Add("not.a.jwt")
	f.Add("eyJhbGciOiJIUzI1NiJ9.eyJleHAiOjF9.x")
	f.Add("eyJhbGciOiJub25lIn0.eyJ1aWQiOiJ0ZXN0In0.")

	f.Fuzz(func(t *testing.T, input string) {
		_, _ = DecodeExpiry(input)
	})
}
