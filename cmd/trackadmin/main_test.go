package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	trackAdmin "github.com/MrEthical07/trackAdmin"
	"github.com/MrEthical07/trackAdmin/mockapi"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type cliHarness struct {
	backend  *mockapi.Server
	url      string
	storeDir string
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()
	for _, key := range []string{trackAdmin.EnvAPIURL, trackAdmin.EnvRedisAddr, trackAdmin.EnvStoreDir, trackAdmin.EnvLogLevel} {
		t.Setenv(key, "")
	}
	backend, err := mockapi.New(mockapi.Config{Secret: []byte("trackadmin-cli-test-secret")})
	if err != nil {
		t.Fatalf("mockapi.New: %v", err)
	}
	if err := backend.AddAccount("admin", "secret-pw", "admin"); err != nil {
		t.Fatalf("AddAccount: %v", err)
	}
	ts := httptest.NewServer(backend.Handler())
	t.Cleanup(ts.Close)
	return &cliHarness{backend: backend, url: ts.URL, storeDir: t.TempDir()}
}

func (h *cliHarness) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut syncBuffer
	full := append([]string{"--api-url", h.url, "--store-dir", h.storeDir, "--log-level", "error"}, args...)
	err := run(context.Background(), full, strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestLoginPersistsSessionAcrossInvocations(t *testing.T) {
	h := newCLIHarness(t)
	h.backend.Seed("users",
		map[string]any{"name": "Ana Diaz", "email": "ana@example.com"},
		map[string]any{"name": "Bo Lind", "email": "bo@example.com"},
	)

	out, _, err := h.run(t, "secret-pw\n", "login", "-u", "admin")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "signed in as admin") {
		t.Fatalf("unexpected login output %q", out)
	}

	out, _, err = h.run(t, "", "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "authorized") || strings.Contains(out, "not authorized") {
		t.Fatalf("expected authorized status, got %q", out)
	}

	out, _, err = h.run(t, "", "users", "list")
	if err != nil {
		t.Fatalf("users list: %v", err)
	}
	if !strings.Contains(out, "Ana Diaz") || !strings.Contains(out, "bo@example.com") {
		t.Fatalf("unexpected users output %q", out)
	}

	if _, _, err := h.run(t, "", "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	out, _, err = h.run(t, "", "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "not authorized") {
		t.Fatalf("expected not authorized, got %q", out)
	}
}

func TestCommandWithoutSessionFails(t *testing.T) {
	h := newCLIHarness(t)
	if _, _, err := h.run(t, "", "dashboard"); err == nil {
		t.Fatal("expected an error without a session")
	}
	// The store must have been released so a later command can open it.
	if _, _, err := h.run(t, "", "status"); err != nil {
		t.Fatalf("status after failure: %v", err)
	}
}

func TestCarsListByUser(t *testing.T) {
	h := newCLIHarness(t)
	h.backend.Seed("cars",
		map[string]any{"brand": "Mazda", "model": "MX-5", "userId": 7},
		map[string]any{"brand": "BMW", "model": "M3", "userId": 8},
	)
	if _, _, err := h.run(t, "", "login", "-u", "admin", "-p", "secret-pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	out, _, err := h.run(t, "", "cars", "list", "--user", "7")
	if err != nil {
		t.Fatalf("cars list: %v", err)
	}
	if !strings.Contains(out, "MX-5") || strings.Contains(out, "M3") {
		t.Fatalf("unexpected cars output %q", out)
	}
}

func TestShellNavigatesBackAndForward(t *testing.T) {
	h := newCLIHarness(t)
	h.backend.Seed("tracks", map[string]any{"state": "open", "address": "1 Ring Rd"})
	h.backend.Seed("events", map[string]any{"date": "2026-05-01", "eventType": "drift"})
	if _, _, err := h.run(t, "", "login", "-u", "admin", "-p", "secret-pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	script := "go events\nback\nwhere\nforward\nwhere\nquit\n"
	out, _, err := h.run(t, script, "shell", "--at", "tracks")
	if err != nil {
		t.Fatalf("shell: %v", err)
	}
	for _, want := range []string{"== tracks ==", "1 Ring Rd", "== events ==", "drift", "#tracks", "#events"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in shell output:\n%s", want, out)
		}
	}
	if strings.Index(out, "#tracks") > strings.Index(out, "#events") {
		t.Fatalf("back should report tracks before forward reports events:\n%s", out)
	}
	if got := h.backend.Stats().Requests["GET /api/tracks"]; got != 2 {
		t.Fatalf("expected tracks loaded on init and on back, got %d", got)
	}
}

func TestMetricsCommandPrintsCounters(t *testing.T) {
	h := newCLIHarness(t)
	out, _, err := h.run(t, "", "metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if !strings.Contains(out, "trackadmin_login_success_total") {
		t.Fatalf("unexpected metrics output %q", out)
	}
}

func TestParseID(t *testing.T) {
	if _, err := parseID("0"); err == nil {
		t.Fatal("expected error for zero id")
	}
	if id, err := parseID(" 42 "); err != nil || id != 42 {
		t.Fatalf("parseID = %d, %v", id, err)
	}
}
