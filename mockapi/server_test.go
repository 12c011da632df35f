package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/MrEthical07/trackAdmin/storage"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var testSecret = []byte("mockapi-test-secret-0123456789")

func newTestServer(t *testing.T, kv storage.KV) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := New(Config{Secret: testSecret, KV: kv})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := srv.AddAccount("admin", "secret-pw", "admin"); err != nil {
		t.Fatalf("AddAccount failed: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, body any, out any) int {
	t.Helper()
	raw, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		_ = json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode
}

func authedGet(t *testing.T, url, token string) int {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestLoginAndGuardedList(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	srv.Seed("users", map[string]any{"name": "Ann", "email": "ann@example.com"})

	var pair tokenResponse
	if code := postJSON(t, ts.URL+"/api/auth/login", credentials{Username: "admin", Password: "secret-pw"}, &pair); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.Role != "admin" {
		t.Fatalf("unexpected login response: %+v", pair)
	}

	if code := authedGet(t, ts.URL+"/api/users", ""); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", code)
	}
	if code := authedGet(t, ts.URL+"/api/users", pair.AccessToken); code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", code)
	}

	srv.RevokeAccessTokens()
	if code := authedGet(t, ts.URL+"/api/users", pair.AccessToken); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after revoke, got %d", code)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	_, ts := newTestServer(t, nil)
	if code := postJSON(t, ts.URL+"/api/auth/login", credentials{Username: "admin", Password: "wrong"}, nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestRefreshRotatesAndRejectsReuse(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	_, ts := newTestServer(t, storage.NewRedisKV(rdb, "mock"))

	var first tokenResponse
	postJSON(t, ts.URL+"/api/auth/login", credentials{Username: "admin", Password: "secret-pw"}, &first)

	var second tokenResponse
	code := postJSON(t, ts.URL+"/api/auth/refresh", map[string]string{"refreshToken": first.RefreshToken}, &second)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if second.RefreshToken == first.RefreshToken || second.AccessToken == first.AccessToken {
		t.Fatal("expected a rotated pair")
	}
	if !mr.Exists("mock:refresh:" + second.RefreshToken) {
		t.Fatal("expected new refresh token in redis")
	}

	if code := postJSON(t, ts.URL+"/api/auth/refresh", map[string]string{"refreshToken": first.RefreshToken}, nil); code != http.StatusUnauthorized {
		t.Fatalf("expected reuse to be rejected, got %d", code)
	}
}

func TestConcurrentRefreshRedeemsOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	_, ts := newTestServer(t, storage.NewRedisKV(rdb, "mock"))

	var pair tokenResponse
	postJSON(t, ts.URL+"/api/auth/login", credentials{Username: "admin", Password: "secret-pw"}, &pair)
	raw, _ := json.Marshal(map[string]string{"refreshToken": pair.RefreshToken})

	const callers = 8
	codes := make([]int, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			resp, err := http.Post(ts.URL+"/api/auth/refresh", "application/json", bytes.NewReader(raw))
			if err != nil {
				return
			}
			resp.Body.Close()
			codes[i] = resp.StatusCode
		}(i)
	}
	close(start)
	wg.Wait()

	ok := 0
	for _, code := range codes {
		switch code {
		case http.StatusOK:
			ok++
		case http.StatusUnauthorized:
		default:
			t.Fatalf("unexpected status %d", code)
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one successful refresh, got %d (codes %v)", ok, codes)
	}
}

func TestRegisterDuplicateAndValidation(t *testing.T) {
	_, ts := newTestServer(t, nil)
	if code := postJSON(t, ts.URL+"/api/auth/register", credentials{Username: "bob", Password: "hunter22"}, nil); code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	if code := postJSON(t, ts.URL+"/api/auth/register", credentials{Username: "bob", Password: "hunter22"}, nil); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate, got %d", code)
	}
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	if code := postJSON(t, ts.URL+"/api/auth/register", credentials{Username: "", Password: "x"}, &body); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if body.Errors["password"] == "" {
		t.Fatalf("expected field errors, got %+v", body)
	}
}

func TestStatsCountRoutes(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	postJSON(t, ts.URL+"/api/auth/login", credentials{Username: "admin", Password: "secret-pw"}, nil)
	authedGet(t, ts.URL+"/api/tracks", "")

	st := srv.Stats()
	if st.Logins != 1 {
		t.Fatalf("expected 1 login, got %d", st.Logins)
	}
	if st.Requests["GET /api/tracks"] != 1 {
		t.Fatalf("expected 1 tracks request, got %+v", st.Requests)
	}
}
