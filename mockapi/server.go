package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/trackAdmin/jwt"
	"github.com/MrEthical07/trackAdmin/storage"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const refreshKeyPrefix = "refresh:"

// Collections served under /api.
var Collections = []string{"users", "events", "tracks", "face-to-face", "cars", "schedules"}

// requiredFields lists the fields a create or full update must carry.
var requiredFields = map[string][]string{
	"users":        {"name", "email"},
	"events":       {"date", "eventType"},
	"tracks":       {"state", "address"},
	"face-to-face": {"startTime", "eventId", "user1Id", "user2Id"},
	"cars":         {"brand", "model"},
}

type Config struct {
	// Secret is the HS256 signing key, at least 16 bytes.
	Secret    []byte
	AccessTTL time.Duration
	// KV stores refresh tokens. Defaults to an in-memory store.
	KV     storage.KV
	Clock  func() time.Time
	Logger *zap.Logger
	// BcryptCost defaults to bcrypt.MinCost to keep tests fast.
	BcryptCost int
}

type account struct {
	ID       int64
	Username string
	Hash     []byte
	Role     string
}

type collection struct {
	nextID int64
	items  map[int64]map[string]any
}

// Stats counts calls per endpoint.
type Stats struct {
	Logins    int64
	Refreshes int64
	Requests  map[string]int64
}

type Server struct {
	issuer *jwt.Issuer
	kv     storage.KV
	logger *zap.Logger
	cost   int

	mu          sync.Mutex
	accounts    map[string]*account
	nextAccount int64
	collections map[string]*collection
	issued      map[string]struct{}
	revoked     map[string]struct{}
	requests    map[string]int64

	// redeemMu makes reading and deleting a refresh token one step.
	redeemMu sync.Mutex

	refreshEnabled atomic.Bool
	logins         atomic.Int64
	refreshes      atomic.Int64
}

func New(cfg Config) (*Server, error) {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 30 * time.Minute
	}
	issuer, err := jwt.NewIssuer(jwt.Config{
		AccessTTL:     cfg.AccessTTL,
		SigningMethod: jwt.MethodHS256,
		Secret:        cfg.Secret,
		Issuer:        "trackadmin-mockapi",
	})
	if err != nil {
		return nil, fmt.Errorf("mockapi: %w", err)
	}
	if cfg.Clock != nil {
		issuer.WithClock(cfg.Clock)
	}
	kv := cfg.KV
	if kv == nil {
		kv = storage.NewMemory()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.MinCost
	}

	s := &Server{
		issuer:      issuer,
		kv:          kv,
		logger:      logger,
		cost:        cost,
		accounts:    make(map[string]*account),
		collections: make(map[string]*collection, len(Collections)),
		issued:      make(map[string]struct{}),
		revoked:     make(map[string]struct{}),
		requests:    make(map[string]int64),
	}
	for _, name := range Collections {
		s.collections[name] = &collection{nextID: 1, items: make(map[int64]map[string]any)}
	}
	s.refreshEnabled.Store(true)
	return s, nil
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.countRequests)

	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/refresh", s.handleRefresh).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.guard)
	api.HandleFunc("/cars/user/{id:[0-9]+}", s.handleCarsByUser).Methods(http.MethodGet)
	api.HandleFunc("/{collection}", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/{collection}", s.handleCreate).Methods(http.MethodPost)
	api.HandleFunc("/{collection}/{id:[0-9]+}", s.handleGet).Methods(http.MethodGet)
	api.HandleFunc("/{collection}/{id:[0-9]+}", s.handleReplace).Methods(http.MethodPut)
	api.HandleFunc("/{collection}/{id:[0-9]+}", s.handlePatch).Methods(http.MethodPatch)
	api.HandleFunc("/{collection}/{id:[0-9]+}", s.handleDelete).Methods(http.MethodDelete)

	return r
}

/*
====================================
TEST HOOKS
====================================
*/

// AddAccount registers an operator directly.
func (s *Server) AddAccount(username, password, role string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[username]; ok {
		return errors.New("mockapi: account exists")
	}
	s.nextAccount++
	s.accounts[username] = &account{ID: s.nextAccount, Username: username, Hash: hash, Role: role}
	return nil
}

// Seed inserts records into a collection and returns their ids.
func (s *Server) Seed(name string, records ...map[string]any) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[name]
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		ids = append(ids, col.insert(rec))
	}
	return ids
}

// RevokeAccessTokens makes every access token issued so far fail with 401.
func (s *Server) RevokeAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok := range s.issued {
		s.revoked[tok] = struct{}{}
	}
	s.issued = make(map[string]struct{})
}

// SetRefreshEnabled makes /api/auth/refresh answer 401 when disabled.
func (s *Server) SetRefreshEnabled(enabled bool) {
	s.refreshEnabled.Store(enabled)
}

func (s *Server) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	req := make(map[string]int64, len(s.requests))
	for k, v := range s.requests {
		req[k] = v
	}
	return Stats{Logins: s.logins.Load(), Refreshes: s.refreshes.Load(), Requests: req}
}

func (s *Server) isRevoked(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[token]
	return ok
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.requests[key]++
		s.mu.Unlock()
		s.logger.Debug("request", zap.String("route", key), zap.String("request_id", r.Header.Get("X-Request-Id")))
		next.ServeHTTP(w, r)
	})
}

/*
====================================
AUTH
====================================
*/

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ID           int64  `json:"id,omitempty"`
	Username     string `json:"username,omitempty"`
	Role         string `json:"role,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || len(req.Password) < 6 {
		writeValidation(w, "invalid registration", map[string]string{"username": "required", "password": "at least 6 characters"})
		return
	}

	s.mu.Lock()
	first := len(s.accounts) == 0
	s.mu.Unlock()
	role := "operator"
	if first {
		role = "admin"
	}
	if err := s.AddAccount(req.Username, req.Password, role); err != nil {
		writeError(w, http.StatusBadRequest, "user already exists")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.logins.Add(1)
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[strings.TrimSpace(req.Username)]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acc.Hash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	resp, err := s.issuePair(r.Context(), acc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token issue failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshes.Add(1)
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh token required")
		return
	}
	if !s.refreshEnabled.Load() {
		writeError(w, http.StatusUnauthorized, "refresh rejected")
		return
	}

	username, err := s.redeemRefresh(r.Context(), req.RefreshToken)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusUnauthorized, "refresh rejected")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "refresh store unavailable")
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[username]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "refresh rejected")
		return
	}

	resp, err := s.issuePair(r.Context(), acc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token issue failed")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken})
}

// redeemRefresh consumes a refresh token. Of two concurrent calls with the
// same token only one gets the username; the other sees ErrNotFound.
func (s *Server) redeemRefresh(ctx context.Context, token string) (string, error) {
	s.redeemMu.Lock()
	defer s.redeemMu.Unlock()

	key := refreshKeyPrefix + token
	username, err := s.kv.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if err := s.kv.Delete(ctx, key); err != nil {
		return "", err
	}
	return username, nil
}

func (s *Server) issuePair(ctx context.Context, acc *account) (tokenResponse, error) {
	access, _, err := s.issuer.Issue(acc.ID, acc.Username)
	if err != nil {
		return tokenResponse{}, err
	}
	refresh := uuid.NewString()
	if err := s.kv.SetMany(ctx, map[string]string{refreshKeyPrefix + refresh: acc.Username}); err != nil {
		return tokenResponse{}, err
	}

	s.mu.Lock()
	s.issued[access] = struct{}{}
	s.mu.Unlock()

	return tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ID:           acc.ID,
		Username:     acc.Username,
		Role:         acc.Role,
	}, nil
}

/*
====================================
COLLECTIONS
====================================
*/

func (c *collection) insert(rec map[string]any) int64 {
	id := c.nextID
	c.nextID++
	stored := make(map[string]any, len(rec)+1)
	for k, v := range rec {
		stored[k] = v
	}
	stored["id"] = id
	c.items[id] = stored
	return id
}

func (c *collection) sorted() []map[string]any {
	ids := make([]int64, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.items[id])
	}
	return out
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*collection, int64, bool) {
	vars := mux.Vars(r)
	col, ok := s.collections[vars["collection"]]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown collection")
		return nil, 0, false
	}
	idStr, hasID := vars["id"]
	if !hasID {
		return col, 0, true
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, 0, false
	}
	return col, id, true
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, _, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, col.sorted())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, id, ok := s.lookup(w, r)
	if !ok {
		return
	}
	rec, found := col.items[id]
	if !found {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	name := mux.Vars(r)["collection"]
	if fields := missingFields(name, rec); len(fields) > 0 {
		writeValidation(w, "validation failed", fields)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	col, _, ok := s.lookup(w, r)
	if !ok {
		return
	}
	id := col.insert(rec)
	writeJSON(w, http.StatusCreated, col.items[id])
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	if fields := missingFields(mux.Vars(r)["collection"], rec); len(fields) > 0 {
		writeValidation(w, "validation failed", fields)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	col, id, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if _, found := col.items[id]; !found {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	rec["id"] = id
	col.items[id] = rec
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	patch, ok := decodeRecord(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	col, id, ok := s.lookup(w, r)
	if !ok {
		return
	}
	rec, found := col.items[id]
	if !found {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	for k, v := range patch {
		if k != "id" {
			rec[k] = v
		}
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, id, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if _, found := col.items[id]; !found {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	delete(col.items, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCarsByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0)
	for _, rec := range s.collections["cars"].sorted() {
		if toInt64(rec["userId"]) == userID {
			out = append(out, rec)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func decodeRecord(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var rec map[string]any
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil || rec == nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return nil, false
	}
	return rec, true
}

func missingFields(name string, rec map[string]any) map[string]string {
	out := map[string]string{}
	for _, field := range requiredFields[name] {
		v, ok := rec[field]
		if !ok || v == nil || v == "" {
			out[field] = "is required"
		}
	}
	return out
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	}
	return 0
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeValidation(w http.ResponseWriter, message string, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"message": message, "errors": fields})
}
