package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/trackAdmin/jwt"
	"github.com/MrEthical07/trackAdmin/storage"
)

// ErrIncompleteTokens is returned when SetSession is called without both tokens.
var ErrIncompleteTokens = errors.New("session: access and refresh tokens are both required")

// Store is the single source of truth for the current token pair.
type Store struct {
	kv     storage.KV
	margin time.Duration
	now    func() time.Time

	mu     sync.RWMutex
	tokens Tokens
	epoch  uint64
}

// Option customises a Store.
type Option func(*Store)

// WithMargin overrides DefaultExpiryMargin.
func WithMargin(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.margin = d
		}
	}
}

// WithClock overrides the wall clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns a Store persisting into kv. A nil kv keeps tokens in memory only.
func NewStore(kv storage.KV, opts ...Option) *Store {
	if kv == nil {
		kv = storage.NewMemory()
	}
	s := &Store{
		kv:     kv,
		margin: DefaultExpiryMargin,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores a previously persisted pair. A half-written pair is discarded.
func (s *Store) Load(ctx context.Context) error {
	access, accessErr := s.kv.Get(ctx, KeyAccessToken)
	refresh, refreshErr := s.kv.Get(ctx, KeyRefreshToken)

	for _, err := range []error{accessErr, refreshErr} {
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("session: load: %w", err)
		}
	}

	if access == "" || refresh == "" {
		s.mu.Lock()
		s.tokens = Tokens{}
		s.mu.Unlock()
		if access != "" || refresh != "" {
			return s.kv.Delete(ctx, KeyAccessToken, KeyRefreshToken)
		}
		return nil
	}

	s.mu.Lock()
	s.tokens = Tokens{Access: access, Refresh: refresh}
	s.mu.Unlock()
	return nil
}

// SetSession persists and adopts a new token pair. On a storage failure the
// in-memory pair is left untouched.
func (s *Store) SetSession(ctx context.Context, access, refresh string) error {
	access = strings.TrimSpace(access)
	refresh = strings.TrimSpace(refresh)
	if access == "" || refresh == "" {
		return ErrIncompleteTokens
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.SetMany(ctx, map[string]string{
		KeyAccessToken:  access,
		KeyRefreshToken: refresh,
	}); err != nil {
		return fmt.Errorf("session: persist: %w", err)
	}
	s.tokens = Tokens{Access: access, Refresh: refresh}
	return nil
}

// ClearSession forgets both tokens. Safe to call with no session.
func (s *Store) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	s.tokens = Tokens{}
	s.epoch++
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, KeyAccessToken, KeyRefreshToken); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// Tokens returns a copy of the current pair.
func (s *Store) Tokens() Tokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

// HasSession reports whether an access token is held.
func (s *Store) HasSession() bool {
	return !s.Tokens().Empty()
}

// Epoch identifies the current session lifetime; it changes on every clear.
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// IsExpired reports whether token is absent, undecodable, or expires within the margin.
func (s *Store) IsExpired(token string) bool {
	if token == "" {
		return true
	}
	exp, err := jwt.DecodeExpiry(token)
	if err != nil {
		return true
	}
	return !exp.After(s.now().Add(s.margin))
}

// AccessExpired applies IsExpired to the current access token.
func (s *Store) AccessExpired() bool {
	return s.IsExpired(s.Tokens().Access)
}

// ExpiresAt returns the decoded expiry of the current access token.
func (s *Store) ExpiresAt() (time.Time, bool) {
	access := s.Tokens().Access
	if access == "" {
		return time.Time{}, false
	}
	exp, err := jwt.DecodeExpiry(access)
	if err != nil {
		return time.Time{}, false
	}
	return exp, true
}
