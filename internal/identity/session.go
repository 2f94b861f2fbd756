package identity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// ErrSignedOut means no usable credentials exist. The CLI prints a sign-in
// hint; the agent logs it and keeps polling.
var ErrSignedOut = errors.New("not signed in")

// refreshAhead is how close to expiry an access token may get before
// Token refreshes it instead of handing it out.
const refreshAhead = 30 * time.Second

// Session hands out a valid access token on demand, loading from the disk
// cache on first use and refreshing transparently near expiry. It
// implements backend.TokenSource.
type Session struct {
	client *Client
	cache  *Cache

	mu     sync.Mutex
	tokens *TokenSet
	loaded bool

	now func() time.Time
}

// NewSession wires a provider client to a token cache.
func NewSession(client *Client, cache *Cache) *Session {
	return &Session{client: client, cache: cache, now: time.Now}
}

// Token returns a valid access token, refreshing first when the cached one
// is within refreshAhead of expiry. Returns ErrSignedOut when there are no
// usable credentials.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocked()
	if s.tokens == nil || s.tokens.AccessToken == "" {
		return "", ErrSignedOut
	}

	// A zero expiry means the provider never told us; trust the token.
	if s.tokens.ExpiresAt.IsZero() || s.tokens.ExpiresAt.Sub(s.now()) > refreshAhead {
		return s.tokens.AccessToken, nil
	}

	if s.tokens.RefreshToken == "" {
		s.tokens = nil
		return "", ErrSignedOut
	}
	fresh, err := s.client.Refresh(ctx, s.tokens.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh session: %w", err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = s.tokens.RefreshToken
	}
	s.tokens = fresh
	if err := s.cache.Save(fresh); err != nil {
		log.Printf("Failed to persist refreshed tokens: %v", err)
	}
	return s.tokens.AccessToken, nil
}

// SignIn exchanges credentials for tokens and persists them.
func (s *Session) SignIn(ctx context.Context, email, password string) error {
	ts, err := s.client.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = ts
	s.loaded = true
	return s.cache.Save(ts)
}

// SignOut invalidates the session server-side (best effort) and clears
// local credentials.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.loadLocked()
	var access string
	if s.tokens != nil {
		access = s.tokens.AccessToken
	}
	s.tokens = nil
	s.mu.Unlock()

	if access != "" {
		if err := s.client.SignOut(ctx, access); err != nil {
			log.Printf("Server-side sign-out failed: %v", err)
		}
	}
	return s.cache.Clear()
}

// SignedIn reports whether credentials are present, without refreshing.
func (s *Session) SignedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	return s.tokens != nil && s.tokens.AccessToken != ""
}

func (s *Session) loadLocked() {
	if s.loaded {
		return
	}
	s.loaded = true
	ts, err := s.cache.Load()
	if err != nil {
		log.Printf("Failed to load token cache: %v", err)
		return
	}
	s.tokens = ts
}
