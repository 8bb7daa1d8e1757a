package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/quillpost/quillpost-go/internal/model"
)

const (
	userKey  = "user"
	tokenKey = "token"
)

// ErrNotAuthenticated is returned by the route guard and by operations that
// need a signed-in user.
var ErrNotAuthenticated = errors.New("not authenticated")

// Session is the client's view of who is signed in. The user is held in
// memory and mirrored, together with the token, to durable storage. The user
// and token keys are always present or absent together.
type Session struct {
	store Store

	mu   sync.RWMutex
	user *model.UserResponse
}

// OpenSession rehydrates a session from store. A half-written session (only
// one of user/token present, or an unreadable user) is cleared.
func OpenSession(ctx context.Context, store Store) (*Session, error) {
	s := &Session{store: store}

	rawUser, err := store.Get(ctx, userKey)
	if err != nil {
		return nil, err
	}
	token, err := store.Get(ctx, tokenKey)
	if err != nil {
		return nil, err
	}

	switch {
	case rawUser == nil && token == nil:
		return s, nil
	case rawUser == nil || len(token) == 0:
		slog.Warn("discarding partial session", "has_user", rawUser != nil, "has_token", len(token) > 0)
		return s, s.clear(ctx)
	}

	var user model.UserResponse
	if err := json.Unmarshal(rawUser, &user); err != nil {
		slog.Warn("discarding unreadable session user", "error", err)
		return s, s.clear(ctx)
	}
	s.user = &user
	return s, nil
}

// Establish records a fresh login. It is the only way a token enters the
// session.
func (s *Session) Establish(ctx context.Context, user model.UserResponse, token string) error {
	if token == "" {
		return errors.New("establish session: empty token")
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(ctx, tokenKey, []byte(token)); err != nil {
		return err
	}
	if err := s.store.Set(ctx, userKey, raw); err != nil {
		_ = s.store.Delete(ctx, tokenKey)
		return err
	}
	s.user = &user
	return nil
}

// SetUser replaces the signed-in user. A nil user signs out, clearing both
// keys; calling it again is a no-op. A non-nil user requires an existing
// session and never touches the token.
func (s *Session) SetUser(ctx context.Context, user *model.UserResponse) error {
	if user == nil {
		return s.clear(ctx)
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return ErrNotAuthenticated
	}
	if err := s.store.Set(ctx, userKey, raw); err != nil {
		return err
	}
	u := *user
	s.user = &u
	return nil
}

// User returns the signed-in user, if any.
func (s *Session) User() (model.UserResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.UserResponse{}, false
	}
	return *s.user, true
}

// IsAuthenticated reports whether a user is signed in.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// RequireAuth guards protected views. The server remains the authority; this
// only saves a round trip that would be rejected anyway.
func (s *Session) RequireAuth() (model.UserResponse, error) {
	user, ok := s.User()
	if !ok {
		return model.UserResponse{}, ErrNotAuthenticated
	}
	return user, nil
}

// Token reads the bearer token from durable storage. It is empty when
// signed out.
func (s *Session) Token(ctx context.Context) (string, error) {
	token, err := s.store.Get(ctx, tokenKey)
	if err != nil {
		return "", err
	}
	return string(token), nil
}

func (s *Session) clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	errUser := s.store.Delete(ctx, userKey)
	errToken := s.store.Delete(ctx, tokenKey)
	s.user = nil
	return errors.Join(errUser, errToken)
}
