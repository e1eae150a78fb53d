// Package state holds the process-wide client state: the authenticated
// session and UI preferences. Observers subscribe to changes.
package state

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"munidenuncia/internal/models"
)

// AuthAPI is the part of the data adapter the auth store drives.
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Logout(ctx context.Context) error
	GetCurrentUser(ctx context.Context) (*models.User, error)
}

type AuthState struct {
	User            *models.User `json:"user"`
	IsLoading       bool         `json:"isLoading"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

type AuthStore struct {
	api AuthAPI
	log zerolog.Logger

	mu    sync.RWMutex
	state AuthState
	obs   observers[AuthState]
}

// NewAuthStore starts out loading until Initialize has run.
func NewAuthStore(api AuthAPI, log zerolog.Logger) *AuthStore {
	return &AuthStore{api: api, log: log, state: AuthState{IsLoading: true}}
}

func (s *AuthStore) Snapshot() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// Subscribe calls fn after every change. The returned func stops it.
func (s *AuthStore) Subscribe(fn func(AuthState)) func() { return s.obs.add(fn) }

func (s *AuthStore) set(st AuthState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.obs.notify(s.Snapshot())
}

// Initialize restores the persisted session. A failure leaves the store
// unauthenticated; it is logged, not returned.
func (s *AuthStore) Initialize(ctx context.Context) {
	u, err := s.api.GetCurrentUser(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("session restore failed")
		s.set(AuthState{})
		return
	}
	s.set(AuthState{User: u, IsAuthenticated: u != nil})
}

// Login leaves the state untouched when the adapter rejects the credentials.
func (s *AuthStore) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	res, err := s.api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	u := res.User
	s.mu.RLock()
	loading := s.state.IsLoading
	s.mu.RUnlock()
	s.set(AuthState{User: &u, IsAuthenticated: true, IsLoading: loading})
	return res, nil
}

func (s *AuthStore) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		return err
	}
	s.mu.RLock()
	loading := s.state.IsLoading
	s.mu.RUnlock()
	s.set(AuthState{IsLoading: loading})
	return nil
}
