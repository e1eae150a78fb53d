package state

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"munidenuncia/internal/models"
	"munidenuncia/internal/repository"
	"munidenuncia/internal/session"
)

type stubAPI struct {
	current    *models.User
	currentErr error
	loginErr   error
	logoutErr  error
	gotCreds   models.Credentials
	logouts    int
}

func (s *stubAPI) Login(_ context.Context, c models.Credentials) (*models.AuthResult, error) {
	s.gotCreds = c
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &models.AuthResult{User: models.User{ID: "user-123", Email: c.Email, Name: "Test User"}, Token: "mock-token"}, nil
}

func (s *stubAPI) Logout(context.Context) error {
	s.logouts++
	return s.logoutErr
}

func (s *stubAPI) GetCurrentUser(context.Context) (*models.User, error) {
	return s.current, s.currentErr
}

func TestAuthStore_InitialState(t *testing.T) {
	s := NewAuthStore(&stubAPI{}, zerolog.Nop())
	st := s.Snapshot()
	assert.Nil(t, st.User)
	assert.True(t, st.IsLoading)
	assert.False(t, st.IsAuthenticated)
}

func TestAuthStore_Login(t *testing.T) {
	api := &stubAPI{}
	s := NewAuthStore(api, zerolog.Nop())

	res, err := s.Login(context.Background(), models.Credentials{Email: "test@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "mock-token", res.Token)
	assert.Equal(t, models.Credentials{Email: "test@example.com", Password: "password123"}, api.gotCreds)

	st := s.Snapshot()
	require.NotNil(t, st.User)
	assert.Equal(t, "user-123", st.User.ID)
	assert.True(t, st.IsAuthenticated)
}

func TestAuthStore_LoginRejected(t *testing.T) {
	api := &stubAPI{loginErr: repository.ErrAuth}
	s := NewAuthStore(api, zerolog.Nop())
	s.Initialize(context.Background())

	_, err := s.Login(context.Background(), models.Credentials{Email: "test@example.com", Password: "wrong"})
	require.ErrorIs(t, err, repository.ErrAuth)
	assert.Equal(t, AuthState{}, s.Snapshot())
}

func TestAuthStore_Logout(t *testing.T) {
	api := &stubAPI{current: &models.User{ID: "user-123", Email: "test@example.com"}}
	s := NewAuthStore(api, zerolog.Nop())
	s.Initialize(context.Background())
	require.True(t, s.Snapshot().IsAuthenticated)

	require.NoError(t, s.Logout(context.Background()))
	assert.Equal(t, 1, api.logouts)
	st := s.Snapshot()
	assert.Nil(t, st.User)
	assert.False(t, st.IsAuthenticated)
}

func TestAuthStore_LogoutFailureKeepsSession(t *testing.T) {
	api := &stubAPI{current: &models.User{ID: "user-123"}, logoutErr: errors.New("offline")}
	s := NewAuthStore(api, zerolog.Nop())
	s.Initialize(context.Background())

	require.Error(t, s.Logout(context.Background()))
	assert.True(t, s.Snapshot().IsAuthenticated)
}

func TestAuthStore_Initialize(t *testing.T) {
	t.Run("restores user", func(t *testing.T) {
		s := NewAuthStore(&stubAPI{current: &models.User{ID: "user-123", Name: "Test User"}}, zerolog.Nop())
		s.Initialize(context.Background())
		st := s.Snapshot()
		require.NotNil(t, st.User)
		assert.Equal(t, "Test User", st.User.Name)
		assert.True(t, st.IsAuthenticated)
		assert.False(t, st.IsLoading)
	})
	t.Run("error", func(t *testing.T) {
		s := NewAuthStore(&stubAPI{currentErr: errors.New("network error")}, zerolog.Nop())
		s.Initialize(context.Background())
		assert.Equal(t, AuthState{}, s.Snapshot())
	})
	t.Run("no session", func(t *testing.T) {
		s := NewAuthStore(&stubAPI{}, zerolog.Nop())
		s.Initialize(context.Background())
		assert.Equal(t, AuthState{}, s.Snapshot())
	})
}

func TestAuthStore_Subscribe(t *testing.T) {
	s := NewAuthStore(&stubAPI{}, zerolog.Nop())
	var seen []bool
	stop := s.Subscribe(func(st AuthState) { seen = append(seen, st.IsAuthenticated) })

	s.Initialize(context.Background())
	_, err := s.Login(context.Background(), models.Credentials{Email: "a@b.cl", Password: "password123"})
	require.NoError(t, err)
	stop()
	stop()
	require.NoError(t, s.Logout(context.Background()))

	assert.Equal(t, []bool{false, true}, seen)
}

func TestAuthStore_SnapshotIsCopy(t *testing.T) {
	s := NewAuthStore(&stubAPI{current: &models.User{ID: "1", Name: "Ana"}}, zerolog.Nop())
	s.Initialize(context.Background())
	st := s.Snapshot()
	st.User.Name = "changed"
	assert.Equal(t, "Ana", s.Snapshot().User.Name)
}

func TestThemeStore(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	s := NewThemeStore(ctx, store, zerolog.Nop())
	assert.Equal(t, ThemeSystem, s.Get())

	var changes []Theme
	s.Subscribe(func(th Theme) { changes = append(changes, th) })

	require.NoError(t, s.Set(ctx, ThemeLight))
	assert.ErrorIs(t, s.Set(ctx, Theme("sepia")), ErrUnknownTheme)
	assert.Equal(t, ThemeLight, s.Get())

	next, err := s.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, next)
	assert.Equal(t, []Theme{ThemeLight, ThemeDark}, changes)

	// persisted across instances
	again := NewThemeStore(ctx, store, zerolog.Nop())
	assert.Equal(t, ThemeDark, again.Get())
}

func TestThemeStore_BadPersistedValue(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(ctx, themeKey, []byte(`"neon"`)))
	assert.Equal(t, ThemeSystem, NewThemeStore(ctx, store, zerolog.Nop()).Get())

	require.NoError(t, store.Set(ctx, themeKey, []byte(`{`)))
	assert.Equal(t, ThemeSystem, NewThemeStore(ctx, store, zerolog.Nop()).Get())
}
