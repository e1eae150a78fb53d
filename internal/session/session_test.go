package session

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "mock_user")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetJSON(ctx, s, "mock_user", user{ID: "1", Email: "usuario@ejemplo.cl"}))

	var got user
	ok, err = GetJSON(ctx, s, "mock_user", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "usuario@ejemplo.cl", got.Email)

	require.NoError(t, s.Delete(ctx, "mock_user"))
	require.NoError(t, s.Delete(ctx, "mock_user"))
	_, ok, err = s.Get(ctx, "mock_user")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	exercise(t, s)

	// survives a new store over the same directory
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "theme", []byte(`"dark"`)))
	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	b, ok, err := reopened.Get(ctx, "theme")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `"dark"`, string(b))

	_, _, err = s.Get(ctx, "../escape")
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	s, err := NewRedisStore(url, "munidenuncia:test:")
	require.NoError(t, err)
	defer s.Close()
	if err := s.Ping(context.Background()); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	exercise(t, s)
}
