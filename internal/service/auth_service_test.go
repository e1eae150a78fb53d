package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"munidenuncia/internal/models"
)

type memUsers struct {
	byEmail map[string]*models.User
	hashes  map[string]string
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*models.User{}, hashes: map[string]string{}}
}

func (m *memUsers) Create(_ context.Context, email, name, role, hash string) (*models.User, error) {
	u := &models.User{ID: "u-" + email, Email: email, Name: name, Role: role}
	m.byEmail[email] = u
	m.hashes[email] = hash
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, string, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, "", nil
	}
	return u, m.hashes[email], nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func TestAuthService_LoginVerify(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newMemUsers(), "anon-key")

	u, err := svc.Register(ctx, "usuario@ejemplo.cl", "María", "password123", "superuser")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCitizen, u.Role)

	again, err := svc.Register(ctx, "usuario@ejemplo.cl", "Other", "password123", "")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	tok, got, err := svc.Login(ctx, "usuario@ejemplo.cl", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	who, err := svc.Verify(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "usuario@ejemplo.cl", who.Email)

	_, err = svc.Verify(ctx, tok+"x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_BadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newMemUsers(), "anon-key")
	_, err := svc.Register(ctx, "agente@municipalidad.cl", "Agente", "password123", models.RoleAgent)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "agente@municipalidad.cl", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "ghost@municipalidad.cl", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Register(ctx, "", "x", "password123", "")
	assert.Error(t, err)
}
