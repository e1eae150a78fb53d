package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"munidenuncia/internal/models"
	"munidenuncia/internal/repository"
	"munidenuncia/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const tokenTTL = 24 * time.Hour

// AuthService is the hosted backend's password sign-in. Access tokens are
// signed with the backend's public API key.
type AuthService struct {
	users  repository.UserRepository
	apiKey string
}

func NewAuthService(users repository.UserRepository, apiKey string) *AuthService {
	return &AuthService{users: users, apiKey: apiKey}
}

// Register creates an account, or returns the existing one for email.
func (a *AuthService) Register(ctx context.Context, email, name, password, role string) (*models.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || len(password) < 6 {
		return nil, errors.New("invalid input")
	}
	if u, _, err := a.users.GetByEmail(ctx, email); err != nil || u != nil {
		return u, err
	}

	role = strings.ToLower(strings.TrimSpace(role))
	if role != models.RoleAgent {
		role = models.RoleCitizen
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return a.users.Create(ctx, email, name, role, hash)
}

func (a *AuthService) Login(ctx context.Context, email, password string) (token string, user *models.User, err error) {
	u, hash, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	// hash is empty for unknown emails; CheckPassword still does the work
	if !utils.CheckPassword(hash, password) || u == nil {
		return "", nil, ErrInvalidCredentials
	}
	tok, err := utils.SignJWT(a.apiKey, *u, tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

// Verify checks an access token issued by Login and returns the user it
// was issued to. Expired or tampered tokens yield ErrInvalidCredentials.
func (a *AuthService) Verify(_ context.Context, token string) (*models.User, error) {
	c, err := utils.ParseJWT(a.apiKey, token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u := c.User()
	return &u, nil
}
