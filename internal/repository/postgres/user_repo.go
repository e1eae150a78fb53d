package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"munidenuncia/internal/models"
	"munidenuncia/internal/repository"
)

type userRow struct {
	ID        string `db:"id"`
	Email     string `db:"email"`
	Name      string `db:"name"`
	AvatarURL string `db:"avatar_url"`
	Role      string `db:"role"`
}

func (row userRow) toModel() *models.User {
	return &models.User{ID: row.ID, Email: row.Email, Name: row.Name, AvatarURL: row.AvatarURL, Role: row.Role}
}

// credentialRow adds the bcrypt hash; it never leaves this package.
type credentialRow struct {
	userRow
	PasswordHash string `db:"password_h"`
}

const userColumns = `id::text AS id, email, name, avatar_url, role`

type UserRepo struct{ db *pgxpool.Pool }

func NewUserRepo(db *pgxpool.Pool) repository.UserRepository { return &UserRepo{db: db} }

// Create user (stores bcrypt hash in password_h)
func (r *UserRepo) Create(ctx context.Context, email, name, role, passwordHash string) (*models.User, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO users (email, name, role, password_h)
		VALUES ($1,$2,$3,$4)
		RETURNING `+userColumns,
		email, name, role, passwordHash)
	if err != nil {
		return nil, err
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[userRow])
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

// GetByEmail matches case-insensitively and returns the stored hash alongside the user.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`, password_h
		FROM users WHERE lower(email) = lower($1)`, email)
	if err != nil {
		return nil, "", err
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[credentialRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", nil
		}
		return nil, "", err
	}
	return row.userRow.toModel(), row.PasswordHash, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[userRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toModel(), nil
}
