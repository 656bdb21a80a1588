package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/domain/user"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt,
	)
	if _, ok := uniqueConstraint(err); ok {
		return user.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) Get(ctx context.Context, id string) (*user.User, error) {
	return r.queryOne(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.queryOne(ctx, `WHERE email = $1`, email)
}

func (r *UserRepository) queryOne(ctx context.Context, where string, args ...any) (*user.User, error) {
	var (
		u    user.User
		role string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, created_at, updated_at FROM users `+where, args...,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = auth.ParseRole(role)
	return &u, nil
}
