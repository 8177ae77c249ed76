package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mrmazuu/fyp-prototype/internal/shared"
)

// Repository is the user-store port the core depends on. FindByEmail misses
// with shared.ErrNotFound; Create must be atomic with respect to the email
// uniqueness constraint and reports violations as shared.ErrDuplicateEmail.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, fields NewUserFields) (*User, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `user_id, email, name, password_hash, role, created_at, updated_at`

// FindByEmail fetches a user by its login key.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Create inserts a new account. The unique index on email arbitrates
// concurrent signups: exactly one insert wins, the loser sees
// shared.ErrDuplicateEmail.
func (r *PGRepository) Create(ctx context.Context, fields NewUserFields) (*User, error) {
	role := fields.Role
	if role == "" {
		role = DefaultRole
	}
	const query = `
		INSERT INTO users (email, name, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING ` + userColumns
	user, err := scanUser(r.pool.QueryRow(ctx, query, fields.Email, fields.Name, fields.PasswordHash, string(role)))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, shared.ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = Role(role)
	return &u, nil
}

var _ Repository = (*PGRepository)(nil)
