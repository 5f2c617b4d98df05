package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/weatherhub/internal/domain/user"
)

var (
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUser covers both the pre-insert existence check and
	// the unique constraint firing on insert. The constraint is the
	// real backstop: two concurrent registrations can both pass the
	// check, only one insert wins.
	ErrDuplicateUser = errors.New("email or username already taken")
)

const uniqueViolation = "23505"

type UsersRepo struct {
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{pool: pool}
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	var u user.User

	err := r.pool.QueryRow(
		ctx,
		`SELECT id, email, username, password_hash, created_at
         FROM users
         WHERE username = $1`,
		username,
	).Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 OR username = $2)`,
		email, username,
	).Scan(&exists)

	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *UsersRepo) Create(ctx context.Context, email, username, passwordHash string) (user.User, error) {
	var u user.User

	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO users (email, username, password_hash)
         VALUES ($1, $2, $3)
         RETURNING id, email, username, password_hash, created_at`,
		email, username, passwordHash,
	).Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.User{}, ErrDuplicateUser
		}

		return user.User{}, err
	}

	return u, nil
}
