package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"kafkaportal/internal/platform/postgres"
	"kafkaportal/pkg/domain"
	"kafkaportal/pkg/platform/sentinel"
	txcontext "kafkaportal/pkg/platform/tx"
)

// PostgresUserStore persists users in the users table.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

const userColumns = `id, username, email, is_admin, is_active, created_at, last_login`

func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(user.ID), user.Username, user.Email, user.IsAdmin, user.IsActive, user.CreatedAt, user.LastLogin,
	)
	if postgres.IsUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE users SET email = $2, is_admin = $3, is_active = $4, last_login = $5
		WHERE id = $1`,
		uuid.UUID(user.ID), user.Email, user.IsAdmin, user.IsActive, user.LastLogin,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	row := txcontext.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(id))
	return scanUser(row)
}

func (s *PostgresUserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := txcontext.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u         domain.User
		id        uuid.UUID
		lastLogin sql.NullTime
	)
	err := row.Scan(&id, &u.Username, &u.Email, &u.IsAdmin, &u.IsActive, &u.CreatedAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = domain.UserID(id)
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}
