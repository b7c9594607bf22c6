package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores users in the relational database.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("users: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const userColumns = `id, name, email, hashed_password, is_admin, email_verified_at,
	verification_code, verification_code_expires_at,
	password_reset_code, password_reset_code_expires_at,
	created_at, updated_at`

// Create inserts a new row. Duplicate emails map to ErrEmailTaken.
func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	query := `
		INSERT INTO users (id, name, email, hashed_password, is_admin,
			verification_code, verification_code_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		u.ID,
		u.Name,
		u.Email,
		u.HashedPassword,
		u.IsAdmin,
		u.VerificationCode,
		u.VerificationCodeExpiresAt,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("users: insert failed: %w", err)
	}
	return nil
}

// GetByID fetches an active user by ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 AND deleted_at IS NULL`, userColumns)
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail fetches an active user by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1 AND deleted_at IS NULL`, userColumns)
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

// MarkVerified records email verification and clears the pending code.
func (r *PostgresRepository) MarkVerified(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET email_verified_at = now(), verification_code = NULL,
			verification_code_expires_at = NULL, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.exec(ctx, query, id)
}

// SetVerificationCode stores a pending email verification code.
func (r *PostgresRepository) SetVerificationCode(ctx context.Context, id, code string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET verification_code = $2, verification_code_expires_at = $3, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.exec(ctx, query, id, code, expiresAt)
}

// SetResetCode stores a pending password reset code.
func (r *PostgresRepository) SetResetCode(ctx context.Context, id, code string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET password_reset_code = $2, password_reset_code_expires_at = $3, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.exec(ctx, query, id, code, expiresAt)
}

// UpdatePassword replaces the password hash and clears any reset code.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	query := `
		UPDATE users
		SET hashed_password = $2, password_reset_code = NULL,
			password_reset_code_expires_at = NULL, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.exec(ctx, query, id, hashedPassword)
}

// SoftDelete marks the user deleted without removing the row.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE users SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`
	return r.exec(ctx, query, id)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("users: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.HashedPassword,
		&u.IsAdmin,
		&u.EmailVerifiedAt,
		&u.VerificationCode,
		&u.VerificationCodeExpiresAt,
		&u.PasswordResetCode,
		&u.PasswordResetCodeExpiresAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: select failed: %w", err)
	}
	return &u, nil
}
