package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"notes-api/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
// Las busquedas sin resultado devuelven pgx.ErrNoRows.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (domain.User, error)
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (domain.User, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	if err := ValidateUser(user, time.Now().UTC()); err != nil {
		return err
	}
	const query = `
		INSERT INTO users (id, name, email, date_of_birth, password_hash, is_email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.DateOfBirth,
		user.PasswordHash,
		user.IsEmailVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
		SELECT id, name, email, date_of_birth, is_email_verified, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var u domain.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.DateOfBirth,
		&u.IsEmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// GetByEmail incluye el hash de password; solo debe usarse para autenticar.
func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `
		SELECT id, name, email, date_of_birth, password_hash, is_email_verified, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1)
	`
	var u domain.User
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.DateOfBirth,
		&u.PasswordHash,
		&u.IsEmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *PgUserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, tokenHash, expiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (domain.User, error) {
	const query = `
		SELECT id, name, email, date_of_birth, is_email_verified, reset_token_hash, reset_token_expires_at, created_at, updated_at
		FROM users
		WHERE reset_token_hash = $1 AND reset_token_expires_at > $2
	`
	var (
		u         domain.User
		hash      *string
		expiresAt *time.Time
	)
	err := r.pool.QueryRow(ctx, query, tokenHash, now).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.DateOfBirth,
		&u.IsEmailVerified,
		&hash,
		&expiresAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	if hash != nil {
		u.ResetTokenHash = *hash
	}
	u.ResetTokenExpiresAt = expiresAt
	return u, nil
}

// ConsumeResetToken cambia el password y limpia el token en una sola sentencia,
// de modo que dos canjes concurrentes del mismo token no pueden ganar ambos.
func (r *PgUserRepository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (domain.User, error) {
	if passwordHash == "" {
		return domain.User{}, &ValidationError{Fields: []FieldViolation{{Field: "password", Message: "Password is required"}}}
	}
	const query = `
		UPDATE users
		SET password_hash = $3,
		    reset_token_hash = NULL,
		    reset_token_expires_at = NULL,
		    updated_at = $2
		WHERE reset_token_hash = $1 AND reset_token_expires_at > $2
		RETURNING id, name, email, date_of_birth, is_email_verified, created_at, updated_at
	`
	var u domain.User
	err := r.pool.QueryRow(ctx, query, tokenHash, now, passwordHash).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.DateOfBirth,
		&u.IsEmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}
	return u, err
}
