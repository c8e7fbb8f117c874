package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lokeswarareddy/worst-passwords-api/internal/api"
	"github.com/lokeswarareddy/worst-passwords-api/internal/types"
)

// Ensure PostgresAuthRepo implements the AuthRepo interface
var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo defines the persistence operations behind the auth service.
type AuthRepo interface {
	CreateUser(ctx context.Context, username, email, hashedPassword string) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	ListUsers(ctx context.Context) ([]*types.User, error)
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, token string) (uuid.UUID, time.Time, *time.Time, error)
	InvalidateRefreshToken(ctx context.Context, token string) error
	InvalidateAllUserRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool api.DBPool
}

func NewPostgresAuthRepo(pgpool api.DBPool, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

// CreateUser inserts a new user and returns the stored row.
// Duplicate emails map to api.ErrConflict.
func (r *PostgresAuthRepo) CreateUser(ctx context.Context, username, email, hashedPassword string) (*types.User, error) {
	query := `
        INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $5)
        RETURNING id, username, email, role, created_at, updated_at
    `
	var user types.User
	err := r.pgpool.QueryRow(ctx, query, uuid.New(), username, email, hashedPassword, time.Now()).Scan(
		&user.ID, &user.Username, &user.Email, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("email already registered: %w", api.ErrConflict)
		}
		r.logger.ErrorContext(ctx, "Failed to insert user", slog.Any("error", err))
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	query := `
        SELECT id, username, email, password_hash, role, created_at, updated_at
        FROM users
        WHERE email = $1
    `
	var user types.User
	err := r.pgpool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", api.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to get user by email", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	query := `
        SELECT id, username, email, role, created_at, updated_at
        FROM users
        WHERE id = $1
    `
	var user types.User
	err := r.pgpool.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.Username, &user.Email, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", api.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to get user by id", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// ListUsers returns every account without credential hashes.
func (r *PostgresAuthRepo) ListUsers(ctx context.Context) ([]*types.User, error) {
	query := `
        SELECT id, username, email, role, created_at, updated_at
        FROM users
        ORDER BY created_at DESC
    `
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list users", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*types.User
	for rows.Next() {
		var user types.User
		err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.Role, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

func (r *PostgresAuthRepo) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	_, err := r.pgpool.Exec(ctx,
		`INSERT INTO refresh_tokens (token, user_id, expires_at) VALUES ($1, $2, $3)`,
		token, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("store refresh token: db insert failed: %w", err)
	}
	return nil
}

func (r *PostgresAuthRepo) GetRefreshToken(ctx context.Context, token string) (uuid.UUID, time.Time, *time.Time, error) {
	var userID uuid.UUID
	var expiresAt time.Time
	var revokedAt *time.Time

	err := r.pgpool.QueryRow(ctx,
		`SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token = $1`,
		token).Scan(&userID, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, time.Time{}, nil, fmt.Errorf("invalid refresh token: %w", api.ErrUnauthenticated)
		}
		return uuid.Nil, time.Time{}, nil, fmt.Errorf("get refresh token: query failed: %w", err)
	}
	return userID, expiresAt, revokedAt, nil
}

func (r *PostgresAuthRepo) InvalidateRefreshToken(ctx context.Context, token string) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = $1 WHERE token = $2 AND revoked_at IS NULL`,
		time.Now(), token)
	if err != nil {
		return fmt.Errorf("invalidate refresh token: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Already revoked or unknown token, not an error for logout
		r.logger.Warn("No refresh token found or already revoked")
	}
	return nil
}

func (r *PostgresAuthRepo) InvalidateAllUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pgpool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = $1 WHERE user_id = $2 AND revoked_at IS NULL`,
		time.Now(), userID)
	if err != nil {
		return fmt.Errorf("invalidate all tokens: db update failed: %w", err)
	}
	return nil
}
