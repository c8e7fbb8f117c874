package potd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lokeswarareddy/worst-passwords-api/internal/api"
	"github.com/lokeswarareddy/worst-passwords-api/internal/types"
)

// Ensure PostgresPotdRepo implements the Repository interface
var _ Repository = (*PostgresPotdRepo)(nil)

// Repository defines persistence for the password-of-the-day record.
type Repository interface {
	SetCurrent(ctx context.Context, record types.PasswordOfTheDay) error
	GetCurrent(ctx context.Context) (*types.PasswordOfTheDay, error)
	UpdateCurrent(ctx context.Context, password, username string) (*types.PasswordOfTheDay, error)
}

type PostgresPotdRepo struct {
	logger *slog.Logger
	pgpool api.DBPool
}

func NewPostgresPotdRepo(pgpool api.DBPool, logger *slog.Logger) *PostgresPotdRepo {
	return &PostgresPotdRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

// SetCurrent clears every existing current flag and inserts the new record
// flagged current, inside one transaction. No interleaving can observe
// zero or two current rows.
func (r *PostgresPotdRepo) SetCurrent(ctx context.Context, record types.PasswordOfTheDay) error {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE password_of_the_day SET is_current = false, updated_at = $1 WHERE is_current = true`,
		time.Now())
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to clear current flags", slog.Any("error", err))
		return fmt.Errorf("failed to clear current flags: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO password_of_the_day (id, password, username, is_current, created_at, updated_at)
         VALUES ($1, $2, $3, true, $4, $4)`,
		record.ID, record.Password, record.Username, record.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert password of the day", slog.Any("error", err))
		return fmt.Errorf("failed to insert password of the day: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetCurrent returns the most recently created current record.
func (r *PostgresPotdRepo) GetCurrent(ctx context.Context) (*types.PasswordOfTheDay, error) {
	query := `
        SELECT id, password, username, is_current, created_at, updated_at
        FROM password_of_the_day
        WHERE is_current = true
        ORDER BY created_at DESC
        LIMIT 1
    `
	var record types.PasswordOfTheDay
	err := r.pgpool.QueryRow(ctx, query).Scan(
		&record.ID, &record.Password, &record.Username, &record.IsCurrent, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no password of the day set: %w", api.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to get password of the day", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get password of the day: %w", err)
	}
	return &record, nil
}

// UpdateCurrent overwrites password and username of the current record
// without touching the flag.
func (r *PostgresPotdRepo) UpdateCurrent(ctx context.Context, password, username string) (*types.PasswordOfTheDay, error) {
	query := `
        UPDATE password_of_the_day
        SET password = $1, username = $2, updated_at = $3
        WHERE id = (
            SELECT id FROM password_of_the_day
            WHERE is_current = true
            ORDER BY created_at DESC
            LIMIT 1
        )
        RETURNING id, password, username, is_current, created_at, updated_at
    `
	var record types.PasswordOfTheDay
	err := r.pgpool.QueryRow(ctx, query, password, username, time.Now()).Scan(
		&record.ID, &record.Password, &record.Username, &record.IsCurrent, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no password of the day to update: %w", api.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to update password of the day", slog.Any("error", err))
		return nil, fmt.Errorf("failed to update password of the day: %w", err)
	}
	return &record, nil
}
