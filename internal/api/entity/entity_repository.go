package entity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lokeswarareddy/worst-passwords-api/internal/api"
	"github.com/lokeswarareddy/worst-passwords-api/internal/types"
)

// Ensure PostgresEntityRepo implements the Repository interface
var _ Repository = (*PostgresEntityRepo)(nil)

// Repository defines reads over the seeded entity table.
type Repository interface {
	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)
	ListEntitiesByUser(ctx context.Context, userID uuid.UUID) ([]*types.Entity, error)
}

type PostgresEntityRepo struct {
	logger *slog.Logger
	pgpool api.DBPool
}

func NewPostgresEntityRepo(pgpool api.DBPool, logger *slog.Logger) *PostgresEntityRepo {
	return &PostgresEntityRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresEntityRepo) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var id uuid.UUID
	err := r.pgpool.QueryRow(ctx, `SELECT id FROM users WHERE id = $1`, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return true, nil
}

// ListEntitiesByUser returns the user's entities joined with the owner name.
func (r *PostgresEntityRepo) ListEntitiesByUser(ctx context.Context, userID uuid.UUID) ([]*types.Entity, error) {
	query := `
        SELECT e.id, e.title, e.description, e.created_by, u.username
        FROM entities e
        JOIN users u ON u.id = e.created_by
        WHERE e.created_by = $1
        ORDER BY e.title ASC
    `
	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list entities", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	var entities []*types.Entity
	for rows.Next() {
		var e types.Entity
		err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.CreatedBy, &e.OwnerName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity row: %w", err)
		}
		entities = append(entities, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entity rows: %w", err)
	}
	return entities, nil
}
