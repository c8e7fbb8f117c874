package password

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/lokeswarareddy/worst-passwords-api/app/observability/metrics"
	"github.com/lokeswarareddy/worst-passwords-api/internal/api"
	"github.com/lokeswarareddy/worst-passwords-api/internal/types"
)

// Ensure PostgresPasswordRepo implements the Repository interface
var _ Repository = (*PostgresPasswordRepo)(nil)

// Repository defines the persistence operations over weak-password records.
type Repository interface {
	CreatePassword(ctx context.Context, record types.PasswordRecord) error
	ListPasswords(ctx context.Context, limit, offset int) ([]*types.PasswordRecord, error)
	ListAllPasswords(ctx context.Context) ([]*types.PasswordRecord, error)
	ListPasswordsByUser(ctx context.Context, userID uuid.UUID) ([]*types.PasswordRecord, error)
	GetPassword(ctx context.Context, id uuid.UUID) (*types.PasswordRecord, error)
	CountPasswords(ctx context.Context) (int64, error)
	GetPasswordAtOffset(ctx context.Context, offset int64) (*types.PasswordRecord, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, password, site, username string) (*types.PasswordRecord, error)
	DeletePassword(ctx context.Context, id uuid.UUID) error
}

type PostgresPasswordRepo struct {
	logger *slog.Logger
	pgpool api.DBPool
}

func NewPostgresPasswordRepo(pgpool api.DBPool, logger *slog.Logger) *PostgresPasswordRepo {
	return &PostgresPasswordRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

// observeQuery records query duration and errors when metrics are wired.
func observeQuery(ctx context.Context, query string, start time.Time, err error) {
	m := metrics.Get()
	if m == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("query", query))
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}

const passwordColumns = `
        p.id, p.password, p.site, p.username, p.created_by, u.username AS owner_name, p.created_at
`

func scanPasswordRow(row pgx.Row) (*types.PasswordRecord, error) {
	var rec types.PasswordRecord
	err := row.Scan(&rec.ID, &rec.Password, &rec.Site, &rec.Username, &rec.CreatedBy, &rec.OwnerName, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreatePassword inserts a new weak-password record.
func (r *PostgresPasswordRepo) CreatePassword(ctx context.Context, record types.PasswordRecord) error {
	start := time.Now()
	query := `
        INSERT INTO passwords (id, password, site, username, created_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.pgpool.Exec(ctx, query,
		record.ID, record.Password, record.Site, record.Username, record.CreatedBy, record.CreatedAt,
	)
	observeQuery(ctx, "create_password", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create password record", slog.Any("error", err))
		return fmt.Errorf("failed to create password record: %w", err)
	}
	return nil
}

// ListPasswords returns a page of records, newest first, joined with the
// owner display name where one exists.
func (r *PostgresPasswordRepo) ListPasswords(ctx context.Context, limit, offset int) ([]*types.PasswordRecord, error) {
	start := time.Now()
	query := `
        SELECT ` + passwordColumns + `
        FROM passwords p
        LEFT JOIN users u ON u.id = p.created_by
        ORDER BY p.created_at DESC
        LIMIT $1 OFFSET $2
    `
	rows, err := r.pgpool.Query(ctx, query, limit, offset)
	observeQuery(ctx, "list_passwords", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list passwords", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list passwords: %w", err)
	}
	defer rows.Close()

	return collectPasswordRows(rows)
}

// ListAllPasswords returns every record in first-seen order. Feeds the
// leaderboard aggregation, which needs insertion order for tie-breaks.
func (r *PostgresPasswordRepo) ListAllPasswords(ctx context.Context) ([]*types.PasswordRecord, error) {
	start := time.Now()
	query := `
        SELECT ` + passwordColumns + `
        FROM passwords p
        LEFT JOIN users u ON u.id = p.created_by
        ORDER BY p.created_at ASC
    `
	rows, err := r.pgpool.Query(ctx, query)
	observeQuery(ctx, "list_all_passwords", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list all passwords", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list all passwords: %w", err)
	}
	defer rows.Close()

	return collectPasswordRows(rows)
}

func (r *PostgresPasswordRepo) ListPasswordsByUser(ctx context.Context, userID uuid.UUID) ([]*types.PasswordRecord, error) {
	start := time.Now()
	query := `
        SELECT ` + passwordColumns + `
        FROM passwords p
        LEFT JOIN users u ON u.id = p.created_by
        WHERE p.created_by = $1
        ORDER BY p.created_at DESC
    `
	rows, err := r.pgpool.Query(ctx, query, userID)
	observeQuery(ctx, "list_passwords_by_user", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list passwords by user", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list passwords by user: %w", err)
	}
	defer rows.Close()

	return collectPasswordRows(rows)
}

func (r *PostgresPasswordRepo) GetPassword(ctx context.Context, id uuid.UUID) (*types.PasswordRecord, error) {
	start := time.Now()
	query := `
        SELECT ` + passwordColumns + `
        FROM passwords p
        LEFT JOIN users u ON u.id = p.created_by
        WHERE p.id = $1
    `
	rec, err := scanPasswordRow(r.pgpool.QueryRow(ctx, query, id))
	observeQuery(ctx, "get_password", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("password not found: %w", api.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to get password", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get password: %w", err)
	}
	return rec, nil
}

func (r *PostgresPasswordRepo) CountPasswords(ctx context.Context) (int64, error) {
	start := time.Now()
	var count int64
	err := r.pgpool.QueryRow(ctx, `SELECT COUNT(*) FROM passwords`).Scan(&count)
	observeQuery(ctx, "count_passwords", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to count passwords", slog.Any("error", err))
		return 0, fmt.Errorf("failed to count passwords: %w", err)
	}
	return count, nil
}

// GetPasswordAtOffset returns the record at a stable offset into the set.
// The set can shift between a count and this fetch; callers treat a miss
// as not found.
func (r *PostgresPasswordRepo) GetPasswordAtOffset(ctx context.Context, offset int64) (*types.PasswordRecord, error) {
	start := time.Now()
	query := `
        SELECT ` + passwordColumns + `
        FROM passwords p
        LEFT JOIN users u ON u.id = p.created_by
        ORDER BY p.created_at ASC
        LIMIT 1 OFFSET $1
    `
	rec, err := scanPasswordRow(r.pgpool.QueryRow(ctx, query, offset))
	observeQuery(ctx, "get_password_at_offset", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no password at offset: %w", api.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to get password at offset", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get password at offset: %w", err)
	}
	return rec, nil
}

// UpdatePassword replaces password, site and username wholesale by id.
func (r *PostgresPasswordRepo) UpdatePassword(ctx context.Context, id uuid.UUID, password, site, username string) (*types.PasswordRecord, error) {
	start := time.Now()
	query := `
        UPDATE passwords
        SET password = $2, site = $3, username = $4
        WHERE id = $1
        RETURNING id, password, site, username, created_by, created_at
    `
	var rec types.PasswordRecord
	err := r.pgpool.QueryRow(ctx, query, id, password, site, username).Scan(
		&rec.ID, &rec.Password, &rec.Site, &rec.Username, &rec.CreatedBy, &rec.CreatedAt,
	)
	observeQuery(ctx, "update_password", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("password not found: %w", api.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to update password", slog.Any("error", err))
		return nil, fmt.Errorf("failed to update password: %w", err)
	}
	return &rec, nil
}

func (r *PostgresPasswordRepo) DeletePassword(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM passwords WHERE id = $1`, id)
	observeQuery(ctx, "delete_password", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete password", slog.Any("error", err))
		return fmt.Errorf("failed to delete password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("password not found: %w", api.ErrNotFound)
	}
	return nil
}

func collectPasswordRows(rows pgx.Rows) ([]*types.PasswordRecord, error) {
	var records []*types.PasswordRecord
	for rows.Next() {
		rec, err := scanPasswordRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan password row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating password rows: %w", err)
	}
	return records, nil
}
