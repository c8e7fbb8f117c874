package password

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lokeswarareddy/worst-passwords-api/config"
	"github.com/lokeswarareddy/worst-passwords-api/internal/api"
	"github.com/lokeswarareddy/worst-passwords-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the weak-password submission and aggregation operations.
type Service interface {
	SubmitPassword(ctx context.Context, owner *types.User, req types.SubmitPasswordRequest) (*types.PasswordRecord, error)
	ListPasswords(ctx context.Context, page, limit int) ([]*types.PasswordRecord, error)
	ListPasswordsByUser(ctx context.Context, userID uuid.UUID) ([]*types.PasswordRecord, error)
	GetPassword(ctx context.Context, id uuid.UUID) (*types.PasswordRecord, error)
	GetRandomPassword(ctx context.Context) (string, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, req types.SubmitPasswordRequest) (*types.PasswordRecord, error)
	DeletePassword(ctx context.Context, id uuid.UUID, caller *types.User) error
	Leaderboard(ctx context.Context) ([]types.LeaderboardEntry, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	cfg    *config.Config
	repo   Repository
}

func NewService(repo Repository, cfg *config.Config, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		cfg:    cfg,
		repo:   repo,
	}
}

// SubmitPassword validates and persists a new weak-password submission on
// behalf of the authenticated owner.
func (s *ServiceImpl) SubmitPassword(ctx context.Context, owner *types.User, req types.SubmitPasswordRequest) (*types.PasswordRecord, error) {
	ctx, span := otel.Tracer("PasswordService").Start(ctx, "SubmitPassword", trace.WithAttributes(
		attribute.String("user.id", owner.ID.String()),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "SubmitPassword"), slog.String("userID", owner.ID.String()))

	if verrs := api.ValidateWeakPassword(req.Password); len(verrs) > 0 {
		span.SetStatus(codes.Error, "Validation failed")
		return nil, &api.ValidationError{Errors: verrs}
	}

	username := req.Username
	if username == "" {
		username = "Anonymous"
	}

	ownerID := owner.ID
	record := types.PasswordRecord{
		ID:        uuid.New(),
		Password:  req.Password,
		Site:      req.Site,
		Username:  username,
		CreatedBy: &ownerID,
		OwnerName: &owner.Username,
		CreatedAt: time.Now(),
	}

	if err := s.repo.CreatePassword(ctx, record); err != nil {
		l.ErrorContext(ctx, "Failed to persist submission", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to persist submission")
		return nil, err
	}

	l.InfoContext(ctx, "Password submission stored", slog.String("recordID", record.ID.String()))
	span.SetStatus(codes.Ok, "Submission stored")
	return &record, nil
}

// ListPasswords returns one page of submissions, newest first. Page is
// 1-based; limit is clamped to the configured maximum.
func (s *ServiceImpl) ListPasswords(ctx context.Context, page, limit int) ([]*types.PasswordRecord, error) {
	ctx, span := otel.Tracer("PasswordService").Start(ctx, "ListPasswords")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.cfg.API.DefaultPageSize
	}
	if limit > s.cfg.API.MaxPageSize {
		limit = s.cfg.API.MaxPageSize
	}
	offset := (page - 1) * limit
	span.SetAttributes(attribute.Int("page", page), attribute.Int("limit", limit))

	records, err := s.repo.ListPasswords(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list passwords")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Passwords listed")
	return records, nil
}

func (s *ServiceImpl) ListPasswordsByUser(ctx context.Context, userID uuid.UUID) ([]*types.PasswordRecord, error) {
	return s.repo.ListPasswordsByUser(ctx, userID)
}

func (s *ServiceImpl) GetPassword(ctx context.Context, id uuid.UUID) (*types.PasswordRecord, error) {
	return s.repo.GetPassword(ctx, id)
}

// GetRandomPassword picks a uniformly random record by counting and then
// fetching at a random offset. The set can shift between the two reads;
// that race is benign since the result is only a best-effort preview.
func (s *ServiceImpl) GetRandomPassword(ctx context.Context) (string, error) {
	ctx, span := otel.Tracer("PasswordService").Start(ctx, "GetRandomPassword")
	defer span.End()

	count, err := s.repo.CountPasswords(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Count failed")
		return "", err
	}
	if count == 0 {
		span.SetStatus(codes.Error, "Store empty")
		return "", fmt.Errorf("no passwords in the database: %w", api.ErrNotFound)
	}

	offset := rand.Int63n(count)
	record, err := s.repo.GetPasswordAtOffset(ctx, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Fetch at offset failed")
		return "", err
	}

	span.SetStatus(codes.Ok, "Random password selected")
	return record.Password, nil
}

// UpdatePassword replaces password/site/username wholesale. Validation is
// identical to submission.
func (s *ServiceImpl) UpdatePassword(ctx context.Context, id uuid.UUID, req types.SubmitPasswordRequest) (*types.PasswordRecord, error) {
	ctx, span := otel.Tracer("PasswordService").Start(ctx, "UpdatePassword", trace.WithAttributes(
		attribute.String("record.id", id.String()),
	))
	defer span.End()

	if verrs := api.ValidateWeakPassword(req.Password); len(verrs) > 0 {
		span.SetStatus(codes.Error, "Validation failed")
		return nil, &api.ValidationError{Errors: verrs}
	}

	username := req.Username
	if username == "" {
		username = "Anonymous"
	}

	record, err := s.repo.UpdatePassword(ctx, id, req.Password, req.Site, username)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Update failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Password updated")
	return record, nil
}

// DeletePassword removes a record. Only the owning user may delete it.
func (s *ServiceImpl) DeletePassword(ctx context.Context, id uuid.UUID, caller *types.User) error {
	ctx, span := otel.Tracer("PasswordService").Start(ctx, "DeletePassword", trace.WithAttributes(
		attribute.String("record.id", id.String()),
		attribute.String("user.id", caller.ID.String()),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "DeletePassword"), slog.String("recordID", id.String()))

	record, err := s.repo.GetPassword(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Record not found")
		return err
	}

	if record.CreatedBy == nil || *record.CreatedBy != caller.ID {
		l.WarnContext(ctx, "Delete attempt by non-owner", slog.String("callerID", caller.ID.String()))
		span.SetStatus(codes.Error, "Not owner")
		return fmt.Errorf("caller does not own record: %w", api.ErrForbidden)
	}

	if err := s.repo.DeletePassword(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Delete failed")
		return err
	}

	l.InfoContext(ctx, "Password record deleted")
	span.SetStatus(codes.Ok, "Password deleted")
	return nil
}

// Leaderboard aggregates every stored submission into {password, count}
// pairs, most common first. Recomputed on every read.
func (s *ServiceImpl) Leaderboard(ctx context.Context) ([]types.LeaderboardEntry, error) {
	ctx, span := otel.Tracer("PasswordService").Start(ctx, "Leaderboard")
	defer span.End()

	records, err := s.repo.ListAllPasswords(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load records")
		return nil, err
	}

	entries := AggregateLeaderboard(records)
	span.SetAttributes(attribute.Int("leaderboard.size", len(entries)))
	span.SetStatus(codes.Ok, "Leaderboard computed")
	return entries, nil
}

// AggregateLeaderboard groups records by exact password text and counts
// occurrences, sorted descending by count. Ties keep first-seen order, so
// the result is deterministic for a given record sequence.
func AggregateLeaderboard(records []*types.PasswordRecord) []types.LeaderboardEntry {
	index := make(map[string]int, len(records))
	entries := make([]types.LeaderboardEntry, 0, len(records))

	for _, rec := range records {
		if i, seen := index[rec.Password]; seen {
			entries[i].Count++
			continue
		}
		index[rec.Password] = len(entries)
		entries = append(entries, types.LeaderboardEntry{Password: rec.Password, Count: 1})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}
