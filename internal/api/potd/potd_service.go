package potd

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lokeswarareddy/worst-passwords-api/internal/api"
	"github.com/lokeswarareddy/worst-passwords-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the password-of-the-day operations.
type Service interface {
	SetPasswordOfTheDay(ctx context.Context, req types.SetPasswordOfTheDayRequest) (*types.PasswordOfTheDay, error)
	GetPasswordOfTheDay(ctx context.Context) (*types.PasswordOfTheDay, error)
	UpdatePasswordOfTheDay(ctx context.Context, req types.SetPasswordOfTheDayRequest) (*types.PasswordOfTheDay, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewService(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

// SetPasswordOfTheDay replaces the current record: the previous one loses
// its flag and the new submission becomes current.
func (s *ServiceImpl) SetPasswordOfTheDay(ctx context.Context, req types.SetPasswordOfTheDayRequest) (*types.PasswordOfTheDay, error) {
	ctx, span := otel.Tracer("PotdService").Start(ctx, "SetPasswordOfTheDay")
	defer span.End()
	l := s.logger.With(slog.String("method", "SetPasswordOfTheDay"))

	if verrs := api.ValidateWeakPassword(req.Password); len(verrs) > 0 {
		span.SetStatus(codes.Error, "Validation failed")
		return nil, &api.ValidationError{Errors: verrs}
	}

	username := req.Username
	if username == "" {
		username = "Anonymous"
	}

	now := time.Now()
	record := types.PasswordOfTheDay{
		ID:        uuid.New(),
		Password:  req.Password,
		Username:  username,
		IsCurrent: true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.SetCurrent(ctx, record); err != nil {
		l.ErrorContext(ctx, "Failed to set password of the day", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Set failed")
		return nil, err
	}

	l.InfoContext(ctx, "Password of the day set", slog.String("recordID", record.ID.String()))
	span.SetAttributes(attribute.String("record.id", record.ID.String()))
	span.SetStatus(codes.Ok, "Password of the day set")
	return &record, nil
}

func (s *ServiceImpl) GetPasswordOfTheDay(ctx context.Context) (*types.PasswordOfTheDay, error) {
	ctx, span := otel.Tracer("PotdService").Start(ctx, "GetPasswordOfTheDay")
	defer span.End()

	record, err := s.repo.GetCurrent(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Get failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Password of the day fetched")
	return record, nil
}

// UpdatePasswordOfTheDay overwrites the current record in place.
func (s *ServiceImpl) UpdatePasswordOfTheDay(ctx context.Context, req types.SetPasswordOfTheDayRequest) (*types.PasswordOfTheDay, error) {
	ctx, span := otel.Tracer("PotdService").Start(ctx, "UpdatePasswordOfTheDay")
	defer span.End()

	if verrs := api.ValidateWeakPassword(req.Password); len(verrs) > 0 {
		span.SetStatus(codes.Error, "Validation failed")
		return nil, &api.ValidationError{Errors: verrs}
	}

	username := req.Username
	if username == "" {
		username = "Anonymous"
	}

	record, err := s.repo.UpdateCurrent(ctx, req.Password, username)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Update failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Password of the day updated")
	return record, nil
}
