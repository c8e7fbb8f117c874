package entity

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lokeswarareddy/worst-passwords-api/internal/api"
	"github.com/lokeswarareddy/worst-passwords-api/internal/types"
)

type HandlerImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewHandlerImpl(repo Repository, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger: logger,
		repo:   repo,
	}
}

// GetUserEntitiesHandler returns the entities owned by one user.
func (h *HandlerImpl) GetUserEntitiesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EntityHandler").Start(r.Context(), "GetUserEntities")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetUserEntitiesHandler"))

	userIDStr := chi.URLParam(r, "userID")
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		span.SetStatus(codes.Error, "Invalid user id")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}
	span.SetAttributes(attribute.String("user.id", userID.String()))

	exists, err := h.repo.UserExists(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to check user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "User check failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !exists {
		span.SetStatus(codes.Error, "User not found")
		api.ErrorResponse(w, r, http.StatusNotFound, "User not found.")
		return
	}

	entities, err := h.repo.ListEntitiesByUser(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list entities", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "List failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if entities == nil {
		entities = []*types.Entity{}
	}

	span.SetStatus(codes.Ok, "Entities listed")
	api.WriteJSONResponse(w, r, http.StatusOK, entities)
}
