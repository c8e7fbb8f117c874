package password

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lokeswarareddy/worst-passwords-api/app/observability/metrics"
	"github.com/lokeswarareddy/worst-passwords-api/internal/api"
	"github.com/lokeswarareddy/worst-passwords-api/internal/api/auth"
	"github.com/lokeswarareddy/worst-passwords-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	CreatePasswordHandler(w http.ResponseWriter, r *http.Request)
	ListPasswordsHandler(w http.ResponseWriter, r *http.Request)
	ListUserPasswordsHandler(w http.ResponseWriter, r *http.Request)
	GetPasswordHandler(w http.ResponseWriter, r *http.Request)
	GetRandomPasswordHandler(w http.ResponseWriter, r *http.Request)
	LeaderboardHandler(w http.ResponseWriter, r *http.Request)
	UpdatePasswordHandler(w http.ResponseWriter, r *http.Request)
	DeletePasswordHandler(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	logger  *slog.Logger
	service Service
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger:  logger,
		service: service,
	}
}

func (h *HandlerImpl) CreatePasswordHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PasswordHandler").Start(r.Context(), "CreatePassword")
	defer span.End()
	l := h.logger.With(slog.String("handler", "CreatePasswordHandler"))
	start := time.Now()

	owner, ok := auth.GetUserFromContext(ctx)
	if !ok {
		span.SetStatus(codes.Error, "Unauthenticated")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req types.SubmitPasswordRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, api.DecodeErrorMessage(err))
		return
	}

	record, err := h.service.SubmitPassword(ctx, owner, req)
	if err != nil {
		span.RecordError(err)
		if ve, ok := api.AsValidationError(err); ok {
			span.SetStatus(codes.Error, "Validation failed")
			api.ValidationErrorResponse(w, r, ve)
			return
		}
		l.ErrorContext(ctx, "Service failed to store submission", slog.Any("error", err))
		span.SetStatus(codes.Error, "Submission failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Error adding password")
		return
	}

	if m := metrics.Get(); m != nil {
		m.SubmissionsTotal.Add(ctx, 1)
		m.SubmissionDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}

	span.SetAttributes(attribute.String("record.id", record.ID.String()))
	span.SetStatus(codes.Ok, "Submission stored")
	api.WriteJSONResponse(w, r, http.StatusCreated, map[string]interface{}{
		"message":  "Password added successfully",
		"password": record,
	})
}

func (h *HandlerImpl) ListPasswordsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PasswordHandler").Start(r.Context(), "ListPasswords")
	defer span.End()
	l := h.logger.With(slog.String("handler", "ListPasswordsHandler"))

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := h.service.ListPasswords(ctx, page, limit)
	if err != nil {
		l.ErrorContext(ctx, "Service failed to list passwords", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "List failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Error fetching passwords")
		return
	}
	if records == nil {
		records = []*types.PasswordRecord{}
	}

	span.SetStatus(codes.Ok, "Passwords listed")
	api.WriteJSONResponse(w, r, http.StatusOK, records)
}

func (h *HandlerImpl) ListUserPasswordsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PasswordHandler").Start(r.Context(), "ListUserPasswords")
	defer span.End()
	l := h.logger.With(slog.String("handler", "ListUserPasswordsHandler"))

	userIDStr := chi.URLParam(r, "userID")
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		span.SetStatus(codes.Error, "Invalid user id")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}
	span.SetAttributes(attribute.String("user.id", userID.String()))

	records, err := h.service.ListPasswordsByUser(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Service failed to list user passwords", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "List failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Error fetching passwords")
		return
	}
	if records == nil {
		records = []*types.PasswordRecord{}
	}

	span.SetStatus(codes.Ok, "User passwords listed")
	api.WriteJSONResponse(w, r, http.StatusOK, records)
}

func (h *HandlerImpl) GetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PasswordHandler").Start(r.Context(), "GetPassword")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetPasswordHandler"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		span.SetStatus(codes.Error, "Invalid id")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid password ID format")
		return
	}

	record, err := h.service.GetPassword(ctx, id)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, api.ErrNotFound) {
			span.SetStatus(codes.Error, "Not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "Password not found")
			return
		}
		l.ErrorContext(ctx, "Service failed to get password", slog.Any("error", err))
		span.SetStatus(codes.Error, "Get failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Error fetching password")
		return
	}

	span.SetStatus(codes.Ok, "Password fetched")
	api.WriteJSONResponse(w, r, http.StatusOK, record)
}

func (h *HandlerImpl) GetRandomPasswordHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PasswordHandler").Start(r.Context(), "GetRandomPassword")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetRandomPasswordHandler"))

	randomPassword, err := h.service.GetRandomPassword(ctx)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, api.ErrNotFound) {
			span.SetStatus(codes.Error, "Store empty")
			api.ErrorResponse(w, r, http.StatusNotFound, "No passwords found in the database")
			return
		}
		l.ErrorContext(ctx, "Service failed to get random password", slog.Any("error", err))
		span.SetStatus(codes.Error, "Random fetch failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Error fetching random password")
		return
	}

	span.SetStatus(codes.Ok, "Random password fetched")
	api.WriteJSONResponse(w, r, http.StatusOK, types.RandomPasswordResponse{RandomPassword: randomPassword})
}

func (h *HandlerImpl) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PasswordHandler").Start(r.Context(), "Leaderboard")
	defer span.End()
	l := h.logger.With(slog.String("handler", "LeaderboardHandler"))

	entries, err := h.service.Leaderboard(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Service failed to compute leaderboard", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Leaderboard failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Error computing leaderboard")
		return
	}

	if m := metrics.Get(); m != nil {
		m.LeaderboardRequestsTotal.Add(ctx, 1)
	}

	span.SetStatus(codes.Ok, "Leaderboard computed")
	api.WriteJSONResponse(w, r, http.StatusOK, entries)
}

func (h *HandlerImpl) UpdatePasswordHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PasswordHandler").Start(r.Context(), "UpdatePassword")
	defer span.End()
	l := h.logger.With(slog.String("handler", "UpdatePasswordHandler"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		span.SetStatus(codes.Error, "Invalid id")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid password ID format")
		return
	}
	span.SetAttributes(attribute.String("record.id", id.String()))

	var req types.SubmitPasswordRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, api.DecodeErrorMessage(err))
		return
	}

	record, err := h.service.UpdatePassword(ctx, id, req)
	if err != nil {
		span.RecordError(err)
		if ve, ok := api.AsValidationError(err); ok {
			span.SetStatus(codes.Error, "Validation failed")
			api.ValidationErrorResponse(w, r, ve)
			return
		}
		if errors.Is(err, api.ErrNotFound) {
			span.SetStatus(codes.Error, "Not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "Password not found")
			return
		}
		l.ErrorContext(ctx, "Service failed to update password", slog.Any("error", err))
		span.SetStatus(codes.Error, "Update failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Error updating password")
		return
	}

	span.SetStatus(codes.Ok, "Password updated")
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"message":         "Password updated successfully",
		"updatedPassword": record,
	})
}

func (h *HandlerImpl) DeletePasswordHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PasswordHandler").Start(r.Context(), "DeletePassword")
	defer span.End()
	l := h.logger.With(slog.String("handler", "DeletePasswordHandler"))

	caller, ok := auth.GetUserFromContext(ctx)
	if !ok {
		span.SetStatus(codes.Error, "Unauthenticated")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		span.SetStatus(codes.Error, "Invalid id")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid password ID format")
		return
	}
	span.SetAttributes(attribute.String("record.id", id.String()))

	err = h.service.DeletePassword(ctx, id, caller)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, api.ErrNotFound) {
			span.SetStatus(codes.Error, "Not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "Password not found")
			return
		}
		if errors.Is(err, api.ErrForbidden) {
			span.SetStatus(codes.Error, "Not owner")
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Not authorized to delete this password.")
			return
		}
		l.ErrorContext(ctx, "Service failed to delete password", slog.Any("error", err))
		span.SetStatus(codes.Error, "Delete failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Error deleting password")
		return
	}

	span.SetStatus(codes.Ok, "Password deleted")
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"message": "Password deleted successfully"})
}
