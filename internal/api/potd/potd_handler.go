package potd

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/lokeswarareddy/worst-passwords-api/internal/api"
	"github.com/lokeswarareddy/worst-passwords-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	SetPasswordOfTheDayHandler(w http.ResponseWriter, r *http.Request)
	GetPasswordOfTheDayHandler(w http.ResponseWriter, r *http.Request)
	UpdatePasswordOfTheDayHandler(w http.ResponseWriter, r *http.Request)
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

func (h *HandlerImpl) SetPasswordOfTheDayHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PotdHandler").Start(r.Context(), "SetPasswordOfTheDay")
	defer span.End()
	l := h.logger.With(slog.String("handler", "SetPasswordOfTheDayHandler"))

	var req types.SetPasswordOfTheDayRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, api.DecodeErrorMessage(err))
		return
	}

	record, err := h.service.SetPasswordOfTheDay(ctx, req)
	if err != nil {
		span.RecordError(err)
		if ve, ok := api.AsValidationError(err); ok {
			span.SetStatus(codes.Error, "Validation failed")
			api.ValidationErrorResponse(w, r, ve)
			return
		}
		l.ErrorContext(ctx, "Service failed to set password of the day", slog.Any("error", err))
		span.SetStatus(codes.Error, "Set failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Error setting password of the day")
		return
	}

	span.SetStatus(codes.Ok, "Password of the day set")
	api.WriteJSONResponse(w, r, http.StatusCreated, map[string]interface{}{
		"message":  "Password of the Day set successfully",
		"password": record,
	})
}

func (h *HandlerImpl) GetPasswordOfTheDayHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PotdHandler").Start(r.Context(), "GetPasswordOfTheDay")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetPasswordOfTheDayHandler"))

	record, err := h.service.GetPasswordOfTheDay(ctx)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, api.ErrNotFound) {
			span.SetStatus(codes.Error, "None set")
			api.ErrorResponse(w, r, http.StatusNotFound, "No password of the day set")
			return
		}
		l.ErrorContext(ctx, "Service failed to get password of the day", slog.Any("error", err))
		span.SetStatus(codes.Error, "Get failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Error fetching password of the day")
		return
	}

	span.SetStatus(codes.Ok, "Password of the day fetched")
	api.WriteJSONResponse(w, r, http.StatusOK, types.CurrentPasswordOfTheDayResponse{
		PasswordOfTheDay: record.Password,
		Username:         record.Username,
	})
}

func (h *HandlerImpl) UpdatePasswordOfTheDayHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PotdHandler").Start(r.Context(), "UpdatePasswordOfTheDay")
	defer span.End()
	l := h.logger.With(slog.String("handler", "UpdatePasswordOfTheDayHandler"))

	var req types.SetPasswordOfTheDayRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, api.DecodeErrorMessage(err))
		return
	}

	record, err := h.service.UpdatePasswordOfTheDay(ctx, req)
	if err != nil {
		span.RecordError(err)
		if ve, ok := api.AsValidationError(err); ok {
			span.SetStatus(codes.Error, "Validation failed")
			api.ValidationErrorResponse(w, r, ve)
			return
		}
		if errors.Is(err, api.ErrNotFound) {
			span.SetStatus(codes.Error, "None set")
			api.ErrorResponse(w, r, http.StatusNotFound, "Password of the day not found to update")
			return
		}
		l.ErrorContext(ctx, "Service failed to update password of the day", slog.Any("error", err))
		span.SetStatus(codes.Error, "Update failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Error updating password of the day")
		return
	}

	span.SetStatus(codes.Ok, "Password of the day updated")
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"message":  "Password of the Day updated successfully",
		"password": record,
	})
}
