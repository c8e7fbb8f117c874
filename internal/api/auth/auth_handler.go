package auth

import (
	"errors"
	"log/slog"
	"net/http"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lokeswarareddy/worst-passwords-api/internal/api"
	"github.com/lokeswarareddy/worst-passwords-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	SignupHandler(w http.ResponseWriter, r *http.Request)
	LoginHandler(w http.ResponseWriter, r *http.Request)
	RefreshHandler(w http.ResponseWriter, r *http.Request)
	LogoutHandler(w http.ResponseWriter, r *http.Request)
	ListUsersHandler(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	logger    *slog.Logger
	service   AuthService
	userCache *gocache.Cache
}

func NewHandlerImpl(service AuthService, logger *slog.Logger, userCache *gocache.Cache) *HandlerImpl {
	return &HandlerImpl{
		logger:    logger,
		service:   service,
		userCache: userCache,
	}
}

func (h *HandlerImpl) SignupHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Signup")
	defer span.End()
	l := h.logger.With(slog.String("handler", "SignupHandler"))

	var req types.SignupRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	span.SetAttributes(attribute.String("user.email", req.Email))

	resp, err := h.service.Signup(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		span.RecordError(err)
		if ve, ok := api.AsValidationError(err); ok {
			span.SetStatus(codes.Error, "Validation failed")
			api.ValidationErrorResponse(w, r, ve)
			return
		}
		if errors.Is(err, api.ErrConflict) {
			span.SetStatus(codes.Error, "Email already registered")
			api.ErrorResponse(w, r, http.StatusConflict, "Email already registered")
			return
		}
		l.ErrorContext(ctx, "Service failed to sign up user", slog.Any("error", err))
		span.SetStatus(codes.Error, "Signup failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Error creating user")
		return
	}

	span.SetStatus(codes.Ok, "User created")
	api.WriteJSONResponse(w, r, http.StatusCreated, resp)
}

func (h *HandlerImpl) LoginHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Login")
	defer span.End()
	l := h.logger.With(slog.String("handler", "LoginHandler"))

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	span.SetAttributes(attribute.String("user.email", req.Email))

	resp, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, api.ErrUnauthenticated) {
			span.SetStatus(codes.Error, "Invalid credentials")
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		l.ErrorContext(ctx, "Service failed to log in user", slog.Any("error", err))
		span.SetStatus(codes.Error, "Login failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Error logging in")
		return
	}

	span.SetStatus(codes.Ok, "Login successful")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

func (h *HandlerImpl) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Refresh")
	defer span.End()
	l := h.logger.With(slog.String("handler", "RefreshHandler"))

	var req types.RefreshTokenRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.RefreshSession(ctx, req.RefreshToken)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, api.ErrUnauthenticated) {
			span.SetStatus(codes.Error, "Invalid refresh token")
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}
		l.ErrorContext(ctx, "Service failed to refresh session", slog.Any("error", err))
		span.SetStatus(codes.Error, "Refresh failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Error refreshing session")
		return
	}

	span.SetStatus(codes.Ok, "Session refreshed")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

func (h *HandlerImpl) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Logout")
	defer span.End()
	l := h.logger.With(slog.String("handler", "LogoutHandler"))

	user, ok := GetUserFromContext(ctx)
	if !ok {
		span.SetStatus(codes.Error, "Unauthenticated")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	// Body is optional; an empty body revokes every refresh token
	var req types.LogoutRequest
	_ = api.DecodeJSONBody(w, r, &req)

	if err := h.service.Logout(ctx, user.ID, req.RefreshToken); err != nil {
		l.ErrorContext(ctx, "Service failed to log out user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Logout failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Error logging out")
		return
	}

	// An ended session must not keep resolving from the middleware cache.
	if h.userCache != nil {
		h.userCache.Delete(user.ID.String())
	}

	span.SetStatus(codes.Ok, "Logged out")
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *HandlerImpl) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "ListUsers")
	defer span.End()
	l := h.logger.With(slog.String("handler", "ListUsersHandler"))

	users, err := h.service.ListUsers(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Service failed to list users", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "List users failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Error fetching users")
		return
	}
	if users == nil {
		users = []*types.User{}
	}

	span.SetStatus(codes.Ok, "Users listed")
	api.WriteJSONResponse(w, r, http.StatusOK, users)
}
