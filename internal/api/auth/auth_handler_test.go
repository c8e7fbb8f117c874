package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/lokeswarareddy/worst-passwords-api/internal/api"
	"github.com/lokeswarareddy/worst-passwords-api/internal/types"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestSignupHandler(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewHandlerImpl(mockService, testLogger(), NewUserCache())

		user := &types.User{ID: uuid.New(), Username: "newuser", Email: "new@example.com"}
		mockService.On("Signup", mock.Anything, "newuser", "new@example.com", "password1").Return(&types.AuthResponse{
			User:         user,
			AccessToken:  "access",
			RefreshToken: "refresh",
			Message:      "Signup successful",
		}, nil).Once()

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/signup",
			strings.NewReader(`{"name":"newuser","email":"new@example.com","password":"password1"}`))
		handler.SignupHandler(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), "Signup successful")
		assert.Contains(t, rr.Body.String(), "access_token")
		assert.NotContains(t, rr.Body.String(), "password_hash")
		mockService.AssertExpectations(t)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewHandlerImpl(mockService, testLogger(), NewUserCache())

		mockService.On("Signup", mock.Anything, "dup", "dup@example.com", "password1").Return(nil, api.ErrConflict).Once()

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/signup",
			strings.NewReader(`{"name":"dup","email":"dup@example.com","password":"password1"}`))
		handler.SignupHandler(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "Email already registered")
		mockService.AssertExpectations(t)
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewHandlerImpl(mockService, testLogger(), NewUserCache())

		mockService.On("Signup", mock.Anything, "", "", "abc").Return(nil, &api.ValidationError{
			Errors: []api.FieldError{
				{Field: "name", Message: "Name is required"},
				{Field: "email", Message: "Email is required"},
				{Field: "password", Message: "Password must be at least 6 characters long."},
			},
		}).Once()

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/signup",
			strings.NewReader(`{"name":"","email":"","password":"abc"}`))
		handler.SignupHandler(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Name is required")
		mockService.AssertExpectations(t)
	})
}

func TestLoginHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewHandlerImpl(mockService, testLogger(), NewUserCache())

		user := &types.User{ID: uuid.New(), Username: "testuser", Email: "test@example.com"}
		mockService.On("Login", mock.Anything, "test@example.com", "password1").Return(&types.AuthResponse{
			User:         user,
			AccessToken:  "access",
			RefreshToken: "refresh",
			Message:      "Login successful",
		}, nil).Once()

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"test@example.com","password":"password1"}`))
		handler.LoginHandler(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Login successful")
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidCredentials", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewHandlerImpl(mockService, testLogger(), NewUserCache())

		mockService.On("Login", mock.Anything, "test@example.com", "wrong").Return(nil, api.ErrUnauthenticated).Once()

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"test@example.com","password":"wrong"}`))
		handler.LoginHandler(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid email or password")
		mockService.AssertExpectations(t)
	})

	t.Run("EmptyBody", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewHandlerImpl(mockService, testLogger(), NewUserCache())

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		handler.LoginHandler(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestLogoutHandler(t *testing.T) {
	t.Run("RevokesSuppliedToken", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewHandlerImpl(mockService, testLogger(), NewUserCache())

		user := &types.User{ID: uuid.New(), Username: "testuser"}
		mockService.On("Logout", mock.Anything, user.ID, "some-refresh-token").Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout",
			strings.NewReader(`{"refresh_token":"some-refresh-token"}`))
		req = req.WithContext(context.WithValue(req.Context(), UserKey, user))

		rr := httptest.NewRecorder()
		handler.LogoutHandler(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Logged out successfully")
		mockService.AssertExpectations(t)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewHandlerImpl(mockService, testLogger(), NewUserCache())

		rr := httptest.NewRecorder()
		handler.LogoutHandler(rr, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestListUsersHandler(t *testing.T) {
	mockService := new(MockAuthService)
	handler := NewHandlerImpl(mockService, testLogger(), NewUserCache())

	mockService.On("ListUsers", mock.Anything).Return([]*types.User{
		{ID: uuid.New(), Username: "alpha", Email: "alpha@example.com"},
		{ID: uuid.New(), Username: "beta", Email: "beta@example.com"},
	}, nil).Once()

	rr := httptest.NewRecorder()
	handler.ListUsersHandler(rr, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "alpha")
	assert.Contains(t, rr.Body.String(), "beta")
	mockService.AssertExpectations(t)
}
