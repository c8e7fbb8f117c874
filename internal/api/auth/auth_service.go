package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lokeswarareddy/worst-passwords-api/config"
	"github.com/lokeswarareddy/worst-passwords-api/internal/api"
	"github.com/lokeswarareddy/worst-passwords-api/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService defines the authentication operations exposed to handlers
// and to the Authenticate middleware.
type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*types.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*types.AuthResponse, error)
	RefreshSession(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
	Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	ListUsers(ctx context.Context) ([]*types.User, error)
}

type AuthServiceImpl struct {
	logger *slog.Logger
	cfg    *config.Config
	repo   AuthRepo
}

func NewAuthService(repo AuthRepo, cfg *config.Config, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		cfg:    cfg,
		repo:   repo,
	}
}

// Signup registers a new account and immediately issues a token pair.
func (s *AuthServiceImpl) Signup(ctx context.Context, name, email, password string) (*types.AuthResponse, error) {
	l := s.logger.With(slog.String("method", "Signup"), slog.String("email", email))

	var verrs []api.FieldError
	if name == "" {
		verrs = append(verrs, api.FieldError{Field: "name", Message: "Name is required"})
	}
	if email == "" {
		verrs = append(verrs, api.FieldError{Field: "email", Message: "Email is required"})
	}
	if len(password) < 6 {
		verrs = append(verrs, api.FieldError{Field: "password", Message: "Password must be at least 6 characters long."})
	}
	if len(verrs) > 0 {
		return nil, &api.ValidationError{Errors: verrs}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, name, email, string(hashedPassword))
	if err != nil {
		l.WarnContext(ctx, "Signup failed", slog.Any("error", err))
		return nil, err
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	l.InfoContext(ctx, "User registered", slog.String("userID", user.ID.String()))
	return &types.AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Message:      "Signup successful",
	}, nil
}

// Login authenticates a user and returns the account plus a token pair.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*types.AuthResponse, error) {
	l := s.logger.With(slog.String("method", "Login"), slog.String("email", email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			l.WarnContext(ctx, "Login attempt for unknown email")
			return nil, fmt.Errorf("invalid credentials: %w", api.ErrUnauthenticated)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		l.WarnContext(ctx, "Login attempt with wrong password")
		return nil, fmt.Errorf("invalid credentials: %w", api.ErrUnauthenticated)
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	l.InfoContext(ctx, "Login successful", slog.String("userID", user.ID.String()))
	return &types.AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Message:      "Login successful",
	}, nil
}

// RefreshSession rotates a valid refresh token into a new token pair.
func (s *AuthServiceImpl) RefreshSession(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	l := s.logger.With(slog.String("method", "RefreshSession"))

	// Tokens are UUIDs; anything else can never match a stored row and
	// would only trip the uuid parameter codec on the way to the database.
	if _, err := uuid.Parse(refreshToken); err != nil {
		return nil, fmt.Errorf("malformed refresh token: %w", api.ErrUnauthenticated)
	}

	userID, expiresAt, revokedAt, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if time.Now().After(expiresAt) || revokedAt != nil {
		return nil, fmt.Errorf("refresh token expired or revoked: %w", api.ErrUnauthenticated)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, fmt.Errorf("user no longer exists: %w", api.ErrUnauthenticated)
		}
		return nil, err
	}

	accessToken, newRefreshToken, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	// Rotation: revoke the old token after storing the new one
	if err := s.repo.InvalidateRefreshToken(ctx, refreshToken); err != nil {
		l.WarnContext(ctx, "Failed to revoke old refresh token", slog.Any("error", err))
	}

	return &types.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// Logout revokes the supplied refresh token, or every refresh token of the
// caller when none is supplied.
func (s *AuthServiceImpl) Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	if refreshToken == "" {
		return s.repo.InvalidateAllUserRefreshTokens(ctx, userID)
	}
	if _, err := uuid.Parse(refreshToken); err != nil {
		s.logger.WarnContext(ctx, "Logout received a malformed refresh token, nothing to revoke")
		return nil
	}
	return s.repo.InvalidateRefreshToken(ctx, refreshToken)
}

func (s *AuthServiceImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

func (s *AuthServiceImpl) ListUsers(ctx context.Context) ([]*types.User, error) {
	return s.repo.ListUsers(ctx)
}

// issueTokens creates a signed access token and a stored refresh token.
func (s *AuthServiceImpl) issueTokens(ctx context.Context, user *types.User) (string, string, error) {
	accessToken, err := generateAccessToken(user, s.cfg.JWT)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken := uuid.NewString()
	expiresAt := time.Now().Add(s.cfg.JWT.RefreshTokenTTL)
	if err := s.repo.StoreRefreshToken(ctx, user.ID, refreshToken, expiresAt); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// generateAccessToken signs an HMAC JWT carrying the user identity claims.
func generateAccessToken(user *types.User, jwtCfg config.JWTConfig) (string, error) {
	now := time.Now()
	claims := &types.Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    jwtCfg.Issuer,
			Audience:  jwt.ClaimStrings{jwtCfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtCfg.AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtCfg.SecretKey))
}
