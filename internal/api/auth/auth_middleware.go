package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/lokeswarareddy/worst-passwords-api/config"
	"github.com/lokeswarareddy/worst-passwords-api/internal/api"
	"github.com/lokeswarareddy/worst-passwords-api/internal/types"
)

type contextKey string

const UserKey contextKey = "authUser"

const userCacheTTL = 5 * time.Minute

// NewUserCache builds the cache that Authenticate resolves token subjects
// through. It is shared with the logout path so revoking a session also
// drops the cached user record.
func NewUserCache() *gocache.Cache {
	return gocache.New(userCacheTTL, 10*time.Minute)
}

// Authenticate validates the Bearer JWT on each request, resolves the
// token subject to a live user record, and places that user in the
// request context. Resolved users are cached briefly so a burst of
// authenticated requests does not hit the users table every time.
func Authenticate(logger *slog.Logger, jwtCfg config.JWTConfig, service AuthService, userCache *gocache.Cache) func(next http.Handler) http.Handler {
	secretKey := []byte(jwtCfg.SecretKey)
	if len(secretKey) == 0 {
		logger.Error("FATAL: JWT Secret Key is not configured!")
		panic("JWT Secret Key cannot be empty")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				l.WarnContext(ctx, "Missing Authorization header")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization denied. Token missing or malformed.")
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				l.WarnContext(ctx, "Invalid Authorization header format")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization denied. Token missing or malformed.")
				return
			}
			tokenString := headerParts[1]

			claims := &types.Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return secretKey, nil
			})

			if err != nil {
				l.WarnContext(ctx, "Token parsing/validation failed", slog.Any("error", err))
				errMsg := "Invalid or expired token. Authorization denied."
				if errors.Is(err, jwt.ErrTokenExpired) {
					errMsg = "Token has expired. Authorization denied."
				} else if errors.Is(err, jwt.ErrTokenMalformed) {
					errMsg = "Malformed token. Authorization denied."
				}
				api.ErrorResponse(w, r, http.StatusUnauthorized, errMsg)
				return
			}

			if !token.Valid {
				l.WarnContext(ctx, "Token marked as invalid")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid token. Authorization denied.")
				return
			}

			if claims.Issuer != jwtCfg.Issuer {
				l.WarnContext(ctx, "Token issuer mismatch", slog.String("actual", claims.Issuer))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid token issuer. Authorization denied.")
				return
			}
			if jwtCfg.Audience != "" && !api.VerifyAudience(claims.Audience, jwtCfg.Audience) {
				l.WarnContext(ctx, "Token audience mismatch")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid token audience. Authorization denied.")
				return
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				l.WarnContext(ctx, "Token subject is not a valid user id", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid token subject. Authorization denied.")
				return
			}

			user, err := resolveUser(ctx, service, userCache, userID)
			if err != nil {
				l.WarnContext(ctx, "Token subject does not resolve to a user", slog.String("userID", claims.UserID))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "User not found. Authorization denied.")
				return
			}

			ctx = context.WithValue(ctx, UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveUser consults the cache first, then falls through to the store.
func resolveUser(ctx context.Context, service AuthService, userCache *gocache.Cache, userID uuid.UUID) (*types.User, error) {
	key := userID.String()
	if cached, found := userCache.Get(key); found {
		return cached.(*types.User), nil
	}

	user, err := service.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	userCache.Set(key, user, gocache.DefaultExpiration)
	return user, nil
}

// GetUserFromContext returns the authenticated user stored by Authenticate.
func GetUserFromContext(ctx context.Context) (*types.User, bool) {
	user, ok := ctx.Value(UserKey).(*types.User)
	return user, ok
}

// GetUserIDFromContext is a convenience for handlers that only need the id.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	user, ok := GetUserFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return user.ID, true
}
