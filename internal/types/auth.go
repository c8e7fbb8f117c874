package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload embedded in access tokens.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Scope    string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// SignupRequest represents the expected JSON body for user signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the expected JSON body for user login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by signup and login: the account plus a token
// pair the client stores for subsequent requests.
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Message      string `json:"message,omitempty"`
}

// RefreshTokenRequest represents the expected JSON body for refreshing tokens.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse represents the successful JSON response after refreshing tokens.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest carries the refresh token to revoke. Optional: logout with
// an empty body revokes every refresh token of the caller.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}
