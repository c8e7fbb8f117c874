package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/lokeswarareddy/worst-passwords-api/internal/api/auth"
	"github.com/lokeswarareddy/worst-passwords-api/internal/api/entity"
	"github.com/lokeswarareddy/worst-passwords-api/internal/api/password"
	"github.com/lokeswarareddy/worst-passwords-api/internal/api/potd"
)

// Config contains the dependencies needed for the router setup.
type Config struct {
	AuthHandler            *auth.HandlerImpl
	PasswordHandler        *password.HandlerImpl
	PotdHandler            *potd.HandlerImpl
	EntityHandler          *entity.HandlerImpl
	AuthenticateMiddleware func(http.Handler) http.Handler
	AllowedOrigins         []string
}

// SetupRouter wires every resource route. Server-wide middleware (logger,
// request id, recoverer) is applied by the caller before mounting this.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Worst Passwords API"))
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api", func(r chi.Router) {
		// --- Public auth routes ---
		r.Group(func(r chi.Router) {
			r.Post("/auth/signup", cfg.AuthHandler.SignupHandler)
			r.Post("/auth/login", cfg.AuthHandler.LoginHandler)
			r.Post("/auth/refresh", cfg.AuthHandler.RefreshHandler)
			r.Get("/auth/users", cfg.AuthHandler.ListUsersHandler)
		})

		// --- Protected auth routes ---
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)
			r.Post("/auth/logout", cfg.AuthHandler.LogoutHandler)
		})

		// --- Password routes ---
		r.Route("/passwords", func(r chi.Router) {
			// Public reads
			r.Get("/", cfg.PasswordHandler.ListPasswordsHandler)
			r.Get("/random", cfg.PasswordHandler.GetRandomPasswordHandler)
			r.Get("/leaderboard", cfg.PasswordHandler.LeaderboardHandler)
			r.Get("/{id}", cfg.PasswordHandler.GetPasswordHandler)

			// Writes and per-user reads require authentication
			r.Group(func(r chi.Router) {
				r.Use(cfg.AuthenticateMiddleware)
				r.Post("/", cfg.PasswordHandler.CreatePasswordHandler)
				r.Get("/user/{userID}", cfg.PasswordHandler.ListUserPasswordsHandler)
				r.Put("/{id}", cfg.PasswordHandler.UpdatePasswordHandler)
				r.Delete("/{id}", cfg.PasswordHandler.DeletePasswordHandler)
			})
		})

		// --- Entity demo routes ---
		r.Get("/users", cfg.AuthHandler.ListUsersHandler)
		r.Get("/user/{userID}", cfg.EntityHandler.GetUserEntitiesHandler)
	})

	// --- Password of the day ---
	r.Route("/ofTheDay", func(r chi.Router) {
		r.Post("/password-of-the-day", cfg.PotdHandler.SetPasswordOfTheDayHandler)
		r.Get("/password-of-the-day", cfg.PotdHandler.GetPasswordOfTheDayHandler)
		r.Put("/password-of-the-day", cfg.PotdHandler.UpdatePasswordOfTheDayHandler)
	})

	return r
}
