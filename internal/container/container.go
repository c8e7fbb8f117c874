package container

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	gocache "github.com/patrickmn/go-cache"

	database "github.com/lokeswarareddy/worst-passwords-api/app/db"
	"github.com/lokeswarareddy/worst-passwords-api/config"
	"github.com/lokeswarareddy/worst-passwords-api/internal/api/auth"
	"github.com/lokeswarareddy/worst-passwords-api/internal/api/entity"
	"github.com/lokeswarareddy/worst-passwords-api/internal/api/password"
	"github.com/lokeswarareddy/worst-passwords-api/internal/api/potd"
)

// Container holds all application dependencies.
type Container struct {
	Config          *config.Config
	Logger          *slog.Logger
	Pool            *pgxpool.Pool
	UserCache       *gocache.Cache
	AuthService     auth.AuthService
	AuthHandler     *auth.HandlerImpl
	PasswordHandler *password.HandlerImpl
	PotdHandler     *potd.HandlerImpl
	EntityHandler   *entity.HandlerImpl
}

// NewContainer initializes the database pool and wires repositories,
// services and handlers.
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	userCache := auth.NewUserCache()
	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewAuthService(authRepo, cfg, logger)
	authHandler := auth.NewHandlerImpl(authService, logger, userCache)

	passwordRepo := password.NewPostgresPasswordRepo(pool, logger)
	passwordService := password.NewService(passwordRepo, cfg, logger)
	passwordHandler := password.NewHandlerImpl(passwordService, logger)

	potdRepo := potd.NewPostgresPotdRepo(pool, logger)
	potdService := potd.NewService(potdRepo, logger)
	potdHandler := potd.NewHandlerImpl(potdService, logger)

	entityRepo := entity.NewPostgresEntityRepo(pool, logger)
	entityHandler := entity.NewHandlerImpl(entityRepo, logger)

	return &Container{
		Config:          cfg,
		Logger:          logger,
		Pool:            pool,
		UserCache:       userCache,
		AuthService:     authService,
		AuthHandler:     authHandler,
		PasswordHandler: passwordHandler,
		PotdHandler:     potdHandler,
		EntityHandler:   entityHandler,
	}, nil
}

// Close releases held resources.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
