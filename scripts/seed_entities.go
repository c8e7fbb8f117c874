package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	database "github.com/lokeswarareddy/worst-passwords-api/app/db"
	"github.com/lokeswarareddy/worst-passwords-api/config"
)

// Seeds a demo user and a handful of entities so the /api/user/{userID}
// endpoint has data to return on a fresh database. Safe to re-run.
func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := pgxpool.New(ctx, dbConfig.ConnectionURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbpool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	var userID string
	err = dbpool.QueryRow(ctx, `
        INSERT INTO users (username, email, password_hash)
        VALUES ($1, $2, $3)
        ON CONFLICT (email) DO UPDATE SET username = EXCLUDED.username
        RETURNING id`,
		"Demo User", "demo@example.com", string(hash),
	).Scan(&userID)
	if err != nil {
		log.Fatalf("Failed to seed user: %v", err)
	}
	logger.Info("Seeded demo user", slog.String("id", userID))

	entities := []struct {
		Title       string
		Description string
	}{
		{"First entity", "Seeded entity number one"},
		{"Second entity", "Seeded entity number two"},
		{"Third entity", "Seeded entity number three"},
		{"Fourth entity", "Seeded entity number four"},
		{"Fifth entity", "Seeded entity number five"},
	}

	// Clear previous seed rows for this user so re-running does not pile up
	if _, err := dbpool.Exec(ctx, `DELETE FROM entities WHERE created_by = $1`, userID); err != nil {
		log.Fatalf("Failed to clear existing entities: %v", err)
	}

	for _, e := range entities {
		_, err := dbpool.Exec(ctx, `
            INSERT INTO entities (title, description, created_by)
            VALUES ($1, $2, $3)`,
			e.Title, e.Description, userID,
		)
		if err != nil {
			log.Fatalf("Failed to seed entity %q: %v", e.Title, err)
		}
	}

	logger.Info("Seeding complete", slog.Int("entities", len(entities)))
}
