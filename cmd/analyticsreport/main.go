package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/potw/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/potw/internal/core/services"
)

// analyticsreport prints the cross-session analytics, or the results of one
// closed session, as JSON on stdout.
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found")
	}

	var (
		dbURL     string
		sessionID int64
		all       bool
	)
	flag.StringVar(&dbURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	flag.Int64Var(&sessionID, "session", 0, "Print the results of this closed session instead of analytics")
	flag.BoolVar(&all, "all", false, "Include every votee in session results, not only the top three")
	flag.Parse()

	if dbURL == "" {
		dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			os.Getenv("POSTGRES_USER"), os.Getenv("POSTGRES_PASSWORD"),
			os.Getenv("POSTGRES_HOST"), os.Getenv("POSTGRES_PORT"), os.Getenv("POSTGRES_DB"))
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		fatal("failed to open database", err)
	}
	defer db.Close()

	// Use a timeout for the job execution to prevent it from hanging indefinitely
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		fatal("database unreachable", err)
	}

	guard := postgres.NewGuard(postgres.GuardConfig{MaxRetries: 3})
	userRepo := postgres.NewUserRepository(db, guard)
	voteRepo := postgres.NewVoteRepository(db, guard)

	var report any
	if sessionID != 0 {
		sessionRepo := postgres.NewSessionRepository(db, guard)
		report, err = services.NewResultsService(sessionRepo, voteRepo, userRepo, nil).Results(ctx, sessionID, all)
	} else {
		report, err = services.NewAnalyticsService(voteRepo, userRepo, nil).Analytics(ctx)
	}
	if err != nil {
		fatal("failed to build report", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fatal("failed to encode report", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
