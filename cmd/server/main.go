package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vncsmyrnk/potw/internal/adapters/event"
	"github.com/vncsmyrnk/potw/internal/adapters/handler/http"
	"github.com/vncsmyrnk/potw/internal/adapters/oauth/google"
	"github.com/vncsmyrnk/potw/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/potw/internal/config"
	"github.com/vncsmyrnk/potw/internal/core/domain"
	"github.com/vncsmyrnk/potw/internal/core/services"
	"github.com/vncsmyrnk/potw/internal/metrics"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "potw"),
	)
	m := metrics.New(reg, "potw")

	guard := postgres.NewGuard(postgres.GuardConfig{
		MaxRetries: cfg.DBRetryAttempts,
		Cooldown:   cfg.DBBreakerCooldown,
		Metrics:    m,
	})

	publisher := event.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Warn("failed to close event publisher", "error", err)
		}
	}()

	userRepo := postgres.NewUserRepository(db, guard)
	authRepo := postgres.NewAuthRepository(db, guard)
	sessionRepo := postgres.NewSessionRepository(db, guard)
	voteRepo := postgres.NewVoteRepository(db, guard)

	policy := domain.NewAccessPolicy(cfg.AllowedEmailDomain)
	authService := services.NewAuthService(userRepo, authRepo, google.NewVerifier(), services.AuthConfig{
		JWTSecret:      cfg.JWTSecret,
		GoogleClientID: cfg.GoogleClientID,
		Policy:         policy,
		AdminEmails:    cfg.AdminEmails,
	})

	handler := http.NewHandler(http.Handlers{
		Auth:    http.NewAuthHandler(authService, cfg.RedirectURL, cfg.CookieDomain, cfg.CookieSameSite, policy.Domain),
		User:    http.NewUserHandler(services.NewUserService(userRepo)),
		Session: http.NewSessionHandler(services.NewSessionService(sessionRepo, voteRepo, userRepo, publisher, m)),
		Vote:    http.NewVoteHandler(services.NewVoteService(sessionRepo, voteRepo, userRepo, publisher, m)),
		Results: http.NewResultsHandler(
			services.NewResultsService(sessionRepo, voteRepo, userRepo, m),
			services.NewAnalyticsService(voteRepo, userRepo, m),
		),
		Health: http.NewHealthHandler(db),
	}, http.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		Gatherer:       reg,
	})

	server := &stdhttp.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server listening",
			"addr", server.Addr,
			"domain", policy.Domain,
			"events", len(cfg.KafkaBrokers) > 0,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}
	slog.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
