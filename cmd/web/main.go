package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/tournament-scoreboard/internal/config"
	"github.com/AdamBeresnev/tournament-scoreboard/internal/db"
	"github.com/AdamBeresnev/tournament-scoreboard/internal/events"
	"github.com/AdamBeresnev/tournament-scoreboard/internal/service"
	"github.com/AdamBeresnev/tournament-scoreboard/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	database := db.InitDB(cfg.DatabasePath)
	defer database.Close()

	if err := db.RunMigrations(database.DB); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	tournamentStore := store.NewTournamentStore(database)
	publisher := events.NewLogPublisher(logger)

	router := newRouter(services{
		tournaments: service.NewTournamentService(database, tournamentStore, publisher),
		competitors: service.NewCompetitorService(database, tournamentStore, publisher),
		matches:     service.NewMatchService(database, tournamentStore, publisher),
	}, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.ServerAddr, "database", cfg.DatabasePath)
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down server", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}
	logger.Info("server stopped")
}
