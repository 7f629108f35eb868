package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/safehaven/server/internal/auth"
	"github.com/safehaven/server/internal/config"
	"github.com/safehaven/server/internal/db"
	"github.com/safehaven/server/internal/geo"
	httphandler "github.com/safehaven/server/internal/http"
	"github.com/safehaven/server/internal/http/handlers"
	"github.com/safehaven/server/internal/jobs"
	"github.com/safehaven/server/internal/logger"
	"github.com/safehaven/server/internal/model"
	"github.com/safehaven/server/internal/repo"
	"github.com/safehaven/server/internal/safety"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load .env from CWD or server/ so it works from repo root or server/ (env vars override)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("server/.env")

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.LogFile)

	ctx := context.Background()

	database, err := db.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	if err := runMigrations(database, log); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	profileRepo := repo.NewProfileRepo(database)
	contactRepo := repo.NewContactRepo(database)
	alertRepo := repo.NewAlertRepo(database)
	checkInRepo := repo.NewCheckInRepo(database)
	reportRepo := repo.NewReportRepo(database)
	safeZoneRepo := repo.NewSafeZoneRepo(database)

	// The server has no location source of its own in production; coordinates
	// arrive from clients. Dev mode pins a fixed position for local testing.
	var geoProvider geo.Provider = &geo.UnavailableProvider{}
	if cfg.DevMode {
		geoProvider = &geo.StaticProvider{Coordinate: model.Coordinate{Latitude: 52.52, Longitude: 13.405}}
	}

	service := safety.NewService(
		profileRepo, contactRepo, alertRepo, checkInRepo, reportRepo, safeZoneRepo,
		geoProvider, log,
	)

	jwtService := auth.NewJWTService(cfg.JWTSecret)

	router := httphandler.NewRouter(httphandler.Handlers{
		Alerts:    handlers.NewAlertHandler(service, log),
		CheckIns:  handlers.NewCheckInHandler(service, log),
		Contacts:  handlers.NewContactHandler(service, log),
		Reports:   handlers.NewReportHandler(service, log),
		SafeZones: handlers.NewSafeZoneHandler(service, log),
		Profile:   handlers.NewProfileHandler(service, log),
	}, jwtService)

	sweeper := jobs.NewSweeper(service, log)
	if err := sweeper.Start(cfg.SweepInterval); err != nil {
		log.Fatalf("Failed to start check-in sweep: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Infof("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

// runMigrations runs database migrations using goose
func runMigrations(database *sql.DB, log *logrus.Logger) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	migrationDir := "internal/db/migrations"
	if info, err := os.Stat(migrationDir); err != nil || !info.IsDir() {
		migrationDir = "server/internal/db/migrations"
	}
	if info, err := os.Stat(migrationDir); err != nil || !info.IsDir() {
		return fmt.Errorf("migrations directory not found (run from server/ or repo root)")
	}

	log.Infof("Running migrations from %s", migrationDir)

	if err := goose.Up(database, migrationDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
