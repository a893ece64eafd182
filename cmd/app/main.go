package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/patel-jhanvi/amrap-gym/docs"
	"github.com/patel-jhanvi/amrap-gym/internal/config"
	"github.com/patel-jhanvi/amrap-gym/internal/db"
	"github.com/patel-jhanvi/amrap-gym/internal/email"
	"github.com/patel-jhanvi/amrap-gym/internal/gym"
	"github.com/patel-jhanvi/amrap-gym/internal/logger"
	"github.com/patel-jhanvi/amrap-gym/internal/membership"
	"github.com/patel-jhanvi/amrap-gym/internal/memory"
	"github.com/patel-jhanvi/amrap-gym/internal/server"
	"github.com/patel-jhanvi/amrap-gym/internal/user"
)

// @title AMRAP Gym Record Store API
// @version 1.0
// @description Gyms, users and the memberships between them.
// @host localhost:3000
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	logger.Info("Starting AMRAP gym record store")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	var repos server.Repositories
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory store; data is lost on exit")
		mem := memory.New()
		repos = server.Repositories{Gyms: mem, Users: mem, Memberships: mem}
	} else {
		logger.Info("Connecting to database...")
		database, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()
		logger.Info("Database connected")

		if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
		logger.Info("Migrations completed")

		repos = server.Repositories{
			Gyms:        gym.NewRepository(database),
			Users:       user.NewRepository(database),
			Memberships: membership.NewRepository(database),
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mailer *email.Service
	if cfg.RedisAddr != "" {
		mailer = email.New(
			cfg.EmailFrom,
			cfg.EmailFromName,
			cfg.SMTPHost,
			cfg.SMTPPort,
			cfg.SMTPUser,
			cfg.SMTPPass,
			cfg.RedisAddr,
		)
		defer mailer.Close()
		go mailer.Start(ctx)
		logger.Info("Email notifications enabled", "redis", cfg.RedisAddr)
	} else {
		logger.Info("REDIS_ADDR not set, membership emails disabled")
	}

	if !cfg.AuthEnabled() {
		logger.Warn("Operator auth disabled, mutating routes are open")
	}

	srv := server.New(cfg, repos, mailer)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
