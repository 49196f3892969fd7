// Package server wires the application together: router, middleware,
// route table, and the graceful start/stop lifecycle.
//
// This is the composition root. main.go stays minimal; every dependency
// chain (DB → repository → service → handler) is assembled here, and each
// layer only receives the interface it needs:
//   - services get repository interfaces, not the concrete sqlite.DB
//   - handlers get services, never the repository or the DB
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/akovacs/plantkeeper/internal/auth"
	"github.com/akovacs/plantkeeper/internal/config"
	"github.com/akovacs/plantkeeper/internal/cron"
	"github.com/akovacs/plantkeeper/internal/handler"
	"github.com/akovacs/plantkeeper/internal/mail"
	"github.com/akovacs/plantkeeper/internal/middleware"
	sqliteRepo "github.com/akovacs/plantkeeper/internal/repository/sqlite"
	"github.com/akovacs/plantkeeper/internal/service"
)

// Server owns the router, the database connection, and the optional
// in-process reminder job. Both resources are released on shutdown.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	job    *cron.ReminderJob
}

// New assembles the full application.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// setupRoutes configures middleware, builds the service graph, and maps
// every route.
//
// ROUTE TABLE:
//
//	POST   /api/auth/register          → create account
//	POST   /api/auth/login             → verify credentials, set cookie
//	POST   /api/auth/logout            → expire cookie
//	GET    /api/me                     → current user            (auth)
//	DELETE /api/me                     → delete account + plants (auth)
//	GET    /api/plants                 → list with due state     (auth)
//	POST   /api/plants                 → register plant          (auth)
//	DELETE /api/plants/{id}            → delete plant            (auth)
//	POST   /api/plants/{id}/water      → record watering         (auth)
//	GET    /api/plants/{id}/history    → watering log            (auth)
//	GET    /api/reminders/due          → due-and-unwatered set   (auth)
//	POST   /api/reminders/run          → manual batch trigger    (auth)
//
// Middleware order matters: RequestID first so the logger can include it,
// Recoverer before the handlers so a panic becomes a 500.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	tokens, err := auth.NewTokenService(s.cfg.Auth.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	sender := mail.NewSMTPSender(s.cfg.SMTP)

	authService := service.NewAuthService(s.db.Users(), s.db, passwords, tokens, s.logger)
	plantService := service.NewPlantService(s.db, s.db, s.cfg.Garden.Shared, s.logger)
	reminderService := service.NewReminderService(s.db, s.db.Users(), s.db, sender, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	plantHandler := handler.NewPlantHandler(plantService, s.logger)
	reminderHandler := handler.NewReminderHandler(reminderService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		// Public: the only endpoints reachable without a session.
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		// Everything else requires a valid session cookie.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)
			r.Delete("/me", authHandler.HandleDeleteAccount)

			r.Get("/plants", plantHandler.HandleList)
			r.Post("/plants", plantHandler.HandleCreate)
			r.Delete("/plants/{id}", plantHandler.HandleDelete)
			r.Post("/plants/{id}/water", plantHandler.HandleWater)
			r.Get("/plants/{id}/history", plantHandler.HandleHistory)

			r.Get("/reminders/due", reminderHandler.HandleDue)
			r.Post("/reminders/run", reminderHandler.HandleRun)
		})
	})

	if s.cfg.Reminder.Enabled {
		s.job = cron.NewReminderJob(reminderService, s.cfg.Reminder.Schedule, s.logger)
	}

	return nil
}

// Start runs the HTTP server (and the reminder job, when enabled) until a
// SIGINT/SIGTERM arrives, then shuts down gracefully:
//  1. stop the cron loop and wait for a running batch
//  2. stop accepting connections, drain in-flight requests (30s)
//  3. close the database (flushes WAL, releases the file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	if s.job != nil {
		if err := s.job.Start(); err != nil {
			return err
		}
		defer s.job.Stop()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Server.Port),
			slog.String("database", s.cfg.Database.Path),
			slog.Bool("sharedGarden", s.cfg.Garden.Shared),
			slog.Bool("reminderJob", s.job != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
