// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: the database, image store, generation client,
// services, and handlers are all constructed and wired together here, and the
// server owns their lifecycle — the database is closed during graceful
// shutdown, never leaked.
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
	"github.com/go-chi/cors"

	"github.com/pamelaahill/inspiration-server/internal/handler"
	"github.com/pamelaahill/inspiration-server/internal/imagestore"
	"github.com/pamelaahill/inspiration-server/internal/inspirobot"
	"github.com/pamelaahill/inspiration-server/internal/middleware"
	sqliteRepo "github.com/pamelaahill/inspiration-server/internal/repository/sqlite"
	"github.com/pamelaahill/inspiration-server/internal/service"
)

// Config holds server configuration, assembled from the environment in
// cmd/server.
type Config struct {
	Port          int
	DBPath        string // path to the SQLite database file
	ImageDir      string // directory holding stored inspiration images
	InspirobotURL string // base URL of the generation service
}

// Server owns the router and the resources behind it.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB // closed on shutdown
}

// New wires the full dependency chain:
//
//	sqlite.DB + imagestore.Store + inspirobot.Client
//	  → InspirationService / TagService
//	  → InspirationHandler / TagHandler
//	  → routes
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	images, err := imagestore.New(cfg.ImageDir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening image store: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(images)

	return s, nil
}

// setupRoutes configures middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST /api/users/{userID}/inspirations                        → generate + save
//	PUT  /api/users/{userID}/inspirations/{inspirationID}        → replace tags
//	GET  /api/users/{userID}/inspirations/{inspirationID}        → fetch one
//	GET  /api/users/{userID}/inspirations/{inspirationID}/image  → serve image bytes
//	GET  /api/users/{userID}/inspirations[?tagId=N]              → list by user or tag
//	GET  /api/tags[?title=text]                                  → list/search vocabulary
func (s *Server) setupRoutes(images *imagestore.Store) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	generator := inspirobot.New(s.config.InspirobotURL, s.logger)

	inspirationService := service.NewInspirationService(s.db, generator, images, s.logger)
	tagService := service.NewTagService(s.db, s.logger)

	inspirationHandler := handler.NewInspirationHandler(inspirationService, s.logger)
	tagHandler := handler.NewTagHandler(tagService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/users/{userID}/inspirations", func(r chi.Router) {
			r.Post("/", inspirationHandler.HandleGenerate)
			r.Get("/", inspirationHandler.HandleList)
			r.Get("/{inspirationID}", inspirationHandler.HandleGet)
			r.Put("/{inspirationID}", inspirationHandler.HandleReplaceTags)
			r.Get("/{inspirationID}/image", inspirationHandler.HandleImage)
		})
		r.Get("/tags", tagHandler.HandleList)
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests for up to
// 30 seconds, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
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
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("imageDir", s.config.ImageDir),
			slog.String("generator", s.config.InspirobotURL),
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
