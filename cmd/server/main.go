// Package main is the entry point for the inspiration server.
//
// main() stays minimal: read configuration from the environment, build the
// logger, hand both to the server package, exit non-zero on failure. All real
// logic lives in internal/.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pamelaahill/inspiration-server/internal/inspirobot"
	"github.com/pamelaahill/inspiration-server/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// PORT: where the HTTP server listens.
	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// DB_PATH: SQLite database file. The parent directory is created here so
	// a fresh checkout runs without any setup.
	dbPath := "data/inspirations.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// IMAGE_DIR: where inspiration image files land, one file per image.
	imageDir := "data/images"
	if envDir := os.Getenv("IMAGE_DIR"); envDir != "" {
		imageDir = envDir
	}

	// INSPIROBOT_URL: override for tests or a local stub of the generator.
	inspirobotURL := inspirobot.DefaultBaseURL
	if envURL := os.Getenv("INSPIROBOT_URL"); envURL != "" {
		inspirobotURL = envURL
	}

	cfg := server.Config{
		Port:          port,
		DBPath:        dbPath,
		ImageDir:      imageDir,
		InspirobotURL: inspirobotURL,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down via SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
