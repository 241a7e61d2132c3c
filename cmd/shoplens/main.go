package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"shoplens/internal/config"
	internalhttp "shoplens/internal/http"
	"shoplens/internal/loader"
	"shoplens/internal/logging"
	"shoplens/internal/seeder"
	"shoplens/internal/store"
)

const defaultSeed = 42

func main() {
	cfg := config.GetConfig()
	logger := logging.NewLogger(cfg)

	if err := os.MkdirAll(cfg.StoragePath, 0o755); err != nil {
		logger.Error("cannot create storage directory", "path", cfg.StoragePath, "error", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.GetDatabasePath(), logger)
	if err != nil {
		logger.Error("cannot open database", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Migrate(); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		serve(cfg, st, logger)
	case "import":
		if err := runImport(cfg, st); err != nil {
			logger.Error("import failed", "error", err)
			os.Exit(1)
		}
		logger.Info("import completed")
	case "seed":
		if err := seeder.Seed(context.Background(), st, logger, defaultSeed); err != nil {
			logger.Error("seed failed", "error", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "usage: %s [serve|import <path>|seed]\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}
}

func serve(cfg *config.Config, st *store.Store, logger *slog.Logger) {
	server := internalhttp.NewServer(cfg, st, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.GetPort(), "env", cfg.Environment)
		errCh <- server.Listen(":" + cfg.GetPort())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		done := make(chan struct{})
		go func() {
			if err := server.Shutdown(); err != nil {
				logger.Error("shutdown error", "error", err)
			}
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			logger.Warn("shutdown timed out")
		}
	}
}

func runImport(cfg *config.Config, st *store.Store) error {
	path := cfg.ManifestPath
	if len(os.Args) > 2 {
		path = os.Args[2]
	}
	if path == "" {
		return fmt.Errorf("no dataset path: pass it as an argument or set SHOPLENS_MANIFEST_PATH")
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	var m loader.Manifest
	if info.IsDir() {
		m = loader.DirManifest(path)
	} else {
		if m, err = loader.ReadManifest(path); err != nil {
			return err
		}
	}
	ds, err := loader.Load(m)
	if err != nil {
		return err
	}
	return st.Import(context.Background(), ds)
}
