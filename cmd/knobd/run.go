package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/frudas24/knobslice/internal/app"
	"github.com/frudas24/knobslice/internal/board"
	"github.com/frudas24/knobslice/internal/config"
	"github.com/frudas24/knobslice/internal/logging"
	"github.com/frudas24/knobslice/internal/session"
)

// run wires the application and blocks until shutdown.
func run(debug bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)
	logStartup(logger, cfg)

	knobs, err := config.LoadKnobs(cfg.KnobsPath)
	if err != nil {
		return err
	}
	logKnobStatus(logger, cfg.KnobsPath, knobs)

	b := board.New(knobs.Definitions, logger.With("component", "board"))
	if len(b.IDs()) == 0 {
		logger.Warn("no knobs available; the page will be empty")
	}

	sess := session.New(session.Options{
		Password:     cfg.UIPassword,
		PasswordMode: cfg.PasswordMode,
		InputEnabled: cfg.InputEnabled,
	})

	appInstance, err := app.New(sess, b, logger)
	if err != nil {
		return err
	}
	defer appInstance.Stop()

	mux := http.NewServeMux()
	appInstance.RegisterRoutes(mux, "")
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// logStartup reports startup checks and connection info.
func logStartup(logger *slog.Logger, cfg config.Config) {
	logger.Info("knobslice starting", "log_level", cfg.LogLevel)
	logEnvStatus(logger, cfg)
	logListenStatus(logger, cfg.ListenAddr)
}

// logEnvStatus reports whether a .env file was found and password mode is usable.
func logEnvStatus(logger *slog.Logger, cfg config.Config) {
	envPath := filepath.Join(cfg.DataDir, ".env")
	if fileExists(envPath) {
		logger.Info("env check: ok", "path", envPath)
	} else {
		logger.Info("env check: missing", "path", envPath)
	}
	if cfg.PasswordMode {
		logger.Info("password mode: enabled")
	} else {
		logger.Warn("password mode: disabled (dev mode)")
	}
	if !cfg.InputEnabled {
		logger.Info("input starts disabled")
	}
}

// logKnobStatus reports where knob definitions came from and which entries were dropped.
func logKnobStatus(logger *slog.Logger, path string, set config.KnobSet) {
	if set.Defaulted {
		logger.Info("knob file missing; using built-in knobs", "path", path)
	} else {
		logger.Info("knob file loaded", "path", path, "knobs", len(set.Definitions))
	}
	for _, err := range set.Skipped {
		logger.Warn("knob entry skipped", "error", err)
	}
}

// logListenStatus reports the listen address and a local URL helper.
func logListenStatus(logger *slog.Logger, addr string) {
	logger.Info("listening", "addr", addr)
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	logger.Info("local url", "url", "http://"+net.JoinHostPort(host, port))
}

// fileExists reports whether a path exists and is a file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
