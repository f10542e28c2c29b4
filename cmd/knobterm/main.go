// Package main runs knobslice knobs in a terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/frudas24/knobslice/internal/board"
	"github.com/frudas24/knobslice/internal/config"
	"github.com/frudas24/knobslice/internal/logging"
	"github.com/frudas24/knobslice/internal/tui"
)

// main is the entrypoint for the terminal knob client.
func main() {
	knobsPath := flag.String("knobs", "", "Knob definition file (defaults to KNOBS_PATH or ./data/knobs.yaml)")
	logPath := flag.String("log", "", "Write logs to this file; logs are discarded when empty")
	flag.Parse()

	if err := run(*knobsPath, *logPath); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run loads knobs, opens the terminal and blocks until the user quits.
func run(knobsPath, logPath string) error {
	logger, closeLog, err := openLogger(logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	if knobsPath == "" {
		knobsPath = os.Getenv("KNOBS_PATH")
	}
	if knobsPath == "" {
		knobsPath = "./data/knobs.yaml"
	}
	set, err := config.LoadKnobs(knobsPath)
	if err != nil {
		return err
	}
	for _, skipped := range set.Skipped {
		logger.Warn("knob entry skipped", "error", skipped)
	}

	b := board.New(set.Definitions, logger.With("component", "board"))
	if len(b.IDs()) == 0 {
		return fmt.Errorf("no usable knobs in %s", knobsPath)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()

	tui.New(screen, b, logger).Run()
	return nil
}

// openLogger returns a file logger, or a discarding one when path is empty.
func openLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return logging.New(io.Discard, "error"), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return logging.New(f, "debug"), func() { _ = f.Close() }, nil
}
