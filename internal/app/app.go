// Package app wires the knob board, session and HTTP surfaces together.
package app

import (
	"errors"
	"io"
	"log/slog"

	"github.com/frudas24/knobslice/internal/board"
	"github.com/frudas24/knobslice/internal/control"
	"github.com/frudas24/knobslice/internal/session"
	"github.com/frudas24/knobslice/internal/watch"
)

// App coordinates the HTTP API, the control websocket and the watch stream.
type App struct {
	session *session.Session
	board   *board.Board
	control *control.Server
	watch   *watch.Stream
	logger  *slog.Logger
}

// New creates a new application with its dependencies wired.
func New(sess *session.Session, b *board.Board, logger *slog.Logger) (*App, error) {
	if sess == nil {
		return nil, errors.New("session is required")
	}
	if b == nil {
		return nil, errors.New("board is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	app := &App{
		session: sess,
		board:   b,
		control: control.NewServer(sess, b, logger.With("component", "control")),
		watch:   watch.NewStream(sess.IsAuthenticated, logger.With("component", "watch")),
		logger:  logger,
	}
	app.control.PublishTo(app.watch)
	return app, nil
}

// Stop closes any open knob sessions.
func (a *App) Stop() {
	a.board.EndAll()
}

// Control returns the control websocket handler.
func (a *App) Control() *control.Server {
	return a.control
}

// Watch returns the read-only event stream handler.
func (a *App) Watch() *watch.Stream {
	return a.watch
}
