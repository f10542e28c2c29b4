// Package watch fans knob events out to read-only websocket viewers.
package watch

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/frudas24/knobslice/internal/control"
)

const (
	defaultSendBuf = 64
	writeWait      = 5 * time.Second
	pingPeriod     = 20 * time.Second
	pongWait       = 30 * time.Second
)

// Stream broadcasts control events to every connected viewer. Viewers that fall a full
// buffer behind are dropped.
type Stream struct {
	mu       sync.Mutex
	subs     map[chan []byte]struct{}
	last     map[string][]byte
	order    []string
	sendBuf  int
	authFn   func() bool
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// Ensure Stream can receive control events.
var _ control.Publisher = (*Stream)(nil)

// NewStream creates a stream. authFn, when set, gates new viewers.
func NewStream(authFn func() bool, logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Stream{
		subs:    make(map[chan []byte]struct{}),
		last:    make(map[string][]byte),
		sendBuf: defaultSendBuf,
		authFn:  authFn,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Publish sends evt to all viewers and remembers it as the latest of its kind for the knob.
func (s *Stream) Publish(evt control.Event) {
	frame, err := json.Marshal(evt)
	if err != nil {
		s.logger.Warn("watch event dropped", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := evt.T + "/" + evt.Knob
	if _, seen := s.last[key]; !seen {
		s.order = append(s.order, key)
	}
	s.last[key] = frame
	for ch := range s.subs {
		select {
		case ch <- frame:
		default:
			s.logger.Info("watch viewer too slow; dropping")
			s.dropLocked(ch)
		}
	}
}

// Viewers returns the number of connected viewers.
func (s *Stream) Viewers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// ServeHTTP upgrades the request and streams events until the viewer leaves.
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.authFn != nil && !s.authFn() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("watch upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ch := s.subscribe()
	defer s.unsubscribe(ch)
	s.logger.Info("watch viewer connected", "remote", r.RemoteAddr)

	done := make(chan struct{})
	go s.readLoop(conn, done)

	keep := time.NewTicker(pingPeriod)
	defer keep.Stop()

	for {
		select {
		case <-done:
			return
		case frame, ok := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too slow"))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-keep.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop discards viewer input so pongs and close frames are processed.
func (s *Stream) readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// subscribe registers a viewer and queues the latest frame of every knob.
func (s *Stream) subscribe() chan []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	size := s.sendBuf
	if n := len(s.order); n > size {
		size = n
	}
	ch := make(chan []byte, size)
	for _, key := range s.order {
		ch <- s.last[key]
	}
	s.subs[ch] = struct{}{}
	return ch
}

// unsubscribe removes a viewer if it is still registered.
func (s *Stream) unsubscribe(ch chan []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked(ch)
}

// dropLocked removes and closes ch. The caller holds s.mu.
func (s *Stream) dropLocked(ch chan []byte) {
	if _, ok := s.subs[ch]; !ok {
		return
	}
	delete(s.subs, ch)
	close(ch)
}
