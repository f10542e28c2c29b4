package control

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/frudas24/knobslice/internal/board"
	"github.com/frudas24/knobslice/internal/session"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Board is the knob host the control server drives.
type Board interface {
	board.Driver
	Sync() []board.Change
	EndAll()
}

// Publisher receives a copy of every event sent to the control client.
type Publisher interface {
	Publish(Event)
}

// emitFunc sends one event to the connected client.
type emitFunc func(Event) error

// Server handles websocket control input.
type Server struct {
	upgrader  websocket.Upgrader
	session   *session.Session
	board     Board
	publisher Publisher
	logger    *slog.Logger
}

// NewServer creates a control websocket server.
func NewServer(sess *session.Session, b Board, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		session: sess,
		board:   b,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// PublishTo mirrors every outbound event to p. Call it before serving.
func (s *Server) PublishTo(p Publisher) {
	s.publisher = p
}

// ServeHTTP upgrades the connection and processes control messages.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.session.IsAuthenticated() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if !s.session.Claim() {
		http.Error(w, "control connection already active", http.StatusConflict)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.session.Release()
		s.logger.Warn("control upgrade failed", "error", err)
		return
	}
	defer s.cleanupConn(conn)
	s.logger.Info("control connected", "remote", r.RemoteAddr)

	emit := func(evt Event) error {
		if s.publisher != nil {
			s.publisher.Publish(evt)
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(evt)
	}
	gestures := NewGestureState()

	if err := s.sendSync(emit); err != nil {
		return
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("control read ended", "error", err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			// Malformed frames are dropped; the drag in progress stays open.
			s.logger.Debug("control frame ignored", "error", err)
			continue
		}
		if err := s.handleMessage(gestures, emit, msg); err != nil {
			s.logger.Warn("control message failed", "t", msg.T, "error", err)
			return
		}
	}
}

// cleanupConn ends open drags, frees the control channel and closes conn.
func (s *Server) cleanupConn(conn *websocket.Conn) {
	s.board.EndAll()
	s.session.Release()
	_ = conn.Close()
	s.logger.Info("control disconnected")
}

// handleMessage dispatches a single control message.
func (s *Server) handleMessage(g *GestureState, emit emitFunc, msg Message) error {
	enabled := s.session.InputEnabled()
	switch msg.T {
	case MsgDown:
		return s.applyActions(g, emit, g.HandleDown(enabled, msg.Knob, msg.ID, msg.Touches, msg.Point()))
	case MsgMove:
		return s.applyActions(g, emit, g.HandleMove(enabled, msg.ID, msg.Touches, msg.Point()))
	case MsgUp:
		return s.applyActions(g, emit, g.HandleUp(msg.ID))
	case MsgCancel:
		return s.applyActions(g, emit, g.HandleCancel())
	case MsgSetValue:
		return s.handleSetValue(emit, enabled, msg)
	case MsgBounds:
		if msg.Rect == nil || msg.Knob == "" {
			return nil
		}
		changes, err := s.board.SetBounds(msg.Knob, msg.Rect.Bounds())
		return s.emitChanges(emit, msg.Knob, changes, err)
	case MsgInputEnabled:
		if msg.Enabled == nil {
			return nil
		}
		s.session.SetInputEnabled(*msg.Enabled)
		s.logger.Info("input toggled", "enabled", *msg.Enabled)
		if !*msg.Enabled {
			if err := s.applyActions(g, emit, g.HandleCancel()); err != nil {
				return err
			}
		}
		return emit(StateEvent(*msg.Enabled))
	case MsgSync:
		return s.sendSync(emit)
	default:
		s.logger.Debug("control message ignored", "t", msg.T)
		return nil
	}
}

// handleSetValue applies a typed or numeric value to a knob.
func (s *Server) handleSetValue(emit emitFunc, enabled bool, msg Message) error {
	if !enabled || msg.Knob == "" {
		return nil
	}
	var value float64
	if msg.Value != nil {
		value = *msg.Value
	} else {
		v, ok := ParseValue(msg.Text)
		if !ok {
			s.logger.Debug("value ignored", "knob", msg.Knob, "text", msg.Text)
			return nil
		}
		value = v
	}
	changes, err := s.board.SetValue(msg.Knob, value)
	return s.emitChanges(emit, msg.Knob, changes, err)
}

// sendSync sends the input state followed by the current output of every knob.
func (s *Server) sendSync(emit emitFunc) error {
	if err := emit(StateEvent(s.session.InputEnabled())); err != nil {
		return err
	}
	return s.emitChanges(emit, "", s.board.Sync(), nil)
}

// applyActions executes gesture actions against the board.
func (s *Server) applyActions(g *GestureState, emit emitFunc, actions []Action) error {
	for _, action := range actions {
		changes, err := s.applyAction(action)
		if errors.Is(err, board.ErrUnknownKnob) {
			g.Reset()
		}
		if emitErr := s.emitChanges(emit, action.Knob, changes, err); emitErr != nil {
			return emitErr
		}
	}
	return nil
}

// applyAction executes a single action.
func (s *Server) applyAction(action Action) ([]board.Change, error) {
	switch action.Type {
	case ActBegin:
		return s.board.Begin(action.Knob, action.Point)
	case ActUpdate:
		return s.board.Update(action.Knob, action.Point)
	case ActEnd:
		return nil, s.board.End(action.Knob)
	default:
		return nil, nil
	}
}

// emitChanges forwards changes to the client. Unknown knobs are logged and skipped;
// any other error ends the connection.
func (s *Server) emitChanges(emit emitFunc, id string, changes []board.Change, err error) error {
	if err != nil {
		if errors.Is(err, board.ErrUnknownKnob) {
			s.logger.Warn("unknown knob", "knob", id)
			return nil
		}
		return err
	}
	for _, c := range changes {
		if err := emit(EventFromChange(c)); err != nil {
			return err
		}
	}
	return nil
}
