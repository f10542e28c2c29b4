package control

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/frudas24/knobslice/internal/board"
	"github.com/frudas24/knobslice/internal/bounds"
	"github.com/frudas24/knobslice/internal/knob"
	"github.com/frudas24/knobslice/internal/session"
	"github.com/frudas24/knobslice/internal/testutil"
	"github.com/gorilla/websocket"
)

// harness bundles a server wired to a fake driver with a recorded event stream.
type harness struct {
	server   *Server
	driver   *testutil.FakeDriver
	session  *session.Session
	gestures *GestureState
	events   []Event
}

// newHarness returns a harness with input enabled and no password.
func newHarness() *harness {
	h := &harness{
		driver:   &testutil.FakeDriver{},
		session:  session.New(session.Options{InputEnabled: true}),
		gestures: NewGestureState(),
	}
	h.server = NewServer(h.session, h.driver, nil)
	return h
}

// send dispatches msg as if read from the socket.
func (h *harness) send(t *testing.T, msg Message) {
	t.Helper()
	err := h.server.handleMessage(h.gestures, func(evt Event) error {
		h.events = append(h.events, evt)
		return nil
	}, msg)
	if err != nil {
		t.Fatalf("handleMessage(%s) failed: %v", msg.T, err)
	}
}

// TestHandle_DragSequence verifies down, move and up drive the board in order.
func TestHandle_DragSequence(t *testing.T) {
	h := newHarness()
	h.driver.Changes = []board.Change{{Knob: "vol", Kind: board.ChangeAngle, Angle: 10}}

	h.send(t, Message{T: MsgDown, ID: 1, Knob: "vol", X: 10, Y: 20})
	h.send(t, Message{T: MsgMove, ID: 1, X: 15, Y: 25})
	h.send(t, Message{T: MsgUp, ID: 1})

	names := strings.Join(h.driver.Names(), ",")
	if names != "Begin,Update,End" {
		t.Fatalf("unexpected call sequence %s", names)
	}
	if h.driver.Calls[1].Knob != "vol" || h.driver.Calls[1].Point != (knob.Point{X: 15, Y: 25}) {
		t.Fatalf("unexpected update call %+v", h.driver.Calls[1])
	}
	if len(h.events) != 2 || h.events[0].T != EvtAngle || *h.events[0].Angle != 10 {
		t.Fatalf("unexpected events %+v", h.events)
	}
}

// TestHandle_InputDisabled verifies pointer and value input are dropped.
func TestHandle_InputDisabled(t *testing.T) {
	h := newHarness()
	h.session.SetInputEnabled(false)

	h.send(t, Message{T: MsgDown, ID: 1, Knob: "vol", X: 10, Y: 20})
	h.send(t, Message{T: MsgSetValue, Knob: "vol", Text: "5"})
	if len(h.driver.Calls) != 0 {
		t.Fatalf("expected no calls, got %+v", h.driver.Calls)
	}
}

// TestHandle_DisableInputEndsDrag verifies turning input off closes the open session.
func TestHandle_DisableInputEndsDrag(t *testing.T) {
	h := newHarness()
	h.send(t, Message{T: MsgDown, ID: 1, Knob: "vol", X: 10, Y: 20})

	off := false
	h.send(t, Message{T: MsgInputEnabled, Enabled: &off})

	if names := strings.Join(h.driver.Names(), ","); names != "Begin,End" {
		t.Fatalf("unexpected call sequence %s", names)
	}
	if h.session.InputEnabled() {
		t.Fatalf("expected input disabled")
	}
	last := h.events[len(h.events)-1]
	if last.T != EvtState || last.InputEnabled == nil || *last.InputEnabled {
		t.Fatalf("expected disabled state event, got %+v", last)
	}
}

// TestHandle_SetValue verifies numeric values win over text and bad text is ignored.
func TestHandle_SetValue(t *testing.T) {
	h := newHarness()
	v := 7.5
	h.send(t, Message{T: MsgSetValue, Knob: "vol", Value: &v, Text: "99"})
	h.send(t, Message{T: MsgSetValue, Knob: "vol", Text: " 42 "})
	h.send(t, Message{T: MsgSetValue, Knob: "vol", Text: "loud"})

	if len(h.driver.Calls) != 2 {
		t.Fatalf("expected 2 calls, got %+v", h.driver.Calls)
	}
	if h.driver.Calls[0].Value != 7.5 || h.driver.Calls[1].Value != 42 {
		t.Fatalf("unexpected values %+v", h.driver.Calls)
	}
}

// TestHandle_Bounds verifies bounds messages reach the board.
func TestHandle_Bounds(t *testing.T) {
	h := newHarness()
	h.send(t, Message{T: MsgBounds, Knob: "vol", Rect: &Rect{X: 1, Y: 2, W: 3, H: 4}})
	h.send(t, Message{T: MsgBounds, Knob: "vol"})

	if len(h.driver.Calls) != 1 || h.driver.Calls[0].Rect != (bounds.Rect{X: 1, Y: 2, W: 3, H: 4}) {
		t.Fatalf("unexpected calls %+v", h.driver.Calls)
	}
}

// TestHandle_Sync verifies sync sends the state then every knob output.
func TestHandle_Sync(t *testing.T) {
	h := newHarness()
	h.driver.SyncChanges = []board.Change{
		{Knob: "vol", Kind: board.ChangeAngle, Angle: 225},
		{Knob: "vol", Kind: board.ChangeValue, Value: 0},
	}
	h.send(t, Message{T: MsgSync})

	if len(h.events) != 3 || h.events[0].T != EvtState || h.events[1].T != EvtAngle || h.events[2].T != EvtValue {
		t.Fatalf("unexpected events %+v", h.events)
	}
}

// TestHandle_UnknownKnobContinues verifies unknown knobs are skipped and the drag reset.
func TestHandle_UnknownKnobContinues(t *testing.T) {
	h := newHarness()
	h.driver.Err = fmt.Errorf("%w: %q", board.ErrUnknownKnob, "ghost")

	h.send(t, Message{T: MsgDown, ID: 1, Knob: "ghost", X: 1, Y: 1})
	if _, ok := h.gestures.Active(); ok {
		t.Fatalf("expected drag on unknown knob to be reset")
	}
	h.send(t, Message{T: MsgSetValue, Knob: "ghost", Text: "1"})
}

// TestHandle_DriverErrorEndsConnection verifies other driver errors are returned.
func TestHandle_DriverErrorEndsConnection(t *testing.T) {
	h := newHarness()
	h.driver.Err = errors.New("boom")
	err := h.server.handleMessage(h.gestures, func(Event) error { return nil }, Message{T: MsgDown, ID: 1, Knob: "vol"})
	if err == nil {
		t.Fatalf("expected error")
	}
}

// TestHandle_UnknownType verifies unknown message types are ignored.
func TestHandle_UnknownType(t *testing.T) {
	h := newHarness()
	h.send(t, Message{T: "wiggle"})
	if len(h.driver.Calls) != 0 || len(h.events) != 0 {
		t.Fatalf("expected nothing, got calls=%+v events=%+v", h.driver.Calls, h.events)
	}
}

// liveBoard returns a board with one angle-only knob centered at (100,100).
func liveBoard() *board.Board {
	return board.New([]board.Definition{{
		ID:       "dial",
		Settings: knob.Settings{Root: "#dial"},
		Bounds:   &bounds.Rect{W: 200, H: 200},
	}}, nil)
}

// dial connects a websocket client to srv.
func dial(t *testing.T, srv *httptest.Server) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	return websocket.DefaultDialer.Dial(url, nil)
}

// readEvent reads one event with a deadline.
func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var evt Event
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return evt
}

// TestServer_DragOverWebsocket verifies a full drag round trip over a real socket.
func TestServer_DragOverWebsocket(t *testing.T) {
	sess := session.New(session.Options{InputEnabled: true})
	srv := httptest.NewServer(NewServer(sess, liveBoard(), nil))
	defer srv.Close()

	conn, _, err := dial(t, srv)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	if evt := readEvent(t, conn); evt.T != EvtState || evt.InputEnabled == nil || !*evt.InputEnabled {
		t.Fatalf("expected enabled state event, got %+v", evt)
	}
	if evt := readEvent(t, conn); evt.T != EvtAngle || evt.Knob != "dial" || *evt.Angle != 90 {
		t.Fatalf("expected initial angle 90, got %+v", evt)
	}

	for _, msg := range []Message{
		{T: MsgDown, ID: 1, Knob: "dial", X: 200, Y: 100},
		{T: MsgMove, ID: 1, X: 100, Y: 0},
		{T: MsgUp, ID: 1},
	} {
		if err := conn.WriteJSON(msg); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	evt := readEvent(t, conn)
	if evt.T != EvtAngle || evt.Angle == nil || *evt.Angle < 179.999 || *evt.Angle > 180.001 {
		t.Fatalf("expected angle 180, got %+v", evt)
	}
	if evt.Rotation == nil || *evt.Rotation > -89.999 || *evt.Rotation < -90.001 {
		t.Fatalf("expected rotation -90, got %+v", evt)
	}
}

// TestServer_MalformedFrameKeepsDrag verifies a bad frame is skipped without ending the drag.
func TestServer_MalformedFrameKeepsDrag(t *testing.T) {
	sess := session.New(session.Options{InputEnabled: true})
	srv := httptest.NewServer(NewServer(sess, liveBoard(), nil))
	defer srv.Close()

	conn, _, err := dial(t, srv)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	readEvent(t, conn)
	readEvent(t, conn)

	if err := conn.WriteJSON(Message{T: MsgDown, ID: 1, Knob: "dial", X: 200, Y: 100}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	for _, frame := range []string{`{"t":"move","id":1,"x":"oops"}`, `{"t":`} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	if err := conn.WriteJSON(Message{T: MsgMove, ID: 1, X: 100, Y: 0}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	evt := readEvent(t, conn)
	if evt.T != EvtAngle || evt.Angle == nil || *evt.Angle < 179.999 || *evt.Angle > 180.001 {
		t.Fatalf("expected angle 180 after malformed frames, got %+v", evt)
	}
	if !sess.Snapshot().Connected {
		t.Fatalf("expected control connection to stay open")
	}
}

// TestServer_SingleConnection verifies a second client is refused while one is active.
func TestServer_SingleConnection(t *testing.T) {
	sess := session.New(session.Options{InputEnabled: true})
	srv := httptest.NewServer(NewServer(sess, liveBoard(), nil))
	defer srv.Close()

	first, _, err := dial(t, srv)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	readEvent(t, first)

	_, resp, err := dial(t, srv)
	if err == nil {
		t.Fatalf("expected second dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %+v", resp)
	}

	_ = first.Close()
	deadline := time.Now().Add(2 * time.Second)
	for sess.Snapshot().Connected {
		if time.Now().After(deadline) {
			t.Fatalf("expected control channel to be released")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// TestServer_Unauthorized verifies the socket requires a login in password mode.
func TestServer_Unauthorized(t *testing.T) {
	sess := session.New(session.Options{Password: "pw", PasswordMode: true, InputEnabled: true})
	srv := httptest.NewServer(NewServer(sess, liveBoard(), nil))
	defer srv.Close()

	_, resp, err := dial(t, srv)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}
}

// TestServer_DisconnectEndsSessions verifies a dropped client leaves no knob dragging.
func TestServer_DisconnectEndsSessions(t *testing.T) {
	sess := session.New(session.Options{InputEnabled: true})
	b := liveBoard()
	srv := httptest.NewServer(NewServer(sess, b, nil))
	defer srv.Close()

	conn, _, err := dial(t, srv)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	readEvent(t, conn)
	readEvent(t, conn)
	if err := conn.WriteJSON(Message{T: MsgDown, ID: 1, Knob: "dial", X: 150, Y: 100}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := conn.WriteJSON(Message{T: MsgSync}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	readEvent(t, conn)
	if st := b.Snapshot()[0].State; st != "dragging" {
		t.Fatalf("expected dragging before disconnect, got %s", st)
	}
	_ = conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for sess.Snapshot().Connected || b.Snapshot()[0].State != "idle" {
		if time.Now().After(deadline) {
			t.Fatalf("expected session to end after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// recordingPublisher collects published events across goroutines.
type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

// Publish records evt.
func (p *recordingPublisher) Publish(evt Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

// count returns the number of recorded events.
func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// TestServer_PublishesEvents verifies outbound events are mirrored to the publisher.
func TestServer_PublishesEvents(t *testing.T) {
	sess := session.New(session.Options{InputEnabled: true})
	pub := &recordingPublisher{}
	server := NewServer(sess, liveBoard(), nil)
	server.PublishTo(pub)
	srv := httptest.NewServer(server)
	defer srv.Close()

	conn, _, err := dial(t, srv)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	readEvent(t, conn)
	readEvent(t, conn)

	if got := pub.count(); got != 2 {
		t.Fatalf("expected 2 published events, got %d", got)
	}
}
