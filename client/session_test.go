package client

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"oxorooms/game/engine"
	"oxorooms/game/room"
	ws "oxorooms/transport/websocket"
)

const waitTimeout = 2 * time.Second

func startServer(t *testing.T) (*httptest.Server, *room.Registry) {
	t.Helper()
	registry := room.NewRegistry()
	hub := ws.NewHub(registry)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, registry
}

func serverWSURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

// sessionEvents collects callback invocations on buffered channels so
// tests can wait on them.
type sessionEvents struct {
	states   chan room.Snapshot
	chats    chan room.ChatMessage
	errors   chan string
	statuses chan Status
}

func newSessionEvents() *sessionEvents {
	return &sessionEvents{
		states:   make(chan room.Snapshot, 32),
		chats:    make(chan room.ChatMessage, 32),
		errors:   make(chan string, 32),
		statuses: make(chan Status, 32),
	}
}

func (e *sessionEvents) callbacks() Callbacks {
	return Callbacks{
		OnState:  func(s room.Snapshot) { e.states <- s },
		OnChat:   func(m room.ChatMessage) { e.chats <- m },
		OnError:  func(msg string) { e.errors <- msg },
		OnStatus: func(s Status) { e.statuses <- s },
	}
}

func newConnectedSession(t *testing.T, srv *httptest.Server) (*Session, *sessionEvents, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	events := newSessionEvents()
	sess := NewSession(serverWSURL(srv), store, events.callbacks())
	if err := sess.Connect(); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	t.Cleanup(func() { sess.Close() })
	return sess, events, store
}

// waitState blocks until a snapshot satisfying cond arrives.
func waitState(t *testing.T, events *sessionEvents, cond func(room.Snapshot) bool) room.Snapshot {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case snap := <-events.states:
			if cond(snap) {
				return snap
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestCreateRoomBindsSessionAndRemembersCode(t *testing.T) {
	srv, _ := startServer(t)
	sess, events, store := newConnectedSession(t, srv)

	if err := sess.CreateRoom(); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	waitState(t, events, func(s room.Snapshot) bool { return s.PlayerCount == 1 })

	if len(sess.RoomCode()) != 5 {
		t.Errorf("expected 5-character room code, got %q", sess.RoomCode())
	}
	if sess.Role() != room.RoleX {
		t.Errorf("expected role X, got %s", sess.Role())
	}
	if store.Load() != sess.RoomCode() {
		t.Errorf("store should remember %q, got %q", sess.RoomCode(), store.Load())
	}
}

func TestTwoPlayerMoveFlow(t *testing.T) {
	srv, _ := startServer(t)
	sessA, eventsA, _ := newConnectedSession(t, srv)
	sessB, eventsB, _ := newConnectedSession(t, srv)

	if err := sessA.CreateRoom(); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	waitFor(t, "room code", func() bool { return sessA.RoomCode() != "" })

	if err := sessB.JoinRoom(sessA.RoomCode()); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	waitState(t, eventsA, func(s room.Snapshot) bool { return s.PlayerCount == 2 })
	waitState(t, eventsB, func(s room.Snapshot) bool { return s.PlayerCount == 2 })

	if sessB.Role() != room.RoleO {
		t.Fatalf("expected B role O, got %s", sessB.Role())
	}

	// X to move; O is gated locally.
	waitFor(t, "A can move", sessA.CanMove)
	if sessB.CanMove() {
		t.Error("B should not be able to move before X")
	}
	if err := sessB.Move(0); err != ErrCannotMove {
		t.Errorf("expected ErrCannotMove for B, got %v", err)
	}

	if err := sessA.Move(4); err != nil {
		t.Fatalf("move failed: %v", err)
	}

	for _, events := range []*sessionEvents{eventsA, eventsB} {
		snap := waitState(t, events, func(s room.Snapshot) bool { return s.Board[4] != engine.MarkEmpty })
		if snap.Board[4] != engine.MarkX {
			t.Errorf("expected board[4] = X, got %q", snap.Board[4])
		}
		if snap.CurrentPlayer != engine.MarkO {
			t.Errorf("expected turn O, got %s", snap.CurrentPlayer)
		}
	}

	waitFor(t, "B can move", sessB.CanMove)
	if sessA.CanMove() {
		t.Error("A should be gated after moving")
	}
}

func TestChatMirror(t *testing.T) {
	srv, _ := startServer(t)
	sessA, _, _ := newConnectedSession(t, srv)
	sessB, eventsB, _ := newConnectedSession(t, srv)

	if err := sessA.CreateRoom(); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	waitFor(t, "room code", func() bool { return sessA.RoomCode() != "" })

	if err := sessB.JoinRoom(sessA.RoomCode()); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	waitFor(t, "B bound", func() bool { return sessB.RoomCode() != "" })

	if err := sessA.Chat("hello there"); err != nil {
		t.Fatalf("chat failed: %v", err)
	}

	select {
	case entry := <-eventsB.chats:
		if entry.Text != "hello there" {
			t.Errorf("expected chat text passed through, got %q", entry.Text)
		}
		if entry.Player != room.RoleX {
			t.Errorf("expected poster X, got %s", entry.Player)
		}
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for chat entry")
	}

	waitFor(t, "chat mirror", func() bool { return len(sessB.ChatHistory()) == 1 })
}

func TestResumptionJoinsRememberedRoom(t *testing.T) {
	srv, _ := startServer(t)
	sessA, _, _ := newConnectedSession(t, srv)

	if err := sessA.CreateRoom(); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	waitFor(t, "room code", func() bool { return sessA.RoomCode() != "" })
	code := sessA.RoomCode()

	// A fresh session with a remembered code rejoins without being asked.
	store := NewMemoryStore()
	store.Save(code)
	events := newSessionEvents()
	sessB := NewSession(serverWSURL(srv), store, events.callbacks())
	if err := sessB.Connect(); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	t.Cleanup(func() { sessB.Close() })

	waitFor(t, "auto-rejoin", func() bool { return sessB.RoomCode() == code })
	if sessB.Role() != room.RoleO {
		t.Errorf("expected renegotiated role O, got %s", sessB.Role())
	}
}

func TestFailedResumptionKeepsRememberedCode(t *testing.T) {
	srv, _ := startServer(t)

	store := NewMemoryStore()
	store.Save("ZZZZZ")
	events := newSessionEvents()
	sess := NewSession(serverWSURL(srv), store, events.callbacks())
	if err := sess.Connect(); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	t.Cleanup(func() { sess.Close() })

	select {
	case msg := <-events.errors:
		if msg != "room not found" {
			t.Errorf("unexpected error %q", msg)
		}
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for resumption error")
	}

	if sess.RoomCode() != "" {
		t.Error("session should stay unbound after failed resumption")
	}
	if store.Load() != "ZZZZZ" {
		t.Error("remembered code should survive a failed resumption for manual retry")
	}
}

func TestLeaveClearsRememberedCode(t *testing.T) {
	srv, registry := startServer(t)
	sess, events, store := newConnectedSession(t, srv)

	if err := sess.CreateRoom(); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	waitState(t, events, func(s room.Snapshot) bool { return s.PlayerCount == 1 })

	if err := sess.Leave(); err != nil {
		t.Fatalf("leave failed: %v", err)
	}

	if store.Load() != "" {
		t.Error("leave should clear the remembered code")
	}
	if sess.RoomCode() != "" || sess.Role() != room.RoleNone {
		t.Error("leave should clear the local binding")
	}
	if sess.Snapshot() != nil {
		t.Error("leave should drop the snapshot")
	}

	waitFor(t, "room destroyed", func() bool { return registry.Count() == 0 })
}

func TestDisconnectClearsStateAndSchedulesReconnect(t *testing.T) {
	registry := room.NewRegistry()
	hub := ws.NewHub(registry)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	srv := httptest.NewServer(mux)

	store := NewMemoryStore()
	events := newSessionEvents()
	sess := NewSession(serverWSURL(srv), store, events.callbacks())
	sess.ReconnectDelay = 50 * time.Millisecond
	if err := sess.Connect(); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	t.Cleanup(func() { sess.Close() })

	if err := sess.CreateRoom(); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	waitState(t, events, func(s room.Snapshot) bool { return s.PlayerCount == 1 })

	// The server goes away; the session must notice, clear state, and
	// report disconnected.
	srv.Close()

	waitFor(t, "disconnected status", func() bool {
		select {
		case s := <-events.statuses:
			return s == StatusDisconnected
		default:
			return false
		}
	})

	if sess.Connected() {
		t.Error("session should not report connected")
	}
	if sess.RoomCode() != "" || sess.Snapshot() != nil {
		t.Error("local room state should clear on transport loss")
	}
	if sess.CanMove() {
		t.Error("CanMove should be false while disconnected")
	}
	// The remembered code survives for resumption once a server returns.
	if store.Load() == "" {
		t.Error("remembered code should survive a disconnect")
	}
}

func TestConnectAfterCloseFails(t *testing.T) {
	srv, _ := startServer(t)
	sess, _, _ := newConnectedSession(t, srv)

	if err := sess.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := sess.Connect(); err != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestSendWithoutConnection(t *testing.T) {
	sess := NewSession("ws://127.0.0.1:1/ws", NewMemoryStore(), Callbacks{})

	if err := sess.CreateRoom(); err != ErrNotConnected {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}
