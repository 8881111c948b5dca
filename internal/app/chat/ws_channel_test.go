package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"hzchat-client/internal/pkg/errs"
)

const waitTimeout = 3 * time.Second

// fakeServer accepts WebSocket connections and hands them to the test.
type fakeServer struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader
	conns    chan *websocket.Conn
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	fs := &fakeServer{conns: make(chan *websocket.Conn, 8)}
	fs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := fs.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		fs.conns <- conn
	}))
	t.Cleanup(fs.srv.Close)

	return fs
}

func (fs *fakeServer) url() string {
	return "ws" + strings.TrimPrefix(fs.srv.URL, "http")
}

func (fs *fakeServer) accept(t *testing.T) *websocket.Conn {
	t.Helper()

	select {
	case conn := <-fs.conns:
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for client connection")
		return nil
	}
}

func startChannel(t *testing.T, ch *WSChannel) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ch.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run returned %v", err)
			}
		case <-time.After(waitTimeout):
			t.Error("Run did not stop after cancel")
		}
	})
}

func waitSignal(t *testing.T, c <-chan struct{}, what string) {
	t.Helper()

	select {
	case <-c:
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func writeFrame(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("server write: %v", err)
	}
}

func TestWSChannelSendAndReceive(t *testing.T) {
	fs := newFakeServer(t)
	ch := NewWSChannel(WSConfig{URL: fs.url(), ReconnectInterval: 10 * time.Millisecond})

	connected := make(chan struct{}, 1)
	received := make(chan Message, 1)
	ch.OnConnect(func() { connected <- struct{}{} })
	ch.OnMessage(func(m Message) { received <- m })

	startChannel(t, ch)
	server := fs.accept(t)
	waitSignal(t, connected, "connect")

	if ch.State() != Connected {
		t.Fatalf("state = %v, want connected", ch.State())
	}

	want := Message{Name: "Ana", Avatar: "data:image/png;base64,AAAA", Text: "hi", TS: 1}
	if err := ch.Send(want); err != nil {
		t.Fatalf("send: %v", err)
	}

	_ = server.SetReadDeadline(time.Now().Add(waitTimeout))
	_, data, err := server.ReadMessage()
	if err != nil {
		t.Fatalf("server read: %v", err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Type != EventChatMessage {
		t.Fatalf("type = %q, want %q", env.Type, EventChatMessage)
	}

	// broadcast back, as the server does for every participant
	writeFrame(t, server, string(data))

	select {
	case got := <-received:
		if got != want {
			t.Fatalf("received %+v, want %+v", got, want)
		}
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for message")
	}
}

func TestWSChannelAnnounce(t *testing.T) {
	fs := newFakeServer(t)
	ch := NewWSChannel(WSConfig{URL: fs.url(), ReconnectInterval: 10 * time.Millisecond})

	connected := make(chan struct{}, 1)
	ch.OnConnect(func() { connected <- struct{}{} })

	startChannel(t, ch)
	server := fs.accept(t)
	waitSignal(t, connected, "connect")

	if err := ch.Announce(ana); err != nil {
		t.Fatalf("announce: %v", err)
	}

	_ = server.SetReadDeadline(time.Now().Add(waitTimeout))
	_, data, err := server.ReadMessage()
	if err != nil {
		t.Fatalf("server read: %v", err)
	}

	want := `{"type":"user joined","payload":{"name":"Ana","avatar":"data:image/png;base64,AAAA"}}`
	if string(data) != want {
		t.Fatalf("frame = %s, want %s", data, want)
	}
}

func TestWSChannelDeliveryOrder(t *testing.T) {
	fs := newFakeServer(t)
	ch := NewWSChannel(WSConfig{URL: fs.url(), ReconnectInterval: 10 * time.Millisecond})

	connected := make(chan struct{}, 1)
	received := make(chan Message, 8)
	ch.OnConnect(func() { connected <- struct{}{} })
	ch.OnMessage(func(m Message) { received <- m })

	startChannel(t, ch)
	server := fs.accept(t)
	waitSignal(t, connected, "connect")

	// timestamps deliberately decrease; delivery order must win
	writeFrame(t, server, `{"type":"chat message","payload":{"name":"B","avatar":"","text":"first","ts":300}}`)
	writeFrame(t, server, `not json`)
	writeFrame(t, server, `{"type":"user joined","payload":{"name":"C","avatar":"x"}}`)
	writeFrame(t, server, `{"type":"chat message","payload":{"name":"B","avatar":"","text":"second","ts":200}}`)
	writeFrame(t, server, `{"type":"chat message","payload":"broken"}`)
	writeFrame(t, server, `{"type":"chat message","payload":{"name":"B","avatar":"","text":"third","ts":100}}`)

	for _, want := range []string{"first", "second", "third"} {
		select {
		case got := <-received:
			if got.Text != want {
				t.Fatalf("got %q, want %q", got.Text, want)
			}
		case <-time.After(waitTimeout):
			t.Fatalf("timed out waiting for %q", want)
		}
	}

	select {
	case extra := <-received:
		t.Fatalf("unexpected extra message %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWSChannelSendWhileDisconnected(t *testing.T) {
	ch := NewWSChannel(WSConfig{URL: "ws://127.0.0.1:1/ws"})

	if ch.State() != Disconnected {
		t.Fatalf("initial state = %v, want disconnected", ch.State())
	}
	if err := ch.Send(Message{Text: "lost"}); !errs.Is(err, errs.ErrNotConnected) {
		t.Fatalf("send err = %v, want ErrNotConnected", err)
	}
	if err := ch.Announce(ana); !errs.Is(err, errs.ErrNotConnected) {
		t.Fatalf("announce err = %v, want ErrNotConnected", err)
	}
}

func TestWSChannelReconnects(t *testing.T) {
	fs := newFakeServer(t)
	ch := NewWSChannel(WSConfig{URL: fs.url(), ReconnectInterval: 10 * time.Millisecond})

	connected := make(chan struct{}, 4)
	disconnected := make(chan struct{}, 4)
	ch.OnConnect(func() { connected <- struct{}{} })
	ch.OnDisconnect(func() { disconnected <- struct{}{} })

	startChannel(t, ch)
	first := fs.accept(t)
	waitSignal(t, connected, "first connect")

	_ = first.Close()
	waitSignal(t, disconnected, "disconnect")

	fs.accept(t)
	waitSignal(t, connected, "reconnect")

	if ch.State() != Connected {
		t.Fatalf("state = %v, want connected", ch.State())
	}
}

func TestWSChannelDisposedHandlerNotCalled(t *testing.T) {
	fs := newFakeServer(t)
	ch := NewWSChannel(WSConfig{URL: fs.url(), ReconnectInterval: 10 * time.Millisecond})

	connected := make(chan struct{}, 1)
	kept := make(chan Message, 2)
	disposed := make(chan Message, 2)
	ch.OnConnect(func() { connected <- struct{}{} })
	ch.OnMessage(func(m Message) { kept <- m })
	dispose := ch.OnMessage(func(m Message) { disposed <- m })
	dispose()

	startChannel(t, ch)
	server := fs.accept(t)
	waitSignal(t, connected, "connect")

	writeFrame(t, server, `{"type":"chat message","payload":{"name":"B","avatar":"","text":"x","ts":1}}`)

	select {
	case <-kept:
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for message")
	}
	if len(disposed) != 0 {
		t.Fatal("disposed handler was called")
	}
}

func TestWSChannelRunStopsOnCancel(t *testing.T) {
	fs := newFakeServer(t)
	ch := NewWSChannel(WSConfig{URL: fs.url(), ReconnectInterval: 10 * time.Millisecond})

	connected := make(chan struct{}, 1)
	disconnected := make(chan struct{}, 1)
	ch.OnConnect(func() { connected <- struct{}{} })
	ch.OnDisconnect(func() { disconnected <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ch.Run(ctx) }()

	fs.accept(t)
	waitSignal(t, connected, "connect")

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run = %v, want nil", err)
		}
	case <-time.After(waitTimeout):
		t.Fatal("Run did not return after cancel")
	}
	waitSignal(t, disconnected, "disconnect")

	if ch.State() != Disconnected {
		t.Fatalf("state = %v, want disconnected", ch.State())
	}
}
