package chat

import (
	"encoding/json"
	"testing"
)

func TestSubscribersOrderAndDispose(t *testing.T) {
	var s subscribers
	var got []string

	d1 := s.OnMessage(func(m Message) { got = append(got, "a:"+m.Text) })
	s.OnMessage(func(m Message) { got = append(got, "b:"+m.Text) })

	s.emitMessage(Message{Text: "1"})
	d1()
	d1()
	s.emitMessage(Message{Text: "2"})

	want := []string{"a:1", "b:1", "b:2"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSubscribersHandlerMayDisposeItself(t *testing.T) {
	var s subscribers
	calls := 0

	var d Disposer
	d = s.OnConnect(func() {
		calls++
		d()
	})

	s.emitConnect()
	s.emitConnect()

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDisposeCombines(t *testing.T) {
	var s subscribers
	connects, disconnects := 0, 0

	d := Dispose(
		s.OnConnect(func() { connects++ }),
		s.OnDisconnect(func() { disconnects++ }),
		nil,
	)
	s.emitConnect()
	s.emitDisconnect()
	d()
	s.emitConnect()
	s.emitDisconnect()

	if connects != 1 || disconnects != 1 {
		t.Fatalf("connects=%d disconnects=%d, want 1 and 1", connects, disconnects)
	}
}

func TestConnectionStateString(t *testing.T) {
	if Disconnected.String() != "disconnected" || Connected.String() != "connected" {
		t.Fatalf("unexpected strings %q %q", Disconnected, Connected)
	}
	var zero ConnectionState
	if zero != Disconnected {
		t.Fatal("zero value must be Disconnected")
	}
}

func TestEncodeEnvelope(t *testing.T) {
	frame, err := EncodeEnvelope(EventChatMessage, Message{Name: "Ana", Avatar: "a", Text: "hi", TS: 42})
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	if err := json.Unmarshal(frame, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["type"] != "chat message" {
		t.Fatalf("type = %v", raw["type"])
	}
	payload, ok := raw["payload"].(map[string]any)
	if !ok {
		t.Fatalf("payload missing: %s", frame)
	}
	for _, key := range []string{"name", "avatar", "text", "ts"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("payload lacks %q: %s", key, frame)
		}
	}
	if payload["ts"].(float64) != 42 {
		t.Fatalf("ts = %v", payload["ts"])
	}
}
