package header

import (
	"testing"

	"hzchat-client/internal/app/chat"
	"hzchat-client/internal/app/identity"
)

func TestHeaderInitialView(t *testing.T) {
	v := New().View()

	if v.HasProfile || v.Name != "" || v.Glyph != "" {
		t.Fatalf("unexpected profile in initial view: %+v", v)
	}
	if v.State != chat.Disconnected || v.Status != "disconnected" {
		t.Fatalf("state = %v %q, want disconnected", v.State, v.Status)
	}
}

func TestHeaderTransitions(t *testing.T) {
	h := New()

	h.SetProfile(identity.Profile{Name: "ana", Avatar: "data:image/png;base64,AAAA"})
	h.SetConnection(chat.Connected)

	v := h.View()
	if !v.HasProfile || v.Name != "ana" || v.Glyph != "A" {
		t.Fatalf("profile view = %+v", v)
	}
	if v.Status != "connected" || h.Connection() != chat.Connected {
		t.Fatalf("status = %q, want connected", v.Status)
	}

	h.SetConnection(chat.Disconnected)
	if got := h.View().Status; got != "disconnected" {
		t.Fatalf("status = %q, want disconnected", got)
	}
}
