package chat

import (
	"errors"
	"testing"
	"time"

	"hzchat-client/internal/app/identity"
	"hzchat-client/internal/pkg/errs"
)

type memStore struct {
	profile identity.Profile
	ok      bool
}

func (s *memStore) Load() (identity.Profile, bool) { return s.profile, s.ok }

func (s *memStore) Save(p identity.Profile) error {
	s.profile, s.ok = p, true
	return nil
}

type recordingSender struct {
	announced []identity.Profile
	sent      []Message
	err       error
}

func (r *recordingSender) Announce(p identity.Profile) error {
	r.announced = append(r.announced, p)
	return r.err
}

func (r *recordingSender) Send(m Message) error {
	r.sent = append(r.sent, m)
	return r.err
}

var ana = identity.Profile{Name: "Ana", Avatar: "data:image/png;base64,AAAA"}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestComposerIgnoresBlankInput(t *testing.T) {
	sender := &recordingSender{}
	c := NewComposer(&memStore{profile: ana, ok: true}, sender, nil)

	for _, text := range []string{"", "   ", "\n\t "} {
		outcome, err := c.Submit(text)
		if err != nil {
			t.Fatalf("Submit(%q) error: %v", text, err)
		}
		if outcome != Ignored {
			t.Fatalf("Submit(%q) = %v, want ignored", text, outcome)
		}
	}

	if len(sender.sent) != 0 {
		t.Fatalf("expected no messages, got %d", len(sender.sent))
	}
}

func TestComposerBlocksWithoutProfile(t *testing.T) {
	sender := &recordingSender{}
	c := NewComposer(&memStore{}, sender, nil)

	outcome, err := c.Submit("hello")
	if outcome != Blocked {
		t.Fatalf("outcome = %v, want blocked", outcome)
	}
	if !errs.Is(err, errs.ErrProfileRequired) {
		t.Fatalf("err = %v, want ErrProfileRequired", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no messages, got %d", len(sender.sent))
	}
}

func TestComposerSendsTrimmedMessage(t *testing.T) {
	sender := &recordingSender{}
	at := time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC)
	c := NewComposer(&memStore{profile: ana, ok: true}, sender, fixedClock(at))

	outcome, err := c.Submit("  hi there \n")
	if err != nil || outcome != Sent {
		t.Fatalf("Submit = %v, %v; want sent, nil", outcome, err)
	}

	want := Message{Name: ana.Name, Avatar: ana.Avatar, Text: "hi there", TS: at.UnixMilli()}
	if len(sender.sent) != 1 || sender.sent[0] != want {
		t.Fatalf("sent = %+v, want [%+v]", sender.sent, want)
	}
	if len(sender.announced) != 0 {
		t.Fatalf("composer must not announce, got %d", len(sender.announced))
	}
}

func TestComposerTimestampsIncrease(t *testing.T) {
	sender := &recordingSender{}
	at := time.UnixMilli(1_700_000_000_000)
	c := NewComposer(&memStore{profile: ana, ok: true}, sender, fixedClock(at))

	for i := 0; i < 3; i++ {
		if _, err := c.Submit("tick"); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	for i := 1; i < len(sender.sent); i++ {
		if sender.sent[i].TS <= sender.sent[i-1].TS {
			t.Fatalf("ts not increasing: %d then %d", sender.sent[i-1].TS, sender.sent[i].TS)
		}
	}
	if sender.sent[0].TS != at.UnixMilli() {
		t.Fatalf("first ts = %d, want %d", sender.sent[0].TS, at.UnixMilli())
	}
}

func TestComposerTransportErrorStillSent(t *testing.T) {
	sender := &recordingSender{err: errors.New("offline")}
	c := NewComposer(&memStore{profile: ana, ok: true}, sender, nil)

	outcome, err := c.Submit("hello")
	if err != nil {
		t.Fatalf("transport errors must not surface, got %v", err)
	}
	if outcome != Sent {
		t.Fatalf("outcome = %v, want sent", outcome)
	}
}

func TestComposerUsesProfileAtSendTime(t *testing.T) {
	store := &memStore{profile: ana, ok: true}
	sender := &recordingSender{}
	c := NewComposer(store, sender, nil)

	if _, err := c.Submit("one"); err != nil {
		t.Fatal(err)
	}
	bob := identity.Profile{Name: "Bob", Avatar: "data:image/gif;base64,R0lG"}
	if err := store.Save(bob); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Submit("two"); err != nil {
		t.Fatal(err)
	}

	if sender.sent[0].Name != "Ana" || sender.sent[1].Name != "Bob" {
		t.Fatalf("names = %q, %q; want Ana, Bob", sender.sent[0].Name, sender.sent[1].Name)
	}
}
