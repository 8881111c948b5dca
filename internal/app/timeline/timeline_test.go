package timeline

import (
	"testing"

	"hzchat-client/internal/app/chat"
	"hzchat-client/internal/app/identity"
)

func TestTimelineAppendOnly(t *testing.T) {
	tl := New(utc)

	tl.Append(chat.Message{Name: "Bob", Text: "first", TS: 5000}, ana, true)
	tl.Append(chat.Message{Name: "Ana", Avatar: ana.Avatar, Text: "second", TS: 1000}, ana, true)

	vm := tl.View()
	if tl.Len() != 2 || len(vm.Entries) != 2 {
		t.Fatalf("len = %d, want 2", tl.Len())
	}
	if vm.Entries[0].Text != "first" || vm.Entries[1].Text != "second" {
		t.Fatalf("order = %q, %q", vm.Entries[0].Text, vm.Entries[1].Text)
	}
	if vm.Entries[0].IsSelf() || !vm.Entries[1].IsSelf() {
		t.Fatal("unexpected classification")
	}
	if !vm.ScrollToEnd {
		t.Fatal("expected ScrollToEnd after append")
	}
}

func TestTimelineKeepsClassificationAtArrival(t *testing.T) {
	tl := New(utc)
	msg := chat.Message{Name: "Ana", Avatar: ana.Avatar, Text: "mine"}

	tl.Append(msg, ana, true)

	// profile changes afterwards; the earlier entry stays self
	renamed := identity.Profile{Name: "Ana B", Avatar: ana.Avatar}
	tl.Append(msg, renamed, true)

	vm := tl.View()
	if !vm.Entries[0].IsSelf() {
		t.Fatal("first entry must stay self")
	}
	if vm.Entries[1].IsSelf() {
		t.Fatal("second entry must be other under the new profile")
	}
}

func TestTimelineViewIsCopy(t *testing.T) {
	tl := New(utc)
	tl.Append(chat.Message{Name: "Bob", Text: "x"}, ana, true)

	vm := tl.View()
	vm.Entries[0].Text = "mutated"

	if tl.View().Entries[0].Text != "x" {
		t.Fatal("View must not expose internal storage")
	}
}
