package randx

import "testing"

func TestSessionIDIsUniqueAndValid(t *testing.T) {
	a, b := SessionID(), SessionID()
	if a == b {
		t.Fatalf("expected distinct ids, got %q twice", a)
	}
	if !IsValidSessionID(a) {
		t.Fatalf("generated id %q is not valid", a)
	}
	if IsValidSessionID("not-a-uuid") {
		t.Fatal("expected malformed id to be rejected")
	}
}
