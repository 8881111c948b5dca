package timeline

import (
	"time"

	"hzchat-client/internal/app/chat"
	"hzchat-client/internal/app/identity"
)

// Timeline is the append-only list of rendered entries for one session.
// Entries are classified once, with the profile current at arrival, and never re-rendered.
type Timeline struct {
	entries []EntryView
	loc     *time.Location
}

// New creates an empty timeline that formats times in loc.
func New(loc *time.Location) *Timeline {
	return &Timeline{loc: loc}
}

// Append renders msg and adds it to the end.
func (t *Timeline) Append(msg chat.Message, local identity.Profile, hasLocal bool) EntryView {
	entry := RenderEntry(msg, local, hasLocal, t.loc)
	t.entries = append(t.entries, entry)
	return entry
}

// Len returns the number of entries.
func (t *Timeline) Len() int {
	return len(t.entries)
}

// View returns a copy of the entries.
func (t *Timeline) View() ViewModel {
	entries := make([]EntryView, len(t.entries))
	copy(entries, t.entries)

	return ViewModel{
		Entries:     entries,
		ScrollToEnd: len(entries) > 0,
	}
}
