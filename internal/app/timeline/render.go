/*
Package timeline turns delivered chat messages into display entries.

Rendering is pure: the caller supplies the messages in delivery order, the local profile
used for self/other classification and the time zone for the time label. Nothing is
sorted, merged or dropped.
*/
package timeline

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"hzchat-client/internal/app/chat"
	"hzchat-client/internal/app/identity"
)

const (
	// AnonymousName labels other senders whose name is empty.
	AnonymousName = "Anonymous"

	// PlaceholderGlyph stands in for the avatar when neither avatar nor name exist.
	PlaceholderGlyph = "?"

	timeLayout = "15:04"
)

// Side tells on which side of the timeline an entry is drawn.
type Side int

const (
	// Other entries are drawn avatar first, on the left.
	Other Side = iota

	// Self entries are drawn bubble first, on the right.
	Self
)

// EntryView is the display form of one message.
type EntryView struct {
	// Avatar is the sender's image data URL, empty when Glyph is used instead.
	Avatar string

	// Glyph is the one-character avatar substitute, empty when Avatar is set.
	Glyph string

	// Name is the sender label, empty for self entries.
	Name string

	// Text is the message body, kept literal.
	Text string

	// Time is the zero-padded 24-hour HH:MM label in the viewer's zone.
	Time string

	// Side is Self for the local user's messages.
	Side Side
}

// IsSelf reports whether the entry was sent by the local user.
func (e EntryView) IsSelf() bool {
	return e.Side == Self
}

// ViewModel is a rendered timeline.
type ViewModel struct {
	// Entries are in delivery order.
	Entries []EntryView

	// ScrollToEnd asks the view to show the newest entry.
	ScrollToEnd bool
}

// Classify reports whether msg was sent by the local user: a local profile exists and
// both name and avatar match it exactly.
func Classify(msg chat.Message, local identity.Profile, hasLocal bool) Side {
	if hasLocal && msg.Name == local.Name && msg.Avatar == local.Avatar {
		return Self
	}
	return Other
}

// RenderEntry builds the display form of one message.
func RenderEntry(msg chat.Message, local identity.Profile, hasLocal bool, loc *time.Location) EntryView {
	view := EntryView{
		Text: msg.Text,
		Time: FormatTime(msg.TS, loc),
		Side: Classify(msg, local, hasLocal),
	}

	if msg.Avatar != "" {
		view.Avatar = msg.Avatar
	} else {
		view.Glyph = Initial(msg.Name)
	}

	if view.Side == Other {
		view.Name = msg.Name
		if view.Name == "" {
			view.Name = AnonymousName
		}
	}

	return view
}

// RenderTimeline renders messages in the order given.
func RenderTimeline(messages []chat.Message, local identity.Profile, hasLocal bool, loc *time.Location) ViewModel {
	entries := make([]EntryView, 0, len(messages))
	for _, m := range messages {
		entries = append(entries, RenderEntry(m, local, hasLocal, loc))
	}

	return ViewModel{
		Entries:     entries,
		ScrollToEnd: len(entries) > 0,
	}
}

// FormatTime formats a millisecond timestamp as HH:MM in loc. A nil loc means time.Local.
func FormatTime(ts int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ts).In(loc).Format(timeLayout)
}

// Initial returns the upper-cased first letter of name, or PlaceholderGlyph when name is blank.
func Initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return PlaceholderGlyph
	}

	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return PlaceholderGlyph
	}
	return string(unicode.ToUpper(r))
}
