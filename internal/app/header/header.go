/*
Package header holds the session header state: who the local user is and whether the
connection to the chat server is up.
*/
package header

import (
	"hzchat-client/internal/app/chat"
	"hzchat-client/internal/app/identity"
	"hzchat-client/internal/app/timeline"
)

// View is what the header displays.
type View struct {
	// Name is the local display name, empty before the first entry.
	Name string

	// Avatar is the local avatar data URL.
	Avatar string

	// Glyph is the initial shown when the avatar cannot be drawn.
	Glyph string

	// HasProfile reports whether a profile has been entered.
	HasProfile bool

	// State is the connection state.
	State chat.ConnectionState

	// Status is the status text for State.
	Status string
}

// Header tracks the current profile and connection state.
type Header struct {
	profile    identity.Profile
	hasProfile bool
	state      chat.ConnectionState
}

// New creates a header in the disconnected state with no profile.
func New() *Header {
	return &Header{}
}

// SetProfile replaces the displayed profile.
func (h *Header) SetProfile(p identity.Profile) {
	h.profile = p
	h.hasProfile = true
}

// SetConnection records a connection transition.
func (h *Header) SetConnection(s chat.ConnectionState) {
	h.state = s
}

// Connection returns the last recorded connection state.
func (h *Header) Connection() chat.ConnectionState {
	return h.state
}

// View returns the display state.
func (h *Header) View() View {
	v := View{
		State:  h.state,
		Status: h.state.String(),
	}

	if h.hasProfile {
		v.Name = h.profile.Name
		v.Avatar = h.profile.Avatar
		v.Glyph = timeline.Initial(h.profile.Name)
		v.HasProfile = true
	}

	return v
}
