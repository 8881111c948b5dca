/*
Package identity owns the local user profile (display name and avatar image) and its
durable persistence across restarts of the client.

It defines the Profile value, the Store contract used by every other component to read
and replace it, the pebble-backed implementation, and the conversion of image files to
the inline-encoded form carried with every chat message.
*/
package identity

import "strings"

// Profile represents the identity of the local chat participant.
// Fields use JSON tags matching both the persisted record and the wire payload.
type Profile struct {
	// Name is the display name, stored trimmed.
	Name string `json:"name"`

	// Avatar is the inline-encoded image (a base64 data URL).
	Avatar string `json:"avatar"`
}

// Complete reports whether both the name and the avatar are present.
// Only complete profiles are ever persisted.
func (p Profile) Complete() bool {
	return strings.TrimSpace(p.Name) != "" && p.Avatar != ""
}

// Store is the read/write contract of the local profile.
type Store interface {
	// Load returns the persisted profile. It reports false when no profile exists
	// or the stored record is not a well-formed, complete profile; it never fails.
	Load() (Profile, bool)

	// Save replaces any previously persisted profile (last write wins).
	Save(p Profile) error
}
