/*
Package randx provides identifier generation for the client.

It is used to tag every log line of a run with a session identifier so that
reconnects and profile edits of one terminal session can be correlated.
*/
package randx

import (
	"github.com/google/uuid"
)

// SessionID generates a standard UUID v4 string identifying one client run.
func SessionID() string {
	return uuid.New().String()
}

// IsValidSessionID checks if the given string is a well-formed session identifier.
func IsValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
