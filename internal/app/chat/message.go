/*
Package chat contains the messaging protocol of the client: the wire envelope and event
names, the Channel contract over the persistent connection, its WebSocket implementation,
and the outbound guard that turns composer input into chat messages.

This file defines the message and envelope types exchanged with the server.
*/
package chat

import (
	"encoding/json"
	"fmt"
)

// Event names used as the envelope type on the wire.
const (
	// EventUserJoined announces a newly entered or edited identity (client to server).
	EventUserJoined = "user joined"

	// EventChatMessage carries one user-authored message (both directions).
	EventChatMessage = "chat message"
)

// Message is one chat message, both on the wire and in the timeline.
// Sender identity is copied at send time, never referenced.
type Message struct {
	// Name is the sender's display name at send time.
	Name string `json:"name"`

	// Avatar is the sender's inline-encoded avatar at send time.
	Avatar string `json:"avatar"`

	// Text is the trimmed message body.
	Text string `json:"text"`

	// TS is the submission time in milliseconds since the Unix epoch. Display only.
	TS int64 `json:"ts"`
}

// Envelope is the frame format of every WebSocket text message.
type Envelope struct {
	// Type is the event name (see EventUserJoined, EventChatMessage).
	Type string `json:"type"`

	// Payload is the event body, decoded according to Type.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EncodeEnvelope marshals payload into an envelope of the given event type.
func EncodeEnvelope(eventType string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %q payload: %w", eventType, err)
	}

	frame, err := json.Marshal(Envelope{Type: eventType, Payload: body})
	if err != nil {
		return nil, fmt.Errorf("encode %q envelope: %w", eventType, err)
	}

	return frame, nil
}
