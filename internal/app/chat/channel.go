/*
Package chat contains the messaging protocol of the client.

This file defines the Channel contract and the subscriber registry shared by its
implementations. Handlers are registered explicitly and removed through the
Disposer handle returned at registration.
*/
package chat

import (
	"sync"

	"hzchat-client/internal/app/identity"
)

// ConnectionState is the transport status shown in the session header.
type ConnectionState int

const (
	// Disconnected is the initial state and the state after the connection drops.
	Disconnected ConnectionState = iota

	// Connected means an open connection to the server exists.
	Connected
)

// String returns the status text for the state.
func (s ConnectionState) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Disposer removes the registration it was returned for. Calling it more than once is a no-op.
type Disposer func()

// Sender is the outbound half of a Channel.
type Sender interface {
	// Announce notifies the server of a newly submitted identity. Fire and forget.
	Announce(p identity.Profile) error

	// Send transmits one chat message. Fire and forget: no acknowledgement, no retry.
	Send(m Message) error
}

// Channel is the bidirectional event channel to the chat server.
type Channel interface {
	Sender

	// OnMessage registers a handler invoked once per delivered chat message, in delivery order.
	OnMessage(h func(Message)) Disposer

	// OnConnect registers a handler invoked whenever the connection is established.
	OnConnect(h func()) Disposer

	// OnDisconnect registers a handler invoked whenever the connection is lost.
	OnDisconnect(h func()) Disposer
}

// Dispose combines several disposers into one that releases all of them.
func Dispose(ds ...Disposer) Disposer {
	return func() {
		for _, d := range ds {
			if d != nil {
				d()
			}
		}
	}
}

// handlerList is an ordered set of handlers with stable identifiers.
type handlerList[T any] struct {
	next    uint64
	entries []handlerEntry[T]
}

type handlerEntry[T any] struct {
	id uint64
	fn T
}

func (l *handlerList[T]) add(fn T) uint64 {
	l.next++
	l.entries = append(l.entries, handlerEntry[T]{id: l.next, fn: fn})
	return l.next
}

func (l *handlerList[T]) remove(id uint64) {
	for i, e := range l.entries {
		if e.id == id {
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			return
		}
	}
}

func (l *handlerList[T]) snapshot() []T {
	out := make([]T, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.fn
	}
	return out
}

// subscribers is the registry embedded by Channel implementations.
type subscribers struct {
	mu         sync.Mutex
	message    handlerList[func(Message)]
	connect    handlerList[func()]
	disconnect handlerList[func()]
}

func (s *subscribers) OnMessage(h func(Message)) Disposer {
	s.mu.Lock()
	id := s.message.add(h)
	s.mu.Unlock()

	return s.disposer(func() { s.message.remove(id) })
}

func (s *subscribers) OnConnect(h func()) Disposer {
	s.mu.Lock()
	id := s.connect.add(h)
	s.mu.Unlock()

	return s.disposer(func() { s.connect.remove(id) })
}

func (s *subscribers) OnDisconnect(h func()) Disposer {
	s.mu.Lock()
	id := s.disconnect.add(h)
	s.mu.Unlock()

	return s.disposer(func() { s.disconnect.remove(id) })
}

func (s *subscribers) disposer(remove func()) Disposer {
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			remove()
			s.mu.Unlock()
		})
	}
}

// emitMessage calls handlers outside the lock so a handler may dispose itself.
func (s *subscribers) emitMessage(m Message) {
	s.mu.Lock()
	handlers := s.message.snapshot()
	s.mu.Unlock()

	for _, h := range handlers {
		h(m)
	}
}

func (s *subscribers) emitConnect() {
	s.mu.Lock()
	handlers := s.connect.snapshot()
	s.mu.Unlock()

	for _, h := range handlers {
		h()
	}
}

func (s *subscribers) emitDisconnect() {
	s.mu.Lock()
	handlers := s.disconnect.snapshot()
	s.mu.Unlock()

	for _, h := range handlers {
		h()
	}
}
