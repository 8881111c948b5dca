/*
Package chat contains the messaging protocol of the client.

This file defines WSChannel, the Channel implementation over a gorilla WebSocket
connection. It owns the dial/reconnect loop and, per connection, the read and write
pumps that move envelopes between the socket and the subscribers.
*/
package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"hzchat-client/internal/app/identity"
	"hzchat-client/internal/pkg/errs"
	"hzchat-client/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed between messages (or pongs) from the server.
	pongWait = 60 * time.Second

	// frequency at which the client sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// capacity of the per-connection outbound queue.
	sendQueueSize = 256

	// DefaultReconnectInterval is the minimum delay between two dial attempts.
	DefaultReconnectInterval = 2 * time.Second

	// DefaultReadLimit is the maximum inbound frame size; frames carry inline avatars.
	DefaultReadLimit = 4 << 20
)

// WSConfig holds the settings of a WSChannel.
type WSConfig struct {
	// URL is the ws:// or wss:// endpoint of the chat server.
	URL string

	// ReconnectInterval paces dial attempts. Zero means DefaultReconnectInterval.
	ReconnectInterval time.Duration

	// ReadLimit caps the size of inbound frames. Zero means DefaultReadLimit.
	ReadLimit int64

	// Header is sent with the opening handshake.
	Header http.Header

	// Dialer overrides the WebSocket dialer.
	Dialer *websocket.Dialer
}

// WSChannel is a Channel backed by a reconnecting WebSocket connection.
// Outbound events issued while disconnected are dropped.
type WSChannel struct {
	subscribers

	// endpoint and handshake settings.
	url    string
	header http.Header
	dialer *websocket.Dialer

	// maximum allowed size (in bytes) of a frame sent by the server.
	readLimit int64

	// reconnect paces dial attempts, including the first one.
	reconnect *rate.Limiter

	// mu protects link.
	mu sync.RWMutex

	// link is the live connection, nil while disconnected.
	link *link

	// structured logger with channel context.
	logger zerolog.Logger
}

// link is one established connection and its outbound queue.
type link struct {
	// underlying WebSocket connection object.
	conn *websocket.Conn

	// a buffered channel used to queue frames waiting to be written.
	send chan []byte

	// closed when the read pump has stopped.
	done chan struct{}

	logger zerolog.Logger
}

// NewWSChannel constructs a WSChannel. Call Run to start connecting.
func NewWSChannel(cfg WSConfig) *WSChannel {
	interval := cfg.ReconnectInterval
	if interval <= 0 {
		interval = DefaultReconnectInterval
	}

	readLimit := cfg.ReadLimit
	if readLimit <= 0 {
		readLimit = DefaultReadLimit
	}

	dialer := cfg.Dialer
	if dialer == nil {
		d := *websocket.DefaultDialer
		dialer = &d
	}

	return &WSChannel{
		url:       cfg.URL,
		header:    cfg.Header,
		dialer:    dialer,
		readLimit: readLimit,
		reconnect: rate.NewLimiter(rate.Every(interval), 1),
		logger:    logx.Component("channel").With().Str("url", cfg.URL).Logger(),
	}
}

// Run connects to the server and keeps reconnecting until ctx is cancelled.
// It returns nil once ctx is done.
func (c *WSChannel) Run(ctx context.Context) error {
	c.logger.Info().Msg("Channel loop started.")
	defer c.logger.Info().Msg("Channel loop stopped.")

	for {
		if err := c.reconnect.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		conn, _, err := c.dialer.DialContext(ctx, c.url, c.header)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn().Err(err).Msg("Dial failed. Will retry.")
			continue
		}

		c.serve(ctx, conn)

		if ctx.Err() != nil {
			return nil
		}
	}
}

// State reports whether a connection is currently established.
func (c *WSChannel) State() ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.link != nil {
		return Connected
	}
	return Disconnected
}

// serve runs one connection until it drops or ctx is cancelled.
func (c *WSChannel) serve(ctx context.Context, conn *websocket.Conn) {
	l := &link{
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
		logger: c.logger,
	}

	stop := context.AfterFunc(ctx, l.closeGracefully)
	defer stop()

	c.setLink(l)
	c.logger.Info().Msg("Connected.")
	c.emitConnect()

	go l.writePump()
	l.readPump(c.readLimit, c.dispatch)

	close(l.done)
	c.setLink(nil)

	if err := conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error")
	}

	c.logger.Info().Msg("Disconnected.")
	c.emitDisconnect()
}

func (c *WSChannel) setLink(l *link) {
	c.mu.Lock()
	c.link = l
	c.mu.Unlock()
}

// dispatch decodes one inbound frame and delivers it to subscribers.
func (c *WSChannel) dispatch(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Warn().
			Err(errs.NewError(errs.ErrInvalidPayload)).
			AnErr("decode_error", err).
			Int("frame_bytes", len(data)).
			Msg("Server sent invalid JSON")
		return
	}

	switch env.Type {
	case EventChatMessage:
		var m Message
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			c.logger.Warn().Err(err).Msg("Server sent invalid chat message payload")
			return
		}
		c.emitMessage(m)

	default:
		c.logger.Debug().Str("msg_type", env.Type).Msg("Ignoring unsupported event type")
	}
}

// Announce sends a "user joined" event carrying the profile.
func (c *WSChannel) Announce(p identity.Profile) error {
	return c.enqueue(EventUserJoined, p)
}

// Send sends a "chat message" event.
func (c *WSChannel) Send(m Message) error {
	return c.enqueue(EventChatMessage, m)
}

// enqueue marshals the event and queues it on the live connection without blocking.
func (c *WSChannel) enqueue(eventType string, payload any) error {
	frame, err := EncodeEnvelope(eventType, payload)
	if err != nil {
		c.logger.Error().Err(err).Str("event", eventType).Msg("Error marshaling outbound event")
		return err
	}

	c.mu.RLock()
	l := c.link
	c.mu.RUnlock()

	if l == nil {
		c.logger.Warn().Str("event", eventType).Msg("Not connected, dropping outbound event")
		return errs.NewError(errs.ErrNotConnected)
	}

	select {
	case l.send <- frame:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(l.send)).Str("event", eventType).Msg("Send queue full, dropping outbound event")
		return errs.NewError(errs.ErrSendQueueFull)
	}
}

// readPump reads frames until the connection fails, extending the read deadline on every pong.
func (l *link) readPump(readLimit int64, deliver func([]byte)) {
	l.conn.SetReadLimit(readLimit)

	if err := l.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		l.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	l.conn.SetPongHandler(func(string) error {
		return l.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				l.logger.Info().Err(err).Msg("Error reading message (server close/going away)")
			}
			return
		}

		if err := l.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			l.logger.Error().Err(err).Msg("Failed to extend read deadline")
			return
		}

		deliver(data)
	}
}

// writePump writes queued frames and periodic pings until the read pump stops.
func (l *link) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame := <-l.send:
			if !l.write(websocket.TextMessage, frame) {
				_ = l.conn.Close()
				return
			}

		case <-ticker.C:
			if !l.write(websocket.PingMessage, nil) {
				_ = l.conn.Close()
				return
			}

		case <-l.done:
			return
		}
	}
}

// write sends one message with a write deadline. It returns false if the connection is unusable.
func (l *link) write(messageType int, data []byte) bool {
	if err := l.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		l.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if err := l.conn.WriteMessage(messageType, data); err != nil {
		l.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// closeGracefully sends a normal close frame and closes the socket, unblocking the read pump.
func (l *link) closeGracefully() {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client shutdown")
	if err := l.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		l.logger.Debug().Err(err).Msg("Failed to send close frame")
	}
	_ = l.conn.Close()
}
