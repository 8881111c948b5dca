/*
Package chat contains the messaging protocol of the client.

This file defines the Composer, the outbound guard between the message input and the
Channel. It refuses to send without a persisted identity and stamps every message with
the sender's profile and a per-sender increasing timestamp.
*/
package chat

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"hzchat-client/internal/app/identity"
	"hzchat-client/internal/pkg/errs"
	"hzchat-client/internal/pkg/logx"
)

// Outcome is the result of a composer submission.
type Outcome int

const (
	// Ignored means the input was blank; nothing was sent and the input is kept.
	Ignored Outcome = iota

	// Blocked means no identity exists; the entry form must be shown.
	Blocked

	// Sent means a chat message was handed to the channel; the input is cleared.
	Sent
)

func (o Outcome) String() string {
	switch o {
	case Ignored:
		return "ignored"
	case Blocked:
		return "blocked"
	case Sent:
		return "sent"
	default:
		return "unknown"
	}
}

// Composer turns message input into outbound chat messages.
// It is not safe for concurrent use.
type Composer struct {
	// store supplies the persisted identity at send time.
	store identity.Store

	// sender is the outbound side of the channel.
	sender Sender

	// now is the submission clock.
	now func() time.Time

	// lastTS is the timestamp of the previous message sent by this composer.
	lastTS int64

	logger zerolog.Logger
}

// NewComposer creates a Composer. A nil clock means time.Now.
func NewComposer(store identity.Store, sender Sender, now func() time.Time) *Composer {
	if now == nil {
		now = time.Now
	}

	return &Composer{
		store:  store,
		sender: sender,
		now:    now,
		logger: logx.Component("composer"),
	}
}

// Submit validates text and sends it as a chat message.
// Transport failures are logged and still report Sent: delivery is best effort.
func (c *Composer) Submit(text string) (Outcome, error) {
	body := strings.TrimSpace(text)
	if body == "" {
		return Ignored, nil
	}

	profile, ok := c.store.Load()
	if !ok {
		c.logger.Info().Msg("Message blocked, no profile entered")
		return Blocked, errs.NewError(errs.ErrProfileRequired)
	}

	msg := Message{
		Name:   profile.Name,
		Avatar: profile.Avatar,
		Text:   body,
		TS:     c.nextTS(),
	}

	if err := c.sender.Send(msg); err != nil {
		c.logger.Warn().Err(err).Int64("ts", msg.TS).Msg("Message not delivered to channel")
	}

	return Sent, nil
}

// nextTS returns the current time in milliseconds, bumped past the previous value if needed.
func (c *Composer) nextTS() int64 {
	ts := c.now().UnixMilli()
	if ts <= c.lastTS {
		ts = c.lastTS + 1
	}
	c.lastTS = ts
	return ts
}
