/*
Package session wires the client components together for one run.

A Session owns the entry flow, the header, the timeline and the composer, built from
an injected identity store, channel and avatar reader. Channel events are forwarded
through Bind to a single dispatcher goroutine, which is the only caller of the
Session methods.
*/
package session

import (
	"time"

	"github.com/rs/zerolog"

	"hzchat-client/internal/app/chat"
	"hzchat-client/internal/app/entry"
	"hzchat-client/internal/app/header"
	"hzchat-client/internal/app/identity"
	"hzchat-client/internal/app/timeline"
	"hzchat-client/internal/pkg/errs"
	"hzchat-client/internal/pkg/logx"
)

// InboundMessage is dispatched for every chat message delivered by the channel.
type InboundMessage struct {
	Message chat.Message
}

// ConnectionChanged is dispatched on every connection transition.
type ConnectionChanged struct {
	State chat.ConnectionState
}

// Deps holds the collaborators of a Session.
type Deps struct {
	// Store persists the local profile.
	Store identity.Store

	// Channel carries protocol events to and from the server.
	Channel chat.Channel

	// Avatars reads avatar files asynchronously.
	Avatars entry.AvatarReader

	// Now is the message clock. Nil means time.Now.
	Now func() time.Time

	// Location is the zone of the time labels. Nil means time.Local.
	Location *time.Location
}

// EntryView is the display state of the entry form.
type EntryView struct {
	Visible   bool
	State     entry.State
	Name      string
	Avatar    string
	CanSubmit bool
	Pending   bool
}

// View is the full display state of the session.
type View struct {
	Entry    EntryView
	Header   header.View
	Timeline timeline.ViewModel
	Notice   string
}

// Session is the per-run controller. It is not safe for concurrent use.
type Session struct {
	store    identity.Store
	channel  chat.Channel
	header   *header.Header
	entry    *entry.Flow
	timeline *timeline.Timeline
	composer *chat.Composer

	// notice is the latest validation message, cleared by the next successful action.
	notice string

	logger zerolog.Logger
}

// New builds a Session and initialises the entry flow from the persisted profile.
func New(d Deps) *Session {
	h := header.New()

	s := &Session{
		store:    d.Store,
		channel:  d.Channel,
		header:   h,
		entry:    entry.NewFlow(d.Store, h, d.Channel, d.Avatars),
		timeline: timeline.New(d.Location),
		composer: chat.NewComposer(d.Store, d.Channel, d.Now),
		logger:   logx.Component("session"),
	}

	state := s.entry.Init()
	s.logger.Info().Str("entry_state", state.String()).Msg("Session started")

	return s
}

// stateReporter is implemented by channels that can report their current connection state.
type stateReporter interface {
	State() chat.ConnectionState
}

// Bind subscribes to the channel and forwards its events to dispatch.
// When the channel reports its state, the header is seeded with it after subscribing,
// so a connection established before Bind is not missed. Call Bind before the
// dispatcher starts. The returned Disposer removes every subscription.
func (s *Session) Bind(dispatch func(any)) chat.Disposer {
	dispose := chat.Dispose(
		s.channel.OnMessage(func(m chat.Message) {
			dispatch(InboundMessage{Message: m})
		}),
		s.channel.OnConnect(func() {
			dispatch(ConnectionChanged{State: chat.Connected})
		}),
		s.channel.OnDisconnect(func() {
			dispatch(ConnectionChanged{State: chat.Disconnected})
		}),
	)

	if r, ok := s.channel.(stateReporter); ok {
		s.SetConnection(r.State())
	}

	return dispose
}

// EntryVisible reports whether the entry form is shown.
func (s *Session) EntryVisible() bool {
	return s.entry.Visible()
}

// SetName stages the name typed in the entry form.
func (s *Session) SetName(name string) entry.State {
	return s.entry.SetName(name)
}

// SelectAvatar starts reading the avatar at path. Pass the received result to ApplyAvatar.
func (s *Session) SelectAvatar(path string) <-chan identity.AvatarResult {
	return s.entry.SelectAvatar(path)
}

// ApplyAvatar stages a completed avatar read; a rejection becomes the notice.
func (s *Session) ApplyAvatar(res identity.AvatarResult) error {
	if _, err := s.entry.ApplyAvatar(res); err != nil {
		s.setNotice(err)
		return err
	}
	if res.Err == nil && res.DataURL != "" && s.entry.Avatar() == res.DataURL {
		s.notice = ""
	}
	return nil
}

// SubmitEntry submits the entry form.
func (s *Session) SubmitEntry() error {
	if _, err := s.entry.Submit(); err != nil {
		s.setNotice(err)
		return err
	}
	s.notice = ""
	return nil
}

// ChangeProfile reopens the entry form with the persisted profile.
func (s *Session) ChangeProfile() {
	s.entry.Reopen()
	s.notice = ""
}

// Compose submits composer input. When no profile exists the entry form is shown.
func (s *Session) Compose(text string) chat.Outcome {
	outcome, err := s.composer.Submit(text)

	switch outcome {
	case chat.Blocked:
		s.entry.Show()
		s.setNotice(err)
	case chat.Sent:
		s.notice = ""
	}

	return outcome
}

// Receive appends an inbound message, classified against the current profile.
func (s *Session) Receive(m chat.Message) timeline.EntryView {
	local, ok := s.store.Load()
	return s.timeline.Append(m, local, ok)
}

// SetConnection records a connection transition in the header.
func (s *Session) SetConnection(state chat.ConnectionState) {
	if s.header.Connection() != state {
		s.logger.Info().Str("state", state.String()).Msg("Connection state changed")
	}
	s.header.SetConnection(state)
}

// Handle applies a value produced by Bind. It reports false for unknown values.
func (s *Session) Handle(event any) bool {
	switch e := event.(type) {
	case InboundMessage:
		s.Receive(e.Message)
	case ConnectionChanged:
		s.SetConnection(e.State)
	default:
		return false
	}
	return true
}

// View returns the display state.
func (s *Session) View() View {
	return View{
		Entry: EntryView{
			Visible:   s.entry.Visible(),
			State:     s.entry.State(),
			Name:      s.entry.Name(),
			Avatar:    s.entry.Avatar(),
			CanSubmit: s.entry.CanSubmit(),
			Pending:   s.entry.Pending(),
		},
		Header:   s.header.View(),
		Timeline: s.timeline.View(),
		Notice:   s.notice,
	}
}

func (s *Session) setNotice(err error) {
	if err == nil {
		return
	}
	s.notice = errs.Message(err)
}
