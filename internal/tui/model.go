/*
Package tui is the terminal front end of the chat client.

The bubbletea update loop is the only goroutine that touches the session. Channel
events and avatar reads arrive as messages and are applied in order.
*/
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"hzchat-client/internal/app/chat"
	"hzchat-client/internal/app/identity"
	"hzchat-client/internal/app/session"
)

type field int

const (
	fieldName field = iota
	fieldAvatar
	fieldComposer
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// rows used by the header, composer, notice and help around the timeline.
	chromeHeight = 7
)

// avatarLoadedMsg carries a finished avatar read into the update loop.
type avatarLoadedMsg struct {
	result identity.AvatarResult
}

// Model is the bubbletea model of the client.
type Model struct {
	session *session.Session

	nameInput   textinput.Model
	avatarInput textinput.Model
	composer    textinput.Model
	timeline    viewport.Model
	help        help.Model

	focus  field
	width  int
	height int
}

// New creates the model for s.
func New(s *session.Session) Model {
	nameInput := textinput.New()
	nameInput.Placeholder = "Your name"
	nameInput.CharLimit = 64
	nameInput.Width = 40

	avatarInput := textinput.New()
	avatarInput.Placeholder = "/path/to/photo.png"
	avatarInput.CharLimit = 512
	avatarInput.Width = 40

	composer := textinput.New()
	composer.Placeholder = "Type a message..."
	composer.CharLimit = 2000
	composer.Width = defaultWidth - 4

	m := Model{
		session:     s,
		nameInput:   nameInput,
		avatarInput: avatarInput,
		composer:    composer,
		timeline:    viewport.New(defaultWidth, defaultHeight-chromeHeight),
		help:        help.New(),
		width:       defaultWidth,
		height:      defaultHeight,
	}

	v := s.View()
	m.nameInput.SetValue(v.Entry.Name)
	if v.Entry.Visible {
		m.setFocus(fieldName)
	} else {
		m.setFocus(fieldComposer)
	}
	m.refreshTimeline()

	return m
}

// Run starts the program on the terminal and returns when the user quits or ctx ends.
// start is called once the session is bound to the program, before the first frame;
// use it to start the channel so no connection event is emitted unobserved.
// Cancellation of ctx is a normal exit.
func Run(ctx context.Context, s *session.Session, start func()) error {
	p := tea.NewProgram(New(s), tea.WithAltScreen(), tea.WithContext(ctx))

	dispose := s.Bind(func(ev any) { p.Send(ev) })
	defer dispose()

	if start != nil {
		start()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		if m.session.EntryVisible() {
			return m.updateEntry(msg)
		}
		return m.updateChat(msg)

	case avatarLoadedMsg:
		if err := m.session.ApplyAvatar(msg.result); err != nil {
			m.avatarInput.Reset()
		}
		return m, nil

	case session.InboundMessage, session.ConnectionChanged:
		m.session.Handle(msg)
		m.refreshTimeline()
		return m, nil
	}

	return m, nil
}

func (m Model) updateEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.NextField):
		if m.focus == fieldName {
			m.setFocus(fieldAvatar)
		} else {
			m.setFocus(fieldName)
		}
		return m, nil

	case key.Matches(msg, keys.Enter):
		if m.focus == fieldAvatar {
			return m, m.loadAvatar(strings.TrimSpace(m.avatarInput.Value()))
		}

		m.session.SetName(m.nameInput.Value())
		if err := m.session.SubmitEntry(); err != nil {
			return m, nil
		}
		m.avatarInput.Reset()
		m.setFocus(fieldComposer)
		m.refreshTimeline()
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == fieldAvatar {
		m.avatarInput, cmd = m.avatarInput.Update(msg)
	} else {
		m.nameInput, cmd = m.nameInput.Update(msg)
		m.session.SetName(m.nameInput.Value())
	}
	return m, cmd
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.ChangeProfile):
		m.session.ChangeProfile()
		m.openEntry()
		return m, nil

	case key.Matches(msg, keys.Enter):
		switch m.session.Compose(m.composer.Value()) {
		case chat.Sent:
			m.composer.Reset()
		case chat.Blocked:
			m.openEntry()
		}
		return m, nil

	case key.Matches(msg, keys.ScrollUp, keys.ScrollDown):
		var cmd tea.Cmd
		m.timeline, cmd = m.timeline.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

// loadAvatar starts an avatar read and delivers its result as a message.
func (m Model) loadAvatar(path string) tea.Cmd {
	results := m.session.SelectAvatar(path)

	return func() tea.Msg {
		return avatarLoadedMsg{result: <-results}
	}
}

// openEntry mirrors the staged entry fields into the form inputs and focuses the name.
func (m *Model) openEntry() {
	v := m.session.View()
	m.nameInput.SetValue(v.Entry.Name)
	m.avatarInput.Reset()
	m.setFocus(fieldName)
}

func (m *Model) setFocus(f field) {
	m.focus = f
	m.nameInput.Blur()
	m.avatarInput.Blur()
	m.composer.Blur()

	switch f {
	case fieldName:
		m.nameInput.Focus()
	case fieldAvatar:
		m.avatarInput.Focus()
	case fieldComposer:
		m.composer.Focus()
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	timelineHeight := height - chromeHeight
	if timelineHeight < 3 {
		timelineHeight = 3
	}
	m.timeline.Width = width
	m.timeline.Height = timelineHeight
	m.composer.Width = width - 4
	m.help.Width = width

	m.refreshTimeline()
}

// refreshTimeline redraws the timeline and keeps the newest entry in view.
func (m *Model) refreshTimeline() {
	vm := m.session.View().Timeline
	m.timeline.SetContent(renderTimeline(vm.Entries, m.timeline.Width))
	if vm.ScrollToEnd {
		m.timeline.GotoBottom()
	}
}
