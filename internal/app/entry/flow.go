/*
Package entry implements the entry form that captures the local identity.

Flow is a small state machine over a staged name and avatar. It is shown when no
profile exists or when the user asks to change it, becomes submittable once both
fields are filled, and on submission persists the profile, updates the header and
announces the identity to the chat server.
*/
package entry

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"hzchat-client/internal/app/identity"
	"hzchat-client/internal/pkg/errs"
	"hzchat-client/internal/pkg/logx"
)

// State is the visibility and validity of the entry form.
type State int

const (
	// Hidden means a profile exists and the chat surface is shown.
	Hidden State = iota

	// VisibleIncomplete means the form is shown and cannot be submitted.
	VisibleIncomplete

	// VisibleComplete means the form is shown with both fields filled.
	VisibleComplete
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case VisibleIncomplete:
		return "visible_incomplete"
	case VisibleComplete:
		return "visible_complete"
	default:
		return "unknown"
	}
}

// ProfileView receives the profile after a successful submission.
type ProfileView interface {
	SetProfile(p identity.Profile)
}

// Announcer publishes a submitted identity.
type Announcer interface {
	Announce(p identity.Profile) error
}

// AvatarReader reads an avatar file asynchronously.
type AvatarReader interface {
	Load(ctx context.Context, token uint64, path string) <-chan identity.AvatarResult
}

// Flow is the entry form state machine. It is not safe for concurrent use.
type Flow struct {
	// collaborators injected at construction.
	store     identity.Store
	header    ProfileView
	announcer Announcer
	avatars   AvatarReader

	// staged form fields.
	name   string
	avatar string

	// visible is false only while a profile is in use.
	visible bool

	// token identifies the current avatar selection; results for older tokens are ignored.
	token uint64

	// cancel aborts the in-flight avatar read, nil when none is pending.
	cancel context.CancelFunc

	logger zerolog.Logger
}

// NewFlow creates a Flow. Call Init before use.
func NewFlow(store identity.Store, header ProfileView, announcer Announcer, avatars AvatarReader) *Flow {
	return &Flow{
		store:     store,
		header:    header,
		announcer: announcer,
		avatars:   avatars,
		visible:   true,
		logger:    logx.Component("entry"),
	}
}

// Init hides the form when a complete profile is persisted and shows it otherwise.
func (f *Flow) Init() State {
	p, ok := f.store.Load()
	if ok {
		f.name, f.avatar = p.Name, p.Avatar
		f.header.SetProfile(p)
		f.visible = false
		f.logger.Info().Str("name", p.Name).Msg("Profile restored")
	} else {
		f.visible = true
		f.logger.Info().Msg("No profile found, showing entry form")
	}

	return f.State()
}

// State returns the current state.
func (f *Flow) State() State {
	switch {
	case !f.visible:
		return Hidden
	case f.staged().Complete():
		return VisibleComplete
	default:
		return VisibleIncomplete
	}
}

// Visible reports whether the form is shown.
func (f *Flow) Visible() bool {
	return f.visible
}

// CanSubmit reports whether the staged fields form a complete profile.
func (f *Flow) CanSubmit() bool {
	return f.State() == VisibleComplete
}

// Name returns the staged name.
func (f *Flow) Name() string {
	return f.name
}

// Avatar returns the staged avatar data URL.
func (f *Flow) Avatar() string {
	return f.avatar
}

// Pending reports whether an avatar read is in flight.
func (f *Flow) Pending() bool {
	return f.cancel != nil
}

// SetName stages a new name.
func (f *Flow) SetName(name string) State {
	f.name = name
	return f.State()
}

// BeginAvatarSelection starts a new avatar selection and returns its token.
// The previous in-flight read, if any, is cancelled.
func (f *Flow) BeginAvatarSelection() uint64 {
	token, _ := f.beginSelection()
	return token
}

// SelectAvatar starts reading path and returns the channel that delivers its result.
// Feed the result to ApplyAvatar.
func (f *Flow) SelectAvatar(path string) <-chan identity.AvatarResult {
	token, ctx := f.beginSelection()
	f.logger.Debug().Uint64("token", token).Str("path", path).Msg("Avatar selected")
	return f.avatars.Load(ctx, token, path)
}

func (f *Flow) beginSelection() (uint64, context.Context) {
	f.cancelSelection()

	ctx, cancel := context.WithCancel(context.Background())
	f.token++
	f.cancel = cancel

	return f.token, ctx
}

func (f *Flow) cancelSelection() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

// ApplyAvatar consumes the result of an avatar read. Results of superseded selections
// are ignored. On failure the previously staged avatar is kept and the error returned.
func (f *Flow) ApplyAvatar(res identity.AvatarResult) (State, error) {
	if res.Token != f.token || f.cancel == nil {
		f.logger.Debug().Uint64("token", res.Token).Uint64("current", f.token).Msg("Ignoring stale avatar result")
		return f.State(), nil
	}

	f.cancelSelection()

	if res.Err != nil {
		if res.IsCanceled() {
			return f.State(), nil
		}
		f.logger.Info().Err(res.Err).Msg("Avatar rejected")
		return f.State(), res.Err
	}

	f.avatar = res.DataURL
	return f.State(), nil
}

// Submit persists the staged profile, updates the header, hides the form and announces
// the identity. Nothing is persisted or announced when the profile is incomplete.
func (f *Flow) Submit() (identity.Profile, error) {
	p := f.staged()
	if !p.Complete() {
		return identity.Profile{}, errs.NewError(errs.ErrProfileIncomplete)
	}

	if err := f.store.Save(p); err != nil {
		f.logger.Error().Err(err).Msg("Failed to save profile")
		if errs.Is(err, errs.ErrProfileIncomplete) {
			return identity.Profile{}, err
		}
		return identity.Profile{}, errs.NewError(errs.ErrStorageUnavailable)
	}

	f.cancelSelection()
	f.name = p.Name
	f.header.SetProfile(p)
	f.visible = false

	if err := f.announcer.Announce(p); err != nil {
		f.logger.Warn().Err(err).Msg("Identity announcement not delivered")
	}

	f.logger.Info().Str("name", p.Name).Msg("Profile submitted")
	return p, nil
}

// Reopen shows the form again with the persisted profile staged, or with empty fields
// when none exists. It emits nothing.
func (f *Flow) Reopen() State {
	f.cancelSelection()

	if p, ok := f.store.Load(); ok {
		f.name, f.avatar = p.Name, p.Avatar
	} else {
		f.name, f.avatar = "", ""
	}
	f.visible = true

	return f.State()
}

// Show makes the form visible without touching the staged fields.
func (f *Flow) Show() State {
	f.visible = true
	return f.State()
}

func (f *Flow) staged() identity.Profile {
	return identity.Profile{
		Name:   strings.TrimSpace(f.name),
		Avatar: f.avatar,
	}
}
