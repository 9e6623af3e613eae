package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/capsulemed/internal/profile"
	"github.com/abhisek/capsulemed/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// ChromeHider is implemented by screens that can take the whole terminal,
// such as the lesson viewer in focus mode.
type ChromeHider interface {
	HideChrome() bool
}

// InputCapturer is implemented by screens with a focused text field. While
// it reports true the app does not treat Esc as navigation.
type InputCapturer interface {
	CapturingInput() bool
}

// ProfileChangedMsg is broadcast after sign-in, sign-out or a newly
// completed capsule. Profile is nil when signed out.
type ProfileChangedMsg struct {
	Profile *profile.Profile
}
