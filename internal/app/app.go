// Package app is the root Bubble Tea model: the screen router plus the
// shared header and footer chrome.
package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/capsulemed/internal/profile"
	"github.com/abhisek/capsulemed/internal/router"
	"github.com/abhisek/capsulemed/internal/screen"
	"github.com/abhisek/capsulemed/internal/screens/deps"
	"github.com/abhisek/capsulemed/internal/screens/home"
	"github.com/abhisek/capsulemed/internal/ui/layout"
)

// Options holds the services the TUI runs with. Nil Provider or Profiles
// leave the matching features disabled.
type Options = deps.Deps

// profileMsg carries the profile loaded at startup.
type profileMsg struct {
	profile *profile.Profile
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	deps    *deps.Deps
	router  *router.Router
	profile *profile.Profile
	width   int
	height  int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(opts Options) AppModel {
	d := &opts
	d.Fill()
	return AppModel{
		deps:   d,
		router: router.New(home.New(d)),
	}
}

func (m AppModel) Init() tea.Cmd {
	d := m.deps
	return tea.Batch(
		m.router.Active().Init(),
		func() tea.Msg { return profileMsg{profile: d.CurrentProfile(context.Background())} },
	)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case profileMsg:
		m.profile = msg.profile
		return m, nil

	case screen.ProfileChangedMsg:
		m.profile = msg.Profile

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if c, ok := m.router.Active().(screen.InputCapturer); ok && c.CapturingInput() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the frame for the current terminal size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	if h, ok := active.(screen.ChromeHider); ok && h.HideChrome() {
		return m.router.View(m.width, m.height)
	}

	header := layout.RenderHeader(active.Title(), m.userName(), m.completed(), m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) userName() string {
	if m.profile == nil {
		return ""
	}
	if m.profile.DisplayName != "" {
		return m.profile.DisplayName
	}
	return m.profile.Email
}

func (m AppModel) completed() int {
	if m.profile == nil {
		return 0
	}
	return len(m.profile.CompletedCapsules)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return append(p.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quitter"})
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Retour"},
			{Key: "Ctrl+C", Description: "Quitter"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Naviguer"},
		{Key: "Enter", Description: "Choisir"},
		{Key: "Ctrl+C", Description: "Quitter"},
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
