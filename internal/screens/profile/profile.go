// Package profile is the account screen: sign in, sign up, sign out and
// per-subject progress.
package profile

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/capsulemed/internal/profile"
	"github.com/abhisek/capsulemed/internal/screen"
	"github.com/abhisek/capsulemed/internal/screens/deps"
	"github.com/abhisek/capsulemed/internal/ui/components"
	"github.com/abhisek/capsulemed/internal/ui/layout"
	"github.com/abhisek/capsulemed/internal/ui/theme"
)

const googleProvider = "google"

type loadedMsg struct {
	profile *profile.Profile
}

// authMsg is the outcome of a sign-in, sign-up or sign-out.
type authMsg struct {
	profile *profile.Profile
	err     error
}

// ProfileScreen shows the form when signed out and the progress when
// signed in.
type ProfileScreen struct {
	deps    *deps.Deps
	current *profile.Profile
	loaded  bool

	signUp bool
	email  components.TextInput
	pass   components.TextInput
	name   components.TextInput
	focus  int
	submit components.Button

	busy   bool
	errMsg string
}

var (
	_ screen.Screen          = (*ProfileScreen)(nil)
	_ screen.KeyHintProvider = (*ProfileScreen)(nil)
)

// New creates the screen; d.Profiles must be set.
func New(d *deps.Deps) *ProfileScreen {
	s := &ProfileScreen{
		deps:  d,
		email: components.NewTextInput("prenom@exemple.fr", 254),
		pass:  components.NewPasswordInput("6 caractères minimum"),
		name:  components.NewTextInput("Prénom Nom", 80),
	}
	s.email.Label = "Email        "
	s.pass.Label = "Mot de passe "
	s.name.Label = "Nom          "
	s.setFocus(0)
	return s
}

func (s *ProfileScreen) Init() tea.Cmd {
	d := s.deps
	return func() tea.Msg {
		return loadedMsg{profile: d.CurrentProfile(context.Background())}
	}
}

func (s *ProfileScreen) Title() string {
	return "Profil"
}

func (s *ProfileScreen) KeyHints() []layout.KeyHint {
	if s.current != nil {
		return []layout.KeyHint{
			{Key: "s", Description: "Se déconnecter"},
			{Key: "Esc", Description: "Retour"},
		}
	}
	mode := "Inscription"
	if s.signUp {
		mode = "Connexion"
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Champ suivant"},
		{Key: "Enter", Description: "Valider"},
		{Key: "Ctrl+T", Description: mode},
		{Key: "Ctrl+G", Description: "Google"},
		{Key: "Esc", Description: "Retour"},
	}
}

// fields returns the inputs of the current mode in focus order; the submit
// button follows them.
func (s *ProfileScreen) fields() []*components.TextInput {
	if s.signUp {
		return []*components.TextInput{&s.name, &s.email, &s.pass}
	}
	return []*components.TextInput{&s.email, &s.pass}
}

func (s *ProfileScreen) setFocus(i int) tea.Cmd {
	fields := s.fields()
	if i < 0 {
		i = len(fields)
	}
	if i > len(fields) {
		i = 0
	}
	s.focus = i
	s.email.Blur()
	s.pass.Blur()
	s.name.Blur()

	label := "SE CONNECTER"
	if s.signUp {
		label = "CRÉER MON COMPTE"
	}
	s.submit = components.NewButton(label, i == len(fields), s.send)
	if i < len(fields) {
		return fields[i].Focus()
	}
	return nil
}

func (s *ProfileScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.current, s.loaded = msg.profile, true
		return s, nil

	case screen.ProfileChangedMsg:
		s.current, s.loaded = msg.Profile, true
		return s, nil

	case authMsg:
		s.busy = false
		if msg.err != nil {
			s.errMsg = profile.Message(msg.err)
			return s, nil
		}
		s.errMsg = ""
		s.current = msg.profile
		s.pass.Reset()
		p := msg.profile
		broadcast := func() tea.Msg { return screen.ProfileChangedMsg{Profile: p} }
		if p == nil {
			return s, tea.Batch(broadcast, s.setFocus(0))
		}
		return s, broadcast

	case tea.KeyMsg:
		if s.current != nil {
			if msg.String() == "s" && !s.busy {
				return s, s.signOut()
			}
			return s, nil
		}
		return s, s.updateForm(msg)
	}

	if s.current == nil && s.focus < len(s.fields()) {
		var cmd tea.Cmd
		f := s.fields()[s.focus]
		*f, cmd = f.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ProfileScreen) updateForm(msg tea.KeyMsg) tea.Cmd {
	fields := s.fields()
	switch msg.String() {
	case "tab", "down":
		return s.setFocus(s.focus + 1)
	case "shift+tab", "up":
		return s.setFocus(s.focus - 1)
	case "ctrl+t":
		s.signUp = !s.signUp
		s.errMsg = ""
		return s.setFocus(0)
	case "ctrl+g":
		return s.withProvider()
	case "enter":
		if s.focus < len(fields) {
			return s.setFocus(s.focus + 1)
		}
		var cmd tea.Cmd
		s.submit, cmd = s.submit.Update(msg)
		return cmd
	}
	if s.focus < len(fields) {
		var cmd tea.Cmd
		*fields[s.focus], cmd = fields[s.focus].Update(msg)
		return cmd
	}
	return nil
}

// send submits the form in the current mode.
func (s *ProfileScreen) send() tea.Cmd {
	if s.busy {
		return nil
	}
	s.busy, s.errMsg = true, ""
	store := s.deps.Profiles
	email, pass, name, signUp := s.email.Value(), s.pass.Model.Value(), s.name.Value(), s.signUp
	return func() tea.Msg {
		ctx := context.Background()
		var p *profile.Profile
		var err error
		if signUp {
			p, err = store.SignUp(ctx, email, pass, name)
		} else {
			p, err = store.SignIn(ctx, email, pass)
		}
		return authMsg{profile: p, err: err}
	}
}

func (s *ProfileScreen) withProvider() tea.Cmd {
	if s.busy {
		return nil
	}
	s.busy, s.errMsg = true, ""
	store := s.deps.Profiles
	return func() tea.Msg {
		p, err := store.SignInWithProvider(context.Background(), googleProvider)
		return authMsg{profile: p, err: err}
	}
}

func (s *ProfileScreen) signOut() tea.Cmd {
	s.busy = true
	store, log := s.deps.Profiles, s.deps.Log
	return func() tea.Msg {
		if err := store.SignOut(context.Background()); err != nil {
			log.Warn("sign out", "error", err)
			return authMsg{err: err}
		}
		return authMsg{}
	}
}

func (s *ProfileScreen) View(width, height int) string {
	var content string
	switch {
	case !s.loaded:
		content = lipgloss.NewStyle().Foreground(theme.TextDim).Render("Chargement…")
	case s.current != nil:
		content = s.viewProfile()
	default:
		content = s.viewForm()
	}
	card := components.ArcadeCard(content, 64)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (s *ProfileScreen) viewForm() string {
	title := "Connexion"
	if s.signUp {
		title = "Créer un compte"
	}
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(title))
	b.WriteString("\n\n")
	for _, f := range s.fields() {
		b.WriteString(f.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.submit.View())
	if s.busy {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Info).Italic(true).Render("Patiente…"))
	}
	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Width(58).Render(s.errMsg))
	}
	b.WriteString("\n\n")
	other := "Pas de compte ? Ctrl+T pour t'inscrire."
	if s.signUp {
		other = "Déjà inscrit ? Ctrl+T pour te connecter."
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(other))
	return b.String()
}

func (s *ProfileScreen) viewProfile() string {
	p := s.current
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(p.DisplayName))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(p.Email))
	b.WriteString("\n\n")

	total := 0
	for _, sp := range s.deps.Catalog.Progress(p.CompletedCapsules) {
		total += sp.Completed
		pct := 0.0
		if sp.Total > 0 {
			pct = float64(sp.Completed) / float64(sp.Total)
		}
		label := fmt.Sprintf("%-22s %2d/%-2d", clip(sp.Subject, 22), sp.Completed, sp.Total)
		b.WriteString(components.NewProgressBar(label, pct, true, 58).View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true).
		Render(fmt.Sprintf("%d / %d capsules validées", total, s.deps.Catalog.Len())))
	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	}
	return b.String()
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
