// Package catalog is the collapsible subject / theme / capsule browser.
package catalog

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/capsulemed/internal/catalog"
	"github.com/abhisek/capsulemed/internal/profile"
	"github.com/abhisek/capsulemed/internal/router"
	"github.com/abhisek/capsulemed/internal/screen"
	"github.com/abhisek/capsulemed/internal/screens/deps"
	"github.com/abhisek/capsulemed/internal/screens/lesson"
	"github.com/abhisek/capsulemed/internal/ui/layout"
	"github.com/abhisek/capsulemed/internal/ui/theme"
)

type rowKind int

const (
	rowSubject rowKind = iota
	rowTheme
	rowCapsule
)

type row struct {
	kind    rowKind
	subject string
	theme   string
	capsule catalog.Capsule
}

type profileLoadedMsg struct {
	profile *profile.Profile
}

// CatalogScreen lists the catalog. Subjects start collapsed.
type CatalogScreen struct {
	deps         *deps.Deps
	expanded     map[string]bool
	done         map[int]bool
	rows         []row
	cursor       int
	scrollOffset int
}

var _ screen.Screen = (*CatalogScreen)(nil)
var _ screen.KeyHintProvider = (*CatalogScreen)(nil)

// New creates a new CatalogScreen.
func New(d *deps.Deps) *CatalogScreen {
	s := &CatalogScreen{
		deps:     d,
		expanded: make(map[string]bool),
		done:     make(map[int]bool),
	}
	s.rebuild()
	return s
}

func (s *CatalogScreen) Init() tea.Cmd {
	return s.loadProfile()
}

func (s *CatalogScreen) loadProfile() tea.Cmd {
	d := s.deps
	return func() tea.Msg {
		return profileLoadedMsg{profile: d.CurrentProfile(context.Background())}
	}
}

func (s *CatalogScreen) Title() string {
	return "Catalogue"
}

// KeyHints returns the key binding hints for the footer.
func (s *CatalogScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Naviguer"},
		{Key: "Enter", Description: "Ouvrir"},
		{Key: "Tab", Description: "Matière suivante"},
		{Key: "Esc", Description: "Retour"},
	}
}

func (s *CatalogScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		s.setCompleted(msg.profile)
	case screen.ProfileChangedMsg:
		s.setCompleted(msg.Profile)
	case router.ScreenPoppedMsg:
		return s, s.loadProfile()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.moveCursor(-1)
		case "down", "j":
			s.moveCursor(1)
		case "tab":
			s.nextSubject()
		case "space":
			s.toggle()
		case "enter", "right", "l":
			return s, s.open()
		case "left", "h":
			s.collapseCurrent()
		}
	}
	return s, nil
}

// setCompleted refreshes the completion marks.
func (s *CatalogScreen) setCompleted(p *profile.Profile) {
	s.done = make(map[int]bool)
	if p == nil {
		return
	}
	for _, id := range p.CompletedCapsules {
		s.done[id] = true
	}
}

// rebuild lays out the visible rows, keeping the cursor on the same item.
func (s *CatalogScreen) rebuild() {
	var keep row
	if s.cursor < len(s.rows) {
		keep = s.rows[s.cursor]
	}

	s.rows = s.rows[:0]
	for _, sub := range s.deps.Catalog.Subjects() {
		s.rows = append(s.rows, row{kind: rowSubject, subject: sub.Name})
		if !s.expanded[sub.Name] {
			continue
		}
		for _, th := range sub.Themes {
			s.rows = append(s.rows, row{kind: rowTheme, subject: sub.Name, theme: th.Name})
			for _, c := range th.Capsules {
				s.rows = append(s.rows, row{kind: rowCapsule, subject: sub.Name, theme: th.Name, capsule: c})
			}
		}
	}

	s.cursor = 0
	for i, r := range s.rows {
		if r.kind == keep.kind && r.subject == keep.subject && r.theme == keep.theme && r.capsule.ID == keep.capsule.ID {
			s.cursor = i
			break
		}
	}
}

// moveCursor moves the cursor by delta, skipping theme headers.
func (s *CatalogScreen) moveCursor(delta int) {
	next := s.cursor + delta
	for next >= 0 && next < len(s.rows) {
		if s.rows[next].kind != rowTheme {
			s.cursor = next
			return
		}
		next += delta
	}
}

// nextSubject jumps to the next subject header.
func (s *CatalogScreen) nextSubject() {
	for i := s.cursor + 1; i < len(s.rows); i++ {
		if s.rows[i].kind == rowSubject {
			s.cursor = i
			return
		}
	}
}

func (s *CatalogScreen) toggle() {
	if len(s.rows) == 0 {
		return
	}
	r := s.rows[s.cursor]
	if r.kind != rowSubject {
		return
	}
	s.expanded[r.subject] = !s.expanded[r.subject]
	s.rebuild()
}

// collapseCurrent folds the subject containing the cursor and moves onto it.
func (s *CatalogScreen) collapseCurrent() {
	if len(s.rows) == 0 {
		return
	}
	sub := s.rows[s.cursor].subject
	s.expanded[sub] = false
	s.cursor = 0
	for i, r := range s.rows {
		if r.kind == rowSubject && r.subject == sub {
			s.cursor = i
			break
		}
	}
	s.rebuild()
}

// open toggles a subject or pushes the lesson for a capsule.
func (s *CatalogScreen) open() tea.Cmd {
	if len(s.rows) == 0 {
		return nil
	}
	r := s.rows[s.cursor]
	if r.kind != rowCapsule {
		s.toggle()
		return nil
	}
	l := lesson.New(s.deps, r.capsule)
	return func() tea.Msg { return router.PushScreenMsg{Screen: l} }
}

func (s *CatalogScreen) View(width, height int) string {
	if len(s.rows) == 0 {
		return ""
	}
	s.adjustScroll(height)

	var lines []string
	for i := s.scrollOffset; i < len(s.rows) && len(lines) < height; i++ {
		lines = append(lines, s.renderRow(s.rows[i], i == s.cursor, width))
	}
	return strings.Join(lines, "\n")
}

// adjustScroll ensures the cursor is visible within the viewport.
func (s *CatalogScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	if s.cursor < s.scrollOffset {
		s.scrollOffset = s.cursor
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

func (s *CatalogScreen) renderRow(r row, selected bool, width int) string {
	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	switch r.kind {
	case rowSubject:
		arrow := "▶"
		if s.expanded[r.subject] {
			arrow = "▼"
		}
		done, total := s.subjectCount(r.subject)
		count := lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("  %d/%d", done, total))
		style := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
		if selected {
			style = style.Foreground(theme.Primary)
		}
		return cursor + style.Render(arrow+" "+strings.ToUpper(r.subject)) + count

	case rowTheme:
		return "    " + lipgloss.NewStyle().Foreground(theme.Info).Italic(true).Render(r.theme)
	}

	mark := lipgloss.NewStyle().Foreground(theme.TextDim).Render("○")
	nameStyle := lipgloss.NewStyle().Foreground(theme.Text)
	if s.done[r.capsule.ID] {
		mark = lipgloss.NewStyle().Foreground(theme.Success).Render("✔")
		nameStyle = nameStyle.Foreground(theme.Success)
	}
	if selected {
		nameStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	}

	nameWidth := width - 20
	if nameWidth < 10 {
		nameWidth = 10
	}
	name := r.capsule.Title
	if len([]rune(name)) > nameWidth {
		name = string([]rune(name)[:nameWidth-1]) + "…"
	}
	dur := lipgloss.NewStyle().Foreground(theme.TextDim).Render(r.capsule.Duration)
	return fmt.Sprintf("    %s%s %s  %s", cursor, mark, nameStyle.Render(name), dur)
}

func (s *CatalogScreen) subjectCount(subject string) (done, total int) {
	sub, ok := s.deps.Catalog.Subject(subject)
	if !ok {
		return 0, 0
	}
	for _, th := range sub.Themes {
		for _, c := range th.Capsules {
			total++
			if s.done[c.ID] {
				done++
			}
		}
	}
	return done, total
}
