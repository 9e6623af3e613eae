package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/capsulemed/internal/catalog"
	"github.com/abhisek/capsulemed/internal/profile"
	"github.com/abhisek/capsulemed/internal/router"
	"github.com/abhisek/capsulemed/internal/screen"
	catalogscreen "github.com/abhisek/capsulemed/internal/screens/catalog"
	"github.com/abhisek/capsulemed/internal/screens/deps"
	"github.com/abhisek/capsulemed/internal/screens/history"
	mindmapscreen "github.com/abhisek/capsulemed/internal/screens/mindmap"
	"github.com/abhisek/capsulemed/internal/screens/placeholder"
	pomodoroscreen "github.com/abhisek/capsulemed/internal/screens/pomodoro"
	profilescreen "github.com/abhisek/capsulemed/internal/screens/profile"
	workshopscreen "github.com/abhisek/capsulemed/internal/screens/workshop"
	"github.com/abhisek/capsulemed/internal/ui/components"
	"github.com/abhisek/capsulemed/internal/ui/layout"
)

const (
	itemCatalog = iota
	itemWorkshop
	itemMindMap
	itemPomodoro
	itemProfile
	itemHistory
	itemQuit
)

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	deps          *deps.Deps
	menu          components.Menu
	menuLabels    []string
	disabled      map[int]bool
	user          string
	completed     int
	total         int
	mascotVariant MascotVariant
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(d *deps.Deps) *HomeScreen {
	h := &HomeScreen{
		deps:       d,
		menuLabels: []string{"CATALOGUE", "ATELIER PDF", "CARTE MENTALE", "POMODORO", "PROFIL", "HISTORIQUE IA", "QUITTER"},
		disabled:   map[int]bool{},
		total:      d.Catalog.Len(),
	}
	if d.Events == nil {
		h.disabled[itemHistory] = true
	}
	if d.Profiles == nil {
		h.disabled[itemProfile] = true
	}

	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: build()} }
		}
	}
	items := []components.MenuItem{
		{Label: h.menuLabels[itemCatalog], Action: push(func() screen.Screen { return catalogscreen.New(d) })},
		{Label: h.menuLabels[itemWorkshop], Action: push(func() screen.Screen { return workshopscreen.New(d) })},
		{Label: h.menuLabels[itemMindMap], Action: push(func() screen.Screen { return mindmapscreen.New(d) })},
		{Label: h.menuLabels[itemPomodoro], Action: push(func() screen.Screen { return pomodoroscreen.New(d.PomodoroConfig) })},
		{Label: h.menuLabels[itemProfile], Action: push(func() screen.Screen {
			if d.Profiles == nil {
				return placeholder.New("Profil", "Aucun stockage de profil n'est configuré.")
			}
			return profilescreen.New(d)
		}), Disabled: h.disabled[itemProfile]},
		{Label: h.menuLabels[itemHistory], Action: push(func() screen.Screen { return history.New(d.Events) }), Disabled: h.disabled[itemHistory]},
		{Label: h.menuLabels[itemQuit], Action: func() tea.Cmd { return tea.Quit }},
	}
	h.menu = components.NewMenu(items)
	h.setProfile(d.CurrentProfile(context.Background()))
	return h
}

// setProfile refreshes the stats bar and mascot.
func (h *HomeScreen) setProfile(p *profile.Profile) {
	h.user, h.completed = "", 0
	h.mascotVariant = MascotIdle
	if p != nil {
		h.user = p.DisplayName
		h.completed = len(p.CompletedCapsules)
		if subjectDone(h.deps.Catalog, p.CompletedCapsules) {
			h.mascotVariant = MascotCelebrating
		}
	}
	if h.deps.Provider == nil {
		h.mascotVariant = MascotAlert
	}
}

// subjectDone reports whether every capsule of some subject is completed.
func subjectDone(c *catalog.Catalog, completed []int) bool {
	for _, sp := range c.Progress(completed) {
		if sp.Total > 0 && sp.Completed == sp.Total {
			return true
		}
	}
	return false
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.ProfileChangedMsg:
		h.setProfile(msg.Profile)
		return h, nil
	case router.ScreenPoppedMsg:
		h.setProfile(h.deps.CurrentProfile(context.Background()))
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header (3) + footer (3) + frame gaps
	termHeight := height + 8
	compact := layout.IsCompactHeight(termHeight) || layout.IsCompactWidth(width)

	// All sections share a uniform content width so they line up.
	cw := components.ContentWidth(width)

	var sections []string

	sections = append(sections, renderTitle(cw, compact))

	if h.deps.Provider == nil {
		sections = append(sections, renderLLMBanner(cw))
	}

	if !compact {
		sections = append(sections, renderMascotBox(h.mascotVariant, cw))
	}

	sections = append(sections, renderStatsBar(h.completed, h.total, h.user, cw, compact))

	if compact {
		sections = append(sections, renderArcadeMenuCompact(h.menuLabels, h.menu.Selected, cw, h.disabled))
	} else {
		sections = append(sections, renderArcadeMenu(h.menuLabels, h.menu.Selected, cw, h.disabled))
	}

	content := strings.Join(sections, "\n\n")

	// Wrap in cabinet frame, centered in the full area
	return components.CabinetFrame(content, width, height)
}

func (h *HomeScreen) Title() string {
	return "Accueil"
}
