package home

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/capsulemed/internal/llm"
	"github.com/abhisek/capsulemed/internal/profile"
	"github.com/abhisek/capsulemed/internal/router"
	"github.com/abhisek/capsulemed/internal/screen"
	"github.com/abhisek/capsulemed/internal/screens/deps"
)

func newHome(t *testing.T, d *deps.Deps) *HomeScreen {
	t.Helper()
	d.Fill()
	return New(d)
}

func pushed(t *testing.T, cmd tea.Cmd) screen.Screen {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	return msg.Screen
}

func TestHome_DisablesMissingServices(t *testing.T) {
	h := newHome(t, &deps.Deps{})

	if !h.disabled[itemProfile] || !h.disabled[itemHistory] {
		t.Fatalf("disabled = %v, want profile and history disabled", h.disabled)
	}

	// Walk down past the disabled items to the last entry.
	for i := 0; i < len(h.menuLabels); i++ {
		h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	if h.menu.Selected != itemQuit {
		t.Errorf("selected = %d, want quit (%d)", h.menu.Selected, itemQuit)
	}
	h.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if h.menu.Selected != itemPomodoro {
		t.Errorf("selected = %d, want pomodoro (%d), skipping disabled entries", h.menu.Selected, itemPomodoro)
	}
}

func TestHome_OpensCatalog(t *testing.T) {
	h := newHome(t, &deps.Deps{})

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s := pushed(t, cmd)
	if s.Title() != "Catalogue" {
		t.Errorf("pushed %q, want the catalog", s.Title())
	}
}

func TestHome_ProfileChangeUpdatesStats(t *testing.T) {
	h := newHome(t, &deps.Deps{Provider: llm.NewMockProvider()})

	h.Update(screen.ProfileChangedMsg{Profile: &profile.Profile{
		DisplayName:       "Inès",
		CompletedCapsules: []int{1, 2},
	}})
	if h.completed != 2 || h.user != "Inès" {
		t.Fatalf("stats = %d/%q", h.completed, h.user)
	}

	view := h.View(120, 40)
	if !strings.Contains(view, "Inès") {
		t.Error("view should name the learner")
	}
	if strings.Contains(view, "Clé API manquante") {
		t.Error("no key banner expected with a provider")
	}

	h.Update(screen.ProfileChangedMsg{})
	if h.completed != 0 || h.user != "" {
		t.Errorf("sign-out should clear stats, got %d/%q", h.completed, h.user)
	}
}

func TestHome_MissingProviderBanner(t *testing.T) {
	h := newHome(t, &deps.Deps{})
	if h.mascotVariant != MascotAlert {
		t.Errorf("mascot = %v, want alert", h.mascotVariant)
	}
	if !strings.Contains(h.View(120, 40), "Clé API manquante") {
		t.Error("expected the missing key banner")
	}
}
