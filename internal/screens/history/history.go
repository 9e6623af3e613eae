package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/capsulemed/internal/router"
	"github.com/abhisek/capsulemed/internal/screen"
	"github.com/abhisek/capsulemed/internal/store"
	"github.com/abhisek/capsulemed/internal/ui/layout"
	"github.com/abhisek/capsulemed/internal/ui/theme"
)

// pageSize is the number of requests loaded.
const pageSize = 50

type historyLoadedMsg struct {
	Events []store.LLMRequestEvent
	Err    error
}

// HistoryScreen lists recent completion requests, newest first.
type HistoryScreen struct {
	eventRepo store.EventRepo
	events    []store.LLMRequestEvent
	selected  int
	offset    int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		events, err := repo.QueryLLMEvents(context.Background(), store.QueryOpts{Limit: pageSize})
		return historyLoadedMsg{Events: events, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "Historique IA"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Détails"},
		{Key: "↑↓", Description: "Naviguer"},
		{Key: "Esc", Description: "Retour"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.events = msg.Events
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.events)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nErreur : %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Chargement…")
	}
	if len(s.events) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Aucune requête pour l'instant.")
	}

	var lines []string
	cursorLine := 0
	for i, e := range s.events {
		if i == s.selected {
			cursorLine = len(lines)
		}
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		status := "ok"
		if !e.Success {
			status = "échec"
		}
		line := fmt.Sprintf("%s%s  %-16s %-22s %5d/%-5d tok  %6d ms  %s",
			prefix, e.Timestamp.Local().Format("02/01 15:04"), clip(e.Purpose, 16), clip(e.Model, 22),
			e.InputTokens, e.OutputTokens, e.LatencyMs, status)

		style := lipgloss.NewStyle().Foreground(statusColor(e.Success))
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		lines = append(lines, style.Render(line))

		if s.expanded[i] {
			detail := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)
			lines = append(lines, detail.Render(fmt.Sprintf("    #%d  fournisseur %s", e.ID, e.Provider)))
			if e.ErrorMessage != "" {
				lines = append(lines, lipgloss.NewStyle().Foreground(theme.Error).
					Render("    "+clip(e.ErrorMessage, width-8)))
			}
			if e.ResponseBody != "" {
				lines = append(lines, detail.Render("    "+clip(firstLine(e.ResponseBody), width-8)))
			}
		}
	}

	// Keep the cursor on screen.
	if height < 3 {
		height = 3
	}
	if cursorLine < s.offset {
		s.offset = cursorLine
	}
	if cursorLine >= s.offset+height-1 {
		s.offset = cursorLine - height + 2
	}
	end := len(lines)
	if end > s.offset+height-1 {
		end = s.offset + height - 1
	}
	return "\n" + strings.Join(lines[s.offset:end], "\n")
}

func statusColor(ok bool) color.Color {
	if ok {
		return theme.Text
	}
	return theme.Error
}

func clip(s string, n int) string {
	if n <= 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
