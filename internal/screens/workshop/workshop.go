// Package workshop is the PDF study workshop: open a course PDF, chat about
// it, and generate a summary, flashcards or a quiz from it.
package workshop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/capsulemed/internal/chat"
	"github.com/abhisek/capsulemed/internal/document"
	"github.com/abhisek/capsulemed/internal/quiz"
	"github.com/abhisek/capsulemed/internal/router"
	"github.com/abhisek/capsulemed/internal/screen"
	"github.com/abhisek/capsulemed/internal/screens/chatpanel"
	"github.com/abhisek/capsulemed/internal/screens/deps"
	quizscreen "github.com/abhisek/capsulemed/internal/screens/quiz"
	"github.com/abhisek/capsulemed/internal/ui/components"
	"github.com/abhisek/capsulemed/internal/ui/layout"
	"github.com/abhisek/capsulemed/internal/ui/theme"
	"github.com/abhisek/capsulemed/internal/workshop"
)

// Tab is one pane of the workshop.
type Tab int

const (
	TabChat Tab = iota
	TabSummary
	TabFlashcards
	TabQuiz
)

var tabNames = []string{"Chat", "Résumé", "Fiches", "Quiz"}

func (t Tab) kind() (workshop.Kind, bool) {
	switch t {
	case TabSummary:
		return workshop.KindSummary, true
	case TabFlashcards:
		return workshop.KindFlashcards, true
	case TabQuiz:
		return workshop.KindQuiz, true
	}
	return "", false
}

var screenIDs atomic.Uint64

type extractedMsg struct {
	screen uint64
	doc    *document.Document
	err    error
}

// generatedMsg carries one generator result. gen ties it to the document it
// was requested for.
type generatedMsg struct {
	screen  uint64
	gen     int
	kind    workshop.Kind
	summary string
	cards   []workshop.Flashcard
	quiz    quiz.Quiz
	err     error
}

// WorkshopScreen holds one open document at a time.
type WorkshopScreen struct {
	deps *deps.Deps
	id   uint64

	path       components.TextInput
	extracting bool
	openErr    string

	doc     *document.Document
	gen     int
	scanned bool
	service *workshop.Service
	chat    *chatpanel.Panel
	tab     Tab

	loading map[workshop.Kind]bool
	errs    map[workshop.Kind]error
	summary string
	scroll  int
	deck    *workshop.Deck
	quiz    *quiz.Quiz
}

var (
	_ screen.Screen          = (*WorkshopScreen)(nil)
	_ screen.KeyHintProvider = (*WorkshopScreen)(nil)
	_ screen.InputCapturer   = (*WorkshopScreen)(nil)
)

// New opens the workshop on the file prompt.
func New(d *deps.Deps) *WorkshopScreen {
	path := components.NewTextInput("/chemin/vers/cours.pdf", 512)
	path.Label = "PDF :"
	return &WorkshopScreen{
		deps:    d,
		id:      screenIDs.Add(1),
		path:    path,
		loading: map[workshop.Kind]bool{},
		errs:    map[workshop.Kind]error{},
	}
}

func (s *WorkshopScreen) Init() tea.Cmd {
	return s.path.Init()
}

func (s *WorkshopScreen) Title() string {
	if s.doc != nil {
		return "Atelier · " + s.doc.Name
	}
	return "Atelier PDF"
}

// CapturingInput reports whether a text field owns the keyboard.
func (s *WorkshopScreen) CapturingInput() bool {
	return s.chat != nil && s.chat.Focused()
}

func (s *WorkshopScreen) KeyHints() []layout.KeyHint {
	if s.doc == nil {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Analyser"},
			{Key: "Esc", Description: "Retour"},
		}
	}
	if s.chat.Focused() {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Envoyer"},
			{Key: "Esc", Description: "Fermer le chat"},
		}
	}
	hints := []layout.KeyHint{{Key: "Tab", Description: "Onglet"}}
	switch s.tab {
	case TabChat:
		hints = append(hints, layout.KeyHint{Key: "c", Description: "Écrire"})
	case TabSummary:
		hints = append(hints, layout.KeyHint{Key: "↑/↓", Description: "Défiler"}, layout.KeyHint{Key: "g", Description: "Régénérer"})
	case TabFlashcards:
		hints = append(hints,
			layout.KeyHint{Key: "Espace", Description: "Retourner"},
			layout.KeyHint{Key: "←/→", Description: "Carte"},
			layout.KeyHint{Key: "g", Description: "Régénérer"})
	case TabQuiz:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Lancer"}, layout.KeyHint{Key: "g", Description: "Régénérer"})
	}
	return append(hints,
		layout.KeyHint{Key: "o", Description: "Autre PDF"},
		layout.KeyHint{Key: "Esc", Description: "Retour"})
}

func (s *WorkshopScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if s.chat != nil {
		if cmd, handled := s.chat.Update(msg, s.surface()); handled {
			return s, cmd
		}
	}

	switch msg := msg.(type) {
	case extractedMsg:
		if msg.screen != s.id {
			return s, nil
		}
		s.extracting = false
		if msg.err != nil {
			s.openErr = openErrorText(msg.err)
			s.deps.Log.Warn("extract document", "error", msg.err)
			return s, nil
		}
		s.load(msg.doc)
		return s, nil

	case generatedMsg:
		if msg.screen != s.id || msg.gen != s.gen {
			return s, nil
		}
		s.finish(msg)
		return s, nil

	case tea.KeyMsg:
		if s.doc == nil {
			return s, s.updatePrompt(msg)
		}
		return s, s.handleKey(msg.String())
	}

	if s.doc == nil {
		var cmd tea.Cmd
		s.path, cmd = s.path.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *WorkshopScreen) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	if msg.String() != "enter" {
		var cmd tea.Cmd
		s.path, cmd = s.path.Update(msg)
		return cmd
	}
	p := s.path.Value()
	if p == "" || s.extracting {
		return nil
	}
	s.extracting, s.openErr = true, ""
	id := s.id
	return func() tea.Msg {
		doc, err := document.ExtractFile(p)
		return extractedMsg{screen: id, doc: doc, err: err}
	}
}

// load switches to a freshly extracted document, dropping everything
// generated for the previous one.
func (s *WorkshopScreen) load(doc *document.Document) {
	s.doc = doc
	s.gen++
	s.scanned = document.CheckExtractable(doc.Text) != nil
	s.service = workshop.NewService(s.deps.Provider, s.deps.WorkshopConfig, doc.Text)
	s.chat = chatpanel.New(s.deps.Tutor, chat.DocumentGreeting(doc.Name))
	s.tab = TabChat
	s.loading = map[workshop.Kind]bool{}
	s.errs = map[workshop.Kind]error{}
	s.summary, s.scroll, s.deck, s.quiz = "", 0, nil, nil
	s.path.Blur()
}

func (s *WorkshopScreen) surface() chat.Surface {
	if s.doc == nil {
		return chat.Document{}
	}
	return chat.Document{Name: s.doc.Name, Text: s.doc.Text}
}

func (s *WorkshopScreen) handleKey(key string) tea.Cmd {
	switch key {
	case "tab", "right", "l":
		if key == "tab" || s.tab != TabFlashcards {
			return s.selectTab((s.tab + 1) % Tab(len(tabNames)))
		}
	case "shift+tab":
		return s.selectTab((s.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames)))
	case "1", "2", "3", "4":
		return s.selectTab(Tab(key[0] - '1'))
	case "o":
		s.doc, s.chat, s.service = nil, nil, nil
		s.gen++
		s.path.Reset()
		return s.path.Focus()
	case "c":
		if s.tab == TabChat {
			return s.chat.Focus()
		}
	case "g":
		if k, ok := s.tab.kind(); ok && !s.loading[k] {
			s.service.Forget(k)
			return s.generate(k)
		}
	}

	switch s.tab {
	case TabSummary:
		switch key {
		case "up", "k":
			if s.scroll > 0 {
				s.scroll--
			}
		case "down", "j":
			s.scroll++
		}
	case TabFlashcards:
		if s.deck == nil {
			return nil
		}
		switch key {
		case "space", "enter":
			s.deck.Flip()
		case "right", "n":
			s.deck.Next()
		case "left", "p", "h":
			s.deck.Prev()
		}
	case TabQuiz:
		if key == "enter" && s.quiz != nil {
			qs := quizscreen.New("Quiz · "+s.doc.Name, *s.quiz, nil)
			return func() tea.Msg { return router.PushScreenMsg{Screen: qs} }
		}
	}
	return nil
}

// selectTab moves to t and starts its generator the first time it is shown.
func (s *WorkshopScreen) selectTab(t Tab) tea.Cmd {
	s.tab = t
	k, ok := t.kind()
	if !ok || s.loading[k] || s.has(k) {
		return nil
	}
	return s.generate(k)
}

func (s *WorkshopScreen) has(k workshop.Kind) bool {
	switch k {
	case workshop.KindSummary:
		return s.summary != ""
	case workshop.KindFlashcards:
		return s.deck != nil
	case workshop.KindQuiz:
		return s.quiz != nil
	}
	return false
}

func (s *WorkshopScreen) generate(k workshop.Kind) tea.Cmd {
	s.loading[k] = true
	delete(s.errs, k)
	svc, id, gen := s.service, s.id, s.gen
	return func() tea.Msg {
		ctx := context.Background()
		out := generatedMsg{screen: id, gen: gen, kind: k}
		switch k {
		case workshop.KindSummary:
			out.summary, out.err = svc.Summary(ctx)
		case workshop.KindFlashcards:
			out.cards, out.err = svc.Flashcards(ctx)
		case workshop.KindQuiz:
			out.quiz, out.err = svc.Quiz(ctx)
		}
		return out
	}
}

func (s *WorkshopScreen) finish(msg generatedMsg) {
	s.loading[msg.kind] = false
	if msg.err != nil {
		s.errs[msg.kind] = msg.err
		if !errors.Is(msg.err, workshop.ErrNoProvider) {
			s.deps.Log.Warn("workshop generation failed", "kind", string(msg.kind), "error", msg.err)
		}
		return
	}
	switch msg.kind {
	case workshop.KindSummary:
		s.summary, s.scroll = msg.summary, 0
	case workshop.KindFlashcards:
		s.deck = workshop.NewDeck(msg.cards)
	case workshop.KindQuiz:
		q := msg.quiz
		s.quiz = &q
	}
}

func openErrorText(err error) string {
	if errors.Is(err, document.ErrNotPDF) {
		return "Ce fichier n'est pas un PDF."
	}
	return "Impossible de lire ce PDF : " + err.Error()
}

func generationErrorText(err error) string {
	if errors.Is(err, workshop.ErrNoProvider) {
		return chat.MissingKeyText
	}
	return "Erreur: " + chat.ErrorText(err)
}

func (s *WorkshopScreen) View(width, height int) string {
	if s.doc == nil {
		return s.viewPrompt(width, height)
	}

	tabs := s.viewTabs()
	var warn string
	if s.scanned {
		warn = lipgloss.NewStyle().Foreground(theme.Accent).Width(width-4).
			Render("⚠ Ce PDF ne contient presque pas de texte (scan ?). L'IA ne pourra pas l'exploiter.") + "\n"
	}
	bodyH := height - lipgloss.Height(tabs) - lipgloss.Height(warn) - 1
	if bodyH < 3 {
		bodyH = 3
	}

	var body string
	switch s.tab {
	case TabChat:
		body = s.chat.View(width-4, bodyH)
	case TabSummary:
		body = s.viewSummary(width-4, bodyH)
	case TabFlashcards:
		body = s.viewFlashcards(width-4, bodyH)
	case TabQuiz:
		body = s.viewQuiz(width - 4)
	}
	return lipgloss.NewStyle().Padding(0, 2).Render(tabs + "\n" + warn + body)
}

func (s *WorkshopScreen) viewPrompt(width, height int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Atelier PDF"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Width(56).
		Render("Ouvre un cours en PDF pour en discuter avec le tuteur et générer un résumé, des fiches ou un QCM."))
	b.WriteString("\n\n")
	b.WriteString(s.path.View())
	if s.extracting {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Info).Italic(true).Render("Analyse du document…"))
	}
	if s.openErr != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Width(56).Render(s.openErr))
	}
	card := components.ArcadeCard(b.String(), 60)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (s *WorkshopScreen) viewTabs() string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf(" %d %s ", i+1, name)
		if Tab(i) == s.tab {
			parts[i] = lipgloss.NewStyle().Foreground(theme.BgDark).Background(theme.Primary).Bold(true).Render(label)
		} else {
			parts[i] = lipgloss.NewStyle().Foreground(theme.TextDim).Render(label)
		}
	}
	return strings.Join(parts, " ")
}

// viewStatus renders the loading or error state of k, or "" when there is
// a result to show.
func (s *WorkshopScreen) viewStatus(k workshop.Kind, width int) string {
	if s.loading[k] {
		return lipgloss.NewStyle().Foreground(theme.Info).Italic(true).Render("Génération en cours…")
	}
	if err := s.errs[k]; err != nil {
		return lipgloss.NewStyle().Foreground(theme.Error).Width(width).Render(generationErrorText(err)) +
			"\n\n" + lipgloss.NewStyle().Foreground(theme.TextDim).Render("g : réessayer")
	}
	return ""
}

func (s *WorkshopScreen) viewSummary(width, height int) string {
	if st := s.viewStatus(workshop.KindSummary, width); st != "" {
		return st
	}
	lines := strings.Split(lipgloss.NewStyle().Foreground(theme.Text).Width(width).Render(s.summary), "\n")
	if limit := len(lines) - height; s.scroll > limit {
		s.scroll = limit
	}
	if s.scroll < 0 {
		s.scroll = 0
	}
	end := s.scroll + height
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[s.scroll:end], "\n")
}

func (s *WorkshopScreen) viewFlashcards(width, height int) string {
	if st := s.viewStatus(workshop.KindFlashcards, width); st != "" {
		return st
	}
	card, ok := s.deck.Current()
	if !ok {
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("Aucune fiche générée.")
	}
	pos, total := s.deck.Position()

	side, text, fg := "QUESTION", card.Front, theme.Primary
	if s.deck.Flipped() {
		side, text, fg = "RÉPONSE", card.Back, theme.Success
	}
	cw := width - 8
	if cw > 70 {
		cw = 70
	}
	content := lipgloss.NewStyle().Foreground(fg).Bold(true).Render(side) + "\n\n" +
		lipgloss.NewStyle().Foreground(theme.Text).Width(cw).Render(text)
	counter := lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("Fiche %d / %d", pos, total))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, components.ArcadeCard(content, cw+4), "", counter))
}

func (s *WorkshopScreen) viewQuiz(width int) string {
	if st := s.viewStatus(workshop.KindQuiz, width); st != "" {
		return st
	}
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).
		Render(fmt.Sprintf("QCM prêt : %d questions", len(s.quiz.Questions))))
	b.WriteString("\n\n")
	for i, q := range s.quiz.Questions {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Width(width).
			Render(fmt.Sprintf("%d. %s", i+1, q.Question)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Highlight).Render("Entrée : commencer le quiz"))
	return b.String()
}
