package workshop

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/capsulemed/internal/document"
	"github.com/abhisek/capsulemed/internal/llm"
	"github.com/abhisek/capsulemed/internal/router"
	"github.com/abhisek/capsulemed/internal/screens/deps"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

var courseText = strings.Repeat("Le néphron est l'unité fonctionnelle du rein. ", 5)

func loaded(t *testing.T, provider llm.Provider) *WorkshopScreen {
	t.Helper()
	d := &deps.Deps{Provider: provider}
	d.Fill()
	s := New(d)
	s.Update(extractedMsg{screen: s.id, doc: &document.Document{Name: "rein.pdf", PageCount: 1, Text: courseText}})
	if s.doc == nil {
		t.Fatal("document not loaded")
	}
	return s
}

func cards(n int) json.RawMessage {
	var parts []string
	for i := 1; i <= n; i++ {
		parts = append(parts, fmt.Sprintf(`{"front":"Recto %d","back":"Verso %d"}`, i, i))
	}
	return json.RawMessage(`{"cards":[` + strings.Join(parts, ",") + `]}`)
}

func TestOpenRejectsNonPDF(t *testing.T) {
	d := &deps.Deps{}
	d.Fill()
	s := New(d)

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("pas un pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	s.path.Model.SetValue(path)

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil || !s.extracting {
		t.Fatal("enter should start the extraction")
	}
	s.Update(cmd())
	if s.doc != nil || s.extracting {
		t.Fatal("a text file must not be opened")
	}
	if !strings.Contains(s.View(100, 30), "pas un PDF") {
		t.Error("expected the not-a-PDF message")
	}
}

func TestFlashcardsTabGeneratesOnceAndReviews(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: cards(8)})
	s := loaded(t, mock)

	_, cmd := s.Update(keyPress('3'))
	if cmd == nil || s.tab != TabFlashcards {
		t.Fatal("selecting the tab should start generation")
	}
	if !strings.Contains(s.View(100, 30), "Génération en cours") {
		t.Error("expected a loading state")
	}
	s.Update(cmd())
	if s.deck == nil {
		t.Fatal("deck not built")
	}

	// Coming back to the tab reuses the cards.
	s.Update(keyPress('1'))
	if _, again := s.Update(keyPress('3')); again != nil {
		t.Error("cards should not be regenerated")
	}

	if !strings.Contains(s.View(100, 30), "Recto 1") {
		t.Error("front should be shown first")
	}
	s.Update(specialKey(tea.KeySpace))
	if !strings.Contains(s.View(100, 30), "Verso 1") {
		t.Error("space should flip the card")
	}
	s.Update(specialKey(tea.KeyRight))
	view := s.View(100, 30)
	if !strings.Contains(view, "Recto 2") || !strings.Contains(view, "Fiche 2 / 8") {
		t.Errorf("next card not shown:\n%s", view)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d", mock.CallCount())
	}
}

func TestGenerationErrorAndRetry(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{}})
	s := loaded(t, mock)

	_, cmd := s.Update(keyPress('2'))
	s.Update(cmd())
	view := s.View(100, 30)
	if !strings.Contains(view, "Erreur") || !strings.Contains(view, "réessayer") {
		t.Fatalf("expected an inline error:\n%s", view)
	}

	mock.AddResponse(llm.MockResponse{Text: "# Résumé du rein"})
	_, cmd = s.Update(keyPress('g'))
	if cmd == nil {
		t.Fatal("g should regenerate")
	}
	s.Update(cmd())
	if !strings.Contains(s.View(100, 30), "Résumé du rein") {
		t.Error("summary not shown after retry")
	}
}

func TestNoProviderShowsConfigurationMessage(t *testing.T) {
	s := loaded(t, nil)
	_, cmd := s.Update(keyPress('2'))
	s.Update(cmd())
	if !strings.Contains(s.View(120, 30), "Clé API manquante") {
		t.Error("expected the missing key message")
	}
}

func TestStaleResultsIgnoredAfterNewDocument(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "ancien résumé"})
	s := loaded(t, mock)

	_, cmd := s.Update(keyPress('2'))
	s.Update(extractedMsg{screen: s.id, doc: &document.Document{Name: "coeur.pdf", Text: courseText}})
	s.Update(cmd())
	if s.summary != "" {
		t.Error("summary from the previous document applied")
	}
	if s.tab != TabChat {
		t.Error("a new document should open on the chat tab")
	}
}

func TestQuizLaunch(t *testing.T) {
	var qs []string
	for i := 1; i <= 5; i++ {
		qs = append(qs, fmt.Sprintf(`{"id":%d,"question":"Q%d ?","options":[{"id":1,"text":"A","isCorrect":true},{"id":2,"text":"B","isCorrect":false}],"explanation":"E"}`, i, i))
	}
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"questions":[` + strings.Join(qs, ",") + `]}`)})
	s := loaded(t, mock)

	_, cmd := s.Update(keyPress('4'))
	s.Update(cmd())
	if s.quiz == nil {
		t.Fatal("quiz not generated")
	}
	_, cmd = s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("enter should launch the quiz")
	}
	if _, ok := cmd().(router.PushScreenMsg); !ok {
		t.Error("expected a pushed quiz screen")
	}
}

func TestChatCapturesInput(t *testing.T) {
	s := loaded(t, nil)
	if s.CapturingInput() {
		t.Fatal("chat starts blurred")
	}
	s.Update(keyPress('c'))
	if !s.CapturingInput() {
		t.Fatal("c should focus the chat")
	}
	s.Update(keyPress('2'))
	if s.tab != TabChat {
		t.Error("keys typed in the chat must not switch tabs")
	}
}
