package summary

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/capsulemed/internal/profile"
	"github.com/abhisek/capsulemed/internal/quiz"
	"github.com/abhisek/capsulemed/internal/router"
	"github.com/abhisek/capsulemed/internal/screen"
)

// fakeProfiles implements profile.Store for testing.
type fakeProfiles struct {
	profile.Store
	signedIn  bool
	completed []int
}

func (f *fakeProfiles) MarkCompleted(_ context.Context, id int) (bool, error) {
	if !f.signedIn {
		return false, profile.ErrNotSignedIn
	}
	for _, c := range f.completed {
		if c == id {
			return false, nil
		}
	}
	f.completed = append(f.completed, id)
	return true, nil
}

func (f *fakeProfiles) Current(context.Context) (*profile.Profile, error) {
	if !f.signedIn {
		return nil, nil
	}
	return &profile.Profile{UID: "u1", DisplayName: "Alice", CompletedCapsules: f.completed}, nil
}

func testQuiz(capsuleID int) (quiz.Quiz, quiz.Result) {
	q := quiz.Quiz{CapsuleID: capsuleID, Questions: []quiz.Question{
		{ID: 1, Question: "Quel organe pompe le sang ?"},
		{ID: 2, Question: "Combien de cavités a le cœur ?"},
	}}
	return q, quiz.Result{Score: 1, Total: 2, Answers: []quiz.Answer{
		{QuestionID: 1, OptionID: 1, Correct: true},
		{QuestionID: 2, OptionID: 3, Correct: false},
	}}
}

func TestSummaryView(t *testing.T) {
	q, res := testQuiz(0)
	s := New("Cycle cardiaque", q, res, nil)
	view := s.View(100, 30)
	for _, want := range []string{"Quiz terminé", "Cycle cardiaque", "Score : 1/2", "50%", "Quel organe"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if s.Init() != nil {
		t.Error("document quizzes must not record completion")
	}
}

func TestSummaryMarksCapsuleCompleted(t *testing.T) {
	q, res := testQuiz(4)
	profiles := &fakeProfiles{signedIn: true}
	s := New("Capsule 4", q, res, profiles)

	cmd := s.Init()
	if cmd == nil {
		t.Fatal("expected completion command")
	}
	_, next := s.Update(cmd())
	if next == nil {
		t.Fatal("expected a profile broadcast")
	}
	changed, ok := next().(screen.ProfileChangedMsg)
	if !ok || changed.Profile == nil || len(changed.Profile.CompletedCapsules) != 1 {
		t.Fatalf("broadcast = %+v", changed)
	}
	if !strings.Contains(s.View(100, 30), "Capsule validée") {
		t.Error("view should confirm the completion")
	}

	// Finishing again is idempotent.
	again := New("Capsule 4", q, res, profiles)
	again.Update(again.Init()())
	if !strings.Contains(again.View(100, 30), "déjà validée") {
		t.Error("second completion should be reported as already done")
	}
	if len(profiles.completed) != 1 {
		t.Errorf("completed = %v", profiles.completed)
	}
}

func TestSummarySignedOut(t *testing.T) {
	q, res := testQuiz(4)
	s := New("Capsule 4", q, res, &fakeProfiles{})
	if _, next := s.Update(s.Init()()); next != nil {
		t.Error("no broadcast expected when signed out")
	}
	if !strings.Contains(s.View(100, 30), "Connecte-toi") {
		t.Error("view should ask to sign in")
	}
}

func TestSummaryEnterPops(t *testing.T) {
	q, res := testQuiz(0)
	s := New("x", q, res, nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
