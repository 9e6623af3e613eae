package quiz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuiz() Quiz {
	return Quiz{
		CapsuleID: 1,
		Questions: []Question{
			{ID: 1, Question: "Organite de l'ATP ?", Options: []Option{
				{ID: 1, Text: "Noyau"},
				{ID: 2, Text: "Mitochondrie", IsCorrect: true},
			}},
			{ID: 2, Question: "Procaryote ?", Options: []Option{
				{ID: 1, Text: "E. coli", IsCorrect: true},
				{ID: 2, Text: "Levure"},
				{ID: 3, Text: "Neurone"},
			}},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(q *Quiz)
		wantErr bool
	}{
		{"valid", func(q *Quiz) {}, false},
		{"no questions", func(q *Quiz) { q.Questions = nil }, true},
		{"no correct", func(q *Quiz) { q.Questions[0].Options[1].IsCorrect = false }, true},
		{"two correct", func(q *Quiz) { q.Questions[1].Options[2].IsCorrect = true }, true},
		{"single option", func(q *Quiz) { q.Questions[0].Options = q.Questions[0].Options[1:] }, true},
		{"duplicate option id", func(q *Quiz) { q.Questions[1].Options[2].ID = 1 }, true},
		{"empty text", func(q *Quiz) { q.Questions[0].Question = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := sampleQuiz()
			tt.mutate(&q)
			err := Validate(q)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidQuiz)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEngineFullRun(t *testing.T) {
	e := NewEngine(sampleQuiz())
	assert.Equal(t, NotStarted, e.State())
	_, ok := e.Current()
	assert.False(t, ok)

	require.NoError(t, e.Start())
	q, ok := e.Current()
	require.True(t, ok)
	assert.Equal(t, 1, q.ID)

	require.NoError(t, e.Select(1))
	require.NoError(t, e.Select(2)) // replaces the prior choice
	sel, _ := e.Selected()
	assert.Equal(t, 2, sel)

	a, err := e.Submit()
	require.NoError(t, err)
	assert.True(t, a.Correct)
	assert.Equal(t, Submitted, e.State())

	assert.ErrorIs(t, e.Select(1), ErrWrongState, "selection is locked after submit")

	finished, err := e.Next()
	require.NoError(t, err)
	assert.False(t, finished)
	_, hasSel := e.Selected()
	assert.False(t, hasSel)

	require.NoError(t, e.Select(2))
	a, err = e.Submit()
	require.NoError(t, err)
	assert.False(t, a.Correct)

	finished, err = e.Next()
	require.NoError(t, err)
	assert.True(t, finished)
	assert.Equal(t, Finished, e.State())

	res := e.Result()
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Answers, 2)
}

func TestEngineGuards(t *testing.T) {
	e := NewEngine(sampleQuiz())
	assert.ErrorIs(t, e.Select(1), ErrWrongState)
	_, err := e.Submit()
	assert.ErrorIs(t, err, ErrWrongState)

	require.NoError(t, e.Start())
	_, err = e.Submit()
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.ErrorIs(t, e.Select(99), ErrUnknownOption)
	_, err = e.Next()
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestEngineRestartResetsScore(t *testing.T) {
	e := NewEngine(sampleQuiz())
	require.NoError(t, e.Start())
	require.NoError(t, e.Select(2))
	_, _ = e.Submit()
	require.Equal(t, 1, e.Score())

	require.NoError(t, e.Start())
	assert.Equal(t, 0, e.Score())
	assert.Equal(t, 0, e.Index())
	assert.Empty(t, e.Result().Answers)
}

func TestEngineScoresFirstCorrectOption(t *testing.T) {
	q := Quiz{Questions: []Question{{ID: 1, Question: "?", Options: []Option{
		{ID: 1, Text: "a", IsCorrect: true},
		{ID: 2, Text: "b", IsCorrect: true},
	}}}}
	e := NewEngine(q)
	require.NoError(t, e.Start())
	require.NoError(t, e.Select(2))
	a, err := e.Submit()
	require.NoError(t, err)
	assert.False(t, a.Correct)
}

func TestEmptyQuizCannotStart(t *testing.T) {
	err := NewEngine(Quiz{}).Start()
	if !errors.Is(err, ErrInvalidQuiz) {
		t.Fatalf("err = %v, want ErrInvalidQuiz", err)
	}
}
