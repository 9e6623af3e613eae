// Package workshop generates study material (summary, flashcards, quiz)
// from an extracted course document.
package workshop

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/abhisek/capsulemed/internal/chat"
	"github.com/abhisek/capsulemed/internal/document"
	"github.com/abhisek/capsulemed/internal/llm"
	"github.com/abhisek/capsulemed/internal/quiz"
)

const (
	MinFlashcards = 8
	MaxFlashcards = 10
	QuizQuestions = 5
)

// Kind names one generator.
type Kind string

const (
	KindSummary    Kind = "summary"
	KindFlashcards Kind = "flashcards"
	KindQuiz       Kind = "quiz"
)

// Flashcard is a question/answer pair, both markdown.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Config holds generation settings.
type Config struct {
	SummaryMaxTokens int
	JSONMaxTokens    int
	TextTemperature  float64
	JSONTemperature  float64
}

// DefaultConfig returns the settings used by the app.
func DefaultConfig() Config {
	return Config{
		SummaryMaxTokens: 4096,
		JSONMaxTokens:    4096,
		TextTemperature:  0.7,
		JSONTemperature:  0.1,
	}
}

// Service generates material for one document and caches each result
// until Forget is called. Safe for concurrent use: a generation that was
// in flight when its kind was forgotten is returned to its caller but not
// cached.
type Service struct {
	provider llm.Provider
	cfg      Config
	text     string

	mu      sync.Mutex
	gens    map[Kind]int
	summary string
	cards   []Flashcard
	quiz    *quiz.Quiz
}

// NewService creates a service over the extracted document text.
func NewService(provider llm.Provider, cfg Config, text string) *Service {
	return &Service{provider: provider, cfg: cfg, text: text, gens: map[Kind]int{}}
}

// Forget drops the cached result of k so the next call regenerates it.
func (s *Service) Forget(k Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[k]++
	switch k {
	case KindSummary:
		s.summary = ""
	case KindFlashcards:
		s.cards = nil
	case KindQuiz:
		s.quiz = nil
	}
}

// Summary returns the pedagogical markdown explanation of the course.
func (s *Service) Summary(ctx context.Context) (string, error) {
	s.mu.Lock()
	cached, gen := s.summary, s.gens[KindSummary]
	s.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	resp, err := s.generate(ctx, KindSummary, llm.Request{
		Messages:    s.task(summaryTask),
		MaxTokens:   s.cfg.SummaryMaxTokens,
		Temperature: s.cfg.TextTemperature,
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("summary: %w", &llm.ErrInvalidResponse{Err: fmt.Errorf("empty response")})
	}

	s.keep(KindSummary, gen, func() { s.summary = text })
	return text, nil
}

// Flashcards returns 8 to 10 revision cards.
func (s *Service) Flashcards(ctx context.Context) ([]Flashcard, error) {
	s.mu.Lock()
	cached, gen := s.cards, s.gens[KindFlashcards]
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	resp, err := s.generate(ctx, KindFlashcards, llm.Request{
		Messages:    s.task(flashcardsTask),
		Schema:      FlashcardsSchema,
		MaxTokens:   s.cfg.JSONMaxTokens,
		Temperature: s.cfg.JSONTemperature,
	})
	if err != nil {
		return nil, err
	}
	var out struct {
		Cards []Flashcard `json:"cards"`
	}
	if err := llm.DecodeJSON(resp, &out); err != nil {
		return nil, fmt.Errorf("parse flashcards: %w", err)
	}
	for i := range out.Cards {
		out.Cards[i].Front = strings.TrimSpace(out.Cards[i].Front)
		out.Cards[i].Back = strings.TrimSpace(out.Cards[i].Back)
	}

	s.keep(KindFlashcards, gen, func() { s.cards = out.Cards })
	return out.Cards, nil
}

// Quiz returns a validated five-question quiz.
func (s *Service) Quiz(ctx context.Context) (quiz.Quiz, error) {
	s.mu.Lock()
	cached, gen := s.quiz, s.gens[KindQuiz]
	s.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}

	resp, err := s.generate(ctx, KindQuiz, llm.Request{
		Messages:    s.task(quizTask),
		Schema:      QuizSchema,
		MaxTokens:   s.cfg.JSONMaxTokens,
		Temperature: s.cfg.JSONTemperature,
	})
	if err != nil {
		return quiz.Quiz{}, err
	}
	var q quiz.Quiz
	if err := llm.DecodeJSON(resp, &q); err != nil {
		return quiz.Quiz{}, fmt.Errorf("parse quiz: %w", err)
	}
	q.CapsuleID = 0
	if err := quiz.Validate(q); err != nil {
		return quiz.Quiz{}, fmt.Errorf("generated quiz: %w", err)
	}

	s.keep(KindQuiz, gen, func() { s.quiz = &q })
	return q, nil
}

// keep runs set under the lock unless k was forgotten since gen was read.
func (s *Service) keep(k Kind, gen int, set func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[k] == gen {
		set()
	}
}

func (s *Service) task(task string) []llm.Message {
	return []llm.Message{{Role: llm.RoleUser, Content: chat.DocumentPrompt(s.text, task)}}
}

func (s *Service) generate(ctx context.Context, k Kind, req llm.Request) (*llm.Response, error) {
	if err := document.CheckExtractable(s.text); err != nil {
		return nil, err
	}
	if s.provider == nil {
		return nil, ErrNoProvider
	}
	resp, err := s.provider.Generate(llm.WithPurpose(ctx, string(k)), req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k, err)
	}
	return resp, nil
}
