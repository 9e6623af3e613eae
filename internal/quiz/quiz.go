// Package quiz holds the multiple-choice quiz model and the engine that
// walks a learner through it.
package quiz

import (
	"errors"
	"fmt"
)

// ErrInvalidQuiz is returned by Validate for malformed quizzes.
var ErrInvalidQuiz = errors.New("quiz: invalid quiz")

// Option is one answer choice.
type Option struct {
	ID        int    `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	IsCorrect bool   `json:"isCorrect" yaml:"is_correct"`
}

// Question is a single-answer multiple-choice question.
type Question struct {
	ID          int      `json:"id" yaml:"id"`
	Question    string   `json:"question" yaml:"question"`
	Options     []Option `json:"options" yaml:"options"`
	Explanation string   `json:"explanation" yaml:"explanation"`
}

// Quiz is an ordered list of questions. CapsuleID is zero for quizzes
// generated from a document.
type Quiz struct {
	CapsuleID int        `json:"capsuleId,omitempty" yaml:"capsule_id"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Correct returns the first option flagged correct.
func (q Question) Correct() (Option, bool) {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o, true
		}
	}
	return Option{}, false
}

// Option returns the option with the given id.
func (q Question) Option(id int) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Validate checks that the quiz has questions, every question has options
// with unique ids, and exactly one option is correct.
func Validate(q Quiz) error {
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrInvalidQuiz)
	}
	for i, question := range q.Questions {
		if question.Question == "" {
			return fmt.Errorf("%w: question %d has no text", ErrInvalidQuiz, i+1)
		}
		if len(question.Options) < 2 {
			return fmt.Errorf("%w: question %d has %d options", ErrInvalidQuiz, i+1, len(question.Options))
		}
		seen := make(map[int]bool, len(question.Options))
		correct := 0
		for _, o := range question.Options {
			if seen[o.ID] {
				return fmt.Errorf("%w: question %d repeats option id %d", ErrInvalidQuiz, i+1, o.ID)
			}
			seen[o.ID] = true
			if o.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("%w: question %d has %d correct options", ErrInvalidQuiz, i+1, correct)
		}
	}
	return nil
}
