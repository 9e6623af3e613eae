package quiz

import "errors"

var (
	ErrWrongState    = errors.New("quiz: operation not allowed in current state")
	ErrNoSelection   = errors.New("quiz: no option selected")
	ErrUnknownOption = errors.New("quiz: unknown option")
)

// State is the engine's position in the question cycle.
type State int

const (
	NotStarted State = iota
	Answering
	Submitted
	Finished
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Answering:
		return "answering"
	case Submitted:
		return "submitted"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// Answer records a submitted question.
type Answer struct {
	QuestionID int
	OptionID   int
	Correct    bool
}

// Result summarizes a finished run.
type Result struct {
	Score   int
	Total   int
	Answers []Answer
}

// Engine runs one quiz: Start, then Select/Submit/Next per question until
// Finished. Only one option can be selected at a time.
type Engine struct {
	quiz     Quiz
	state    State
	index    int
	selected int
	hasSel   bool
	score    int
	answers  []Answer
}

// NewEngine returns an engine in the NotStarted state.
func NewEngine(q Quiz) *Engine {
	return &Engine{quiz: q}
}

// Start begins (or restarts) the quiz at the first question.
func (e *Engine) Start() error {
	if len(e.quiz.Questions) == 0 {
		return ErrInvalidQuiz
	}
	e.state = Answering
	e.index = 0
	e.score = 0
	e.answers = nil
	e.clearSelection()
	return nil
}

// Select marks optionID as the current choice, replacing any prior one.
func (e *Engine) Select(optionID int) error {
	if e.state != Answering {
		return ErrWrongState
	}
	if _, ok := e.quiz.Questions[e.index].Option(optionID); !ok {
		return ErrUnknownOption
	}
	e.selected = optionID
	e.hasSel = true
	return nil
}

// Submit locks in the selection and scores it against the first option
// flagged correct.
func (e *Engine) Submit() (Answer, error) {
	if e.state != Answering {
		return Answer{}, ErrWrongState
	}
	if !e.hasSel {
		return Answer{}, ErrNoSelection
	}
	q := e.quiz.Questions[e.index]
	correct, ok := q.Correct()
	a := Answer{
		QuestionID: q.ID,
		OptionID:   e.selected,
		Correct:    ok && correct.ID == e.selected,
	}
	if a.Correct {
		e.score++
	}
	e.answers = append(e.answers, a)
	e.state = Submitted
	return a, nil
}

// Next advances past a submitted question. It reports true when the quiz
// just finished.
func (e *Engine) Next() (bool, error) {
	if e.state != Submitted {
		return false, ErrWrongState
	}
	e.clearSelection()
	if e.index == len(e.quiz.Questions)-1 {
		e.state = Finished
		return true, nil
	}
	e.index++
	e.state = Answering
	return false, nil
}

func (e *Engine) clearSelection() {
	e.selected = 0
	e.hasSel = false
}

func (e *Engine) State() State { return e.state }
func (e *Engine) Index() int   { return e.index }
func (e *Engine) Score() int   { return e.score }
func (e *Engine) Total() int   { return len(e.quiz.Questions) }
func (e *Engine) Quiz() Quiz   { return e.quiz }

// Current returns the question being answered or reviewed.
func (e *Engine) Current() (Question, bool) {
	if e.state == NotStarted || e.state == Finished {
		return Question{}, false
	}
	return e.quiz.Questions[e.index], true
}

// Selected returns the selected option id, if any.
func (e *Engine) Selected() (int, bool) {
	return e.selected, e.hasSel
}

// LastAnswer returns the answer for the current question once submitted.
func (e *Engine) LastAnswer() (Answer, bool) {
	if e.state != Submitted || len(e.answers) == 0 {
		return Answer{}, false
	}
	return e.answers[len(e.answers)-1], true
}

// Result returns the score so far and the recorded answers.
func (e *Engine) Result() Result {
	answers := make([]Answer, len(e.answers))
	copy(answers, e.answers)
	return Result{Score: e.score, Total: e.Total(), Answers: answers}
}
