// Package catalog serves the built-in course capsules and their static
// quizzes.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/capsulemed/internal/quiz"
)

//go:embed capsules.yaml
var capsulesYAML []byte

//go:embed quizzes.yaml
var quizzesYAML []byte

// Capsule is one short video lesson.
type Capsule struct {
	ID          int    `yaml:"id"`
	Title       string `yaml:"title"`
	Subject     string `yaml:"subject"`
	Theme       string `yaml:"theme"`
	VideoURL    string `yaml:"video_url"`
	Duration    string `yaml:"duration"`
	Description string `yaml:"description"`
}

// Theme groups capsules within a subject.
type Theme struct {
	Name     string
	Capsules []Capsule
}

// Subject is the top level of the catalog tree.
type Subject struct {
	Name   string
	Themes []Theme
}

// Catalog is an immutable, indexed view of the course data.
type Catalog struct {
	capsules []Capsule
	subjects []Subject
	byID     map[int]int
	quizzes  map[int]quiz.Quiz
}

// Default parses the embedded catalog. The embedded data is part of the
// binary, so a parse failure is a build defect and panics.
func Default() *Catalog {
	c, err := Parse(capsulesYAML, quizzesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Parse builds a Catalog from capsule and quiz YAML documents. Capsule ids
// must be unique and positive; every quiz must pass quiz.Validate and refer
// to a known capsule.
func Parse(capsules, quizzes []byte) (*Catalog, error) {
	var cf struct {
		Capsules []Capsule `yaml:"capsules"`
	}
	if err := yaml.Unmarshal(capsules, &cf); err != nil {
		return nil, fmt.Errorf("parse capsules: %w", err)
	}

	c := &Catalog{
		capsules: cf.Capsules,
		byID:     make(map[int]int, len(cf.Capsules)),
		quizzes:  make(map[int]quiz.Quiz),
	}
	for i, cp := range cf.Capsules {
		if cp.ID <= 0 {
			return nil, fmt.Errorf("capsule %q: id must be positive", cp.Title)
		}
		if _, dup := c.byID[cp.ID]; dup {
			return nil, fmt.Errorf("capsule %d: duplicate id", cp.ID)
		}
		c.byID[cp.ID] = i
	}
	c.subjects = group(cf.Capsules)

	if len(quizzes) > 0 {
		var qf struct {
			Quizzes []quiz.Quiz `yaml:"quizzes"`
		}
		if err := yaml.Unmarshal(quizzes, &qf); err != nil {
			return nil, fmt.Errorf("parse quizzes: %w", err)
		}
		for _, q := range qf.Quizzes {
			if _, ok := c.byID[q.CapsuleID]; !ok {
				return nil, fmt.Errorf("quiz for unknown capsule %d", q.CapsuleID)
			}
			if err := quiz.Validate(q); err != nil {
				return nil, fmt.Errorf("quiz for capsule %d: %w", q.CapsuleID, err)
			}
			c.quizzes[q.CapsuleID] = q
		}
	}
	return c, nil
}

// group builds subject → theme → capsules, keeping first-seen order at
// every level.
func group(capsules []Capsule) []Subject {
	var subjects []Subject
	subjectIdx := map[string]int{}
	themeIdx := map[string]map[string]int{}

	for _, cp := range capsules {
		si, ok := subjectIdx[cp.Subject]
		if !ok {
			si = len(subjects)
			subjectIdx[cp.Subject] = si
			themeIdx[cp.Subject] = map[string]int{}
			subjects = append(subjects, Subject{Name: cp.Subject})
		}
		ti, ok := themeIdx[cp.Subject][cp.Theme]
		if !ok {
			ti = len(subjects[si].Themes)
			themeIdx[cp.Subject][cp.Theme] = ti
			subjects[si].Themes = append(subjects[si].Themes, Theme{Name: cp.Theme})
		}
		subjects[si].Themes[ti].Capsules = append(subjects[si].Themes[ti].Capsules, cp)
	}
	return subjects
}

// Subjects returns the grouped catalog tree.
func (c *Catalog) Subjects() []Subject {
	return c.subjects
}

// Subject returns a subject by name.
func (c *Catalog) Subject(name string) (Subject, bool) {
	for _, s := range c.subjects {
		if s.Name == name {
			return s, true
		}
	}
	return Subject{}, false
}

// All returns every capsule in catalog order.
func (c *Catalog) All() []Capsule {
	return c.capsules
}

// Len returns the number of capsules.
func (c *Catalog) Len() int {
	return len(c.capsules)
}

// ByID looks up a capsule.
func (c *Catalog) ByID(id int) (Capsule, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Capsule{}, false
	}
	return c.capsules[i], true
}

// QuizFor returns the static quiz attached to a capsule.
func (c *Catalog) QuizFor(capsuleID int) (quiz.Quiz, bool) {
	q, ok := c.quizzes[capsuleID]
	return q, ok
}

// SubjectProgress counts completed capsules in one subject.
type SubjectProgress struct {
	Subject   string
	Completed int
	Total     int
}

// Progress tallies completed capsule ids per subject, in catalog order.
// Unknown ids are ignored.
func (c *Catalog) Progress(completed []int) []SubjectProgress {
	done := make(map[int]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}
	out := make([]SubjectProgress, 0, len(c.subjects))
	for _, s := range c.subjects {
		p := SubjectProgress{Subject: s.Name}
		for _, t := range s.Themes {
			for _, cp := range t.Capsules {
				p.Total++
				if done[cp.ID] {
					p.Completed++
				}
			}
		}
		out = append(out, p)
	}
	return out
}

// QuizCapsules returns the ids of capsules that have a static quiz, sorted.
func (c *Catalog) QuizCapsules() []int {
	ids := make([]int, 0, len(c.quizzes))
	for id := range c.quizzes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
