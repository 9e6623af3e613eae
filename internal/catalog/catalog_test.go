package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogShape(t *testing.T) {
	c := Default()
	require.Equal(t, 112, c.Len())

	var names []string
	for _, s := range c.Subjects() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Biologie", "Chimie", "Biophysique", "Méthodologie"}, names)

	bio, ok := c.Subject("Biologie")
	require.True(t, ok)
	require.Len(t, bio.Themes, 3)
	assert.Equal(t, "Biologie cellulaire et moléculaire", bio.Themes[0].Name)
	assert.Len(t, bio.Themes[0].Capsules, 15)
	assert.Equal(t, "Anatomie", bio.Themes[1].Name)
	assert.Equal(t, "Physiologie", bio.Themes[2].Name)

	phys, ok := c.Subject("Biophysique")
	require.True(t, ok)
	assert.Len(t, phys.Themes, 5)

	total := 0
	for _, s := range c.Subjects() {
		for _, th := range s.Themes {
			total += len(th.Capsules)
		}
	}
	assert.Equal(t, 112, total)
}

func TestByIDAndVideo(t *testing.T) {
	c := Default()
	first, ok := c.ByID(1)
	require.True(t, ok)
	assert.Contains(t, first.Title, "Introduction à la cellule")
	assert.Contains(t, first.VideoURL, "youtube.com/embed/")

	second, ok := c.ByID(2)
	require.True(t, ok)
	assert.Empty(t, second.VideoURL)

	_, ok = c.ByID(999)
	assert.False(t, ok)
}

func TestStaticQuiz(t *testing.T) {
	c := Default()
	q, ok := c.QuizFor(1)
	require.True(t, ok)
	assert.Len(t, q.Questions, 3)
	assert.Equal(t, []int{1}, c.QuizCapsules())

	_, ok = c.QuizFor(2)
	assert.False(t, ok)
}

func TestParseRejectsBadData(t *testing.T) {
	tests := []struct {
		name     string
		capsules string
		quizzes  string
	}{
		{"duplicate id", "capsules:\n  - {id: 1, title: a, subject: s, theme: t}\n  - {id: 1, title: b, subject: s, theme: t}\n", ""},
		{"zero id", "capsules:\n  - {id: 0, title: a, subject: s, theme: t}\n", ""},
		{"quiz unknown capsule", "capsules:\n  - {id: 1, title: a, subject: s, theme: t}\n",
			"quizzes:\n  - capsule_id: 7\n    questions: []\n"},
		{"quiz two correct", "capsules:\n  - {id: 1, title: a, subject: s, theme: t}\n",
			"quizzes:\n  - capsule_id: 1\n    questions:\n      - id: 1\n        question: q\n        options:\n          - {id: 1, text: x, is_correct: true}\n          - {id: 2, text: y, is_correct: true}\n"},
		{"malformed yaml", "capsules: [", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.capsules), []byte(tt.quizzes))
			assert.Error(t, err)
		})
	}
}

func TestGroupKeepsFirstSeenOrder(t *testing.T) {
	c, err := Parse([]byte(`capsules:
  - {id: 1, title: a, subject: Z, theme: t2}
  - {id: 2, title: b, subject: A, theme: t1}
  - {id: 3, title: c, subject: Z, theme: t1}
  - {id: 4, title: d, subject: Z, theme: t2}
`), nil)
	require.NoError(t, err)

	subs := c.Subjects()
	require.Len(t, subs, 2)
	assert.Equal(t, "Z", subs[0].Name)
	assert.Equal(t, "t2", subs[0].Themes[0].Name)
	assert.Equal(t, "t1", subs[0].Themes[1].Name)
	assert.Equal(t, []int{1, 4}, []int{subs[0].Themes[0].Capsules[0].ID, subs[0].Themes[0].Capsules[1].ID})
}

func TestProgress(t *testing.T) {
	c := Default()
	p := c.Progress([]int{1, 2, 46, 1000})
	require.Len(t, p, 4)
	assert.Equal(t, SubjectProgress{Subject: "Biologie", Completed: 2, Total: 45}, p[0])
	assert.Equal(t, SubjectProgress{Subject: "Chimie", Completed: 1, Total: 25}, p[1])
	assert.Equal(t, 0, p[3].Completed)
	assert.Equal(t, 12, p[3].Total)
}
