package chat

import (
	"fmt"
	"strings"

	"github.com/abhisek/capsulemed/internal/catalog"
	"github.com/abhisek/capsulemed/internal/document"
	"github.com/abhisek/capsulemed/internal/mindmap"
)

// Surface builds the prompt for one chat panel.
type Surface interface {
	// Purpose labels requests in the llm event log.
	Purpose() string

	// Check reports a condition that makes asking pointless, such as a
	// document without a text layer.
	Check() error

	// Prompt wraps the learner's question with the panel's context.
	Prompt(question string) string
}

// Lesson is the chat next to a video capsule. A zero Capsule means no
// capsule is selected.
type Lesson struct {
	Capsule catalog.Capsule
}

// LessonGreeting is the first message of a lesson chat.
func LessonGreeting(c catalog.Capsule) string {
	if c.ID == 0 {
		return "Bonjour ! Je suis ton tuteur. Pose-moi une question sur le cours en cours."
	}
	return fmt.Sprintf("Nous regardons \"%s\". Une question sur ce sujet ?", c.Title)
}

func (Lesson) Purpose() string { return "chat-lesson" }
func (Lesson) Check() error    { return nil }

func (l Lesson) Prompt(question string) string {
	title, subject, theme := "Aucune vidéo sélectionnée", "Général", "Général"
	if l.Capsule.ID != 0 {
		title, subject, theme = l.Capsule.Title, l.Capsule.Subject, l.Capsule.Theme
	}
	return fmt.Sprintf(`Tu es un tuteur médical expert pour l'application "Capsule Med".
L'étudiant regarde actuellement la capsule vidéo : "%s".
Sujet : %s.
Thème : %s.

Réponds aux questions de l'étudiant de manière concise, pédagogique et encourageante.
Si la question n'a rien à voir avec la médecine ou le cours, ramène gentiment le sujet au cours.

Question étudiante: %s`, title, subject, theme, question)
}

// Document is the chat over an uploaded course PDF.
type Document struct {
	Name string
	Text string
}

// DocumentGreeting is the first message once a document is analysed.
func DocumentGreeting(name string) string {
	return fmt.Sprintf("J'ai analysé **%s**. Je suis prêt à t'aider ! Tu peux me demander un résumé, générer des fiches ou poser des questions.", name)
}

func (Document) Purpose() string { return "chat-document" }

func (d Document) Check() error {
	return document.CheckExtractable(d.Text)
}

func (d Document) Prompt(question string) string {
	return DocumentPrompt(d.Text, `Agis comme un tuteur pédagogique bienveillant.
Réponds à la question en te basant sur le PDF.
Explique les concepts simplement, fais des phrases courtes et aère ton texte.
Utilise du gras pour les mots importants.
Question: `+question)
}

// DocumentPrompt frames a task with the capped document text.
func DocumentPrompt(text, task string) string {
	return "CONTEXTE (Cours PDF) :\n" + document.ContextText(text) + "\n\nTACHE :\n" + task
}

// MindMap is the chat beside the concept map. Focus is the node the map
// is centred on, if any.
type MindMap struct {
	Focus *mindmap.Node
}

func (MindMap) Purpose() string { return "chat-mindmap" }
func (MindMap) Check() error    { return nil }

func (m MindMap) Prompt(question string) string {
	var b strings.Builder
	b.WriteString("Tuteur médecine.")
	if m.Focus != nil {
		fmt.Fprintf(&b, " L'étudiant étudie le concept « %s ».", m.Focus.Label)
		if m.Focus.Description != "" {
			fmt.Fprintf(&b, " Résumé du concept : %s", m.Focus.Description)
		}
	}
	b.WriteString(" Question: ")
	b.WriteString(question)
	return b.String()
}
