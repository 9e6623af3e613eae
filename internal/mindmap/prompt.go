package mindmap

import (
	"fmt"

	"github.com/abhisek/capsulemed/internal/document"
)

const systemPrompt = `Tu structures des cours de médecine en cartes mentales pour des étudiants.
Réponds uniquement en JSON, en français.`

func buildRootPrompt(text string, cfg Config) string {
	return fmt.Sprintf(`Analyse ce cours de médecine. Génère un titre principal court et %d chapitres majeurs.
IMPORTANT: 'label' (max 4 mots), 'description' (explication détaillée).
TEXTE : %s
FORMAT JSON : { "label": "Titre", "description": "...", "children": [{"label": "Chapitre", "description": "..."}] }`,
		cfg.Chapters, document.Prefix(text, cfg.RootContextChars))
}

func buildDeepenPrompt(text, label string, cfg Config) string {
	return fmt.Sprintf(`Sujet : %s. Détaille en %d points atomiques précis.
CONSIGNE: 'label' (max 4 mots), 'description' pédagogique.
CONTEXTE : %s
FORMAT JSON : { "points": [{"label": "...", "description": "..."}] }`,
		label, cfg.Points, document.Prefix(text, cfg.DeepenContextChars))
}
