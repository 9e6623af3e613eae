package workshop

import "github.com/abhisek/capsulemed/internal/llm"

// FlashcardsSchema is the shape of the flashcard response.
var FlashcardsSchema = &llm.Schema{
	Name:        "flashcards",
	Description: "Cartes de révision question/réponse sur le cours",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"cards": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"front": map[string]any{
							"type":        "string",
							"minLength":   1,
							"description": "Question courte et directe",
						},
						"back": map[string]any{
							"type":        "string",
							"minLength":   1,
							"description": "Réponse précise, mots clés en **gras**",
						},
					},
					"required":             []any{"front", "back"},
					"additionalProperties": false,
				},
				"minItems": MinFlashcards,
				"maxItems": MaxFlashcards,
			},
		},
		"required":             []any{"cards"},
		"additionalProperties": false,
	},
}

// QuizSchema is the shape of the generated quiz response. Single-answer
// consistency is checked afterwards by quiz.Validate.
var QuizSchema = &llm.Schema{
	Name:        "document-quiz",
	Description: "QCM à réponse unique sur le cours",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":       map[string]any{"type": "integer"},
						"question": map[string]any{"type": "string", "minLength": 1},
						"options": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"id":        map[string]any{"type": "integer"},
									"text":      map[string]any{"type": "string", "minLength": 1},
									"isCorrect": map[string]any{"type": "boolean"},
								},
								"required":             []any{"id", "text", "isCorrect"},
								"additionalProperties": false,
							},
							"minItems": 2,
							"maxItems": 6,
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Pourquoi la bonne réponse est correcte",
						},
					},
					"required":             []any{"id", "question", "options", "explanation"},
					"additionalProperties": false,
				},
				"minItems": QuizQuestions,
				"maxItems": QuizQuestions,
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
