package mindmap

import "github.com/abhisek/capsulemed/internal/llm"

var pointDefinition = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"label": map[string]any{
			"type":        "string",
			"minLength":   1,
			"description": "Titre court du concept (4 mots maximum)",
		},
		"description": map[string]any{
			"type":        "string",
			"description": "Explication pédagogique du concept",
		},
	},
	"required":             []any{"label", "description"},
	"additionalProperties": false,
}

// RootSchema is the shape of the BuildRoot response.
var RootSchema = &llm.Schema{
	Name:        "mindmap-root",
	Description: "Titre principal d'un cours et ses chapitres majeurs",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"label": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Titre principal court (4 mots maximum)",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "Explication détaillée du sujet du cours",
			},
			"children": map[string]any{
				"type":     "array",
				"items":    pointDefinition,
				"minItems": 1,
				"maxItems": 8,
			},
		},
		"required":             []any{"label", "description", "children"},
		"additionalProperties": false,
	},
}

// PointsSchema is the shape of the Deepen response.
var PointsSchema = &llm.Schema{
	Name:        "mindmap-points",
	Description: "Points atomiques détaillant un concept",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"points": map[string]any{
				"type":     "array",
				"items":    pointDefinition,
				"minItems": 1,
				"maxItems": 8,
			},
		},
		"required":             []any{"points"},
		"additionalProperties": false,
	},
}
