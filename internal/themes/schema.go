package themes

import "github.com/abhisek/memoria/internal/llm"

const (
	minFaces = 10
	maxFaces = 16
)

// CatalogSchema defines the JSON shape of a generated face catalog.
var CatalogSchema = &llm.Schema{
	Name:        "face-catalog",
	Description: "A themed set of distinct card faces for a memory matching game",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"faces": map[string]any{
				"type":     "array",
				"minItems": minFaces,
				"maxItems": maxFaces,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name": map[string]any{
							"type":        "string",
							"maxLength":   24,
							"description": "A short lower-case noun naming the face, unique within the list",
						},
						"glyph": map[string]any{
							"type":        "string",
							"maxLength":   8,
							"description": "A single emoji that depicts the face",
						},
					},
					"required":             []any{"name", "glyph"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"faces"},
		"additionalProperties": false,
	},
}
