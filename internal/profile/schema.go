package profile

import "github.com/abhisek/quizmind/internal/validate"

func pair(value map[string]any) map[string]any {
	return map[string]any{
		"type":        "array",
		"minItems":    2,
		"maxItems":    2,
		"prefixItems": []any{map[string]any{"type": "string"}, value},
	}
}

var unit = map[string]any{"type": "number", "minimum": 0, "maximum": 1}

// Schema is the JSON schema for persisted profiles.
var Schema = &validate.Schema{
	Name: "profile-v1",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"version", "knowledgeLevel", "performance"},
		"properties": map[string]any{
			"version":       map[string]any{"type": "string"},
			"learningStyle": map[string]any{"type": "string"},
			"preferences": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"hintStyle":      map[string]any{"type": "string"},
					"feedbackDetail": map[string]any{"type": "string"},
					"challengeLevel": map[string]any{"type": "string"},
				},
			},
			"knowledgeLevel": map[string]any{
				"type":  "array",
				"items": pair(map[string]any{"type": "number"}),
			},
			"knowledgeGraph": map[string]any{
				"type": "array",
				"items": pair(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"masteryLevel":  map[string]any{"type": "number"},
						"practiceCount": map[string]any{"type": "integer", "minimum": 0},
					},
				}),
			},
			"performance": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"averageAccuracy": unit,
					"averageTime":     map[string]any{"type": "number", "minimum": 0},
					"sessionCount":    map[string]any{"type": "integer", "minimum": 0},
					"totalQuestions":  map[string]any{"type": "integer", "minimum": 0},
				},
			},
			"recentScores": map[string]any{
				"type":  "array",
				"items": unit,
			},
		},
	},
}
