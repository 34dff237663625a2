package prompt

import (
	"history-quiz/internal/domain"
)

func str() map[string]any {
	return map[string]any{"type": "string", "minLength": 1}
}

func object(required []string, props map[string]any) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func arrayOf(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "minItems": 1, "items": items}
}

var objectiveQuizSchema = &domain.Schema{
	Name: "objective_quiz",
	Definition: object([]string{"mc_questions", "fill_in_blanks"}, map[string]any{
		"mc_questions": arrayOf(object([]string{"question", "options", "answer"}, map[string]any{
			"question": str(),
			"options": object([]string{"A", "B", "C", "D"}, map[string]any{
				"A": str(),
				"B": str(),
				"C": str(),
				"D": str(),
			}),
			"answer": str(),
		})),
		"fill_in_blanks": arrayOf(object([]string{"question", "answer"}, map[string]any{
			"question": str(),
			"answer":   str(),
		})),
	}),
}

var statementsSchema = &domain.Schema{
	Name: "statements",
	Definition: object([]string{"statements"}, map[string]any{
		"statements": arrayOf(object([]string{"statement", "is_true"}, map[string]any{
			"statement":              str(),
			"is_true":                map[string]any{"type": "boolean"},
			"correct_value_if_false": map[string]any{"type": "string"},
		})),
	}),
}

var essayFeedbackSchema = &domain.Schema{
	Name: "essay_feedback",
	Definition: object([]string{"score", "comment", "correct_answer"}, map[string]any{
		"score":          str(),
		"comment":        str(),
		"correct_answer": str(),
	}),
}

var overallFeedbackSchema = &domain.Schema{
	Name: "overall_feedback",
	Definition: object([]string{"comment", "emojis"}, map[string]any{
		"comment": str(),
		"emojis":  map[string]any{"type": "string"},
	}),
}
