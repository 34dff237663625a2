package domain

import (
	"context"
)

// RequestKind identifies which prompt/schema pair a completion request uses.
type RequestKind string

const (
	KindObjectiveQuiz   RequestKind = "objective_quiz"
	KindStatements      RequestKind = "statements"
	KindEssayOutline    RequestKind = "essay_outline"
	KindEssayFeedback   RequestKind = "essay_feedback"
	KindOverallFeedback RequestKind = "overall_feedback"
	KindHint            RequestKind = "hint"
)

// Schema is a named JSON Schema definition the reply must satisfy.
type Schema struct {
	Name       string
	Definition map[string]any
}

// CompletionRequest is the payload sent to the completion service.
// A nil Schema means a plain-text reply.
type CompletionRequest struct {
	Kind   RequestKind
	Prompt string
	Schema *Schema
}

// CompletionService is the port to the language-model backend.
type CompletionService interface {
	// Complete returns the plain-text reply.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// CompleteJSON validates the reply against req.Schema and decodes it into out.
	CompleteJSON(ctx context.Context, req CompletionRequest, out any) error
}
