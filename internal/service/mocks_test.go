package service

import (
	"context"
	"encoding/json"

	"history-quiz/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockCompletionService ---
type MockCompletionService struct {
	mock.Mock
}

func (m *MockCompletionService) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// CompleteJSON decodes the first return value, a raw JSON string, into out.
func (m *MockCompletionService) CompleteJSON(ctx context.Context, req domain.CompletionRequest, out any) error {
	args := m.Called(ctx, req, out)
	if err := args.Error(1); err != nil {
		return err
	}
	if raw := args.String(0); raw != "" {
		return json.Unmarshal([]byte(raw), out)
	}
	return nil
}

// ofKind matches a CompletionRequest by kind.
func ofKind(kind domain.RequestKind) interface{} {
	return mock.MatchedBy(func(req domain.CompletionRequest) bool {
		return req.Kind == kind
	})
}
