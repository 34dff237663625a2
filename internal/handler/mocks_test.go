package handler_test

import (
	"context"
	"errors"
	"io"
	"time"

	"history-quiz/internal/domain"
	"history-quiz/internal/dto"
)

// --- Manual Mocks ---

type MockAuthService struct {
	IssueAnonymousTokenFunc func(ctx context.Context) (*dto.TokenResponse, error)
}

func (m *MockAuthService) IssueAnonymousToken(ctx context.Context) (*dto.TokenResponse, error) {
	if m.IssueAnonymousTokenFunc != nil {
		return m.IssueAnonymousTokenFunc(ctx)
	}
	panic("MockAuthService.IssueAnonymousTokenFunc not implemented")
}

// ValidateJWT accepts "Bearer user-<id>" and yields the id after the prefix.
func (m *MockAuthService) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	const prefix = "user-"
	if len(tokenString) > len(prefix) && tokenString[:len(prefix)] == prefix {
		return &dto.AuthClaims{UserID: tokenString[len(prefix):], TokenType: "access"}, nil
	}
	return nil, errors.New("invalid jwt token")
}

type MockSessionService struct {
	CreateSessionFunc          func(ctx context.Context, userID string) (*dto.SessionResponse, error)
	GetSessionFunc             func(ctx context.Context, userID, id string) (*dto.SessionResponse, error)
	DeleteSessionFunc          func(ctx context.Context, userID, id string) error
	SelectTopicFunc            func(ctx context.Context, userID, id, topic string) (*dto.SessionResponse, error)
	AdvanceFunc                func(ctx context.Context, userID, id string) (*dto.SessionResponse, error)
	BackFunc                   func(ctx context.Context, userID, id string) (*dto.SessionResponse, error)
	JumpToFunc                 func(ctx context.Context, userID, id string, stage domain.Stage) (*dto.SessionResponse, error)
	GenerateObjectiveQuizFunc  func(ctx context.Context, userID, id string) (*dto.SessionResponse, error)
	SubmitObjectiveAnswersFunc func(ctx context.Context, userID, id string, resp domain.ObjectiveResponse) (*dto.SubmissionResponse, error)
	GenerateStatementsFunc     func(ctx context.Context, userID, id string) (*dto.SessionResponse, error)
	SubmitStatementAnswersFunc func(ctx context.Context, userID, id string, resp domain.StatementResponse) (*dto.SubmissionResponse, error)
	GenerateEssayFunc          func(ctx context.Context, userID, id string) (*dto.SessionResponse, error)
	RegenerateOutlineFunc      func(ctx context.Context, userID, id string) (*dto.SessionResponse, error)
	SubmitEssayFunc            func(ctx context.Context, userID, id, essay string) (*dto.SessionResponse, error)
	RequestHintFunc            func(ctx context.Context, userID, id, questionType string, index int) (*dto.HintResponse, error)
	ExportTextFunc             func(ctx context.Context, userID, id string) (string, error)
	ExportWorkbookFunc         func(ctx context.Context, userID, id string, w io.Writer) error
	LoadProgressFunc           func(ctx context.Context, userID, topic string) (*dto.ProgressResponse, error)
}

func (m *MockSessionService) CreateSession(ctx context.Context, userID string) (*dto.SessionResponse, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, userID)
	}
	panic("MockSessionService.CreateSessionFunc not implemented")
}

func (m *MockSessionService) GetSession(ctx context.Context, userID, id string) (*dto.SessionResponse, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, userID, id)
	}
	panic("MockSessionService.GetSessionFunc not implemented")
}

func (m *MockSessionService) DeleteSession(ctx context.Context, userID, id string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, userID, id)
	}
	panic("MockSessionService.DeleteSessionFunc not implemented")
}

func (m *MockSessionService) SelectTopic(ctx context.Context, userID, id, topic string) (*dto.SessionResponse, error) {
	if m.SelectTopicFunc != nil {
		return m.SelectTopicFunc(ctx, userID, id, topic)
	}
	panic("MockSessionService.SelectTopicFunc not implemented")
}

func (m *MockSessionService) Advance(ctx context.Context, userID, id string) (*dto.SessionResponse, error) {
	if m.AdvanceFunc != nil {
		return m.AdvanceFunc(ctx, userID, id)
	}
	panic("MockSessionService.AdvanceFunc not implemented")
}

func (m *MockSessionService) Back(ctx context.Context, userID, id string) (*dto.SessionResponse, error) {
	if m.BackFunc != nil {
		return m.BackFunc(ctx, userID, id)
	}
	panic("MockSessionService.BackFunc not implemented")
}

func (m *MockSessionService) JumpTo(ctx context.Context, userID, id string, stage domain.Stage) (*dto.SessionResponse, error) {
	if m.JumpToFunc != nil {
		return m.JumpToFunc(ctx, userID, id, stage)
	}
	panic("MockSessionService.JumpToFunc not implemented")
}

func (m *MockSessionService) GenerateObjectiveQuiz(ctx context.Context, userID, id string) (*dto.SessionResponse, error) {
	if m.GenerateObjectiveQuizFunc != nil {
		return m.GenerateObjectiveQuizFunc(ctx, userID, id)
	}
	panic("MockSessionService.GenerateObjectiveQuizFunc not implemented")
}

func (m *MockSessionService) SubmitObjectiveAnswers(ctx context.Context, userID, id string, resp domain.ObjectiveResponse) (*dto.SubmissionResponse, error) {
	if m.SubmitObjectiveAnswersFunc != nil {
		return m.SubmitObjectiveAnswersFunc(ctx, userID, id, resp)
	}
	panic("MockSessionService.SubmitObjectiveAnswersFunc not implemented")
}

func (m *MockSessionService) GenerateStatements(ctx context.Context, userID, id string) (*dto.SessionResponse, error) {
	if m.GenerateStatementsFunc != nil {
		return m.GenerateStatementsFunc(ctx, userID, id)
	}
	panic("MockSessionService.GenerateStatementsFunc not implemented")
}

func (m *MockSessionService) SubmitStatementAnswers(ctx context.Context, userID, id string, resp domain.StatementResponse) (*dto.SubmissionResponse, error) {
	if m.SubmitStatementAnswersFunc != nil {
		return m.SubmitStatementAnswersFunc(ctx, userID, id, resp)
	}
	panic("MockSessionService.SubmitStatementAnswersFunc not implemented")
}

func (m *MockSessionService) GenerateEssay(ctx context.Context, userID, id string) (*dto.SessionResponse, error) {
	if m.GenerateEssayFunc != nil {
		return m.GenerateEssayFunc(ctx, userID, id)
	}
	panic("MockSessionService.GenerateEssayFunc not implemented")
}

func (m *MockSessionService) RegenerateOutline(ctx context.Context, userID, id string) (*dto.SessionResponse, error) {
	if m.RegenerateOutlineFunc != nil {
		return m.RegenerateOutlineFunc(ctx, userID, id)
	}
	panic("MockSessionService.RegenerateOutlineFunc not implemented")
}

func (m *MockSessionService) SubmitEssay(ctx context.Context, userID, id, essay string) (*dto.SessionResponse, error) {
	if m.SubmitEssayFunc != nil {
		return m.SubmitEssayFunc(ctx, userID, id, essay)
	}
	panic("MockSessionService.SubmitEssayFunc not implemented")
}

func (m *MockSessionService) RequestHint(ctx context.Context, userID, id, questionType string, index int) (*dto.HintResponse, error) {
	if m.RequestHintFunc != nil {
		return m.RequestHintFunc(ctx, userID, id, questionType, index)
	}
	panic("MockSessionService.RequestHintFunc not implemented")
}

func (m *MockSessionService) ExportText(ctx context.Context, userID, id string) (string, error) {
	if m.ExportTextFunc != nil {
		return m.ExportTextFunc(ctx, userID, id)
	}
	panic("MockSessionService.ExportTextFunc not implemented")
}

func (m *MockSessionService) ExportWorkbook(ctx context.Context, userID, id string, w io.Writer) error {
	if m.ExportWorkbookFunc != nil {
		return m.ExportWorkbookFunc(ctx, userID, id, w)
	}
	panic("MockSessionService.ExportWorkbookFunc not implemented")
}

func (m *MockSessionService) LoadProgress(ctx context.Context, userID, topic string) (*dto.ProgressResponse, error) {
	if m.LoadProgressFunc != nil {
		return m.LoadProgressFunc(ctx, userID, topic)
	}
	panic("MockSessionService.LoadProgressFunc not implemented")
}

func (m *MockSessionService) EvictIdle(maxIdle time.Duration) int { return 0 }
