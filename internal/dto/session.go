package dto

import (
	"time"

	"history-quiz/internal/domain"
)

// SessionResponse is the full view of a session returned by every
// session endpoint.
// @Description Current stage, topic and everything produced so far
type SessionResponse struct {
	ID            string                `json:"id"`
	Stage         string                `json:"stage"`
	Topic         string                `json:"topic,omitempty"`
	EssayComplete bool                  `json:"essay_complete"`
	CreatedAt     time.Time             `json:"created_at"`
	Results       domain.SessionResults `json:"results"`
}

// SelectTopicRequest
// @Description Request body for choosing a historical period
type SelectTopicRequest struct {
	Topic string `json:"topic" example:"Late Qing Reform (1901-1911)"`
}

// JumpRequest
// @Description Request body for returning to a checkpoint from the summary
type JumpRequest struct {
	Stage string `json:"stage" example:"objective_quiz"`
}

// ObjectiveAnswersRequest carries answers keyed by zero-based question index.
// @Description Multiple-choice letters and fill-in answers for checkpoint 1
type ObjectiveAnswersRequest struct {
	MC     map[int]string `json:"mc"`
	FillIn map[int]string `json:"fill_in"`
}

// StatementAnswersRequest
// @Description True/false verdicts for checkpoint 2; omitted indexes count as unanswered
type StatementAnswersRequest struct {
	Verdicts map[int]*bool `json:"verdicts"`
}

// EssayRequest
// @Description Essay text for checkpoint 3
type EssayRequest struct {
	Essay string `json:"essay"`
}

// HintRequest
// @Description Selects a checkpoint 1 question by type ("mc" or "fib") and index
type HintRequest struct {
	Type  string `json:"type" example:"mc"`
	Index int    `json:"index" example:"0"`
}

// HintResponse
// @Description A hint that guides without revealing the answer
type HintResponse struct {
	Hint   string `json:"hint"`
	Cached bool   `json:"cached"`
}

// SubmissionResponse is returned after a checkpoint is scored.
// @Description Score for the submitted checkpoint plus the updated session
type SubmissionResponse struct {
	Score   domain.ScoreResult `json:"score"`
	Session SessionResponse    `json:"session"`
}

// ProgressResponse
// @Description Checkpoints stored for the caller and topic
type ProgressResponse struct {
	Progress *domain.ProgressDocument `json:"progress"`
}
