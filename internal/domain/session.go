package domain

import (
	"time"
)

// SessionResults is everything a session has produced for its topic.
// Pointer fields are replaced, never mutated in place, so a shallow Clone
// is safe to hand out.
type SessionResults struct {
	Topic string `json:"topic"`

	Questions         *QuestionSet      `json:"questions,omitempty"`
	ObjectiveResponse ObjectiveResponse `json:"objective_response"`
	ObjectiveScore    *ScoreResult      `json:"objective_score,omitempty"`

	Statements        *StatementSet     `json:"statements,omitempty"`
	StatementResponse StatementResponse `json:"statement_response,omitempty"`
	StatementScore    *ScoreResult      `json:"statement_score,omitempty"`

	EssayQuestion *EssayQuestion `json:"essay_question,omitempty"`
	EssayOutline  string         `json:"essay_outline,omitempty"`
	EssayAnswer   string         `json:"essay_answer,omitempty"`
	EssayFeedback *EssayFeedback `json:"essay_feedback,omitempty"`

	OverallFeedback *OverallFeedback `json:"overall_feedback,omitempty"`

	// Warnings holds non-fatal problems such as failed persistence.
	Warnings []string `json:"warnings,omitempty"`
}

// NewSessionResults returns an empty aggregate for topic.
func NewSessionResults(topic string) *SessionResults {
	return &SessionResults{Topic: topic}
}

// Clone copies maps and slices so the copy can be read without a lock.
func (r *SessionResults) Clone() SessionResults {
	out := *r
	if r.ObjectiveResponse.MC != nil {
		out.ObjectiveResponse.MC = make(map[int]string, len(r.ObjectiveResponse.MC))
		for k, v := range r.ObjectiveResponse.MC {
			out.ObjectiveResponse.MC[k] = v
		}
	}
	if r.ObjectiveResponse.FillIn != nil {
		out.ObjectiveResponse.FillIn = make(map[int]string, len(r.ObjectiveResponse.FillIn))
		for k, v := range r.ObjectiveResponse.FillIn {
			out.ObjectiveResponse.FillIn[k] = v
		}
	}
	if r.StatementResponse != nil {
		out.StatementResponse = make(StatementResponse, len(r.StatementResponse))
		for k, v := range r.StatementResponse {
			out.StatementResponse[k] = v
		}
	}
	if r.Warnings != nil {
		out.Warnings = append([]string(nil), r.Warnings...)
	}
	return out
}

// Session is one user's pass through the wizard.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
