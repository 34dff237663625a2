package domain

import (
	"context"
	"time"
)

// EssayRecord is the stored form of the essay checkpoint.
type EssayRecord struct {
	Question   EssayQuestion `json:"question" bson:"question"`
	UserAnswer string        `json:"userAnswer" bson:"userAnswer"`
	Feedback   EssayFeedback `json:"feedback" bson:"feedback"`
}

// CheckpointPayload is one checkpoint's stored results. Only the fields
// relevant to the checkpoint are set.
type CheckpointPayload struct {
	Questions   *QuestionSet      `json:"questions,omitempty" bson:"questions,omitempty"`
	Statements  *StatementSet     `json:"statements,omitempty" bson:"statements,omitempty"`
	Answers     map[string]string `json:"userAnswers,omitempty" bson:"userAnswers,omitempty"`
	TruthValues map[string]*bool  `json:"truthValues,omitempty" bson:"truthValues,omitempty"`
	Score       *ScoreResult      `json:"score,omitempty" bson:"score,omitempty"`
	Essay       *EssayRecord      `json:"essay,omitempty" bson:"essay,omitempty"`
	Timestamp   time.Time         `json:"timestamp" bson:"timestamp"`
}

// CheckpointRecord is a single write to the progress store.
type CheckpointRecord struct {
	UserID  string
	Topic   string
	Stage   Stage
	Payload CheckpointPayload
}

// ProgressDocument is everything stored for one user and topic.
type ProgressDocument struct {
	UserID      string             `json:"user_id" bson:"user_id"`
	Topic       string             `json:"topic" bson:"topic"`
	Checkpoint1 *CheckpointPayload `json:"checkpoint1,omitempty" bson:"checkpoint1,omitempty"`
	Checkpoint2 *CheckpointPayload `json:"checkpoint2,omitempty" bson:"checkpoint2,omitempty"`
	Checkpoint3 *CheckpointPayload `json:"checkpoint3,omitempty" bson:"checkpoint3,omitempty"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// Set stores payload under the checkpoint key of stage.
func (d *ProgressDocument) Set(stage Stage, payload CheckpointPayload) {
	p := payload
	switch stage {
	case StageObjectiveQuiz:
		d.Checkpoint1 = &p
	case StageErrorIdentification:
		d.Checkpoint2 = &p
	case StageEssay:
		d.Checkpoint3 = &p
	}
}

// ProgressStore is the port to the remote document store. Writes merge:
// saving one checkpoint never removes another.
type ProgressStore interface {
	SaveCheckpoint(ctx context.Context, rec CheckpointRecord) error
	// LoadProgress returns ErrNotFound when nothing has been stored.
	LoadProgress(ctx context.Context, userID, topic string) (*ProgressDocument, error)
}
