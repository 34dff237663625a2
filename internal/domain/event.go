package domain

import (
	"context"
	"time"
)

const EventCheckpointCompleted = "checkpoint.completed"

// CheckpointEvent is published when a checkpoint submission is scored.
type CheckpointEvent struct {
	Type       string       `json:"type"`
	SessionID  string       `json:"session_id"`
	UserID     string       `json:"user_id"`
	Topic      string       `json:"topic"`
	Stage      Stage        `json:"stage"`
	Score      *ScoreResult `json:"score,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

type EventPublisher interface {
	PublishCheckpoint(ctx context.Context, evt CheckpointEvent) error
	Close() error
}
