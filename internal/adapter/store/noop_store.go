package store

import (
	"context"

	"history-quiz/internal/domain"
)

// NoopStore is used when no progress store is configured.
type NoopStore struct{}

func (NoopStore) SaveCheckpoint(context.Context, domain.CheckpointRecord) error { return nil }

func (NoopStore) LoadProgress(_ context.Context, _, topic string) (*domain.ProgressDocument, error) {
	return nil, domain.NewNotFoundError("Progress storage is not configured")
}
