package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"history-quiz/internal/domain"

	"github.com/jmoiron/sqlx"
)

// SQLStore keeps one row per (user, topic, checkpoint) in Oracle.
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

type checkpointRow struct {
	Checkpoint string    `db:"CHECKPOINT"`
	Payload    string    `db:"PAYLOAD"`
	UpdatedAt  time.Time `db:"UPDATED_AT"`
}

const mergeCheckpointQuery = `MERGE INTO session_checkpoints t
USING (SELECT :1 AS user_id, :2 AS topic, :3 AS checkpoint FROM dual) s
ON (t.user_id = s.user_id AND t.topic = s.topic AND t.checkpoint = s.checkpoint)
WHEN MATCHED THEN UPDATE SET t.payload = :4, t.updated_at = :5
WHEN NOT MATCHED THEN INSERT (user_id, topic, checkpoint, payload, updated_at)
VALUES (s.user_id, s.topic, s.checkpoint, :6, :7)`

const selectCheckpointsQuery = `SELECT checkpoint, payload, updated_at FROM session_checkpoints WHERE user_id = :1 AND topic = :2`

func (s *SQLStore) SaveCheckpoint(ctx context.Context, rec domain.CheckpointRecord) error {
	key, ok := rec.Stage.CheckpointKey()
	if !ok {
		return domain.NewInvalidInputError(fmt.Sprintf("stage %s has no checkpoint", rec.Stage))
	}

	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", key, err)
	}

	now := s.now()
	if _, err := s.db.ExecContext(ctx, mergeCheckpointQuery,
		rec.UserID, rec.Topic, key, string(payload), now, string(payload), now,
	); err != nil {
		return fmt.Errorf("failed to save %s for %s: %w", key, rec.Topic, err)
	}
	return nil
}

func (s *SQLStore) LoadProgress(ctx context.Context, userID, topic string) (*domain.ProgressDocument, error) {
	var rows []checkpointRow
	if err := s.db.SelectContext(ctx, &rows, selectCheckpointsQuery, userID, topic); err != nil {
		return nil, fmt.Errorf("failed to load progress for %s: %w", topic, err)
	}
	if len(rows) == 0 {
		return nil, domain.NewNotFoundError(fmt.Sprintf("No stored progress for %s", topic))
	}

	doc := &domain.ProgressDocument{UserID: userID, Topic: topic}
	for _, row := range rows {
		var payload domain.CheckpointPayload
		if err := json.Unmarshal([]byte(row.Payload), &payload); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", row.Checkpoint, err)
		}
		switch row.Checkpoint {
		case "checkpoint1":
			doc.Set(domain.StageObjectiveQuiz, payload)
		case "checkpoint2":
			doc.Set(domain.StageErrorIdentification, payload)
		case "checkpoint3":
			doc.Set(domain.StageEssay, payload)
		default:
			continue
		}
		if row.UpdatedAt.After(doc.UpdatedAt) {
			doc.UpdatedAt = row.UpdatedAt
		}
	}
	return doc, nil
}
