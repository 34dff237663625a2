package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"history-quiz/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStoreTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestSQLStore_SaveCheckpoint(t *testing.T) {
	db, mock := setupStoreTestDB(t)
	defer db.Close()

	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewSQLStore(db)
	s.now = func() time.Time { return fixed }

	score := domain.ScoreResult{Correct: 2, Total: 5}
	payload := `{"score":{"correct":2,"total":5},"timestamp":"2024-05-01T10:00:00Z"}`

	mock.ExpectExec(regexp.QuoteMeta("MERGE INTO session_checkpoints")).
		WithArgs("u1", "t", "checkpoint1", payload, fixed, payload, fixed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.SaveCheckpoint(context.Background(), domain.CheckpointRecord{
		UserID:  "u1",
		Topic:   "t",
		Stage:   domain.StageObjectiveQuiz,
		Payload: domain.CheckpointPayload{Score: &score, Timestamp: fixed},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_SaveCheckpoint_Error(t *testing.T) {
	db, mock := setupStoreTestDB(t)
	defer db.Close()

	boom := errors.New("ORA-12541")
	mock.ExpectExec("MERGE INTO session_checkpoints").WillReturnError(boom)

	err := NewSQLStore(db).SaveCheckpoint(context.Background(), domain.CheckpointRecord{
		UserID: "u1", Topic: "t", Stage: domain.StageEssay,
	})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "checkpoint3")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_LoadProgress(t *testing.T) {
	db, mock := setupStoreTestDB(t)
	defer db.Close()

	older := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	rows := sqlmock.NewRows([]string{"CHECKPOINT", "PAYLOAD", "UPDATED_AT"}).
		AddRow("checkpoint1", `{"userAnswers":{"mc_0":"A"},"timestamp":"2024-05-01T09:00:00Z"}`, older).
		AddRow("checkpoint3", `{"essay":{"question":{"topic":"t","aspect":"Political"},"userAnswer":"x","feedback":{"score":"4/5","comment":"ok","correct_answer":"y"}},"timestamp":"2024-05-01T10:00:00Z"}`, newer)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT checkpoint, payload, updated_at FROM session_checkpoints WHERE user_id = :1 AND topic = :2")).
		WithArgs("u1", "t").
		WillReturnRows(rows)

	doc, err := NewSQLStore(db).LoadProgress(context.Background(), "u1", "t")
	require.NoError(t, err)
	require.NotNil(t, doc.Checkpoint1)
	assert.Equal(t, "A", doc.Checkpoint1.Answers["mc_0"])
	assert.Nil(t, doc.Checkpoint2)
	require.NotNil(t, doc.Checkpoint3)
	assert.Equal(t, "4/5", doc.Checkpoint3.Essay.Feedback.Score)
	assert.Equal(t, domain.AspectPolitical, doc.Checkpoint3.Essay.Question.Aspect)
	assert.True(t, newer.Equal(doc.UpdatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_LoadProgress_NotFound(t *testing.T) {
	db, mock := setupStoreTestDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT checkpoint").
		WithArgs("u1", "t").
		WillReturnRows(sqlmock.NewRows([]string{"CHECKPOINT", "PAYLOAD", "UPDATED_AT"}))

	_, err := NewSQLStore(db).LoadProgress(context.Background(), "u1", "t")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_LoadProgress_BadPayload(t *testing.T) {
	db, mock := setupStoreTestDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT checkpoint").
		WillReturnRows(sqlmock.NewRows([]string{"CHECKPOINT", "PAYLOAD", "UPDATED_AT"}).
			AddRow("checkpoint2", "{not json", time.Now()))

	_, err := NewSQLStore(db).LoadProgress(context.Background(), "u1", "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checkpoint2")
}
