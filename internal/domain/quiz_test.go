package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage_StringAndParse(t *testing.T) {
	for _, s := range []Stage{StageSelection, StageObjectiveQuiz, StageErrorIdentification, StageEssay, StageSummary} {
		parsed, err := ParseStage(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseStage("checkpoint4")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "stage(42)", Stage(42).String())
}

func TestStage_JSONUsesTextForm(t *testing.T) {
	b, err := json.Marshal(struct {
		Stage Stage `json:"stage"`
	}{StageErrorIdentification})
	require.NoError(t, err)
	assert.JSONEq(t, `{"stage":"error_identification"}`, string(b))

	var out struct {
		Stage Stage `json:"stage"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"stage":"essay"}`), &out))
	assert.Equal(t, StageEssay, out.Stage)
}

func TestStage_CheckpointKey(t *testing.T) {
	tests := []struct {
		stage Stage
		key   string
		ok    bool
	}{
		{StageSelection, "", false},
		{StageObjectiveQuiz, "checkpoint1", true},
		{StageErrorIdentification, "checkpoint2", true},
		{StageEssay, "checkpoint3", true},
		{StageSummary, "", false},
	}
	for _, tt := range tests {
		key, ok := tt.stage.CheckpointKey()
		assert.Equal(t, tt.key, key, tt.stage.String())
		assert.Equal(t, tt.ok, ok, tt.stage.String())
	}
}

func TestAspect_KeyAndParse(t *testing.T) {
	assert.Equal(t, "social_cultural_educational", AspectSocialCulturalEducational.Key())
	assert.Equal(t, "political", AspectPolitical.Key())

	a, err := ParseAspect("social_cultural_educational")
	require.NoError(t, err)
	assert.Equal(t, AspectSocialCulturalEducational, a)

	a, err = ParseAspect("military")
	require.NoError(t, err)
	assert.Equal(t, AspectMilitary, a)

	_, err = ParseAspect("religious")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEssayQuestion_Text(t *testing.T) {
	q := EssayQuestion{Topic: "May Fourth Movement (1919)", Aspect: AspectDiplomatic}
	assert.Equal(t,
		"To what extent was May Fourth Movement (1919) effective in modernizing China in the Diplomatic aspect?",
		q.Text())
}

func TestObjectiveResponse_AnswerMap(t *testing.T) {
	r := ObjectiveResponse{
		MC:     map[int]string{0: "A", 2: "C"},
		FillIn: map[int]string{1: "Sun Yat-sen"},
	}
	assert.Equal(t, map[string]string{"mc_0": "A", "mc_2": "C", "fib_1": "Sun Yat-sen"}, r.AnswerMap())
}

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewInvalidTransitionError(StageSelection, "back")
	wrapped := fmt.Errorf("controller: %w", err)

	assert.True(t, errors.Is(wrapped, ErrInvalidTransition))
	assert.False(t, errors.Is(wrapped, ErrNoTopicSelected))
	assert.Equal(t, "selection", err.Context["stage"])

	var de *DomainError
	require.True(t, errors.As(wrapped, &de))
	assert.Equal(t, CodeInvalidTransition, de.Code)
}

func TestDomainError_UnwrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewUpstreamUnavailableError(cause)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "dial tcp: refused")
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{NewMissingFieldError("topic"), NewOutOfRangeError("essay", 9000, 1, 8000)}
	assert.Equal(t, "topic: is required; essay: must be between 1 and 8000", errs.Error())
}

func TestProgressDocument_Set(t *testing.T) {
	doc := &ProgressDocument{}
	doc.Set(StageErrorIdentification, CheckpointPayload{Score: &ScoreResult{Correct: 2, Total: 3}})
	doc.Set(StageSummary, CheckpointPayload{})

	assert.Nil(t, doc.Checkpoint1)
	require.NotNil(t, doc.Checkpoint2)
	assert.Equal(t, 2, doc.Checkpoint2.Score.Correct)
	assert.Nil(t, doc.Checkpoint3)
}
