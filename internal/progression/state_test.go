package progression

import (
	"testing"

	"history-quiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const topic = "1911 Revolution (1911)"

func TestTransition_FullPathAndBackFromSummary(t *testing.T) {
	s := InitialState()

	s, err := Transition(s, SelectTopic(topic))
	require.NoError(t, err)
	assert.Equal(t, domain.StageObjectiveQuiz, s.Stage)
	assert.Equal(t, topic, s.Topic)

	s, err = Transition(s, Advance())
	require.NoError(t, err)
	assert.Equal(t, domain.StageErrorIdentification, s.Stage)

	s, err = Transition(s, Advance())
	require.NoError(t, err)
	assert.Equal(t, domain.StageEssay, s.Stage)

	s.EssayComplete = true
	s, err = Transition(s, Advance())
	require.NoError(t, err)
	assert.Equal(t, domain.StageSummary, s.Stage)

	s, err = Transition(s, Back())
	require.NoError(t, err)
	assert.Equal(t, InitialState(), s)
}

func TestTransition_SelectTopic(t *testing.T) {
	t.Run("rejects when topic already set", func(t *testing.T) {
		s := State{Stage: domain.StageSelection, Topic: topic}
		got, err := Transition(s, SelectTopic("other"))
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, s, got)
	})

	t.Run("rejects outside selection", func(t *testing.T) {
		s := State{Stage: domain.StageEssay, Topic: topic}
		_, err := Transition(s, SelectTopic("other"))
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("rejects blank topic", func(t *testing.T) {
		_, err := Transition(InitialState(), SelectTopic("  "))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestTransition_Advance(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		want    domain.Stage
		wantErr error
	}{
		{"from selection", InitialState(), domain.StageSelection, domain.ErrInvalidTransition},
		{"essay without completion", State{Stage: domain.StageEssay, Topic: topic}, domain.StageEssay, domain.ErrInvalidTransition},
		{"from summary", State{Stage: domain.StageSummary, Topic: topic, EssayComplete: true}, domain.StageSummary, domain.ErrInvalidTransition},
		{"objective to error identification", State{Stage: domain.StageObjectiveQuiz, Topic: topic}, domain.StageErrorIdentification, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.state, Advance())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got.Stage)
		})
	}
}

func TestTransition_Back(t *testing.T) {
	_, err := Transition(InitialState(), Back())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	s, err := Transition(State{Stage: domain.StageObjectiveQuiz, Topic: topic}, Back())
	require.NoError(t, err)
	assert.Equal(t, domain.StageSelection, s.Stage)
	assert.Empty(t, s.Topic)

	s, err = Transition(State{Stage: domain.StageEssay, Topic: topic}, Back())
	require.NoError(t, err)
	assert.Equal(t, domain.StageErrorIdentification, s.Stage)
	assert.Equal(t, topic, s.Topic)
}

func TestTransition_JumpTo(t *testing.T) {
	t.Run("no topic is checked first", func(t *testing.T) {
		_, err := Transition(InitialState(), JumpTo(domain.StageObjectiveQuiz))
		assert.ErrorIs(t, err, domain.ErrNoTopicSelected)
	})

	t.Run("only from summary", func(t *testing.T) {
		_, err := Transition(State{Stage: domain.StageEssay, Topic: topic}, JumpTo(domain.StageObjectiveQuiz))
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("valid targets", func(t *testing.T) {
		for _, target := range []domain.Stage{domain.StageObjectiveQuiz, domain.StageErrorIdentification, domain.StageEssay} {
			s, err := Transition(State{Stage: domain.StageSummary, Topic: topic, EssayComplete: true}, JumpTo(target))
			require.NoError(t, err)
			assert.Equal(t, target, s.Stage)
			assert.Equal(t, topic, s.Topic)
			assert.False(t, s.EssayComplete)
		}
	})

	t.Run("invalid targets", func(t *testing.T) {
		for _, target := range []domain.Stage{domain.StageSelection, domain.StageSummary} {
			_, err := Transition(State{Stage: domain.StageSummary, Topic: topic}, JumpTo(target))
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		}
	})
}
