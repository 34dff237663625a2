package prompt

import (
	"testing"

	"history-quiz/internal/content"
	"history-quiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const topic = "May Fourth Movement (1919)"

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	c, err := content.Default()
	require.NoError(t, err)
	return NewBuilder(c)
}

func TestBuilder_KindsAndSchemas(t *testing.T) {
	b := newBuilder(t)
	tests := []struct {
		kind       domain.RequestKind
		params     Params
		schemaName string
		contains   []string
	}{
		{domain.KindObjectiveQuiz, Params{Topic: topic}, "objective_quiz", []string{"3 multiple-choice", topic, "Sai Xiansheng"}},
		{domain.KindStatements, Params{Topic: topic}, "statements", []string{"intentional factual error", "correct_value_if_false"}},
		{domain.KindEssayOutline, Params{Topic: topic, Aspect: domain.AspectDiplomatic}, "", []string{
			"To what extent was May Fourth Movement (1919) effective in modernizing China in the Diplomatic aspect?",
			"Shandong Problem",
			"Modernization Criteria for Diplomatic",
		}},
		{domain.KindEssayFeedback, Params{Topic: topic, Aspect: domain.AspectMilitary, Essay: "It was limited."}, "essay_feedback", []string{
			"It was limited.", "thumb-up", "Military",
		}},
		{domain.KindOverallFeedback, Params{Topic: topic}, "overall_feedback", []string{"overall comment", "emojis"}},
		{domain.KindHint, Params{Topic: topic, Question: "Which treaty?", Options: &domain.MCOptions{A: "Versailles", B: "Nanjing", C: "Shimonoseki", D: "Tianjin"}}, "", []string{
			"Question: Which treaty?", "A) Versailles B) Nanjing", "without revealing",
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			req, err := b.Build(tt.kind, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, req.Kind)
			if tt.schemaName == "" {
				assert.Nil(t, req.Schema)
			} else {
				require.NotNil(t, req.Schema)
				assert.Equal(t, tt.schemaName, req.Schema.Name)
			}
			for _, s := range tt.contains {
				assert.Contains(t, req.Prompt, s)
			}
		})
	}
}

func TestBuilder_OverallFeedbackIncludesScores(t *testing.T) {
	b := newBuilder(t)
	results := domain.NewSessionResults(topic)
	results.ObjectiveScore = &domain.ScoreResult{Correct: 4, Total: 5}
	results.StatementScore = &domain.ScoreResult{Correct: 1, Total: 3}
	results.EssayFeedback = &domain.EssayFeedback{Score: "👍👍👍"}

	req, err := b.Build(domain.KindOverallFeedback, Params{Topic: topic, Results: results})
	require.NoError(t, err)
	assert.Contains(t, req.Prompt, "score: 4/5")
	assert.Contains(t, req.Prompt, "score: 1/3")
	assert.Contains(t, req.Prompt, "score: 👍👍👍")
}

func TestBuilder_Errors(t *testing.T) {
	b := newBuilder(t)

	_, err := b.Build(domain.KindObjectiveQuiz, Params{Topic: "Unknown"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = b.Build("essay_grading", Params{Topic: topic})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = b.Build(domain.KindEssayOutline, Params{Topic: topic})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = b.Build(domain.KindEssayFeedback, Params{Topic: topic, Aspect: domain.AspectEconomic, Essay: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = b.Build(domain.KindHint, Params{Topic: topic})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
