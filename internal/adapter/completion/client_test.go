package completion

import (
	"context"
	"errors"
	"testing"
	"time"

	"history-quiz/internal/config"
	"history-quiz/internal/domain"
	"history-quiz/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type mockCaller struct {
	mock.Mock
}

func (m *mockCaller) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

var feedbackSchema = &domain.Schema{
	Name: "test_feedback",
	Definition: map[string]any{
		"type":     "object",
		"required": []string{"comment", "emojis"},
		"properties": map[string]any{
			"comment": map[string]any{"type": "string"},
			"emojis":  map[string]any{"type": "string"},
		},
	},
}

func jsonRequest() domain.CompletionRequest {
	return domain.CompletionRequest{Kind: domain.KindOverallFeedback, Prompt: "p", Schema: feedbackSchema}
}

func TestClient_CompleteJSON_Success(t *testing.T) {
	caller := new(mockCaller)
	caller.On("Call", mock.Anything, "p").Return(
		"<think>the student did fine</think>Sure! Here it is:\n```json\n{\"comment\": \"Great work\", \"emojis\": \"🎉\"}\n```", nil)
	m := metrics.New()
	c := NewClient(caller, Options{Timeout: time.Second}, m)

	var out domain.OverallFeedback
	require.NoError(t, c.CompleteJSON(context.Background(), jsonRequest(), &out))

	assert.Equal(t, domain.OverallFeedback{Comment: "Great work", Emojis: "🎉"}, out)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CompletionRequests.WithLabelValues("overall_feedback", "success")))
	caller.AssertExpectations(t)
}

func TestClient_CompleteJSON_Failures(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		want     error
	}{
		{"transport error", "", errors.New("connection refused"), domain.ErrUpstreamUnavailable},
		{"empty reply", "  <think>hmm</think> ", nil, domain.ErrMalformedResponse},
		{"no json object", "I cannot help with that.", nil, domain.ErrMalformedResponse},
		{"broken json", `{"comment": "x", "emojis": }`, nil, domain.ErrMalformedResponse},
		{"missing field", `{"comment": "x"}`, nil, domain.ErrMalformedResponse},
		{"wrong type", `{"comment": 3, "emojis": ""}`, nil, domain.ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := new(mockCaller)
			caller.On("Call", mock.Anything, "p").Return(tt.response, tt.err)
			c := NewClient(caller, Options{}, nil)

			var out domain.OverallFeedback
			err := c.CompleteJSON(context.Background(), jsonRequest(), &out)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_MissingCallerIsConfigurationMissing(t *testing.T) {
	m := metrics.New()
	c := NewClient(nil, Options{}, m)

	_, err := c.Complete(context.Background(), domain.CompletionRequest{Kind: domain.KindHint, Prompt: "p"})
	assert.ErrorIs(t, err, domain.ErrConfigurationMissing)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CompletionRequests.WithLabelValues("hint", "config_missing")))
}

func TestClient_Complete_StripsReasoning(t *testing.T) {
	caller := new(mockCaller)
	caller.On("Call", mock.Anything, "p").Return("<think>plan</think>\n- Point one\n- Point two", nil)
	c := NewClient(caller, Options{}, nil)

	text, err := c.Complete(context.Background(), domain.CompletionRequest{Kind: domain.KindEssayOutline, Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "- Point one\n- Point two", text)
}

func TestClient_TimeoutAppliesToCall(t *testing.T) {
	caller := new(mockCaller)
	caller.On("Call", mock.Anything, "p").Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
	}).Return("ok", nil)
	c := NewClient(caller, Options{Timeout: time.Minute}, nil)

	_, err := c.Complete(context.Background(), domain.CompletionRequest{Kind: domain.KindHint, Prompt: "p"})
	require.NoError(t, err)
}

func TestStripThinkBlocks(t *testing.T) {
	assert.Equal(t, "answer", stripThinkBlocks("<think>a</think> answer"))
	assert.Equal(t, "x y", stripThinkBlocks("x<think>1</think><think>2</think> y"))
	assert.Equal(t, "<think>unterminated", stripThinkBlocks("<think>unterminated"))
}

func TestExtractJSONObject(t *testing.T) {
	got, ok := extractJSONObject(`prefix {"a": {"b": 1}} suffix`)
	require.True(t, ok)
	assert.Equal(t, `{"a": {"b": 1}}`, got)

	_, ok = extractJSONObject("} nothing {")
	assert.False(t, ok)
}

func TestNewCaller_NoCredential(t *testing.T) {
	cfg := &config.Config{LLM: config.LLMConfig{Provider: "openai"}}
	caller, err := NewCaller(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, caller)
}

func TestNewCaller_Providers(t *testing.T) {
	for _, provider := range []string{"openai", "ollama", "anthropic"} {
		t.Run(provider, func(t *testing.T) {
			cfg := &config.Config{LLM: config.LLMConfig{
				Provider:  provider,
				Model:     "m",
				APIKey:    "key",
				BaseURL:   "https://api.fireworks.ai/inference/v1",
				ServerURL: "http://localhost:11434",
				Timeout:   time.Second,
			}}
			caller, err := NewCaller(context.Background(), cfg)
			require.NoError(t, err)
			assert.NotNil(t, caller)
		})
	}

	_, err := NewCaller(context.Background(), &config.Config{LLM: config.LLMConfig{Provider: "bard", APIKey: "k"}})
	assert.Error(t, err)
}
