package completion

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"history-quiz/internal/domain"
	"history-quiz/internal/logger"
	"history-quiz/internal/metrics"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// Caller is the slice of a langchaingo model the client needs.
type Caller interface {
	Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error)
}

type Options struct {
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Client implements domain.CompletionService. A Client without a Caller
// reports CONFIGURATION_MISSING without touching the network.
type Client struct {
	caller  Caller
	opts    Options
	metrics *metrics.Metrics
}

func NewClient(caller Caller, opts Options, m *metrics.Metrics) *Client {
	return &Client{caller: caller, opts: opts, metrics: m}
}

// Complete returns the model's plain-text reply with reasoning stripped.
func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	text, err := c.call(ctx, req)
	if err != nil {
		return "", err
	}
	c.observe(req.Kind, "success")
	return text, nil
}

// CompleteJSON extracts the JSON object from the reply, validates it against
// req.Schema and decodes it into out.
func (c *Client) CompleteJSON(ctx context.Context, req domain.CompletionRequest, out any) error {
	l := logger.Get()

	text, err := c.call(ctx, req)
	if err != nil {
		return err
	}

	raw, ok := extractJSONObject(text)
	if !ok {
		l.Error("Could not find a JSON object in completion response",
			zap.String("kind", string(req.Kind)),
			zap.String("response", text))
		c.observe(req.Kind, "malformed")
		return domain.NewMalformedResponseError("no JSON object in completion response", nil)
	}

	if err := validateAgainst(req.Schema, raw); err != nil {
		l.Error("Completion response failed validation",
			zap.String("kind", string(req.Kind)),
			zap.String("json", raw),
			zap.Error(err))
		c.observe(req.Kind, "malformed")
		return domain.NewMalformedResponseError("completion response does not match the expected shape", err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		c.observe(req.Kind, "malformed")
		return domain.NewMalformedResponseError("failed to decode completion response", err)
	}

	c.observe(req.Kind, "success")
	return nil
}

func (c *Client) call(ctx context.Context, req domain.CompletionRequest) (string, error) {
	l := logger.Get()

	if c.caller == nil {
		c.observe(req.Kind, "config_missing")
		return "", domain.NewConfigurationMissingError("completion service credential")
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	callOpts := []llms.CallOption{llms.WithTemperature(c.opts.Temperature)}
	if c.opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(c.opts.MaxTokens))
	}
	if req.Schema != nil {
		callOpts = append(callOpts, llms.WithJSONMode())
	}

	l.Debug("Calling completion service",
		zap.String("provider", c.opts.Provider),
		zap.String("model", c.opts.Model),
		zap.String("kind", string(req.Kind)))

	start := time.Now()
	response, err := c.caller.Call(ctx, req.Prompt, callOpts...)
	if c.metrics != nil {
		c.metrics.CompletionDuration.WithLabelValues(string(req.Kind)).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			l.Error("Completion request timed out", zap.String("kind", string(req.Kind)), zap.Error(err))
		} else {
			l.Error("Completion request failed", zap.String("kind", string(req.Kind)), zap.Error(err))
		}
		c.observe(req.Kind, "upstream")
		return "", domain.NewUpstreamUnavailableError(err)
	}

	text := stripThinkBlocks(response)
	if strings.TrimSpace(text) == "" {
		c.observe(req.Kind, "malformed")
		return "", domain.NewMalformedResponseError("empty completion response", nil)
	}
	return text, nil
}

func (c *Client) observe(kind domain.RequestKind, outcome string) {
	if c.metrics == nil {
		return
	}
	c.metrics.CompletionRequests.WithLabelValues(string(kind), outcome).Inc()
}
