package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"history-quiz/internal/cache"
	"history-quiz/internal/domain"
	"history-quiz/internal/logger"
	"history-quiz/internal/prompt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// HintService generates per-question hints. Hints for a topic are kept in
// one Redis hash keyed by a fingerprint of the question and its options.
type HintService struct {
	completion domain.CompletionService
	builder    *prompt.Builder
	kv         domain.Cache
	ttl        time.Duration

	group singleflight.Group
}

// NewHintService accepts a nil cache, in which case every hint is generated.
func NewHintService(completion domain.CompletionService, builder *prompt.Builder, kv domain.Cache, ttl time.Duration) *HintService {
	return &HintService{completion: completion, builder: builder, kv: kv, ttl: ttl}
}

func hintField(question string, options *domain.MCOptions) string {
	if options == nil {
		return cache.Fingerprint(question)
	}
	return cache.Fingerprint(question, options.A, options.B, options.C, options.D)
}

// Hint returns a hint for the question and whether it came from the cache.
// Concurrent requests for the same question share one completion call.
func (h *HintService) Hint(ctx context.Context, topic, question string, options *domain.MCOptions) (string, bool, error) {
	if strings.TrimSpace(question) == "" {
		return "", false, domain.NewInvalidInputError("question is required for a hint")
	}

	hashKey := cache.GenerateCacheKey("hint", "topic", topic)
	field := hintField(question, options)

	if h.kv != nil {
		cached, err := h.kv.HGet(ctx, hashKey, field)
		switch {
		case err == nil && cached != "":
			return cached, true, nil
		case err != nil && !errors.Is(err, domain.ErrCacheMiss):
			logger.Get().Warn("Hint cache read failed", zap.String("key", hashKey), zap.Error(err))
		}
	}

	// The shared call outlives any single caller; the completion client
	// applies its own timeout.
	shared := context.WithoutCancel(ctx)
	ch := h.group.DoChan(hashKey+"|"+field, func() (interface{}, error) {
		req, err := h.builder.Build(domain.KindHint, prompt.Params{Topic: topic, Question: question, Options: options})
		if err != nil {
			return "", err
		}
		hint, err := h.completion.Complete(shared, req)
		if err != nil {
			return "", err
		}
		h.store(shared, hashKey, field, hint)
		return hint, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", false, res.Err
		}
		return res.Val.(string), false, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

func (h *HintService) store(ctx context.Context, hashKey, field, hint string) {
	if h.kv == nil {
		return
	}
	if err := h.kv.HSet(ctx, hashKey, field, hint); err != nil {
		logger.Get().Warn("Hint cache write failed", zap.String("key", hashKey), zap.Error(err))
		return
	}
	if h.ttl > 0 {
		if err := h.kv.Expire(ctx, hashKey, h.ttl); err != nil {
			logger.Get().Warn("Hint cache expire failed", zap.String("key", hashKey), zap.Error(err))
		}
	}
}
