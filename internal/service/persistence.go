package service

import (
	"context"
	"sync"
	"time"

	"history-quiz/internal/adapter/store"
	"history-quiz/internal/domain"
	"history-quiz/internal/logger"
	"history-quiz/internal/metrics"

	"go.uber.org/zap"
)

const persistFailedWarning = "Failed to save progress. Your results are still available in this session."

// Persister writes checkpoints and publishes events in the background so
// a slow or failing store never blocks scoring.
type Persister struct {
	store   domain.ProgressStore
	events  domain.EventPublisher
	metrics *metrics.Metrics
	timeout time.Duration

	wg sync.WaitGroup

	mu   sync.Mutex
	keys map[checkpointKey]*checkpointWrites
}

type checkpointKey struct {
	userID string
	topic  string
	stage  domain.Stage
}

// checkpointWrites orders saves of one checkpoint. latest is the sequence
// of the newest Persist call; an older write that has not started yet is
// skipped.
type checkpointWrites struct {
	mu      sync.Mutex
	latest  uint64
	pending int
}

// NewPersister accepts nil store and events; both fall back to no-ops.
func NewPersister(ps domain.ProgressStore, events domain.EventPublisher, m *metrics.Metrics, timeout time.Duration) *Persister {
	if ps == nil {
		ps = store.NoopStore{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Persister{store: ps, events: events, metrics: m, timeout: timeout, keys: make(map[checkpointKey]*checkpointWrites)}
}

func (p *Persister) acquire(k checkpointKey) (*checkpointWrites, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.keys[k]
	if !ok {
		w = &checkpointWrites{}
		p.keys[k] = w
	}
	w.latest++
	w.pending++
	return w, w.latest
}

func (p *Persister) superseded(w *checkpointWrites, seq uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return w.latest != seq
}

func (p *Persister) release(k checkpointKey, w *checkpointWrites) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w.pending--
	if w.pending == 0 {
		delete(p.keys, k)
	}
}

// Persist saves rec and then publishes evt. onFailure is called with a
// user-facing warning when the save fails; publish failures are only logged.
// Saves of the same checkpoint are serialized and the last Persist call wins.
func (p *Persister) Persist(rec domain.CheckpointRecord, evt domain.CheckpointEvent, onFailure func(warning string)) {
	key := checkpointKey{userID: rec.UserID, topic: rec.Topic, stage: rec.Stage}
	writes, seq := p.acquire(key)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		log := logger.Get().With(
			zap.String("userID", rec.UserID),
			zap.String("topic", rec.Topic),
			zap.String("stage", rec.Stage.String()),
		)

		if err := p.save(key, writes, seq, rec); err != nil {
			log.Error("Failed to save checkpoint", zap.Error(err))
			if p.metrics != nil {
				p.metrics.PersistFailures.WithLabelValues(rec.Stage.String()).Inc()
			}
			if onFailure != nil {
				onFailure(persistFailedWarning)
			}
		}

		if p.events == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		if err := p.events.PublishCheckpoint(ctx, evt); err != nil {
			log.Warn("Failed to publish checkpoint event", zap.Error(err))
		}
	}()
}

// save runs the store write under its own timeout, started once earlier
// writes of the same checkpoint are done.
func (p *Persister) save(key checkpointKey, w *checkpointWrites, seq uint64, rec domain.CheckpointRecord) error {
	defer p.release(key, w)
	w.mu.Lock()
	defer w.mu.Unlock()
	if p.superseded(w, seq) {
		logger.Get().Debug("Skipping superseded checkpoint write",
			zap.String("userID", rec.UserID),
			zap.String("topic", rec.Topic),
			zap.String("stage", rec.Stage.String()),
		)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	return p.store.SaveCheckpoint(ctx, rec)
}

// Load reads stored progress synchronously.
func (p *Persister) Load(ctx context.Context, userID, topic string) (*domain.ProgressDocument, error) {
	return p.store.LoadProgress(ctx, userID, topic)
}

// Wait blocks until pending writes finish or ctx is done.
func (p *Persister) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
