package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"history-quiz/internal/cache"
	"history-quiz/internal/content"
	"history-quiz/internal/domain"
	"history-quiz/internal/dto"
	"history-quiz/internal/evaluator"
	"history-quiz/internal/logger"
	"history-quiz/internal/metrics"
	"history-quiz/internal/progression"
	"history-quiz/internal/prompt"
	"history-quiz/internal/util"

	"go.uber.org/zap"
)

// SessionService drives revision sessions: one progression controller per
// session, with completion calls made outside the controller's lock.
type SessionService interface {
	CreateSession(ctx context.Context, userID string) (*dto.SessionResponse, error)
	GetSession(ctx context.Context, userID, id string) (*dto.SessionResponse, error)
	DeleteSession(ctx context.Context, userID, id string) error

	SelectTopic(ctx context.Context, userID, id, topic string) (*dto.SessionResponse, error)
	Advance(ctx context.Context, userID, id string) (*dto.SessionResponse, error)
	Back(ctx context.Context, userID, id string) (*dto.SessionResponse, error)
	JumpTo(ctx context.Context, userID, id string, stage domain.Stage) (*dto.SessionResponse, error)

	GenerateObjectiveQuiz(ctx context.Context, userID, id string) (*dto.SessionResponse, error)
	SubmitObjectiveAnswers(ctx context.Context, userID, id string, resp domain.ObjectiveResponse) (*dto.SubmissionResponse, error)
	GenerateStatements(ctx context.Context, userID, id string) (*dto.SessionResponse, error)
	SubmitStatementAnswers(ctx context.Context, userID, id string, resp domain.StatementResponse) (*dto.SubmissionResponse, error)
	GenerateEssay(ctx context.Context, userID, id string) (*dto.SessionResponse, error)
	RegenerateOutline(ctx context.Context, userID, id string) (*dto.SessionResponse, error)
	SubmitEssay(ctx context.Context, userID, id, essay string) (*dto.SessionResponse, error)
	RequestHint(ctx context.Context, userID, id, questionType string, index int) (*dto.HintResponse, error)

	ExportText(ctx context.Context, userID, id string) (string, error)
	ExportWorkbook(ctx context.Context, userID, id string, w io.Writer) error
	LoadProgress(ctx context.Context, userID, topic string) (*dto.ProgressResponse, error)

	// EvictIdle drops sessions unused for maxIdle and returns how many were removed.
	EvictIdle(maxIdle time.Duration) int
}

// SessionDeps bundles the collaborators of the session service. Cache,
// Metrics and Hints may be nil.
type SessionDeps struct {
	Catalog    *content.Catalog
	Builder    *prompt.Builder
	Completion domain.CompletionService
	Evaluator  *evaluator.Evaluator
	Exporter   *SummaryExporter
	Persister  *Persister
	Hints      *HintService
	Cache      domain.Cache
	OutlineTTL time.Duration
	Metrics    *metrics.Metrics
}

type session struct {
	domain.Session
	ctrl     *progression.Controller
	lastSeen atomic.Int64
}

func (s *session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

type sessionService struct {
	deps SessionDeps

	mu       sync.RWMutex
	sessions map[string]*session

	now        func() time.Time
	pickAspect func() domain.Aspect
}

func NewSessionService(deps SessionDeps) SessionService {
	return newSessionService(deps)
}

func newSessionService(deps SessionDeps) *sessionService {
	if deps.Evaluator == nil {
		deps.Evaluator = evaluator.New()
	}
	if deps.Exporter == nil {
		deps.Exporter = NewSummaryExporter(deps.Evaluator)
	}
	if deps.Persister == nil {
		deps.Persister = NewPersister(nil, nil, deps.Metrics, 0)
	}
	if deps.Hints == nil {
		deps.Hints = NewHintService(deps.Completion, deps.Builder, deps.Cache, 0)
	}
	aspects := domain.Aspects()
	return &sessionService{
		deps:     deps,
		sessions: make(map[string]*session),
		now:      time.Now,
		pickAspect: func() domain.Aspect {
			return aspects[rand.IntN(len(aspects))]
		},
	}
}

func (s *sessionService) get(userID, id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || sess.UserID != userID {
		return nil, domain.NewSessionNotFoundError(id)
	}
	sess.touch(s.now())
	return sess, nil
}

func toResponse(sess *session, snap progression.Snapshot) *dto.SessionResponse {
	return &dto.SessionResponse{
		ID:            sess.ID,
		Stage:         snap.State.Stage.String(),
		Topic:         snap.State.Topic,
		EssayComplete: snap.State.EssayComplete,
		CreatedAt:     sess.CreatedAt,
		Results:       snap.Results,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, userID string) (*dto.SessionResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.NewUnauthorizedError("a user is required to start a session")
	}

	sess := &session{
		Session: domain.Session{ID: util.NewULID(), UserID: userID, CreatedAt: s.now()},
		ctrl:    progression.NewController(s.deps.Evaluator),
	}
	sess.touch(sess.CreatedAt)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	if s.deps.Metrics != nil {
		s.deps.Metrics.ActiveSessions.Inc()
	}
	logger.Get().Info("Session created", zap.String("sessionID", sess.ID), zap.String("userID", userID))
	return toResponse(sess, sess.ctrl.Snapshot()), nil
}

func (s *sessionService) GetSession(ctx context.Context, userID, id string) (*dto.SessionResponse, error) {
	sess, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}
	return toResponse(sess, sess.ctrl.Snapshot()), nil
}

func (s *sessionService) DeleteSession(ctx context.Context, userID, id string) error {
	if _, err := s.get(userID, id); err != nil {
		return err
	}
	s.remove(id)
	return nil
}

func (s *sessionService) remove(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return
	}
	sess.ctrl.Close()
	if s.deps.Metrics != nil {
		s.deps.Metrics.ActiveSessions.Dec()
	}
}

func (s *sessionService) EvictIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle).UnixNano()

	s.mu.RLock()
	var stale []string
	for id, sess := range s.sessions {
		if sess.lastSeen.Load() < cutoff {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range stale {
		s.remove(id)
	}
	if len(stale) > 0 {
		logger.Get().Info("Evicted idle sessions", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// StartEviction runs EvictIdle every interval until ctx is done.
func StartEviction(ctx context.Context, svc SessionService, interval, maxIdle time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				svc.EvictIdle(maxIdle)
			}
		}
	}()
}

func (s *sessionService) dispatch(userID, id string, e progression.Event) (*dto.SessionResponse, error) {
	sess, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}
	if _, err := sess.ctrl.Dispatch(e); err != nil {
		return nil, err
	}
	return toResponse(sess, sess.ctrl.Snapshot()), nil
}

func (s *sessionService) SelectTopic(ctx context.Context, userID, id, topic string) (*dto.SessionResponse, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, domain.ValidationErrors{domain.NewMissingFieldError("topic")}
	}
	if !s.deps.Catalog.Has(topic) {
		return nil, domain.NewTopicNotFoundError(topic)
	}
	return s.dispatch(userID, id, progression.SelectTopic(topic))
}

// Advance moves to the next stage. Leaving the essay stage first requests
// overall feedback, which is what marks the essay complete.
func (s *sessionService) Advance(ctx context.Context, userID, id string) (*dto.SessionResponse, error) {
	sess, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}

	if st := sess.ctrl.State(); st.Stage == domain.StageEssay && !st.EssayComplete {
		if err := s.requestOverallFeedback(ctx, sess); err != nil {
			return nil, err
		}
	}

	if _, err := sess.ctrl.Dispatch(progression.Advance()); err != nil {
		return nil, err
	}
	return toResponse(sess, sess.ctrl.Snapshot()), nil
}

func (s *sessionService) Back(ctx context.Context, userID, id string) (*dto.SessionResponse, error) {
	return s.dispatch(userID, id, progression.Back())
}

func (s *sessionService) JumpTo(ctx context.Context, userID, id string, stage domain.Stage) (*dto.SessionResponse, error) {
	return s.dispatch(userID, id, progression.JumpTo(stage))
}

type fetchFunc func(ctx context.Context, snap progression.Snapshot) (func(r *domain.SessionResults), error)

// runFetch reserves stage, runs call outside the controller lock and
// applies the result if the session has not moved on. A call cut short
// because the session moved on is reported as a stale response.
func (s *sessionService) runFetch(ctx context.Context, sess *session, stage domain.Stage, call fetchFunc) error {
	tok, fetchCtx, err := sess.ctrl.BeginFetch(ctx, stage)
	if err != nil {
		return err
	}

	apply, err := call(fetchCtx, sess.ctrl.Snapshot())
	if err != nil {
		superseded := fetchCtx.Err() != nil && ctx.Err() == nil
		sess.ctrl.ReleaseFetch(tok)
		if superseded {
			return domain.NewStaleResponseError(stage)
		}
		return err
	}

	if err := sess.ctrl.CompleteFetch(tok, apply); err != nil {
		logger.Get().Info("Discarded stale completion",
			zap.String("sessionID", sess.ID),
			zap.String("stage", stage.String()))
		return err
	}
	return nil
}

func (s *sessionService) GenerateObjectiveQuiz(ctx context.Context, userID, id string) (*dto.SessionResponse, error) {
	sess, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}

	err = s.runFetch(ctx, sess, domain.StageObjectiveQuiz, func(ctx context.Context, snap progression.Snapshot) (func(*domain.SessionResults), error) {
		req, err := s.deps.Builder.Build(domain.KindObjectiveQuiz, prompt.Params{Topic: snap.State.Topic})
		if err != nil {
			return nil, err
		}
		var qs domain.QuestionSet
		if err := s.deps.Completion.CompleteJSON(ctx, req, &qs); err != nil {
			return nil, err
		}
		if qs.Total() == 0 {
			return nil, domain.NewMalformedResponseError("no questions were generated", nil)
		}
		return func(r *domain.SessionResults) {
			r.Questions = &qs
			r.ObjectiveResponse = domain.ObjectiveResponse{}
			r.ObjectiveScore = nil
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return toResponse(sess, sess.ctrl.Snapshot()), nil
}

func (s *sessionService) persist(sess *session, topic string, stage domain.Stage, payload domain.CheckpointPayload, score *domain.ScoreResult) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.Submissions.WithLabelValues(stage.String()).Inc()
	}
	rec := domain.CheckpointRecord{UserID: sess.UserID, Topic: topic, Stage: stage, Payload: payload}
	evt := domain.CheckpointEvent{
		Type:       domain.EventCheckpointCompleted,
		SessionID:  sess.ID,
		UserID:     sess.UserID,
		Topic:      topic,
		Stage:      stage,
		Score:      score,
		OccurredAt: payload.Timestamp,
	}
	s.deps.Persister.Persist(rec, evt, func(warning string) {
		sess.ctrl.AddWarning(topic, warning)
	})
}

func (s *sessionService) SubmitObjectiveAnswers(ctx context.Context, userID, id string, resp domain.ObjectiveResponse) (*dto.SubmissionResponse, error) {
	sess, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}

	score, snap, err := sess.ctrl.SubmitObjective(resp)
	if err != nil {
		return nil, err
	}

	s.persist(sess, snap.State.Topic, domain.StageObjectiveQuiz, domain.CheckpointPayload{
		Questions: snap.Results.Questions,
		Answers:   resp.AnswerMap(),
		Score:     &score,
		Timestamp: s.now(),
	}, &score)

	return &dto.SubmissionResponse{Score: score, Session: *toResponse(sess, snap)}, nil
}

func (s *sessionService) GenerateStatements(ctx context.Context, userID, id string) (*dto.SessionResponse, error) {
	sess, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}

	err = s.runFetch(ctx, sess, domain.StageErrorIdentification, func(ctx context.Context, snap progression.Snapshot) (func(*domain.SessionResults), error) {
		req, err := s.deps.Builder.Build(domain.KindStatements, prompt.Params{Topic: snap.State.Topic})
		if err != nil {
			return nil, err
		}
		var ss domain.StatementSet
		if err := s.deps.Completion.CompleteJSON(ctx, req, &ss); err != nil {
			return nil, err
		}
		if len(ss.Statements) == 0 {
			return nil, domain.NewMalformedResponseError("no statements were generated", nil)
		}
		return func(r *domain.SessionResults) {
			r.Statements = &ss
			r.StatementResponse = nil
			r.StatementScore = nil
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return toResponse(sess, sess.ctrl.Snapshot()), nil
}

func (s *sessionService) SubmitStatementAnswers(ctx context.Context, userID, id string, resp domain.StatementResponse) (*dto.SubmissionResponse, error) {
	sess, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}

	score, snap, err := sess.ctrl.SubmitStatements(resp)
	if err != nil {
		return nil, err
	}

	s.persist(sess, snap.State.Topic, domain.StageErrorIdentification, domain.CheckpointPayload{
		Statements:  snap.Results.Statements,
		TruthValues: resp.AnswerMap(),
		Score:       &score,
		Timestamp:   s.now(),
	}, &score)

	return &dto.SubmissionResponse{Score: score, Session: *toResponse(sess, snap)}, nil
}

// outline returns the essay outline for topic and aspect, from the cache
// unless refresh is set.
func (s *sessionService) outline(ctx context.Context, topic string, aspect domain.Aspect, refresh bool) (string, error) {
	key := cache.GenerateCacheKey("outline", "essay", topic, aspect.Key())
	log := logger.Get().With(zap.String("key", key))

	if kv := s.deps.Cache; kv != nil {
		if refresh {
			if err := kv.Delete(ctx, key); err != nil {
				log.Warn("Outline cache delete failed", zap.Error(err))
			}
		} else {
			cached, err := kv.Get(ctx, key)
			if err == nil && cached != "" {
				return cached, nil
			}
			if err != nil && !errors.Is(err, domain.ErrCacheMiss) {
				log.Warn("Outline cache read failed", zap.Error(err))
			}
		}
	}

	req, err := s.deps.Builder.Build(domain.KindEssayOutline, prompt.Params{Topic: topic, Aspect: aspect})
	if err != nil {
		return "", err
	}
	text, err := s.deps.Completion.Complete(ctx, req)
	if err != nil {
		return "", err
	}

	if kv := s.deps.Cache; kv != nil {
		if err := kv.Set(ctx, key, text, s.deps.OutlineTTL); err != nil {
			log.Warn("Outline cache write failed", zap.Error(err))
		}
	}
	return text, nil
}

// GenerateEssay picks a random aspect for the essay question and fetches
// an outline for it. Any earlier essay attempt is discarded.
func (s *sessionService) GenerateEssay(ctx context.Context, userID, id string) (*dto.SessionResponse, error) {
	sess, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}
	aspect := s.pickAspect()

	err = s.runFetch(ctx, sess, domain.StageEssay, func(ctx context.Context, snap progression.Snapshot) (func(*domain.SessionResults), error) {
		text, err := s.outline(ctx, snap.State.Topic, aspect, false)
		if err != nil {
			return nil, err
		}
		question := domain.EssayQuestion{Topic: snap.State.Topic, Aspect: aspect}
		return func(r *domain.SessionResults) {
			r.EssayQuestion = &question
			r.EssayOutline = text
			r.EssayAnswer = ""
			r.EssayFeedback = nil
			r.OverallFeedback = nil
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return toResponse(sess, sess.ctrl.Snapshot()), nil
}

func (s *sessionService) RegenerateOutline(ctx context.Context, userID, id string) (*dto.SessionResponse, error) {
	sess, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}

	err = s.runFetch(ctx, sess, domain.StageEssay, func(ctx context.Context, snap progression.Snapshot) (func(*domain.SessionResults), error) {
		q := snap.Results.EssayQuestion
		if q == nil {
			return nil, domain.NewInvalidInputError("no essay question has been generated")
		}
		text, err := s.outline(ctx, q.Topic, q.Aspect, true)
		if err != nil {
			return nil, err
		}
		return func(r *domain.SessionResults) {
			r.EssayOutline = text
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return toResponse(sess, sess.ctrl.Snapshot()), nil
}

func (s *sessionService) SubmitEssay(ctx context.Context, userID, id, essay string) (*dto.SessionResponse, error) {
	if strings.TrimSpace(essay) == "" {
		return nil, domain.NewInvalidInputError("Please write your essay before submitting.")
	}
	sess, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}

	var record domain.EssayRecord
	err = s.runFetch(ctx, sess, domain.StageEssay, func(ctx context.Context, snap progression.Snapshot) (func(*domain.SessionResults), error) {
		q := snap.Results.EssayQuestion
		if q == nil {
			return nil, domain.NewInvalidInputError("no essay question has been generated")
		}
		req, err := s.deps.Builder.Build(domain.KindEssayFeedback, prompt.Params{Topic: q.Topic, Aspect: q.Aspect, Essay: essay})
		if err != nil {
			return nil, err
		}
		var fb domain.EssayFeedback
		if err := s.deps.Completion.CompleteJSON(ctx, req, &fb); err != nil {
			return nil, err
		}
		record = domain.EssayRecord{Question: *q, UserAnswer: essay, Feedback: fb}
		return func(r *domain.SessionResults) {
			r.EssayAnswer = essay
			r.EssayFeedback = &fb
			r.OverallFeedback = nil
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.persist(sess, record.Question.Topic, domain.StageEssay, domain.CheckpointPayload{
		Essay:     &record,
		Timestamp: s.now(),
	}, nil)
	return toResponse(sess, sess.ctrl.Snapshot()), nil
}

func (s *sessionService) requestOverallFeedback(ctx context.Context, sess *session) error {
	return s.runFetch(ctx, sess, domain.StageEssay, func(ctx context.Context, snap progression.Snapshot) (func(*domain.SessionResults), error) {
		if snap.Results.EssayFeedback == nil {
			return nil, domain.NewInvalidInputError("submit your essay before finishing")
		}
		results := snap.Results
		req, err := s.deps.Builder.Build(domain.KindOverallFeedback, prompt.Params{Topic: snap.State.Topic, Results: &results})
		if err != nil {
			return nil, err
		}
		var fb domain.OverallFeedback
		if err := s.deps.Completion.CompleteJSON(ctx, req, &fb); err != nil {
			return nil, err
		}
		return func(r *domain.SessionResults) {
			r.OverallFeedback = &fb
		}, nil
	})
}

// Hint question types.
const (
	HintTypeMC     = "mc"
	HintTypeFillIn = "fib"
)

func (s *sessionService) RequestHint(ctx context.Context, userID, id, questionType string, index int) (*dto.HintResponse, error) {
	sess, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}

	snap := sess.ctrl.Snapshot()
	if snap.State.Topic == "" {
		return nil, domain.NewNoTopicSelectedError()
	}
	qs := snap.Results.Questions
	if qs == nil {
		return nil, domain.NewInvalidInputError("no questions have been generated")
	}

	var (
		question string
		options  *domain.MCOptions
	)
	switch questionType {
	case HintTypeMC:
		if index < 0 || index >= len(qs.MCQuestions) {
			return nil, domain.ValidationErrors{domain.NewOutOfRangeError("index", index, 0, len(qs.MCQuestions)-1)}
		}
		q := qs.MCQuestions[index]
		question, options = q.Question, &q.Options
	case HintTypeFillIn:
		if index < 0 || index >= len(qs.FillInBlanks) {
			return nil, domain.ValidationErrors{domain.NewOutOfRangeError("index", index, 0, len(qs.FillInBlanks)-1)}
		}
		question = qs.FillInBlanks[index].Question
	default:
		return nil, domain.ValidationErrors{domain.NewInvalidFormatError("type", questionType)}
	}

	hint, cached, err := s.deps.Hints.Hint(ctx, snap.State.Topic, question, options)
	if err != nil {
		return nil, err
	}
	return &dto.HintResponse{Hint: hint, Cached: cached}, nil
}

func (s *sessionService) ExportText(ctx context.Context, userID, id string) (string, error) {
	sess, err := s.get(userID, id)
	if err != nil {
		return "", err
	}
	snap := sess.ctrl.Snapshot()
	if snap.State.Topic == "" {
		return "", domain.NewNoTopicSelectedError()
	}
	return s.deps.Exporter.Text(snap.Results), nil
}

func (s *sessionService) ExportWorkbook(ctx context.Context, userID, id string, w io.Writer) error {
	sess, err := s.get(userID, id)
	if err != nil {
		return err
	}
	snap := sess.ctrl.Snapshot()
	if snap.State.Topic == "" {
		return domain.NewNoTopicSelectedError()
	}
	if err := s.deps.Exporter.WriteWorkbook(snap.Results, w); err != nil {
		return domain.NewInternalError("Failed to export summary", err)
	}
	return nil
}

func (s *sessionService) LoadProgress(ctx context.Context, userID, topic string) (*dto.ProgressResponse, error) {
	if !s.deps.Catalog.Has(topic) {
		return nil, domain.NewTopicNotFoundError(topic)
	}
	doc, err := s.deps.Persister.Load(ctx, userID, topic)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, domain.NewInternalError(fmt.Sprintf("Failed to load progress for %s", topic), err)
	}
	return &dto.ProgressResponse{Progress: doc}, nil
}
