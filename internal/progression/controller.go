package progression

import (
	"context"
	"sync"

	"history-quiz/internal/domain"
	"history-quiz/internal/evaluator"
)

// FetchToken identifies one in-flight completion request for a stage.
type FetchToken struct {
	Stage domain.Stage
	epoch uint64
	id    uint64
}

type inflightFetch struct {
	id     uint64
	cancel context.CancelFunc
}

// Snapshot is a consistent, lock-free copy of the controller.
type Snapshot struct {
	State   State                 `json:"state"`
	Results domain.SessionResults `json:"results"`
}

// Controller owns one session's state and results. All methods are safe
// for concurrent use; external calls must happen between BeginFetch and
// CompleteFetch, outside the controller.
type Controller struct {
	mu        sync.Mutex
	state     State
	results   *domain.SessionResults
	evaluator *evaluator.Evaluator

	epoch    uint64
	nextID   uint64
	inflight map[domain.Stage]inflightFetch
}

func NewController(ev *evaluator.Evaluator) *Controller {
	if ev == nil {
		ev = evaluator.New()
	}
	return &Controller{
		state:     InitialState(),
		results:   domain.NewSessionResults(""),
		evaluator: ev,
		inflight:  make(map[domain.Stage]inflightFetch),
	}
}

// Dispatch applies a transition event. Every successful transition makes
// outstanding fetch tokens stale and cancels their contexts.
func (c *Controller) Dispatch(e Event) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := Transition(c.state, e)
	if err != nil {
		return c.state, err
	}

	switch {
	case next.Stage == domain.StageSelection:
		c.results = domain.NewSessionResults("")
	case e.Kind == EventSelectTopic:
		c.results = domain.NewSessionResults(next.Topic)
	case e.Kind == EventJumpTo:
		c.results.OverallFeedback = nil
	}

	c.state = next
	c.invalidateLocked()
	return c.state, nil
}

func (c *Controller) invalidateLocked() {
	c.epoch++
	for stage, f := range c.inflight {
		f.cancel()
		delete(c.inflight, stage)
	}
}

// Close cancels every in-flight fetch; their results will be discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{State: c.state, Results: c.results.Clone()}
}

// BeginFetch reserves the stage for one completion request. The returned
// context is cancelled when the session moves on.
func (c *Controller) BeginFetch(ctx context.Context, stage domain.Stage) (FetchToken, context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Topic == "" {
		return FetchToken{}, nil, domain.NewNoTopicSelectedError()
	}
	if c.state.Stage != stage {
		return FetchToken{}, nil, domain.NewInvalidTransitionError(c.state.Stage, "fetch "+stage.String())
	}
	if _, busy := c.inflight[stage]; busy {
		return FetchToken{}, nil, domain.NewRequestInFlightError(stage)
	}

	c.nextID++
	fetchCtx, cancel := context.WithCancel(ctx)
	c.inflight[stage] = inflightFetch{id: c.nextID, cancel: cancel}
	return FetchToken{Stage: stage, epoch: c.epoch, id: c.nextID}, fetchCtx, nil
}

// CompleteFetch applies a fetch result if the token is still current.
// A stale token returns StaleResponse and apply is not called.
func (c *Controller) CompleteFetch(tok FetchToken, apply func(r *domain.SessionResults)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.releaseLocked(tok)
	if tok.epoch != c.epoch || c.state.Stage != tok.Stage {
		return domain.NewStaleResponseError(tok.Stage)
	}
	if apply != nil {
		apply(c.results)
	}
	c.state.EssayComplete = c.state.Stage == domain.StageEssay && c.results.OverallFeedback != nil
	return nil
}

// ReleaseFetch drops a token after a failed request, leaving results untouched.
func (c *Controller) ReleaseFetch(tok FetchToken) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseLocked(tok)
}

func (c *Controller) releaseLocked(tok FetchToken) {
	if f, ok := c.inflight[tok.Stage]; ok && f.id == tok.id {
		f.cancel()
		delete(c.inflight, tok.Stage)
	}
}

// SubmitObjective scores the objective quiz and records the answers.
func (c *Controller) SubmitObjective(resp domain.ObjectiveResponse) (domain.ScoreResult, Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireStageLocked(domain.StageObjectiveQuiz, "submit answers"); err != nil {
		return domain.ScoreResult{}, Snapshot{}, err
	}
	if c.results.Questions == nil {
		return domain.ScoreResult{}, Snapshot{}, domain.NewInvalidInputError("no questions have been generated")
	}

	score := c.evaluator.ScoreObjective(*c.results.Questions, resp)
	c.results.ObjectiveResponse = resp
	c.results.ObjectiveScore = &score
	return score, Snapshot{State: c.state, Results: c.results.Clone()}, nil
}

// SubmitStatements scores the true/false verdicts and records them.
func (c *Controller) SubmitStatements(resp domain.StatementResponse) (domain.ScoreResult, Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireStageLocked(domain.StageErrorIdentification, "submit answers"); err != nil {
		return domain.ScoreResult{}, Snapshot{}, err
	}
	if c.results.Statements == nil {
		return domain.ScoreResult{}, Snapshot{}, domain.NewInvalidInputError("no statements have been generated")
	}

	score := c.evaluator.ScoreStatements(*c.results.Statements, resp)
	c.results.StatementResponse = resp
	c.results.StatementScore = &score
	return score, Snapshot{State: c.state, Results: c.results.Clone()}, nil
}

func (c *Controller) requireStageLocked(stage domain.Stage, action string) error {
	if c.state.Topic == "" {
		return domain.NewNoTopicSelectedError()
	}
	if c.state.Stage != stage {
		return domain.NewInvalidTransitionError(c.state.Stage, action)
	}
	return nil
}

// AddWarning records a non-fatal problem if the session is still on topic.
func (c *Controller) AddWarning(topic, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.results.Topic != topic {
		return
	}
	c.results.Warnings = append(c.results.Warnings, msg)
}
