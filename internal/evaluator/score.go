package evaluator

import (
	"strings"

	"history-quiz/internal/domain"
	"history-quiz/internal/logger"

	"go.uber.org/zap"
)

// DegenerateObserver is notified when a fill-in comparison involves an
// empty normalized form. matched reports whether the pair was accepted.
type DegenerateObserver func(matched bool)

// Evaluator scores answers. The zero value applies the plain pipeline
// semantics; it is safe for concurrent use.
type Evaluator struct {
	rejectEmptyNormalized bool
	onDegenerate          DegenerateObserver
	quiet                 bool
}

type Option func(*Evaluator)

// WithRejectEmptyNormalized makes fill-in answers whose normalized form is
// empty on either side score as incorrect.
func WithRejectEmptyNormalized(reject bool) Option {
	return func(e *Evaluator) {
		e.rejectEmptyNormalized = reject
	}
}

func WithDegenerateObserver(fn DegenerateObserver) Option {
	return func(e *Evaluator) {
		e.onDegenerate = fn
	}
}

func New(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Quiet returns a copy with the same scoring policy that neither logs nor
// notifies the observer. Use it when re-checking answers already scored.
func (e *Evaluator) Quiet() *Evaluator {
	q := *e
	q.onDegenerate = nil
	q.quiet = true
	return &q
}

// CheckMultipleChoice compares the selected label case-insensitively.
func (e *Evaluator) CheckMultipleChoice(answer, expected string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	return strings.EqualFold(answer, strings.TrimSpace(expected))
}

// CheckTrueFalse requires an answer; nil is unanswered and never correct.
func (e *Evaluator) CheckTrueFalse(answer *bool, expected bool) bool {
	if answer == nil {
		return false
	}
	return *answer == expected
}

// CheckFillIn compares normalized forms. A blank answer is always wrong.
func (e *Evaluator) CheckFillIn(answer, expected string) bool {
	if strings.TrimSpace(answer) == "" {
		return false
	}
	got, want := Normalize(answer), Normalize(expected)
	matched := got == want

	if got == "" || want == "" {
		if e.rejectEmptyNormalized {
			matched = false
		}
		if e.quiet {
			return matched
		}
		logger.Get().Warn("Degenerate normalized form in fill-in comparison",
			zap.String("answer", answer),
			zap.String("expected", expected),
			zap.Bool("matched", matched),
		)
		if e.onDegenerate != nil {
			e.onDegenerate(matched)
		}
	}
	return matched
}

// ScoreObjective scores every MC and fill-in item of the set.
func (e *Evaluator) ScoreObjective(qs domain.QuestionSet, resp domain.ObjectiveResponse) domain.ScoreResult {
	result := domain.ScoreResult{Total: qs.Total()}
	for i, q := range qs.MCQuestions {
		if e.CheckMultipleChoice(resp.MC[i], q.Answer) {
			result.Correct++
		}
	}
	for i, q := range qs.FillInBlanks {
		if e.CheckFillIn(resp.FillIn[i], q.Answer) {
			result.Correct++
		}
	}
	return result
}

// ScoreStatements scores the true/false verdicts for each statement.
func (e *Evaluator) ScoreStatements(ss domain.StatementSet, resp domain.StatementResponse) domain.ScoreResult {
	result := domain.ScoreResult{Total: len(ss.Statements)}
	for i, s := range ss.Statements {
		if e.CheckTrueFalse(resp[i], s.IsTrue) {
			result.Correct++
		}
	}
	return result
}
