package progression

import (
	"strings"

	"history-quiz/internal/domain"
)

// State is the controller's position in the wizard.
type State struct {
	Stage domain.Stage `json:"stage"`
	Topic string       `json:"topic,omitempty"`
	// EssayComplete is set once overall feedback is recorded; it gates
	// advancing from the essay stage.
	EssayComplete bool `json:"essay_complete"`
}

// InitialState is the Selection stage with no topic.
func InitialState() State {
	return State{Stage: domain.StageSelection}
}

type EventKind int

const (
	EventSelectTopic EventKind = iota
	EventAdvance
	EventBack
	EventJumpTo
)

func (k EventKind) String() string {
	switch k {
	case EventSelectTopic:
		return "select topic"
	case EventAdvance:
		return "advance"
	case EventBack:
		return "go back"
	case EventJumpTo:
		return "jump"
	}
	return "unknown event"
}

// Event is a tagged transition request. Topic is used by EventSelectTopic
// and Target by EventJumpTo.
type Event struct {
	Kind   EventKind
	Topic  string
	Target domain.Stage
}

func SelectTopic(topic string) Event { return Event{Kind: EventSelectTopic, Topic: topic} }
func Advance() Event                 { return Event{Kind: EventAdvance} }
func Back() Event                    { return Event{Kind: EventBack} }
func JumpTo(stage domain.Stage) Event {
	return Event{Kind: EventJumpTo, Target: stage}
}

// Transition computes the next state. It has no side effects; on error the
// returned state equals s.
func Transition(s State, e Event) (State, error) {
	switch e.Kind {
	case EventSelectTopic:
		if s.Stage != domain.StageSelection || s.Topic != "" {
			return s, domain.NewInvalidTransitionError(s.Stage, e.Kind.String())
		}
		topic := strings.TrimSpace(e.Topic)
		if topic == "" {
			return s, domain.NewInvalidInputError("topic must not be empty")
		}
		return State{Stage: domain.StageObjectiveQuiz, Topic: topic}, nil

	case EventAdvance:
		switch s.Stage {
		case domain.StageObjectiveQuiz, domain.StageErrorIdentification:
			return State{Stage: s.Stage + 1, Topic: s.Topic}, nil
		case domain.StageEssay:
			if !s.EssayComplete {
				return s, domain.NewInvalidTransitionError(s.Stage, e.Kind.String()).
					WithContext("reason", "essay not completed")
			}
			return State{Stage: domain.StageSummary, Topic: s.Topic, EssayComplete: true}, nil
		}
		return s, domain.NewInvalidTransitionError(s.Stage, e.Kind.String())

	case EventBack:
		switch s.Stage {
		case domain.StageObjectiveQuiz, domain.StageSummary:
			return InitialState(), nil
		case domain.StageErrorIdentification, domain.StageEssay:
			return State{Stage: s.Stage - 1, Topic: s.Topic}, nil
		}
		return s, domain.NewInvalidTransitionError(s.Stage, e.Kind.String())

	case EventJumpTo:
		if s.Topic == "" {
			return s, domain.NewNoTopicSelectedError()
		}
		if s.Stage != domain.StageSummary {
			return s, domain.NewInvalidTransitionError(s.Stage, e.Kind.String())
		}
		switch e.Target {
		case domain.StageObjectiveQuiz, domain.StageErrorIdentification, domain.StageEssay:
			return State{Stage: e.Target, Topic: s.Topic}, nil
		}
		return s, domain.NewInvalidTransitionError(s.Stage, e.Kind.String()).
			WithContext("target", e.Target.String())
	}
	return s, domain.NewInvalidInputError("unknown event")
}
