package validation

import (
	"strings"
	"unicode/utf8"

	"history-quiz/internal/domain"
	"history-quiz/internal/dto"
	"history-quiz/internal/service"
	"history-quiz/internal/util"
)

const (
	maxEssayRunes  = 20000
	maxAnswerRunes = 200
	maxQuestionIdx = 50
)

// TopicSet reports whether a topic name is known.
type TopicSet interface {
	Has(name string) bool
}

// Validator provides request validation functionality
type Validator struct {
	topics TopicSet
}

// NewValidator creates a validator. A nil TopicSet skips the known-topic check.
func NewValidator(topics TopicSet) *Validator {
	return &Validator{topics: topics}
}

// ValidateSessionID checks the path id is a ULID.
func (v *Validator) ValidateSessionID(id string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(id) == "" {
		errors = append(errors, domain.NewMissingFieldError("id"))
	} else if !util.IsULID(id) {
		errors = append(errors, domain.NewInvalidFormatError("id", id))
	}
	return errors
}

// ValidateTopic checks a topic name is present and known.
func (v *Validator) ValidateTopic(topic string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(topic) == "" {
		errors = append(errors, domain.NewMissingFieldError("topic"))
		return errors
	}
	if v.topics != nil && !v.topics.Has(topic) {
		errors = append(errors, domain.ValidationError{Field: "topic", Message: "is not a known period", Value: topic})
	}
	return errors
}

// ValidateJumpStage parses the target of a jump. Only checkpoint stages
// can be jumped to.
func (v *Validator) ValidateJumpStage(name string) (domain.Stage, domain.ValidationErrors) {
	if strings.TrimSpace(name) == "" {
		return 0, domain.ValidationErrors{domain.NewMissingFieldError("stage")}
	}
	stage, err := domain.ParseStage(name)
	if err != nil {
		return 0, domain.ValidationErrors{domain.NewInvalidFormatError("stage", name)}
	}
	if _, ok := stage.CheckpointKey(); !ok {
		return 0, domain.ValidationErrors{{Field: "stage", Message: "must be a checkpoint stage", Value: name}}
	}
	return stage, nil
}

// ValidateObjectiveAnswers checks indexes, MC letters and answer lengths.
func (v *Validator) ValidateObjectiveAnswers(req dto.ObjectiveAnswersRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	for i, letter := range req.MC {
		if i < 0 || i >= maxQuestionIdx {
			errors = append(errors, domain.NewOutOfRangeError("mc", i, 0, maxQuestionIdx-1))
			continue
		}
		switch strings.ToUpper(strings.TrimSpace(letter)) {
		case "", "A", "B", "C", "D":
		default:
			errors = append(errors, domain.NewInvalidFormatError("mc", letter))
		}
	}
	for i, answer := range req.FillIn {
		if i < 0 || i >= maxQuestionIdx {
			errors = append(errors, domain.NewOutOfRangeError("fill_in", i, 0, maxQuestionIdx-1))
			continue
		}
		if n := utf8.RuneCountInString(answer); n > maxAnswerRunes {
			errors = append(errors, domain.NewOutOfRangeError("fill_in", n, 0, maxAnswerRunes))
		}
	}
	return errors
}

// ValidateStatementAnswers checks verdict indexes.
func (v *Validator) ValidateStatementAnswers(req dto.StatementAnswersRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	for i := range req.Verdicts {
		if i < 0 || i >= maxQuestionIdx {
			errors = append(errors, domain.NewOutOfRangeError("verdicts", i, 0, maxQuestionIdx-1))
		}
	}
	return errors
}

// ValidateEssay enforces a length limit. Blank essays are rejected by the
// session service with a user-facing message.
func (v *Validator) ValidateEssay(essay string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if n := utf8.RuneCountInString(essay); n > maxEssayRunes {
		errors = append(errors, domain.NewOutOfRangeError("essay", n, 0, maxEssayRunes))
	}
	return errors
}

// ValidateHintRequest checks the question type and index sign.
func (v *Validator) ValidateHintRequest(req dto.HintRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	switch req.Type {
	case service.HintTypeMC, service.HintTypeFillIn:
	case "":
		errors = append(errors, domain.NewMissingFieldError("type"))
	default:
		errors = append(errors, domain.NewInvalidFormatError("type", req.Type))
	}
	if req.Index < 0 {
		errors = append(errors, domain.NewOutOfRangeError("index", req.Index, 0, maxQuestionIdx-1))
	}
	return errors
}
