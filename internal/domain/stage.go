package domain

import (
	"fmt"
)

// Stage is one step of the revision wizard.
type Stage int

const (
	StageSelection Stage = iota
	StageObjectiveQuiz
	StageErrorIdentification
	StageEssay
	StageSummary
)

var stageNames = map[Stage]string{
	StageSelection:           "selection",
	StageObjectiveQuiz:       "objective_quiz",
	StageErrorIdentification: "error_identification",
	StageEssay:               "essay",
	StageSummary:             "summary",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// ParseStage converts the text form back into a Stage.
func ParseStage(name string) (Stage, error) {
	for s, n := range stageNames {
		if n == name {
			return s, nil
		}
	}
	return 0, NewInvalidInputError(fmt.Sprintf("unknown stage %q", name))
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(text []byte) error {
	parsed, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// CheckpointKey is the persistence key for stages that produce results.
func (s Stage) CheckpointKey() (string, bool) {
	switch s {
	case StageObjectiveQuiz:
		return "checkpoint1", true
	case StageErrorIdentification:
		return "checkpoint2", true
	case StageEssay:
		return "checkpoint3", true
	}
	return "", false
}
