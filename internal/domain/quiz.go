package domain

import (
	"fmt"
)

// MCOptions holds the four labelled choices of a multiple-choice item.
type MCOptions struct {
	A string `json:"A" bson:"A"`
	B string `json:"B" bson:"B"`
	C string `json:"C" bson:"C"`
	D string `json:"D" bson:"D"`
}

type MCQuestion struct {
	Question string    `json:"question" bson:"question"`
	Options  MCOptions `json:"options" bson:"options"`
	Answer   string    `json:"answer" bson:"answer"`
}

type FillInQuestion struct {
	Question string `json:"question" bson:"question"`
	Answer   string `json:"answer" bson:"answer"`
}

// QuestionSet is the objective quiz for one topic.
type QuestionSet struct {
	MCQuestions  []MCQuestion     `json:"mc_questions" bson:"mc_questions"`
	FillInBlanks []FillInQuestion `json:"fill_in_blanks" bson:"fill_in_blanks"`
}

// Total is the number of scorable items.
func (q QuestionSet) Total() int {
	return len(q.MCQuestions) + len(q.FillInBlanks)
}

type Statement struct {
	Statement           string `json:"statement" bson:"statement"`
	IsTrue              bool   `json:"is_true" bson:"is_true"`
	CorrectValueIfFalse string `json:"correct_value_if_false,omitempty" bson:"correct_value_if_false,omitempty"`
}

type StatementSet struct {
	Statements []Statement `json:"statements" bson:"statements"`
}

// ObjectiveResponse maps question index to the user's answer.
type ObjectiveResponse struct {
	MC     map[int]string `json:"mc"`
	FillIn map[int]string `json:"fill_in"`
}

// AnswerMap flattens the response into "mc_<i>" / "fib_<i>" keys.
func (r ObjectiveResponse) AnswerMap() map[string]string {
	out := make(map[string]string, len(r.MC)+len(r.FillIn))
	for i, v := range r.MC {
		out[fmt.Sprintf("mc_%d", i)] = v
	}
	for i, v := range r.FillIn {
		out[fmt.Sprintf("fib_%d", i)] = v
	}
	return out
}

// StatementResponse maps statement index to the chosen truth value.
// A missing or nil entry means unanswered.
type StatementResponse map[int]*bool

// AnswerMap flattens the response into string keys for storage.
func (r StatementResponse) AnswerMap() map[string]*bool {
	out := make(map[string]*bool, len(r))
	for i, v := range r {
		out[fmt.Sprintf("%d", i)] = v
	}
	return out
}

type ScoreResult struct {
	Correct int `json:"correct" bson:"correct"`
	Total   int `json:"total" bson:"total"`
}

func (s ScoreResult) String() string {
	return fmt.Sprintf("%d/%d", s.Correct, s.Total)
}

type EssayQuestion struct {
	Topic  string `json:"topic" bson:"period"`
	Aspect Aspect `json:"aspect" bson:"aspect"`
}

// Text renders the fixed essay prompt.
func (q EssayQuestion) Text() string {
	return fmt.Sprintf("To what extent was %s effective in modernizing China in the %s aspect?", q.Topic, q.Aspect)
}

type EssayFeedback struct {
	Score         string `json:"score" bson:"score"`
	Comment       string `json:"comment" bson:"comment"`
	CorrectAnswer string `json:"correct_answer" bson:"correct_answer"`
}

type OverallFeedback struct {
	Comment string `json:"comment" bson:"comment"`
	Emojis  string `json:"emojis" bson:"emojis"`
}
