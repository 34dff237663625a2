package service

import (
	"fmt"
	"io"
	"strings"

	"history-quiz/internal/domain"
	"history-quiz/internal/evaluator"

	"github.com/xuri/excelize/v2"
)

const sectionRule = "---------------------------------------"

// SummaryExporter renders a session's results for sharing with a teacher.
// Correctness is recomputed with the scoring policy of ev, without its
// logging or observer.
type SummaryExporter struct {
	ev *evaluator.Evaluator
}

func NewSummaryExporter(ev *evaluator.Evaluator) *SummaryExporter {
	if ev == nil {
		ev = evaluator.New()
	}
	return &SummaryExporter{ev: ev.Quiet()}
}

func correctness(ok bool) string {
	if ok {
		return "Correct"
	}
	return "Incorrect"
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return strings.TrimSpace(s)
}

func verdictText(v *bool) string {
	switch {
	case v == nil:
		return "N/A"
	case *v:
		return "True"
	default:
		return "False"
	}
}

func statementAnswer(s domain.Statement) string {
	if s.IsTrue {
		return "True"
	}
	return fmt.Sprintf("False (Correct Value: %s)", s.CorrectValueIfFalse)
}

// Text builds the plain-text transcript. Sections without data are omitted.
func (e *SummaryExporter) Text(r domain.SessionResults) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- DSE History Revision Summary for %s ---\n\n", r.Topic)

	if r.Questions != nil && r.ObjectiveScore != nil {
		sb.WriteString("=== Checkpoint 1: Hard Knowledge ===\n")
		for i, q := range r.Questions.MCQuestions {
			ans := r.ObjectiveResponse.MC[i]
			fmt.Fprintf(&sb, "Question %d (MC): %s\n", i+1, q.Question)
			fmt.Fprintf(&sb, "  Options: A) %s B) %s C) %s D) %s\n", q.Options.A, q.Options.B, q.Options.C, q.Options.D)
			fmt.Fprintf(&sb, "  Student Answer: %s\n", orNA(ans))
			fmt.Fprintf(&sb, "  Correctness: %s\n", correctness(e.ev.CheckMultipleChoice(ans, q.Answer)))
			fmt.Fprintf(&sb, "  Correct Answer: %s\n\n", q.Answer)
		}
		for i, q := range r.Questions.FillInBlanks {
			ans := r.ObjectiveResponse.FillIn[i]
			fmt.Fprintf(&sb, "Question %d (Fill-in-Blank): %s\n", i+1, q.Question)
			fmt.Fprintf(&sb, "  Student Answer: %s\n", orNA(ans))
			fmt.Fprintf(&sb, "  Correctness: %s\n", correctness(e.ev.CheckFillIn(ans, q.Answer)))
			fmt.Fprintf(&sb, "  Correct Answer: %s\n\n", q.Answer)
		}
		fmt.Fprintf(&sb, "Checkpoint 1 Score: %s\n%s\n\n", r.ObjectiveScore, sectionRule)
	}

	if r.Statements != nil && r.StatementScore != nil {
		sb.WriteString("=== Checkpoint 2: Identify the Error ===\n")
		for i, s := range r.Statements.Statements {
			v := r.StatementResponse[i]
			fmt.Fprintf(&sb, "Statement %d: %s\n", i+1, s.Statement)
			fmt.Fprintf(&sb, "  Student Answer (T/F): %s\n", verdictText(v))
			fmt.Fprintf(&sb, "  Correctness: %s\n", correctness(e.ev.CheckTrueFalse(v, s.IsTrue)))
			fmt.Fprintf(&sb, "  Correct Answer: %s\n\n", statementAnswer(s))
		}
		fmt.Fprintf(&sb, "Checkpoint 2 Score: %s\n%s\n\n", r.StatementScore, sectionRule)
	}

	if r.EssayQuestion != nil && r.EssayFeedback != nil {
		sb.WriteString("=== Checkpoint 3: Analytical Essay ===\n")
		fmt.Fprintf(&sb, "Question: %s\n", r.EssayQuestion.Text())
		fmt.Fprintf(&sb, "Student's Answer:\n%s\n\n", r.EssayAnswer)
		fmt.Fprintf(&sb, "Feedback: %s out of 4 thumb-up marks.\n", r.EssayFeedback.Score)
		fmt.Fprintf(&sb, "Comment: %s\n\n", r.EssayFeedback.Comment)
		fmt.Fprintf(&sb, "Correct Answer:\n%s\n%s\n\n", r.EssayFeedback.CorrectAnswer, sectionRule)
	}

	if r.OverallFeedback != nil {
		sb.WriteString("=== Overall Feedback ===\n")
		fmt.Fprintf(&sb, "Comment: %s\n", r.OverallFeedback.Comment)
		fmt.Fprintf(&sb, "Emojis: %s\n%s\n\n", r.OverallFeedback.Emojis, sectionRule)
	}

	return sb.String()
}

// Workbook sheet names.
const (
	SheetCheckpoint1 = "Checkpoint 1"
	SheetCheckpoint2 = "Checkpoint 2"
	SheetCheckpoint3 = "Checkpoint 3"
	SheetOverall     = "Overall"
)

// Workbook lays the same rows out with one sheet per checkpoint. The
// caller closes the returned file.
func (e *SummaryExporter) Workbook(r domain.SessionResults) (_ *excelize.File, err error) {
	f := excelize.NewFile()
	defer func() {
		if err != nil {
			_ = f.Close()
		}
	}()
	var sheets []string

	writeSheet := func(name string, rows [][]interface{}) error {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return err
			}
		}
		sheets = append(sheets, name)
		return nil
	}

	if r.Questions != nil && r.ObjectiveScore != nil {
		rows := [][]interface{}{{"No.", "Type", "Question", "Options", "Student Answer", "Correctness", "Correct Answer"}}
		for i, q := range r.Questions.MCQuestions {
			ans := r.ObjectiveResponse.MC[i]
			opts := fmt.Sprintf("A) %s B) %s C) %s D) %s", q.Options.A, q.Options.B, q.Options.C, q.Options.D)
			rows = append(rows, []interface{}{i + 1, "MC", q.Question, opts, orNA(ans), correctness(e.ev.CheckMultipleChoice(ans, q.Answer)), q.Answer})
		}
		for i, q := range r.Questions.FillInBlanks {
			ans := r.ObjectiveResponse.FillIn[i]
			rows = append(rows, []interface{}{i + 1, "Fill-in-Blank", q.Question, "", orNA(ans), correctness(e.ev.CheckFillIn(ans, q.Answer)), q.Answer})
		}
		rows = append(rows, []interface{}{"Score", r.ObjectiveScore.String()})
		if err := writeSheet(SheetCheckpoint1, rows); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", SheetCheckpoint1, err)
		}
	}

	if r.Statements != nil && r.StatementScore != nil {
		rows := [][]interface{}{{"No.", "Statement", "Student Answer (T/F)", "Correctness", "Correct Answer"}}
		for i, s := range r.Statements.Statements {
			v := r.StatementResponse[i]
			rows = append(rows, []interface{}{i + 1, s.Statement, verdictText(v), correctness(e.ev.CheckTrueFalse(v, s.IsTrue)), statementAnswer(s)})
		}
		rows = append(rows, []interface{}{"Score", r.StatementScore.String()})
		if err := writeSheet(SheetCheckpoint2, rows); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", SheetCheckpoint2, err)
		}
	}

	if r.EssayQuestion != nil && r.EssayFeedback != nil {
		rows := [][]interface{}{
			{"Question", r.EssayQuestion.Text()},
			{"Student's Answer", r.EssayAnswer},
			{"Feedback", r.EssayFeedback.Score + " out of 4 thumb-up marks."},
			{"Comment", r.EssayFeedback.Comment},
			{"Correct Answer", r.EssayFeedback.CorrectAnswer},
		}
		if err := writeSheet(SheetCheckpoint3, rows); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", SheetCheckpoint3, err)
		}
	}

	if r.OverallFeedback != nil {
		rows := [][]interface{}{
			{"Comment", r.OverallFeedback.Comment},
			{"Emojis", r.OverallFeedback.Emojis},
		}
		if err := writeSheet(SheetOverall, rows); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", SheetOverall, err)
		}
	}

	// Keep the default sheet only when nothing else was written.
	if len(sheets) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("failed to drop default sheet: %w", err)
		}
		if idx, err := f.GetSheetIndex(sheets[0]); err == nil {
			f.SetActiveSheet(idx)
		}
	} else {
		if err := f.SetCellValue("Sheet1", "A1", fmt.Sprintf("No results yet for %s", r.Topic)); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// WriteWorkbook streams the xlsx export to w.
func (e *SummaryExporter) WriteWorkbook(r domain.SessionResults, w io.Writer) error {
	f, err := e.Workbook(r)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
