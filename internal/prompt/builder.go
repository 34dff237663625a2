package prompt

import (
	"fmt"
	"strings"

	"history-quiz/internal/content"
	"history-quiz/internal/domain"
)

// Params carries the per-kind inputs. Only the fields a kind needs are read.
type Params struct {
	Topic string

	// Essay kinds.
	Aspect domain.Aspect
	Essay  string

	// Hint.
	Question string
	Options  *domain.MCOptions

	// Overall feedback.
	Results *domain.SessionResults
}

type buildFunc func(b *Builder, p Params, period domain.Period) (domain.CompletionRequest, error)

// Builder turns a topic and kind-specific parameters into a completion
// request, pulling study text from the catalog.
type Builder struct {
	catalog  *content.Catalog
	builders map[domain.RequestKind]buildFunc
}

func NewBuilder(catalog *content.Catalog) *Builder {
	return &Builder{
		catalog: catalog,
		builders: map[domain.RequestKind]buildFunc{
			domain.KindObjectiveQuiz:   (*Builder).objectiveQuiz,
			domain.KindStatements:      (*Builder).statements,
			domain.KindEssayOutline:    (*Builder).essayOutline,
			domain.KindEssayFeedback:   (*Builder).essayFeedback,
			domain.KindOverallFeedback: (*Builder).overallFeedback,
			domain.KindHint:            (*Builder).hint,
		},
	}
}

// Build returns the request for kind. Unknown topics yield NotFound.
func (b *Builder) Build(kind domain.RequestKind, p Params) (domain.CompletionRequest, error) {
	fn, ok := b.builders[kind]
	if !ok {
		return domain.CompletionRequest{}, domain.NewInvalidInputError(fmt.Sprintf("unknown request kind %q", kind))
	}
	period, err := b.catalog.Period(p.Topic)
	if err != nil {
		return domain.CompletionRequest{}, err
	}
	return fn(b, p, period)
}

// quizContent is the study text used for the objective and statement stages.
func quizContent(p domain.Period) string {
	return strings.Join([]string{
		p.Summary,
		p.AspectText(domain.AspectPolitical),
		p.AspectText(domain.AspectEconomic),
		p.AspectText(domain.AspectSocialCulturalEducational),
	}, " ")
}

func (b *Builder) objectiveQuiz(p Params, period domain.Period) (domain.CompletionRequest, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate 3 multiple-choice questions (with 4 options each, clearly labeled A, B, C, D) and 2 fill-in-the-blank questions about the %q in Chinese history, focusing on its modernization and transformation. ", period.Name)
	sb.WriteString("The content should be based on the following historical information:\n")
	sb.WriteString(quizContent(period))
	sb.WriteString("\n\nProvide the questions and their correct answers as a single JSON object of this shape:\n")
	sb.WriteString(`{"mc_questions": [{"question": "string", "options": {"A": "string", "B": "string", "C": "string", "D": "string"}, "answer": "A|B|C|D"}], "fill_in_blanks": [{"question": "string", "answer": "string"}]}`)
	sb.WriteString("\nKeep fill-in-the-blank answers short: a name, year, or term.")

	return domain.CompletionRequest{Kind: domain.KindObjectiveQuiz, Prompt: sb.String(), Schema: objectiveQuizSchema}, nil
}

func (b *Builder) statements(p Params, period domain.Period) (domain.CompletionRequest, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate 3 historical statements about the %q in Chinese history. ", period.Name)
	sb.WriteString("Each statement MUST contain an intentional factual error (e.g., wrong year, historical person, organization name, policy name, or a false assertion). ")
	sb.WriteString("For each statement, set is_true to false and give the correct value in correct_value_if_false. ")
	sb.WriteString("The content should be based on the following historical information:\n")
	sb.WriteString(quizContent(period))
	sb.WriteString("\n\nProvide the statements as a single JSON object of this shape:\n")
	sb.WriteString(`{"statements": [{"statement": "string", "is_true": false, "correct_value_if_false": "string"}]}`)

	return domain.CompletionRequest{Kind: domain.KindStatements, Prompt: sb.String(), Schema: statementsSchema}, nil
}

func (b *Builder) essayMaterial(sb *strings.Builder, period domain.Period, aspect domain.Aspect) {
	sb.WriteString("Historical Period Content:\n")
	sb.WriteString(period.Summary)
	sb.WriteString("\n")
	sb.WriteString(period.AspectText(aspect))
	fmt.Fprintf(sb, "\n\nModernization Criteria for %s:\n", aspect)
	sb.WriteString(b.catalog.Criteria(aspect))
	sb.WriteString("\n")
}

func requireAspect(p Params) error {
	if p.Aspect == "" {
		return domain.NewInvalidInputError("aspect is required")
	}
	return nil
}

func (b *Builder) essayOutline(p Params, period domain.Period) (domain.CompletionRequest, error) {
	if err := requireAspect(p); err != nil {
		return domain.CompletionRequest{}, err
	}
	q := domain.EssayQuestion{Topic: period.Name, Aspect: p.Aspect}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate a concise outline or key points for an essay answering the question:\n%q\n", q.Text())
	sb.WriteString("Focus on providing a structure with main arguments and relevant examples based on the following information:\n")
	b.essayMaterial(&sb, period, p.Aspect)
	sb.WriteString("Format the outline clearly with bullet points or numbered lists.")

	return domain.CompletionRequest{Kind: domain.KindEssayOutline, Prompt: sb.String()}, nil
}

func (b *Builder) essayFeedback(p Params, period domain.Period) (domain.CompletionRequest, error) {
	if err := requireAspect(p); err != nil {
		return domain.CompletionRequest{}, err
	}
	if strings.TrimSpace(p.Essay) == "" {
		return domain.CompletionRequest{}, domain.NewInvalidInputError("essay must not be empty")
	}
	q := domain.EssayQuestion{Topic: period.Name, Aspect: p.Aspect}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a DSE History teacher. Assess the following student answer for the question:\n%q\n", q.Text())
	fmt.Fprintf(&sb, "Student's Answer: %q\n", p.Essay)
	sb.WriteString("Evaluate it based on these criteria:\n")
	sb.WriteString("1. Clear topic sentence (effective or not, and to what extent).\n")
	sb.WriteString("2. Clear illustration of relevant and correct examples in details (two examples are good, one is less good).\n")
	sb.WriteString("3. Good explanation of how the examples show the effectiveness of the period in modernizing China.\n")
	sb.WriteString("4. Good language and structured presentation.\n")
	sb.WriteString(`Provide a score using thumb-up emojis (4 is good, 1 is not good, e.g. "👍👍👍👍") and a detailed comment for each criterion. `)
	sb.WriteString("Also provide a comprehensive 'correct answer' in paragraph format, drawing from the following:\n")
	b.essayMaterial(&sb, period, p.Aspect)
	sb.WriteString("Structure your response as a single JSON object of this shape:\n")
	sb.WriteString(`{"score": "string", "comment": "string", "correct_answer": "string"}`)

	return domain.CompletionRequest{Kind: domain.KindEssayFeedback, Prompt: sb.String(), Schema: essayFeedbackSchema}, nil
}

func (b *Builder) overallFeedback(p Params, period domain.Period) (domain.CompletionRequest, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on the student's performance across Checkpoints 1, 2, and 3 for the historical period %q, provide an overall comment. ", period.Name)
	sb.WriteString("Highlight their strengths (e.g., good factual recall, strong analytical skills) and areas for improvement (e.g., need more detailed examples, clearer topic sentences). Include some encouraging emojis.\n")
	if r := p.Results; r != nil {
		if r.ObjectiveScore != nil {
			fmt.Fprintf(&sb, "Checkpoint 1 (knowledge check) score: %s\n", r.ObjectiveScore)
		}
		if r.StatementScore != nil {
			fmt.Fprintf(&sb, "Checkpoint 2 (identify the error) score: %s\n", r.StatementScore)
		}
		if r.EssayFeedback != nil {
			fmt.Fprintf(&sb, "Checkpoint 3 (essay) score: %s\n", r.EssayFeedback.Score)
		}
	}
	sb.WriteString("Respond with a single JSON object of this shape:\n")
	sb.WriteString(`{"comment": "string", "emojis": "string"}`)

	return domain.CompletionRequest{Kind: domain.KindOverallFeedback, Prompt: sb.String(), Schema: overallFeedbackSchema}, nil
}

func (b *Builder) hint(p Params, period domain.Period) (domain.CompletionRequest, error) {
	if strings.TrimSpace(p.Question) == "" {
		return domain.CompletionRequest{}, domain.NewInvalidInputError("question is required")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Provide a subtle hint for the following DSE History question about %q:\n\n", period.Name)
	fmt.Fprintf(&sb, "Question: %s\n", p.Question)
	if o := p.Options; o != nil {
		fmt.Fprintf(&sb, "Options: A) %s B) %s C) %s D) %s\n", o.A, o.B, o.C, o.D)
	}
	sb.WriteString("The hint should guide the student without revealing the direct answer. Focus on a related concept or a key event from the period.")

	return domain.CompletionRequest{Kind: domain.KindHint, Prompt: sb.String()}, nil
}
