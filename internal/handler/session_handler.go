package handler

import (
	"bytes"
	"fmt"

	"history-quiz/internal/domain"
	"history-quiz/internal/dto"
	"history-quiz/internal/logger"
	"history-quiz/internal/middleware"
	"history-quiz/internal/service"
	"history-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SessionHandler exposes the revision wizard. Every route runs behind
// middleware.Protected, so the caller's user id is always present.
type SessionHandler struct {
	service   service.SessionService
	validator *validation.Validator
}

func NewSessionHandler(service service.SessionService, validator *validation.Validator) *SessionHandler {
	return &SessionHandler{service: service, validator: validator}
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		logger.Get().Debug("Failed to parse request body", zap.String("path", c.Path()), zap.Error(err))
		return domain.ValidationErrors{domain.NewInvalidFormatError("body", nil)}
	}
	return nil
}

// CreateSession godoc
// @Summary Start a revision session
// @Description Creates a session in the Selection stage
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Success 201 {object} dto.SessionResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	resp, err := h.service.CreateSession(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetSession godoc
// @Summary Get a session
// @Description Returns the current stage, topic and results of a session
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	resp, err := h.service.GetSession(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// DeleteSession godoc
// @Summary End a session
// @Description Discards the session and cancels any outstanding requests
// @Tags sessions
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id} [delete]
func (h *SessionHandler) DeleteSession(c *fiber.Ctx) error {
	if err := h.service.DeleteSession(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SelectTopic godoc
// @Summary Select a topic
// @Description Chooses the historical period for the session. Only allowed in the Selection stage.
// @Tags sessions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Param request body dto.SelectTopicRequest true "Topic"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /sessions/{id}/topic [put]
func (h *SessionHandler) SelectTopic(c *fiber.Ctx) error {
	var req dto.SelectTopicRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if errs := h.validator.ValidateTopic(req.Topic); len(errs) > 0 {
		return errs
	}
	resp, err := h.service.SelectTopic(c.UserContext(), middleware.UserID(c), c.Params("id"), req.Topic)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Advance godoc
// @Summary Advance to the next stage
// @Description Moves forward one stage. Leaving the Essay stage first requests overall feedback.
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /sessions/{id}/advance [post]
func (h *SessionHandler) Advance(c *fiber.Ctx) error {
	resp, err := h.service.Advance(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Back godoc
// @Summary Go back one stage
// @Description Moves back one stage. From Summary this returns to Selection and clears the topic.
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /sessions/{id}/back [post]
func (h *SessionHandler) Back(c *fiber.Ctx) error {
	resp, err := h.service.Back(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// JumpTo godoc
// @Summary Jump to a checkpoint
// @Description Returns to a checkpoint stage, keeping earlier results
// @Tags sessions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Param request body dto.JumpRequest true "Target stage"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /sessions/{id}/jump [post]
func (h *SessionHandler) JumpTo(c *fiber.Ctx) error {
	var req dto.JumpRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	stage, errs := h.validator.ValidateJumpStage(req.Stage)
	if len(errs) > 0 {
		return errs
	}
	resp, err := h.service.JumpTo(c.UserContext(), middleware.UserID(c), c.Params("id"), stage)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GenerateObjectiveQuiz godoc
// @Summary Generate checkpoint 1
// @Description Requests multiple-choice and fill-in questions for the selected topic
// @Tags checkpoints
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Failure 412 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /sessions/{id}/quiz [post]
func (h *SessionHandler) GenerateObjectiveQuiz(c *fiber.Ctx) error {
	resp, err := h.service.GenerateObjectiveQuiz(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SubmitObjectiveAnswers godoc
// @Summary Submit checkpoint 1 answers
// @Description Scores multiple-choice and fill-in answers
// @Tags checkpoints
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Param request body dto.ObjectiveAnswersRequest true "Answers"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /sessions/{id}/quiz/answers [post]
func (h *SessionHandler) SubmitObjectiveAnswers(c *fiber.Ctx) error {
	var req dto.ObjectiveAnswersRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if errs := h.validator.ValidateObjectiveAnswers(req); len(errs) > 0 {
		return errs
	}
	resp, err := h.service.SubmitObjectiveAnswers(c.UserContext(), middleware.UserID(c), c.Params("id"),
		domain.ObjectiveResponse{MC: req.MC, FillIn: req.FillIn})
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GenerateStatements godoc
// @Summary Generate checkpoint 2
// @Description Requests true/false statements for the selected topic
// @Tags checkpoints
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /sessions/{id}/statements [post]
func (h *SessionHandler) GenerateStatements(c *fiber.Ctx) error {
	resp, err := h.service.GenerateStatements(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SubmitStatementAnswers godoc
// @Summary Submit checkpoint 2 verdicts
// @Description Scores true/false verdicts; omitted or null verdicts count as unanswered
// @Tags checkpoints
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Param request body dto.StatementAnswersRequest true "Verdicts"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /sessions/{id}/statements/answers [post]
func (h *SessionHandler) SubmitStatementAnswers(c *fiber.Ctx) error {
	var req dto.StatementAnswersRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if errs := h.validator.ValidateStatementAnswers(req); len(errs) > 0 {
		return errs
	}
	resp, err := h.service.SubmitStatementAnswers(c.UserContext(), middleware.UserID(c), c.Params("id"),
		domain.StatementResponse(req.Verdicts))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GenerateEssay godoc
// @Summary Generate checkpoint 3
// @Description Requests an essay question on a random aspect and its outline
// @Tags checkpoints
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /sessions/{id}/essay [post]
func (h *SessionHandler) GenerateEssay(c *fiber.Ctx) error {
	resp, err := h.service.GenerateEssay(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// RegenerateOutline godoc
// @Summary Regenerate the essay outline
// @Description Replaces the outline for the current essay question, bypassing the cache
// @Tags checkpoints
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /sessions/{id}/essay/outline [post]
func (h *SessionHandler) RegenerateOutline(c *fiber.Ctx) error {
	resp, err := h.service.RegenerateOutline(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SubmitEssay godoc
// @Summary Submit the essay
// @Description Requests feedback and a thumb-up score for the essay
// @Tags checkpoints
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Param request body dto.EssayRequest true "Essay"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /sessions/{id}/essay/answer [post]
func (h *SessionHandler) SubmitEssay(c *fiber.Ctx) error {
	var req dto.EssayRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if errs := h.validator.ValidateEssay(req.Essay); len(errs) > 0 {
		return errs
	}
	resp, err := h.service.SubmitEssay(c.UserContext(), middleware.UserID(c), c.Params("id"), req.Essay)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// RequestHint godoc
// @Summary Get a hint
// @Description Returns a hint for a checkpoint 1 question without revealing the answer
// @Tags checkpoints
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Param request body dto.HintRequest true "Question selector"
// @Success 200 {object} dto.HintResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /sessions/{id}/hints [post]
func (h *SessionHandler) RequestHint(c *fiber.Ctx) error {
	var req dto.HintRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if errs := h.validator.ValidateHintRequest(req); len(errs) > 0 {
		return errs
	}
	resp, err := h.service.RequestHint(c.UserContext(), middleware.UserID(c), c.Params("id"), req.Type, req.Index)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ExportText godoc
// @Summary Export the summary as text
// @Description Returns the plain-text transcript of the session's results
// @Tags export
// @Produce plain
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {string} string
// @Failure 409 {object} middleware.ErrorResponse
// @Router /sessions/{id}/export [get]
func (h *SessionHandler) ExportText(c *fiber.Ctx) error {
	text, err := h.service.ExportText(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="summary.txt"`)
	return c.SendString(text)
}

// ExportWorkbook godoc
// @Summary Export the summary as a spreadsheet
// @Description Returns one sheet per completed checkpoint plus an overall sheet
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {file} file
// @Failure 409 {object} middleware.ErrorResponse
// @Router /sessions/{id}/export.xlsx [get]
func (h *SessionHandler) ExportWorkbook(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.ExportWorkbook(c.UserContext(), middleware.UserID(c), c.Params("id"), &buf); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="summary-%s.xlsx"`, c.Params("id")))
	return c.Send(buf.Bytes())
}

// GetProgress godoc
// @Summary Get stored progress
// @Description Returns the checkpoints stored for the caller and topic
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Param topic path string true "Period name (URL encoded)"
// @Success 200 {object} dto.ProgressResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /progress/{topic} [get]
func (h *SessionHandler) GetProgress(c *fiber.Ctx) error {
	resp, err := h.service.LoadProgress(c.UserContext(), middleware.UserID(c), middleware.ValidatedTopic(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
