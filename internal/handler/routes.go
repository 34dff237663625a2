package handler

import (
	"history-quiz/internal/middleware"
	"history-quiz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Routes groups the API handlers with the middleware they share.
type Routes struct {
	Auth        *AuthHandler
	Topics      *TopicHandler
	Sessions    *SessionHandler
	AuthService service.AuthService
	Validation  *middleware.ValidationMiddleware
}

// Register mounts the API on router, normally the /api group.
func (r Routes) Register(router fiber.Router) {
	router.Post("/auth/anonymous", r.Auth.IssueAnonymousToken)

	router.Get("/topics", r.Topics.ListTopics)
	router.Get("/topics/:name", r.Topics.GetTopic)

	protected := middleware.Protected(r.AuthService)

	router.Get("/progress/:topic", protected, r.Validation.ValidateTopicParam(), r.Sessions.GetProgress)

	router.Post("/sessions", protected, r.Sessions.CreateSession)

	sessions := router.Group("/sessions/:id", protected, r.Validation.ValidateSessionID())
	sessions.Get("", r.Sessions.GetSession)
	sessions.Delete("", r.Sessions.DeleteSession)
	sessions.Put("/topic", r.Sessions.SelectTopic)
	sessions.Post("/advance", r.Sessions.Advance)
	sessions.Post("/back", r.Sessions.Back)
	sessions.Post("/jump", r.Sessions.JumpTo)

	sessions.Post("/quiz", r.Sessions.GenerateObjectiveQuiz)
	sessions.Post("/quiz/answers", r.Sessions.SubmitObjectiveAnswers)
	sessions.Post("/statements", r.Sessions.GenerateStatements)
	sessions.Post("/statements/answers", r.Sessions.SubmitStatementAnswers)
	sessions.Post("/essay", r.Sessions.GenerateEssay)
	sessions.Post("/essay/outline", r.Sessions.RegenerateOutline)
	sessions.Post("/essay/answer", r.Sessions.SubmitEssay)
	sessions.Post("/hints", r.Sessions.RequestHint)

	sessions.Get("/export", r.Sessions.ExportText)
	sessions.Get("/export.xlsx", r.Sessions.ExportWorkbook)
}
