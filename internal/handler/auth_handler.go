package handler

import (
	"history-quiz/internal/logger"
	"history-quiz/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// IssueAnonymousToken godoc
// @Summary Issue an anonymous token
// @Description Creates a new anonymous user id and returns a bearer token for it. Progress is stored under this id.
// @Tags auth
// @Produce json
// @Success 201 {object} dto.TokenResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /auth/anonymous [post]
func (h *AuthHandler) IssueAnonymousToken(c *fiber.Ctx) error {
	token, err := h.authService.IssueAnonymousToken(c.UserContext())
	if err != nil {
		return err
	}
	logger.Get().Info("Anonymous token issued", zap.String("user_id", token.UserID))
	return c.Status(fiber.StatusCreated).JSON(token)
}
