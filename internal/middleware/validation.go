package middleware

import (
	"net/url"

	"history-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware(v *validation.Validator) *ValidationMiddleware {
	return &ValidationMiddleware{validator: v}
}

// ValidateSessionID rejects requests whose :id parameter is not a ULID.
func (vm *ValidationMiddleware) ValidateSessionID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if errors := vm.validator.ValidateSessionID(c.Params("id")); len(errors) > 0 {
			return errors
		}
		return c.Next()
	}
}

// ValidateTopicParam checks the :topic parameter names a known period and
// stores the unescaped value in locals.
func (vm *ValidationMiddleware) ValidateTopicParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		topic := decodeParam(c, "topic")
		if errors := vm.validator.ValidateTopic(topic); len(errors) > 0 {
			return errors
		}
		c.Locals("validated_topic", topic)
		return c.Next()
	}
}

// ValidatedTopic returns the topic stored by ValidateTopicParam.
func ValidatedTopic(c *fiber.Ctx) string {
	topic, _ := c.Locals("validated_topic").(string)
	return topic
}

func decodeParam(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}
