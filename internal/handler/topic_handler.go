package handler

import (
	"net/url"

	"history-quiz/internal/content"
	"history-quiz/internal/domain"
	"history-quiz/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// TopicHandler serves the read-only study catalog.
type TopicHandler struct {
	catalog *content.Catalog
}

func NewTopicHandler(catalog *content.Catalog) *TopicHandler {
	return &TopicHandler{catalog: catalog}
}

// ListTopics godoc
// @Summary List historical periods
// @Description Returns the selectable periods in syllabus order
// @Tags topics
// @Produce json
// @Success 200 {object} dto.TopicListResponse
// @Router /topics [get]
func (h *TopicHandler) ListTopics(c *fiber.Ctx) error {
	return c.JSON(dto.TopicListResponse{Topics: h.catalog.Names()})
}

// GetTopic godoc
// @Summary Get a historical period
// @Description Returns the summary, per-aspect study text and modernization criteria of a period
// @Tags topics
// @Produce json
// @Param name path string true "Period name (URL encoded)"
// @Success 200 {object} dto.TopicDetailResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /topics/{name} [get]
func (h *TopicHandler) GetTopic(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return domain.ValidationErrors{domain.NewInvalidFormatError("name", c.Params("name"))}
	}

	period, err := h.catalog.Period(name)
	if err != nil {
		return err
	}

	resp := dto.TopicDetailResponse{Name: period.Name, Summary: period.Summary}
	for _, a := range domain.Aspects() {
		resp.Aspects = append(resp.Aspects, dto.AspectDetail{
			Aspect:   string(a),
			Text:     period.AspectText(a),
			Criteria: h.catalog.Criteria(a),
		})
	}
	return c.JSON(resp)
}
