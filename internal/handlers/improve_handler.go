package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

type ImproveHandler struct {
	pipeline services.AnalysisPipeline
}

func NewImproveHandler(pipeline services.AnalysisPipeline) *ImproveHandler {
	return &ImproveHandler{
		pipeline: pipeline,
	}
}

// HandleImprove handles POST /generate-improved
func (h *ImproveHandler) HandleImprove(c *fiber.Ctx) error {
	var req models.ImproveRequest

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, services.KindInvalidInput, "Invalid request payload")
	}

	result, err := h.pipeline.Improve(c.UserContext(), req.OriginalResume, req.Suggestions)
	if err != nil {
		return respondError(c, err, "Failed to generate the improved résumé. Try again later.")
	}

	return c.JSON(models.ImproveResponse{
		ImprovedResume: result.ImprovedResume,
	})
}
