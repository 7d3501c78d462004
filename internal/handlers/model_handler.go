package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

type ModelHandler struct {
	resolver services.ModelResolver
	provider string
}

func NewModelHandler(resolver services.ModelResolver, provider string) *ModelHandler {
	return &ModelHandler{
		resolver: resolver,
		provider: provider,
	}
}

// HandleGetModel handles GET /model
func (h *ModelHandler) HandleGetModel(c *fiber.Ctx) error {
	return c.JSON(h.describe(h.resolver.Current()))
}

// HandleInvalidate handles POST /model/invalidate
func (h *ModelHandler) HandleInvalidate(c *fiber.Ctx) error {
	h.resolver.Invalidate()
	return c.JSON(h.describe(h.resolver.Current()))
}

func (h *ModelHandler) describe(m services.ResolvedModel) models.ModelResponse {
	resp := models.ModelResponse{
		Model:    m.Identifier,
		Source:   string(m.Source),
		Provider: h.provider,
	}
	if !m.ResolvedAt.IsZero() {
		resolvedAt := m.ResolvedAt
		resp.ResolvedAt = &resolvedAt
	}
	return resp
}
