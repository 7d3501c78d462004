package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

type AuditHandler struct {
	auditRepo repositories.AuditRepository
}

func NewAuditHandler(auditRepo repositories.AuditRepository) *AuditHandler {
	return &AuditHandler{
		auditRepo: auditRepo,
	}
}

// HandleListAudits handles GET /audits
func (h *AuditHandler) HandleListAudits(c *fiber.Ctx) error {
	if h.auditRepo == nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: "Request auditing is disabled",
		})
	}

	audits, err := h.auditRepo.FindRecent(c.QueryInt("limit", 20))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to load request audits",
		})
	}

	return c.JSON(fiber.Map{
		"audits": audits,
	})
}
