package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

var statusByKind = map[services.ErrorKind]int{
	services.KindConfiguration:     fiber.StatusInternalServerError,
	services.KindInvalidInput:      fiber.StatusBadRequest,
	services.KindFileTooLarge:      fiber.StatusBadRequest,
	services.KindUnsupportedFormat: fiber.StatusBadRequest,
	services.KindCorruptFile:       fiber.StatusBadRequest,
	services.KindEmptyExtraction:   fiber.StatusBadRequest,
	services.KindProvider:          fiber.StatusInternalServerError,
	services.KindAuth:              fiber.StatusInternalServerError,
}

// respondError renders a pipeline error. Anything outside the taxonomy gets a
// generic 500 so internal details stay in the log.
func respondError(c *fiber.Ctx, err error, fallbackMessage string) error {
	var pe *services.PipelineError
	if errors.As(err, &pe) {
		status, ok := statusByKind[pe.Kind]
		if !ok {
			status = fiber.StatusInternalServerError
		}
		return c.Status(status).JSON(models.ErrorResponse{
			Error: pe.Message,
			Kind:  string(pe.Kind),
		})
	}

	log.Printf("❌ Unexpected error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: fallbackMessage,
	})
}

func badRequest(c *fiber.Ctx, kind services.ErrorKind, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: message,
		Kind:  string(kind),
	})
}
