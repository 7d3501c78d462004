package handlers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

type AnalyzeHandler struct {
	storageService services.StorageService
	pipeline       services.AnalysisPipeline
	maxFileSize    int64
}

func NewAnalyzeHandler(
	storageService services.StorageService,
	pipeline services.AnalysisPipeline,
	maxFileSize int64,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		storageService: storageService,
		pipeline:       pipeline,
		maxFileSize:    maxFileSize,
	}
}

// HandleAnalyze handles POST /analyze
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader == nil {
		return badRequest(c, services.KindInvalidInput, "No file uploaded.")
	}

	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		return badRequest(c, services.KindFileTooLarge,
			fmt.Sprintf("File too large: %d bytes. Max size: %d bytes", fileHeader.Size, h.maxFileSize))
	}

	doc, err := h.storageService.SaveUpload(fileHeader)
	if err != nil {
		log.Printf("❌ Failed to store upload %s: %v", fileHeader.Filename, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to process the file. Try again.",
		})
	}
	// The pipeline removes the file too; this covers a panic before it runs.
	defer services.RemoveTempFile(doc.FilePath)

	result, err := h.pipeline.Analyze(c.UserContext(), doc)
	if err != nil {
		return respondError(c, err, "Failed to analyze the résumé. Try again later.")
	}

	return c.JSON(models.AnalyzeResponse{
		Text:     result.ExtractedText,
		Analysis: result.Analysis,
	})
}
