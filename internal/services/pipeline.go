package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

// AnalysisPipeline runs the analyze and improve flows. Each call is
// independent; the only state shared between calls is the model cache.
type AnalysisPipeline interface {
	Analyze(ctx context.Context, doc *models.UploadedDocument) (*models.AnalysisResult, error)
	Improve(ctx context.Context, originalResume, suggestions string) (*models.ImprovedResumeResult, error)
}

type PipelineConfig struct {
	APIKey      string
	Provider    string
	MaxFileSize int64
}

type analysisPipeline struct {
	cfg           PipelineConfig
	extractor     DocumentExtractor
	resolver      ModelResolver
	gateway       LLMGateway
	promptBuilder *PromptBuilder
	auditRepo     repositories.AuditRepository
}

// NewAnalysisPipeline wires the flows. auditRepo may be nil.
func NewAnalysisPipeline(
	cfg PipelineConfig,
	extractor DocumentExtractor,
	resolver ModelResolver,
	gateway LLMGateway,
	auditRepo repositories.AuditRepository,
) AnalysisPipeline {
	return &analysisPipeline{
		cfg:           cfg,
		extractor:     extractor,
		resolver:      resolver,
		gateway:       gateway,
		promptBuilder: NewPromptBuilder(),
		auditRepo:     auditRepo,
	}
}

func (p *analysisPipeline) Analyze(ctx context.Context, doc *models.UploadedDocument) (result *models.AnalysisResult, err error) {
	start := time.Now()
	audit := &models.RequestAudit{Flow: models.FlowAnalyze, Provider: p.cfg.Provider}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Analysis panicked: %v", r)
			result, err = nil, fmt.Errorf("analysis panicked: %v", r)
		}
		p.record(audit, start, err)
	}()

	if doc == nil || doc.FilePath == "" {
		return nil, ErrInvalidInput("No file uploaded.")
	}
	defer RemoveTempFile(doc.FilePath)

	audit.FileExtension = doc.Extension
	audit.SizeBytes = doc.SizeBytes

	if err := p.checkAPIKey(); err != nil {
		return nil, err
	}

	if p.cfg.MaxFileSize > 0 && doc.SizeBytes > p.cfg.MaxFileSize {
		return nil, ErrFileTooLarge(doc.SizeBytes, p.cfg.MaxFileSize)
	}

	log.Printf("📄 Extracting text from %s (%d bytes)", doc.OriginalFileName, doc.SizeBytes)
	extracted, err := p.extractor.ExtractFile(doc)
	if err != nil {
		return nil, err
	}
	audit.PageCount = extracted.PageCount
	log.Printf("✅ Extracted %d characters", len(extracted.Content))

	model := p.resolver.Resolve(ctx, p.cfg.APIKey)
	audit.Model = model.Identifier
	log.Printf("🔁 Using model %s (%s)", model.Identifier, model.Source)

	prompt := p.promptBuilder.BuildAnalysisPrompt(extracted.Content)
	analysis, err := p.gateway.Generate(ctx, prompt, model.Identifier, p.cfg.APIKey)
	if err != nil {
		log.Printf("❌ Analysis failed: %v", err)
		return nil, ClassifyProviderError(err)
	}

	return &models.AnalysisResult{
		ExtractedText: extracted.Content,
		Analysis:      analysis,
		Model:         model.Identifier,
	}, nil
}

func (p *analysisPipeline) Improve(ctx context.Context, originalResume, suggestions string) (result *models.ImprovedResumeResult, err error) {
	start := time.Now()
	audit := &models.RequestAudit{Flow: models.FlowImprove, Provider: p.cfg.Provider}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Improved résumé generation panicked: %v", r)
			result, err = nil, fmt.Errorf("improve panicked: %v", r)
		}
		p.record(audit, start, err)
	}()

	if strings.TrimSpace(originalResume) == "" || strings.TrimSpace(suggestions) == "" {
		return nil, ErrInvalidInput("Insufficient data. Send the original résumé and the suggestions.")
	}

	if err := p.checkAPIKey(); err != nil {
		return nil, err
	}

	model := p.resolver.Resolve(ctx, p.cfg.APIKey)
	audit.Model = model.Identifier
	log.Printf("🔁 Using model %s (%s)", model.Identifier, model.Source)

	prompt := p.promptBuilder.BuildRewritePrompt(originalResume, suggestions)
	improved, err := p.gateway.Generate(ctx, prompt, model.Identifier, p.cfg.APIKey)
	if err != nil {
		log.Printf("❌ Improved résumé generation failed: %v", err)
		return nil, ClassifyProviderError(err)
	}

	return &models.ImprovedResumeResult{
		ImprovedResume: improved,
		Model:          model.Identifier,
	}, nil
}

func (p *analysisPipeline) checkAPIKey() error {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		log.Printf("❌ API key for provider %s is not configured", p.cfg.Provider)
		return ErrConfiguration(errors.New("api key is not configured"))
	}
	return nil
}

func (p *analysisPipeline) record(audit *models.RequestAudit, start time.Time, err error) {
	if p.auditRepo == nil {
		return
	}

	audit.DurationMs = time.Since(start).Milliseconds()
	audit.Outcome = "success"
	if err != nil {
		audit.Outcome = "internal_error"
		if kind := KindOf(err); kind != "" {
			audit.Outcome = string(kind)
		}
	}

	if recordErr := p.auditRepo.Create(audit); recordErr != nil {
		log.Printf("⚠️ Failed to record request audit: %v", recordErr)
	}
}
