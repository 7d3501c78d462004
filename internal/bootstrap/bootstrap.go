package bootstrap

import (
	"fmt"
	"log"
	"net/http"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

// Components are the long-lived objects shared by every entrypoint.
type Components struct {
	Config    *config.Config
	Storage   services.StorageService
	Extractor services.DocumentExtractor
	Resolver  services.ModelResolver
	Gateway   services.LLMGateway
	Pipeline  services.AnalysisPipeline
	AuditRepo repositories.AuditRepository
}

// Build wires the pipeline for the configured provider. It does not fail on a
// missing API key; requests report that as a configuration error instead.
func Build(cfg *config.Config) (*Components, error) {
	storage := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storage.EnsureUploadDir(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.LLM.Timeout}

	var (
		resolver services.ModelResolver
		gateway  services.LLMGateway
	)
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		resolver = services.NewGeminiModelResolver(services.ResolverConfig{
			Override:      cfg.Gemini.ModelOverride,
			BaseURL:       cfg.Gemini.BaseURL,
			StableVersion: cfg.Gemini.StableVersion,
			FallbackModel: cfg.Gemini.FallbackModel,
			Timeout:       cfg.LLM.Timeout,
		}, httpClient, nil)
		gateway = services.NewLLMGateway(
			services.NewGenAIGenerator(httpClient, ""),
			services.NewStableGenerator(httpClient, cfg.Gemini.BaseURL, cfg.Gemini.StableVersion),
			cfg.LLM.Timeout,
		)
	case config.ProviderOpenAI:
		resolver = services.NewStaticModelResolver(cfg.OpenAI.Model)
		gateway = services.NewLLMGateway(
			services.NewOpenAIGenerator(httpClient, cfg.OpenAI.BaseURL),
			nil,
			cfg.LLM.Timeout,
		)
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLM.Provider)
	}

	if cfg.APIKey() == "" {
		log.Printf("⚠️ No API key configured for provider %s; requests will fail until one is set", cfg.LLM.Provider)
	} else {
		log.Printf("✅ API key loaded for provider %s (length %d)", cfg.LLM.Provider, len(cfg.APIKey()))
	}

	var auditRepo repositories.AuditRepository
	if cfg.Audit.Enabled {
		db, err := config.InitDatabase(cfg)
		if err != nil {
			return nil, err
		}
		auditRepo = repositories.NewAuditRepository(db)
		log.Println("✅ Request audit log enabled")
	}

	extractor := services.NewDocumentExtractor()
	pipeline := services.NewAnalysisPipeline(
		services.PipelineConfig{
			APIKey:      cfg.APIKey(),
			Provider:    cfg.LLM.Provider,
			MaxFileSize: cfg.Storage.MaxFileSize,
		},
		extractor,
		resolver,
		gateway,
		auditRepo,
	)

	return &Components{
		Config:    cfg,
		Storage:   storage,
		Extractor: extractor,
		Resolver:  resolver,
		Gateway:   gateway,
		Pipeline:  pipeline,
		AuditRepo: auditRepo,
	}, nil
}
