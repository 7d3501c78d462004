package services

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"
)

type ModelSource string

const (
	SourceOverride   ModelSource = "override"
	SourceCache      ModelSource = "cache"
	SourceLive       ModelSource = "live"
	SourceFallback   ModelSource = "fallback"
	SourceStatic     ModelSource = "static"
	SourceUnresolved ModelSource = "unresolved"
)

// ResolvedModel is the identifier used for generation calls, without the
// "models/" namespace.
type ResolvedModel struct {
	Identifier string
	Source     ModelSource
	ResolvedAt time.Time
}

// ModelResolver picks the model identifier for generation calls.
type ModelResolver interface {
	Resolve(ctx context.Context, apiKey string) ResolvedModel
	Current() ResolvedModel
	Invalidate()
}

// ResolverConfig configures the Gemini model resolver.
type ResolverConfig struct {
	Override      string
	BaseURL       string
	StableVersion string
	FallbackModel string
	Timeout       time.Duration
}

// geminiModelResolver caches the first successful live resolution for the
// life of the process. The cached value can go stale if the provider retires
// the model; Invalidate drops it.
type geminiModelResolver struct {
	cfg     ResolverConfig
	clients *genaiClients
	now     func() time.Time

	mu     sync.RWMutex
	cached *ResolvedModel
}

func NewGeminiModelResolver(cfg ResolverConfig, httpClient *http.Client, now func() time.Time) ModelResolver {
	if now == nil {
		now = time.Now
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &geminiModelResolver{
		cfg: cfg,
		clients: &genaiClients{
			httpClient: httpClient,
			httpOpts: genai.HTTPOptions{
				BaseURL:    cfg.BaseURL,
				APIVersion: cfg.StableVersion,
			},
		},
		now: now,
	}
}

func (r *geminiModelResolver) Resolve(ctx context.Context, apiKey string) ResolvedModel {
	if override := strings.TrimSpace(r.cfg.Override); override != "" {
		return ResolvedModel{Identifier: override, Source: SourceOverride, ResolvedAt: r.now()}
	}

	r.mu.RLock()
	cached := r.cached
	r.mu.RUnlock()
	if cached != nil {
		return ResolvedModel{Identifier: cached.Identifier, Source: SourceCache, ResolvedAt: cached.ResolvedAt}
	}

	name, err := r.queryModels(ctx, apiKey)
	if err != nil {
		log.Printf("❌ Failed to list models on API %s: %v", r.cfg.StableVersion, err)
		log.Printf("⚠️ Using fallback model %s", r.cfg.FallbackModel)
		return ResolvedModel{Identifier: r.cfg.FallbackModel, Source: SourceFallback, ResolvedAt: r.now()}
	}

	resolved := ResolvedModel{Identifier: name, Source: SourceLive, ResolvedAt: r.now()}
	r.mu.Lock()
	r.cached = &resolved
	r.mu.Unlock()

	log.Printf("✅ Model selected automatically: %s", name)
	return resolved
}

func (r *geminiModelResolver) Current() ResolvedModel {
	if override := strings.TrimSpace(r.cfg.Override); override != "" {
		return ResolvedModel{Identifier: override, Source: SourceOverride}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cached == nil {
		return ResolvedModel{Source: SourceUnresolved}
	}
	return ResolvedModel{Identifier: r.cached.Identifier, Source: SourceCache, ResolvedAt: r.cached.ResolvedAt}
}

func (r *geminiModelResolver) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
	log.Println("🔁 Model cache invalidated")
}

func (r *geminiModelResolver) queryModels(ctx context.Context, apiKey string) (name string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("gemini client panic: %v", rec)
		}
	}()

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	client, err := r.clients.get(ctx, apiKey)
	if err != nil {
		return "", err
	}

	var supported []string
	for m, err := range client.Models.All(ctx) {
		if err != nil {
			return "", fmt.Errorf("list models request failed: %w", err)
		}
		if slices.Contains(m.SupportedActions, "generateContent") {
			supported = append(supported, m.Name)
		}
	}
	log.Printf("📋 Models available on API %s: %v", r.cfg.StableVersion, supported)

	name = SelectPreferredModel(supported)
	if name == "" {
		return "", fmt.Errorf("no model supports generateContent")
	}
	return name, nil
}

// modelPreference is checked in order; the first substring with a match wins.
var modelPreference = []string{"2.0", "1.5-flash", "1.5-pro"}

// SelectPreferredModel returns the preferred name without its "models/"
// prefix, or "" when names is empty.
func SelectPreferredModel(names []string) string {
	if len(names) == 0 {
		return ""
	}
	chosen := names[0]
	found := false
	for _, want := range modelPreference {
		for _, name := range names {
			if strings.Contains(name, want) {
				chosen = name
				found = true
				break
			}
		}
		if found {
			break
		}
	}
	return strings.TrimPrefix(chosen, "models/")
}

// staticModelResolver always answers with one configured identifier.
type staticModelResolver struct {
	model string
}

func NewStaticModelResolver(model string) ModelResolver {
	return &staticModelResolver{model: model}
}

func (s *staticModelResolver) Resolve(ctx context.Context, apiKey string) ResolvedModel {
	return ResolvedModel{Identifier: s.model, Source: SourceStatic}
}

func (s *staticModelResolver) Current() ResolvedModel {
	return ResolvedModel{Identifier: s.model, Source: SourceStatic}
}

func (s *staticModelResolver) Invalidate() {}
