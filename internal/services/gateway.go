package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

// ErrUnexpectedReply marks a reply that carried no text in any known field.
var ErrUnexpectedReply = errors.New("unexpected response shape from model provider")

// GenerateRequest is one prompt addressed to one model.
type GenerateRequest struct {
	Model  string
	Prompt string
	APIKey string
}

// Generator is a single way of reaching the provider.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (Reply, error)
}

// ProviderAPIError is a non-2xx answer from the provider's HTTP surface.
type ProviderAPIError struct {
	StatusCode int
	Status     string
	Message    string
	Surface    string
}

func (e *ProviderAPIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("http status %d", e.StatusCode)
	}
	return fmt.Sprintf("API %s error (%d %s): %s", e.Surface, e.StatusCode, e.Status, msg)
}

// LLMGateway sends prompts through the primary generator and, when the
// primary answers from the wrong API surface, retries once on the fallback.
type LLMGateway interface {
	Generate(ctx context.Context, prompt, model, apiKey string) (string, error)
}

type llmGateway struct {
	primary  Generator
	fallback Generator
	timeout  time.Duration
}

// NewLLMGateway wires the two-attempt strategy. fallback may be nil.
func NewLLMGateway(primary, fallback Generator, timeout time.Duration) LLMGateway {
	return &llmGateway{
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
	}
}

func (g *llmGateway) Generate(ctx context.Context, prompt, model, apiKey string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	req := GenerateRequest{Model: model, Prompt: prompt, APIKey: apiKey}

	reply, err := g.primary.Generate(ctx, req)
	if err != nil {
		if g.fallback == nil || !IsSurfaceMismatch(err) {
			return "", err
		}
		log.Printf("⚠️ Primary path cannot serve model %s (%v), calling the stable API directly", model, err)
		reply, err = g.fallback.Generate(ctx, req)
		if err != nil {
			return "", err
		}
		log.Println("✅ Response received from the stable API")
	}

	normalized := NormalizeReply(reply)
	if normalized.Degraded {
		log.Printf("❌ No text field in %s reply, body: %s", reply.Shape, truncate(normalized.Text, 500))
		return "", fmt.Errorf("%w (%s)", ErrUnexpectedReply, reply.Shape)
	}

	return normalized.Text, nil
}

// IsSurfaceMismatch reports whether err means the model is not available on
// the API surface the primary path talks to. Transport failures never are.
func IsSurfaceMismatch(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return false
	}

	if providerStatusCode(err) == 404 {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "v1beta") ||
		strings.Contains(msg, "404") ||
		strings.Contains(msg, "not found for api version") ||
		strings.Contains(msg, "not supported for generatecontent")
}

// providerStatusCode digs the HTTP status out of any of the provider error types.
func providerStatusCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	var rawErr *ProviderAPIError
	if errors.As(err, &rawErr) {
		return rawErr.StatusCode
	}
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return openaiErr.StatusCode
	}
	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
