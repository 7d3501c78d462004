package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const openaiSystemMessage = "You are a senior specialist in tech résumés. Be direct and practical."

type openaiGenerator struct {
	httpClient *http.Client
	baseURL    string
}

// NewOpenAIGenerator reaches OpenAI chat completions. It has no fallback
// surface, so the gateway is built without one for this provider.
func NewOpenAIGenerator(httpClient *http.Client, baseURL string) Generator {
	return &openaiGenerator{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

func (g *openaiGenerator) Generate(ctx context.Context, req GenerateRequest) (Reply, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(req.APIKey),
		option.WithMaxRetries(0),
	}
	if g.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(g.httpClient))
	}
	if g.baseURL != "" {
		opts = append(opts, option.WithBaseURL(g.baseURL))
	}

	client := openai.NewClient(opts...)
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(openaiSystemMessage),
			openai.UserMessage(req.Prompt),
		},
		MaxTokens:   openai.Int(800),
		Temperature: openai.Float(0),
	})
	if err != nil {
		return Reply{}, fmt.Errorf("openai chat completion failed: %w", err)
	}

	return Reply{Shape: ShapeOpenAI, OpenAI: resp, Body: []byte(resp.RawJSON())}, nil
}
