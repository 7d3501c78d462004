package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// genaiClients keeps one SDK client per API key and builds it on first use.
type genaiClients struct {
	httpClient *http.Client
	httpOpts   genai.HTTPOptions

	mu     sync.Mutex
	apiKey string
	client *genai.Client
}

func (c *genaiClients) get(ctx context.Context, apiKey string) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil && c.apiKey == apiKey {
		return c.client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  c.httpClient,
		HTTPOptions: c.httpOpts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	c.apiKey = apiKey
	c.client = client
	return client, nil
}

// genaiGenerator is the primary path: the Gemini SDK on its default surface.
type genaiGenerator struct {
	clients *genaiClients
}

// NewGenAIGenerator builds the SDK-backed generator. baseURL is empty in
// production.
func NewGenAIGenerator(httpClient *http.Client, baseURL string) Generator {
	return &genaiGenerator{
		clients: &genaiClients{
			httpClient: httpClient,
			httpOpts:   genai.HTTPOptions{BaseURL: baseURL},
		},
	}
}

func (g *genaiGenerator) Generate(ctx context.Context, req GenerateRequest) (reply Reply, err error) {
	// The SDK dereferences a missing error object on some non-2xx bodies.
	defer func() {
		if r := recover(); r != nil {
			reply = Reply{}
			err = fmt.Errorf("gemini client panic: %v", r)
		}
	}()

	client, err := g.clients.get(ctx, req.APIKey)
	if err != nil {
		return Reply{}, err
	}

	resp, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), nil)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to generate text: %w", err)
	}
	if resp == nil {
		return Reply{}, fmt.Errorf("no response generated (nil response)")
	}

	body, err := json.Marshal(resp)
	if err != nil {
		body = nil
	}

	return Reply{Shape: ShapeSDK, SDK: resp, Body: body}, nil
}

// stableGenerator calls generateContent on the stable (non-beta) HTTP API.
type stableGenerator struct {
	httpClient *http.Client
	baseURL    string
	version    string
}

func NewStableGenerator(httpClient *http.Client, baseURL, version string) Generator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &stableGenerator{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		version:    version,
	}
}

type rawGenerateRequest struct {
	Contents []rawContent `json:"contents"`
}

type rawContent struct {
	Parts []rawPart `json:"parts"`
}

type rawPart struct {
	Text string `json:"text"`
}

type rawErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (g *stableGenerator) Generate(ctx context.Context, req GenerateRequest) (Reply, error) {
	payload, err := json.Marshal(rawGenerateRequest{
		Contents: []rawContent{{Parts: []rawPart{{Text: req.Prompt}}}},
	})
	if err != nil {
		return Reply{}, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/models/%s:generateContent", g.baseURL, g.version, req.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Reply{}, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", req.APIKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return Reply{}, fmt.Errorf("stable API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to read stable API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Reply{}, decodeAPIError(resp, body, g.version)
	}

	var raw RawGenerateResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return Reply{}, fmt.Errorf("failed to decode stable API response: %w", err)
	}

	return Reply{Shape: ShapeRaw, Raw: &raw, Body: body}, nil
}

func decodeAPIError(resp *http.Response, body []byte, surface string) error {
	apiErr := &ProviderAPIError{
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
		Surface:    surface,
	}
	var decoded rawErrorBody
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Error.Message != "" {
		apiErr.Message = decoded.Error.Message
		if decoded.Error.Status != "" {
			apiErr.Status = decoded.Error.Status
		}
	}
	return apiErr
}
